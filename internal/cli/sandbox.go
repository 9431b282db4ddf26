package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dustnbones/internal/sandbox"
)

func newSandboxCmd(a *app) *cobra.Command {
	var addr string
	var empty bool
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Serve an in-memory backend for local use",
		Long: `Sandbox serves the species and bones API from memory, seeded with a few
species, until interrupted. Point the client at it with
--api-url http://<addr>/api.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			catalog := sandbox.Seeded()
			if empty {
				catalog = sandbox.NewCatalog()
			}
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return systemError("listen", err)
			}
			srv := &http.Server{
				Handler:           sandbox.New(catalog, sandbox.WithLogger(a.logger), sandbox.WithGatherer(reg)),
				ReadHeaderTimeout: 10 * time.Second,
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sandbox listening on http://%s%s\n", ln.Addr(), sandbox.APIPrefix)
			return serve(ctx, srv, ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:3000", "listen address")
	cmd.Flags().BoolVar(&empty, "empty", false, "start without seed data")
	return cmd
}

// serve runs srv on ln until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return systemError("serve", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return systemError("shutdown", err)
	}
	return nil
}
