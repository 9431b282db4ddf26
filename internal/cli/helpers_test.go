package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/mesh-intelligence/dustnbones/internal/sandbox"
)

// env isolates a CLI run: its own directories and a seeded sandbox backend.
type env struct {
	t         *testing.T
	configDir string
	dataDir   string
	apiURL    string
	server    *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()
	for _, k := range []string{
		"DUSTNBONES_API_URL", "VITE_API_URL", "DUSTNBONES_CONFIG_DIR", "DUSTNBONES_DATA_DIR",
		"DUSTNBONES_STATE_BACKEND", "DUSTNBONES_TIMEOUT", "DUSTNBONES_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	srv := httptest.NewServer(sandbox.New(sandbox.Seeded()))
	t.Cleanup(srv.Close)
	return &env{
		t:         t,
		configDir: t.TempDir(),
		dataDir:   t.TempDir(),
		apiURL:    srv.URL + sandbox.APIPrefix,
		server:    srv,
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

func (r result) code() int { return ExitCode(r.err) }

// run executes the CLI with the env's directories and backend prepended to
// args. Later flags override earlier ones.
func (e *env) run(args ...string) result {
	e.t.Helper()
	base := []string{"--config-dir", e.configDir, "--data-dir", e.dataDir, "--api-url", e.apiURL}
	return runCLI(context.Background(), append(base, args...)...)
}

func runCLI(ctx context.Context, args ...string) result {
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(ctx)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
