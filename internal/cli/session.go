package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/dustnbones/internal/httpx"
	"github.com/mesh-intelligence/dustnbones/internal/loading"
	"github.com/mesh-intelligence/dustnbones/internal/resource"
	"github.com/mesh-intelligence/dustnbones/internal/sqlite"
	"github.com/mesh-intelligence/dustnbones/internal/store"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// session wires the client stack for one command: HTTP client, services,
// stores restored from the configured persister.
type session struct {
	logger    *slog.Logger
	tracker   *loading.Tracker
	registry  *prometheus.Registry
	client    *httpx.Client
	persister store.Persister
	species   *store.SpeciesStore
	bones     *store.BonesStore
}

// openPersister opens the configured state backend.
func (a *app) openPersister(ctx context.Context) (store.Persister, error) {
	switch a.cfg.StateBackend {
	case types.StateBackendFile:
		return store.NewFilePersister(a.dirs.StateDir())
	case types.StateBackendSQLite:
		return sqlite.Open(ctx, a.dirs.Data, a.logger)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrStateBackendUnknown, a.cfg.StateBackend)
	}
}

// openSession builds the stack and restores both stores.
func (a *app) openSession(ctx context.Context) (*session, error) {
	s := &session{
		logger:   a.logger,
		tracker:  loading.New(),
		registry: prometheus.NewRegistry(),
	}
	s.tracker.Subscribe(func(busy bool) {
		a.logger.Debug("loading", "busy", busy)
	})

	client, err := httpx.NewClient(a.cfg.APIURL,
		httpx.WithTimeout(a.cfg.Timeout),
		httpx.WithLogger(a.logger),
		httpx.WithTracker(s.tracker),
		httpx.WithMetrics(s.registry),
	)
	if err != nil {
		return nil, userError("invalid api url", err)
	}
	s.client = client

	p, err := a.openPersister(ctx)
	if err != nil {
		return nil, systemError("open state storage", err)
	}
	s.persister = p

	opts := []store.Option{store.WithPersister(p), store.WithLogger(a.logger)}
	s.species = store.NewSpeciesStore(resource.NewSpecies(client, a.logger), opts...)
	s.bones = store.NewBonesStore(resource.NewBones(client, a.logger), opts...)

	for _, st := range []interface{ Open(context.Context) error }{s.species, s.bones} {
		if err := st.Open(ctx); err != nil {
			// A snapshot we cannot read is replaced on the next save.
			a.logger.Warn("discarding stored state", "err", err)
		}
	}
	return s, nil
}

// close saves both stores and releases the persister. It runs on every exit
// path so failures are recorded in the stored state too.
func (s *session) close(ctx context.Context) error {
	var errs []error
	if err := s.species.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.bones.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.persister.Close(); err != nil {
		errs = append(errs, err)
	}
	s.logRequestMetrics()
	if err := errors.Join(errs...); err != nil {
		return systemError("save state", err)
	}
	return nil
}

// logRequestMetrics reports request counters at debug level.
func (s *session) logRequestMetrics() {
	if !s.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	families, err := s.registry.Gather()
	if err != nil {
		s.logger.Debug("gather metrics", "err", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			value := m.GetCounter().GetValue()
			if m.GetGauge() != nil {
				value = m.GetGauge().GetValue()
			}
			s.logger.Debug("metric", "name", mf.GetName(), "labels", strings.Join(labels, ","), "value", value)
		}
	}
}

// withSession opens a session, runs fn, and always closes the session. The
// error from fn wins over a close error.
func (a *app) withSession(ctx context.Context, fn func(*session) error) error {
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	runErr := fn(s)
	closeErr := s.close(ctx)
	if runErr != nil {
		return runErr
	}
	return closeErr
}
