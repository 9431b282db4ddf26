// Package store mirrors resource service calls into client-side state.
//
// Every action follows the same protocol: mark the store loading and clear
// its error, call the service, then either write the result into state or
// record the error, and finally recompute loading from the number of actions
// still in flight. Errors are always returned to the caller unchanged.
//
// State is restored from a Persister by Open and written back by Close.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"sync"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// Service is the resource service a store delegates to.
type Service[T any] interface {
	Create(ctx context.Context, payload any) (*types.Envelope[T], error)
	GetAll(ctx context.Context, params url.Values) (*types.ListResponse[T], error)
	GetAllByRelation(ctx context.Context, relation string, parentID types.ID, params url.Values) (*types.ListResponse[T], error)
	GetByID(ctx context.Context, id types.ID) (*types.Envelope[T], error)
	Update(ctx context.Context, id types.ID, payload any) (*types.Envelope[T], error)
	Delete(ctx context.Context, id types.ID) (*types.Envelope[T], error)
}

// Option configures a Store.
type Option func(*config)

type config struct {
	persister Persister
	logger    *slog.Logger
}

// WithPersister makes Open restore from p and Close save to p.
func WithPersister(p Persister) Option {
	return func(c *config) {
		c.persister = p
	}
}

// WithLogger sets the logger for persistence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Store holds the state of one resource. It is safe for concurrent use;
// actions that overlap interleave at the service call and the last one to
// complete determines the final state.
type Store[T types.Entity] struct {
	key       string
	fields    Fields
	svc       Service[T]
	persister Persister
	logger    *slog.Logger

	mu       sync.Mutex
	state    types.StoreState[T]
	inflight int
	watchers []func(types.StoreState[T])
}

// New creates a Store with empty state. key names the durable snapshot and
// fields the resource-specific names used inside it.
func New[T types.Entity](key string, fields Fields, svc Service[T], opts ...Option) *Store[T] {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store[T]{
		key:       key,
		fields:    fields,
		svc:       svc,
		persister: cfg.persister,
		logger:    cfg.logger,
		state:     types.StoreState[T]{List: []T{}},
	}
}

// Key returns the durable storage key.
func (s *Store[T]) Key() string {
	return s.key
}

// Open restores state from the persister. A missing snapshot leaves the
// empty initial state in place.
func (s *Store[T]) Open(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	data, err := s.persister.Load(ctx, s.key)
	if errors.Is(err, types.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", s.key, err)
	}
	st, err := DecodeSnapshot[T](data, s.fields)
	if err != nil {
		return fmt.Errorf("decode %s: %w", s.key, err)
	}

	s.mu.Lock()
	s.state = st
	s.state.Loading = s.inflight > 0
	s.mu.Unlock()
	s.logger.Debug("store restored", "key", s.key, "items", len(st.List))
	return nil
}

// Flush writes the current state to the persister.
func (s *Store[T]) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	data, err := EncodeSnapshot(s.key, s.State(), s.fields)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	if err := s.persister.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	s.logger.Debug("store saved", "key", s.key)
	return nil
}

// Close saves state. The store stays usable afterwards.
func (s *Store[T]) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

// Reset returns the state to its initial empty value and removes the stored
// snapshot.
func (s *Store[T]) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.state = types.StoreState[T]{List: []T{}, Loading: s.inflight > 0}
	snap := s.state.Clone()
	s.mu.Unlock()
	s.notify(snap)

	if s.persister == nil {
		return nil
	}
	if err := s.persister.Delete(ctx, s.key); err != nil && !errors.Is(err, types.ErrNoSnapshot) {
		return fmt.Errorf("delete %s: %w", s.key, err)
	}
	return nil
}

// Watch registers fn to receive a copy of the state after every change.
func (s *Store[T]) Watch(fn func(types.StoreState[T])) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

// State returns a copy of the current state.
func (s *Store[T]) State() types.StoreState[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Current returns the last fetched entity, or nil.
func (s *Store[T]) Current() *T { return s.State().Current }

// List returns the last fetched list.
func (s *Store[T]) List() []T { return s.State().List }

// Pagination returns the paging metadata of the last list.
func (s *Store[T]) Pagination() *types.Pagination { return s.State().Pagination }

// Total returns the total count of the last list.
func (s *Store[T]) Total() int { return s.State().Total }

// Loading reports whether an action is in flight.
func (s *Store[T]) Loading() bool { return s.State().Loading }

// Err returns the error of the last failed action, or nil.
func (s *Store[T]) Err() error { return s.State().Err }

// Create creates an entity and makes it current.
func (s *Store[T]) Create(ctx context.Context, payload any) (*T, error) {
	return s.single(func() (*types.Envelope[T], error) {
		return s.svc.Create(ctx, payload)
	})
}

// GetByID fetches an entity and makes it current.
func (s *Store[T]) GetByID(ctx context.Context, id types.ID) (*T, error) {
	return s.single(func() (*types.Envelope[T], error) {
		return s.svc.GetByID(ctx, id)
	})
}

// Update updates an entity and makes the result current.
func (s *Store[T]) Update(ctx context.Context, id types.ID, payload any) (*T, error) {
	return s.single(func() (*types.Envelope[T], error) {
		return s.svc.Update(ctx, id, payload)
	})
}

// GetAll lists entities and replaces the list, pagination, and total.
func (s *Store[T]) GetAll(ctx context.Context, params url.Values) ([]T, error) {
	return s.list(func() (*types.ListResponse[T], error) {
		return s.svc.GetAll(ctx, params)
	})
}

// GetAllByRelation lists a nested collection and replaces the list,
// pagination, and total.
func (s *Store[T]) GetAllByRelation(ctx context.Context, relation string, parentID types.ID, params url.Values) ([]T, error) {
	return s.list(func() (*types.ListResponse[T], error) {
		return s.svc.GetAllByRelation(ctx, relation, parentID, params)
	})
}

// Remove deletes an entity. Once the backend confirms, the entity is dropped
// from the local list; the list is left alone on failure.
func (s *Store[T]) Remove(ctx context.Context, id types.ID) (*types.Envelope[T], error) {
	s.begin()
	env, err := s.svc.Delete(ctx, id)
	if err != nil {
		s.end(err, nil)
		return nil, err
	}
	s.end(nil, func(st *types.StoreState[T]) {
		st.List = slices.DeleteFunc(slices.Clone(st.List), func(item T) bool {
			return item.EntityID() == id
		})
	})
	return env, nil
}

func (s *Store[T]) single(call func() (*types.Envelope[T], error)) (*T, error) {
	s.begin()
	env, err := call()
	if err != nil {
		s.end(err, nil)
		return nil, err
	}
	var data *T
	if env != nil && env.Data != nil {
		v := *env.Data
		data = &v
	}
	s.end(nil, func(st *types.StoreState[T]) {
		st.Current = data
	})
	return data, nil
}

func (s *Store[T]) list(call func() (*types.ListResponse[T], error)) ([]T, error) {
	s.begin()
	resp, err := call()
	if err != nil {
		s.end(err, nil)
		return nil, err
	}
	items := []T{}
	var page *types.Pagination
	total := 0
	if resp != nil {
		if resp.Items != nil {
			items = resp.Items
		}
		page = resp.Pagination
		total = resp.Total
	}
	s.end(nil, func(st *types.StoreState[T]) {
		st.List = slices.Clone(items)
		st.Pagination = page
		st.Total = total
	})
	return items, nil
}

func (s *Store[T]) begin() {
	s.mu.Lock()
	s.inflight++
	s.state.Loading = true
	s.state.Err = nil
	snap := s.state.Clone()
	s.mu.Unlock()
	s.notify(snap)
}

// end applies the outcome of an action in one critical section, so readers
// never see a partial update.
func (s *Store[T]) end(err error, apply func(st *types.StoreState[T])) {
	s.mu.Lock()
	if err != nil {
		s.state.Err = err
	} else if apply != nil {
		apply(&s.state)
	}
	s.inflight--
	s.state.Loading = s.inflight > 0
	snap := s.state.Clone()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Store[T]) notify(st types.StoreState[T]) {
	s.mu.Lock()
	watchers := slices.Clone(s.watchers)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(st)
	}
}
