// Package resource wraps backend collection endpoints. One generic Service
// serves every resource; Species and Bones are its two instances.
package resource

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mesh-intelligence/dustnbones/internal/httpx"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// Service issues CRUD calls against one collection endpoint. Failures are
// logged and returned unchanged; nothing is retried or cached.
type Service[T types.Entity] struct {
	client *httpx.Client
	path   string
	name   string
	logger *slog.Logger
}

// New returns a Service for the collection at path (e.g. "species"). name is
// the singular used in log lines.
func New[T types.Entity](client *httpx.Client, path, name string, logger *slog.Logger) *Service[T] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service[T]{
		client: client,
		path:   path,
		name:   name,
		logger: logger,
	}
}

// Path returns the collection path.
func (s *Service[T]) Path() string {
	return s.path
}

// Create posts payload to the collection and returns the backend body.
func (s *Service[T]) Create(ctx context.Context, payload any) (*types.Envelope[T], error) {
	var out types.Envelope[T]
	err := s.client.DoJSON(ctx, &httpx.Request{
		Method:    http.MethodPost,
		Path:      s.path,
		JSON:      payload,
		Operation: s.op("create"),
	}, &out)
	if err != nil {
		return nil, s.fail("create", err)
	}
	return &out, nil
}

// GetAll lists the collection with the given query parameters.
func (s *Service[T]) GetAll(ctx context.Context, params url.Values) (*types.ListResponse[T], error) {
	var raw types.RawList[T]
	err := s.client.DoJSON(ctx, &httpx.Request{
		Method:    http.MethodGet,
		Path:      s.path,
		Query:     params,
		Operation: s.op("getAll"),
	}, &raw)
	if err != nil {
		return nil, s.fail("getAll", err)
	}
	return NormalizeList(raw), nil
}

// GetAllByRelation lists the nested collection /path/relation/parentID.
func (s *Service[T]) GetAllByRelation(ctx context.Context, relation string, parentID types.ID, params url.Values) (*types.ListResponse[T], error) {
	if relation == "" {
		return nil, s.fail("getAllByRelation", errors.New("resource: relation is required"))
	}
	action := "getAllBy" + strings.ToUpper(relation[:1]) + relation[1:]
	if parentID.IsZero() {
		return nil, s.fail(action, types.ErrInvalidID)
	}
	var raw types.RawList[T]
	err := s.client.DoJSON(ctx, &httpx.Request{
		Method:    http.MethodGet,
		Path:      s.path + "/" + url.PathEscape(relation) + "/" + url.PathEscape(parentID.String()),
		Query:     params,
		Operation: s.op(action),
	}, &raw)
	if err != nil {
		return nil, s.fail(action, err)
	}
	return NormalizeList(raw), nil
}

// GetByID fetches one entity.
func (s *Service[T]) GetByID(ctx context.Context, id types.ID) (*types.Envelope[T], error) {
	return s.single(ctx, "getById", http.MethodGet, id, nil)
}

// Update replaces an entity with payload.
func (s *Service[T]) Update(ctx context.Context, id types.ID, payload any) (*types.Envelope[T], error) {
	return s.single(ctx, "update", http.MethodPut, id, payload)
}

// Delete removes an entity.
func (s *Service[T]) Delete(ctx context.Context, id types.ID) (*types.Envelope[T], error) {
	return s.single(ctx, "delete", http.MethodDelete, id, nil)
}

func (s *Service[T]) single(ctx context.Context, action, method string, id types.ID, payload any) (*types.Envelope[T], error) {
	if id.IsZero() {
		return nil, s.fail(action, types.ErrInvalidID)
	}
	var out types.Envelope[T]
	err := s.client.DoJSON(ctx, &httpx.Request{
		Method:    method,
		Path:      s.path + "/" + url.PathEscape(id.String()),
		JSON:      payload,
		Operation: s.op(action),
	}, &out)
	if err != nil {
		return nil, s.fail(action, err)
	}
	return &out, nil
}

func (s *Service[T]) op(action string) string {
	return s.path + "." + action
}

func (s *Service[T]) fail(action string, err error) error {
	s.logger.Error("error in "+action+" "+s.name, "resource", s.path, "err", err)
	return err
}

// NormalizeList reshapes a raw list body: data becomes items (empty when
// absent), count becomes total (0 when absent), pagination passes through.
func NormalizeList[T any](raw types.RawList[T]) *types.ListResponse[T] {
	items := raw.Data
	if items == nil {
		items = []T{}
	}
	total := 0
	if raw.Count != nil {
		total = *raw.Count
	}
	return &types.ListResponse[T]{
		Success:    raw.Success,
		Items:      items,
		Total:      total,
		Pagination: raw.Pagination,
	}
}
