// Package sandbox serves an in-memory Dust N Bones backend for local use and
// end-to-end tests. It speaks the same envelope format as the real API.
package sandbox

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// APIPrefix is where the resource routes are mounted.
const APIPrefix = "/api"

const (
	defaultLimit = 10
	maxLimit     = 100
	// maxPage keeps the page offset within int for any limit.
	maxPage = math.MaxInt / maxLimit
)

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Option configures the sandbox handler.
type Option func(*server)

// WithLogger logs one line per request.
func WithLogger(l *slog.Logger) Option {
	return func(s *server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer exposes g at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *server) {
		s.gatherer = g
	}
}

type server struct {
	catalog  *Catalog
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// New returns the sandbox HTTP handler backed by catalog.
func New(catalog *Catalog, opts ...Option) *chi.Mux {
	s := &server{
		catalog: catalog,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/health"))
	router.Use(s.requestLogger)
	router.Use(middleware.Timeout(15 * time.Second))

	if s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	router.Route(APIPrefix, func(r chi.Router) {
		r.Mount("/species", s.speciesRouter())
		r.Mount("/bones", s.bonesRouter())
	})
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, r, http.StatusNotFound, "route not found")
	})
	return router
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *server) speciesRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		page, ok := parsePage(w, r)
		if !ok {
			return
		}
		items := s.catalog.ListSpecies(r.URL.Query().Get("search"))
		render.JSON(w, r, paginate(items, page))
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var in types.SpecieInput
		if !decode(w, r, &in) {
			return
		}
		sp, err := s.catalog.CreateSpecie(in)
		if err != nil {
			s.failWith(w, r, err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, types.Envelope[types.Specie]{Success: true, Data: &sp, Message: "specie created"})
	})
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			sp, err := s.catalog.GetSpecie(idParam(r))
			if err != nil {
				s.failWith(w, r, err)
				return
			}
			render.JSON(w, r, types.Envelope[types.Specie]{Success: true, Data: &sp})
		})
		r.Put("/", func(w http.ResponseWriter, r *http.Request) {
			var in types.SpecieInput
			if !decode(w, r, &in) {
				return
			}
			sp, err := s.catalog.UpdateSpecie(idParam(r), in)
			if err != nil {
				s.failWith(w, r, err)
				return
			}
			render.JSON(w, r, types.Envelope[types.Specie]{Success: true, Data: &sp, Message: "specie updated"})
		})
		r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			if err := s.catalog.DeleteSpecie(idParam(r)); err != nil {
				s.failWith(w, r, err)
				return
			}
			render.JSON(w, r, types.Envelope[types.Specie]{Success: true, Message: "specie deleted"})
		})
	})
	return r
}

func (s *server) bonesRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		page, ok := parsePage(w, r)
		if !ok {
			return
		}
		items := s.catalog.ListBones("", r.URL.Query().Get("search"))
		render.JSON(w, r, paginate(items, page))
	})
	r.Get("/specie/{id}", func(w http.ResponseWriter, r *http.Request) {
		page, ok := parsePage(w, r)
		if !ok {
			return
		}
		specieID := idParam(r)
		if _, err := s.catalog.GetSpecie(specieID); err != nil {
			s.failWith(w, r, err)
			return
		}
		items := s.catalog.ListBones(specieID, r.URL.Query().Get("search"))
		render.JSON(w, r, paginate(items, page))
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var in types.BoneInput
		if !decode(w, r, &in) {
			return
		}
		b, err := s.catalog.CreateBone(in)
		if err != nil {
			s.failWith(w, r, err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, types.Envelope[types.Bone]{Success: true, Data: &b, Message: "bone created"})
	})
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			b, err := s.catalog.GetBone(idParam(r))
			if err != nil {
				s.failWith(w, r, err)
				return
			}
			render.JSON(w, r, types.Envelope[types.Bone]{Success: true, Data: &b})
		})
		r.Put("/", func(w http.ResponseWriter, r *http.Request) {
			var in types.BoneInput
			if !decode(w, r, &in) {
				return
			}
			b, err := s.catalog.UpdateBone(idParam(r), in)
			if err != nil {
				s.failWith(w, r, err)
				return
			}
			render.JSON(w, r, types.Envelope[types.Bone]{Success: true, Data: &b, Message: "bone updated"})
		})
		r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			if err := s.catalog.DeleteBone(idParam(r)); err != nil {
				s.failWith(w, r, err)
				return
			}
			render.JSON(w, r, types.Envelope[types.Bone]{Success: true, Message: "bone deleted"})
		})
	})
	return r
}

func idParam(r *http.Request) types.ID {
	return types.ID(chi.URLParam(r, "id"))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := render.DecodeJSON(r.Body, v); err != nil {
		fail(w, r, http.StatusBadRequest, "payload is not valid JSON")
		return false
	}
	return true
}

func (s *server) failWith(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errNotFound):
		fail(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, errNameRequired), errors.Is(err, errUnknownSpecie):
		fail(w, r, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("sandbox handler failed", "err", err)
		fail(w, r, http.StatusInternalServerError, "internal error")
	}
}

func fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorBody{Success: false, Message: msg})
}

// page is the requested window. A zero limit means no paging was asked for.
type page struct {
	number int
	limit  int
}

func parsePage(w http.ResponseWriter, r *http.Request) (page, bool) {
	q := r.URL.Query()
	var p page
	if q.Get("page") == "" && q.Get("limit") == "" {
		return p, true
	}
	p.number, p.limit = 1, defaultLimit
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPage {
			fail(w, r, http.StatusBadRequest, "page: must be a positive integer")
			return p, false
		}
		p.number = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fail(w, r, http.StatusBadRequest, "limit: must be a positive integer")
			return p, false
		}
		p.limit = min(n, maxLimit)
	}
	return p, true
}

func paginate[T any](items []T, p page) types.RawList[T] {
	count := len(items)
	out := types.RawList[T]{Success: true, Count: &count}
	if p.limit == 0 {
		out.Data = items
		return out
	}
	totalPages := (count + p.limit - 1) / p.limit
	start := count
	if p.number <= totalPages {
		start = (p.number - 1) * p.limit
	}
	end := min(start+p.limit, count)
	out.Data = items[start:end]
	out.Pagination = &types.Pagination{
		Page:       p.number,
		Limit:      p.limit,
		TotalPages: totalPages,
		HasNext:    p.number < totalPages,
		HasPrev:    p.number > 1,
	}
	return out
}
