// Package router maps client paths to named views.
package router

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// View names.
const (
	ViewSpecies     = "species"
	ViewBoneDetails = "bone-details"
)

// Route binds a path pattern in chi syntax to a view name.
type Route struct {
	Name    string
	Pattern string
}

// Routes served by the client.
var Routes = []Route{
	{Name: ViewSpecies, Pattern: "/"},
	{Name: ViewBoneDetails, Pattern: "/bones/{id}"},
}

// Match is a resolved path. Params holds the path parameters by name; they
// are passed to the view as its input.
type Match struct {
	Name    string            `json:"name"`
	Pattern string            `json:"pattern"`
	Path    string            `json:"path"`
	Params  map[string]string `json:"params,omitempty"`
	Query   url.Values        `json:"query,omitempty"`
}

// Param returns a path parameter, or "".
func (m Match) Param(key string) string {
	return m.Params[key]
}

// Router resolves paths against a fixed route table.
type Router struct {
	mux    *chi.Mux
	routes []Route
	byPath map[string]Route
	byName map[string]Route
}

// New builds a Router for routes. It panics on a duplicate name or pattern.
func New(routes ...Route) *Router {
	r := &Router{
		mux:    chi.NewRouter(),
		byPath: make(map[string]Route, len(routes)),
		byName: make(map[string]Route, len(routes)),
	}
	for _, rt := range routes {
		if _, dup := r.byName[rt.Name]; dup {
			panic(fmt.Sprintf("router: duplicate route name %q", rt.Name))
		}
		if _, dup := r.byPath[rt.Pattern]; dup {
			panic(fmt.Sprintf("router: duplicate route pattern %q", rt.Pattern))
		}
		r.mux.Get(rt.Pattern, http.NotFound)
		r.byPath[rt.Pattern] = rt
		r.byName[rt.Name] = rt
		r.routes = append(r.routes, rt)
	}
	return r
}

// Default returns the router for Routes.
func Default() *Router {
	return New(Routes...)
}

// Resolve matches path, which may carry a query string, to a route.
func (r *Router) Resolve(path string) (Match, error) {
	u, err := url.Parse(path)
	if err != nil {
		return Match{}, fmt.Errorf("%w: %s", types.ErrNoRoute, path)
	}
	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, p) {
		return Match{}, fmt.Errorf("%w: %s", types.ErrNoRoute, path)
	}
	pattern := rctx.RoutePattern()
	rt, ok := r.byPath[pattern]
	if !ok {
		return Match{}, fmt.Errorf("%w: %s", types.ErrNoRoute, path)
	}

	m := Match{Name: rt.Name, Pattern: rt.Pattern, Path: p}
	for i, key := range rctx.URLParams.Keys {
		if m.Params == nil {
			m.Params = make(map[string]string)
		}
		m.Params[key] = rctx.URLParams.Values[i]
	}
	if len(u.Query()) > 0 {
		m.Query = u.Query()
	}
	return m, nil
}

// Path builds the path for the named route, filling {param} segments from
// params.
func (r *Router) Path(name string, params map[string]string) (string, error) {
	rt, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown route %q", types.ErrNoRoute, name)
	}
	segments := strings.Split(rt.Pattern, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
		v, ok := params[key]
		if !ok || v == "" {
			return "", fmt.Errorf("route %q: missing parameter %q", name, key)
		}
		segments[i] = url.PathEscape(v)
	}
	return strings.Join(segments, "/"), nil
}

// Names lists the route names in registration order.
func (r *Router) Names() []string {
	names := make([]string, len(r.routes))
	for i, rt := range r.routes {
		names[i] = rt.Name
	}
	return names
}
