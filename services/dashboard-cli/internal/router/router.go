package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrRouteNotFound is returned for paths missing from the route table.
var ErrRouteNotFound = errors.New("router: route not found")

// Route names.
const (
	Home     = "home"
	Login    = "login"
	Register = "register"
	Admin    = "admin"
)

// Route is an entry of the route table.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

// Routes is the dashboard route table.
var Routes = []Route{
	{Name: Home, Path: "/"},
	{Name: Login, Path: "/login"},
	{Name: Register, Path: "/register"},
	{Name: Admin, Path: "/admin", RequiresAuth: true},
}

// Authorizer reports whether the current session may enter protected routes.
type Authorizer interface {
	IsAuthorized(ctx context.Context) bool
}

// Guard resolves navigation requests against the route table.
type Guard struct {
	auth   Authorizer
	routes map[string]Route
	byName map[string]Route
}

// NewGuard builds a guard over routes.
func NewGuard(auth Authorizer, routes []Route) *Guard {
	g := &Guard{
		auth:   auth,
		routes: make(map[string]Route, len(routes)),
		byName: make(map[string]Route, len(routes)),
	}
	for _, r := range routes {
		g.routes[r.Path] = r
		g.byName[r.Name] = r
	}
	return g
}

// Resolve returns the route navigation to path ends up on: the route itself,
// or login when the route requires auth and the session is unauthorized.
func (g *Guard) Resolve(ctx context.Context, path string) (Route, error) {
	route, ok := g.routes[normalize(path)]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}
	if route.RequiresAuth && !g.auth.IsAuthorized(ctx) {
		login, ok := g.byName[Login]
		if !ok {
			return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, Login)
		}
		return login, nil
	}
	return route, nil
}

// Enter resolves the named route and reports whether navigation was redirected.
func (g *Guard) Enter(ctx context.Context, name string) (Route, bool, error) {
	want, ok := g.byName[name]
	if !ok {
		return Route{}, false, fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	got, err := g.Resolve(ctx, want.Path)
	if err != nil {
		return Route{}, false, err
	}
	return got, got.Name != want.Name, nil
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "/"
	}
	return path
}
