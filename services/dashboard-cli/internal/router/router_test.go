package router

import (
	"context"
	"errors"
	"testing"
)

type staticAuth bool

func (s staticAuth) IsAuthorized(context.Context) bool { return bool(s) }

func TestResolve(t *testing.T) {
	cases := []struct {
		name       string
		authorized bool
		path       string
		want       string
	}{
		{"home public", false, "/", Home},
		{"empty path is home", false, "", Home},
		{"slashes only is home", false, "//", Home},
		{"login public", false, "/login", Login},
		{"register public", false, "/register/", Register},
		{"admin redirects", false, "/admin", Login},
		{"admin with query redirects", false, "/admin?tab=sensors", Login},
		{"admin authorized", true, "/admin", Admin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGuard(staticAuth(tc.authorized), Routes)
			got, err := g.Resolve(context.Background(), tc.path)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got.Name != tc.want {
				t.Fatalf("got %s, want %s", got.Name, tc.want)
			}
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	g := NewGuard(staticAuth(true), Routes)
	if _, err := g.Resolve(context.Background(), "/nope"); !errors.Is(err, ErrRouteNotFound) {
		t.Fatalf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestEnterReportsRedirect(t *testing.T) {
	g := NewGuard(staticAuth(false), Routes)
	route, redirected, err := g.Enter(context.Background(), Admin)
	if err != nil {
		t.Fatalf("enter: %v", err)
	}
	if !redirected || route.Name != Login {
		t.Fatalf("expected redirect to login, got %s redirected=%v", route.Name, redirected)
	}

	route, redirected, err = g.Enter(context.Background(), Home)
	if err != nil || redirected || route.Name != Home {
		t.Fatalf("home should not redirect: %s %v %v", route.Name, redirected, err)
	}
}
