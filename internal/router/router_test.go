package router

import (
	"context"
	"errors"
	"testing"

	"github.com/wolfman30/mindcare/pkg/logging"
)

func TestRouter_ResolveWithQuery(t *testing.T) {
	r := New(logging.Discard())
	var got Route
	r.Define("/landing", func(_ context.Context, route Route) error {
		got = route
		return nil
	})

	if err := r.Run(context.Background(), "#/landing?section=about&x=1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Path != "/landing" {
		t.Fatalf("expected /landing, got %q", got.Path)
	}
	if got.Params.Get("section") != "about" || got.Params.Get("x") != "1" {
		t.Fatalf("unexpected params %v", got.Params)
	}
	if got.Full != "/landing?section=about&x=1" {
		t.Fatalf("unexpected full location %q", got.Full)
	}
}

func TestRouter_EmptyLocationIsRoot(t *testing.T) {
	r := New(logging.Discard())
	called := false
	r.Define("/", func(context.Context, Route) error {
		called = true
		return nil
	})
	if err := r.Run(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("expected root handler to run")
	}
}

func TestRouter_FallsBackTo404(t *testing.T) {
	r := New(logging.Discard())
	var hit string
	r.Define(NotFoundPath, func(_ context.Context, route Route) error {
		hit = route.Path
		return nil
	})
	if err := r.Run(context.Background(), "/nope?q=1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit != "/nope" {
		t.Fatalf("expected 404 handler to see /nope, got %q", hit)
	}
}

func TestRouter_NoHandlerIsNoop(t *testing.T) {
	r := New(logging.Discard())
	route, h := r.Resolve("/missing")
	if h != nil {
		t.Fatalf("expected no handler")
	}
	if route.Path != "/missing" {
		t.Fatalf("expected /missing, got %q", route.Path)
	}
	if err := r.Run(context.Background(), "/missing"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestRouter_NavigateNormalizesAndTracksCurrent(t *testing.T) {
	r := New(logging.Discard())
	calls := 0
	r.Define("/mood", func(context.Context, Route) error {
		calls++
		return nil
	})
	if r.Current() != "/" {
		t.Fatalf("expected / before navigation, got %q", r.Current())
	}

	if err := r.Navigate(context.Background(), "mood"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if r.Current() != "/mood" {
		t.Fatalf("expected /mood, got %q", r.Current())
	}
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 handler calls, got %d", calls)
	}
}

func TestRouter_HandlerErrorPropagates(t *testing.T) {
	r := New(logging.Discard())
	boom := errors.New("boom")
	r.Define("/admin", func(context.Context, Route) error { return boom })
	if err := r.Navigate(context.Background(), "/admin"); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestRouter_MalformedQueryKeepsValidPairs(t *testing.T) {
	r := New(logging.Discard())
	route, _ := r.Resolve("/landing?section=help&bad=%zz")
	if got := route.Params.Get("section"); got != "help" {
		t.Fatalf("expected section=help, got %q", got)
	}
}
