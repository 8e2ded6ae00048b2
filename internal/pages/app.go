package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/booking"
	"github.com/wolfman30/mindcare/internal/observability/metrics"
	"github.com/wolfman30/mindcare/internal/router"
	"github.com/wolfman30/mindcare/internal/state"
	"github.com/wolfman30/mindcare/pkg/logging"
)

// Config wires an App. API, Store and Router are required.
type Config struct {
	API    *api.Client
	Store  *state.Store
	Router *router.Router
	// Backend serves the counselor directory and booking calls. It defaults
	// to API; the shell passes the Redis-cached directory here.
	Backend booking.Backend
	Logger  *logging.Logger
	Metrics *metrics.BookingMetrics
	Now     func() time.Time
}

// invalidator is implemented by directory caches shared between clients.
type invalidator interface {
	Invalidate(ctx context.Context) error
}

// App owns the current page and the header. Dispatch and Render are meant to
// be called from one goroutine; store listeners may fire from any.
type App struct {
	api     *api.Client
	backend booking.Backend
	store   *state.Store
	router  *router.Router
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
	now     func() time.Time

	mu      sync.Mutex
	current Page
	badge   string
	flash   string
}

// NewApp registers every route on cfg.Router and subscribes the header badge
// to the store.
func NewApp(cfg Config) *App {
	if cfg.API == nil {
		panic("pages: api client required")
	}
	if cfg.Store == nil {
		panic("pages: state store required")
	}
	if cfg.Router == nil {
		panic("pages: router required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Backend == nil {
		cfg.Backend = cfg.API
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	a := &App{
		api:     cfg.API,
		backend: cfg.Backend,
		store:   cfg.Store,
		router:  cfg.Router,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		now:     cfg.Now,
		current: notFoundPage{},
		badge:   badgeFor(nil),
	}
	a.store.Subscribe(func(s state.State) {
		a.mu.Lock()
		a.badge = badgeFor(s.Me)
		a.mu.Unlock()
	})
	a.registerRoutes()
	return a
}

// Start loads the session and opens location (default "/").
func (a *App) Start(ctx context.Context, location string) error {
	a.refreshMe(ctx)
	if strings.TrimSpace(location) == "" {
		location = "/"
	}
	return a.router.Navigate(ctx, location)
}

// Current returns the page on screen.
func (a *App) Current() Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Dispatch runs one typed line. Global commands are handled here; anything
// else goes to the current page. Errors are also kept for the next Render.
func (a *App) Dispatch(ctx context.Context, line string) error {
	action, args := ParseCommand(line)
	if action == "" {
		return nil
	}
	err := a.dispatch(ctx, action, args)
	if err != nil {
		a.logger.Debug("action failed", "action", action, "path", a.router.Current(), "error", err)
		a.toast("Error: " + api.Message(err))
	}
	return err
}

func (a *App) dispatch(ctx context.Context, action string, args []string) error {
	switch action {
	case "go", "open":
		if len(args) == 0 {
			return errors.New("usage: go <path>")
		}
		return a.navigate(ctx, args[0])
	case "home":
		return a.navigate(ctx, "/")
	case "reload", "refresh":
		return a.router.Reload(ctx)
	case "logout":
		if err := a.logout(ctx); err != nil {
			return err
		}
		a.toast("Logged out")
		return a.navigate(ctx, "/landing")
	}
	return a.Current().Handle(ctx, action, args)
}

// Render writes the header, any pending message, and the current page.
func (a *App) Render(w io.Writer) {
	a.mu.Lock()
	badge, flash, page := a.badge, a.flash, a.current
	a.flash = ""
	a.mu.Unlock()

	fmt.Fprintf(w, "MindCare | %s | %s\n", badge, a.router.Current())
	fmt.Fprintf(w, "Go to: %s\n", strings.Join(a.navLinks(), "  "))
	if flash != "" {
		fmt.Fprintf(w, "\n* %s\n", flash)
	}
	page.Render(w)
	fmt.Fprintln(w)
}

// navLinks mirrors the role-dependent navigation bar.
func (a *App) navLinks() []string {
	switch a.store.State().Role() {
	case api.RolePatient:
		return []string{"/dashboard", "/mood", "/counselors", "/appointments", "/profile", "logout"}
	case api.RoleCounselor:
		return []string{"/counselor", "/counselor-availability", "/counselor-appointments", "/profile", "logout"}
	case api.RoleAdmin:
		return []string{"/admin", "/profile", "logout"}
	}
	return []string{"/landing", "/login", "/register", "/help", "/crisis"}
}

func badgeFor(me *api.Me) string {
	if me == nil || !me.Authenticated {
		return "Not signed in"
	}
	return fmt.Sprintf("%s (%s)", me.DisplayName(), me.Role)
}

func (a *App) me() *api.Me {
	return a.store.State().Me
}

func (a *App) show(p Page) {
	a.mu.Lock()
	a.current = p
	a.mu.Unlock()
}

func (a *App) toast(msg string) {
	a.mu.Lock()
	a.flash = msg
	a.mu.Unlock()
}

func (a *App) navigate(ctx context.Context, path string) error {
	return a.router.Navigate(ctx, path)
}

// refreshMe stores the current session. A failed lookup leaves an anonymous
// session rather than stopping the shell.
func (a *App) refreshMe(ctx context.Context) {
	me, err := a.api.Me(ctx)
	if err != nil {
		a.logger.Warn("session lookup failed", "error", err)
		me = api.Anonymous()
	}
	a.store.SetState(state.Partial{Me: me})
}

// reloadMe is refreshMe for flows that must surface the failure.
func (a *App) reloadMe(ctx context.Context) error {
	me, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	a.store.SetState(state.Partial{Me: me})
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	return a.reloadMe(ctx)
}

// forgetDirectory drops the cached counselor list after a change to a
// counselor's account or profile.
func (a *App) forgetDirectory(ctx context.Context) {
	inv, ok := a.backend.(invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx); err != nil {
		a.logger.Warn("directory cache invalidation failed", "error", err)
	}
}
