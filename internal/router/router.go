// Package router maps "#/path?query" locations onto registered page handlers.
package router

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/wolfman30/mindcare/pkg/logging"
)

// NotFoundPath is used when no handler matches.
const NotFoundPath = "/404"

// Route is the resolved location passed to a handler.
type Route struct {
	Path   string
	Params url.Values
	Full   string
}

// Handler renders the page for a route.
type Handler func(ctx context.Context, route Route) error

// Router is a flat path table. Paths match exactly; there are no path
// parameters, only the query string.
type Router struct {
	mu      sync.RWMutex
	routes  map[string]Handler
	current string
	logger  *logging.Logger
}

// New returns an empty router positioned at "/".
func New(logger *logging.Logger) *Router {
	if logger == nil {
		logger = logging.Default()
	}
	return &Router{
		routes:  make(map[string]Handler),
		current: "/",
		logger:  logger,
	}
}

// Define registers h for path, replacing any earlier handler.
func (r *Router) Define(path string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[normalize(path)] = h
}

// Paths returns the registered paths.
func (r *Router) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.routes))
	for p := range r.routes {
		out = append(out, p)
	}
	return out
}

// Current returns the last location navigated to.
func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Resolve splits full into path and query and finds its handler, falling
// back to NotFoundPath. The handler is nil when neither is registered.
func (r *Router) Resolve(full string) (Route, Handler) {
	full = strings.TrimPrefix(strings.TrimSpace(full), "#")
	if full == "" {
		full = "/"
	}
	path, query, _ := strings.Cut(full, "?")
	// Malformed escapes are skipped rather than failing the whole route.
	params, _ := url.ParseQuery(query)

	route := Route{Path: path, Params: params, Full: full}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.routes[path]; ok {
		return route, h
	}
	return route, r.routes[NotFoundPath]
}

// Run resolves full and invokes its handler. Without any handler it is a
// no-op.
func (r *Router) Run(ctx context.Context, full string) error {
	route, h := r.Resolve(full)
	if h == nil {
		r.logger.Debug("no route handler", "path", route.Path)
		return nil
	}
	return h(ctx, route)
}

// Navigate moves to path ("/x" or "x") and runs it.
func (r *Router) Navigate(ctx context.Context, path string) error {
	path = normalize(path)
	r.mu.Lock()
	r.current = path
	r.mu.Unlock()
	return r.Run(ctx, path)
}

// Reload runs the current location again.
func (r *Router) Reload(ctx context.Context) error {
	return r.Run(ctx, r.Current())
}

func normalize(path string) string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "#")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
