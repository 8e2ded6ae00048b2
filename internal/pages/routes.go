package pages

import (
	"context"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/router"
)

type loader func(ctx context.Context, route router.Route) (Page, error)

func (a *App) registerRoutes() {
	a.router.Define("/", a.routeDefault)

	a.define("/landing", a.loadLanding)
	a.define("/auth", a.loadLogin)
	a.define("/login", a.loadLogin)
	a.define("/register", a.loadRegister)

	a.define("/dashboard", a.loadPatientDashboard)
	a.define("/mood", a.loadMood)
	a.define("/counselors", a.loadCounselors)
	a.define("/appointments", a.loadAppointments)

	a.define("/counselor", a.loadCounselorDashboard)
	a.define("/counselor-availability", a.loadCounselorAvailability)
	a.define("/counselor-appointments", a.loadCounselorAppointments)

	a.define("/admin", a.loadAdminUsers)
	a.define("/profile", a.loadProfile)

	for path, p := range staticPages {
		a.define(path, staticLoader(p))
	}
	a.define(router.NotFoundPath, func(context.Context, router.Route) (Page, error) {
		return notFoundPage{}, nil
	})
}

// define registers load for path. A load error becomes the error page: the
// route itself never fails.
func (a *App) define(path string, load loader) {
	a.router.Define(path, func(ctx context.Context, route router.Route) error {
		p, err := load(ctx, route)
		if err != nil {
			a.logger.Warn("page load failed", "path", route.Path, "error", api.Message(err))
			a.show(&errorPage{err: err})
			return nil
		}
		a.show(p)
		return nil
	})
}

// routeDefault sends each role to its home screen.
func (a *App) routeDefault(ctx context.Context, _ router.Route) error {
	switch a.store.State().Role() {
	case api.RolePatient:
		return a.navigate(ctx, "/mood")
	case api.RoleCounselor:
		return a.navigate(ctx, "/counselor")
	case api.RoleAdmin:
		return a.navigate(ctx, "/admin")
	}
	if a.store.State().Authenticated() {
		return a.navigate(ctx, "/admin")
	}
	return a.navigate(ctx, "/landing")
}
