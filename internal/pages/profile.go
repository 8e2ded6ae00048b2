package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/router"
)

type profilePage struct {
	app     *App
	profile *api.Profile
}

func (a *App) loadProfile(ctx context.Context, _ router.Route) (Page, error) {
	if err := RequireAuth(a.me()); err != nil {
		return nil, err
	}
	profile, err := a.api.Profile(ctx)
	if err != nil {
		return nil, err
	}
	return &profilePage{app: a, profile: profile}, nil
}

func (p *profilePage) Render(w io.Writer) {
	pr := p.profile
	heading(w, "My Profile")
	muted(w, "Update your information. Changes are visible to admins.")
	fmt.Fprintf(w, "  Email: %s\n", pr.Email)
	fmt.Fprintf(w, "  Name: %s\n", orDash(pr.Name))
	fmt.Fprintf(w, "  Role: %s\n", pr.Role)
	fields := `save [name="..."]`
	switch pr.Role {
	case api.RoleCounselor:
		fmt.Fprintf(w, "  Specialty: %s\n", orDash(pr.Specialty))
		fields += ` [specialty="..."]`
	case api.RolePatient:
		fmt.Fprintf(w, "  Emergency contact: %s\n", orDash(pr.EmergencyContact))
		fields += ` [contact="..."]`
	}
	actions(w, fields+"   an empty value clears specialty or contact")
}

func (p *profilePage) Handle(ctx context.Context, action string, args []string) error {
	if action != "save" {
		return unknownAction(action)
	}
	named, pos := splitArgs(args)
	if len(pos) > 0 {
		return errors.New(`use key=value arguments, e.g. save name="Sam Patel"`)
	}
	form := profileForm{
		Name:             strings.TrimSpace(named["name"]),
		Specialty:        strings.TrimSpace(named["specialty"]),
		EmergencyContact: strings.TrimSpace(named["contact"]),
	}
	if err := validateForm(form); err != nil {
		return err
	}

	req := api.ProfileUpdate{Name: form.Name}
	if _, ok := named["specialty"]; ok && p.profile.Role == api.RoleCounselor {
		req.Specialty = &form.Specialty
	}
	if _, ok := named["contact"]; ok && p.profile.Role == api.RolePatient {
		req.EmergencyContact = &form.EmergencyContact
	}
	updated, err := p.app.api.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	p.profile = updated
	if updated.Role == api.RoleCounselor {
		p.app.forgetDirectory(ctx)
	}
	// The header badge shows the name.
	if err := p.app.reloadMe(ctx); err != nil {
		return err
	}
	p.app.toast("Profile updated")
	return nil
}
