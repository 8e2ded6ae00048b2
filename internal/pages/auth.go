package pages

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/router"
)

type loginPage struct {
	app *App
}

func (a *App) loadLogin(context.Context, router.Route) (Page, error) {
	return &loginPage{app: a}, nil
}

func (p *loginPage) Render(w io.Writer) {
	heading(w, "Login")
	muted(w, "No account yet? Type 'register' to sign up as a patient.")
	actions(w,
		"login <email> <password>",
		"register                    go to registration",
	)
}

func (p *loginPage) Handle(ctx context.Context, action string, args []string) error {
	switch action {
	case "login":
		named, pos := splitArgs(args)
		form := loginForm{Email: named["email"], Password: named["password"]}
		if len(pos) > 0 && form.Email == "" {
			form.Email = pos[0]
		}
		if len(pos) > 1 && form.Password == "" {
			form.Password = pos[1]
		}
		form.Email = strings.TrimSpace(form.Email)
		if err := validateForm(form); err != nil {
			return err
		}
		if _, err := p.app.api.Login(ctx, form.Email, form.Password); err != nil {
			return err
		}
		if err := p.app.reloadMe(ctx); err != nil {
			return err
		}
		p.app.toast("Logged in")
		return p.app.navigate(ctx, "/")
	case "register":
		return p.app.navigate(ctx, "/register")
	}
	return unknownAction(action)
}

type registerPage struct {
	app *App
}

func (a *App) loadRegister(context.Context, router.Route) (Page, error) {
	return &registerPage{app: a}, nil
}

func (p *registerPage) Render(w io.Writer) {
	heading(w, "Register (Patient)")
	muted(w, "Counselors and admins are created by an existing admin.")
	actions(w,
		`register email=<email> password=<password> [name="Full Name"] [contact="Emergency contact"]`,
		"login                       back to login",
	)
}

func (p *registerPage) Handle(ctx context.Context, action string, args []string) error {
	switch action {
	case "register":
		named, pos := splitArgs(args)
		if len(pos) > 0 {
			return errors.New(`use key=value arguments, e.g. register email=sam@example.com password=secret name="Sam"`)
		}
		form := registerForm{
			Name:             strings.TrimSpace(named["name"]),
			Email:            strings.TrimSpace(named["email"]),
			Password:         named["password"],
			EmergencyContact: strings.TrimSpace(named["contact"]),
		}
		if err := validateForm(form); err != nil {
			return err
		}
		_, err := p.app.api.Register(ctx, api.RegisterRequest{
			Email:            form.Email,
			Password:         form.Password,
			Name:             form.Name,
			Role:             api.RolePatient,
			EmergencyContact: form.EmergencyContact,
		})
		if err != nil {
			return err
		}
		if err := p.app.reloadMe(ctx); err != nil {
			return err
		}
		p.app.toast("Registered and logged in")
		return p.app.navigate(ctx, "/")
	case "login":
		return p.app.navigate(ctx, "/login")
	}
	return unknownAction(action)
}
