package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wolfman30/mindcare/internal/router"
)

type landingSection struct {
	id    string
	title string
	lines []string
}

var landingSections = []landingSection{
	{
		id:    "solutions",
		title: "Solutions",
		lines: []string{
			"Patients: log a daily mood, find counselors by specialty and book sessions.",
			"Counselors: publish weekly hours, follow patient mood and confirm appointments.",
			"Admins: create counselors, manage roles and deactivate accounts.",
		},
	},
	{
		id:    "resources",
		title: "Resources",
		lines: []string{
			"Help center: /help",
			"Crisis support: /crisis",
			"Privacy, HIPAA and terms: /privacy /hipaa /terms",
		},
	},
	{
		id:    "about",
		title: "About",
		lines: []string{
			"MindCare keeps mood tracking, scheduling and care coordination in one place.",
			"Contact: /contact",
		},
	},
}

type landingPage struct {
	app     *App
	section string
}

func (a *App) loadLanding(_ context.Context, route router.Route) (Page, error) {
	return &landingPage{app: a, section: route.Params.Get("section")}, nil
}

// Render shows the requested section alone when it exists, else everything.
func (p *landingPage) Render(w io.Writer) {
	heading(w, "MindCare")
	fmt.Fprintln(w, "Track mood, book sessions, and keep care organized for patients, counselors and admins in one simple system.")
	for _, s := range landingSections {
		if p.section != "" && p.hasSection() && s.id != p.section {
			continue
		}
		subheading(w, s.title)
		for _, l := range s.lines {
			muted(w, l)
		}
	}
	actions(w,
		"login                       sign in",
		"register                    create a patient account",
		"section <solutions|resources|about>",
		"demo                        see what MindCare does",
	)
}

func (p *landingPage) hasSection() bool {
	for _, s := range landingSections {
		if s.id == p.section {
			return true
		}
	}
	return false
}

func (p *landingPage) Handle(ctx context.Context, action string, args []string) error {
	switch action {
	case "login":
		return p.app.navigate(ctx, "/login")
	case "register":
		return p.app.navigate(ctx, "/register")
	case "demo":
		return p.app.navigate(ctx, "/landing?section=solutions")
	case "section":
		if len(args) == 0 {
			return p.app.navigate(ctx, "/landing")
		}
		return p.app.navigate(ctx, "/landing?section="+strings.ToLower(args[0]))
	}
	return unknownAction(action)
}

// staticPage is an informational screen with no actions.
type staticPage struct {
	title    string
	intro    string
	sections []landingSection
}

func (p *staticPage) Render(w io.Writer) {
	heading(w, p.title)
	fmt.Fprintln(w, p.intro)
	for _, s := range p.sections {
		subheading(w, s.title)
		for _, l := range s.lines {
			muted(w, l)
		}
	}
}

func (p *staticPage) Handle(_ context.Context, action string, _ []string) error {
	return unknownAction(action)
}

func staticLoader(p *staticPage) loader {
	return func(context.Context, router.Route) (Page, error) { return p, nil }
}

const supportPhone = "+250786243990"

var staticPages = map[string]*staticPage{
	"/crisis": {
		title: "Crisis Support",
		intro: "If you or someone else is in immediate danger, seek emergency help right now.",
		sections: []landingSection{
			{title: "Call now", lines: []string{"Call " + supportPhone}},
		},
	},
	"/help": {
		title: "Help Center",
		intro: "Quick answers and guidance for using MindCare.",
		sections: []landingSection{
			{title: "Patients", lines: []string{"Track mood, find counselors by specialty, check availability, and book appointments."}},
			{title: "Counselors", lines: []string{"Set weekly availability and manage your appointments and patients."}},
			{title: "Admins", lines: []string{"Create counselors, activate or deactivate accounts, and delete safely."}},
			{title: "Troubleshooting", lines: []string{"If something looks stuck, type 'reload' and check that the backend is reachable."}},
		},
	},
	"/hipaa": {
		title: "HIPAA Compliance",
		intro: "This is an informational placeholder.",
		sections: []landingSection{
			{title: "Important", lines: []string{
				"Use in a real healthcare environment requires proper security, audit logs,",
				"access controls, encryption, and policies.",
			}},
		},
	},
	"/privacy": {
		title: "Privacy Policy",
		intro: "Replace with your real policy text.",
		sections: []landingSection{
			{title: "What we store", lines: []string{"Account info (email/name), mood entries, appointments, and counselor availability."}},
			{title: "How we use it", lines: []string{"To provide the app features only."}},
			{title: "Contact", lines: []string{"Call " + supportPhone}},
		},
	},
	"/terms": {
		title: "Terms of Service",
		intro: "Replace with your real terms.",
		sections: []landingSection{
			{title: "Use responsibly", lines: []string{"MindCare is not a substitute for professional emergency services."}},
			{title: "Accounts", lines: []string{"Keep your credentials private."}},
		},
	},
	"/contact": {
		title: "Contact Us",
		intro: "We're here to help.",
		sections: []landingSection{
			{title: "Phone", lines: []string{"Call " + supportPhone, "If you are in immediate danger, contact local emergency services."}},
		},
	},
}
