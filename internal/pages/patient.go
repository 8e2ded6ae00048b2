package pages

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
	"github.com/wolfman30/mindcare/internal/router"
)

// dashboardAppointments is how many upcoming appointments the dashboard lists.
const dashboardAppointments = 3

type patientDashboardPage struct {
	app          *App
	name         string
	today        string
	moods        []api.MoodEntry
	appointments []api.Appointment
	counselors   []api.Counselor
}

func (a *App) loadPatientDashboard(ctx context.Context, _ router.Route) (Page, error) {
	me := a.me()
	if err := RequireRole(me, api.RolePatient); err != nil {
		return nil, err
	}
	moods, err := a.api.MoodHistory(ctx)
	if err != nil {
		return nil, err
	}
	appointments, err := a.backend.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	counselors, err := a.backend.ListCounselors(ctx)
	if err != nil {
		return nil, err
	}
	name := me.Name
	if name == "" {
		name = "Patient"
	}
	return &patientDashboardPage{
		app:          a,
		name:         name,
		today:        availability.Today(a.now()),
		moods:        moods,
		appointments: appointments,
		counselors:   counselors,
	}, nil
}

// upcoming returns non-canceled appointments from today on.
func (p *patientDashboardPage) upcoming() []api.Appointment {
	var out []api.Appointment
	for _, a := range p.appointments {
		if a.AppointmentDate >= p.today && !a.IsCanceled() {
			out = append(out, a)
		}
	}
	return out
}

func (p *patientDashboardPage) Render(w io.Writer) {
	heading(w, "Welcome back, "+p.name)
	muted(w, "Here's your mental health overview.")

	latest, avg := "-", "-"
	if n := len(p.moods); n > 0 {
		r := p.moods[n-1].Rating
		latest = fmt.Sprintf("%d (%s)", r, moodLabel(r))
		avg = strconv.FormatFloat(summarizeMoods(p.moods).Average, 'f', 1, 64)
	}
	upcoming := p.upcoming()

	subheading(w, "Overview")
	fmt.Fprintf(w, "  Latest mood: %s\n", latest)
	fmt.Fprintf(w, "  Average mood: %s\n", avg)
	fmt.Fprintf(w, "  Upcoming appointments: %d\n", len(upcoming))
	fmt.Fprintf(w, "  Counselors: %d\n", len(p.counselors))

	subheading(w, "Next appointments")
	if len(upcoming) > dashboardAppointments {
		upcoming = upcoming[:dashboardAppointments]
	}
	rows := make([][]string, 0, len(upcoming))
	for _, a := range upcoming {
		counselor := "Unknown"
		if a.Counselor != nil {
			counselor = a.Counselor.DisplayName()
		}
		rows = append(rows, []string{
			shortDate(a.AppointmentDate) + " at " + availability.FormatTime12h(a.AppointmentTime),
			counselor,
			string(a.Status),
		})
	}
	table(w, []string{"WHEN", "COUNSELOR", "STATUS"}, rows, "No upcoming appointments")

	actions(w,
		"mood                        log how you feel",
		"book                        book an appointment",
		"counselors                  browse counselors",
	)
}

func (p *patientDashboardPage) Handle(ctx context.Context, action string, _ []string) error {
	switch action {
	case "mood":
		return p.app.navigate(ctx, "/mood")
	case "book", "appointments":
		return p.app.navigate(ctx, "/appointments")
	case "counselors":
		return p.app.navigate(ctx, "/counselors")
	}
	return unknownAction(action)
}
