package pages

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
	"github.com/wolfman30/mindcare/internal/router"
)

type counselorDashboardPage struct {
	app      *App
	name     string
	patients []api.PatientSummary
	hours    []availability.Slot
	query    string

	// selected is the patient whose mood is open; zero means none.
	selected int64
	moods    []api.MoodEntry
}

func (a *App) loadCounselorDashboard(ctx context.Context, _ router.Route) (Page, error) {
	me := a.me()
	if err := RequireRole(me, api.RoleCounselor); err != nil {
		return nil, err
	}
	patients, err := a.api.MyPatients(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := a.api.MyAvailability(ctx)
	if err != nil {
		return nil, err
	}
	return &counselorDashboardPage{
		app:      a,
		name:     me.DisplayName(),
		patients: patients,
		hours:    availability.SortSlots(raw),
	}, nil
}

func (p *counselorDashboardPage) filtered() []api.PatientSummary {
	out := make([]api.PatientSummary, 0, len(p.patients))
	for _, pt := range p.patients {
		hay := pt.EmergencyContact
		if pt.User != nil {
			hay = pt.User.Name + " " + pt.User.Email + " " + hay
		}
		if includesText(hay, p.query) {
			out = append(out, pt)
		}
	}
	return out
}

func (p *counselorDashboardPage) patient(id int64) *api.PatientSummary {
	for i := range p.patients {
		if p.patients[i].ID == id {
			return &p.patients[i]
		}
	}
	return nil
}

func (p *counselorDashboardPage) Render(w io.Writer) {
	heading(w, "Counselor Dashboard")
	muted(w, "Welcome, "+p.name)

	subheading(w, "Weekly hours")
	if len(p.hours) == 0 {
		muted(w, "No availability published. Type 'availability' to add hours.")
	}
	for _, s := range p.hours {
		muted(w, s.String())
	}

	subheading(w, fmt.Sprintf("My patients (%d)", len(p.patients)))
	fmt.Fprintf(w, "  Search %q\n", p.query)
	list := p.filtered()
	rows := make([][]string, 0, len(list))
	for _, pt := range list {
		email := ""
		if pt.User != nil {
			email = pt.User.Email
		}
		rows = append(rows, []string{strconv.FormatInt(pt.ID, 10), pt.DisplayName(), email, orDash(pt.EmergencyContact)})
	}
	empty := "No patients match your search."
	if len(p.patients) == 0 {
		empty = "No patients yet. Patients appear once assigned to you or after booking."
	}
	table(w, []string{"ID", "PATIENT", "EMAIL", "EMERGENCY"}, rows, empty)

	if p.selected != 0 {
		name := "Patient #" + strconv.FormatInt(p.selected, 10)
		if pt := p.patient(p.selected); pt != nil {
			name = pt.DisplayName()
		}
		subheading(w, "Mood: "+name)
		renderMoodSummary(w, p.moods)
	}

	actions(w,
		"search <text>               match name, email or emergency contact",
		"clear                       reset the search",
		"mood <patient id>           view a patient's mood",
		"availability                edit weekly hours",
		"appointments                manage appointments",
	)
}

func (p *counselorDashboardPage) Handle(ctx context.Context, action string, args []string) error {
	switch action {
	case "search":
		p.query = strings.Join(args, " ")
		return nil
	case "clear":
		p.query = ""
		return nil
	case "mood":
		id, err := argID(args)
		if err != nil {
			return err
		}
		moods, err := p.app.api.PatientMood(ctx, id)
		if err != nil {
			return err
		}
		p.selected, p.moods = id, moods
		return nil
	case "availability":
		return p.app.navigate(ctx, "/counselor-availability")
	case "appointments":
		return p.app.navigate(ctx, "/counselor-appointments")
	}
	return unknownAction(action)
}

type counselorAppointmentsPage struct {
	app          *App
	appointments []api.Appointment
	filter       appointmentFilter
}

func (a *App) loadCounselorAppointments(ctx context.Context, _ router.Route) (Page, error) {
	if err := RequireRole(a.me(), api.RoleCounselor); err != nil {
		return nil, err
	}
	p := &counselorAppointmentsPage{app: a}
	if err := p.reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *counselorAppointmentsPage) reload(ctx context.Context) error {
	list, err := p.app.api.CounselorAppointments(ctx)
	if err != nil {
		return err
	}
	p.appointments = list
	return nil
}

func (p *counselorAppointmentsPage) Render(w io.Writer) {
	heading(w, "Appointments")
	muted(w, "Confirm or cancel scheduled appointments.")
	p.filter.render(w)

	list := p.filter.apply(p.appointments)
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		name, email := "", ""
		if a.Patient != nil {
			name, email = a.Patient.DisplayName(), a.Patient.Email
		}
		rows = append(rows, []string{
			strconv.FormatInt(a.ID, 10), a.AppointmentDate, a.AppointmentTime, name, email, string(a.Status),
		})
	}
	table(w, []string{"ID", "DATE", "TIME", "PATIENT", "EMAIL", "STATUS"}, rows, "No appointments match your search.")

	actions(w,
		"confirm <id>                confirm an appointment",
		"cancel <id>                 cancel an appointment",
		"search <text> | status <all|scheduled|confirmed|canceled> | clear",
	)
}

func (p *counselorAppointmentsPage) Handle(ctx context.Context, action string, args []string) error {
	if ok, err := p.filter.handle(action, args); ok {
		return err
	}
	var status api.AppointmentStatus
	switch action {
	case "confirm":
		status = api.StatusConfirmed
	case "cancel":
		status = api.StatusCanceled
	default:
		return unknownAction(action)
	}
	id, err := argID(args)
	if err != nil {
		return err
	}
	if _, err := p.app.api.SetAppointmentStatus(ctx, id, status); err != nil {
		return err
	}
	p.app.toast("Appointment updated")
	return p.reload(ctx)
}
