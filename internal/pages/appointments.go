package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
	"github.com/wolfman30/mindcare/internal/booking"
	"github.com/wolfman30/mindcare/internal/router"
)

// appointmentFilter is the search box and status select above an
// appointment table.
type appointmentFilter struct {
	query  string
	status string
}

func (f *appointmentFilter) handle(action string, args []string) (bool, error) {
	switch action {
	case "search":
		f.query = strings.Join(args, " ")
		return true, nil
	case "status":
		form := statusFilterForm{Status: "all"}
		if len(args) > 0 {
			form.Status = strings.ToLower(args[0])
		}
		if err := validateForm(form); err != nil {
			return true, err
		}
		f.status = form.Status
		return true, nil
	case "clear":
		f.query, f.status = "", ""
		return true, nil
	}
	return false, nil
}

func (f *appointmentFilter) apply(list []api.Appointment) []api.Appointment {
	return booking.FilterAppointments(list, f.query, f.status)
}

func (f *appointmentFilter) render(w io.Writer) {
	fmt.Fprintf(w, "  Search %q  Status %s\n", f.query, filterLabel(f.status))
}

type appointmentsPage struct {
	app      *App
	workflow *booking.Workflow
	filter   appointmentFilter
}

func (a *App) loadAppointments(ctx context.Context, route router.Route) (Page, error) {
	if err := RequireRole(a.me(), api.RolePatient); err != nil {
		return nil, err
	}
	wf := booking.NewWorkflow(a.backend, a.logger,
		booking.WithMetrics(a.metrics),
		booking.WithClock(a.now),
	)
	if err := wf.Load(ctx); err != nil {
		return nil, err
	}
	p := &appointmentsPage{app: a, workflow: wf}
	if v := route.Params.Get("counselor"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			err = wf.SelectCounselor(ctx, id)
		}
		if err != nil {
			a.logger.Warn("preselected counselor ignored", "counselor", v, "error", err)
		}
	}
	return p, nil
}

func (p *appointmentsPage) Render(w io.Writer) {
	snap := p.workflow.Snapshot()

	heading(w, "Book an Appointment")
	rows := make([][]string, 0, len(snap.Counselors))
	for _, c := range snap.Counselors {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.DisplayName(), orDash(c.Specialty)})
	}
	table(w, []string{"ID", "COUNSELOR", "SPECIALTY"}, rows, "No counselors available.")

	if snap.Draft.CounselorID != nil {
		name := "#" + strconv.FormatInt(*snap.Draft.CounselorID, 10)
		if snap.Counselor != nil {
			name = snap.Counselor.DisplayName()
		}
		subheading(w, "Your booking")
		fmt.Fprintf(w, "  Counselor: %s\n", name)
		fmt.Fprintf(w, "  Date: %s\n", orDash(snap.Draft.AppointmentDate))
		fmt.Fprintf(w, "  Time: %s\n", orDash(snap.Draft.AppointmentTime))
		switch {
		case snap.Loading:
			muted(w, "Checking availability...")
		case len(snap.Suggestions) > 0:
			fmt.Fprintln(w, "  Suggested slots:")
			for i, s := range snap.Suggestions {
				fmt.Fprintf(w, "    %d) %s - %s\n", i+1, availability.FormatTime12h(s.StartTime), availability.FormatTime12h(s.EndTime))
			}
		}
		if snap.Notice != "" {
			muted(w, snap.Notice)
		}
	}

	subheading(w, "My Appointments")
	p.filter.render(w)
	list := p.filter.apply(snap.Appointments)
	arows := make([][]string, 0, len(list))
	for _, a := range list {
		counselor := "Unknown"
		if a.Counselor != nil {
			counselor = a.Counselor.DisplayName()
		}
		action := ""
		if booking.CanCancel(a) {
			action = "cancel " + strconv.FormatInt(a.ID, 10)
		}
		arows = append(arows, []string{
			strconv.FormatInt(a.ID, 10), a.AppointmentDate, availability.FormatTime12h(a.AppointmentTime),
			counselor, string(a.Status), action,
		})
	}
	empty := "No appointments match your search."
	if len(snap.Appointments) == 0 {
		empty = "No appointments yet."
	}
	table(w, []string{"ID", "DATE", "TIME", "COUNSELOR", "STATUS", ""}, arows, empty)

	actions(w,
		"counselor <id>              choose a counselor",
		"date <YYYY-MM-DD>           choose a date",
		"check                       check availability again",
		"slot <n>                    use suggested slot n",
		"time <HH:MM>                request a specific time",
		"book                        submit the booking",
		"deselect                    discard the booking",
		"cancel <appointment id>     cancel an appointment",
		"search <text> | status <all|scheduled|confirmed|canceled> | clear",
	)
}

func (p *appointmentsPage) Handle(ctx context.Context, action string, args []string) error {
	if ok, err := p.filter.handle(action, args); ok {
		return err
	}
	wf := p.workflow
	switch action {
	case "counselor":
		id, err := argID(args)
		if err != nil {
			return err
		}
		return wf.SelectCounselor(ctx, id)
	case "date":
		if len(args) == 0 {
			return booking.ErrNoDate
		}
		return wf.ChangeDate(ctx, args[0])
	case "check":
		return wf.CheckAvailability(ctx)
	case "slot":
		if len(args) == 0 {
			return errors.New("usage: slot <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return booking.ErrNoSuchSlot
		}
		return wf.ChooseSlot(n - 1)
	case "time":
		return wf.SetTime(strings.Join(args, ""))
	case "book":
		if _, err := wf.Submit(ctx); err != nil {
			return err
		}
		p.app.toast("Appointment booked")
		return nil
	case "deselect":
		return wf.CancelSelection()
	case "cancel":
		id, err := argID(args)
		if err != nil {
			return err
		}
		if err := wf.CancelAppointment(ctx, id); err != nil {
			return err
		}
		p.app.toast("Appointment canceled")
		return nil
	}
	return unknownAction(action)
}
