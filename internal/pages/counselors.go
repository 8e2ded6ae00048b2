package pages

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
	"github.com/wolfman30/mindcare/internal/router"
)

// Availability filter values.
const (
	availAll         = "all"
	availToday       = "today"
	availUnavailable = "unavailable"
)

type directoryEntry struct {
	counselor api.Counselor
	slots     []availability.Slot
}

type directoryStats struct {
	Total            int
	AvailableToday   int
	UnavailableToday int
	Specialties      int
}

// directory is the searchable counselor list with each counselor's hours.
type directory struct {
	entries []directoryEntry
	today   availability.Weekday

	query     string
	specialty string
	avail     string
}

func (d *directory) availableToday(e directoryEntry) bool {
	return availability.IsAvailableOn(e.slots, d.today)
}

// filtered applies the search box, specialty and availability filters.
func (d *directory) filtered() []directoryEntry {
	out := make([]directoryEntry, 0, len(d.entries))
	for _, e := range d.entries {
		c := e.counselor
		if d.specialty != "" && d.specialty != availAll && c.Specialty != d.specialty {
			continue
		}
		switch d.avail {
		case availToday:
			if !d.availableToday(e) {
				continue
			}
		case availUnavailable:
			if d.availableToday(e) {
				continue
			}
		}
		if !includesText(c.Name+" "+c.Email+" "+c.Specialty, d.query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (d *directory) specialties() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range d.entries {
		s := strings.TrimSpace(e.counselor.Specialty)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (d *directory) stats() directoryStats {
	st := directoryStats{Total: len(d.entries), Specialties: len(d.specialties())}
	for _, e := range d.entries {
		if d.availableToday(e) {
			st.AvailableToday++
		}
	}
	st.UnavailableToday = st.Total - st.AvailableToday
	return st
}

type counselorsPage struct {
	app *App
	dir directory
}

func (a *App) loadCounselors(ctx context.Context, route router.Route) (Page, error) {
	if err := RequireRole(a.me(), api.RolePatient); err != nil {
		return nil, err
	}
	counselors, err := a.backend.ListCounselors(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]directoryEntry, 0, len(counselors))
	for _, c := range counselors {
		raw, err := a.backend.CounselorAvailability(ctx, c.ID, nil)
		if err != nil {
			// One counselor's hours failing should not hide the directory.
			a.logger.Warn("counselor availability unavailable", "counselor_id", c.ID, "error", err)
			raw = nil
		}
		entries = append(entries, directoryEntry{counselor: c, slots: availability.SortSlots(raw)})
	}
	return &counselorsPage{
		app: a,
		dir: directory{
			entries:   entries,
			today:     availability.Weekday(a.now().In(time.Local).Weekday()),
			query:     route.Params.Get("q"),
			specialty: route.Params.Get("specialty"),
			avail:     route.Params.Get("availability"),
		},
	}, nil
}

func (p *counselorsPage) Render(w io.Writer) {
	heading(w, "Find a Counselor")
	st := p.dir.stats()
	fmt.Fprintf(w, "  Counselors %d  Available today %d  Unavailable today %d  Specialties %d\n",
		st.Total, st.AvailableToday, st.UnavailableToday, st.Specialties)
	fmt.Fprintf(w, "  Search %q  Specialty %s  Availability %s\n",
		p.dir.query, filterLabel(p.dir.specialty), filterLabel(p.dir.avail))
	if specs := p.dir.specialties(); len(specs) > 0 {
		fmt.Fprintf(w, "  Specialties: %s\n", strings.Join(specs, ", "))
	}

	list := p.dir.filtered()
	if len(list) == 0 {
		fmt.Fprintln(w)
		muted(w, "No counselors match your filters.")
	}
	for _, e := range list {
		c := e.counselor
		today := "Unavailable today"
		if p.dir.availableToday(e) {
			today = "Available today"
		}
		subheading(w, fmt.Sprintf("#%d %s", c.ID, c.DisplayName()))
		muted(w, fmt.Sprintf("%s | %s | %s", c.Email, orDash(c.Specialty), today))
		if len(e.slots) == 0 {
			muted(w, "No weekly hours published.")
		}
		for _, s := range e.slots {
			muted(w, s.String())
		}
	}

	actions(w,
		"search <text>               match name, email or specialty",
		`specialty <name|all>        e.g. specialty "Anxiety & stress"`,
		"availability <all|today|unavailable>",
		"clear                       reset filters",
		"book <counselor id>         start a booking",
	)
}

func (p *counselorsPage) Handle(ctx context.Context, action string, args []string) error {
	switch action {
	case "search":
		p.dir.query = strings.Join(args, " ")
		return nil
	case "specialty":
		p.dir.specialty = strings.TrimSpace(strings.Join(args, " "))
		return nil
	case "availability":
		v := availAll
		if len(args) > 0 {
			v = strings.ToLower(args[0])
		}
		switch v {
		case availAll, availToday, availUnavailable:
			p.dir.avail = v
			return nil
		}
		return fmt.Errorf("availability must be one of: %s, %s, %s", availAll, availToday, availUnavailable)
	case "clear":
		p.dir.query, p.dir.specialty, p.dir.avail = "", "", ""
		return nil
	case "book":
		id, err := argID(args)
		if err != nil {
			return err
		}
		return p.app.navigate(ctx, "/appointments?counselor="+strconv.FormatInt(id, 10))
	}
	return unknownAction(action)
}
