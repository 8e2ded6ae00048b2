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
	"github.com/wolfman30/mindcare/internal/router"
)

// availabilityPage stages weekly hours locally and saves them as one
// replacement.
type availabilityPage struct {
	app   *App
	draft *availability.SlotDraft
	saved []availability.Slot
}

func (a *App) loadCounselorAvailability(ctx context.Context, _ router.Route) (Page, error) {
	if err := RequireRole(a.me(), api.RoleCounselor); err != nil {
		return nil, err
	}
	raw, err := a.api.MyAvailability(ctx)
	if err != nil {
		return nil, err
	}
	p := &availabilityPage{app: a, draft: availability.NewSlotDraft(raw)}
	p.saved = p.draft.Slots()
	return p, nil
}

// dirty reports whether the staged list differs from the last saved one.
func (p *availabilityPage) dirty() bool {
	staged := p.draft.Slots()
	if len(staged) != len(p.saved) {
		return true
	}
	for i := range staged {
		if staged[i].Key() != p.saved[i].Key() {
			return true
		}
	}
	return false
}

func (p *availabilityPage) Render(w io.Writer) {
	heading(w, "My Availability")
	muted(w, "Add weekly slots, then save. Saving replaces your whole schedule.")
	if p.dirty() {
		muted(w, "You have unsaved changes.")
	}

	n := 0
	week := p.draft.ByDay()
	for day, slots := range week {
		subheading(w, availability.Weekday(day).Name())
		if len(slots) == 0 {
			muted(w, "No slots")
		}
		for _, s := range slots {
			n++
			fmt.Fprintf(w, "  %d) %s - %s\n", n, availability.FormatTime12h(s.StartTime), availability.FormatTime12h(s.EndTime))
		}
	}

	actions(w,
		"add <YYYY-MM-DD> <HH:MM> <HH:MM>   add a slot on that date's weekday",
		"add-day <weekday> <HH:MM> <HH:MM>  add a slot on a weekday (0-6 or name)",
		"remove <n>                         remove slot n",
		"save                               save the schedule",
		"reset                              discard unsaved changes",
	)
}

func (p *availabilityPage) Handle(ctx context.Context, action string, args []string) error {
	switch action {
	case "add":
		date, start, end := argAt(args, 0), argAt(args, 1), argAt(args, 2)
		_, err := p.draft.Add(date, start, end)
		return err
	case "add-day":
		day, err := parseWeekday(argAt(args, 0))
		if err != nil {
			return err
		}
		_, err = p.draft.Add(availability.NextDateForWeekday(p.app.now(), day), argAt(args, 1), argAt(args, 2))
		return err
	case "remove":
		n, err := strconv.Atoi(argAt(args, 0))
		slots := p.draft.Slots()
		if err != nil || n < 1 || n > len(slots) {
			return errors.New("no such slot")
		}
		// ByDay and Slots share the canonical order, so numbering matches.
		p.draft.Remove(slots[n-1].Key())
		return nil
	case "save":
		saved, err := p.app.api.ReplaceAvailability(ctx, p.draft.Slots())
		if err != nil {
			return err
		}
		p.draft.Reset(saved)
		p.saved = p.draft.Slots()
		p.app.toast("Availability saved")
		return nil
	case "reset":
		raw, err := p.app.api.MyAvailability(ctx)
		if err != nil {
			return err
		}
		p.draft.Reset(raw)
		p.saved = p.draft.Slots()
		p.app.toast("Changes discarded")
		return nil
	}
	return unknownAction(action)
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// parseWeekday accepts 0-6 or a day name or its three-letter prefix.
func parseWeekday(v string) (availability.Weekday, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if n, err := strconv.Atoi(v); err == nil {
		if d := availability.Weekday(n); d.Valid() {
			return d, nil
		}
		return availability.InvalidWeekday, availability.ErrInvalidWeekday
	}
	for d := availability.Sunday; d <= availability.Saturday; d++ {
		if v != "" && (v == strings.ToLower(d.Name()) || v == strings.ToLower(d.ShortName())) {
			return d, nil
		}
	}
	return availability.InvalidWeekday, fmt.Errorf("unknown weekday %q", v)
}
