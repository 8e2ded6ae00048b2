package pages

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/router"
)

// Trend directions.
const (
	trendUp      = "up"
	trendDown    = "down"
	trendNeutral = "neutral"
)

// chartDays is how many recent entries the mood chart shows.
const chartDays = 14

// moodStats summarizes a mood history ordered oldest first.
type moodStats struct {
	Count   int
	Average float64
	Highest int
	Lowest  int
	Trend   string
}

func summarizeMoods(entries []api.MoodEntry) moodStats {
	st := moodStats{Count: len(entries), Trend: trendNeutral}
	if len(entries) == 0 {
		return st
	}
	sum := 0
	st.Highest, st.Lowest = entries[0].Rating, entries[0].Rating
	for _, e := range entries {
		sum += e.Rating
		st.Highest = max(st.Highest, e.Rating)
		st.Lowest = min(st.Lowest, e.Rating)
	}
	st.Average = roundTenth(float64(sum) / float64(len(entries)))

	// The last three entries against the three before them.
	if n := len(entries); n >= 6 {
		recent := averageRating(entries[n-3:])
		previous := averageRating(entries[n-6 : n-3])
		switch {
		case recent > previous+0.5:
			st.Trend = trendUp
		case recent < previous-0.5:
			st.Trend = trendDown
		}
	}
	return st
}

func averageRating(entries []api.MoodEntry) float64 {
	sum := 0
	for _, e := range entries {
		sum += e.Rating
	}
	return float64(sum) / float64(len(entries))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func moodLabel(rating int) string {
	switch {
	case rating <= 2:
		return "Very Low"
	case rating <= 4:
		return "Low"
	case rating <= 6:
		return "Neutral"
	case rating <= 8:
		return "Good"
	}
	return "Excellent"
}

func trendLabel(trend string) string {
	switch trend {
	case trendUp:
		return "Improving"
	case trendDown:
		return "Declining"
	}
	return "Stable"
}

// renderMoodSummary prints the stats block and the recent-days chart.
func renderMoodSummary(w io.Writer, entries []api.MoodEntry) {
	st := summarizeMoods(entries)
	if st.Count == 0 {
		muted(w, "No mood entries yet.")
		return
	}
	fmt.Fprintf(w, "  Average %.1f  Highest %d  Lowest %d  Trend %s  Entries %d\n",
		st.Average, st.Highest, st.Lowest, trendLabel(st.Trend), st.Count)

	recent := entries
	if len(recent) > chartDays {
		recent = recent[len(recent)-chartDays:]
	}
	subheading(w, fmt.Sprintf("Last %d days", len(recent)))
	for _, e := range recent {
		fmt.Fprintf(w, "  %-7s %-10s %2d %s\n", shortDate(e.EntryDate), strings.Repeat("#", e.Rating), e.Rating, moodLabel(e.Rating))
	}
}

type moodPage struct {
	app     *App
	entries []api.MoodEntry
}

func (a *App) loadMood(ctx context.Context, _ router.Route) (Page, error) {
	if err := RequireRole(a.me(), api.RolePatient); err != nil {
		return nil, err
	}
	p := &moodPage{app: a}
	if err := p.reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *moodPage) reload(ctx context.Context) error {
	entries, err := p.app.api.MoodHistory(ctx)
	if err != nil {
		return err
	}
	p.entries = entries
	return nil
}

func (p *moodPage) Render(w io.Writer) {
	heading(w, "Mood Tracker")
	muted(w, "How are you feeling today? One entry per day; logging again updates it.")
	subheading(w, "Summary")
	renderMoodSummary(w, p.entries)

	subheading(w, "History")
	rows := make([][]string, 0, len(p.entries))
	for i := len(p.entries) - 1; i >= 0; i-- {
		e := p.entries[i]
		rows = append(rows, []string{e.EntryDate, strconv.Itoa(e.Rating), moodLabel(e.Rating), orDash(e.Notes)})
	}
	table(w, []string{"DATE", "RATING", "MOOD", "NOTES"}, rows, "Your mood history will appear here.")

	actions(w,
		`log <1-10> [notes...]       log today's mood`,
		`log rating=<1-10> [notes="..."] [date=YYYY-MM-DD]`,
	)
}

func (p *moodPage) Handle(ctx context.Context, action string, args []string) error {
	if action != "log" {
		return unknownAction(action)
	}
	named, pos := splitArgs(args)
	form := moodForm{
		Rating:    parseRating(named["rating"]),
		Notes:     strings.TrimSpace(named["notes"]),
		EntryDate: strings.TrimSpace(named["date"]),
	}
	if _, ok := named["rating"]; !ok && len(pos) > 0 {
		form.Rating = parseRating(pos[0])
		pos = pos[1:]
	}
	if form.Notes == "" && len(pos) > 0 {
		form.Notes = strings.Join(pos, " ")
	}
	if err := validateForm(form); err != nil {
		return err
	}
	if _, err := p.app.api.SaveMood(ctx, api.MoodRequest{
		Rating:    form.Rating,
		Notes:     form.Notes,
		EntryDate: form.EntryDate,
	}); err != nil {
		return err
	}
	p.app.toast("Mood saved")
	return p.reload(ctx)
}
