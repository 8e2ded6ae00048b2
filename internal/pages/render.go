package pages

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/wolfman30/mindcare/internal/availability"
)

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n== %s ==\n", title)
}

func subheading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n-- %s --\n", title)
}

func muted(w io.Writer, text string) {
	fmt.Fprintf(w, "  %s\n", text)
}

// actions prints the commands a page accepts.
func actions(w io.Writer, lines ...string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Actions:")
	for _, l := range lines {
		fmt.Fprintf(w, "  %s\n", l)
	}
}

// table writes aligned columns. An empty rows slice prints empty instead.
func table(w io.Writer, header []string, rows [][]string, empty string) {
	if len(rows) == 0 {
		muted(w, empty)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  "+strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, "  "+strings.Join(r, "\t"))
	}
	tw.Flush()
}

// shortDate renders "2024-01-10" as "Jan 10"; anything else passes through.
func shortDate(date string) string {
	t, err := time.Parse(availability.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// includesText is a case-insensitive substring match; a blank needle matches.
func includesText(haystack, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), needle)
}

func filterLabel(v string) string {
	if v == "" {
		return "all"
	}
	return v
}
