// Package calendar lays parties out on month and week grids.
//
// All functions are pure: they work on calendar days at UTC midnight and never
// touch storage. The server renders grids for GET /api/calendar and the command
// line client rebuilds them after every refetch.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/nekogravitycat/party-booking-backend/internal/party"
)

// KeyLayout formats the ISO day key used to bucket parties.
const KeyLayout = "2006-01-02"

type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
)

// ParseView accepts "month" or "week"; an empty string means month.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewMonth, nil
	case ViewMonth, ViewWeek:
		return v, nil
	default:
		return "", fmt.Errorf("unknown calendar view %q", s)
	}
}

// DefaultWeekStart is Sunday for month grids and Monday for week grids.
func DefaultWeekStart(v View) time.Weekday {
	if v == ViewWeek {
		return time.Monday
	}
	return time.Sunday
}

// Day truncates t to its calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Key returns the ISO day key of t.
func Key(t time.Time) string {
	return t.Format(KeyLayout)
}

func startOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

func endOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	return startOfWeek(t, weekStart).AddDate(0, 0, 6)
}

// MonthWindow spans from the start of the week holding the 1st of anchor's month
// to the end of the week holding its last day. Both ends are inclusive.
func MonthWindow(anchor time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return startOfWeek(first, weekStart), endOfWeek(last, weekStart)
}

// WeekWindow spans the seven days of the week holding anchor.
func WeekWindow(anchor time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	return startOfWeek(anchor, weekStart), endOfWeek(anchor, weekStart)
}

// Window dispatches to MonthWindow or WeekWindow.
func Window(v View, anchor time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	if v == ViewWeek {
		return WeekWindow(anchor, weekStart)
	}
	return MonthWindow(anchor, weekStart)
}

// Days lists every calendar day in [from, to].
func Days(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Next moves anchor forward by one view period.
func Next(v View, anchor time.Time) time.Time {
	if v == ViewWeek {
		return Day(anchor).AddDate(0, 0, 7)
	}
	return firstOfMonth(anchor).AddDate(0, 1, 0)
}

// Prev moves anchor back by one view period.
func Prev(v View, anchor time.Time) time.Time {
	if v == ViewWeek {
		return Day(anchor).AddDate(0, 0, -7)
	}
	return firstOfMonth(anchor).AddDate(0, -1, 0)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// GroupByDay buckets parties by the key of their party day.
// Every party lands in exactly one bucket and input order is kept within a bucket.
func GroupByDay(parties []*party.Party) map[string][]*party.Party {
	groups := make(map[string][]*party.Party)
	for _, p := range parties {
		k := Key(p.PartyDate)
		groups[k] = append(groups[k], p)
	}
	return groups
}
