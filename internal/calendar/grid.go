package calendar

import (
	"time"

	"github.com/nekogravitycat/party-booking-backend/internal/party"
)

// Cell is one rendered day of a grid.
type Cell struct {
	Date    time.Time
	Key     string
	InMonth bool
	IsToday bool
	Parties []*party.Party
}

// Grid is a rendered month or week. Every day of the window has a cell, empty or not.
type Grid struct {
	View   View
	Anchor time.Time
	From   time.Time
	To     time.Time
	Days   []Cell
}

// Build renders the window of v around anchor with parties placed on their days.
// Parties outside the window are ignored.
func Build(v View, anchor time.Time, weekStart time.Weekday, today time.Time, parties []*party.Party) Grid {
	anchor = Day(anchor)
	from, to := Window(v, anchor, weekStart)
	groups := GroupByDay(parties)
	todayKey := Key(Day(today))

	days := Days(from, to)
	cells := make([]Cell, len(days))
	for i, d := range days {
		k := Key(d)
		inMonth := true
		if v == ViewMonth {
			inMonth = d.Month() == anchor.Month() && d.Year() == anchor.Year()
		}
		bucket := groups[k]
		if bucket == nil {
			bucket = []*party.Party{}
		}
		cells[i] = Cell{
			Date:    d,
			Key:     k,
			InMonth: inMonth,
			IsToday: k == todayKey,
			Parties: bucket,
		}
	}

	return Grid{
		View:   v,
		Anchor: anchor,
		From:   from,
		To:     to,
		Days:   cells,
	}
}

// Count reports how many parties the grid shows.
func (g Grid) Count() int {
	n := 0
	for _, c := range g.Days {
		n += len(c.Parties)
	}
	return n
}
