package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/nekogravitycat/party-booking-backend/internal/party"
)

// WriteICS writes one VEVENT per party. Parties with both start and end
// times become timed events in the exporter's location; the rest are all-day.
func (e *Exporter) WriteICS(w io.Writer, parties []*party.Party) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.ProductID)

	stamp := e.now().UTC()
	for _, p := range parties {
		ev := cal.AddEvent(p.ID)
		ev.SetDtStampTime(stamp)
		if !p.CreatedAt.IsZero() {
			ev.SetCreatedTime(p.CreatedAt)
		}
		if !p.UpdatedAt.IsZero() {
			ev.SetModifiedAt(p.UpdatedAt)
		}

		start, end, timed := e.span(p)
		if timed {
			ev.SetStartAt(start)
			ev.SetEndAt(end)
		} else {
			ev.SetAllDayStartAt(p.PartyDate)
			ev.SetAllDayEndAt(p.PartyDate.AddDate(0, 0, 1))
		}

		ev.SetSummary(summary(p))
		ev.SetLocation(p.LocationName)
		ev.SetDescription(description(p))
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

// span resolves the wall-clock start and end of p on its party day.
func (e *Exporter) span(p *party.Party) (time.Time, time.Time, bool) {
	if p.StartTime == nil || p.EndTime == nil {
		return time.Time{}, time.Time{}, false
	}
	start, err1 := e.clock(p.PartyDate, *p.StartTime)
	end, err2 := e.clock(p.PartyDate, *p.EndTime)
	if err1 != nil || err2 != nil || !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (e *Exporter) clock(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, e.Location), nil
}

func summary(p *party.Party) string {
	s := fmt.Sprintf("%s (%d)", p.KidName, p.KidAge)
	if p.PartyType != "" {
		s += " - " + p.PartyType
	}
	return s
}

func description(p *party.Party) string {
	lines := []string{"Тел.: " + p.PhoneNumber}
	if p.Deposit > 0 {
		lines = append(lines, "Капаро: "+money(p.Deposit)+" €")
	}
	if p.Notes != nil {
		lines = append(lines, *p.Notes)
	}
	return strings.Join(lines, "\n")
}
