// Package export renders party lists as downloadable files.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nekogravitycat/party-booking-backend/internal/party"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatICS  Format = "ics"
)

// ParseFormat accepts csv, xlsx or ics; an empty string means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatICS:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatICS:
		return "text/calendar; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FileName is the download name for an export produced on day.
func (f Format) FileName(day time.Time) string {
	return fmt.Sprintf("partita-%s.%s", day.Format("2006-01-02"), f)
}

// Exporter writes parties in one of the supported formats.
// Timestamps are shown in Location.
type Exporter struct {
	Location  *time.Location
	ProductID string
	now       func() time.Time
}

func New(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{
		Location:  loc,
		ProductID: "-//Party Zala//Party Scheduler//BG",
		now:       time.Now,
	}
}

// Write renders parties as f into w.
func (e *Exporter) Write(w io.Writer, f Format, parties []*party.Party) error {
	switch f {
	case FormatCSV:
		return e.WriteCSV(w, parties)
	case FormatXLSX:
		return e.WriteXLSX(w, parties)
	case FormatICS:
		return e.WriteICS(w, parties)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

var columns = []string{
	"№",
	"Дата",
	"Начало",
	"Край",
	"Вид",
	"Име на детето",
	"Години",
	"Адрес",
	"Тел. Номер",
	"Капаро (€)",
	"Брой деца",
	"Брой родители",
	"Кетъринг деца",
	"Кетъринг родители",
	"Бележки",
	"Създадено на",
}

// row flattens p into the export columns. Newlines become spaces.
func (e *Exporter) row(i int, p *party.Party) []string {
	created := ""
	if !p.CreatedAt.IsZero() {
		created = p.CreatedAt.In(e.Location).Format("02.01.2006 15:04")
	}

	cells := []string{
		strconv.Itoa(i + 1),
		p.PartyDate.Format("02.01.2006"),
		text(p.StartTime),
		text(p.EndTime),
		p.PartyType,
		p.KidName,
		strconv.Itoa(p.KidAge),
		p.LocationName,
		p.PhoneNumber,
		money(p.Deposit),
		number(p.KidsCount),
		number(p.ParentsCount),
		text(p.KidsCatering),
		text(p.ParentsCatering),
		text(p.Notes),
		created,
	}
	for j, c := range cells {
		cells[j] = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(c)
	}
	return cells
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func number(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func money(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
