package http

import (
	"github.com/nekogravitycat/party-booking-backend/internal/calendar"
	partyHttp "github.com/nekogravitycat/party-booking-backend/internal/party/http"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/request"
)

// CalendarRequest selects the grid. Date defaults to today; WeekStart is 0 (Sunday) to 6.
type CalendarRequest struct {
	View      string `form:"view" binding:"omitempty,oneof=month week"`
	Date      string `form:"date" binding:"omitempty,date"`
	WeekStart *int   `form:"weekStart" binding:"omitempty,min=0,max=6"`
}

type DayResponse struct {
	Date    string                    `json:"date"`
	InMonth bool                      `json:"inMonth"`
	IsToday bool                      `json:"isToday"`
	Parties []partyHttp.PartyResponse `json:"parties"`
}

type GridResponse struct {
	View  string        `json:"view"`
	Date  string        `json:"date"`
	From  string        `json:"from"`
	To    string        `json:"to"`
	Total int           `json:"total"`
	Days  []DayResponse `json:"days"`
}

func NewGridResponse(g calendar.Grid) GridResponse {
	days := make([]DayResponse, len(g.Days))
	for i, c := range g.Days {
		days[i] = DayResponse{
			Date:    c.Key,
			InMonth: c.InMonth,
			IsToday: c.IsToday,
			Parties: partyHttp.NewPartyListResponse(c.Parties),
		}
	}
	return GridResponse{
		View:  string(g.View),
		Date:  request.FormatDate(g.Anchor),
		From:  request.FormatDate(g.From),
		To:    request.FormatDate(g.To),
		Total: g.Count(),
		Days:  days,
	}
}
