package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/party-booking-backend/internal/calendar"
	"github.com/nekogravitycat/party-booking-backend/internal/party"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/response"
)

type Handler struct {
	parties party.Service
	loc     *time.Location
	now     func() time.Time
}

// NewHandler creates the calendar handler. loc decides which day is "today".
func NewHandler(parties party.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		parties: parties,
		loc:     loc,
		now:     time.Now,
	}
}

func (h *Handler) today() time.Time {
	return calendar.Day(h.now().In(h.loc))
}

// Get renders the month or week grid around date with its parties.
func (h *Handler) Get(c *gin.Context) {
	var q CalendarRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, request.BindError(err))
		return
	}

	view, _ := calendar.ParseView(q.View)
	today := h.today()

	anchor := today
	if q.Date != "" {
		anchor, _ = request.ParseDate(q.Date)
	}

	weekStart := calendar.DefaultWeekStart(view)
	if q.WeekStart != nil {
		weekStart = time.Weekday(*q.WeekStart)
	}

	from, to := calendar.Window(view, anchor, weekStart)
	parties, err := h.parties.FindInRange(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	grid := calendar.Build(view, anchor, weekStart, today, parties)
	c.JSON(http.StatusOK, NewGridResponse(grid))
}
