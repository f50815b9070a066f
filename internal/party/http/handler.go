package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/party-booking-backend/internal/auth"
	"github.com/nekogravitycat/party-booking-backend/internal/export"
	"github.com/nekogravitycat/party-booking-backend/internal/party"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/response"
)

type Handler struct {
	service  party.Service
	exporter *export.Exporter
	now      func() time.Time
}

func NewHandler(service party.Service, exporter *export.Exporter) *Handler {
	return &Handler{
		service:  service,
		exporter: exporter,
		now:      time.Now,
	}
}

// bindRange reads and checks the from/to query pair.
func bindRange(c *gin.Context) (request.DateRangeRequest, time.Time, time.Time, bool) {
	var q request.DateRangeRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, request.BindError(err))
		return q, time.Time{}, time.Time{}, false
	}
	from, to, err := q.Bounds()
	if err != nil {
		response.Error(c, party.ErrInvalidRange)
		return q, time.Time{}, time.Time{}, false
	}
	return q, from, to, true
}

// List returns the parties whose day lies in [from, to].
func (h *Handler) List(c *gin.Context) {
	_, from, to, ok := bindRange(c)
	if !ok {
		return
	}

	parties, err := h.service.FindInRange(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPartyListResponse(parties))
}

// All returns every stored party.
func (h *Handler) All(c *gin.Context) {
	parties, err := h.service.FindAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPartyListResponse(parties))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, request.BindError(err))
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPartyResponse(p))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreatePartyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, request.BindError(err))
		return
	}

	p, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), body.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPartyResponse(p))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, request.BindError(err))
		return
	}

	var body UpdatePartyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, request.BindError(err))
		return
	}

	p, err := h.service.Update(c.Request.Context(), auth.GetUserID(c), uri.ID, body.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPartyResponse(p))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, request.BindError(err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.GetUserID(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.MessageResponse{Message: "Party deleted successfully"})
}

// DeleteRange removes every party whose day lies in [from, to].
func (h *Handler) DeleteRange(c *gin.Context) {
	q, from, to, ok := bindRange(c)
	if !ok {
		return
	}

	n, err := h.service.DeleteInRange(c.Request.Context(), auth.GetUserID(c), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.DeletedResponse{
		Message:      "Parties deleted successfully",
		DeletedCount: n,
		From:         q.From,
		To:           q.To,
	})
}

func (h *Handler) DeleteAll(c *gin.Context) {
	n, err := h.service.DeleteAll(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.DeletedResponse{
		Message:      "All parties deleted successfully",
		DeletedCount: n,
	})
}

// Export downloads parties as CSV, XLSX or iCalendar.
// Without from/to every party is exported.
func (h *Handler) Export(c *gin.Context) {
	var q ExportRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, request.BindError(err))
		return
	}

	format, err := export.ParseFormat(q.Format)
	if err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, err.Error()))
		return
	}

	ctx := c.Request.Context()
	var parties []*party.Party
	switch {
	case q.From == "" && q.To == "":
		parties, err = h.service.FindAll(ctx)
	case q.From != "" && q.To != "":
		rng := request.DateRangeRequest{From: q.From, To: q.To}
		from, to, rerr := rng.Bounds()
		if rerr != nil {
			response.Error(c, party.ErrInvalidRange)
			return
		}
		parties, err = h.service.FindInRange(ctx, from, to)
	default:
		response.Error(c, apperror.New(http.StatusBadRequest, "from and to must be given together"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, format, parties); err != nil {
		response.Error(c, fmt.Errorf("export %s: %w", format, err))
		return
	}

	zerolog.Ctx(ctx).Info().Str("format", string(format)).Int("parties", len(parties)).Msg("parties exported")

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.FileName(h.now())))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
