package app_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/party-booking-backend/internal/app"
	"github.com/nekogravitycat/party-booking-backend/internal/calendar"
	"github.com/nekogravitycat/party-booking-backend/internal/client"
	"github.com/nekogravitycat/party-booking-backend/internal/config"
	"github.com/nekogravitycat/party-booking-backend/internal/db/dbtest"
	partyHttp "github.com/nekogravitycat/party-booking-backend/internal/party/http"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// TestEndToEnd drives the assembled application through the HTTP client the
// same way the browser does: cookie session, CRUD, calendar and export.
func TestEndToEnd(t *testing.T) {
	pool := dbtest.Open(t)
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ClientOrigin: "http://localhost:5173",
		Location:     time.UTC,
		JWTSecret:    "0123456789abcdef0123456789abcdef",
		JWTTTL:       30 * time.Minute,
		CookieName:   "party_zala_token",
		BcryptCost:   4, // Lower cost for testing purposes
		MaxRangeDays: 90,
	}
	container := app.NewContainer(app.Deps{
		Config: cfg,
		DBPool: pool,
		Logger: zerolog.Nop(),
	})

	ctx := context.Background()
	_, err := container.UserService.EnsureAdmin(ctx, "staff@example.com", "password123", "Staff")
	require.NoError(t, err)

	srv := httptest.NewServer(container.Router)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	t.Run("Requires session", func(t *testing.T) {
		_, err := c.ListParties(ctx, from, to)
		assert.ErrorIs(t, err, client.ErrUnauthorized)
	})

	_, err = c.Login(ctx, "Staff@Example.com", "password123")
	require.NoError(t, err)

	created, err := c.CreateParty(ctx, partyHttp.CreatePartyRequest{
		PartyDate:    "2025-06-14",
		KidName:      "Мария",
		KidAge:       intPtr(6),
		LocationName: "Зала 1",
		StartTime:    strPtr("9:30"),
		EndTime:      strPtr("11:00"),
		PhoneNumber:  "0888123456",
		PartyType:    strPtr("Детска зала"),
	})
	require.NoError(t, err)
	assert.Equal(t, "09:30", *created.StartTime)

	t.Run("Range list and calendar", func(t *testing.T) {
		parties, err := c.ListParties(ctx, from, to)
		require.NoError(t, err)
		require.Len(t, parties, 1)
		assert.Equal(t, created.ID, parties[0].ID)

		grid, err := c.Calendar(ctx, calendar.ViewMonth, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 1, grid.Total)
	})

	t.Run("Update", func(t *testing.T) {
		updated, err := c.UpdateParty(ctx, created.ID, partyHttp.UpdatePartyRequest{KidName: strPtr("Мария Петрова")})
		require.NoError(t, err)
		assert.Equal(t, "Мария Петрова", updated.KidName)
		assert.Equal(t, "09:30", *updated.StartTime, "omitted fields are kept")
	})

	t.Run("Export", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, c.Export(ctx, "csv", &buf))
		assert.True(t, strings.HasPrefix(buf.String(), "\ufeff"))
		assert.Contains(t, buf.String(), "Мария Петрова")
	})

	t.Run("Delete range", func(t *testing.T) {
		n, err := c.DeletePartiesInRange(ctx, from, to)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		parties, err := c.AllParties(ctx)
		require.NoError(t, err)
		assert.Empty(t, parties)
	})

	t.Run("Logout ends the session", func(t *testing.T) {
		require.NoError(t, c.Logout(ctx))
		_, err := c.Me(ctx)
		assert.ErrorIs(t, err, client.ErrUnauthorized)
	})
}
