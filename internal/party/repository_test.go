package party_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/party-booking-backend/internal/db/dbtest"
	"github.com/nekogravitycat/party-booking-backend/internal/party"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/party-booking-backend/internal/user"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestPgxRepository(t *testing.T) {
	pool := dbtest.Open(t)
	ctx := context.Background()

	owner := &user.User{Email: "admin@partyzala.com", Name: "Admin", PasswordHash: "hash"}
	require.NoError(t, user.NewPgxRepository(pool).Create(ctx, owner))

	repo := party.NewPgxRepository(pool)

	start := func(s string) *string { return &s }
	seed := []*party.Party{
		{PartyDate: mustDay(t, "2025-01-15"), StartTime: start("14:00")},
		{PartyDate: mustDay(t, "2025-01-15"), StartTime: start("10:00")},
		{PartyDate: mustDay(t, "2025-01-15")},
		{PartyDate: mustDay(t, "2025-01-01")},
		{PartyDate: mustDay(t, "2025-03-01")},
	}
	for _, p := range seed {
		p.KidName = "Мария"
		p.KidAge = 5
		p.LocationName = "Зала"
		p.PhoneNumber = "0888"
		p.Deposit = 50.5
		p.CreatedBy = owner.ID
		require.NoError(t, repo.Create(ctx, p))
		assert.NotEmpty(t, p.ID)
	}

	t.Run("list in range is inclusive and ordered", func(t *testing.T) {
		from, to := mustDay(t, "2025-01-01"), mustDay(t, "2025-01-15")
		got, err := repo.List(ctx, party.Filter{From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, seed[3].ID, got[0].ID)
		assert.Equal(t, seed[1].ID, got[1].ID)
		assert.Equal(t, seed[0].ID, got[2].ID)
		assert.Equal(t, seed[2].ID, got[3].ID)
	})

	t.Run("get and update", func(t *testing.T) {
		p, err := repo.GetByID(ctx, seed[0].ID)
		require.NoError(t, err)
		assert.InDelta(t, 50.5, p.Deposit, 0.001)

		p.KidAge = 6
		p.StartTime = nil
		require.NoError(t, repo.Update(ctx, p))

		again, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, again.KidAge)
		assert.Nil(t, again.StartTime)
	})

	t.Run("check constraint maps to client error", func(t *testing.T) {
		bad := *seed[0]
		bad.KidAge = 40
		err := repo.Create(ctx, &bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "constraint")
	})

	t.Run("fractional deposit round-trips", func(t *testing.T) {
		p := *seed[3]
		p.ID = ""
		p.Deposit = 12.34
		require.NoError(t, repo.Create(ctx, &p))
		assert.Equal(t, 12.34, p.Deposit)

		stored, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Deposit, stored.Deposit)

		stored.Deposit = 7.5
		require.NoError(t, repo.Update(ctx, stored))
		again, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, stored.Deposit, again.Deposit)

		require.NoError(t, repo.Delete(ctx, p.ID))
	})

	t.Run("deposit overflow maps to client error", func(t *testing.T) {
		bad := *seed[3]
		bad.ID = ""
		bad.Deposit = 1e9
		err := repo.Create(ctx, &bad)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
	})

	t.Run("missing rows", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, party.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "00000000-0000-0000-0000-000000000000"), party.ErrNotFound)
	})

	t.Run("bulk deletes report counts", func(t *testing.T) {
		from, to := mustDay(t, "2025-03-01"), mustDay(t, "2025-03-31")
		n, err := repo.DeleteMany(ctx, party.Filter{From: &from, To: &to})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		n, err = repo.DeleteMany(ctx, party.Filter{})
		require.NoError(t, err)
		assert.EqualValues(t, 4, n)

		all, err := repo.List(ctx, party.Filter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
