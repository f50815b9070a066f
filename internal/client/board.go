package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nekogravitycat/party-booking-backend/internal/calendar"
	"github.com/nekogravitycat/party-booking-backend/internal/party"
	partyHttp "github.com/nekogravitycat/party-booking-backend/internal/party/http"
)

// PartyAPI is the part of Client a Board needs.
type PartyAPI interface {
	ListParties(ctx context.Context, from, to time.Time) ([]*party.Party, error)
	CreateParty(ctx context.Context, body partyHttp.CreatePartyRequest) (*party.Party, error)
	UpdateParty(ctx context.Context, id string, body partyHttp.UpdatePartyRequest) (*party.Party, error)
	DeleteParty(ctx context.Context, id string) error
}

// ErrSuperseded is returned by a Refresh that a newer Refresh replaced.
var ErrSuperseded = errors.New("refresh superseded")

// Board is a calendar view kept in sync with the server.
// It never patches its grid locally: every successful mutation refetches the
// visible window, and the latest fetch wins.
type Board struct {
	api PartyAPI
	now func() time.Time

	mu        sync.Mutex
	view      calendar.View
	weekStart time.Weekday
	anchor    time.Time
	grid      calendar.Grid
	seq       uint64
	cancel    context.CancelFunc
}

func NewBoard(api PartyAPI, view calendar.View, anchor time.Time) *Board {
	return &Board{
		api:       api,
		now:       time.Now,
		view:      view,
		weekStart: calendar.DefaultWeekStart(view),
		anchor:    calendar.Day(anchor),
	}
}

// Grid returns the last successfully fetched grid.
func (b *Board) Grid() calendar.Grid {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.grid
}

// Refresh refetches the visible window. A refresh still in flight is cancelled.
func (b *Board) Refresh(ctx context.Context) (calendar.Grid, error) {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	b.seq++
	seq := b.seq
	b.cancel = cancel
	view, weekStart, anchor := b.view, b.weekStart, b.anchor
	b.mu.Unlock()
	defer cancel()

	from, to := calendar.Window(view, anchor, weekStart)
	parties, err := b.api.ListParties(ctx, from, to)

	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.seq {
		return b.grid, ErrSuperseded
	}
	b.cancel = nil
	if err != nil {
		return b.grid, err
	}
	b.grid = calendar.Build(view, anchor, weekStart, b.now(), parties)
	return b.grid, nil
}

// Next moves one month or week forward and refreshes.
func (b *Board) Next(ctx context.Context) (calendar.Grid, error) {
	b.mu.Lock()
	b.anchor = calendar.Next(b.view, b.anchor)
	b.mu.Unlock()
	return b.Refresh(ctx)
}

// Prev moves one month or week back and refreshes.
func (b *Board) Prev(ctx context.Context) (calendar.Grid, error) {
	b.mu.Lock()
	b.anchor = calendar.Prev(b.view, b.anchor)
	b.mu.Unlock()
	return b.Refresh(ctx)
}

// Today jumps back to the current day and refreshes.
func (b *Board) Today(ctx context.Context) (calendar.Grid, error) {
	b.mu.Lock()
	b.anchor = calendar.Day(b.now())
	b.mu.Unlock()
	return b.Refresh(ctx)
}

// SetView switches between month and week, resetting the week start to the view default.
func (b *Board) SetView(ctx context.Context, v calendar.View) (calendar.Grid, error) {
	b.mu.Lock()
	b.view = v
	b.weekStart = calendar.DefaultWeekStart(v)
	b.mu.Unlock()
	return b.Refresh(ctx)
}

// refetch refreshes after a successful mutation. A newer refresh already
// covers the change, so being superseded is not an error here.
func (b *Board) refetch(ctx context.Context) error {
	if _, err := b.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return err
	}
	return nil
}

// Create adds a party and refetches the visible window.
func (b *Board) Create(ctx context.Context, body partyHttp.CreatePartyRequest) (*party.Party, error) {
	p, err := b.api.CreateParty(ctx, body)
	if err != nil {
		return nil, err
	}
	return p, b.refetch(ctx)
}

func (b *Board) Update(ctx context.Context, id string, body partyHttp.UpdatePartyRequest) (*party.Party, error) {
	p, err := b.api.UpdateParty(ctx, id, body)
	if err != nil {
		return nil, err
	}
	return p, b.refetch(ctx)
}

func (b *Board) Delete(ctx context.Context, id string) error {
	if err := b.api.DeleteParty(ctx, id); err != nil {
		return err
	}
	return b.refetch(ctx)
}
