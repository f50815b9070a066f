package party

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nekogravitycat/party-booking-backend/internal/metrics"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/request"
)

// DefaultMaxRangeDays caps FindInRange when Options leaves it unset.
const DefaultMaxRangeDays = 90

type Options struct {
	// EnforceOwnership restricts update and delete to the party's creator.
	// Off by default: every signed-in user may change every party.
	EnforceOwnership bool
	MaxRangeDays     int
}

type Service interface {
	FindInRange(ctx context.Context, from, to time.Time) ([]*Party, error)
	FindAll(ctx context.Context) ([]*Party, error)
	GetByID(ctx context.Context, id string) (*Party, error)
	Create(ctx context.Context, actorID string, in Input) (*Party, error)
	Update(ctx context.Context, actorID, id string, in Input) (*Party, error)
	Delete(ctx context.Context, actorID, id string) error
	DeleteInRange(ctx context.Context, actorID string, from, to time.Time) (int64, error)
	DeleteAll(ctx context.Context, actorID string) (int64, error)
}

type service struct {
	repo    Repository
	opts    Options
	metrics *metrics.Metrics
}

func NewService(repo Repository, opts Options, m *metrics.Metrics) Service {
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = DefaultMaxRangeDays
	}
	return &service{
		repo:    repo,
		opts:    opts,
		metrics: m,
	}
}

func (s *service) FindInRange(ctx context.Context, from, to time.Time) ([]*Party, error) {
	if from.After(to) {
		return nil, ErrInvalidRange
	}
	if request.DaysBetween(from, to) > s.opts.MaxRangeDays {
		return nil, ErrRangeTooLong
	}
	return s.repo.List(ctx, Filter{From: &from, To: &to})
}

func (s *service) FindAll(ctx context.Context) ([]*Party, error) {
	return s.repo.List(ctx, Filter{})
}

func (s *service) GetByID(ctx context.Context, id string) (*Party, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, actorID string, in Input) (*Party, error) {
	in.Normalize()

	p := &Party{CreatedBy: actorID}
	var errs apperror.FieldErrors
	if in.KidAge == nil {
		errs.Add("kidAge", "is required")
	}
	in.Apply(p, &errs)
	validateInto(p, &errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.metrics.IncPartyMutation("create")
	zerolog.Ctx(ctx).Info().Str("party_id", p.ID).Str("party_date", request.FormatDate(p.PartyDate)).Msg("party created")
	return p, nil
}

func (s *service) Update(ctx context.Context, actorID, id string, in Input) (*Party, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(p, actorID); err != nil {
		return nil, err
	}

	in.Normalize()

	var errs apperror.FieldErrors
	in.Apply(p, &errs)
	validateInto(p, &errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.metrics.IncPartyMutation("update")
	zerolog.Ctx(ctx).Info().Str("party_id", p.ID).Msg("party updated")
	return p, nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwner(p, actorID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.IncPartyMutation("delete")
	s.metrics.AddPartiesDeleted(1)
	zerolog.Ctx(ctx).Info().Str("party_id", id).Msg("party deleted")
	return nil
}

func (s *service) DeleteInRange(ctx context.Context, actorID string, from, to time.Time) (int64, error) {
	if from.After(to) {
		return 0, ErrInvalidRange
	}
	return s.deleteMany(ctx, "delete_range", Filter{From: &from, To: &to, CreatedBy: s.ownerScope(actorID)})
}

func (s *service) DeleteAll(ctx context.Context, actorID string) (int64, error) {
	return s.deleteMany(ctx, "delete_all", Filter{CreatedBy: s.ownerScope(actorID)})
}

func (s *service) deleteMany(ctx context.Context, op string, filter Filter) (int64, error) {
	n, err := s.repo.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}

	s.metrics.IncPartyMutation(op)
	s.metrics.AddPartiesDeleted(n)
	zerolog.Ctx(ctx).Warn().Str("op", op).Int64("deleted", n).Msg("parties deleted in bulk")
	return n, nil
}

func (s *service) checkOwner(p *Party, actorID string) error {
	if s.opts.EnforceOwnership && p.CreatedBy != actorID {
		return ErrPermissionDenied
	}
	return nil
}

// ownerScope limits bulk deletes to the actor's own parties when ownership is enforced.
func (s *service) ownerScope(actorID string) string {
	if s.opts.EnforceOwnership {
		return actorID
	}
	return ""
}
