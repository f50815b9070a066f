package party

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/party-booking-backend/internal/pkg/apperror"
)

type Repository interface {
	Create(ctx context.Context, p *Party) error
	GetByID(ctx context.Context, id string) (*Party, error)
	// List returns the parties matching filter ordered by day, then start time.
	List(ctx context.Context, filter Filter) ([]*Party, error)
	Update(ctx context.Context, p *Party) error
	Delete(ctx context.Context, id string) error
	// DeleteMany removes every party matching filter and reports how many were removed.
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var partyColumns = []string{
	"id", "party_date", "kid_name", "kid_age", "location_name",
	"start_time", "end_time", "address", "parent_name", "parent_email", "guests_count",
	"phone_number", "deposit", "party_type",
	"kids_count", "parents_count", "kids_catering", "parents_catering", "notes",
	"created_by", "created_at", "updated_at",
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func scanParty(row pgx.Row) (*Party, error) {
	var p Party
	err := row.Scan(
		&p.ID, &p.PartyDate, &p.KidName, &p.KidAge, &p.LocationName,
		&p.StartTime, &p.EndTime, &p.Address, &p.ParentName, &p.ParentEmail, &p.GuestsCount,
		&p.PhoneNumber, &p.Deposit, &p.PartyType,
		&p.KidsCount, &p.ParentsCount, &p.KidsCatering, &p.ParentsCatering, &p.Notes,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// mapWriteError turns constraint violations into client errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperror.Wrap(err, http.StatusBadRequest, "party already exists")
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			return apperror.Wrap(err, http.StatusBadRequest, "party violates a storage constraint")
		case pgerrcode.NumericValueOutOfRange:
			return apperror.Wrap(err, http.StatusBadRequest, "party deposit is out of range")
		case pgerrcode.ForeignKeyViolation:
			return apperror.Wrap(err, http.StatusBadRequest, "party creator does not exist")
		}
	}
	return nil
}

func applyFilter(q squirrel.SelectBuilder, filter Filter) squirrel.SelectBuilder {
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"party_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"party_date": *filter.To})
	}
	if filter.CreatedBy != "" {
		q = q.Where(squirrel.Eq{"created_by": filter.CreatedBy})
	}
	return q
}

func (r *pgxRepository) Create(ctx context.Context, p *Party) error {
	query, args, err := psql().Insert("public.parties").
		Columns(
			"party_date", "kid_name", "kid_age", "location_name",
			"start_time", "end_time", "address", "parent_name", "parent_email", "guests_count",
			"phone_number", "deposit", "party_type",
			"kids_count", "parents_count", "kids_catering", "parents_catering", "notes",
			"created_by",
		).
		Values(
			p.PartyDate, p.KidName, p.KidAge, p.LocationName,
			p.StartTime, p.EndTime, p.Address, p.ParentName, p.ParentEmail, p.GuestsCount,
			p.PhoneNumber, p.Deposit, p.PartyType,
			p.KidsCount, p.ParentsCount, p.KidsCatering, p.ParentsCatering, p.Notes,
			p.CreatedBy,
		).
		Suffix("RETURNING id, deposit, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create party query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.Deposit, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("create party failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Party, error) {
	query, args, err := psql().Select(partyColumns...).
		From("public.parties").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get party query failed: %w", err)
	}

	p, err := scanParty(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get party failed: %w", err)
	}
	return p, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Party, error) {
	q := applyFilter(psql().Select(partyColumns...).From("public.parties"), filter).
		OrderBy("party_date ASC", "start_time ASC NULLS LAST", "created_at ASC")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list parties query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list parties failed: %w", err)
	}
	defer rows.Close()

	parties := make([]*Party, 0)
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan party failed: %w", err)
		}
		parties = append(parties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parties failed: %w", err)
	}
	return parties, nil
}

func (r *pgxRepository) Update(ctx context.Context, p *Party) error {
	query, args, err := psql().Update("public.parties").
		Set("party_date", p.PartyDate).
		Set("kid_name", p.KidName).
		Set("kid_age", p.KidAge).
		Set("location_name", p.LocationName).
		Set("start_time", p.StartTime).
		Set("end_time", p.EndTime).
		Set("address", p.Address).
		Set("parent_name", p.ParentName).
		Set("parent_email", p.ParentEmail).
		Set("guests_count", p.GuestsCount).
		Set("phone_number", p.PhoneNumber).
		Set("deposit", p.Deposit).
		Set("party_type", p.PartyType).
		Set("kids_count", p.KidsCount).
		Set("parents_count", p.ParentsCount).
		Set("kids_catering", p.KidsCatering).
		Set("parents_catering", p.ParentsCatering).
		Set("notes", p.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": p.ID}).
		Suffix("RETURNING deposit, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update party query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.Deposit, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update party failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql().Delete("public.parties").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete party query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete party failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	q := psql().Delete("public.parties")
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"party_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"party_date": *filter.To})
	}
	if filter.CreatedBy != "" {
		q = q.Where(squirrel.Eq{"created_by": filter.CreatedBy})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete parties query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete parties failed: %w", err)
	}
	return ct.RowsAffected(), nil
}
