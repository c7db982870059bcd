package postgres

import (
	"context"
	"database/sql"
	"errors"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/repository"
)

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetByID(ctx context.Context, id int32) (*domain.Listing, error) {
	l := &domain.Listing{}
	query := `SELECT id, owner_id, title, daily_rate_cents, deposit_cents, late_fee_per_day_cents,
	                 min_duration_days, max_duration_days, available, times_borrowed, total_earnings_cents
	          FROM listings WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.DailyRateCents, &l.DepositCents, &l.LateFeePerDayCents,
		&l.MinDurationDays, &l.MaxDurationDays, &l.Available, &l.TimesBorrowed, &l.TotalEarningsCents,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *listingRepository) SetAvailability(ctx context.Context, id int32, available bool) error {
	query := `UPDATE listings SET available = $2, updated_on = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, available)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
