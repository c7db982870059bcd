package postgres

import (
	"context"
	"database/sql"
	"time"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/repository"
)

type ratingRepository struct {
	db *sql.DB
}

func NewRatingRepository(db *sql.DB) repository.RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	query := `INSERT INTO ratings (transaction_id, rater_id, ratee_id, stars, comment, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (transaction_id, rater_id)
	          DO UPDATE SET stars = EXCLUDED.stars, comment = EXCLUDED.comment
	          RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		rating.TransactionID, rating.RaterID, rating.RateeID, rating.Stars, rating.Comment, time.Now(),
	).Scan(&rating.ID)
}

func (r *ratingRepository) CountByTransaction(ctx context.Context, transactionID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM ratings WHERE transaction_id = $1`
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(&count)
	return count, err
}
