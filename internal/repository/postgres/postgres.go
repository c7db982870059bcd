package postgres

import (
	"database/sql"

	"borrowly-backend/internal/repository"

	_ "github.com/lib/pq"
)

// Store bundles the per-table repositories over one connection pool.
type Store struct {
	db            *sql.DB
	Transactions  repository.TransactionRepository
	Listings      repository.ListingRepository
	Users         repository.UserRepository
	Ratings       repository.RatingRepository
	Notifications repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:            db,
		Transactions:  NewTransactionRepository(db),
		Listings:      NewListingRepository(db),
		Users:         NewUserRepository(db),
		Ratings:       NewRatingRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
