package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	attrs, err := json.Marshal(note.Attributes)
	if err != nil {
		return err
	}
	query := `INSERT INTO notifications (user_id, event_type, title, message, is_read, attributes, created_on)
	          VALUES ($1, $2, $3, $4, false, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		note.UserID, note.EventType, note.Title, note.Message, attrs, time.Now(),
	).Scan(&note.ID)
}

func (r *notificationRepository) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, event_type, title, message, is_read, attributes, created_on
	          FROM notifications WHERE user_id = $1
	          ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var attrs []byte
		var createdOn time.Time
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventType, &n.Title, &n.Message, &n.IsRead, &attrs, &createdOn); err != nil {
			return nil, 0, err
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
				return nil, 0, err
			}
		}
		n.CreatedOn = createdOn.Format(time.RFC3339)
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
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
