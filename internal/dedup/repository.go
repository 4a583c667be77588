package dedup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository remembers which inbound notifications were already handled, so
// redelivered webhooks can be acknowledged without reprocessing.
type Repository interface {
	IsProcessed(ctx context.Context, source, notificationID string) (bool, error)
	// MarkProcessed returns false when the notification was already recorded.
	MarkProcessed(ctx context.Context, source, notificationID string) (bool, error)
}

type repo struct {
	db *sql.DB
}

// NewRepository creates a dedup repository.
func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) IsProcessed(ctx context.Context, source, notificationID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1
		FROM processed_notifications
		WHERE source = $1 AND notification_id = $2
	`, source, notificationID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select processed notification: %w", err)
	}
	return true, nil
}

func (r *repo) MarkProcessed(ctx context.Context, source, notificationID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO processed_notifications (source, notification_id, processed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (source, notification_id) DO NOTHING
	`, source, notificationID)
	if err != nil {
		return false, fmt.Errorf("insert processed notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}
