package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"cuotas/api/internal/models"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create stores n unless a notification with the same dedupe key exists.
// It reports whether a row was inserted.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (bool, error) {
	const query = `
		INSERT INTO notifications (account_id, kind, title, body, dedupe_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (dedupe_key) DO NOTHING
	`
	cmd, err := r.pool.Exec(ctx, query, n.AccountID, n.Kind, n.Title, n.Body, n.DedupeKey)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *NotificationRepository) ListByAccount(ctx context.Context, accountID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	const query = `
		SELECT id, account_id, kind, title, body, dedupe_key, read_at, created_at
		FROM notifications
		WHERE account_id = $1 AND (NOT $2 OR read_at IS NULL)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, accountID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Kind, &n.Title, &n.Body, &n.DedupeKey, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead marks a notification owned by accountID as read. Marking an
// already read notification is not an error.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, accountID int64) error {
	const query = `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND account_id = $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
