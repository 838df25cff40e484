package repository

import (
	"context"
	"time"

	"concoro/internal/database"
	"concoro/internal/domain/notification"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Exists(ctx context.Context, userID uuid.UUID, concorsoID, typ string, daysLeft int) (bool, error)
	// Insert returns false when the (user, concorso, type, days_left) key is taken.
	Insert(ctx context.Context, n notification.Notification) (bool, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]notification.Notification, int, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	InsertEmailLog(ctx context.Context, l notification.EmailLog) error
}

const notificationColumns = `id, user_id, concorso_id, type, title, message, days_left, is_read, created_at, read_at`

type PostgresNotificationRepository struct {
	db database.DB
}

func NewPostgresNotificationRepository(db database.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Exists(ctx context.Context, userID uuid.UUID, concorsoID, typ string, daysLeft int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND concorso_id = $2 AND type = $3 AND days_left = $4
		)`,
		userID, concorsoID, typ, daysLeft,
	).Scan(&exists)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func (r *PostgresNotificationRepository) Insert(ctx context.Context, n notification.Notification) (bool, error) {
	affected, err := r.db.Exec(ctx,
		`INSERT INTO notifications (id, user_id, concorso_id, type, title, message, days_left, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8)
		 ON CONFLICT (user_id, concorso_id, type, days_left) DO NOTHING`,
		n.ID, n.UserID, n.ConcorsoID, n.Type, n.Title, n.Message, n.DaysLeft, n.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PostgresNotificationRepository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]notification.Notification, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND (NOT $2 OR is_read = false)`,
		userID, unreadOnly,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = $1 AND (NOT $2 OR is_read = false)
		 ORDER BY created_at DESC, id ASC
		 LIMIT $3 OFFSET $4`,
		userID, unreadOnly, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]notification.Notification, 0)
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.ConcorsoID, &n.Type, &n.Title, &n.Message, &n.DaysLeft, &n.IsRead, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresNotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var c int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND is_read = false`, userID).Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	n, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true, read_at = COALESCE(read_at, $3)
		 WHERE id = $1 AND user_id = $2`,
		id, userID, at,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true, read_at = $2 WHERE user_id = $1 AND is_read = false`,
		userID, at,
	)
}

func (r *PostgresNotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) InsertEmailLog(ctx context.Context, l notification.EmailLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO email_log (id, user_id, notification_id, recipient, subject, template, status, provider_message_id, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.UserID, l.NotificationID, l.Recipient, l.Subject, l.Template, l.Status, l.ProviderMessageID, l.Error, l.CreatedAt,
	)
	return err
}
