package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, kind, actor_email, actor_name, actor_avatar, recipient, text, preview_url, is_read)
		VALUES (`+newID+`, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, n.ID, string(n.Kind), n.ActorEmail, n.ActorName, n.ActorAvatar, n.Recipient, n.Text, n.PreviewURL, n.Read)
	return mapErr(row.Scan(&n.ID, &n.CreatedAt))
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient string) ([]entity.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, actor_email, actor_name, actor_avatar, recipient, text, preview_url, is_read, created_at
		FROM notifications
		WHERE recipient = $1
		ORDER BY created_at DESC
	`, recipient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Notification, 0)
	for rows.Next() {
		var n entity.Notification
		var kind string
		if err := rows.Scan(&n.ID, &kind, &n.ActorEmail, &n.ActorName, &n.ActorAvatar, &n.Recipient,
			&n.Text, &n.PreviewURL, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Kind = entity.NotificationKind(kind)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	res, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = true WHERE recipient = $1 AND NOT is_read`, recipient)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
