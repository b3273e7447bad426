package repository

import (
	"context"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	// ListByRecipient returns every notification of recipient, newest first.
	ListByRecipient(ctx context.Context, recipient string) ([]entity.Notification, error)
	// MarkAllRead flags every unread notification of recipient and returns how many changed.
	MarkAllRead(ctx context.Context, recipient string) (int64, error)
}
