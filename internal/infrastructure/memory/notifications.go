package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
)

type NotificationRepository struct {
	mu    sync.RWMutex
	items []entity.Notification

	FailWrites error
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(_ context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, recipient string) ([]entity.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Notification, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].Recipient == recipient {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, recipient string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return 0, r.FailWrites
	}
	var n int64
	for i := range r.items {
		if r.items[i].Recipient == recipient && !r.items[i].Read {
			r.items[i].Read = true
			n++
		}
	}
	return n, nil
}

// Len returns the total number of stored notifications.
func (r *NotificationRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
