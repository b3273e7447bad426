package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
)

type MessageRepository struct {
	mu    sync.RWMutex
	items []entity.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

func (r *MessageRepository) Create(_ context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.items = append(r.items, *m)
	return nil
}

func (r *MessageRepository) Conversation(_ context.Context, a, b string) ([]entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Message, 0)
	for _, m := range r.items {
		if (m.From == a && m.To == b) || (m.From == b && m.To == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.MessageRepository = (*MessageRepository)(nil)
