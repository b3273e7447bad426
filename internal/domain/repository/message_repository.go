package repository

import (
	"context"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, m *entity.Message) error
	// Conversation returns messages exchanged between a and b, oldest first.
	Conversation(ctx context.Context, a, b string) ([]entity.Message, error)
}
