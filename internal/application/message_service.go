package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	repo "github.com/oksasatya/midnight-circuit/internal/domain/repository"
	"github.com/oksasatya/midnight-circuit/pkg/apperror"
)

// Messages stores direct messages; clients poll Conversation for new ones.
type Messages struct {
	Repo  repo.MessageRepository
	Users repo.UserRepository
}

func NewMessages(r repo.MessageRepository, users repo.UserRepository) *Messages {
	return &Messages{Repo: r, Users: users}
}

func (m *Messages) Send(ctx context.Context, from, to, text string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.Validation("message text is required", map[string]string{"text": "is required"})
	}
	if _, err := m.Users.GetByEmail(ctx, to); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.ErrNotFound, "user %s not found", to)
		}
		return nil, apperror.Wrap(apperror.ErrStorage, err, "load recipient")
	}
	msg := &entity.Message{ID: uuid.NewString(), From: from, To: to, Text: text, CreatedAt: time.Now().UTC()}
	if err := m.Repo.Create(ctx, msg); err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "store message")
	}
	return msg, nil
}

// Conversation returns both directions between a and b, oldest first.
func (m *Messages) Conversation(ctx context.Context, a, b string) ([]entity.Message, error) {
	items, err := m.Repo.Conversation(ctx, a, b)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "load conversation")
	}
	return items, nil
}
