package repository

import (
	"context"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
)

// ContentFilter narrows content listings. Results are newest first.
type ContentFilter struct {
	Kind        entity.Kind
	CommunityID string
	Limit       int
}

// ContentRepository persists content entities of every kind.
type ContentRepository interface {
	Create(ctx context.Context, c *entity.Content) error
	Get(ctx context.Context, kind entity.Kind, id string) (*entity.Content, error)
	List(ctx context.Context, f ContentFilter) ([]entity.Content, error)
	// IncrementLikes adds exactly one like and returns the new count.
	IncrementLikes(ctx context.Context, kind entity.Kind, id string) (int64, error)
	// AppendComment appends cm and returns the full ordered comment list.
	AppendComment(ctx context.Context, kind entity.Kind, id string, cm entity.Comment) ([]entity.Comment, error)
	// AddMember adds email to a community's members unless already present.
	// It reports whether the member set changed.
	AddMember(ctx context.Context, communityID, email string) (bool, error)
	Delete(ctx context.Context, kind entity.Kind, id string) error
	SearchVehicles(ctx context.Context, q string, limit int) ([]entity.Content, error)
}
