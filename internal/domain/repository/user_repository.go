package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate")
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByName returns the first user whose display name matches exactly.
	GetByName(ctx context.Context, name string) (*entity.User, error)
	UpdateProfile(ctx context.Context, u *entity.User) error
	// AddExperience atomically adds amount to xp and raises level to
	// LevelForXP(xp) when that is higher. It returns the updated user.
	AddExperience(ctx context.Context, email string, amount int64) (*entity.User, error)
	// SetFollow writes both sides of a follow edge as one logical write:
	// actor.following and target.followers gain (follow=true) or lose each other.
	SetFollow(ctx context.Context, actorEmail, targetEmail string, follow bool) error
	List(ctx context.Context) ([]entity.User, error)
	TopByXP(ctx context.Context, limit int) ([]entity.User, error)
	SearchByName(ctx context.Context, q string, limit int) ([]entity.User, error)
}
