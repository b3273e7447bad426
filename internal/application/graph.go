package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
	"github.com/oksasatya/midnight-circuit/pkg/apperror"
	"github.com/oksasatya/midnight-circuit/pkg/helpers"
)

// Locker hands out short-lived exclusive locks. Release must be safe to call once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// FollowState is the result of a follow toggle.
type FollowState struct {
	Following bool `json:"following"`
}

// Graph maintains the symmetric follow relation between users.
type Graph struct {
	Users    repository.UserRepository
	Notifier *Notifier
	Effects  *Effects
	Locker   Locker
	LockTTL  time.Duration
	Logger   *logrus.Logger
}

func NewGraph(users repository.UserRepository, notifier *Notifier, effects *Effects, locker Locker, lockTTL time.Duration, logger *logrus.Logger) *Graph {
	if lockTTL <= 0 {
		lockTTL = 5 * time.Second
	}
	return &Graph{Users: users, Notifier: notifier, Effects: effects, Locker: locker, LockTTL: lockTTL, Logger: logger}
}

// pairKey is identical for (a,b) and (b,a).
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "follow:lock:" + a + "|" + b
}

// ToggleFollow follows target when actor does not follow it yet, and unfollows
// otherwise. Both sides of the edge change together.
func (g *Graph) ToggleFollow(ctx context.Context, actorEmail, targetEmail string) (FollowState, error) {
	if actorEmail == "" || targetEmail == "" {
		return FollowState{}, apperror.New(apperror.ErrNotFound, "user not found")
	}
	if actorEmail == targetEmail {
		return FollowState{}, apperror.Validation("cannot follow yourself", map[string]string{"target": "must differ from actor"})
	}

	release, err := g.lock(ctx, actorEmail, targetEmail)
	if err != nil {
		return FollowState{}, err
	}
	defer release()

	actor, err := g.loadUser(ctx, actorEmail)
	if err != nil {
		return FollowState{}, err
	}
	target, err := g.loadUser(ctx, targetEmail)
	if err != nil {
		return FollowState{}, err
	}

	follow := !actor.IsFollowing(target.Email)
	if err := g.Users.SetFollow(ctx, actor.Email, target.Email, follow); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return FollowState{}, apperror.New(apperror.ErrNotFound, "user not found")
		}
		return FollowState{}, apperror.Wrap(apperror.ErrStorage, err, "update follow graph")
	}

	if !follow {
		engagementActions.Add("unfollow", 1)
		return FollowState{Following: false}, nil
	}
	engagementActions.Add("follow", 1)
	snapshot := actor.Actor()
	g.Effects.Run(ctx, "follow.notify", func(ctx context.Context) error {
		_, err := g.Notifier.Notify(ctx, entity.NotificationFollow, snapshot, target.Email, "started following you.", "")
		return err
	})
	return FollowState{Following: true}, nil
}

func (g *Graph) lock(ctx context.Context, a, b string) (func(), error) {
	noop := func() {}
	if g.Locker == nil {
		return noop, nil
	}
	release, err := g.Locker.Acquire(ctx, pairKey(a, b), g.LockTTL)
	switch {
	case err == nil:
		return release, nil
	case errors.Is(err, helpers.ErrLockNotAcquired):
		return nil, apperror.New(apperror.ErrConflict, "follow change already in progress")
	default:
		// Lock backend unavailable; proceed unserialized.
		if g.Logger != nil {
			g.Logger.WithError(err).Warn("follow lock unavailable")
		}
		return noop, nil
	}
}

func (g *Graph) loadUser(ctx context.Context, email string) (*entity.User, error) {
	u, err := g.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.New(apperror.ErrNotFound, "user %s not found", email)
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "load user")
	}
	return u, nil
}
