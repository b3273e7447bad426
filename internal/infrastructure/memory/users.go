// Package memory provides in-process repository implementations used by tests
// and local tooling. Every method returns copies so callers cannot mutate the
// stored state behind the repository's back.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User // by email
	order []string

	// FailWrites makes every write return this error, when set.
	FailWrites error
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]*entity.User{}}
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	c.Following = slices.Clone(u.Following)
	c.Followers = slices.Clone(u.Followers)
	return &c
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	if _, ok := r.users[u.Email]; ok {
		return repository.ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Level == 0 {
		u.Level = 1
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.Email] = copyUser(u)
	r.order = append(r.order, u.Email)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByName(_ context.Context, name string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, email := range r.order {
		if u := r.users[email]; u.Name == name {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) UpdateProfile(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	cur, ok := r.users[u.Email]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name, cur.Bio, cur.AvatarURL, cur.CoverURL = u.Name, u.Bio, u.AvatarURL, u.CoverURL
	cur.UpdatedAt = time.Now().UTC()
	u.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r *UserRepository) AddExperience(_ context.Context, email string, amount int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return nil, r.FailWrites
	}
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.AwardXP(amount)
	return copyUser(u), nil
}

func (r *UserRepository) SetFollow(_ context.Context, actorEmail, targetEmail string, follow bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	actor, ok := r.users[actorEmail]
	if !ok {
		return repository.ErrNotFound
	}
	target, ok := r.users[targetEmail]
	if !ok {
		return repository.ErrNotFound
	}
	if follow {
		actor.Following = addUnique(actor.Following, targetEmail)
		target.Followers = addUnique(target.Followers, actorEmail)
	} else {
		actor.Following = remove(actor.Following, targetEmail)
		target.Followers = remove(target.Followers, actorEmail)
	}
	return nil
}

func (r *UserRepository) List(_ context.Context) ([]entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.User, 0, len(r.order))
	for _, email := range r.order {
		out = append(out, *copyUser(r.users[email]))
	}
	return out, nil
}

func (r *UserRepository) TopByXP(ctx context.Context, limit int) ([]entity.User, error) {
	all, _ := r.List(ctx)
	sort.SliceStable(all, func(i, j int) bool { return all[i].XP > all[j].XP })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *UserRepository) SearchByName(ctx context.Context, q string, limit int) ([]entity.User, error) {
	all, _ := r.List(ctx)
	q = strings.ToLower(q)
	out := make([]entity.User, 0)
	for _, u := range all {
		if strings.Contains(strings.ToLower(u.Name), q) {
			out = append(out, u)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func addUnique(s []string, v string) []string {
	if slices.Contains(s, v) {
		return s
	}
	return append(s, v)
}

func remove(s []string, v string) []string {
	return slices.DeleteFunc(s, func(x string) bool { return x == v })
}

var _ repository.UserRepository = (*UserRepository)(nil)
