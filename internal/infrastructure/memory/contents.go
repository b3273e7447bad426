package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
)

type ContentRepository struct {
	mu       sync.RWMutex
	contents map[string]*entity.Content
	order    []string

	FailWrites error
}

func NewContentRepository() *ContentRepository {
	return &ContentRepository{contents: map[string]*entity.Content{}}
}

func copyContent(c *entity.Content) *entity.Content {
	out := *c
	out.Members = slices.Clone(c.Members)
	out.Admins = slices.Clone(c.Admins)
	out.Comments = slices.Clone(c.Comments)
	if c.Vehicle != nil {
		v := *c.Vehicle
		v.Specs = maps.Clone(c.Vehicle.Specs)
		v.Mods = slices.Clone(c.Vehicle.Mods)
		out.Vehicle = &v
	}
	return &out
}

func (r *ContentRepository) Create(_ context.Context, c *entity.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.contents[c.ID] = copyContent(c)
	r.order = append(r.order, c.ID)
	return nil
}

// lookup must be called with r.mu held.
func (r *ContentRepository) lookup(kind entity.Kind, id string) (*entity.Content, error) {
	c, ok := r.contents[id]
	if !ok || c.Kind != kind {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (r *ContentRepository) Get(_ context.Context, kind entity.Kind, id string) (*entity.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, err := r.lookup(kind, id)
	if err != nil {
		return nil, err
	}
	return copyContent(c), nil
}

func (r *ContentRepository) List(_ context.Context, f repository.ContentFilter) ([]entity.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Content, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.contents[r.order[i]]
		if c == nil || c.Kind != f.Kind {
			continue
		}
		if f.CommunityID != "" && c.CommunityID != f.CommunityID {
			continue
		}
		out = append(out, *copyContent(c))
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r *ContentRepository) IncrementLikes(_ context.Context, kind entity.Kind, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return 0, r.FailWrites
	}
	c, err := r.lookup(kind, id)
	if err != nil {
		return 0, err
	}
	c.LikeCount++
	return c.LikeCount, nil
}

func (r *ContentRepository) AppendComment(_ context.Context, kind entity.Kind, id string, cm entity.Comment) ([]entity.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return nil, r.FailWrites
	}
	c, err := r.lookup(kind, id)
	if err != nil {
		return nil, err
	}
	c.Comments = append(c.Comments, cm)
	return slices.Clone(c.Comments), nil
}

func (r *ContentRepository) AddMember(_ context.Context, communityID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return false, r.FailWrites
	}
	c, err := r.lookup(entity.KindCommunity, communityID)
	if err != nil {
		return false, err
	}
	if slices.Contains(c.Members, email) {
		return false, nil
	}
	c.Members = append(c.Members, email)
	return true, nil
}

func (r *ContentRepository) Delete(_ context.Context, kind entity.Kind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	if _, err := r.lookup(kind, id); err != nil {
		return err
	}
	delete(r.contents, id)
	r.order = slices.DeleteFunc(r.order, func(x string) bool { return x == id })
	return nil
}

func (r *ContentRepository) SearchVehicles(ctx context.Context, q string, limit int) ([]entity.Content, error) {
	all, _ := r.List(ctx, repository.ContentFilter{Kind: entity.KindVehicle})
	q = strings.ToLower(q)
	out := make([]entity.Content, 0)
	for _, c := range all {
		if c.Vehicle == nil {
			continue
		}
		if strings.Contains(strings.ToLower(c.Vehicle.Model), q) || strings.Contains(strings.ToLower(c.Vehicle.Nickname), q) {
			out = append(out, c)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ repository.ContentRepository = (*ContentRepository)(nil)
