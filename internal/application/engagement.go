package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
	"github.com/oksasatya/midnight-circuit/pkg/apperror"
)

// Engagement applies likes, comments and memberships to any content kind.
type Engagement struct {
	Contents repository.ContentRepository
	Notifier *Notifier
	Effects  *Effects
	Logger   *logrus.Logger

	now func() time.Time
}

func NewEngagement(contents repository.ContentRepository, notifier *Notifier, effects *Effects, logger *logrus.Logger) *Engagement {
	return &Engagement{Contents: contents, Notifier: notifier, Effects: effects, Logger: logger, now: time.Now}
}

func (e *Engagement) load(ctx context.Context, kind entity.Kind, id string) (*entity.Content, entity.KindSpec, error) {
	spec, ok := kind.Spec()
	if !ok {
		return nil, spec, apperror.New(apperror.ErrNotFound, "unknown content kind %q", kind)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, spec, apperror.New(apperror.ErrNotFound, "%s %s not found", kind, id)
	}
	c, err := e.Contents.Get(ctx, kind, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, spec, apperror.New(apperror.ErrNotFound, "%s %s not found", kind, id)
	}
	if err != nil {
		return nil, spec, apperror.Wrap(apperror.ErrStorage, err, "load %s", kind)
	}
	return c, spec, nil
}

// storageErr maps a repository write failure; a record that vanished between
// load and write is still NotFound.
func storageErr(err error, kind entity.Kind, id, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.New(apperror.ErrNotFound, "%s %s not found", kind, id)
	}
	return apperror.Wrap(apperror.ErrStorage, err, "%s %s", op, kind)
}

// Like adds one like to the entity. Repeat likes by the same actor count again.
func (e *Engagement) Like(ctx context.Context, kind entity.Kind, id string, actor entity.Actor) (int64, error) {
	c, spec, err := e.load(ctx, kind, id)
	if err != nil {
		return 0, err
	}
	count, err := e.Contents.IncrementLikes(ctx, kind, id)
	if err != nil {
		return 0, storageErr(err, kind, id, "like")
	}
	engagementActions.Add("like", 1)

	owner, preview := c.OwnerEmail, c.PreviewURL()
	if owner == "" {
		// Unresolved owner: nobody to notify.
		return count, nil
	}
	e.Effects.Run(ctx, "like.notify", func(ctx context.Context) error {
		_, err := e.Notifier.Notify(ctx, entity.NotificationLike, actor, owner, spec.LikeText, preview)
		return err
	})
	return count, nil
}

// Comment appends a comment and returns the entity's full comment list.
func (e *Engagement) Comment(ctx context.Context, kind entity.Kind, id string, actor entity.Actor, text string) ([]entity.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.Validation("comment text is required", map[string]string{"text": "is required"})
	}
	c, spec, err := e.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	cm := entity.Comment{
		AuthorEmail:  actor.Email,
		AuthorName:   actor.Name,
		AuthorAvatar: actor.AvatarURL,
		Text:         text,
		CreatedAt:    e.now().UTC(),
	}
	comments, err := e.Contents.AppendComment(ctx, kind, id, cm)
	if err != nil {
		return nil, storageErr(err, kind, id, "comment on")
	}
	engagementActions.Add("comment", 1)

	owner, preview := c.OwnerEmail, c.PreviewURL()
	if owner == "" {
		return comments, nil
	}
	e.Effects.Run(ctx, "comment.notify", func(ctx context.Context) error {
		_, err := e.Notifier.Notify(ctx, entity.NotificationComment, actor, owner, spec.CommentText, preview)
		return err
	})
	return comments, nil
}

// JoinCommunity adds member to the community. Joining twice changes nothing.
// Joins neither reward nor notify anyone.
func (e *Engagement) JoinCommunity(ctx context.Context, communityID, member string) error {
	if member == "" {
		return apperror.New(apperror.ErrNotFound, "user not found")
	}
	if _, _, err := e.load(ctx, entity.KindCommunity, communityID); err != nil {
		return err
	}
	added, err := e.Contents.AddMember(ctx, communityID, member)
	if err != nil {
		return storageErr(err, entity.KindCommunity, communityID, "join")
	}
	if added {
		engagementActions.Add("join", 1)
	}
	return nil
}

// Delete removes content owned or authored by actorEmail.
func (e *Engagement) Delete(ctx context.Context, kind entity.Kind, id, actorEmail string) error {
	c, _, err := e.load(ctx, kind, id)
	if err != nil {
		return err
	}
	if actorEmail == "" || (actorEmail != c.OwnerEmail && actorEmail != c.AuthorEmail) {
		return apperror.New(apperror.ErrForbidden, "only the owner can delete this %s", kind)
	}
	if err := e.Contents.Delete(ctx, kind, id); err != nil {
		return storageErr(err, kind, id, "delete")
	}
	return nil
}

// List returns content of one kind, newest first.
func (e *Engagement) List(ctx context.Context, f repository.ContentFilter) ([]entity.Content, error) {
	if !f.Kind.Valid() {
		return nil, apperror.New(apperror.ErrNotFound, "unknown content kind %q", f.Kind)
	}
	items, err := e.Contents.List(ctx, f)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "list %s", f.Kind)
	}
	return items, nil
}

// Get returns a single entity.
func (e *Engagement) Get(ctx context.Context, kind entity.Kind, id string) (*entity.Content, error) {
	c, _, err := e.load(ctx, kind, id)
	return c, err
}
