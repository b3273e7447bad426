package application

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
	"github.com/oksasatya/midnight-circuit/pkg/apperror"
	"github.com/oksasatya/midnight-circuit/pkg/validation"
)

// MediaStore persists uploaded files and returns their public URL.
type MediaStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// MediaUpload is a file attached to a create or profile request.
type MediaUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// ContentInput carries the user-supplied fields for any kind. Communities use
// Title as their name and Body as their description.
type ContentInput struct {
	Title       string
	Body        string
	CommunityID string

	Brand     string
	Model     string
	Nickname  string
	OwnerName string
	Specs     map[string]string
	Mods      []string
}

type postPayload struct {
	Body string `json:"body" validate:"max=5000"`
}

type sprintPayload struct {
	Body  string       `json:"description" validate:"max=2000"`
	Media *MediaUpload `json:"media" validate:"required"`
}

type vehiclePayload struct {
	Brand     string `json:"brand" validate:"required,max=60"`
	Model     string `json:"model" validate:"required,max=60"`
	Nickname  string `json:"nickname" validate:"max=60"`
	OwnerName string `json:"owner_name" validate:"max=80"`
}

type topicPayload struct {
	Title       string `json:"title" validate:"required,max=200"`
	Body        string `json:"body" validate:"max=10000"`
	CommunityID string `json:"community_id" validate:"required,uuid"`
}

type communityPayload struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

// Authoring validates and creates content, then rewards its owner.
type Authoring struct {
	Contents repository.ContentRepository
	Users    repository.UserRepository
	Ledger   *Ledger
	Media    MediaStore
	Search   SearchIndex
	Effects  *Effects
	Logger   *logrus.Logger

	validate *validator.Validate
	now      func() time.Time
}

func NewAuthoring(contents repository.ContentRepository, users repository.UserRepository, ledger *Ledger, media MediaStore, search SearchIndex, effects *Effects, logger *logrus.Logger) *Authoring {
	return &Authoring{
		Contents: contents,
		Users:    users,
		Ledger:   ledger,
		Media:    media,
		Search:   search,
		Effects:  effects,
		Logger:   logger,
		validate: validation.New(),
		now:      time.Now,
	}
}

func (a *Authoring) check(in ContentInput, kind entity.Kind, media *MediaUpload) error {
	if media != nil && media.Reader == nil {
		media = nil
	}
	var payload any
	switch kind {
	case entity.KindPost:
		payload = postPayload{Body: in.Body}
	case entity.KindSprint:
		payload = sprintPayload{Body: in.Body, Media: media}
	case entity.KindVehicle:
		payload = vehiclePayload{Brand: in.Brand, Model: in.Model, Nickname: in.Nickname, OwnerName: in.OwnerName}
	case entity.KindTopic:
		payload = topicPayload{Title: in.Title, Body: in.Body, CommunityID: in.CommunityID}
	case entity.KindCommunity:
		payload = communityPayload{Name: in.Title, Description: in.Body}
	default:
		return apperror.New(apperror.ErrNotFound, "unknown content kind %q", kind)
	}
	if err := a.validate.Struct(payload); err != nil {
		return apperror.Validation("invalid "+string(kind), validation.ToDetails(err))
	}
	return nil
}

// CreateContent validates in for kind, stores the new entity attributed to
// author and rewards its owner.
func (a *Authoring) CreateContent(ctx context.Context, kind entity.Kind, author entity.Actor, in ContentInput, media *MediaUpload) (*entity.Content, error) {
	spec, ok := kind.Spec()
	if !ok {
		return nil, apperror.New(apperror.ErrNotFound, "unknown content kind %q", kind)
	}
	if author.Email == "" {
		return nil, apperror.New(apperror.ErrUnauthorized, "author required")
	}
	if err := a.check(in, kind, media); err != nil {
		return nil, err
	}

	c := &entity.Content{
		ID:           uuid.NewString(),
		Kind:         kind,
		OwnerEmail:   author.Email,
		AuthorEmail:  author.Email,
		AuthorName:   author.Name,
		AuthorAvatar: author.AvatarURL,
		Title:        strings.TrimSpace(in.Title),
		Body:         strings.TrimSpace(in.Body),
		MediaURL:     spec.DefaultMedia,
		MediaType:    entity.MediaImage,
		CreatedAt:    a.now().UTC(),
	}

	switch kind {
	case entity.KindTopic:
		if err := a.requireCommunity(ctx, in.CommunityID); err != nil {
			return nil, err
		}
		c.CommunityID = in.CommunityID
	case entity.KindCommunity:
		c.Members = []string{author.Email}
		c.Admins = []string{author.Email}
	case entity.KindVehicle:
		c.Vehicle = &entity.VehicleDetails{
			Brand:     strings.TrimSpace(in.Brand),
			Model:     strings.TrimSpace(in.Model),
			Nickname:  strings.TrimSpace(in.Nickname),
			OwnerName: strings.TrimSpace(in.OwnerName),
			Specs:     in.Specs,
			Mods:      cleanList(in.Mods),
		}
		owner, err := a.resolveOwner(ctx, c.Vehicle.OwnerName)
		if err != nil {
			return nil, err
		}
		c.OwnerEmail = owner
	}

	if media != nil && media.Reader != nil {
		url, err := a.upload(ctx, c, media)
		if err != nil {
			return nil, err
		}
		c.MediaURL = url
		if strings.HasPrefix(media.ContentType, "video") {
			c.MediaType = entity.MediaVideo
		}
	}

	if err := a.Contents.Create(ctx, c); err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "create %s", kind)
	}
	engagementActions.Add("create_"+string(kind), 1)

	owner, reward := c.OwnerEmail, spec.Reward
	created := *c
	a.Effects.Run(ctx, "create.reward", func(ctx context.Context) error {
		if err := a.Ledger.AwardExperience(ctx, owner, reward); err != nil {
			return err
		}
		if created.Kind == entity.KindVehicle && a.Search != nil {
			return a.Search.IndexVehicle(ctx, &created)
		}
		return nil
	})
	return c, nil
}

// resolveOwner maps a declared owner display name to an email. No match
// leaves the vehicle without an owner.
func (a *Authoring) resolveOwner(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	u, err := a.Users.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperror.Wrap(apperror.ErrStorage, err, "resolve vehicle owner")
	}
	return u.Email, nil
}

func (a *Authoring) requireCommunity(ctx context.Context, id string) error {
	_, err := a.Contents.Get(ctx, entity.KindCommunity, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.New(apperror.ErrNotFound, "community %s not found", id)
	}
	if err != nil {
		return apperror.Wrap(apperror.ErrStorage, err, "load community")
	}
	return nil
}

func (a *Authoring) upload(ctx context.Context, c *entity.Content, media *MediaUpload) (string, error) {
	if a.Media == nil {
		return "", apperror.New(apperror.ErrStorage, "media storage not configured")
	}
	ext := strings.ToLower(filepath.Ext(media.Filename))
	objectPath := path.Join(string(c.Kind)+"s", c.ID+ext)
	url, err := a.Media.Upload(ctx, objectPath, media.ContentType, media.Reader)
	if err != nil {
		return "", apperror.Wrap(apperror.ErrStorage, err, "upload media")
	}
	return url, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
