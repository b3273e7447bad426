package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/midnight-circuit/internal/application"
	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/infrastructure/memory"
)

// fixture wires the engine over in-memory repositories with synchronous effects.
type fixture struct {
	users    *memory.UserRepository
	contents *memory.ContentRepository
	notes    *memory.NotificationRepository
	media    *memory.MediaStore
	pub      *recordingPublisher

	logger *logrus.Logger
	hook   *test.Hook

	effects    *application.Effects
	ledger     *application.Ledger
	notifier   *application.Notifier
	graph      *application.Graph
	engagement *application.Engagement
	authoring  *application.Authoring
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		users:    memory.NewUserRepository(),
		contents: memory.NewContentRepository(),
		notes:    memory.NewNotificationRepository(),
		media:    memory.NewMediaStore(),
		pub:      &recordingPublisher{},
		logger:   logger,
		hook:     hook,
	}
	f.effects = application.NewEffects(logger, false, time.Second)
	f.ledger = application.NewLedger(f.users, logger)
	f.notifier = application.NewNotifier(f.notes, f.pub, logger)
	f.graph = application.NewGraph(f.users, f.notifier, f.effects, nil, 0, logger)
	f.engagement = application.NewEngagement(f.contents, f.notifier, f.effects, logger)
	f.authoring = application.NewAuthoring(f.contents, f.users, f.ledger, f.media, nil, f.effects, logger)
	return f
}

// addUser stores a user with the given display name and returns its actor snapshot.
func (f *fixture) addUser(t *testing.T, email, name string) entity.Actor {
	t.Helper()
	u := &entity.User{
		Email:     email,
		Name:      name,
		AvatarURL: "https://avatars.test/" + name,
		Level:     1,
		Following: []string{},
		Followers: []string{},
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.Actor()
}

func (f *fixture) user(t *testing.T, email string) *entity.User {
	t.Helper()
	u, err := f.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u
}

func (f *fixture) inbox(t *testing.T, email string) []entity.Notification {
	t.Helper()
	items, err := f.notifier.List(context.Background(), email)
	require.NoError(t, err)
	return items
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body)
	return p.err
}

func (p *recordingPublisher) published() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.jobs...)
}
