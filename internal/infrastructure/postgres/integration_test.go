//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
	"github.com/oksasatya/midnight-circuit/internal/infrastructure/postgres"
)

const (
	testUser     = "postgres"
	testPassword = "postgres"
	testDB       = "midnight_test"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       testDB,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", testUser, testPassword, host, port.Port(), testDB)
}

func migrateUp(t *testing.T, dsn string) {
	t.Helper()
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	require.NoError(t, err)
	dir, err := filepath.Abs(filepath.Join("..", "..", "..", "db", "migrations"))
	require.NoError(t, err)
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	require.NoError(t, err)
	require.NoError(t, m.Up())
}

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := startPostgres(t)
	migrateUp(t, dsn)
	pool, err := postgres.NewPool(context.Background(), dsn, postgres.PoolOptions{MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func createUser(t *testing.T, users *postgres.UserRepository, email, name string) {
	t.Helper()
	require.NoError(t, users.Create(context.Background(), &entity.User{
		Email: email, Password: "x", Name: name, Level: 1,
		Following: []string{}, Followers: []string{},
	}))
}

func TestPostgresRepositories(t *testing.T) {
	pool := setupPool(t)
	users := postgres.NewUserRepository(pool)
	contents := postgres.NewContentRepository(pool)
	notes := postgres.NewNotificationRepository(pool)
	ctx := context.Background()

	createUser(t, users, "a@mc.test", "Ana")
	createUser(t, users, "b@mc.test", "Ben")

	t.Run("duplicate email", func(t *testing.T) {
		err := users.Create(ctx, &entity.User{Email: "a@mc.test", Password: "x", Name: "Other", Level: 1})
		require.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("experience keeps level monotonic", func(t *testing.T) {
		u, err := users.AddExperience(ctx, "a@mc.test", 1050)
		require.NoError(t, err)
		assert.EqualValues(t, 1050, u.XP)
		assert.EqualValues(t, 2, u.Level)

		_, err = pool.Exec(ctx, `UPDATE users SET level = 9 WHERE email = 'a@mc.test'`)
		require.NoError(t, err)
		u, err = users.AddExperience(ctx, "a@mc.test", 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1060, u.XP)
		assert.EqualValues(t, 9, u.Level)

		_, err = users.AddExperience(ctx, "ghost@mc.test", 10)
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("concurrent experience awards", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := users.AddExperience(ctx, "b@mc.test", 100)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		u, err := users.GetByEmail(ctx, "b@mc.test")
		require.NoError(t, err)
		assert.EqualValues(t, 2000, u.XP)
		assert.EqualValues(t, 3, u.Level)
	})

	t.Run("follow writes both sides", func(t *testing.T) {
		require.NoError(t, users.SetFollow(ctx, "a@mc.test", "b@mc.test", true))
		require.NoError(t, users.SetFollow(ctx, "a@mc.test", "b@mc.test", true))
		a, err := users.GetByEmail(ctx, "a@mc.test")
		require.NoError(t, err)
		b, err := users.GetByEmail(ctx, "b@mc.test")
		require.NoError(t, err)
		assert.Equal(t, []string{"b@mc.test"}, a.Following)
		assert.Equal(t, []string{"a@mc.test"}, b.Followers)

		require.NoError(t, users.SetFollow(ctx, "a@mc.test", "b@mc.test", false))
		a, _ = users.GetByEmail(ctx, "a@mc.test")
		b, _ = users.GetByEmail(ctx, "b@mc.test")
		assert.Empty(t, a.Following)
		assert.Empty(t, b.Followers)

		require.ErrorIs(t, users.SetFollow(ctx, "a@mc.test", "ghost@mc.test", true), repository.ErrNotFound)
	})

	t.Run("opposite toggles in parallel", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() { defer wg.Done(); assert.NoError(t, users.SetFollow(ctx, "a@mc.test", "b@mc.test", true)) }()
			go func() { defer wg.Done(); assert.NoError(t, users.SetFollow(ctx, "b@mc.test", "a@mc.test", true)) }()
		}
		wg.Wait()
		a, _ := users.GetByEmail(ctx, "a@mc.test")
		b, _ := users.GetByEmail(ctx, "b@mc.test")
		assert.Equal(t, []string{"b@mc.test"}, a.Following)
		assert.Equal(t, []string{"b@mc.test"}, a.Followers)
		assert.Equal(t, []string{"a@mc.test"}, b.Following)
		assert.Equal(t, []string{"a@mc.test"}, b.Followers)
	})

	t.Run("likes and comments are atomic", func(t *testing.T) {
		post := &entity.Content{Kind: entity.KindPost, OwnerEmail: "a@mc.test", AuthorEmail: "a@mc.test", Body: "hi"}
		require.NoError(t, contents.Create(ctx, post))

		var wg sync.WaitGroup
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := contents.IncrementLikes(ctx, entity.KindPost, post.ID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		got, err := contents.Get(ctx, entity.KindPost, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 25, got.LikeCount)

		_, err = contents.AppendComment(ctx, entity.KindPost, post.ID, entity.Comment{AuthorEmail: "b@mc.test", Text: "one"})
		require.NoError(t, err)
		list, err := contents.AppendComment(ctx, entity.KindPost, post.ID, entity.Comment{AuthorEmail: "a@mc.test", Text: "two"})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "one", list[0].Text)
		assert.Equal(t, "two", list[1].Text)

		_, err = contents.IncrementLikes(ctx, entity.KindTopic, post.ID)
		require.ErrorIs(t, err, repository.ErrNotFound)
		_, err = contents.Get(ctx, entity.KindPost, "not-a-uuid")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("member append is guarded", func(t *testing.T) {
		club := &entity.Content{Kind: entity.KindCommunity, OwnerEmail: "a@mc.test", AuthorEmail: "a@mc.test", Title: "JDM",
			Members: []string{"a@mc.test"}, Admins: []string{"a@mc.test"}}
		require.NoError(t, contents.Create(ctx, club))

		added, err := contents.AddMember(ctx, club.ID, "b@mc.test")
		require.NoError(t, err)
		assert.True(t, added)
		added, err = contents.AddMember(ctx, club.ID, "b@mc.test")
		require.NoError(t, err)
		assert.False(t, added)

		got, err := contents.Get(ctx, entity.KindCommunity, club.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"a@mc.test", "b@mc.test"}, got.Members)

		_, err = contents.AddMember(ctx, uuid.NewString(), "b@mc.test")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("notifications are listed in full", func(t *testing.T) {
		for i := 0; i < 130; i++ {
			require.NoError(t, notes.Create(ctx, &entity.Notification{
				Kind: entity.NotificationLike, ActorEmail: "a@mc.test", Recipient: "b@mc.test", Text: "liked your post.",
			}))
		}
		items, err := notes.ListByRecipient(ctx, "b@mc.test")
		require.NoError(t, err)
		assert.Len(t, items, 130)

		n, err := notes.MarkAllRead(ctx, "b@mc.test")
		require.NoError(t, err)
		assert.EqualValues(t, 130, n)
		n, err = notes.MarkAllRead(ctx, "b@mc.test")
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
