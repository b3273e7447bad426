package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
)

const userColumns = `id, email, password_hash, name, avatar_url, cover_url, bio, xp, level, following, followers, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.AvatarURL, &u.CoverURL, &u.Bio,
		&u.XP, &u.Level, &u.Following, &u.Followers, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, sql string, args ...any) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.Level < 1 {
		u.Level = entity.LevelForXP(u.XP)
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, name, avatar_url, cover_url, bio, xp, level)
		VALUES (`+newID+`, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, u.ID, u.Email, u.Password, u.Name, u.AvatarURL, u.CoverURL, u.Bio, u.XP, u.Level)

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetByName(ctx context.Context, name string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE name = $1 ORDER BY created_at LIMIT 1
	`, name))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, bio = $2, avatar_url = $3, cover_url = $4, updated_at = $5
		WHERE email = $6
	`, u.Name, u.Bio, u.AvatarURL, u.CoverURL, u.UpdatedAt, u.Email)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AddExperience is a single UPDATE so concurrent awards never lose increments.
func (r *UserRepository) AddExperience(ctx context.Context, email string, amount int64) (*entity.User, error) {
	if amount < 0 {
		amount = 0
	}
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET xp = xp + $2,
		    level = GREATEST(level, (xp + $2) / $3 + 1),
		    updated_at = now()
		WHERE email = $1
		RETURNING `+userColumns, email, amount, int64(entity.XPPerLevel)))
}

// SetFollow updates both rows in one transaction. Rows are locked in email
// order so two opposite toggles cannot deadlock.
func (r *UserRepository) SetFollow(ctx context.Context, actorEmail, targetEmail string, follow bool) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `SELECT email FROM users WHERE email = ANY($1) ORDER BY email FOR UPDATE`,
		[]string{actorEmail, targetEmail})
	if err != nil {
		return err
	}
	found := 0
	for rows.Next() {
		found++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if found != 2 {
		return repository.ErrNotFound
	}

	if follow {
		_, err = tx.Exec(ctx, `
			UPDATE users SET following = array_append(following, $2), updated_at = now()
			WHERE email = $1 AND NOT ($2 = ANY(following))`, actorEmail, targetEmail)
		if err == nil {
			_, err = tx.Exec(ctx, `
				UPDATE users SET followers = array_append(followers, $2), updated_at = now()
				WHERE email = $1 AND NOT ($2 = ANY(followers))`, targetEmail, actorEmail)
		}
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE users SET following = array_remove(following, $2), updated_at = now()
			WHERE email = $1`, actorEmail, targetEmail)
		if err == nil {
			_, err = tx.Exec(ctx, `
				UPDATE users SET followers = array_remove(followers, $2), updated_at = now()
				WHERE email = $1`, targetEmail, actorEmail)
		}
	}
	if err != nil {
		return fmt.Errorf("set follow: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
}

func (r *UserRepository) TopByXP(ctx context.Context, limit int) ([]entity.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY xp DESC, created_at LIMIT $1`, limitOr(limit))
}

func (r *UserRepository) SearchByName(ctx context.Context, q string, limit int) ([]entity.User, error) {
	return r.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users WHERE name ILIKE $1 ORDER BY name LIMIT $2
	`, likePattern(q), limitOr(limit))
}

var _ repository.UserRepository = (*UserRepository)(nil)
