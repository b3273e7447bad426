package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
)

const contentColumns = `id, kind, owner_email, author_email, author_name, author_avatar, title, body,
	media_url, media_type, community_id, vehicle, members, admins, like_count, comments, created_at`

// ContentRepository stores every content kind in the contents table,
// discriminated by the kind column.
type ContentRepository struct {
	pool *pgxpool.Pool
}

func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

func scanContent(row pgx.Row) (*entity.Content, error) {
	c := &entity.Content{}
	var kind, mediaType string
	if err := row.Scan(&c.ID, &kind, &c.OwnerEmail, &c.AuthorEmail, &c.AuthorName, &c.AuthorAvatar,
		&c.Title, &c.Body, &c.MediaURL, &mediaType, &c.CommunityID, &c.Vehicle, &c.Members, &c.Admins,
		&c.LikeCount, &c.Comments, &c.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	c.Kind = entity.Kind(kind)
	c.MediaType = entity.MediaType(mediaType)
	return c, nil
}

func (r *ContentRepository) queryContents(ctx context.Context, sql string, args ...any) ([]entity.Content, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := make([]entity.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ContentRepository) Create(ctx context.Context, c *entity.Content) error {
	if c.Members == nil {
		c.Members = []string{}
	}
	if c.Admins == nil {
		c.Admins = []string{}
	}
	if c.Comments == nil {
		c.Comments = []entity.Comment{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO contents (id, kind, owner_email, author_email, author_name, author_avatar, title, body,
			media_url, media_type, community_id, vehicle, members, admins)
		VALUES (`+newID+`, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`, c.ID, string(c.Kind), c.OwnerEmail, c.AuthorEmail, c.AuthorName, c.AuthorAvatar, c.Title, c.Body,
		c.MediaURL, string(c.MediaType), c.CommunityID, c.Vehicle, c.Members, c.Admins)

	return mapErr(row.Scan(&c.ID, &c.CreatedAt))
}

func (r *ContentRepository) Get(ctx context.Context, kind entity.Kind, id string) (*entity.Content, error) {
	return scanContent(r.pool.QueryRow(ctx, `SELECT `+contentColumns+` FROM contents WHERE id = $1 AND kind = $2`,
		id, string(kind)))
}

func (r *ContentRepository) List(ctx context.Context, f repository.ContentFilter) ([]entity.Content, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 200
	}
	return r.queryContents(ctx, `
		SELECT `+contentColumns+` FROM contents
		WHERE kind = $1 AND ($2 = '' OR community_id = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, string(f.Kind), f.CommunityID, limit)
}

func (r *ContentRepository) IncrementLikes(ctx context.Context, kind entity.Kind, id string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		UPDATE contents SET like_count = like_count + 1
		WHERE id = $1 AND kind = $2
		RETURNING like_count
	`, id, string(kind)).Scan(&n)
	return n, mapErr(err)
}

func (r *ContentRepository) AppendComment(ctx context.Context, kind entity.Kind, id string, cm entity.Comment) ([]entity.Comment, error) {
	b, err := json.Marshal(cm)
	if err != nil {
		return nil, err
	}
	var out []entity.Comment
	err = r.pool.QueryRow(ctx, `
		UPDATE contents SET comments = comments || jsonb_build_array($3::jsonb)
		WHERE id = $1 AND kind = $2
		RETURNING comments
	`, id, string(kind), string(b)).Scan(&out)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// AddMember reports false both when the community already lists email and
// when no community matched; the second case is told apart by a lookup.
func (r *ContentRepository) AddMember(ctx context.Context, communityID, email string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE contents SET members = array_append(members, $2)
		WHERE id = $1 AND kind = 'community' AND NOT ($2 = ANY(members))
	`, communityID, email)
	if err != nil {
		return false, mapErr(err)
	}
	if res.RowsAffected() == 1 {
		return true, nil
	}
	if _, err := r.Get(ctx, entity.KindCommunity, communityID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *ContentRepository) Delete(ctx context.Context, kind entity.Kind, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM contents WHERE id = $1 AND kind = $2`, id, string(kind))
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ContentRepository) SearchVehicles(ctx context.Context, q string, limit int) ([]entity.Content, error) {
	return r.queryContents(ctx, `
		SELECT `+contentColumns+` FROM contents
		WHERE kind = 'vehicle' AND (vehicle->>'model' ILIKE $1 OR vehicle->>'nickname' ILIKE $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, likePattern(q), limitOr(limit))
}

var _ repository.ContentRepository = (*ContentRepository)(nil)
