package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, m *entity.Message) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, sender, recipient, text) VALUES (`+newID+`, $2, $3, $4)
		RETURNING id, created_at
	`, m.ID, m.From, m.To, m.Text)
	return mapErr(row.Scan(&m.ID, &m.CreatedAt))
}

func (r *MessageRepository) Conversation(ctx context.Context, a, b string) ([]entity.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender, recipient, text, created_at
		FROM messages
		WHERE (sender = $1 AND recipient = $2) OR (sender = $2 AND recipient = $1)
		ORDER BY created_at
	`, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Message, 0)
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var _ repository.MessageRepository = (*MessageRepository)(nil)
