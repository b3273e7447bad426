package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
)

const (
	uniqueViolation    = "23505"
	invalidTextRepr    = "22P02"
	defaultSearchLimit = 20

	// newID keeps an id assigned by the caller in $1, else generates one.
	newID = `COALESCE(NULLIF($1, '')::uuid, gen_random_uuid())`
)

// mapErr translates driver errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return repository.ErrDuplicate
		case invalidTextRepr:
			// malformed uuid literal
			return repository.ErrNotFound
		}
	}
	return err
}

func limitOr(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	return limit
}

// likePattern escapes q for use inside an ILIKE '%q%' pattern.
func likePattern(q string) string {
	out := make([]byte, 0, len(q)+2)
	out = append(out, '%')
	for i := 0; i < len(q); i++ {
		switch q[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, q[i])
	}
	return string(append(out, '%'))
}
