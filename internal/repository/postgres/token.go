package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

type tokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a new TokenRepository backed by Postgres.
func NewTokenRepository(db *sqlx.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, t *entity.AccessToken) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO access_tokens (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)",
		t.ID, t.UserID, t.CreatedAt, t.ExpiresAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert access token")
	}
	return nil
}

func (r *tokenRepository) Active(ctx context.Context, id, userID string, now time.Time) (bool, error) {
	var active bool
	err := r.db.GetContext(ctx, &active,
		"SELECT EXISTS (SELECT 1 FROM access_tokens WHERE id = $1 AND user_id = $2 AND expires_at > $3)",
		id, userID, now,
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to look up access token")
	}
	return active, nil
}

func (r *tokenRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM access_tokens WHERE user_id = $1", userID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete access tokens")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read affected rows")
	}
	return n, nil
}
