package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

const userColumns = "id, name, email, password, created_at, updated_at"

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository backed by Postgres.
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.db.NamedExecContext(ctx,
		"INSERT INTO users (id, name, email, password, created_at, updated_at) VALUES (:id, :name, :email, :password, :created_at, :updated_at)",
		u,
	)
	if pqCode(err) == codeUniqueViolation {
		v := apperr.NewValidation()
		v.Add("email", "The email has already been taken.")
		return v
	}
	if err != nil {
		return errors.Wrap(err, "failed to insert user")
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *userRepository) findOne(ctx context.Context, column, value string) (*entity.User, error) {
	var u entity.User
	err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE "+column+" = $1", value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user", value)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query user by %s", column)
	}
	return &u, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	var taken bool
	err := r.db.GetContext(ctx, &taken,
		"SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2)",
		email, exceptID,
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to check email")
	}
	return taken, nil
}

func (r *userRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx,
		"UPDATE users SET name = :name, email = :email, password = :password, updated_at = :updated_at WHERE id = :id",
		u,
	)
	if pqCode(err) == codeUniqueViolation {
		v := apperr.NewValidation()
		v.Add("email", "The email has already been taken.")
		return v
	}
	if err != nil {
		return errors.Wrap(err, "failed to update user")
	}
	return expectOne(res, "user", u.ID)
}

// expectOne reports NotFound when a write matched no row.
func expectOne(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return apperr.NotFound(resource, id)
	}
	return nil
}
