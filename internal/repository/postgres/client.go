package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

const (
	clientColumns  = "id, name, email, phone, user_id, created_at, updated_at"
	addressColumns = "id, client_id, cep, number, neighborhood, city, state"
)

type clientRepository struct {
	db *sqlx.DB
}

// NewClientRepository creates a new ClientRepository backed by Postgres.
func NewClientRepository(db *sqlx.DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, c *entity.Client) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx,
		"INSERT INTO clients ("+clientColumns+") VALUES (:id, :name, :email, :phone, :user_id, :created_at, :updated_at)",
		c,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert client")
	}

	if c.Address != nil {
		if c.Address.ID == "" {
			c.Address.ID = uuid.NewString()
		}
		c.Address.ClientID = c.ID
		_, err = tx.NamedExecContext(ctx,
			"INSERT INTO address ("+addressColumns+") VALUES (:id, :client_id, :cep, :number, :neighborhood, :city, :state)",
			c.Address,
		)
		if err != nil {
			return errors.Wrap(err, "failed to insert address")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (r *clientRepository) FindByID(ctx context.Context, id string) (*entity.Client, error) {
	var c entity.Client
	err := r.db.GetContext(ctx, &c, "SELECT "+clientColumns+" FROM clients WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("client", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query client")
	}

	var a entity.Address
	err = r.db.GetContext(ctx, &a, "SELECT "+addressColumns+" FROM address WHERE client_id = $1", id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, errors.Wrap(err, "failed to query address")
	default:
		c.Address = &a
	}
	return &c, nil
}

func (r *clientRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)", id); err != nil {
		return false, errors.Wrap(err, "failed to check client")
	}
	return exists, nil
}

func (r *clientRepository) Update(ctx context.Context, c *entity.Client) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	c.UpdatedAt = time.Now().UTC()
	res, err := tx.NamedExecContext(ctx,
		"UPDATE clients SET name = :name, email = :email, phone = :phone, updated_at = :updated_at WHERE id = :id",
		c,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update client")
	}
	if err := expectOne(res, "client", c.ID); err != nil {
		return err
	}

	if c.Address != nil {
		c.Address.ClientID = c.ID
		// matches nothing when the client has no stored address
		_, err = tx.NamedExecContext(ctx,
			"UPDATE address SET cep = :cep, number = :number, neighborhood = :neighborhood, city = :city, state = :state WHERE client_id = :client_id",
			c.Address,
		)
		if err != nil {
			return errors.Wrap(err, "failed to update address")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		err = conflictOnReference(err, "client %s still has orders", id)
		return errors.Wrap(err, "failed to delete client")
	}
	return expectOne(res, "client", id)
}

func (r *clientRepository) List(ctx context.Context, f repository.ClientFilter) ([]entity.Client, int, error) {
	var (
		conds []string
		args  []any
	)
	where := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	where("user_id = $%d", f.UserID)
	if f.Name != "" {
		where("name ILIKE $%d", likePattern(f.Name))
	}
	if f.Email != "" {
		where("email ILIKE $%d", likePattern(f.Email))
	}
	if f.Phone != "" {
		where("phone ILIKE $%d", likePattern(f.Phone))
	}
	clause := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM clients"+clause, args...); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count clients")
	}

	clients := []entity.Client{}
	query := fmt.Sprintf("SELECT %s FROM clients%s ORDER BY created_at, id LIMIT %d OFFSET %d",
		clientColumns, clause, f.PerPage, f.Offset())
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "failed to query clients")
	}
	if err := r.attachAddresses(ctx, clients); err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *clientRepository) attachAddresses(ctx context.Context, clients []entity.Client) error {
	if len(clients) == 0 {
		return nil
	}
	ids := make([]string, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	query, args, err := sqlx.In("SELECT "+addressColumns+" FROM address WHERE client_id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "failed to build address query")
	}
	var addresses []entity.Address
	if err := r.db.SelectContext(ctx, &addresses, r.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "failed to query addresses")
	}
	byClient := make(map[string]*entity.Address, len(addresses))
	for i := range addresses {
		byClient[addresses[i].ClientID] = &addresses[i]
	}
	for i := range clients {
		clients[i].Address = byClient[clients[i].ID]
	}
	return nil
}

func (r *clientRepository) Stats(ctx context.Context) ([]entity.ClientStat, error) {
	stats := []entity.ClientStat{}
	err := r.db.SelectContext(ctx, &stats, `
		SELECT a.city, a.state, COUNT(c.id) AS total
		FROM clients c
		JOIN address a ON a.client_id = c.id
		GROUP BY a.city, a.state
		ORDER BY a.state, a.city`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query client stats")
	}
	return stats, nil
}
