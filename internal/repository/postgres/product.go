package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

const productColumns = "id, description, price, created_at, updated_at"

type productRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sqlx.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.db.NamedExecContext(ctx,
		"INSERT INTO products ("+productColumns+") VALUES (:id, :description, :price, :created_at, :updated_at)",
		p,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert product")
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.GetContext(ctx, &p, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("product", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query product")
	}
	return &p, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []string) (map[string]entity.Product, error) {
	found := make(map[string]entity.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	query, args, err := sqlx.In("SELECT "+productColumns+" FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build product query")
	}
	var products []entity.Product
	if err := r.db.SelectContext(ctx, &products, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to query products")
	}
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

func (r *productRepository) Update(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx,
		"UPDATE products SET description = :description, price = :price, updated_at = :updated_at WHERE id = :id",
		p,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update product")
	}
	return expectOne(res, "product", p.ID)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		err = conflictOnReference(err, "product %s is referenced by orders", id)
		return errors.Wrap(err, "failed to delete product")
	}
	return expectOne(res, "product", id)
}

func (r *productRepository) List(ctx context.Context, f repository.ProductFilter) ([]entity.Product, int, error) {
	var (
		conds []string
		args  []any
	)
	where := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Description != "" {
		where("description ILIKE $%d", likePattern(f.Description))
	}
	if f.Price != "" {
		where("CAST(price AS TEXT) ILIKE $%d", likePattern(f.Price))
	}
	clause := ""
	if len(conds) > 0 {
		clause = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM products"+clause, args...); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count products")
	}

	products := []entity.Product{}
	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY created_at, id LIMIT %d OFFSET %d",
		productColumns, clause, f.PerPage, f.Offset())
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "failed to query products")
	}
	return products, total, nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM products"); err != nil {
		return 0, errors.Wrap(err, "failed to count products")
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for i := range products {
		_, err := tx.NamedExecContext(ctx,
			"INSERT INTO products ("+productColumns+") VALUES (:id, :description, :price, :created_at, :updated_at)",
			&products[i],
		)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to seed product %s", products[i].ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}
	return len(products), nil
}
