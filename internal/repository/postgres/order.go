package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

const orderColumns = "id, client_id, total, status, created_at, updated_at"

type orderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository backed by Postgres.
func NewOrderRepository(db *sqlx.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *entity.Order, placed func(*entity.Order) entity.Event) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var client entity.Client
	err = tx.GetContext(ctx, &client, "SELECT "+clientColumns+" FROM clients WHERE id = $1", o.ClientID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("client", o.ClientID)
	}
	if err != nil {
		return errors.Wrap(err, "failed to resolve client")
	}
	o.Client = &client

	for i := range o.Items {
		item := &o.Items[i]
		var p entity.Product
		err := tx.GetContext(ctx, &p, "SELECT "+productColumns+" FROM products WHERE id = $1", item.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("product", item.ProductID)
		}
		if err != nil {
			return errors.Wrap(err, "failed to resolve product")
		}
		item.Product = &p
		item.ID = uuid.NewString()
		item.OrderID = o.ID
		item.Position = i
	}

	event := placed(o)

	_, err = tx.NamedExecContext(ctx,
		"INSERT INTO orders ("+orderColumns+") VALUES (:id, :client_id, :total, :status, :created_at, :updated_at)",
		o,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert order")
	}

	for i := range o.Items {
		_, err = tx.NamedExecContext(ctx,
			"INSERT INTO order_items (id, order_id, product_id, quantity, position) VALUES (:id, :order_id, :product_id, :quantity, :position)",
			&o.Items[i],
		)
		if err != nil {
			return errors.Wrap(err, "failed to insert order item")
		}
	}

	if err := appendEvents(ctx, tx, o.ID, entity.StreamTypeOrder, 0, event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

type orderItemRow struct {
	entity.OrderItem
	ProductDescription string          `db:"product_description"`
	ProductPrice       decimal.Decimal `db:"product_price"`
	ProductCreatedAt   time.Time       `db:"product_created_at"`
	ProductUpdatedAt   time.Time       `db:"product_updated_at"`
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.db.GetContext(ctx, &o, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query order")
	}

	var client entity.Client
	if err := r.db.GetContext(ctx, &client, "SELECT "+clientColumns+" FROM clients WHERE id = $1", o.ClientID); err != nil {
		return nil, errors.Wrap(err, "failed to query order client")
	}
	o.Client = &client

	var rows []orderItemRow
	err = r.db.SelectContext(ctx, &rows, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.position,
			p.description AS product_description, p.price AS product_price,
			p.created_at AS product_created_at, p.updated_at AS product_updated_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.position`, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query order items")
	}

	o.Items = make([]entity.OrderItem, 0, len(rows))
	for _, row := range rows {
		item := row.OrderItem
		item.Product = &entity.Product{
			ID:          row.ProductID,
			Description: row.ProductDescription,
			Price:       row.ProductPrice,
			CreatedAt:   row.ProductCreatedAt,
			UpdatedAt:   row.ProductUpdatedAt,
		}
		o.Items = append(o.Items, item)
	}
	return &o, nil
}

func (r *orderRepository) Cancel(ctx context.Context, id string, cancel func(*entity.Order) entity.Event) (*entity.Order, entity.Event, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var o entity.Order
	err = tx.GetContext(ctx, &o, "SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, apperr.NotFound("order", id)
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to lock order")
	}

	event := cancel(&o)

	_, err = tx.ExecContext(ctx, "UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3", o.Status, o.UpdatedAt, o.ID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to update order status")
	}
	if err := appendEvents(ctx, tx, o.ID, entity.StreamTypeOrder, AppendAtHead, event); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &o, event, nil
}
