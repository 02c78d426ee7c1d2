package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var now = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

func clientRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "phone", "user_id", "created_at", "updated_at"}).
		AddRow("c1", "Carlos", "carlos@example.com", "9999", "u1", now, now)
}

func productRows(id, description, price string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "description", "price", "created_at", "updated_at"}).
		AddRow(id, description, price, now, now)
}

func placeAt(o *entity.Order) entity.Event {
	ev := o.Place(now)
	return ev
}

func TestOrderRepositoryCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = $1")).WithArgs("c1").WillReturnRows(clientRows())
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).WithArgs("p1").WillReturnRows(productRows("p1", "Keyboard", "20.00"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).WithArgs("p2").WillReturnRows(productRows("p2", "Mouse", "10.99"))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM order_events")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))
	mock.ExpectExec("INSERT INTO order_events").
		WithArgs(sqlmock.AnyArg(), "o1", entity.StreamTypeOrder, 1, "OrderPlaced", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	o := &entity.Order{
		ID:       "o1",
		ClientID: "c1",
		Total:    decimal.RequireFromString("50.99"),
		Items:    []entity.OrderItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}},
	}
	err := repo.Create(context.Background(), o, placeAt)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusPlaced, o.Status)
	assert.Equal(t, "Carlos", o.Client.Name)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Keyboard", o.Items[0].Product.Description)
	assert.Equal(t, 1, o.Items[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryCreateRollsBackOnMissingProduct(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = $1")).WillReturnRows(clientRows())
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).WithArgs("p1").WillReturnRows(productRows("p1", "Keyboard", "20.00"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"id", "description", "price", "created_at", "updated_at"}))
	mock.ExpectRollback()

	o := &entity.Order{
		ID:       "o1",
		ClientID: "c1",
		Items:    []entity.OrderItem{{ProductID: "p1", Quantity: 1}, {ProductID: "gone", Quantity: 1}},
	}
	err := repo.Create(context.Background(), o, placeAt)

	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Resource)
	assert.Equal(t, "gone", nf.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryFindByID(t *testing.T) {
	t.Run("loads client and items in order", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewOrderRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).WithArgs("o1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "total", "status", "created_at", "updated_at"}).
				AddRow("o1", "c1", "50.99", "PLACED", now, now))
		mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = $1")).WithArgs("c1").WillReturnRows(clientRows())
		mock.ExpectQuery("FROM order_items oi").WithArgs("o1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "position", "product_description", "product_price", "product_created_at", "product_updated_at"}).
				AddRow("i1", "o1", "p1", 2, 0, "Keyboard", "20.00", now, now).
				AddRow("i2", "o1", "p2", 1, 1, "Mouse", "10.99", now, now))

		o, err := repo.FindByID(context.Background(), "o1")
		require.NoError(t, err)

		view := entity.NewOrderView(o)
		assert.Equal(t, "Carlos", view.ClientName)
		assert.Equal(t, "09/03/2024", view.OrderDate)
		require.Len(t, view.Items, 2)
		assert.Equal(t, "Mouse", view.Items[1].ProductDescription)
		assert.True(t, view.Total.Equal(decimal.RequireFromString("50.99")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewOrderRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), "nope")
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestOrderRepositoryCancel(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1 FOR UPDATE")).WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "total", "status", "created_at", "updated_at"}).
			AddRow("o1", "c1", "50.99", "CANCELED", now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $1")).
		WithArgs(string(entity.OrderStatusCanceled), sqlmock.AnyArg(), "o1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM order_events")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(2))
	mock.ExpectExec("INSERT INTO order_events").
		WithArgs(sqlmock.AnyArg(), "o1", entity.StreamTypeOrder, 3, "OrderCanceled", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	o, ev, err := repo.Cancel(context.Background(), "o1", func(o *entity.Order) entity.Event { return o.Cancel(now) })
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCanceled, o.Status)
	assert.Equal(t, "OrderCanceled", ev.EventType())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendEventsVersionCheck(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM order_events")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1))
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	err = appendEvents(context.Background(), tx, "o1", entity.StreamTypeOrder, 0, entity.OrderPlaced{OrderID: "o1"})
	assert.ErrorContains(t, err, "concurrency exception")
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventStoreLoadEvents(t *testing.T) {
	db, mock := newMock(t)
	store := NewEventStore(db)

	mock.ExpectQuery("FROM order_events WHERE stream_id = \\$1 ORDER BY version ASC").WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "stream_id", "stream_type", "version", "event_type", "payload", "created_at"}).
			AddRow("e1", "o1", "order", 1, "OrderPlaced", []byte(`{"order_id":"o1","total":"5"}`), now).
			AddRow("e2", "o1", "order", 2, "OrderCanceled", []byte(`{"order_id":"o1"}`), now))

	records, err := store.LoadEvents(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	agg := entity.NewOrderAggregate("o1")
	require.NoError(t, agg.Rehydrate(records))
	assert.Equal(t, entity.OrderStatusCanceled, agg.Status)
}

func TestClientRepositoryCreateIsAtomic(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO clients").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO address").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &entity.Client{
		ID:      "c1",
		Name:    "Carlos",
		UserID:  "u1",
		Address: &entity.Address{City: "Recife"},
	})
	assert.ErrorContains(t, err, "failed to insert address")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryDelete(t *testing.T) {
	t.Run("client with orders", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewClientRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM clients WHERE id = $1")).
			WillReturnError(&pq.Error{Code: codeForeignKeyViolation})

		err := repo.Delete(context.Background(), "c1")
		var cf *apperr.ConflictError
		assert.ErrorAs(t, err, &cf)
	})

	t.Run("missing client", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewClientRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM clients WHERE id = $1")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), "c1")
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestClientRepositoryListScopesToOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM clients WHERE user_id = $1 AND name ILIKE $2")).
		WithArgs("u1", "%car%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE user_id = $1 AND name ILIKE $2 ORDER BY created_at, id LIMIT 5 OFFSET 0")).
		WithArgs("u1", "%car%").
		WillReturnRows(clientRows())
	mock.ExpectQuery(regexp.QuoteMeta("FROM address WHERE client_id IN ($1)")).WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "cep", "number", "neighborhood", "city", "state"}).
			AddRow("a1", "c1", "55730000", "5", "Derby", "Bom Jardim", "PE"))

	clients, total, err := repo.List(context.Background(), repository.ClientFilter{
		UserID:     "u1",
		Name:       "car",
		Pagination: entity.Pagination{Page: 1, PerPage: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, clients, 1)
	require.NotNil(t, clients[0].Address)
	assert.Equal(t, "Bom Jardim", clients[0].Address.City)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepositoryListFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE description ILIKE $1 AND CAST(price AS TEXT) ILIKE $2")).
		WithArgs("%50\\%%", "%10%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 5 OFFSET 5")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "description", "price", "created_at", "updated_at"}))

	products, total, err := repo.List(context.Background(), repository.ProductFilter{
		Description: "50%",
		Price:       "10",
		Pagination:  entity.Pagination{Page: 2, PerPage: 5},
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: codeUniqueViolation})

	err := repo.Create(context.Background(), &entity.User{ID: "u1", Email: "a@example.com"})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
}

func TestTokenRepositoryDeleteByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM access_tokens WHERE user_id = $1")).WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestProductRepositorySeedSkipsFilledCatalog(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.Seed(context.Background(), []entity.Product{{ID: "p1"}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%abc%", likePattern("abc"))
	assert.Equal(t, `%a\%b\_c%`, likePattern("a%b_c"))
}
