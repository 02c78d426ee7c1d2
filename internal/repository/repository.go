package repository

import (
	"context"
	"time"

	"github.com/egannguyen/go-commerce-api/internal/entity"
)

// UserRepository handles persistence for Users.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// EmailTaken reports whether another user than exceptID uses email.
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	Update(ctx context.Context, u *entity.User) error
}

// TokenRepository tracks issued bearer tokens.
type TokenRepository interface {
	Create(ctx context.Context, t *entity.AccessToken) error
	// Active reports whether token id of userID exists and has not expired.
	Active(ctx context.Context, id, userID string, now time.Time) (bool, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// ClientFilter narrows a client listing. Text filters match case-insensitive
// substrings; an empty filter matches everything.
type ClientFilter struct {
	UserID string
	Name   string
	Email  string
	Phone  string
	entity.Pagination
}

// ClientRepository handles persistence for Clients and their Address.
type ClientRepository interface {
	// Create stores the client and, when set, its address atomically.
	Create(ctx context.Context, c *entity.Client) error
	FindByID(ctx context.Context, id string) (*entity.Client, error)
	Exists(ctx context.Context, id string) (bool, error)
	// Update saves client fields and the address, only if one is stored.
	Update(ctx context.Context, c *entity.Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ClientFilter) ([]entity.Client, int, error)
	Stats(ctx context.Context) ([]entity.ClientStat, error)
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Description string
	Price       string
	entity.Pagination
}

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	// FindByIDs returns the products that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]entity.Product, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ProductFilter) ([]entity.Product, int, error)
	// Seed inserts products if the catalog is empty and returns how many it added.
	Seed(ctx context.Context, products []entity.Product) (int, error)
}

// OrderRepository handles persistence for Orders.
type OrderRepository interface {
	// Create resolves the client and every item product, then stores the
	// order, its items and the OrderPlaced event in one transaction.
	Create(ctx context.Context, o *entity.Order, placed func(*entity.Order) entity.Event) error
	// FindByID loads the order with its client, items and products.
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	// Cancel applies cancel to the stored order and persists the new status
	// together with the returned event.
	Cancel(ctx context.Context, id string, cancel func(*entity.Order) entity.Event) (*entity.Order, entity.Event, error)
}

// EventStore reads the event stream of an aggregate.
type EventStore interface {
	LoadEvents(ctx context.Context, streamID string) ([]entity.EventRecord, error)
}
