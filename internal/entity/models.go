package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account allowed to call the API.
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// AccessToken records an issued bearer token so it can be revoked.
type AccessToken struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Client is a customer owned by the user who created it.
type Client struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	UserID    string    `json:"user_id" db:"user_id"`
	Address   *Address  `json:"address" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether userID owns the client.
func (c *Client) OwnedBy(userID string) bool {
	return c.UserID != "" && c.UserID == userID
}

// Address is the postal address of a Client.
type Address struct {
	ID           string `json:"id" db:"id"`
	ClientID     string `json:"client_id" db:"client_id"`
	Cep          string `json:"cep" db:"cep"`
	Number       string `json:"number" db:"number"`
	Neighborhood string `json:"neighborhood" db:"neighborhood"`
	City         string `json:"city" db:"city"`
	State        string `json:"state" db:"state"`
}

// Product is an entry of the global catalog.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem is a line item within an order.
type OrderItem struct {
	ID        string   `json:"id" db:"id"`
	OrderID   string   `json:"order_id" db:"order_id"`
	ProductID string   `json:"product_id" db:"product_id"`
	Quantity  int      `json:"quantity" db:"quantity"`
	Position  int      `json:"-" db:"position"`
	Product   *Product `json:"product,omitempty" db:"-"`
}

// Order represents a customer order. Total is supplied by the caller and
// never derived from the items.
type Order struct {
	ID        string          `json:"id" db:"id"`
	ClientID  string          `json:"client_id" db:"client_id"`
	Total     decimal.Decimal `json:"total" db:"total"`
	Status    OrderStatus     `json:"status" db:"status"`
	Items     []OrderItem     `json:"items" db:"-"`
	Client    *Client         `json:"-" db:"-"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// ClientStat counts clients living in one city.
type ClientStat struct {
	City  string `json:"city" db:"city"`
	State string `json:"state" db:"state"`
	Total int    `json:"total" db:"total"`
}
