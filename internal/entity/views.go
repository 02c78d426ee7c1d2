package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderDateLayout formats the order date as day/month/year.
const OrderDateLayout = "02/01/2006"

// OrderView is the flattened read model returned when an order is fetched.
type OrderView struct {
	Code       string          `json:"code"`
	OrderDate  string          `json:"orderDate"`
	ClientName string          `json:"clientName"`
	Total      decimal.Decimal `json:"total"`
	Status     OrderStatus     `json:"status"`
	Items      []OrderViewItem `json:"items"`
}

// OrderViewItem is one line of an OrderView.
type OrderViewItem struct {
	ProductDescription string          `json:"productDescription"`
	Price              decimal.Decimal `json:"price"`
	Quantity           int             `json:"quantity"`
}

// NewOrderView projects an order loaded with its client and products.
func NewOrderView(o *Order) OrderView {
	v := OrderView{
		Code:      o.ID,
		OrderDate: o.CreatedAt.Format(OrderDateLayout),
		Total:     o.Total,
		Status:    o.Status,
		Items:     make([]OrderViewItem, 0, len(o.Items)),
	}
	if o.Client != nil {
		v.ClientName = o.Client.Name
	}
	for _, it := range o.Items {
		line := OrderViewItem{Quantity: it.Quantity}
		if it.Product != nil {
			line.ProductDescription = it.Product.Description
			line.Price = it.Product.Price
		}
		v.Items = append(v.Items, line)
	}
	return v
}

// OrderHistory is the event stream of an order and the state it replays to.
type OrderHistory struct {
	OrderID string         `json:"order_id"`
	Status  OrderStatus    `json:"status"`
	Version int            `json:"version"`
	Events  []HistoryEvent `json:"events"`
}

// HistoryEvent is one stored event rendered for clients.
type HistoryEvent struct {
	Version   int             `json:"version"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewHistoryEvent copies a stored record into its rendered form.
func NewHistoryEvent(r EventRecord) HistoryEvent {
	payload := make(json.RawMessage, len(r.Payload))
	copy(payload, r.Payload)
	return HistoryEvent{Version: r.Version, EventType: r.EventType, Payload: payload, CreatedAt: r.CreatedAt}
}
