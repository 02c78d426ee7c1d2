package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPlaced   OrderStatus = "PLACED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// StreamTypeOrder names the event stream of an order.
const StreamTypeOrder = "order"

// OrderPlaced is emitted when an order and its items are persisted.
type OrderPlaced struct {
	OrderID  string            `json:"order_id"`
	ClientID string            `json:"client_id"`
	Total    decimal.Decimal   `json:"total"`
	Items    []OrderPlacedItem `json:"items"`
	PlacedAt time.Time         `json:"placed_at"`
}

// OrderPlacedItem is the line item carried by OrderPlaced.
type OrderPlacedItem struct {
	ProductID string          `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderCanceled is emitted every time a cancel is requested, including
// repeated cancels of an already canceled order.
type OrderCanceled struct {
	OrderID        string      `json:"order_id"`
	PreviousStatus OrderStatus `json:"previous_status"`
	CanceledAt     time.Time   `json:"canceled_at"`
}

func (e OrderCanceled) EventType() string { return "OrderCanceled" }

// Place marks a new order as placed and returns the matching event.
func (o *Order) Place(at time.Time) OrderPlaced {
	o.Status = OrderStatusPlaced
	o.CreatedAt = at
	o.UpdatedAt = at

	items := make([]OrderPlacedItem, 0, len(o.Items))
	for _, it := range o.Items {
		item := OrderPlacedItem{ProductID: it.ProductID, Quantity: it.Quantity}
		if it.Product != nil {
			item.Price = it.Product.Price
		}
		items = append(items, item)
	}
	return OrderPlaced{
		OrderID:  o.ID,
		ClientID: o.ClientID,
		Total:    o.Total,
		Items:    items,
		PlacedAt: at,
	}
}

// Cancel moves the order to CANCELED. CANCELED is absorbing, so canceling
// twice is a no-op that still yields an event.
func (o *Order) Cancel(at time.Time) OrderCanceled {
	prev := o.Status
	o.Status = OrderStatusCanceled
	o.UpdatedAt = at
	return OrderCanceled{OrderID: o.ID, PreviousStatus: prev, CanceledAt: at}
}

// OrderAggregate rebuilds the status history of an order from its stream.
type OrderAggregate struct {
	AggregateBase
	Status     OrderStatus
	Total      decimal.Decimal
	PlacedAt   time.Time
	CanceledAt *time.Time
}

var _ Aggregate = (*OrderAggregate)(nil)

// NewOrderAggregate creates an empty OrderAggregate for a stream.
func NewOrderAggregate(id string) *OrderAggregate {
	return &OrderAggregate{AggregateBase: AggregateBase{ID: id}}
}

// ApplyEvent mutates the aggregate state based on the event.
func (a *OrderAggregate) ApplyEvent(e Event) error {
	switch e := e.(type) {
	case OrderPlaced:
		a.Status = OrderStatusPlaced
		a.Total = e.Total
		a.PlacedAt = e.PlacedAt
	case OrderCanceled:
		if a.Status == "" {
			return fmt.Errorf("order %s canceled before being placed", a.ID)
		}
		a.Status = OrderStatusCanceled
		if a.CanceledAt == nil {
			at := e.CanceledAt
			a.CanceledAt = &at
		}
	default:
		return fmt.Errorf("unknown event type for OrderAggregate: %s", e.EventType())
	}
	a.Version++
	return nil
}

// Rehydrate rebuilds the aggregate from a list of records.
func (a *OrderAggregate) Rehydrate(records []EventRecord) error {
	for _, rec := range records {
		var err error
		switch rec.EventType {
		case "OrderPlaced":
			var e OrderPlaced
			if err = json.Unmarshal(rec.Payload, &e); err == nil {
				err = a.ApplyEvent(e)
			}
		case "OrderCanceled":
			var e OrderCanceled
			if err = json.Unmarshal(rec.Payload, &e); err == nil {
				err = a.ApplyEvent(e)
			}
		default:
			return fmt.Errorf("unknown event type in stream: %s", rec.EventType)
		}
		if err != nil {
			return fmt.Errorf("failed to apply event from stream: %w", err)
		}
	}
	return nil
}
