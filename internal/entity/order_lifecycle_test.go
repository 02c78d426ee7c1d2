package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPlace(t *testing.T) {
	at := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	o := &Order{
		ID:       "o1",
		ClientID: "c1",
		Total:    decimal.RequireFromString("50.99"),
		Items: []OrderItem{
			{ProductID: "p1", Quantity: 2, Product: &Product{ID: "p1", Price: decimal.RequireFromString("10.00")}},
			{ProductID: "p2", Quantity: 1},
		},
	}

	ev := o.Place(at)

	assert.Equal(t, OrderStatusPlaced, o.Status)
	assert.Equal(t, at, o.CreatedAt)
	assert.Equal(t, "o1", ev.OrderID)
	assert.True(t, ev.Total.Equal(decimal.RequireFromString("50.99")))
	require.Len(t, ev.Items, 2)
	assert.Equal(t, "p1", ev.Items[0].ProductID)
	assert.True(t, ev.Items[0].Price.Equal(decimal.RequireFromString("10")))
	assert.True(t, ev.Items[1].Price.IsZero())
}

func TestOrderCancel(t *testing.T) {
	t.Run("placed order becomes canceled", func(t *testing.T) {
		o := &Order{ID: "o1", Status: OrderStatusPlaced}
		ev := o.Cancel(time.Now())
		assert.Equal(t, OrderStatusCanceled, o.Status)
		assert.Equal(t, OrderStatusPlaced, ev.PreviousStatus)
	})

	t.Run("canceling twice stays canceled", func(t *testing.T) {
		o := &Order{ID: "o1", Status: OrderStatusPlaced}
		o.Cancel(time.Now())
		ev := o.Cancel(time.Now())
		assert.Equal(t, OrderStatusCanceled, o.Status)
		assert.Equal(t, OrderStatusCanceled, ev.PreviousStatus)
	})
}

func record(t *testing.T, version int, e Event) EventRecord {
	t.Helper()
	payload, err := json.Marshal(e)
	require.NoError(t, err)
	return EventRecord{StreamID: "o1", StreamType: StreamTypeOrder, Version: version, EventType: e.EventType(), Payload: payload}
}

func TestOrderAggregateRehydrate(t *testing.T) {
	placedAt := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	first := placedAt.Add(time.Hour)

	agg := NewOrderAggregate("o1")
	err := agg.Rehydrate([]EventRecord{
		record(t, 1, OrderPlaced{OrderID: "o1", Total: decimal.NewFromInt(5), PlacedAt: placedAt}),
		record(t, 2, OrderCanceled{OrderID: "o1", PreviousStatus: OrderStatusPlaced, CanceledAt: first}),
		record(t, 3, OrderCanceled{OrderID: "o1", PreviousStatus: OrderStatusCanceled, CanceledAt: first.Add(time.Hour)}),
	})
	require.NoError(t, err)

	assert.Equal(t, OrderStatusCanceled, agg.Status)
	assert.Equal(t, 3, agg.GetVersion())
	require.NotNil(t, agg.CanceledAt)
	assert.True(t, agg.CanceledAt.Equal(first))
	assert.True(t, agg.PlacedAt.Equal(placedAt))
}

func TestOrderAggregateRejectsUnknownEvents(t *testing.T) {
	agg := NewOrderAggregate("o1")
	err := agg.Rehydrate([]EventRecord{{EventType: "OrderShipped", Payload: []byte(`{}`)}})
	assert.Error(t, err)

	agg = NewOrderAggregate("o1")
	err = agg.ApplyEvent(OrderCanceled{OrderID: "o1"})
	assert.Error(t, err)
}
