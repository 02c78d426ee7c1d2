package entity

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderView(t *testing.T) {
	o := &Order{
		ID:        "o1",
		Total:     decimal.RequireFromString("50.99"),
		Status:    OrderStatusPlaced,
		Client:    &Client{Name: "Carlos Henrique"},
		CreatedAt: time.Date(2021, 12, 5, 9, 25, 53, 0, time.UTC),
		Items: []OrderItem{
			{Quantity: 2, Product: &Product{Description: "Keyboard", Price: decimal.RequireFromString("20.50")}},
			{Quantity: 1, Product: &Product{Description: "Mouse", Price: decimal.RequireFromString("9.99")}},
		},
	}

	v := NewOrderView(o)

	assert.Equal(t, "o1", v.Code)
	assert.Equal(t, "05/12/2021", v.OrderDate)
	assert.Equal(t, "Carlos Henrique", v.ClientName)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "Keyboard", v.Items[0].ProductDescription)
	assert.Equal(t, 2, v.Items[0].Quantity)
	assert.Equal(t, "Mouse", v.Items[1].ProductDescription)

	body, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"code": "o1",
		"orderDate": "05/12/2021",
		"clientName": "Carlos Henrique",
		"total": "50.99",
		"status": "PLACED",
		"items": [
			{"productDescription": "Keyboard", "price": "20.5", "quantity": 2},
			{"productDescription": "Mouse", "price": "9.99", "quantity": 1}
		]
	}`, string(body))
}

func TestNewPage(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		p := NewPage([]string{"f", "g"}, 12, Pagination{Page: 2, PerPage: 5})
		assert.Equal(t, 3, p.LastPage)
		require.NotNil(t, p.From)
		assert.Equal(t, 6, *p.From)
		assert.Equal(t, 7, *p.To)
	})

	t.Run("empty listing", func(t *testing.T) {
		p := NewPage[string](nil, 0, Pagination{Page: 1, PerPage: 5})
		assert.Equal(t, 1, p.LastPage)
		assert.Nil(t, p.From)
		assert.NotNil(t, p.Data)
	})
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, PerPage: 1}, NewPagination(-3, 0))
	assert.Equal(t, Pagination{Page: 2, PerPage: MaxPerPage}, NewPagination(2, math.MaxInt))

	huge := NewPagination(1<<62, 4)
	assert.Equal(t, 4, huge.PerPage)
	assert.GreaterOrEqual(t, huge.Offset(), 0)
	assert.LessOrEqual(t, huge.Offset(), math.MaxInt32)
}

func TestPaginationOffsetDoesNotOverflow(t *testing.T) {
	p := Pagination{Page: 1 << 62, PerPage: 4}
	assert.Equal(t, math.MaxInt32, p.Offset())

	page := NewPage([]string{}, 3, Pagination{Page: 1, PerPage: math.MaxInt})
	assert.Equal(t, 1, page.LastPage)
}
