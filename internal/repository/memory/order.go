package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

type orderRepository struct {
	s *Store
}

// NewOrderRepository creates an OrderRepository on s.
func NewOrderRepository(s *Store) repository.OrderRepository {
	return &orderRepository{s: s}
}

func (r *orderRepository) Create(ctx context.Context, o *entity.Order, placed func(*entity.Order) entity.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	client, ok := r.s.clients[o.ClientID]
	if !ok {
		return apperr.NotFound("client", o.ClientID)
	}

	// resolve everything before the first write so a failure leaves no rows
	items := make([]entity.OrderItem, len(o.Items))
	for i, it := range o.Items {
		p, ok := r.s.products[it.ProductID]
		if !ok {
			return apperr.NotFound("product", it.ProductID)
		}
		it.ID = uuid.NewString()
		it.OrderID = o.ID
		it.Position = i
		it.Product = &p
		items[i] = it
	}
	o.Items = items
	o.Client = &client

	event := placed(o)

	stored := *o
	stored.Items, stored.Client = nil, nil
	r.s.orders[o.ID] = stored
	r.s.items[o.ID] = items
	return r.s.appendEvent(o.ID, entity.StreamTypeOrder, event)
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, apperr.NotFound("order", id)
	}
	if c, ok := r.s.clients[o.ClientID]; ok {
		o.Client = &c
	}
	o.Items = make([]entity.OrderItem, 0, len(r.s.items[id]))
	for _, it := range r.s.items[id] {
		if p, ok := r.s.products[it.ProductID]; ok {
			it.Product = &p
		}
		o.Items = append(o.Items, it)
	}
	return &o, nil
}

func (r *orderRepository) Cancel(ctx context.Context, id string, cancel func(*entity.Order) entity.Event) (*entity.Order, entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil, apperr.NotFound("order", id)
	}
	event := cancel(&o)
	r.s.orders[id] = o
	if err := r.s.appendEvent(id, entity.StreamTypeOrder, event); err != nil {
		return nil, nil, err
	}
	return &o, event, nil
}

type eventStore struct {
	s *Store
}

// NewEventStore creates an EventStore on s.
func NewEventStore(s *Store) repository.EventStore {
	return &eventStore{s: s}
}

func (e *eventStore) LoadEvents(ctx context.Context, streamID string) ([]entity.EventRecord, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	records := make([]entity.EventRecord, len(e.s.events[streamID]))
	copy(records, e.s.events[streamID])
	return records, nil
}
