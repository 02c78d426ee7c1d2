package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/messaging"
	"github.com/egannguyen/go-commerce-api/internal/metrics"
	"github.com/egannguyen/go-commerce-api/internal/repository"
	"github.com/egannguyen/go-commerce-api/internal/validation"
)

// PlaceOrderInput is the body of a place order request.
type PlaceOrderInput struct {
	Client validation.Text   `json:"client" validate:"required,is_string"`
	Total  validation.Number `json:"total" validate:"required,is_number,min=0,max=9999999999.99,max_decimals=2"`
	Items  []PlaceOrderItem  `json:"items" validate:"required,min=1,dive"`
}

// PlaceOrderItem is one requested line item.
type PlaceOrderItem struct {
	Product  validation.Text   `json:"product" validate:"required,is_string"`
	Quantity validation.Number `json:"quantity" validate:"required,is_integer,min=1,max=2147483647"`
}

// OrderService orchestrates order-related business logic.
type OrderService struct {
	orderRepo   repository.OrderRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	eventStore  repository.EventStore
	publisher   messaging.Publisher
	validator   *validation.Validator
	metrics     *metrics.Metrics
	logger      log.FieldLogger
	now         func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	eventStore repository.EventStore,
	publisher messaging.Publisher,
	validator *validation.Validator,
	m *metrics.Metrics,
	logger log.FieldLogger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		eventStore:  eventStore,
		publisher:   publisher,
		validator:   validator,
		metrics:     m,
		logger:      logger,
		now:         utcNow,
	}
}

// PlaceOrder validates the request as a whole, then stores the order and
// its items atomically. The caller supplied total is stored as is.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*entity.Order, error) {
	err := validate(s.validator, in, func(v *apperr.ValidationError) error {
		return s.checkReferences(ctx, in, v)
	})
	if err != nil {
		return nil, err
	}

	total, _ := in.Total.Decimal()
	order := &entity.Order{
		ID:       uuid.NewString(),
		ClientID: in.Client.String(),
		Total:    total.Round(2),
		Items:    make([]entity.OrderItem, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		qty, _ := it.Quantity.Decimal()
		order.Items = append(order.Items, entity.OrderItem{ProductID: it.Product.String(), Quantity: int(qty.IntPart())})
	}

	var placed entity.OrderPlaced
	err = s.orderRepo.Create(ctx, order, func(o *entity.Order) entity.Event {
		placed = o.Place(s.now())
		return placed
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to place order")
	}

	s.metrics.OrderPlaced()
	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"client":   order.ClientID,
		"items":    len(order.Items),
		"total":    order.Total.String(),
	}).Info("Order placed")
	publish(ctx, s.publisher, s.logger, messaging.TopicOrderPlaced, order.ID, placed)

	return order, nil
}

// checkReferences reports clients and products that do not exist. Fields
// that already failed a format rule are skipped.
func (s *OrderService) checkReferences(ctx context.Context, in PlaceOrderInput, v *apperr.ValidationError) error {
	if _, failed := v.Fields["client"]; !failed {
		ok, err := s.clientRepo.Exists(ctx, in.Client.String())
		if err != nil {
			return errors.Wrap(err, "failed to check client")
		}
		if !ok {
			v.Add("client", "The selected client is invalid.")
		}
	}

	ids := make([]string, 0, len(in.Items))
	for i, it := range in.Items {
		if _, failed := v.Fields[fmt.Sprintf("items.%d.product", i)]; !failed {
			ids = append(ids, it.Product.String())
		}
	}
	if len(ids) == 0 {
		return nil
	}
	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "failed to check products")
	}
	for i, it := range in.Items {
		field := fmt.Sprintf("items.%d.product", i)
		if _, failed := v.Fields[field]; failed {
			continue
		}
		if _, ok := found[it.Product.String()]; !ok {
			v.Add(field, fmt.Sprintf("The selected %s is invalid.", field))
		}
	}
	return nil
}

// GetOrder returns the flattened view of an order.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.OrderView, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := entity.NewOrderView(order)
	return &view, nil
}

// CancelOrder sets the order status to CANCELED. Canceling an already
// canceled order succeeds.
func (s *OrderService) CancelOrder(ctx context.Context, id string) error {
	order, event, err := s.orderRepo.Cancel(ctx, id, func(o *entity.Order) entity.Event {
		return o.Cancel(s.now())
	})
	if err != nil {
		return err
	}

	s.metrics.OrderCanceled()
	entry := s.logger.WithField("order_id", order.ID)
	if canceled, ok := event.(entity.OrderCanceled); ok && canceled.PreviousStatus == entity.OrderStatusCanceled {
		entry.Info("Order already canceled")
	} else {
		entry.Info("Order canceled")
	}
	publish(ctx, s.publisher, s.logger, messaging.TopicOrderCanceled, order.ID, event)
	return nil
}

// OrderHistory replays the event stream of an order.
func (s *OrderService) OrderHistory(ctx context.Context, id string) (*entity.OrderHistory, error) {
	records, err := s.eventStore.LoadEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperr.NotFound("order", id)
	}

	agg := entity.NewOrderAggregate(id)
	if err := agg.Rehydrate(records); err != nil {
		return nil, errors.Wrap(err, "failed to rehydrate order aggregate")
	}
	history := &entity.OrderHistory{
		OrderID: id,
		Status:  agg.Status,
		Version: agg.GetVersion(),
		Events:  make([]entity.HistoryEvent, 0, len(records)),
	}
	for _, rec := range records {
		history.Events = append(history.Events, entity.NewHistoryEvent(rec))
	}
	return history, nil
}
