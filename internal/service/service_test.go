package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/egannguyen/go-commerce-api/internal/auth"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/metrics"
	"github.com/egannguyen/go-commerce-api/internal/repository/memory"
	"github.com/egannguyen/go-commerce-api/internal/validation"
)

type published struct {
	topic string
	key   string
	event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *fakePublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, key: key, event: event})
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fixture struct {
	store     *memory.Store
	publisher *fakePublisher
	orders    *OrderService
	clients   *ClientService
	products  *ProductService
	users     *UserService
	auth      *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	v := validation.New()
	m := metrics.New()
	pub := &fakePublisher{}
	hasher := &auth.BcryptHasher{Cost: bcrypt.MinCost}

	clientRepo := memory.NewClientRepository(store)
	productRepo := memory.NewProductRepository(store)
	userRepo := memory.NewUserRepository(store)

	return &fixture{
		store:     store,
		publisher: pub,
		orders: NewOrderService(memory.NewOrderRepository(store), clientRepo, productRepo,
			memory.NewEventStore(store), pub, v, m, logger),
		clients:  NewClientService(clientRepo, v, logger, DefaultPageSize),
		products: NewProductService(productRepo, v, logger, DefaultPageSize),
		users:    NewUserService(userRepo, hasher, v, logger),
		auth: NewAuthService(userRepo, memory.NewTokenRepository(store), hasher,
			auth.NewTokenIssuer("test-secret", time.Hour), m, logger),
	}
}

func (f *fixture) client(t *testing.T, owner, name string) *entity.Client {
	t.Helper()
	c, err := f.clients.Create(context.Background(), owner, ClientInput{Name: name, Email: "client@example.com"})
	require.NoError(t, err)
	return c
}

func (f *fixture) product(t *testing.T, description, price string) *entity.Product {
	t.Helper()
	amount, _ := decimal.RequireFromString(price).Float64()
	p, err := f.products.Create(context.Background(), ProductInput{Description: description, Price: &amount})
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T { return &v }
