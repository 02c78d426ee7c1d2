package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
	"github.com/egannguyen/go-commerce-api/internal/validation"
)

// ProductInput is the body of a create product request.
type ProductInput struct {
	Description string   `json:"description" validate:"required,max=255"`
	Price       *float64 `json:"price" validate:"required,min=0,max=9999999999.99,max_decimals=2"`
}

// ProductPatch is a partial product update; nil fields are left unchanged.
type ProductPatch struct {
	Description *string  `json:"description" validate:"omitempty,max=255"`
	Price       *float64 `json:"price" validate:"omitempty,min=0,max=9999999999.99,max_decimals=2"`
}

// ProductQuery filters a product listing.
type ProductQuery struct {
	Description string
	Price       string
	PageQuery
}

// ProductService manages the global catalog.
type ProductService struct {
	repo      repository.ProductRepository
	validator *validation.Validator
	logger    log.FieldLogger
	pageSize  int
}

func NewProductService(repo repository.ProductRepository, validator *validation.Validator, logger log.FieldLogger, pageSize int) *ProductService {
	return &ProductService{repo: repo, validator: validator, logger: logger, pageSize: pageSize}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*entity.Product, error) {
	if err := validate(s.validator, in); err != nil {
		return nil, err
	}

	now := utcNow()
	product := &entity.Product{
		ID:          uuid.NewString(),
		Description: in.Description,
		Price:       decimal.NewFromFloat(*in.Price),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, errors.Wrap(err, "failed to create product")
	}
	s.logger.WithField("product_id", product.ID).Info("Product created")
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies the fields present in patch.
func (s *ProductService) Update(ctx context.Context, id string, patch ProductPatch) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := validate(s.validator, patch); err != nil {
		return err
	}

	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = decimal.NewFromFloat(*patch.Price)
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return errors.Wrap(err, "failed to update product")
	}
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete product")
	}
	s.logger.WithField("product_id", id).Info("Product deleted")
	return nil
}

func (s *ProductService) List(ctx context.Context, q ProductQuery) (entity.Page[entity.Product], error) {
	p := q.pagination(s.pageSize)
	products, total, err := s.repo.List(ctx, repository.ProductFilter{
		Description: q.Description,
		Price:       q.Price,
		Pagination:  p,
	})
	if err != nil {
		return entity.Page[entity.Product]{}, errors.Wrap(err, "failed to list products")
	}
	return entity.NewPage(products, total, p), nil
}

// Seed fills an empty catalog with products.
func (s *ProductService) Seed(ctx context.Context, products []entity.Product) (int, error) {
	now := utcNow()
	for i := range products {
		if products[i].ID == "" {
			products[i].ID = uuid.NewString()
		}
		products[i].CreatedAt, products[i].UpdatedAt = now, now
	}
	n, err := s.repo.Seed(ctx, products)
	if err != nil {
		return 0, errors.Wrap(err, "failed to seed products")
	}
	return n, nil
}

// SampleProducts is the catalog inserted by the seed command.
func SampleProducts() []entity.Product {
	return []entity.Product{
		{Description: "Mechanical Keyboard", Price: decimal.RequireFromString("149.99")},
		{Description: "Wireless Mouse", Price: decimal.RequireFromString("79.99")},
		{Description: "USB-C Hub", Price: decimal.RequireFromString("49.99")},
		{Description: "Noise Cancelling Headphones", Price: decimal.RequireFromString("299.99")},
		{Description: "Webcam HD", Price: decimal.RequireFromString("89.99")},
		{Description: "Laptop Stand", Price: decimal.RequireFromString("59.99")},
	}
}
