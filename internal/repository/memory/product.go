package memory

import (
	"context"
	"time"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

type productRepository struct {
	s *Store
}

// NewProductRepository creates a ProductRepository on s.
func NewProductRepository(s *Store) repository.ProductRepository {
	return &productRepository{s: s}
}

func (r *productRepository) Create(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.createLocked(p)
	return nil
}

func (r *productRepository) createLocked(p *entity.Product) {
	r.s.products[p.ID] = *p
	r.s.productSeq = append(r.s.productSeq, p.ID)
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, apperr.NotFound("product", id)
	}
	return &p, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []string) (map[string]entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	found := make(map[string]entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

func (r *productRepository) Update(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return apperr.NotFound("product", p.ID)
	}
	p.UpdatedAt = time.Now().UTC()
	r.s.products[p.ID] = *p
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return apperr.NotFound("product", id)
	}
	for _, items := range r.s.items {
		for _, it := range items {
			if it.ProductID == id {
				return apperr.Conflict("product %s is referenced by orders", id)
			}
		}
	}
	delete(r.s.products, id)
	for i, pid := range r.s.productSeq {
		if pid == id {
			r.s.productSeq = append(r.s.productSeq[:i:i], r.s.productSeq[i+1:]...)
			break
		}
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, f repository.ProductFilter) ([]entity.Product, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entity.Product
	for _, id := range r.s.productSeq {
		p := r.s.products[id]
		// NUMERIC(12,2) renders with two decimals in Postgres
		if !containsFold(p.Description, f.Description) || !containsFold(p.Price.StringFixed(2), f.Price) {
			continue
		}
		matched = append(matched, p)
	}
	return paginate(matched, f.Pagination), len(matched), nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(r.s.products) > 0 {
		return 0, nil
	}
	for i := range products {
		r.createLocked(&products[i])
	}
	return len(products), nil
}
