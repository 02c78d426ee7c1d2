package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

type clientRepository struct {
	s *Store
}

// NewClientRepository creates a ClientRepository on s.
func NewClientRepository(s *Store) repository.ClientRepository {
	return &clientRepository{s: s}
}

func (r *clientRepository) Create(ctx context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *c
	stored.Address = nil
	r.s.clients[c.ID] = stored
	r.s.clientSeq = append(r.s.clientSeq, c.ID)
	if c.Address != nil {
		if c.Address.ID == "" {
			c.Address.ID = uuid.NewString()
		}
		c.Address.ClientID = c.ID
		r.s.addresses[c.ID] = *c.Address
	}
	return nil
}

func (r *clientRepository) loadLocked(id string) (*entity.Client, bool) {
	c, ok := r.s.clients[id]
	if !ok {
		return nil, false
	}
	if a, ok := r.s.addresses[id]; ok {
		c.Address = &a
	}
	return &c, true
}

func (r *clientRepository) FindByID(ctx context.Context, id string) (*entity.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.loadLocked(id)
	if !ok {
		return nil, apperr.NotFound("client", id)
	}
	return c, nil
}

func (r *clientRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.clients[id]
	return ok, nil
}

func (r *clientRepository) Update(ctx context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[c.ID]; !ok {
		return apperr.NotFound("client", c.ID)
	}
	c.UpdatedAt = time.Now().UTC()
	stored := *c
	stored.Address = nil
	r.s.clients[c.ID] = stored

	if existing, ok := r.s.addresses[c.ID]; ok && c.Address != nil {
		a := *c.Address
		a.ID, a.ClientID = existing.ID, c.ID
		r.s.addresses[c.ID] = a
	}
	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[id]; !ok {
		return apperr.NotFound("client", id)
	}
	for _, o := range r.s.orders {
		if o.ClientID == id {
			return apperr.Conflict("client %s still has orders", id)
		}
	}
	delete(r.s.clients, id)
	delete(r.s.addresses, id)
	for i, cid := range r.s.clientSeq {
		if cid == id {
			r.s.clientSeq = append(r.s.clientSeq[:i:i], r.s.clientSeq[i+1:]...)
			break
		}
	}
	return nil
}

func (r *clientRepository) List(ctx context.Context, f repository.ClientFilter) ([]entity.Client, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entity.Client
	for _, id := range r.s.clientSeq {
		c, _ := r.loadLocked(id)
		if c.UserID != f.UserID {
			continue
		}
		if !containsFold(c.Name, f.Name) || !containsFold(c.Email, f.Email) || !containsFold(c.Phone, f.Phone) {
			continue
		}
		matched = append(matched, *c)
	}
	return paginate(matched, f.Pagination), len(matched), nil
}

func (r *clientRepository) Stats(ctx context.Context) ([]entity.ClientStat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type key struct{ city, state string }
	counts := map[key]int{}
	for clientID, a := range r.s.addresses {
		if _, ok := r.s.clients[clientID]; ok {
			counts[key{a.City, a.State}]++
		}
	}

	stats := make([]entity.ClientStat, 0, len(counts))
	for k, n := range counts {
		stats = append(stats, entity.ClientStat{City: k.city, State: k.state, Total: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].State != stats[j].State {
			return stats[i].State < stats[j].State
		}
		return stats[i].City < stats[j].City
	})
	return stats, nil
}
