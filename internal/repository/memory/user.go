package memory

import (
	"context"
	"strings"
	"time"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

type userRepository struct {
	s *Store
}

// NewUserRepository creates a UserRepository on s.
func NewUserRepository(s *Store) repository.UserRepository {
	return &userRepository{s: s}
}

func (r *userRepository) emailTakenLocked(email, exceptID string) bool {
	for _, u := range r.s.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTakenLocked(u.Email, u.ID) {
		v := apperr.NewValidation()
		v.Add("email", "The email has already been taken.")
		return v
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user", email)
}

func (r *userRepository) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.emailTakenLocked(email, exceptID), nil
}

func (r *userRepository) Update(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; !ok {
		return apperr.NotFound("user", u.ID)
	}
	if r.emailTakenLocked(u.Email, u.ID) {
		v := apperr.NewValidation()
		v.Add("email", "The email has already been taken.")
		return v
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[u.ID] = *u
	return nil
}

type tokenRepository struct {
	s *Store
}

// NewTokenRepository creates a TokenRepository on s.
func NewTokenRepository(s *Store) repository.TokenRepository {
	return &tokenRepository{s: s}
}

func (r *tokenRepository) Create(ctx context.Context, t *entity.AccessToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[t.ID] = *t
	return nil
}

func (r *tokenRepository) Active(ctx context.Context, id, userID string, now time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tokens[id]
	return ok && t.UserID == userID && t.ExpiresAt.After(now), nil
}

func (r *tokenRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}
