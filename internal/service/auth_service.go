package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/auth"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/metrics"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

// LoginInput carries the credentials of a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is the caller behind a verified bearer token.
type Identity struct {
	UserID  string
	TokenID string
}

// AuthService checks credentials and manages bearer tokens.
type AuthService struct {
	users   repository.UserRepository
	tokens  repository.TokenRepository
	hasher  auth.PasswordHasher
	issuer  *auth.TokenIssuer
	metrics *metrics.Metrics
	logger  log.FieldLogger
	now     func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	hasher auth.PasswordHasher,
	issuer *auth.TokenIssuer,
	m *metrics.Metrics,
	logger log.FieldLogger,
) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		issuer:  issuer,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Login verifies the credentials and issues one bearer token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if apperr.IsNotFound(err) {
		s.metrics.Login("failure")
		return "", apperr.Unauthenticated("invalid credentials")
	}
	if err != nil {
		return "", err
	}
	if !s.hasher.Compare(user.PasswordHash, in.Password) {
		s.metrics.Login("failure")
		return "", apperr.Unauthenticated("invalid credentials")
	}

	token, claims, err := s.issuer.Issue(user.ID)
	if err != nil {
		return "", err
	}
	err = s.tokens.Create(ctx, &entity.AccessToken{
		ID:        claims.ID,
		UserID:    user.ID,
		CreatedAt: claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to store token")
	}

	s.metrics.Login("success")
	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return token, nil
}

// Logout revokes every token of userID, not only the current one.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	n, err := s.tokens.DeleteByUser(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "failed to revoke tokens")
	}
	s.logger.WithFields(log.Fields{"user_id": userID, "revoked": n}).Info("User logged out")
	return nil
}

// Authenticate resolves a bearer token to the caller identity. Tokens that
// were revoked by a logout are rejected even if still signed and unexpired.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, apperr.Unauthenticated(err.Error())
	}
	active, err := s.tokens.Active(ctx, claims.ID, claims.Subject, s.now())
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperr.Unauthenticated("token revoked")
	}
	return &Identity{UserID: claims.Subject, TokenID: claims.ID}, nil
}
