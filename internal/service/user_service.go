package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/auth"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
	"github.com/egannguyen/go-commerce-api/internal/validation"
)

// RegisterInput is the body of a user registration.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

// ProfileInput is the body of a profile update. The current password must
// be re-entered; the new one must differ and match its confirmation.
type ProfileInput struct {
	Name                 *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email                *string `json:"email" validate:"omitempty,email,max=255"`
	CurrentPassword      string  `json:"current_password" validate:"required"`
	Password             string  `json:"password" validate:"required,min=8,nefield=CurrentPassword,eqfield=PasswordConfirmation"`
	PasswordConfirmation string  `json:"password_confirmation"`
}

// UserService registers users and maintains their profile.
type UserService struct {
	repo      repository.UserRepository
	hasher    auth.PasswordHasher
	validator *validation.Validator
	logger    log.FieldLogger
}

func NewUserService(repo repository.UserRepository, hasher auth.PasswordHasher, validator *validation.Validator, logger log.FieldLogger) *UserService {
	return &UserService{repo: repo, hasher: hasher, validator: validator, logger: logger}
}

func (s *UserService) emailCheck(ctx context.Context, email, exceptID string) func(*apperr.ValidationError) error {
	return func(v *apperr.ValidationError) error {
		if _, failed := v.Fields["email"]; failed || email == "" {
			return nil
		}
		taken, err := s.repo.EmailTaken(ctx, email, exceptID)
		if err != nil {
			return errors.Wrap(err, "failed to check email")
		}
		if taken {
			v.Add("email", "The email has already been taken.")
		}
		return nil
	}
}

// Register creates a user. The password is only stored hashed.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if err := validate(s.validator, in, s.emailCheck(ctx, in.Email, "")); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := utcNow()
	user := &entity.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to register user")
	}
	s.logger.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// UpdateProfile changes the password, and optionally name and email, of
// actorID after verifying the current password.
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, in ProfileInput) error {
	user, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		return err
	}

	email := ""
	if in.Email != nil {
		email = *in.Email
	}
	if err := validate(s.validator, in, s.emailCheck(ctx, email, actorID)); err != nil {
		return err
	}
	if !s.hasher.Compare(user.PasswordHash, in.CurrentPassword) {
		return apperr.Unauthenticated("current password does not match")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return errors.Wrap(err, "failed to update profile")
	}
	s.logger.WithField("user_id", actorID).Info("Profile updated")
	return nil
}
