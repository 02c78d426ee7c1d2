package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
	"github.com/egannguyen/go-commerce-api/internal/validation"
)

// ClientInput is the body of client create and update requests.
type ClientInput struct {
	Name    string        `json:"name" validate:"required"`
	Email   string        `json:"email" validate:"required,email"`
	Phone   string        `json:"phone"`
	Address *AddressInput `json:"address"`
}

// AddressInput carries the address fields of a client. They are stored
// without validation; the number may be sent as a string or a number.
type AddressInput struct {
	Cep          string          `json:"cep"`
	Number       validation.Text `json:"number"`
	Neighborhood string          `json:"neighborhood"`
	City         string          `json:"city"`
	State        string          `json:"state"`
}

func (a *AddressInput) apply(dst *entity.Address) {
	dst.Cep = a.Cep
	dst.Number = a.Number.Scalar()
	dst.Neighborhood = a.Neighborhood
	dst.City = a.City
	dst.State = a.State
}

// ClientQuery filters a client listing.
type ClientQuery struct {
	Name  string
	Email string
	Phone string
	PageQuery
}

// ClientService manages clients on behalf of their owning user.
type ClientService struct {
	repo      repository.ClientRepository
	validator *validation.Validator
	logger    log.FieldLogger
	pageSize  int
}

func NewClientService(repo repository.ClientRepository, validator *validation.Validator, logger log.FieldLogger, pageSize int) *ClientService {
	return &ClientService{repo: repo, validator: validator, logger: logger, pageSize: pageSize}
}

// Create stores a client owned by actorID together with its address.
func (s *ClientService) Create(ctx context.Context, actorID string, in ClientInput) (*entity.Client, error) {
	if err := validate(s.validator, in); err != nil {
		return nil, err
	}

	now := utcNow()
	client := &entity.Client{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		UserID:    actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Address != nil {
		client.Address = &entity.Address{ID: uuid.NewString(), ClientID: client.ID}
		in.Address.apply(client.Address)
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}
	s.logger.WithFields(log.Fields{"client_id": client.ID, "user_id": actorID}).Info("Client created")
	return client, nil
}

// Get returns a client owned by actorID.
func (s *ClientService) Get(ctx context.Context, actorID, id string) (*entity.Client, error) {
	return s.owned(ctx, actorID, id)
}

func (s *ClientService) owned(ctx context.Context, actorID, id string) (*entity.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !client.OwnedBy(actorID) {
		return nil, apperr.Forbidden("client", id)
	}
	return client, nil
}

// Update overwrites the client fields. The address is only written when the
// client already has one. Ownership is checked before the payload.
func (s *ClientService) Update(ctx context.Context, actorID, id string, in ClientInput) error {
	client, err := s.owned(ctx, actorID, id)
	if err != nil {
		return err
	}
	if err := validate(s.validator, in); err != nil {
		return err
	}

	client.Name = in.Name
	client.Email = in.Email
	client.Phone = in.Phone
	if client.Address != nil && in.Address != nil {
		in.Address.apply(client.Address)
	} else {
		client.Address = nil
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return errors.Wrap(err, "failed to update client")
	}
	s.logger.WithField("client_id", id).Info("Client updated")
	return nil
}

// Delete removes a client owned by actorID along with its address.
func (s *ClientService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete client")
	}
	s.logger.WithField("client_id", id).Info("Client deleted")
	return nil
}

// List pages through the clients owned by actorID.
func (s *ClientService) List(ctx context.Context, actorID string, q ClientQuery) (entity.Page[entity.Client], error) {
	p := q.pagination(s.pageSize)
	clients, total, err := s.repo.List(ctx, repository.ClientFilter{
		UserID:     actorID,
		Name:       q.Name,
		Email:      q.Email,
		Phone:      q.Phone,
		Pagination: p,
	})
	if err != nil {
		return entity.Page[entity.Client]{}, errors.Wrap(err, "failed to list clients")
	}
	return entity.NewPage(clients, total, p), nil
}

// Stats counts clients per city and state across all owners.
func (s *ClientService) Stats(ctx context.Context) ([]entity.ClientStat, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute client stats")
	}
	return stats, nil
}
