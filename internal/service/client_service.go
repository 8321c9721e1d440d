package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"cuotas/api/internal/authz"
	"cuotas/api/internal/models"
	"cuotas/api/internal/repository"
)

type ClientStore interface {
	Create(ctx context.Context, c *models.Client) error
	GetByID(ctx context.Context, id int64) (models.Client, error)
	GetByAccountID(ctx context.Context, accountID int64) (models.Client, error)
	List(ctx context.Context, f repository.ClientFilter) ([]models.Client, error)
	UpdateSeller(ctx context.Context, clientID int64, sellerID *int64) error
}

type AccountReader interface {
	GetByID(ctx context.Context, id int64) (models.Account, error)
}

type PropertyReader interface {
	GetByID(ctx context.Context, id int64) (models.Property, error)
}

type ClientService struct {
	clients    ClientStore
	accounts   AccountReader
	properties PropertyReader
	log        zerolog.Logger
}

func NewClientService(clients ClientStore, accounts AccountReader, properties PropertyReader, log zerolog.Logger) *ClientService {
	return &ClientService{
		clients:    clients,
		accounts:   accounts,
		properties: properties,
		log:        log,
	}
}

type CreateClientInput struct {
	RealEstateID int64
	AccountID    int64
	PropertyID   int64
	SellerID     *int64
}

// Create links a client account to an available property of the real
// estate and reserves it. An optional seller must hold the seller role.
func (s *ClientService) Create(ctx context.Context, input CreateClientInput) (models.Client, error) {
	account, err := s.accounts.GetByID(ctx, input.AccountID)
	if err != nil {
		return models.Client{}, err
	}
	if account.Role != authz.RoleClient || !account.Active {
		return models.Client{}, ErrClientRoleRequired
	}

	property, err := s.properties.GetByID(ctx, input.PropertyID)
	if err != nil {
		return models.Client{}, err
	}
	if property.RealEstateID != input.RealEstateID {
		return models.Client{}, ErrPropertyOutsideRealEstate
	}
	if property.Status != models.PropertyStatusAvailable {
		return models.Client{}, repository.ErrPropertyUnavailable
	}

	if err := s.checkSeller(ctx, input.SellerID); err != nil {
		return models.Client{}, err
	}

	client := models.Client{
		AccountID:  input.AccountID,
		PropertyID: input.PropertyID,
		SellerID:   input.SellerID,
	}
	if err := s.clients.Create(ctx, &client); err != nil {
		return models.Client{}, err
	}

	s.log.Info().
		Int64("client_id", client.ID).
		Int64("property_id", client.PropertyID).
		Int64("real_estate_id", client.RealEstateID).
		Msg("client created")
	return client, nil
}

// AssignSeller reassigns the client's seller. A nil sellerID clears it.
func (s *ClientService) AssignSeller(ctx context.Context, clientID int64, sellerID *int64) (models.Client, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return models.Client{}, err
	}
	if err := s.checkSeller(ctx, sellerID); err != nil {
		return models.Client{}, err
	}
	if err := s.clients.UpdateSeller(ctx, clientID, sellerID); err != nil {
		return models.Client{}, err
	}
	return s.clients.GetByID(ctx, clientID)
}

func (s *ClientService) checkSeller(ctx context.Context, sellerID *int64) error {
	if sellerID == nil {
		return nil
	}
	seller, err := s.accounts.GetByID(ctx, *sellerID)
	if errors.Is(err, authz.ErrAccountNotFound) {
		return ErrSellerRoleRequired
	}
	if err != nil {
		return err
	}
	if seller.Role != authz.RoleSeller || !seller.Active {
		return ErrSellerRoleRequired
	}
	return nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (models.Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *ClientService) ForAccount(ctx context.Context, accountID int64) (models.Client, error) {
	return s.clients.GetByAccountID(ctx, accountID)
}

// List applies the viewer's visibility: sellers only ever see clients
// assigned to them.
func (s *ClientService) List(ctx context.Context, viewer authz.Account, filter repository.ClientFilter) ([]models.Client, error) {
	switch viewer.Role {
	case authz.RoleSystemAdmin, authz.RoleRealEstateAdmin:
	case authz.RoleSeller:
		filter.SellerID = viewer.ID
	case authz.RoleClient:
		return nil, ErrNotOwner
	default:
		return nil, authz.ErrUnknownRole
	}
	return s.clients.List(ctx, filter)
}
