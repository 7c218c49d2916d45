package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"
)

type CreateCustomerInput struct {
	Name  string
	Email string
	Phone *string
}

type UpdateCustomerInput struct {
	Name  *string
	Email *string

	Phone      *string
	ClearPhone bool
}

type CustomerListQuery struct {
	Query        string
	PriceLevelID *uuid.UUID
	Limit        int
	Offset       int
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, in CreateCustomerInput) (*models.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	ListCustomers(ctx context.Context, q CustomerListQuery) ([]models.Customer, int64, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, in UpdateCustomerInput) (*models.Customer, error)
	// AssignPriceLevel stamps the level on a batch of customers; nil clears it.
	// Note that resolution still requires an APPROVED discount assignment.
	AssignPriceLevel(ctx context.Context, customerIDs []uuid.UUID, priceLevelID *uuid.UUID) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	repo *repository.Repository
}

func NewCustomerService(repo *repository.Repository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*models.Customer, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("name must not be blank")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationf("email is not valid")
	}
	existing, err := s.repo.Customers.GetByHubAndEmail(ctx, hubID, email)
	if err != nil {
		return nil, storage(err)
	}
	if existing != nil {
		return nil, ErrConflict
	}
	customer := &models.Customer{
		HubID: hubID,
		Name:  in.Name,
		Email: email,
		Phone: in.Phone,
	}
	if err := s.repo.Customers.Create(ctx, customer); err != nil {
		return nil, storage(err)
	}
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	customer, err := s.repo.Customers.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if customer == nil {
		return nil, ErrNotFound
	}
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context, q CustomerListQuery) ([]models.Customer, int64, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := s.repo.Customers.List(ctx, repository.CustomerListFilter{
		HubID:        hubID,
		Query:        q.Query,
		PriceLevelID: q.PriceLevelID,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		return nil, 0, storage(err)
	}
	return rows, total, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uuid.UUID, in UpdateCustomerInput) (*models.Customer, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	customer, err := s.repo.Customers.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if customer == nil {
		return nil, ErrNotFound
	}

	fields := map[string]any{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, validationf("name must not be blank")
		}
		fields["name"] = *in.Name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, validationf("email is not valid")
		}
		existing, err := s.repo.Customers.GetByHubAndEmail(ctx, hubID, email)
		if err != nil {
			return nil, storage(err)
		}
		if existing != nil && existing.ID != id {
			return nil, ErrConflict
		}
		fields["email"] = email
	}
	switch {
	case in.ClearPhone:
		fields["phone"] = nil
	case in.Phone != nil:
		fields["phone"] = *in.Phone
	}

	if len(fields) > 0 {
		if _, err := s.repo.Customers.UpdateFields(ctx, id, hubID, fields); err != nil {
			return nil, storage(err)
		}
	}
	updated, err := s.repo.Customers.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	return updated, nil
}

func (s *customerService) AssignPriceLevel(ctx context.Context, customerIDs []uuid.UUID, priceLevelID *uuid.UUID) error {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return err
	}
	if len(customerIDs) == 0 {
		return validationf("customer list is empty")
	}
	if priceLevelID != nil {
		level, err := s.repo.PriceLevels.GetByID(ctx, *priceLevelID, hubID)
		if err != nil {
			return storage(err)
		}
		if level == nil {
			return ErrNotFound
		}
	}
	if err := s.repo.Customers.AssignPriceLevel(ctx, hubID, customerIDs, priceLevelID); err != nil {
		return storage(err)
	}
	return nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Customers.Delete(ctx, id, hubID)
	if err != nil {
		return storage(err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
