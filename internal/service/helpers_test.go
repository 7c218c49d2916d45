package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pushkindt/pushkind-orders/config"
	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"
	"github.com/pushkindt/pushkind-orders/internal/repository/memory"
	"github.com/pushkindt/pushkind-orders/internal/service"
)

type env struct {
	repo  *repository.Repository
	hubID uuid.UUID
	user  uuid.UUID

	pricing     service.PriceResolver
	orders      service.OrderService
	products    service.ProductService
	categories  service.CategoryService
	tags        service.TagService
	priceLevels service.PriceLevelService
	customers   service.CustomerService
	discounts   service.DiscountService
}

func newEnv(t *testing.T, pricingOpts config.Pricing) *env {
	t.Helper()
	repo := memory.New()
	log := zap.NewNop()
	pricing := service.NewPricingService(repo, pricingOpts)
	return &env{
		repo:        repo,
		hubID:       uuid.New(),
		user:        uuid.New(),
		pricing:     pricing,
		orders:      service.NewOrderService(repo, pricing, nil, log),
		products:    service.NewProductService(repo, log),
		categories:  service.NewCategoryService(repo),
		tags:        service.NewTagService(repo),
		priceLevels: service.NewPriceLevelService(repo),
		customers:   service.NewCustomerService(repo),
		discounts:   service.NewDiscountService(repo, log),
	}
}

func (e *env) ctx(roles ...service.Role) context.Context {
	ctx := service.WithHubID(context.Background(), e.hubID)
	ctx = service.WithUserID(ctx, e.user)
	return service.WithRoles(ctx, roles)
}

func (e *env) operatorCtx() context.Context {
	return e.ctx(service.RoleOperator)
}

func (e *env) managerCtx() context.Context {
	return e.ctx(service.RoleOperator, service.RoleOrdersManager)
}

// seedLevel inserts a price level directly through the repository.
func (e *env) seedLevel(t *testing.T, name string, isDefault bool) *models.PriceLevel {
	t.Helper()
	level := &models.PriceLevel{HubID: e.hubID, Name: name, IsDefault: isDefault}
	if err := e.repo.PriceLevels.Create(context.Background(), level); err != nil {
		t.Fatalf("seed level: %v", err)
	}
	return level
}

func (e *env) seedProduct(t *testing.T, name, currency string, rates map[uuid.UUID]int64) *models.Product {
	t.Helper()
	product := &models.Product{HubID: e.hubID, Name: name, Currency: currency}
	if err := e.repo.Products.Create(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if len(rates) > 0 {
		list := make([]models.ProductPriceLevel, 0, len(rates))
		for levelID, cents := range rates {
			list = append(list, models.ProductPriceLevel{PriceLevelID: levelID, PriceCents: cents})
		}
		if err := e.repo.Products.ReplacePriceRates(context.Background(), product.ID, list); err != nil {
			t.Fatalf("seed rates: %v", err)
		}
	}
	return product
}

func (e *env) seedCustomer(t *testing.T, name, email string, levelID *uuid.UUID) *models.Customer {
	t.Helper()
	customer := &models.Customer{HubID: e.hubID, Name: name, Email: email, PriceLevelID: levelID}
	if err := e.repo.Customers.Create(context.Background(), customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

func (e *env) seedAssignment(t *testing.T, customerID, levelID uuid.UUID, status models.AssignmentStatus) *models.DiscountAssignment {
	t.Helper()
	assignment := &models.DiscountAssignment{
		HubID:        e.hubID,
		CustomerID:   customerID,
		PriceLevelID: levelID,
		Status:       status,
	}
	if err := e.repo.Discounts.Create(context.Background(), assignment); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return assignment
}
