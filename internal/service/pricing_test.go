package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/pushkindt/pushkind-orders/config"
	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/service"
)

func TestPricing_ResolveForCustomer_ApprovedLevel(t *testing.T) {
	e := newEnv(t, config.Pricing{})

	wholesale := e.seedLevel(t, "Wholesale", false)
	product := e.seedProduct(t, "Widget WID-1", "USD", map[uuid.UUID]int64{wholesale.ID: 500})
	customer := e.seedCustomer(t, "Acme", "acme@example.com", &wholesale.ID)
	e.seedAssignment(t, customer.ID, wholesale.ID, models.AssignmentApproved)

	resolved, err := e.pricing.Resolve(e.operatorCtx(), service.ResolvePriceInput{
		ProductID:  product.ID,
		CustomerID: &customer.ID,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.PriceCents != 500 {
		t.Fatalf("price expected 500 got %d", resolved.PriceCents)
	}
	if resolved.Currency != "USD" {
		t.Fatalf("currency expected USD got %s", resolved.Currency)
	}
	if resolved.PriceLevelID != wholesale.ID {
		t.Fatalf("level mismatch")
	}
}

func TestPricing_UndecidedAssignmentGivesNoPrice(t *testing.T) {
	for _, status := range []models.AssignmentStatus{models.AssignmentRequested, models.AssignmentRejected} {
		t.Run(string(status), func(t *testing.T) {
			e := newEnv(t, config.Pricing{})

			wholesale := e.seedLevel(t, "Wholesale", false)
			product := e.seedProduct(t, "Widget", "USD", map[uuid.UUID]int64{wholesale.ID: 500})
			customer := e.seedCustomer(t, "Acme", "acme@example.com", &wholesale.ID)
			e.seedAssignment(t, customer.ID, wholesale.ID, status)

			_, err := e.pricing.Resolve(e.operatorCtx(), service.ResolvePriceInput{
				ProductID:  product.ID,
				CustomerID: &customer.ID,
			})
			if !errors.Is(err, service.ErrNoPriceLevel) {
				t.Fatalf("expected ErrNoPriceLevel got %v", err)
			}
		})
	}
}

func TestPricing_CustomerWithoutLevel(t *testing.T) {
	e := newEnv(t, config.Pricing{})

	level := e.seedLevel(t, "Retail", false)
	product := e.seedProduct(t, "Widget", "USD", map[uuid.UUID]int64{level.ID: 700})
	customer := e.seedCustomer(t, "Acme", "acme@example.com", nil)

	_, err := e.pricing.Resolve(e.operatorCtx(), service.ResolvePriceInput{
		ProductID:  product.ID,
		CustomerID: &customer.ID,
	})
	if !errors.Is(err, service.ErrNoPriceLevel) {
		t.Fatalf("expected ErrNoPriceLevel got %v", err)
	}
}

func TestPricing_MissingMapping(t *testing.T) {
	e := newEnv(t, config.Pricing{})

	wholesale := e.seedLevel(t, "Wholesale", false)
	product := e.seedProduct(t, "Widget", "USD", nil)
	customer := e.seedCustomer(t, "Acme", "acme@example.com", &wholesale.ID)
	e.seedAssignment(t, customer.ID, wholesale.ID, models.AssignmentApproved)

	_, err := e.pricing.Resolve(e.operatorCtx(), service.ResolvePriceInput{
		ProductID:  product.ID,
		CustomerID: &customer.ID,
	})
	if !errors.Is(err, service.ErrPriceNotConfigured) {
		t.Fatalf("expected ErrPriceNotConfigured got %v", err)
	}
}

func TestPricing_FallbackToDefaultLevel(t *testing.T) {
	e := newEnv(t, config.Pricing{FallbackToDefaultLevel: true})

	standard := e.seedLevel(t, "Standard", true)
	wholesale := e.seedLevel(t, "Wholesale", false)
	// цена настроена только для уровня по умолчанию
	product := e.seedProduct(t, "Widget", "USD", map[uuid.UUID]int64{standard.ID: 900})
	customer := e.seedCustomer(t, "Acme", "acme@example.com", &wholesale.ID)
	e.seedAssignment(t, customer.ID, wholesale.ID, models.AssignmentApproved)

	resolved, err := e.pricing.Resolve(e.operatorCtx(), service.ResolvePriceInput{
		ProductID:  product.ID,
		CustomerID: &customer.ID,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.PriceCents != 900 || resolved.PriceLevelID != standard.ID {
		t.Fatalf("expected default-level fallback, got %+v", resolved)
	}
}

func TestPricing_ExplicitLevelPath(t *testing.T) {
	e := newEnv(t, config.Pricing{})

	retail := e.seedLevel(t, "Retail", false)
	product := e.seedProduct(t, "Widget", "EUR", map[uuid.UUID]int64{retail.ID: 1250})

	resolved, err := e.pricing.Resolve(e.operatorCtx(), service.ResolvePriceInput{
		ProductID:    product.ID,
		PriceLevelID: &retail.ID,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.PriceCents != 1250 || resolved.Currency != "EUR" {
		t.Fatalf("unexpected result %+v", resolved)
	}
}

func TestPricing_RequiresCustomerOrLevel(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	product := e.seedProduct(t, "Widget", "USD", nil)

	_, err := e.pricing.Resolve(e.operatorCtx(), service.ResolvePriceInput{ProductID: product.ID})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected ErrValidation got %v", err)
	}
}

func TestPricing_UnknownProduct(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	level := e.seedLevel(t, "Retail", false)

	_, err := e.pricing.Resolve(e.operatorCtx(), service.ResolvePriceInput{
		ProductID:    uuid.New(),
		PriceLevelID: &level.ID,
	})
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestPricing_AccessControl(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	product := e.seedProduct(t, "Widget", "USD", nil)
	level := e.seedLevel(t, "Retail", false)

	in := service.ResolvePriceInput{ProductID: product.ID, PriceLevelID: &level.ID}

	if _, err := e.pricing.Resolve(e.ctx(), in); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("no roles: expected ErrForbidden got %v", err)
	}
	// контекст без hub_id
	ctxNoHub := service.WithRoles(context.Background(), []service.Role{service.RoleOperator})
	if _, err := e.pricing.Resolve(ctxNoHub, in); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("no hub: expected ErrUnauthorized got %v", err)
	}
}
