package service_test

import (
	"errors"
	"testing"

	"github.com/pushkindt/pushkind-orders/config"
	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/service"
)

func TestDiscountService_RequestAndApprove(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	level := e.seedLevel(t, "Wholesale", false)
	customer := e.seedCustomer(t, "Acme", "acme@example.com", nil)

	assignment, err := e.discounts.RequestAssignment(e.operatorCtx(), customer.ID, level.ID)
	if err != nil {
		t.Fatalf("RequestAssignment: %v", err)
	}
	if assignment.Status != models.AssignmentRequested {
		t.Fatalf("expected REQUESTED got %s", assignment.Status)
	}

	decided, err := e.discounts.ApproveAssignment(e.managerCtx(), assignment.ID)
	if err != nil {
		t.Fatalf("ApproveAssignment: %v", err)
	}
	if decided.Status != models.AssignmentApproved {
		t.Fatalf("expected APPROVED got %s", decided.Status)
	}
	if decided.DecidedBy == nil || *decided.DecidedBy != e.user {
		t.Fatalf("decided_by not stamped: %+v", decided)
	}
	if decided.DecidedAt == nil {
		t.Fatalf("decided_at not stamped")
	}

	// одобрение проставило уровень клиенту
	got, err := e.customers.GetCustomer(e.operatorCtx(), customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if got.PriceLevelID == nil || *got.PriceLevelID != level.ID {
		t.Fatalf("customer level not stamped: %+v", got.PriceLevelID)
	}
}

func TestDiscountService_ApproveKeepsExistingCustomerLevel(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	retail := e.seedLevel(t, "Retail", false)
	wholesale := e.seedLevel(t, "Wholesale", false)
	customer := e.seedCustomer(t, "Acme", "acme@example.com", &retail.ID)

	assignment, err := e.discounts.RequestAssignment(e.operatorCtx(), customer.ID, wholesale.ID)
	if err != nil {
		t.Fatalf("RequestAssignment: %v", err)
	}
	if _, err := e.discounts.ApproveAssignment(e.managerCtx(), assignment.ID); err != nil {
		t.Fatalf("ApproveAssignment: %v", err)
	}

	got, _ := e.customers.GetCustomer(e.operatorCtx(), customer.ID)
	if got.PriceLevelID == nil || *got.PriceLevelID != retail.ID {
		t.Fatalf("existing level must stay, got %v", got.PriceLevelID)
	}
}

func TestDiscountService_DecisionRequiresManagerRole(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	level := e.seedLevel(t, "Wholesale", false)
	customer := e.seedCustomer(t, "Acme", "acme@example.com", nil)

	assignment, err := e.discounts.RequestAssignment(e.operatorCtx(), customer.ID, level.ID)
	if err != nil {
		t.Fatalf("RequestAssignment: %v", err)
	}

	if _, err := e.discounts.ApproveAssignment(e.operatorCtx(), assignment.ID); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("approve: expected ErrForbidden got %v", err)
	}
	if _, err := e.discounts.RejectAssignment(e.operatorCtx(), assignment.ID); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("reject: expected ErrForbidden got %v", err)
	}
}

func TestDiscountService_DecisionIsFinal(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	level := e.seedLevel(t, "Wholesale", false)
	customer := e.seedCustomer(t, "Acme", "acme@example.com", nil)

	assignment, _ := e.discounts.RequestAssignment(e.operatorCtx(), customer.ID, level.ID)
	if _, err := e.discounts.RejectAssignment(e.managerCtx(), assignment.ID); err != nil {
		t.Fatalf("RejectAssignment: %v", err)
	}
	if _, err := e.discounts.ApproveAssignment(e.managerCtx(), assignment.ID); !errors.Is(err, service.ErrAssignmentDecided) {
		t.Fatalf("expected ErrAssignmentDecided got %v", err)
	}
}

func TestDiscountService_DuplicatePairRejected(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	level := e.seedLevel(t, "Wholesale", false)
	customer := e.seedCustomer(t, "Acme", "acme@example.com", nil)

	if _, err := e.discounts.RequestAssignment(e.operatorCtx(), customer.ID, level.ID); err != nil {
		t.Fatalf("RequestAssignment: %v", err)
	}
	if _, err := e.discounts.RequestAssignment(e.operatorCtx(), customer.ID, level.ID); !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected ErrConflict got %v", err)
	}
}

func TestDiscountService_ApprovedLevelsVisibility(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	approved := e.seedLevel(t, "Approved", false)
	requested := e.seedLevel(t, "Requested", false)
	rejected := e.seedLevel(t, "Rejected", false)
	customer := e.seedCustomer(t, "Acme", "acme@example.com", nil)

	e.seedAssignment(t, customer.ID, approved.ID, models.AssignmentApproved)
	e.seedAssignment(t, customer.ID, requested.ID, models.AssignmentRequested)
	e.seedAssignment(t, customer.ID, rejected.ID, models.AssignmentRejected)

	levels, err := e.discounts.ApprovedLevelsForCustomer(e.operatorCtx(), customer.ID)
	if err != nil {
		t.Fatalf("ApprovedLevelsForCustomer: %v", err)
	}
	if len(levels) != 1 || levels[0].ID != approved.ID {
		t.Fatalf("expected only approved level, got %d", len(levels))
	}
}

func TestDiscountService_UnknownPartiesRejected(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	level := e.seedLevel(t, "Wholesale", false)
	customer := e.seedCustomer(t, "Acme", "acme@example.com", nil)

	if _, err := e.discounts.RequestAssignment(e.operatorCtx(), customer.ID, e.hubID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("unknown level: expected ErrNotFound got %v", err)
	}
	if _, err := e.discounts.RequestAssignment(e.operatorCtx(), e.hubID, level.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("unknown customer: expected ErrNotFound got %v", err)
	}
}
