package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"
)

type AssignmentListQuery struct {
	CustomerID   *uuid.UUID
	PriceLevelID *uuid.UUID
	Status       *models.AssignmentStatus
	Limit        int
	Offset       int
}

// DiscountService runs the approval workflow for customer discount levels.
// Requesting is open to any operator; deciding requires the orders-manager
// role.
type DiscountService interface {
	RequestAssignment(ctx context.Context, customerID, priceLevelID uuid.UUID) (*models.DiscountAssignment, error)
	ApproveAssignment(ctx context.Context, id uuid.UUID) (*models.DiscountAssignment, error)
	RejectAssignment(ctx context.Context, id uuid.UUID) (*models.DiscountAssignment, error)
	ListAssignments(ctx context.Context, q AssignmentListQuery) ([]models.DiscountAssignment, int64, error)
	// ApprovedLevelsForCustomer is the customer-visible price-level listing:
	// REQUESTED and REJECTED assignments are invisible.
	ApprovedLevelsForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PriceLevel, error)
}

type discountService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewDiscountService(repo *repository.Repository, log *zap.Logger) DiscountService {
	return &discountService{repo: repo, log: log, now: time.Now}
}

func (s *discountService) RequestAssignment(ctx context.Context, customerID, priceLevelID uuid.UUID) (*models.DiscountAssignment, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	customer, err := s.repo.Customers.GetByID(ctx, customerID, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if customer == nil {
		return nil, ErrNotFound
	}
	level, err := s.repo.PriceLevels.GetByID(ctx, priceLevelID, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if level == nil {
		return nil, ErrNotFound
	}
	existing, err := s.repo.Discounts.GetByPair(ctx, customerID, priceLevelID)
	if err != nil {
		return nil, storage(err)
	}
	if existing != nil {
		return nil, ErrConflict
	}

	assignment := &models.DiscountAssignment{
		HubID:        hubID,
		CustomerID:   customerID,
		PriceLevelID: priceLevelID,
		Status:       models.AssignmentRequested,
	}
	if err := s.repo.Discounts.Create(ctx, assignment); err != nil {
		return nil, storage(err)
	}
	s.log.Info("запрошено назначение уровня цен",
		zap.String("assignment_id", assignment.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("price_level_id", priceLevelID.String()),
	)
	return assignment, nil
}

func (s *discountService) ApproveAssignment(ctx context.Context, id uuid.UUID) (*models.DiscountAssignment, error) {
	return s.decide(ctx, id, models.AssignmentApproved)
}

func (s *discountService) RejectAssignment(ctx context.Context, id uuid.UUID) (*models.DiscountAssignment, error) {
	return s.decide(ctx, id, models.AssignmentRejected)
}

func (s *discountService) decide(ctx context.Context, id uuid.UUID, status models.AssignmentStatus) (*models.DiscountAssignment, error) {
	hubID, roles, err := requireHub(ctx)
	if err != nil {
		return nil, err
	}
	if !hasRole(roles, RoleOrdersManager) {
		return nil, ErrForbidden
	}
	decidedBy, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	var decided *models.DiscountAssignment
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		assignment, err := tx.Discounts.GetByID(ctx, id, hubID)
		if err != nil {
			return storage(err)
		}
		if assignment == nil {
			return ErrNotFound
		}
		n, err := tx.Discounts.Decide(ctx, id, hubID, status, decidedBy, s.now().UTC())
		if err != nil {
			return storage(err)
		}
		if n == 0 {
			return ErrAssignmentDecided
		}
		// одобрение проставляет уровень клиенту, если тот ещё не выбран
		if status == models.AssignmentApproved {
			customer, err := tx.Customers.GetByID(ctx, assignment.CustomerID, hubID)
			if err != nil {
				return storage(err)
			}
			if customer != nil && customer.PriceLevelID == nil {
				if _, err := tx.Customers.UpdateFields(ctx, customer.ID, hubID, map[string]any{
					"price_level_id": assignment.PriceLevelID,
				}); err != nil {
					return storage(err)
				}
			}
		}
		decided, err = tx.Discounts.GetByID(ctx, id, hubID)
		if err != nil {
			return storage(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("решение по назначению уровня цен",
		zap.String("assignment_id", id.String()),
		zap.String("status", string(status)),
		zap.String("decided_by", decidedBy.String()),
	)
	return decided, nil
}

func (s *discountService) ListAssignments(ctx context.Context, q AssignmentListQuery) ([]models.DiscountAssignment, int64, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := s.repo.Discounts.List(ctx, repository.DiscountListFilter{
		HubID:        hubID,
		CustomerID:   q.CustomerID,
		PriceLevelID: q.PriceLevelID,
		Status:       q.Status,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		return nil, 0, storage(err)
	}
	return rows, total, nil
}

func (s *discountService) ApprovedLevelsForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PriceLevel, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	customer, err := s.repo.Customers.GetByID(ctx, customerID, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if customer == nil {
		return nil, ErrNotFound
	}
	ids, err := s.repo.Discounts.ApprovedLevelIDs(ctx, customerID)
	if err != nil {
		return nil, storage(err)
	}
	levels, err := s.repo.PriceLevels.ListByIDs(ctx, hubID, ids)
	if err != nil {
		return nil, storage(err)
	}
	return levels, nil
}
