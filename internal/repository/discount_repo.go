package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pushkindt/pushkind-orders/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DiscountListFilter struct {
	HubID        uuid.UUID
	CustomerID   *uuid.UUID
	PriceLevelID *uuid.UUID
	Status       *models.AssignmentStatus
	Limit        int
	Offset       int
}

type DiscountRepo interface {
	Create(ctx context.Context, a *models.DiscountAssignment) error
	GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.DiscountAssignment, error)
	GetByPair(ctx context.Context, customerID, priceLevelID uuid.UUID) (*models.DiscountAssignment, error)
	List(ctx context.Context, f DiscountListFilter) ([]models.DiscountAssignment, int64, error)
	// Decide moves a REQUESTED assignment into a terminal state. Returns the
	// number of rows affected: 0 means the row is missing or already decided.
	Decide(ctx context.Context, id, hubID uuid.UUID, status models.AssignmentStatus, decidedBy uuid.UUID, decidedAt time.Time) (int64, error)
	ApprovedLevelIDs(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error)
	HasApproved(ctx context.Context, customerID, priceLevelID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error)
}

type discountRepo struct{ db *gorm.DB }

func NewDiscountRepo(db *gorm.DB) DiscountRepo { return &discountRepo{db: db} }

func (r *discountRepo) Create(ctx context.Context, a *models.DiscountAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *discountRepo) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.DiscountAssignment, error) {
	var a models.DiscountAssignment
	err := r.db.WithContext(ctx).First(&a, "id = ? AND hub_id = ?", id, hubID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &a, err
}

func (r *discountRepo) GetByPair(ctx context.Context, customerID, priceLevelID uuid.UUID) (*models.DiscountAssignment, error) {
	var a models.DiscountAssignment
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND price_level_id = ?", customerID, priceLevelID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &a, err
}

func (r *discountRepo) List(ctx context.Context, f DiscountListFilter) ([]models.DiscountAssignment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.DiscountAssignment{}).Where("hub_id = ?", f.HubID)

	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.PriceLevelID != nil {
		q = q.Where("price_level_id = ?", *f.PriceLevelID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []models.DiscountAssignment
	err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *discountRepo) Decide(ctx context.Context, id, hubID uuid.UUID, status models.AssignmentStatus, decidedBy uuid.UUID, decidedAt time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.DiscountAssignment{}).
		Where("id = ? AND hub_id = ? AND status = ?", id, hubID, models.AssignmentRequested).
		Updates(map[string]any{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": decidedAt,
		})
	return tx.RowsAffected, tx.Error
}

func (r *discountRepo) ApprovedLevelIDs(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.DiscountAssignment{}).
		Where("customer_id = ? AND status = ?", customerID, models.AssignmentApproved).
		Order("created_at ASC").
		Pluck("price_level_id", &ids).Error
	return ids, err
}

func (r *discountRepo) HasApproved(ctx context.Context, customerID, priceLevelID uuid.UUID) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.DiscountAssignment{}).
		Where("customer_id = ? AND price_level_id = ? AND status = ?", customerID, priceLevelID, models.AssignmentApproved).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *discountRepo) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.DiscountAssignment{}, "id = ? AND hub_id = ?", id, hubID)
	return tx.RowsAffected > 0, tx.Error
}
