package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/pushkindt/pushkind-orders/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderListFilter struct {
	HubID      uuid.UUID
	Status     *models.OrderStatus
	CustomerID *uuid.UUID
	Query      string // по reference/notes
	Limit      int
	Offset     int
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Order, error)
	GetByHubAndReference(ctx context.Context, hubID uuid.UUID, reference string) (*models.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error)
	UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error)
	UpdateTotals(ctx context.Context, id uuid.UUID, totalCents int64) error
	Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error)
	Exists(ctx context.Context, id, hubID uuid.UUID) (bool, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_products.created_at ASC, order_products.id ASC")
		}).
		First(&ord, "id = ? AND hub_id = ?", id, hubID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetByHubAndReference(ctx context.Context, hubID uuid.UUID, reference string) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND reference = ?", hubID, reference).
		First(&ord).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("hub_id = ?", f.HubID)

	if f.Status != nil {
		q = q.Where("upper(status) = ?", *f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		q = q.Where("lower(reference) LIKE lower(?) OR lower(notes) LIKE lower(?)", "%"+s+"%", "%"+s+"%")
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

	// Детерминированный порядок: повторные страницы не теряют и не дублируют строки
	var list []models.Order
	err := q.Order("created_at DESC, id DESC").
		Limit(f.Limit).Offset(f.Offset).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_products.created_at ASC, order_products.id ASC")
		}).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *orderRepo) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND hub_id = ?", id, hubID).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}

func (r *orderRepo) UpdateTotals(ctx context.Context, id uuid.UUID, totalCents int64) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("total_cents", totalCents).Error
}

func (r *orderRepo) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ? AND hub_id = ?", id, hubID)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) Exists(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND hub_id = ?", id, hubID).
		Count(&cnt).Error
	return cnt > 0, err
}
