package repository

import (
	"context"
	"errors"

	"github.com/pushkindt/pushkind-orders/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderProductRepo persists order line snapshots. Rows are write-once: there
// is deliberately no update method, edits happen as delete + recreate.
type OrderProductRepo interface {
	BulkCreate(ctx context.Context, items []models.OrderProduct) error
	GetByID(ctx context.Context, id, orderID uuid.UUID) (*models.OrderProduct, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error)
	SumByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
	DeleteByID(ctx context.Context, id, orderID uuid.UUID) (bool, error)
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error)
}

type orderProductRepo struct{ db *gorm.DB }

func NewOrderProductRepo(db *gorm.DB) OrderProductRepo { return &orderProductRepo{db: db} }

func (r *orderProductRepo) BulkCreate(ctx context.Context, items []models.OrderProduct) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *orderProductRepo) GetByID(ctx context.Context, id, orderID uuid.UUID) (*models.OrderProduct, error) {
	var item models.OrderProduct
	err := r.db.WithContext(ctx).First(&item, "id = ? AND order_id = ?", id, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *orderProductRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error) {
	var rows []models.OrderProduct
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *orderProductRepo) SumByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.OrderProduct{}).
		Select("COALESCE(SUM(line_total_cents),0)").
		Where("order_id = ?", orderID).
		Scan(&total).Error
	return total, err
}

func (r *orderProductRepo) DeleteByID(ctx context.Context, id, orderID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.OrderProduct{}, "id = ? AND order_id = ?", id, orderID)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderProductRepo) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderProduct{})
	return tx.RowsAffected, tx.Error
}
