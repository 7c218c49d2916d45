package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/pushkindt/pushkind-orders/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PriceLevelListFilter struct {
	HubID  uuid.UUID
	Query  string // по name
	Limit  int
	Offset int
}

type PriceLevelRepo interface {
	Create(ctx context.Context, pl *models.PriceLevel) error
	GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.PriceLevel, error)
	GetByHubAndName(ctx context.Context, hubID uuid.UUID, name string) (*models.PriceLevel, error)
	GetDefault(ctx context.Context, hubID uuid.UUID) (*models.PriceLevel, error)
	List(ctx context.Context, f PriceLevelListFilter) ([]models.PriceLevel, int64, error)
	ListByIDs(ctx context.Context, hubID uuid.UUID, ids []uuid.UUID) ([]models.PriceLevel, error)
	UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error)
	ClearDefault(ctx context.Context, hubID uuid.UUID) error
	Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error)
}

type priceLevelRepo struct{ db *gorm.DB }

func NewPriceLevelRepo(db *gorm.DB) PriceLevelRepo { return &priceLevelRepo{db: db} }

func (r *priceLevelRepo) Create(ctx context.Context, pl *models.PriceLevel) error {
	return r.db.WithContext(ctx).Create(pl).Error
}

func (r *priceLevelRepo) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.PriceLevel, error) {
	var pl models.PriceLevel
	err := r.db.WithContext(ctx).First(&pl, "id = ? AND hub_id = ?", id, hubID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &pl, err
}

func (r *priceLevelRepo) GetByHubAndName(ctx context.Context, hubID uuid.UUID, name string) (*models.PriceLevel, error) {
	var pl models.PriceLevel
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND lower(name) = lower(?)", hubID, name).
		First(&pl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &pl, err
}

func (r *priceLevelRepo) GetDefault(ctx context.Context, hubID uuid.UUID) (*models.PriceLevel, error) {
	var pl models.PriceLevel
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_default", hubID).
		First(&pl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &pl, err
}

func (r *priceLevelRepo) List(ctx context.Context, f PriceLevelListFilter) ([]models.PriceLevel, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.PriceLevel{}).Where("hub_id = ?", f.HubID)

	if s := strings.TrimSpace(f.Query); s != "" {
		q = q.Where("lower(name) LIKE lower(?)", "%"+s+"%")
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

	var list []models.PriceLevel
	err := q.Order("name ASC, id ASC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *priceLevelRepo) ListByIDs(ctx context.Context, hubID uuid.UUID, ids []uuid.UUID) ([]models.PriceLevel, error) {
	if len(ids) == 0 {
		return []models.PriceLevel{}, nil
	}
	var list []models.PriceLevel
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND id IN ?", hubID, ids).
		Order("name ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *priceLevelRepo) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Model(&models.PriceLevel{}).
		Where("id = ? AND hub_id = ?", id, hubID).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}

func (r *priceLevelRepo) ClearDefault(ctx context.Context, hubID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.PriceLevel{}).
		Where("hub_id = ? AND is_default", hubID).
		Update("is_default", false).Error
}

func (r *priceLevelRepo) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.PriceLevel{}, "id = ? AND hub_id = ?", id, hubID)
	return tx.RowsAffected > 0, tx.Error
}
