package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/pushkindt/pushkind-orders/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TagListFilter struct {
	HubID  uuid.UUID
	Query  string
	Limit  int
	Offset int
}

type TagRepo interface {
	Create(ctx context.Context, t *models.Tag) error
	GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Tag, error)
	GetByHubAndName(ctx context.Context, hubID uuid.UUID, name string) (*models.Tag, error)
	List(ctx context.Context, f TagListFilter) ([]models.Tag, int64, error)
	ListByIDs(ctx context.Context, hubID uuid.UUID, ids []uuid.UUID) ([]models.Tag, error)
	UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error)
}

type tagRepo struct{ db *gorm.DB }

func NewTagRepo(db *gorm.DB) TagRepo { return &tagRepo{db: db} }

func (r *tagRepo) Create(ctx context.Context, t *models.Tag) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tagRepo) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Tag, error) {
	var t models.Tag
	err := r.db.WithContext(ctx).First(&t, "id = ? AND hub_id = ?", id, hubID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *tagRepo) GetByHubAndName(ctx context.Context, hubID uuid.UUID, name string) (*models.Tag, error) {
	var t models.Tag
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND lower(name) = lower(?)", hubID, name).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *tagRepo) List(ctx context.Context, f TagListFilter) ([]models.Tag, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Tag{}).Where("hub_id = ?", f.HubID)

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

	var list []models.Tag
	err := q.Order("name ASC, id ASC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *tagRepo) ListByIDs(ctx context.Context, hubID uuid.UUID, ids []uuid.UUID) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	var list []models.Tag
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND id IN ?", hubID, ids).
		Find(&list).Error
	return list, err
}

func (r *tagRepo) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("id = ? AND hub_id = ?", id, hubID).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}

func (r *tagRepo) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Tag{}, "id = ? AND hub_id = ?", id, hubID)
	return tx.RowsAffected > 0, tx.Error
}
