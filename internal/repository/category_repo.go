package repository

import (
	"context"
	"errors"

	"github.com/pushkindt/pushkind-orders/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepo interface {
	Create(ctx context.Context, c *models.Category) error
	GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Category, error)
	// ListByHub returns the whole category tree of a hub; the tree is small
	// enough to assemble in memory.
	ListByHub(ctx context.Context, hubID uuid.UUID, includeArchived bool) ([]models.Category, error)
	UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error)
}

type categoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) CategoryRepo { return &categoryRepo{db: db} }

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Category, error) {
	var c models.Category
	err := r.db.WithContext(ctx).First(&c, "id = ? AND hub_id = ?", id, hubID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *categoryRepo) ListByHub(ctx context.Context, hubID uuid.UUID, includeArchived bool) ([]models.Category, error) {
	q := r.db.WithContext(ctx).Where("hub_id = ?", hubID)
	if !includeArchived {
		q = q.Where("is_archived = false")
	}
	var list []models.Category
	err := q.Order("name ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *categoryRepo) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ? AND hub_id = ?", id, hubID).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}

// Delete removes the category; children keep existing with parent_id set to
// NULL by the FK, products fall back to uncategorized the same way.
func (r *categoryRepo) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ? AND hub_id = ?", id, hubID)
	return tx.RowsAffected > 0, tx.Error
}
