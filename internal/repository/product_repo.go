package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/pushkindt/pushkind-orders/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductListFilter struct {
	HubID           uuid.UUID
	Query           string // по name/sku
	CategoryID      *uuid.UUID
	TagID           *uuid.UUID
	IncludeArchived bool
	Limit           int
	Offset          int
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Product, error)
	GetByHubAndSKU(ctx context.Context, hubID uuid.UUID, sku string) (*models.Product, error)
	UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error)
	List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error)
	Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error)

	ReplacePriceRates(ctx context.Context, productID uuid.UUID, rates []models.ProductPriceLevel) error
	GetPriceForLevel(ctx context.Context, productID, priceLevelID uuid.UUID) (*models.ProductPriceLevel, error)
	ReplaceTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Preload("PriceLevels").
		Preload("Tags").
		First(&p, "id = ? AND hub_id = ?", id, hubID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetByHubAndSKU(ctx context.Context, hubID uuid.UUID, sku string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND lower(sku) = lower(?)", hubID, sku).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND hub_id = ?", id, hubID).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}

func (r *productRepo) List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("products.hub_id = ?", f.HubID)

	if !f.IncludeArchived {
		q = q.Where("products.is_archived = false")
	}
	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.TagID != nil {
		q = q.Joins("JOIN product_tags pt ON pt.product_id = products.id").
			Where("pt.tag_id = ?", *f.TagID)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		q = q.Where("lower(products.name) LIKE lower(?) OR lower(products.sku) LIKE lower(?)", "%"+s+"%", "%"+s+"%")
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

	var list []models.Product
	err := q.Order("products.created_at DESC, products.id DESC").
		Limit(f.Limit).Offset(f.Offset).
		Preload("PriceLevels").
		Preload("Tags").
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepo) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ? AND hub_id = ?", id, hubID)
	return tx.RowsAffected > 0, tx.Error
}

// ReplacePriceRates swaps the whole (product, price level) mapping set.
// Callers are expected to run it inside WithTx together with the product
// write it belongs to.
func (r *productRepo) ReplacePriceRates(ctx context.Context, productID uuid.UUID, rates []models.ProductPriceLevel) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductPriceLevel{}).Error; err != nil {
		return err
	}
	if len(rates) == 0 {
		return nil
	}
	for i := range rates {
		rates[i].ProductID = productID
	}
	return r.db.WithContext(ctx).Create(&rates).Error
}

func (r *productRepo) GetPriceForLevel(ctx context.Context, productID, priceLevelID uuid.UUID) (*models.ProductPriceLevel, error) {
	var rate models.ProductPriceLevel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND price_level_id = ?", productID, priceLevelID).
		First(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rate, err
}

func (r *productRepo) ReplaceTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]models.ProductTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, models.ProductTag{ProductID: productID, TagID: tagID})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}
