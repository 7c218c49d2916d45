package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/pushkindt/pushkind-orders/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerListFilter struct {
	HubID        uuid.UUID
	Query        string // по name/email
	PriceLevelID *uuid.UUID
	Limit        int
	Offset       int
}

type CustomerRepo interface {
	Create(ctx context.Context, c *models.Customer) error
	GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Customer, error)
	GetByHubAndEmail(ctx context.Context, hubID uuid.UUID, email string) (*models.Customer, error)
	List(ctx context.Context, f CustomerListFilter) ([]models.Customer, int64, error)
	UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error)
	// AssignPriceLevel stamps (or clears, with nil) the price level on a set
	// of customers of one hub.
	AssignPriceLevel(ctx context.Context, hubID uuid.UUID, customerIDs []uuid.UUID, priceLevelID *uuid.UUID) error
	Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepo(db *gorm.DB) CustomerRepo { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).First(&c, "id = ? AND hub_id = ?", id, hubID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *customerRepo) GetByHubAndEmail(ctx context.Context, hubID uuid.UUID, email string) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND lower(email) = lower(?)", hubID, email).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *customerRepo) List(ctx context.Context, f CustomerListFilter) ([]models.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Customer{}).Where("hub_id = ?", f.HubID)

	if f.PriceLevelID != nil {
		q = q.Where("price_level_id = ?", *f.PriceLevelID)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		q = q.Where("lower(name) LIKE lower(?) OR lower(email) LIKE lower(?)", "%"+s+"%", "%"+s+"%")
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

	var list []models.Customer
	err := q.Order("name ASC, id ASC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *customerRepo) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ? AND hub_id = ?", id, hubID).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}

func (r *customerRepo) AssignPriceLevel(ctx context.Context, hubID uuid.UUID, customerIDs []uuid.UUID, priceLevelID *uuid.UUID) error {
	if len(customerIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("hub_id = ? AND id IN ?", hubID, customerIDs).
		Update("price_level_id", priceLevelID).Error
}

func (r *customerRepo) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ? AND hub_id = ?", id, hubID)
	return tx.RowsAffected > 0, tx.Error
}
