package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"
)

type PriceRateInput struct {
	PriceLevelID uuid.UUID
	PriceCents   int64
}

type CreateProductInput struct {
	Name        string
	SKU         *string
	Description *string
	Units       *string
	Currency    string
	CategoryID  *uuid.UUID

	PriceRates []PriceRateInput
	TagIDs     []uuid.UUID
}

type UpdateProductInput struct {
	Name *string

	SKU      *string
	ClearSKU bool

	Description      *string
	ClearDescription bool

	Units      *string
	ClearUnits bool

	Currency *string

	CategoryID    *uuid.UUID
	ClearCategory bool
}

type ProductListQuery struct {
	Query           string
	CategoryID      *uuid.UUID
	TagID           *uuid.UUID
	IncludeArchived bool
	Limit           int
	Offset          int
}

type ProductService interface {
	CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, q ProductListQuery) ([]models.Product, int64, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*models.Product, error)
	SetProductArchived(ctx context.Context, id uuid.UUID, archived bool) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ReplacePriceRates(ctx context.Context, id uuid.UUID, rates []PriceRateInput) (*models.Product, error)
	ReplaceTags(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) (*models.Product, error)
}

type productService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewProductService(repo *repository.Repository, log *zap.Logger) ProductService {
	return &productService{repo: repo, log: log}
}

func (s *productService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("name must not be blank")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if len(currency) != 3 {
		return nil, validationf("currency must be a 3-letter code")
	}
	if in.SKU != nil {
		if strings.TrimSpace(*in.SKU) == "" {
			return nil, validationf("sku must not be blank")
		}
		existing, err := s.repo.Products.GetByHubAndSKU(ctx, hubID, *in.SKU)
		if err != nil {
			return nil, storage(err)
		}
		if existing != nil {
			return nil, ErrConflict
		}
	}
	if in.CategoryID != nil {
		category, err := s.repo.Categories.GetByID(ctx, *in.CategoryID, hubID)
		if err != nil {
			return nil, storage(err)
		}
		if category == nil {
			return nil, ErrNotFound
		}
	}
	rates, err := s.validateRates(ctx, hubID, in.PriceRates)
	if err != nil {
		return nil, err
	}
	if err := s.validateTagIDs(ctx, hubID, in.TagIDs); err != nil {
		return nil, err
	}

	product := &models.Product{
		HubID:       hubID,
		Name:        in.Name,
		SKU:         in.SKU,
		Description: in.Description,
		Units:       in.Units,
		Currency:    currency,
		CategoryID:  in.CategoryID,
	}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Products.Create(ctx, product); err != nil {
			return storage(err)
		}
		if len(rates) > 0 {
			if err := tx.Products.ReplacePriceRates(ctx, product.ID, rates); err != nil {
				return storage(err)
			}
		}
		if len(in.TagIDs) > 0 {
			if err := tx.Products.ReplaceTags(ctx, product.ID, in.TagIDs); err != nil {
				return storage(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("товар создан",
		zap.String("product_id", product.ID.String()),
		zap.String("hub_id", hubID.String()),
	)
	return s.reload(ctx, product.ID, hubID)
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id, hubID)
}

func (s *productService) ListProducts(ctx context.Context, q ProductListQuery) ([]models.Product, int64, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := s.repo.Products.List(ctx, repository.ProductListFilter{
		HubID:           hubID,
		Query:           q.Query,
		CategoryID:      q.CategoryID,
		TagID:           q.TagID,
		IncludeArchived: q.IncludeArchived,
		Limit:           q.Limit,
		Offset:          q.Offset,
	})
	if err != nil {
		return nil, 0, storage(err)
	}
	return rows, total, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*models.Product, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.Products.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if product == nil {
		return nil, ErrNotFound
	}

	fields := map[string]any{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, validationf("name must not be blank")
		}
		fields["name"] = *in.Name
	}
	switch {
	case in.ClearSKU:
		fields["sku"] = nil
	case in.SKU != nil:
		if strings.TrimSpace(*in.SKU) == "" {
			return nil, validationf("sku must not be blank")
		}
		existing, err := s.repo.Products.GetByHubAndSKU(ctx, hubID, *in.SKU)
		if err != nil {
			return nil, storage(err)
		}
		if existing != nil && existing.ID != id {
			return nil, ErrConflict
		}
		fields["sku"] = *in.SKU
	}
	switch {
	case in.ClearDescription:
		fields["description"] = nil
	case in.Description != nil:
		fields["description"] = *in.Description
	}
	switch {
	case in.ClearUnits:
		fields["units"] = nil
	case in.Units != nil:
		fields["units"] = *in.Units
	}
	if in.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*in.Currency))
		if len(currency) != 3 {
			return nil, validationf("currency must be a 3-letter code")
		}
		fields["currency"] = currency
	}
	switch {
	case in.ClearCategory:
		fields["category_id"] = nil
	case in.CategoryID != nil:
		category, err := s.repo.Categories.GetByID(ctx, *in.CategoryID, hubID)
		if err != nil {
			return nil, storage(err)
		}
		if category == nil {
			return nil, ErrNotFound
		}
		fields["category_id"] = *in.CategoryID
	}

	if len(fields) > 0 {
		if _, err := s.repo.Products.UpdateFields(ctx, id, hubID, fields); err != nil {
			return nil, storage(err)
		}
	}
	return s.reload(ctx, id, hubID)
}

func (s *productService) SetProductArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return err
	}
	n, err := s.repo.Products.UpdateFields(ctx, id, hubID, map[string]any{"is_archived": archived})
	if err != nil {
		return storage(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Products.Delete(ctx, id, hubID)
	if err != nil {
		return storage(err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *productService) ReplacePriceRates(ctx context.Context, id uuid.UUID, in []PriceRateInput) (*models.Product, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.Products.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if product == nil {
		return nil, ErrNotFound
	}
	rates, err := s.validateRates(ctx, hubID, in)
	if err != nil {
		return nil, err
	}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Products.ReplacePriceRates(ctx, id, rates); err != nil {
			return storage(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id, hubID)
}

func (s *productService) ReplaceTags(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) (*models.Product, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.Products.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if product == nil {
		return nil, ErrNotFound
	}
	if err := s.validateTagIDs(ctx, hubID, tagIDs); err != nil {
		return nil, err
	}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Products.ReplaceTags(ctx, id, tagIDs); err != nil {
			return storage(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id, hubID)
}

// validateRates checks every referenced price level belongs to the hub and
// rejects duplicate levels and negative prices.
func (s *productService) validateRates(ctx context.Context, hubID uuid.UUID, in []PriceRateInput) ([]models.ProductPriceLevel, error) {
	if len(in) == 0 {
		return nil, nil
	}
	seen := make(map[uuid.UUID]struct{}, len(in))
	ids := make([]uuid.UUID, 0, len(in))
	rates := make([]models.ProductPriceLevel, 0, len(in))
	for _, rate := range in {
		if rate.PriceCents < 0 {
			return nil, validationf("price must not be negative")
		}
		if _, dup := seen[rate.PriceLevelID]; dup {
			return nil, validationf("duplicate price level %s", rate.PriceLevelID)
		}
		seen[rate.PriceLevelID] = struct{}{}
		ids = append(ids, rate.PriceLevelID)
		rates = append(rates, models.ProductPriceLevel{
			PriceLevelID: rate.PriceLevelID,
			PriceCents:   rate.PriceCents,
		})
	}
	levels, err := s.repo.PriceLevels.ListByIDs(ctx, hubID, ids)
	if err != nil {
		return nil, storage(err)
	}
	if len(levels) != len(ids) {
		return nil, ErrNotFound
	}
	return rates, nil
}

func (s *productService) validateTagIDs(ctx context.Context, hubID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := seen[id]; dup {
			return validationf("duplicate tag %s", id)
		}
		seen[id] = struct{}{}
	}
	tags, err := s.repo.Tags.ListByIDs(ctx, hubID, tagIDs)
	if err != nil {
		return storage(err)
	}
	if len(tags) != len(tagIDs) {
		return ErrNotFound
	}
	return nil
}

func (s *productService) reload(ctx context.Context, id, hubID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.Products.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}
