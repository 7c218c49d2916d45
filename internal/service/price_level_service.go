package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"
)

type PriceLevelListQuery struct {
	Query  string
	Limit  int
	Offset int
}

type PriceLevelService interface {
	CreatePriceLevel(ctx context.Context, name string, isDefault bool) (*models.PriceLevel, error)
	GetPriceLevel(ctx context.Context, id uuid.UUID) (*models.PriceLevel, error)
	ListPriceLevels(ctx context.Context, q PriceLevelListQuery) ([]models.PriceLevel, int64, error)
	RenamePriceLevel(ctx context.Context, id uuid.UUID, name string) (*models.PriceLevel, error)
	// SetDefaultPriceLevel makes the level the hub default; at most one level
	// per hub carries the flag.
	SetDefaultPriceLevel(ctx context.Context, id uuid.UUID) (*models.PriceLevel, error)
	DeletePriceLevel(ctx context.Context, id uuid.UUID) error
}

type priceLevelService struct {
	repo *repository.Repository
}

func NewPriceLevelService(repo *repository.Repository) PriceLevelService {
	return &priceLevelService{repo: repo}
}

func (s *priceLevelService) CreatePriceLevel(ctx context.Context, name string, isDefault bool) (*models.PriceLevel, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, validationf("name must not be blank")
	}
	existing, err := s.repo.PriceLevels.GetByHubAndName(ctx, hubID, name)
	if err != nil {
		return nil, storage(err)
	}
	if existing != nil {
		return nil, ErrConflict
	}
	level := &models.PriceLevel{HubID: hubID, Name: name, IsDefault: isDefault}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if isDefault {
			if err := tx.PriceLevels.ClearDefault(ctx, hubID); err != nil {
				return storage(err)
			}
		}
		if err := tx.PriceLevels.Create(ctx, level); err != nil {
			return storage(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return level, nil
}

func (s *priceLevelService) GetPriceLevel(ctx context.Context, id uuid.UUID) (*models.PriceLevel, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	level, err := s.repo.PriceLevels.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if level == nil {
		return nil, ErrNotFound
	}
	return level, nil
}

func (s *priceLevelService) ListPriceLevels(ctx context.Context, q PriceLevelListQuery) ([]models.PriceLevel, int64, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := s.repo.PriceLevels.List(ctx, repository.PriceLevelListFilter{
		HubID:  hubID,
		Query:  q.Query,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return nil, 0, storage(err)
	}
	return rows, total, nil
}

func (s *priceLevelService) RenamePriceLevel(ctx context.Context, id uuid.UUID, name string) (*models.PriceLevel, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, validationf("name must not be blank")
	}
	existing, err := s.repo.PriceLevels.GetByHubAndName(ctx, hubID, name)
	if err != nil {
		return nil, storage(err)
	}
	if existing != nil && existing.ID != id {
		return nil, ErrConflict
	}
	n, err := s.repo.PriceLevels.UpdateFields(ctx, id, hubID, map[string]any{"name": name})
	if err != nil {
		return nil, storage(err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetPriceLevel(ctx, id)
}

func (s *priceLevelService) SetDefaultPriceLevel(ctx context.Context, id uuid.UUID) (*models.PriceLevel, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		level, err := tx.PriceLevels.GetByID(ctx, id, hubID)
		if err != nil {
			return storage(err)
		}
		if level == nil {
			return ErrNotFound
		}
		if err := tx.PriceLevels.ClearDefault(ctx, hubID); err != nil {
			return storage(err)
		}
		if _, err := tx.PriceLevels.UpdateFields(ctx, id, hubID, map[string]any{"is_default": true}); err != nil {
			return storage(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPriceLevel(ctx, id)
}

func (s *priceLevelService) DeletePriceLevel(ctx context.Context, id uuid.UUID) error {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return err
	}
	deleted, err := s.repo.PriceLevels.Delete(ctx, id, hubID)
	if err != nil {
		return storage(err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
