package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pushkindt/pushkind-orders/config"
	"github.com/pushkindt/pushkind-orders/internal/repository"
)

// ResolvedPrice is the outcome of price resolution for one product.
type ResolvedPrice struct {
	PriceCents   int64
	Currency     string
	PriceLevelID uuid.UUID
}

// ResolvePriceInput picks the resolution path: either an explicit price level,
// or a customer whose approved assigned level is consulted. Exactly one of the
// two must be set.
type ResolvePriceInput struct {
	ProductID    uuid.UUID
	CustomerID   *uuid.UUID
	PriceLevelID *uuid.UUID
}

type PriceResolver interface {
	Resolve(ctx context.Context, in ResolvePriceInput) (ResolvedPrice, error)
}

type pricingService struct {
	repo *repository.Repository
	opts config.Pricing
}

func NewPricingService(repo *repository.Repository, opts config.Pricing) PriceResolver {
	return &pricingService{repo: repo, opts: opts}
}

// Resolve returns the effective price in cents for a product.
//
// The customer path is gated twice: the customer must have an assigned price
// level AND that level must be backed by an APPROVED discount assignment.
// A level assigned but still REQUESTED (or REJECTED) yields ErrNoPriceLevel,
// never a silent fallback to some other price.
func (s *pricingService) Resolve(ctx context.Context, in ResolvePriceInput) (ResolvedPrice, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return ResolvedPrice{}, err
	}

	product, err := s.repo.Products.GetByID(ctx, in.ProductID, hubID)
	if err != nil {
		return ResolvedPrice{}, storage(err)
	}
	if product == nil {
		return ResolvedPrice{}, ErrNotFound
	}

	var levelID uuid.UUID
	switch {
	case in.PriceLevelID != nil:
		level, err := s.repo.PriceLevels.GetByID(ctx, *in.PriceLevelID, hubID)
		if err != nil {
			return ResolvedPrice{}, storage(err)
		}
		if level == nil {
			return ResolvedPrice{}, ErrNotFound
		}
		levelID = level.ID
	case in.CustomerID != nil:
		customer, err := s.repo.Customers.GetByID(ctx, *in.CustomerID, hubID)
		if err != nil {
			return ResolvedPrice{}, storage(err)
		}
		if customer == nil {
			return ResolvedPrice{}, ErrNotFound
		}
		if customer.PriceLevelID == nil {
			return ResolvedPrice{}, ErrNoPriceLevel
		}
		approved, err := s.repo.Discounts.HasApproved(ctx, customer.ID, *customer.PriceLevelID)
		if err != nil {
			return ResolvedPrice{}, storage(err)
		}
		if !approved {
			return ResolvedPrice{}, ErrNoPriceLevel
		}
		levelID = *customer.PriceLevelID
	default:
		return ResolvedPrice{}, validationf("either customer_id or price_level_id is required")
	}

	rate, err := s.repo.Products.GetPriceForLevel(ctx, product.ID, levelID)
	if err != nil {
		return ResolvedPrice{}, storage(err)
	}
	if rate == nil && s.opts.FallbackToDefaultLevel {
		def, err := s.repo.PriceLevels.GetDefault(ctx, hubID)
		if err != nil {
			return ResolvedPrice{}, storage(err)
		}
		if def != nil && def.ID != levelID {
			rate, err = s.repo.Products.GetPriceForLevel(ctx, product.ID, def.ID)
			if err != nil {
				return ResolvedPrice{}, storage(err)
			}
			if rate != nil {
				levelID = def.ID
			}
		}
	}
	if rate == nil {
		return ResolvedPrice{}, ErrPriceNotConfigured
	}

	return ResolvedPrice{
		PriceCents:   rate.PriceCents,
		Currency:     product.Currency,
		PriceLevelID: levelID,
	}, nil
}
