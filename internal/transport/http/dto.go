package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/pushkindt/pushkind-orders/internal/models"
)

// Представления ответов: модели хранения наружу не отдаются.

type listEnvelope[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

type priceLevelResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromPriceLevel(pl models.PriceLevel) priceLevelResponse {
	return priceLevelResponse{
		ID:        pl.ID,
		Name:      pl.Name,
		IsDefault: pl.IsDefault,
		CreatedAt: pl.CreatedAt,
		UpdatedAt: pl.UpdatedAt,
	}
}

func fromPriceLevels(rows []models.PriceLevel) []priceLevelResponse {
	out := make([]priceLevelResponse, 0, len(rows))
	for _, pl := range rows {
		out = append(out, fromPriceLevel(pl))
	}
	return out
}

type categoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	IsArchived  bool       `json:"is_archived"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func fromCategory(c models.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		ParentID:    c.ParentID,
		Name:        c.Name,
		Description: c.Description,
		IsArchived:  c.IsArchived,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type tagResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromTag(t models.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

type priceRateResponse struct {
	PriceLevelID uuid.UUID `json:"price_level_id"`
	PriceCents   int64     `json:"price_cents"`
}

type productResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	SKU         *string    `json:"sku,omitempty"`
	Description *string    `json:"description,omitempty"`
	Units       *string    `json:"units,omitempty"`
	Currency    string     `json:"currency"`
	IsArchived  bool       `json:"is_archived"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	PriceRates []priceRateResponse `json:"price_rates"`
	TagIDs     []uuid.UUID         `json:"tag_ids"`
}

func fromProduct(p models.Product) productResponse {
	rates := make([]priceRateResponse, 0, len(p.PriceLevels))
	for _, r := range p.PriceLevels {
		rates = append(rates, priceRateResponse{PriceLevelID: r.PriceLevelID, PriceCents: r.PriceCents})
	}
	tagIDs := make([]uuid.UUID, 0, len(p.Tags))
	for _, link := range p.Tags {
		tagIDs = append(tagIDs, link.TagID)
	}
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		Units:       p.Units,
		Currency:    p.Currency,
		IsArchived:  p.IsArchived,
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		PriceRates:  rates,
		TagIDs:      tagIDs,
	}
}

type customerResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        *string    `json:"phone,omitempty"`
	PriceLevelID *uuid.UUID `json:"price_level_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func fromCustomer(c models.Customer) customerResponse {
	return customerResponse{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		PriceLevelID: c.PriceLevelID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type assignmentResponse struct {
	ID           uuid.UUID  `json:"id"`
	CustomerID   uuid.UUID  `json:"customer_id"`
	PriceLevelID uuid.UUID  `json:"price_level_id"`
	Status       string     `json:"status"`
	DecidedBy    *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func fromAssignment(a models.DiscountAssignment) assignmentResponse {
	return assignmentResponse{
		ID:           a.ID,
		CustomerID:   a.CustomerID,
		PriceLevelID: a.PriceLevelID,
		Status:       string(a.Status),
		DecidedBy:    a.DecidedBy,
		DecidedAt:    a.DecidedAt,
		CreatedAt:    a.CreatedAt,
	}
}

type orderLineResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Name           string     `json:"name"`
	SKU            *string    `json:"sku,omitempty"`
	Description    *string    `json:"description,omitempty"`
	PriceCents     int64      `json:"price_cents"`
	Currency       string     `json:"currency"`
	Quantity       int32      `json:"quantity"`
	LineTotalCents int64      `json:"line_total_cents"`
}

type orderResponse struct {
	ID         uuid.UUID  `json:"id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Reference  *string    `json:"reference,omitempty"`
	Status     string     `json:"status"`
	Notes      *string    `json:"notes,omitempty"`
	TotalCents int64      `json:"total_cents"`
	Currency   string     `json:"currency"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Items []orderLineResponse `json:"items"`
}

func fromOrder(o models.Order) orderResponse {
	items := make([]orderLineResponse, 0, len(o.Products))
	for _, item := range o.Products {
		items = append(items, orderLineResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			SKU:            item.SKU,
			Description:    item.Description,
			PriceCents:     item.PriceCents,
			Currency:       item.Currency,
			Quantity:       item.Quantity,
			LineTotalCents: item.LineTotalCents,
		})
	}
	return orderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Reference:  o.Reference,
		Status:     string(o.Status),
		Notes:      o.Notes,
		TotalCents: o.TotalCents,
		Currency:   o.Currency,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		Items:      items,
	}
}
