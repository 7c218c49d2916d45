package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "DRAFT"
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ParseOrderStatus normalizes the casing before comparison: legacy rows may
// carry lowercase status values.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case OrderStatusDraft:
		return OrderStatusDraft, true
	case OrderStatusPending:
		return OrderStatusPending, true
	case OrderStatusProcessing:
		return OrderStatusProcessing, true
	case OrderStatusCompleted:
		return OrderStatusCompleted, true
	case OrderStatusCancelled:
		return OrderStatusCancelled, true
	}
	return "", false
}

// Terminal reports whether no further status transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo encodes the fixed lifecycle:
// DRAFT -> PENDING -> PROCESSING -> COMPLETED, with CANCELLED reachable from
// any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	switch s {
	case OrderStatusDraft:
		return next == OrderStatusPending
	case OrderStatusPending:
		return next == OrderStatusProcessing
	case OrderStatusProcessing:
		return next == OrderStatusCompleted
	}
	return false
}

type PriceLevel struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HubID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:text;not null"` // уникальность per hub через функциональный индекс lower(name)
	IsDefault bool      `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (PriceLevel) TableName() string { return "price_levels" }

type Category struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HubID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Name        string     `gorm:"type:text;not null"`
	Description *string    `gorm:"type:text"`
	IsArchived  bool       `gorm:"not null;default:false;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HubID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name        string     `gorm:"type:text;not null"`
	SKU         *string    `gorm:"type:text"` // уникальность per hub через частичный индекс lower(sku)
	Description *string    `gorm:"type:text"`
	Units       *string    `gorm:"type:text"`
	Currency    string     `gorm:"type:char(3);not null"`
	IsArchived  bool       `gorm:"not null;default:false;index"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	PriceLevels []ProductPriceLevel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Tags        []ProductTag        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (Product) TableName() string { return "products" }

type ProductPriceLevel struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_product_price_levels_pair"`
	PriceLevelID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_product_price_levels_pair"`
	PriceCents   int64     `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (ProductPriceLevel) TableName() string { return "product_price_levels" }

type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HubID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name  string    `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Tag) TableName() string { return "tags" }

type ProductTag struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_product_tags_pair"`
	TagID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_product_tags_pair"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (ProductTag) TableName() string { return "product_tags" }

type Customer struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HubID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name         string     `gorm:"type:text;not null"`
	Email        string     `gorm:"type:text;not null"` // уникальность per hub через функциональный индекс lower(email)
	Phone        *string    `gorm:"type:text"`
	PriceLevelID *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Customer) TableName() string { return "customers" }

type AssignmentStatus string

const (
	AssignmentRequested AssignmentStatus = "REQUESTED"
	AssignmentApproved  AssignmentStatus = "APPROVED"
	AssignmentRejected  AssignmentStatus = "REJECTED"
)

// DiscountAssignment grants a customer visibility of a price level once
// approved. REQUESTED and REJECTED rows are invisible to price resolution.
type DiscountAssignment struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HubID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerID   uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:ux_discount_assignments_pair"`
	PriceLevelID uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:ux_discount_assignments_pair"`
	Status       AssignmentStatus `gorm:"type:text;not null;default:'REQUESTED';index"`
	DecidedBy    *uuid.UUID       `gorm:"type:uuid"`
	DecidedAt    *time.Time

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (DiscountAssignment) TableName() string { return "discount_assignments" }

type Order struct {
	ID         uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HubID      uuid.UUID   `gorm:"type:uuid;not null;index"`
	CustomerID *uuid.UUID  `gorm:"type:uuid;index"`
	Reference  *string     `gorm:"type:text"` // уникальность per hub через частичный индекс
	Status     OrderStatus `gorm:"type:text;not null;default:'DRAFT';index"`
	Notes      *string     `gorm:"type:text"`
	TotalCents int64       `gorm:"not null;default:0"`
	Currency   string      `gorm:"type:char(3);not null"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Products []OrderProduct `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderProduct is an immutable snapshot of catalog state taken when the line
// was written. The product reference is weak: the order survives product
// deletion and the frozen fields are never re-derived.
type OrderProduct struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID      *uuid.UUID `gorm:"type:uuid;index"`
	Name           string     `gorm:"type:text;not null"`
	SKU            *string    `gorm:"type:text"`
	Description    *string    `gorm:"type:text"`
	PriceCents     int64      `gorm:"not null"`
	Currency       string     `gorm:"type:char(3);not null"`
	Quantity       int32      `gorm:"not null"`
	LineTotalCents int64      `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderProduct) TableName() string { return "order_products" }
