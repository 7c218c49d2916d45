package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository aggregates the per-entity repos. The relational implementation
// is built from a *gorm.DB; the in-memory fakes in repository/memory build
// the same struct for service tests.
type Repository struct {
	Products    ProductRepo
	PriceLevels PriceLevelRepo
	Categories  CategoryRepo
	Tags        TagRepo
	Customers   CustomerRepo
	Discounts   DiscountRepo
	Orders      OrderRepo
	OrderItems  OrderProductRepo

	// TxRunner wraps fn in a unit of work. The relational implementation
	// opens a database transaction; the fakes snapshot and restore their
	// store. When nil, fn runs against the repository itself.
	TxRunner func(ctx context.Context, fn func(tx *Repository) error) error
}

// WithTx runs fn atomically: all writes inside either commit together or roll
// back together.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.TxRunner == nil {
		return fn(r)
	}
	return r.TxRunner(ctx, fn)
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		Products:    NewProductRepo(db),
		PriceLevels: NewPriceLevelRepo(db),
		Categories:  NewCategoryRepo(db),
		Tags:        NewTagRepo(db),
		Customers:   NewCustomerRepo(db),
		Discounts:   NewDiscountRepo(db),
		Orders:      NewOrderRepo(db),
		OrderItems:  NewOrderProductRepo(db),
		TxRunner: func(ctx context.Context, fn func(tx *Repository) error) error {
			return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return fn(buildRepository(tx))
			})
		},
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
