// Package memory provides in-memory fakes of the repository interfaces for
// service-level tests. The fakes mirror the Postgres implementation's
// semantics: hub scoping, case-insensitive lookups, deterministic ordering
// and (rows, total) pagination.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"

	"github.com/google/uuid"
)

type store struct {
	mu sync.RWMutex

	products   map[uuid.UUID]models.Product
	rates      map[uuid.UUID]models.ProductPriceLevel
	levels     map[uuid.UUID]models.PriceLevel
	categories map[uuid.UUID]models.Category
	tags       map[uuid.UUID]models.Tag
	links      map[uuid.UUID]models.ProductTag
	customers  map[uuid.UUID]models.Customer
	discounts  map[uuid.UUID]models.DiscountAssignment
	orders     map[uuid.UUID]models.Order
	items      map[uuid.UUID]models.OrderProduct

	now func() time.Time
}

// New builds a repository aggregate backed entirely by process memory.
// The TxRunner snapshots the store before fn and restores it when fn fails,
// so the all-or-nothing contract of WithTx holds in tests too.
func New() *repository.Repository {
	s := &store{
		products:   map[uuid.UUID]models.Product{},
		rates:      map[uuid.UUID]models.ProductPriceLevel{},
		levels:     map[uuid.UUID]models.PriceLevel{},
		categories: map[uuid.UUID]models.Category{},
		tags:       map[uuid.UUID]models.Tag{},
		links:      map[uuid.UUID]models.ProductTag{},
		customers:  map[uuid.UUID]models.Customer{},
		discounts:  map[uuid.UUID]models.DiscountAssignment{},
		orders:     map[uuid.UUID]models.Order{},
		items:      map[uuid.UUID]models.OrderProduct{},
		now:        time.Now,
	}
	repo := &repository.Repository{
		Products:    &productFake{s},
		PriceLevels: &priceLevelFake{s},
		Categories:  &categoryFake{s},
		Tags:        &tagFake{s},
		Customers:   &customerFake{s},
		Discounts:   &discountFake{s},
		Orders:      &orderFake{s},
		OrderItems:  &orderProductFake{s},
	}
	repo.TxRunner = func(ctx context.Context, fn func(tx *repository.Repository) error) error {
		snapshot := s.clone()
		if err := fn(repo); err != nil {
			s.restore(snapshot)
			return err
		}
		return nil
	}
	return repo
}

type storeSnapshot struct {
	products   map[uuid.UUID]models.Product
	rates      map[uuid.UUID]models.ProductPriceLevel
	levels     map[uuid.UUID]models.PriceLevel
	categories map[uuid.UUID]models.Category
	tags       map[uuid.UUID]models.Tag
	links      map[uuid.UUID]models.ProductTag
	customers  map[uuid.UUID]models.Customer
	discounts  map[uuid.UUID]models.DiscountAssignment
	orders     map[uuid.UUID]models.Order
	items      map[uuid.UUID]models.OrderProduct
}

func copyMap[V any](src map[uuid.UUID]V) map[uuid.UUID]V {
	dst := make(map[uuid.UUID]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *store) clone() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return storeSnapshot{
		products:   copyMap(s.products),
		rates:      copyMap(s.rates),
		levels:     copyMap(s.levels),
		categories: copyMap(s.categories),
		tags:       copyMap(s.tags),
		links:      copyMap(s.links),
		customers:  copyMap(s.customers),
		discounts:  copyMap(s.discounts),
		orders:     copyMap(s.orders),
		items:      copyMap(s.items),
	}
}

func (s *store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.rates = snap.rates
	s.levels = snap.levels
	s.categories = snap.categories
	s.tags = snap.tags
	s.links = snap.links
	s.customers = snap.customers
	s.discounts = snap.discounts
	s.orders = snap.orders
	s.items = snap.items
}

func (s *store) stamp() time.Time { return s.now() }

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func matchFold(value, query string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(query)))
}

func equalFold(a, b string) bool { return strings.EqualFold(a, b) }

// newestFirst orders by created_at DESC with id DESC tie-break, matching the
// SQL listing contract.
func newestFirst(a, b time.Time, aID, bID uuid.UUID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID.String() > bID.String()
}

// byName orders by name ASC with id ASC tie-break.
func byName(a, b string, aID, bID uuid.UUID) bool {
	if a != b {
		return strings.ToLower(a) < strings.ToLower(b)
	}
	return aID.String() < bID.String()
}

// oldestFirst orders by created_at ASC with id ASC tie-break.
func oldestFirst(a, b time.Time, aID, bID uuid.UUID) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return aID.String() < bID.String()
}

// page applies limit/offset with the repository defaults (20, 0).
func page[T any](rows []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
