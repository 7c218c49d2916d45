package memory

import (
	"context"
	"sort"
	"time"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"

	"github.com/google/uuid"
)

type customerFake struct{ s *store }

func (f *customerFake) Create(ctx context.Context, c *models.Customer) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	ensureID(&c.ID)
	now := f.s.stamp()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	f.s.customers[c.ID] = *c
	return nil
}

func (f *customerFake) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Customer, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	c, ok := f.s.customers[id]
	if !ok || c.HubID != hubID {
		return nil, nil
	}
	return &c, nil
}

func (f *customerFake) GetByHubAndEmail(ctx context.Context, hubID uuid.UUID, email string) (*models.Customer, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	for _, c := range f.s.customers {
		if c.HubID == hubID && equalFold(c.Email, email) {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (f *customerFake) List(ctx context.Context, q repository.CustomerListFilter) ([]models.Customer, int64, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var rows []models.Customer
	for _, c := range f.s.customers {
		if c.HubID != q.HubID {
			continue
		}
		if q.PriceLevelID != nil && (c.PriceLevelID == nil || *c.PriceLevelID != *q.PriceLevelID) {
			continue
		}
		if q.Query != "" && !matchFold(c.Name, q.Query) && !matchFold(c.Email, q.Query) {
			continue
		}
		rows = append(rows, c)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return byName(rows[i].Name, rows[j].Name, rows[i].ID, rows[j].ID)
	})
	total := int64(len(rows))
	return page(rows, q.Limit, q.Offset), total, nil
}

func (f *customerFake) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	c, ok := f.s.customers[id]
	if !ok || c.HubID != hubID {
		return 0, nil
	}
	for k, v := range fields {
		switch k {
		case "name":
			c.Name = v.(string)
		case "email":
			c.Email = v.(string)
		case "phone":
			c.Phone = toStringPtr(v)
		case "price_level_id":
			c.PriceLevelID = toUUIDPtr(v)
		}
	}
	c.UpdatedAt = f.s.stamp()
	f.s.customers[id] = c
	return 1, nil
}

func (f *customerFake) AssignPriceLevel(ctx context.Context, hubID uuid.UUID, customerIDs []uuid.UUID, priceLevelID *uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for _, id := range customerIDs {
		c, ok := f.s.customers[id]
		if !ok || c.HubID != hubID {
			continue
		}
		c.PriceLevelID = priceLevelID
		c.UpdatedAt = f.s.stamp()
		f.s.customers[id] = c
	}
	return nil
}

func (f *customerFake) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	c, ok := f.s.customers[id]
	if !ok || c.HubID != hubID {
		return false, nil
	}
	delete(f.s.customers, id)
	for did, d := range f.s.discounts {
		if d.CustomerID == id {
			delete(f.s.discounts, did)
		}
	}
	// SET NULL на заказах
	for oid, o := range f.s.orders {
		if o.CustomerID != nil && *o.CustomerID == id {
			o.CustomerID = nil
			f.s.orders[oid] = o
		}
	}
	return true, nil
}

type discountFake struct{ s *store }

func (f *discountFake) Create(ctx context.Context, a *models.DiscountAssignment) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	ensureID(&a.ID)
	now := f.s.stamp()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = models.AssignmentRequested
	}
	f.s.discounts[a.ID] = *a
	return nil
}

func (f *discountFake) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.DiscountAssignment, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	a, ok := f.s.discounts[id]
	if !ok || a.HubID != hubID {
		return nil, nil
	}
	return &a, nil
}

func (f *discountFake) GetByPair(ctx context.Context, customerID, priceLevelID uuid.UUID) (*models.DiscountAssignment, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	for _, a := range f.s.discounts {
		if a.CustomerID == customerID && a.PriceLevelID == priceLevelID {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (f *discountFake) List(ctx context.Context, q repository.DiscountListFilter) ([]models.DiscountAssignment, int64, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var rows []models.DiscountAssignment
	for _, a := range f.s.discounts {
		if a.HubID != q.HubID {
			continue
		}
		if q.CustomerID != nil && a.CustomerID != *q.CustomerID {
			continue
		}
		if q.PriceLevelID != nil && a.PriceLevelID != *q.PriceLevelID {
			continue
		}
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		rows = append(rows, a)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return newestFirst(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	total := int64(len(rows))
	return page(rows, q.Limit, q.Offset), total, nil
}

func (f *discountFake) Decide(ctx context.Context, id, hubID uuid.UUID, status models.AssignmentStatus, decidedBy uuid.UUID, decidedAt time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	a, ok := f.s.discounts[id]
	if !ok || a.HubID != hubID || a.Status != models.AssignmentRequested {
		return 0, nil
	}
	a.Status = status
	a.DecidedBy = &decidedBy
	a.DecidedAt = &decidedAt
	a.UpdatedAt = f.s.stamp()
	f.s.discounts[id] = a
	return 1, nil
}

func (f *discountFake) ApprovedLevelIDs(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var approved []models.DiscountAssignment
	for _, a := range f.s.discounts {
		if a.CustomerID == customerID && a.Status == models.AssignmentApproved {
			approved = append(approved, a)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool {
		return oldestFirst(approved[i].CreatedAt, approved[j].CreatedAt, approved[i].ID, approved[j].ID)
	})
	ids := make([]uuid.UUID, 0, len(approved))
	for _, a := range approved {
		ids = append(ids, a.PriceLevelID)
	}
	return ids, nil
}

func (f *discountFake) HasApproved(ctx context.Context, customerID, priceLevelID uuid.UUID) (bool, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	for _, a := range f.s.discounts {
		if a.CustomerID == customerID && a.PriceLevelID == priceLevelID && a.Status == models.AssignmentApproved {
			return true, nil
		}
	}
	return false, nil
}

func (f *discountFake) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	a, ok := f.s.discounts[id]
	if !ok || a.HubID != hubID {
		return false, nil
	}
	delete(f.s.discounts, id)
	return true, nil
}
