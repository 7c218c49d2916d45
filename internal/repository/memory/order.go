package memory

import (
	"context"
	"sort"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"

	"github.com/google/uuid"
)

type orderFake struct{ s *store }

func (f *orderFake) Create(ctx context.Context, o *models.Order) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	ensureID(&o.ID)
	now := f.s.stamp()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = models.OrderStatusDraft
	}
	stored := *o
	stored.Products = nil
	f.s.orders[o.ID] = stored
	return nil
}

func (f *orderFake) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Order, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	o, ok := f.s.orders[id]
	if !ok || o.HubID != hubID {
		return nil, nil
	}
	o.Products = f.itemsOf(o.ID)
	return &o, nil
}

func (f *orderFake) GetByHubAndReference(ctx context.Context, hubID uuid.UUID, reference string) (*models.Order, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	for _, o := range f.s.orders {
		if o.HubID == hubID && o.Reference != nil && *o.Reference == reference {
			o := o
			o.Products = f.itemsOf(o.ID)
			return &o, nil
		}
	}
	return nil, nil
}

func (f *orderFake) List(ctx context.Context, q repository.OrderListFilter) ([]models.Order, int64, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var rows []models.Order
	for _, o := range f.s.orders {
		if o.HubID != q.HubID {
			continue
		}
		if q.Status != nil && o.Status != *q.Status {
			continue
		}
		if q.CustomerID != nil && (o.CustomerID == nil || *o.CustomerID != *q.CustomerID) {
			continue
		}
		if q.Query != "" {
			ref, notes := "", ""
			if o.Reference != nil {
				ref = *o.Reference
			}
			if o.Notes != nil {
				notes = *o.Notes
			}
			if !matchFold(ref, q.Query) && !matchFold(notes, q.Query) {
				continue
			}
		}
		rows = append(rows, o)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return newestFirst(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	total := int64(len(rows))
	rows = page(rows, q.Limit, q.Offset)
	for i := range rows {
		rows[i].Products = f.itemsOf(rows[i].ID)
	}
	return rows, total, nil
}

func (f *orderFake) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	o, ok := f.s.orders[id]
	if !ok || o.HubID != hubID {
		return 0, nil
	}
	for k, v := range fields {
		switch k {
		case "status":
			o.Status = v.(models.OrderStatus)
		case "notes":
			o.Notes = toStringPtr(v)
		case "reference":
			o.Reference = toStringPtr(v)
		case "customer_id":
			o.CustomerID = toUUIDPtr(v)
		case "currency":
			o.Currency = v.(string)
		case "total_cents":
			o.TotalCents = v.(int64)
		}
	}
	o.UpdatedAt = f.s.stamp()
	f.s.orders[id] = o
	return 1, nil
}

func (f *orderFake) UpdateTotals(ctx context.Context, id uuid.UUID, totalCents int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	o, ok := f.s.orders[id]
	if !ok {
		return nil
	}
	o.TotalCents = totalCents
	o.UpdatedAt = f.s.stamp()
	f.s.orders[id] = o
	return nil
}

func (f *orderFake) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	o, ok := f.s.orders[id]
	if !ok || o.HubID != hubID {
		return false, nil
	}
	delete(f.s.orders, id)
	for iid, item := range f.s.items {
		if item.OrderID == id {
			delete(f.s.items, iid)
		}
	}
	return true, nil
}

func (f *orderFake) Exists(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	o, ok := f.s.orders[id]
	return ok && o.HubID == hubID, nil
}

func (f *orderFake) itemsOf(orderID uuid.UUID) []models.OrderProduct {
	var rows []models.OrderProduct
	for _, item := range f.s.items {
		if item.OrderID == orderID {
			rows = append(rows, item)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return oldestFirst(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	return rows
}

type orderProductFake struct{ s *store }

func (f *orderProductFake) BulkCreate(ctx context.Context, items []models.OrderProduct) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	now := f.s.stamp()
	for i := range items {
		ensureID(&items[i].ID)
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = now
		}
		items[i].UpdatedAt = now
		f.s.items[items[i].ID] = items[i]
	}
	return nil
}

func (f *orderProductFake) GetByID(ctx context.Context, id, orderID uuid.UUID) (*models.OrderProduct, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	item, ok := f.s.items[id]
	if !ok || item.OrderID != orderID {
		return nil, nil
	}
	return &item, nil
}

func (f *orderProductFake) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	return (&orderFake{f.s}).itemsOf(orderID), nil
}

func (f *orderProductFake) SumByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var total int64
	for _, item := range f.s.items {
		if item.OrderID == orderID {
			total += item.LineTotalCents
		}
	}
	return total, nil
}

func (f *orderProductFake) DeleteByID(ctx context.Context, id, orderID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	item, ok := f.s.items[id]
	if !ok || item.OrderID != orderID {
		return false, nil
	}
	delete(f.s.items, id)
	return true, nil
}

func (f *orderProductFake) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var deleted int64
	for iid, item := range f.s.items {
		if item.OrderID == orderID {
			delete(f.s.items, iid)
			deleted++
		}
	}
	return deleted, nil
}
