package memory

import (
	"context"
	"sort"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"

	"github.com/google/uuid"
)

type productFake struct{ s *store }

func (f *productFake) Create(ctx context.Context, p *models.Product) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	ensureID(&p.ID)
	now := f.s.stamp()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	f.s.products[p.ID] = *p
	return nil
}

func (f *productFake) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Product, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	p, ok := f.s.products[id]
	if !ok || p.HubID != hubID {
		return nil, nil
	}
	f.attach(&p)
	return &p, nil
}

func (f *productFake) GetByHubAndSKU(ctx context.Context, hubID uuid.UUID, sku string) (*models.Product, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	for _, p := range f.s.products {
		if p.HubID == hubID && p.SKU != nil && equalFold(*p.SKU, sku) {
			p := p
			f.attach(&p)
			return &p, nil
		}
	}
	return nil, nil
}

func (f *productFake) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	p, ok := f.s.products[id]
	if !ok || p.HubID != hubID {
		return 0, nil
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "sku":
			p.SKU = toStringPtr(v)
		case "description":
			p.Description = toStringPtr(v)
		case "units":
			p.Units = toStringPtr(v)
		case "currency":
			p.Currency = v.(string)
		case "is_archived":
			p.IsArchived = v.(bool)
		case "category_id":
			p.CategoryID = toUUIDPtr(v)
		}
	}
	p.UpdatedAt = f.s.stamp()
	f.s.products[id] = p
	return 1, nil
}

func (f *productFake) List(ctx context.Context, q repository.ProductListFilter) ([]models.Product, int64, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var rows []models.Product
	for _, p := range f.s.products {
		if p.HubID != q.HubID {
			continue
		}
		if !q.IncludeArchived && p.IsArchived {
			continue
		}
		if q.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *q.CategoryID) {
			continue
		}
		if q.TagID != nil && !f.hasTag(p.ID, *q.TagID) {
			continue
		}
		if q.Query != "" {
			sku := ""
			if p.SKU != nil {
				sku = *p.SKU
			}
			if !matchFold(p.Name, q.Query) && !matchFold(sku, q.Query) {
				continue
			}
		}
		rows = append(rows, p)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return newestFirst(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	total := int64(len(rows))
	rows = page(rows, q.Limit, q.Offset)
	for i := range rows {
		f.attach(&rows[i])
	}
	return rows, total, nil
}

func (f *productFake) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	p, ok := f.s.products[id]
	if !ok || p.HubID != hubID {
		return false, nil
	}
	delete(f.s.products, id)
	// каскад: прайсы и теги товара
	for rid, r := range f.s.rates {
		if r.ProductID == id {
			delete(f.s.rates, rid)
		}
	}
	for lid, l := range f.s.links {
		if l.ProductID == id {
			delete(f.s.links, lid)
		}
	}
	// слабая ссылка: строки заказов переживают удаление товара
	for iid, item := range f.s.items {
		if item.ProductID != nil && *item.ProductID == id {
			item.ProductID = nil
			f.s.items[iid] = item
		}
	}
	return true, nil
}

func (f *productFake) ReplacePriceRates(ctx context.Context, productID uuid.UUID, rates []models.ProductPriceLevel) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for rid, r := range f.s.rates {
		if r.ProductID == productID {
			delete(f.s.rates, rid)
		}
	}
	now := f.s.stamp()
	for i := range rates {
		rates[i].ProductID = productID
		ensureID(&rates[i].ID)
		if rates[i].CreatedAt.IsZero() {
			rates[i].CreatedAt = now
		}
		rates[i].UpdatedAt = now
		f.s.rates[rates[i].ID] = rates[i]
	}
	return nil
}

func (f *productFake) GetPriceForLevel(ctx context.Context, productID, priceLevelID uuid.UUID) (*models.ProductPriceLevel, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	for _, r := range f.s.rates {
		if r.ProductID == productID && r.PriceLevelID == priceLevelID {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (f *productFake) ReplaceTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for lid, l := range f.s.links {
		if l.ProductID == productID {
			delete(f.s.links, lid)
		}
	}
	now := f.s.stamp()
	for _, tagID := range tagIDs {
		link := models.ProductTag{ID: uuid.New(), ProductID: productID, TagID: tagID, CreatedAt: now}
		f.s.links[link.ID] = link
	}
	return nil
}

func (f *productFake) hasTag(productID, tagID uuid.UUID) bool {
	for _, l := range f.s.links {
		if l.ProductID == productID && l.TagID == tagID {
			return true
		}
	}
	return false
}

// attach fills the preloaded associations the way the GORM repo does.
func (f *productFake) attach(p *models.Product) {
	p.PriceLevels = nil
	for _, r := range f.s.rates {
		if r.ProductID == p.ID {
			p.PriceLevels = append(p.PriceLevels, r)
		}
	}
	sort.SliceStable(p.PriceLevels, func(i, j int) bool {
		return p.PriceLevels[i].ID.String() < p.PriceLevels[j].ID.String()
	})
	p.Tags = nil
	for _, l := range f.s.links {
		if l.ProductID == p.ID {
			p.Tags = append(p.Tags, l)
		}
	}
	sort.SliceStable(p.Tags, func(i, j int) bool {
		return p.Tags[i].ID.String() < p.Tags[j].ID.String()
	})
}

type priceLevelFake struct{ s *store }

func (f *priceLevelFake) Create(ctx context.Context, pl *models.PriceLevel) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	ensureID(&pl.ID)
	now := f.s.stamp()
	if pl.CreatedAt.IsZero() {
		pl.CreatedAt = now
	}
	pl.UpdatedAt = now
	f.s.levels[pl.ID] = *pl
	return nil
}

func (f *priceLevelFake) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.PriceLevel, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	pl, ok := f.s.levels[id]
	if !ok || pl.HubID != hubID {
		return nil, nil
	}
	return &pl, nil
}

func (f *priceLevelFake) GetByHubAndName(ctx context.Context, hubID uuid.UUID, name string) (*models.PriceLevel, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	for _, pl := range f.s.levels {
		if pl.HubID == hubID && equalFold(pl.Name, name) {
			pl := pl
			return &pl, nil
		}
	}
	return nil, nil
}

func (f *priceLevelFake) GetDefault(ctx context.Context, hubID uuid.UUID) (*models.PriceLevel, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	for _, pl := range f.s.levels {
		if pl.HubID == hubID && pl.IsDefault {
			pl := pl
			return &pl, nil
		}
	}
	return nil, nil
}

func (f *priceLevelFake) List(ctx context.Context, q repository.PriceLevelListFilter) ([]models.PriceLevel, int64, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var rows []models.PriceLevel
	for _, pl := range f.s.levels {
		if pl.HubID != q.HubID {
			continue
		}
		if q.Query != "" && !matchFold(pl.Name, q.Query) {
			continue
		}
		rows = append(rows, pl)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return byName(rows[i].Name, rows[j].Name, rows[i].ID, rows[j].ID)
	})
	total := int64(len(rows))
	return page(rows, q.Limit, q.Offset), total, nil
}

func (f *priceLevelFake) ListByIDs(ctx context.Context, hubID uuid.UUID, ids []uuid.UUID) ([]models.PriceLevel, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var rows []models.PriceLevel
	for _, id := range ids {
		if pl, ok := f.s.levels[id]; ok && pl.HubID == hubID {
			rows = append(rows, pl)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return byName(rows[i].Name, rows[j].Name, rows[i].ID, rows[j].ID)
	})
	return rows, nil
}

func (f *priceLevelFake) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	pl, ok := f.s.levels[id]
	if !ok || pl.HubID != hubID {
		return 0, nil
	}
	for k, v := range fields {
		switch k {
		case "name":
			pl.Name = v.(string)
		case "is_default":
			pl.IsDefault = v.(bool)
		}
	}
	pl.UpdatedAt = f.s.stamp()
	f.s.levels[id] = pl
	return 1, nil
}

func (f *priceLevelFake) ClearDefault(ctx context.Context, hubID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for id, pl := range f.s.levels {
		if pl.HubID == hubID && pl.IsDefault {
			pl.IsDefault = false
			f.s.levels[id] = pl
		}
	}
	return nil
}

func (f *priceLevelFake) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	pl, ok := f.s.levels[id]
	if !ok || pl.HubID != hubID {
		return false, nil
	}
	delete(f.s.levels, id)
	for rid, r := range f.s.rates {
		if r.PriceLevelID == id {
			delete(f.s.rates, rid)
		}
	}
	for did, d := range f.s.discounts {
		if d.PriceLevelID == id {
			delete(f.s.discounts, did)
		}
	}
	// SET NULL на покупателях
	for cid, c := range f.s.customers {
		if c.PriceLevelID != nil && *c.PriceLevelID == id {
			c.PriceLevelID = nil
			f.s.customers[cid] = c
		}
	}
	return true, nil
}

type categoryFake struct{ s *store }

func (f *categoryFake) Create(ctx context.Context, c *models.Category) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	ensureID(&c.ID)
	now := f.s.stamp()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	f.s.categories[c.ID] = *c
	return nil
}

func (f *categoryFake) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Category, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	c, ok := f.s.categories[id]
	if !ok || c.HubID != hubID {
		return nil, nil
	}
	return &c, nil
}

func (f *categoryFake) ListByHub(ctx context.Context, hubID uuid.UUID, includeArchived bool) ([]models.Category, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var rows []models.Category
	for _, c := range f.s.categories {
		if c.HubID != hubID {
			continue
		}
		if !includeArchived && c.IsArchived {
			continue
		}
		rows = append(rows, c)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return byName(rows[i].Name, rows[j].Name, rows[i].ID, rows[j].ID)
	})
	return rows, nil
}

func (f *categoryFake) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	c, ok := f.s.categories[id]
	if !ok || c.HubID != hubID {
		return 0, nil
	}
	for k, v := range fields {
		switch k {
		case "name":
			c.Name = v.(string)
		case "description":
			c.Description = toStringPtr(v)
		case "parent_id":
			c.ParentID = toUUIDPtr(v)
		case "is_archived":
			c.IsArchived = v.(bool)
		}
	}
	c.UpdatedAt = f.s.stamp()
	f.s.categories[id] = c
	return 1, nil
}

func (f *categoryFake) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	c, ok := f.s.categories[id]
	if !ok || c.HubID != hubID {
		return false, nil
	}
	delete(f.s.categories, id)
	// SET NULL: дети остаются, товары становятся без категории
	for cid, child := range f.s.categories {
		if child.ParentID != nil && *child.ParentID == id {
			child.ParentID = nil
			f.s.categories[cid] = child
		}
	}
	for pid, p := range f.s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			f.s.products[pid] = p
		}
	}
	return true, nil
}

type tagFake struct{ s *store }

func (f *tagFake) Create(ctx context.Context, t *models.Tag) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	ensureID(&t.ID)
	now := f.s.stamp()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	f.s.tags[t.ID] = *t
	return nil
}

func (f *tagFake) GetByID(ctx context.Context, id, hubID uuid.UUID) (*models.Tag, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	t, ok := f.s.tags[id]
	if !ok || t.HubID != hubID {
		return nil, nil
	}
	return &t, nil
}

func (f *tagFake) GetByHubAndName(ctx context.Context, hubID uuid.UUID, name string) (*models.Tag, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	for _, t := range f.s.tags {
		if t.HubID == hubID && equalFold(t.Name, name) {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (f *tagFake) List(ctx context.Context, q repository.TagListFilter) ([]models.Tag, int64, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var rows []models.Tag
	for _, t := range f.s.tags {
		if t.HubID != q.HubID {
			continue
		}
		if q.Query != "" && !matchFold(t.Name, q.Query) {
			continue
		}
		rows = append(rows, t)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return byName(rows[i].Name, rows[j].Name, rows[i].ID, rows[j].ID)
	})
	total := int64(len(rows))
	return page(rows, q.Limit, q.Offset), total, nil
}

func (f *tagFake) ListByIDs(ctx context.Context, hubID uuid.UUID, ids []uuid.UUID) ([]models.Tag, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var rows []models.Tag
	for _, id := range ids {
		if t, ok := f.s.tags[id]; ok && t.HubID == hubID {
			rows = append(rows, t)
		}
	}
	return rows, nil
}

func (f *tagFake) UpdateFields(ctx context.Context, id, hubID uuid.UUID, fields map[string]any) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	t, ok := f.s.tags[id]
	if !ok || t.HubID != hubID {
		return 0, nil
	}
	if v, ok := fields["name"]; ok {
		t.Name = v.(string)
	}
	t.UpdatedAt = f.s.stamp()
	f.s.tags[id] = t
	return 1, nil
}

func (f *tagFake) Delete(ctx context.Context, id, hubID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	t, ok := f.s.tags[id]
	if !ok || t.HubID != hubID {
		return false, nil
	}
	delete(f.s.tags, id)
	for lid, l := range f.s.links {
		if l.TagID == id {
			delete(f.s.links, lid)
		}
	}
	return true, nil
}

func toStringPtr(v any) *string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return &val
	case *string:
		return val
	}
	return nil
}

func toUUIDPtr(v any) *uuid.UUID {
	switch val := v.(type) {
	case nil:
		return nil
	case uuid.UUID:
		return &val
	case *uuid.UUID:
		return val
	}
	return nil
}
