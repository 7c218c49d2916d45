package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pushkindt/pushkind-orders/internal/migrate"
	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"
	"github.com/pushkindt/pushkind-orders/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateHubDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPriceLevelRepo_CRUD_And_Default(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	hubID := uuid.New()

	standard := &models.PriceLevel{HubID: hubID, Name: "Standard", IsDefault: true}
	if err := repo.PriceLevels.Create(ctx, standard); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// имя уникально в пределах хаба без учёта регистра
	err := repo.PriceLevels.Create(ctx, &models.PriceLevel{HubID: hubID, Name: "standard"})
	if err == nil || !repository.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	// в другом хабе имя свободно
	if err := repo.PriceLevels.Create(ctx, &models.PriceLevel{HubID: uuid.New(), Name: "Standard"}); err != nil {
		t.Fatalf("Create in other hub: %v", err)
	}

	byName, err := repo.PriceLevels.GetByHubAndName(ctx, hubID, "STANDARD")
	if err != nil || byName == nil || byName.ID != standard.ID {
		t.Fatalf("GetByHubAndName: %v %v", byName, err)
	}

	def, err := repo.PriceLevels.GetDefault(ctx, hubID)
	if err != nil || def == nil || def.ID != standard.ID {
		t.Fatalf("GetDefault: %v %v", def, err)
	}
	if err := repo.PriceLevels.ClearDefault(ctx, hubID); err != nil {
		t.Fatalf("ClearDefault: %v", err)
	}
	def, err = repo.PriceLevels.GetDefault(ctx, hubID)
	if err != nil || def != nil {
		t.Fatalf("GetDefault after clear: %v %v", def, err)
	}

	// отсутствующая строка -> (nil, nil)
	missing, err := repo.PriceLevels.GetByID(ctx, uuid.New(), hubID)
	if err != nil || missing != nil {
		t.Fatalf("missing row: %v %v", missing, err)
	}
}

func TestProductRepo_SKU_Rates_And_List(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	hubID := uuid.New()

	level := &models.PriceLevel{HubID: hubID, Name: "Wholesale"}
	if err := repo.PriceLevels.Create(ctx, level); err != nil {
		t.Fatalf("Create level: %v", err)
	}

	sku := "WID-1"
	product := &models.Product{HubID: hubID, Name: "Widget", SKU: &sku, Currency: "USD"}
	if err := repo.Products.Create(ctx, product); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// SKU уникален в хабе без учёта регистра (частичный индекс)
	skuLower := "wid-1"
	err := repo.Products.Create(ctx, &models.Product{HubID: hubID, Name: "Clone", SKU: &skuLower, Currency: "USD"})
	if err == nil || !repository.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	// товары без SKU под индекс не попадают
	for i := 0; i < 2; i++ {
		if err := repo.Products.Create(ctx, &models.Product{HubID: hubID, Name: "No SKU", Currency: "USD"}); err != nil {
			t.Fatalf("Create without sku: %v", err)
		}
	}

	bySKU, err := repo.Products.GetByHubAndSKU(ctx, hubID, "wid-1")
	if err != nil || bySKU == nil || bySKU.ID != product.ID {
		t.Fatalf("GetByHubAndSKU: %v %v", bySKU, err)
	}

	if err := repo.Products.ReplacePriceRates(ctx, product.ID, []models.ProductPriceLevel{
		{PriceLevelID: level.ID, PriceCents: 500},
	}); err != nil {
		t.Fatalf("ReplacePriceRates: %v", err)
	}
	rate, err := repo.Products.GetPriceForLevel(ctx, product.ID, level.ID)
	if err != nil || rate == nil || rate.PriceCents != 500 {
		t.Fatalf("GetPriceForLevel: %v %v", rate, err)
	}
	// замена набора перезаписывает цену
	if err := repo.Products.ReplacePriceRates(ctx, product.ID, []models.ProductPriceLevel{
		{PriceLevelID: level.ID, PriceCents: 600},
	}); err != nil {
		t.Fatalf("ReplacePriceRates#2: %v", err)
	}
	rate, _ = repo.Products.GetPriceForLevel(ctx, product.ID, level.ID)
	if rate == nil || rate.PriceCents != 600 {
		t.Fatalf("rate after replace: %+v", rate)
	}

	list, total, err := repo.Products.List(ctx, repository.ProductListFilter{HubID: hubID, Query: "wid"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != product.ID {
		t.Fatalf("search mismatch: total=%d len=%d", total, len(list))
	}

	list, total, err = repo.Products.List(ctx, repository.ProductListFilter{HubID: hubID, Limit: 2})
	if err != nil || total != 3 || len(list) != 2 {
		t.Fatalf("pagination: total=%d len=%d err=%v", total, len(list), err)
	}
}

func TestOrderRepo_Items_Totals_And_Cascade(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	hubID := uuid.New()

	order := &models.Order{HubID: hubID, Currency: "USD"}
	if err := repo.Orders.Create(ctx, order); err != nil {
		t.Fatalf("Create: %v", err)
	}
	created, err := repo.Orders.GetByID(ctx, order.ID, hubID)
	if err != nil || created == nil {
		t.Fatalf("GetByID: %v %v", created, err)
	}
	if created.Status != models.OrderStatusDraft {
		t.Fatalf("default status expected DRAFT got %s", created.Status)
	}

	items := []models.OrderProduct{
		{OrderID: order.ID, Name: "Widget", PriceCents: 500, Currency: "USD", Quantity: 2, LineTotalCents: 1000},
		{OrderID: order.ID, Name: "Gadget", PriceCents: 700, Currency: "USD", Quantity: 1, LineTotalCents: 700},
	}
	if err := repo.OrderItems.BulkCreate(ctx, items); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	total, err := repo.OrderItems.SumByOrder(ctx, order.ID)
	if err != nil || total != 1700 {
		t.Fatalf("SumByOrder: total=%d err=%v", total, err)
	}
	if err := repo.Orders.UpdateTotals(ctx, order.ID, total); err != nil {
		t.Fatalf("UpdateTotals: %v", err)
	}

	got, err := repo.Orders.GetByID(ctx, order.ID, hubID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v %v", got, err)
	}
	if got.TotalCents != 1700 || len(got.Products) != 2 {
		t.Fatalf("order mismatch: total=%d items=%d", got.TotalCents, len(got.Products))
	}

	// чужой хаб не видит заказ
	other, err := repo.Orders.GetByID(ctx, order.ID, uuid.New())
	if err != nil || other != nil {
		t.Fatalf("cross-hub read: %v %v", other, err)
	}

	// удаление заказа каскадно убирает строки
	deleted, err := repo.Orders.Delete(ctx, order.ID, hubID)
	if err != nil || !deleted {
		t.Fatalf("Delete: %v %v", deleted, err)
	}
	left, err := repo.OrderItems.GetByOrderID(ctx, order.ID)
	if err != nil || len(left) != 0 {
		t.Fatalf("items after cascade: len=%d err=%v", len(left), err)
	}
}

func TestDiscountRepo_Decide_Semantics(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	hubID := uuid.New()

	customer := &models.Customer{HubID: hubID, Name: "Acme", Email: "acme@example.com"}
	if err := repo.Customers.Create(ctx, customer); err != nil {
		t.Fatalf("Create customer: %v", err)
	}
	level := &models.PriceLevel{HubID: hubID, Name: "Wholesale"}
	if err := repo.PriceLevels.Create(ctx, level); err != nil {
		t.Fatalf("Create level: %v", err)
	}

	assignment := &models.DiscountAssignment{HubID: hubID, CustomerID: customer.ID, PriceLevelID: level.ID}
	if err := repo.Discounts.Create(ctx, assignment); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// пара (customer, level) уникальна
	err := repo.Discounts.Create(ctx, &models.DiscountAssignment{HubID: hubID, CustomerID: customer.ID, PriceLevelID: level.ID})
	if err == nil || !repository.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	decidedBy := uuid.New()
	n, err := repo.Discounts.Decide(ctx, assignment.ID, hubID, models.AssignmentApproved, decidedBy, time.Now())
	if err != nil || n != 1 {
		t.Fatalf("Decide: n=%d err=%v", n, err)
	}
	// повторное решение не проходит
	n, err = repo.Discounts.Decide(ctx, assignment.ID, hubID, models.AssignmentRejected, decidedBy, time.Now())
	if err != nil || n != 0 {
		t.Fatalf("second Decide: n=%d err=%v", n, err)
	}

	ok, err := repo.Discounts.HasApproved(ctx, customer.ID, level.ID)
	if err != nil || !ok {
		t.Fatalf("HasApproved: ok=%v err=%v", ok, err)
	}
	ids, err := repo.Discounts.ApprovedLevelIDs(ctx, customer.ID)
	if err != nil || len(ids) != 1 || ids[0] != level.ID {
		t.Fatalf("ApprovedLevelIDs: %v %v", ids, err)
	}
}

func TestRepository_WithTx_RollsBack(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	hubID := uuid.New()

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Orders.Create(ctx, &models.Order{HubID: hubID, Currency: "USD"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx expected boom, got %v", err)
	}

	_, total, err := repo.Orders.List(ctx, repository.OrderListFilter{HubID: hubID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 {
		t.Fatalf("rollback expected, found %d orders", total)
	}
}

func TestCustomerRepo_Email_And_BulkAssign(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	hubID := uuid.New()

	level := &models.PriceLevel{HubID: hubID, Name: "Wholesale"}
	if err := repo.PriceLevels.Create(ctx, level); err != nil {
		t.Fatalf("Create level: %v", err)
	}
	a := &models.Customer{HubID: hubID, Name: "Acme", Email: "acme@example.com"}
	b := &models.Customer{HubID: hubID, Name: "Globex", Email: "globex@example.com"}
	for _, c := range []*models.Customer{a, b} {
		if err := repo.Customers.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	err := repo.Customers.Create(ctx, &models.Customer{HubID: hubID, Name: "Dup", Email: "ACME@example.com"})
	if err == nil || !repository.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	if err := repo.Customers.AssignPriceLevel(ctx, hubID, []uuid.UUID{a.ID, b.ID}, &level.ID); err != nil {
		t.Fatalf("AssignPriceLevel: %v", err)
	}
	got, _ := repo.Customers.GetByID(ctx, a.ID, hubID)
	if got.PriceLevelID == nil || *got.PriceLevelID != level.ID {
		t.Fatalf("level not assigned: %+v", got.PriceLevelID)
	}

	// удаление уровня обнуляет ссылку (FK SET NULL)
	if _, err := repo.PriceLevels.Delete(ctx, level.ID, hubID); err != nil {
		t.Fatalf("Delete level: %v", err)
	}
	got, _ = repo.Customers.GetByID(ctx, a.ID, hubID)
	if got.PriceLevelID != nil {
		t.Fatalf("level expected nulled after FK, got %v", got.PriceLevelID)
	}
}
