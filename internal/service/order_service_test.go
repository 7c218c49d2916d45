package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/pushkindt/pushkind-orders/config"
	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/service"
)

// wholesaleFixture: customer on an approved Wholesale level, one product
// priced 500 cents for that level.
func wholesaleFixture(t *testing.T, e *env) (*models.Product, *models.Customer) {
	t.Helper()
	wholesale := e.seedLevel(t, "Wholesale", false)
	product := e.seedProduct(t, "Widget WID-1", "USD", map[uuid.UUID]int64{wholesale.ID: 500})
	customer := e.seedCustomer(t, "Acme", "acme@example.com", &wholesale.ID)
	e.seedAssignment(t, customer.ID, wholesale.ID, models.AssignmentApproved)
	return product, customer
}

func TestOrderService_CreateWithResolvedLine(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	product, customer := wholesaleFixture(t, e)
	ctx := e.operatorCtx()

	order, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{
		CustomerID: &customer.ID,
		Currency:   "USD",
		Items: []service.OrderLineInput{
			{ProductID: &product.ID, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Status != models.OrderStatusDraft {
		t.Fatalf("new order expected DRAFT got %s", order.Status)
	}
	if len(order.Products) != 1 {
		t.Fatalf("items expected 1 got %d", len(order.Products))
	}
	line := order.Products[0]
	if line.PriceCents != 500 || line.Quantity != 3 || line.LineTotalCents != 1500 {
		t.Fatalf("line mismatch: %+v", line)
	}
	if line.Name != product.Name {
		t.Fatalf("frozen name expected %q got %q", product.Name, line.Name)
	}
	if order.TotalCents != 1500 {
		t.Fatalf("total expected 1500 got %d", order.TotalCents)
	}
}

func TestOrderService_SnapshotSurvivesPriceChange(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	product, customer := wholesaleFixture(t, e)
	ctx := e.operatorCtx()

	order, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{
		CustomerID: &customer.ID,
		Currency:   "USD",
		Items:      []service.OrderLineInput{{ProductID: &product.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// поднимаем цену уровня после записи строки
	level := *customer.PriceLevelID
	if err := e.repo.Products.ReplacePriceRates(context.Background(), product.ID, []models.ProductPriceLevel{
		{PriceLevelID: level, PriceCents: 600},
	}); err != nil {
		t.Fatalf("ReplacePriceRates: %v", err)
	}
	if _, err := e.repo.Products.UpdateFields(context.Background(), product.ID, e.hubID, map[string]any{
		"name": "Widget WID-1 v2",
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err := e.orders.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Products[0].PriceCents != 500 || got.Products[0].Name != "Widget WID-1" {
		t.Fatalf("snapshot changed: %+v", got.Products[0])
	}
	if got.TotalCents != 1500 {
		t.Fatalf("total expected 1500 got %d", got.TotalCents)
	}

	// новая строка берёт уже новую цену
	got, err = e.orders.AddOrderItem(ctx, order.ID, service.OrderLineInput{ProductID: &product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("AddOrderItem: %v", err)
	}
	if len(got.Products) != 2 {
		t.Fatalf("items expected 2 got %d", len(got.Products))
	}
	if got.Products[1].PriceCents != 600 {
		t.Fatalf("new line expected 600 got %d", got.Products[1].PriceCents)
	}
	if got.TotalCents != 2100 {
		t.Fatalf("total expected 2100 got %d", got.TotalCents)
	}
}

func TestOrderService_TotalsFollowLineMutations(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	product, customer := wholesaleFixture(t, e)
	ctx := e.operatorCtx()

	order, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{
		CustomerID: &customer.ID,
		Currency:   "USD",
		Items: []service.OrderLineInput{
			{ProductID: &product.ID, Quantity: 2},
			{Name: "Delivery", Quantity: 1, PriceCents: ptrInt64(300)},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.TotalCents != 1300 {
		t.Fatalf("total expected 1300 got %d", order.TotalCents)
	}

	// строки одной вставки упорядочены по id, а не по порядку ввода
	var productLine *models.OrderProduct
	for i := range order.Products {
		if order.Products[i].ProductID != nil && *order.Products[i].ProductID == product.ID {
			productLine = &order.Products[i]
		}
	}
	if productLine == nil {
		t.Fatalf("product line not found: %+v", order.Products)
	}

	order, err = e.orders.RemoveOrderItem(ctx, order.ID, productLine.ID)
	if err != nil {
		t.Fatalf("RemoveOrderItem: %v", err)
	}
	if order.TotalCents != 300 || len(order.Products) != 1 {
		t.Fatalf("after remove: total=%d items=%d", order.TotalCents, len(order.Products))
	}
	if order.Products[0].Name != "Delivery" {
		t.Fatalf("expected the ad-hoc line to remain, got %q", order.Products[0].Name)
	}

	order, err = e.orders.ReplaceOrderItems(ctx, order.ID, []service.OrderLineInput{
		{ProductID: &product.ID, Quantity: 4},
	})
	if err != nil {
		t.Fatalf("ReplaceOrderItems: %v", err)
	}
	if order.TotalCents != 2000 || len(order.Products) != 1 {
		t.Fatalf("after replace: total=%d items=%d", order.TotalCents, len(order.Products))
	}

	var sum int64
	for _, item := range order.Products {
		sum += item.LineTotalCents
	}
	if sum != order.TotalCents {
		t.Fatalf("invariant broken: sum=%d total=%d", sum, order.TotalCents)
	}
}

func ptrInt64(v int64) *int64 { return &v }

func ptrString(v string) *string { return &v }

func TestOrderService_InvalidQuantity(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	product, customer := wholesaleFixture(t, e)
	ctx := e.operatorCtx()

	for _, qty := range []int32{0, -1} {
		_, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{
			CustomerID: &customer.ID,
			Currency:   "USD",
			Items:      []service.OrderLineInput{{ProductID: &product.ID, Quantity: qty}},
		})
		if !errors.Is(err, service.ErrInvalidQuantity) {
			t.Fatalf("qty=%d: expected ErrInvalidQuantity got %v", qty, err)
		}
	}
	// неудачная строка не оставляет заказа
	_, total, err := e.orders.ListOrders(ctx, service.OrderListQuery{})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if total != 0 {
		t.Fatalf("rollback expected, found %d orders", total)
	}
}

func TestOrderService_AdHocLineValidation(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	ctx := e.operatorCtx()

	_, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{
		Currency: "USD",
		Items:    []service.OrderLineInput{{Quantity: 1, PriceCents: ptrInt64(100)}},
	})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("no name: expected ErrValidation got %v", err)
	}

	_, err = e.orders.CreateOrder(ctx, service.CreateOrderInput{
		Currency: "USD",
		Items:    []service.OrderLineInput{{Name: "Delivery", Quantity: 1}},
	})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("no price: expected ErrValidation got %v", err)
	}
}

func TestOrderService_CurrencyMismatch(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	product, customer := wholesaleFixture(t, e)
	ctx := e.operatorCtx()

	_, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{
		CustomerID: &customer.ID,
		Currency:   "EUR",
		Items:      []service.OrderLineInput{{ProductID: &product.ID, Quantity: 1}},
	})
	if !errors.Is(err, service.ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch got %v", err)
	}
}

func TestOrderService_StatusLifecycle(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	ctx := e.operatorCtx()

	order, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{Currency: "USD"})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// DRAFT -> PROCESSING запрещён
	if _, err := e.orders.UpdateOrder(ctx, order.ID, service.UpdateOrderInput{Status: ptrString("PROCESSING")}); !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("skip expected ErrInvalidTransition got %v", err)
	}

	// регистр не важен
	for _, next := range []string{"pending", "Processing", "COMPLETED"} {
		if _, err := e.orders.UpdateOrder(ctx, order.ID, service.UpdateOrderInput{Status: &next}); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	// терминальный статус неизменяем
	if _, err := e.orders.UpdateOrder(ctx, order.ID, service.UpdateOrderInput{Status: ptrString("CANCELLED")}); !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("terminal expected ErrInvalidTransition got %v", err)
	}

	// и строки больше не редактируются
	if _, err := e.orders.AddOrderItem(ctx, order.ID, service.OrderLineInput{Name: "Late", Quantity: 1, PriceCents: ptrInt64(10)}); !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("edit of terminal order expected ErrInvalidTransition got %v", err)
	}

	if _, err := e.orders.UpdateOrder(ctx, order.ID, service.UpdateOrderInput{Status: ptrString("garbage")}); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("unknown status expected ErrValidation got %v", err)
	}
}

func TestOrderService_CancelFromAnyNonTerminal(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	ctx := e.operatorCtx()

	for _, prep := range [][]string{{}, {"PENDING"}, {"PENDING", "PROCESSING"}} {
		order, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{Currency: "USD"})
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		for _, next := range prep {
			next := next
			if _, err := e.orders.UpdateOrder(ctx, order.ID, service.UpdateOrderInput{Status: &next}); err != nil {
				t.Fatalf("prep %s: %v", next, err)
			}
		}
		got, err := e.orders.UpdateOrder(ctx, order.ID, service.UpdateOrderInput{Status: ptrString("CANCELLED")})
		if err != nil {
			t.Fatalf("cancel after %v: %v", prep, err)
		}
		if got.Status != models.OrderStatusCancelled {
			t.Fatalf("expected CANCELLED got %s", got.Status)
		}
	}
}

func TestOrderService_ReferenceConflict(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	ctx := e.operatorCtx()

	if _, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{Currency: "USD", Reference: ptrString("PO-1")}); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if _, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{Currency: "USD", Reference: ptrString("PO-1")}); !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected ErrConflict got %v", err)
	}
}

func TestOrderService_ReplaceItemsRejectsEmpty(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	ctx := e.operatorCtx()

	order, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{Currency: "USD"})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if _, err := e.orders.ReplaceOrderItems(ctx, order.ID, nil); !errors.Is(err, service.ErrEmptyItems) {
		t.Fatalf("expected ErrEmptyItems got %v", err)
	}
}

func TestOrderService_HubIsolation(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	ctx := e.operatorCtx()

	order, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{Currency: "USD"})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	otherHub := service.WithRoles(
		service.WithUserID(service.WithHubID(context.Background(), uuid.New()), uuid.New()),
		[]service.Role{service.RoleOperator},
	)
	if _, err := e.orders.GetOrder(otherHub, order.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("cross-hub read expected ErrNotFound got %v", err)
	}
	if err := e.orders.DeleteOrder(otherHub, order.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("cross-hub delete expected ErrNotFound got %v", err)
	}
}

func TestOrderService_ListFiltersAndPagination(t *testing.T) {
	e := newEnv(t, config.Pricing{})
	ctx := e.operatorCtx()

	for i := 0; i < 5; i++ {
		if _, err := e.orders.CreateOrder(ctx, service.CreateOrderInput{Currency: "USD"}); err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
	}

	rows, total, err := e.orders.ListOrders(ctx, service.OrderListQuery{Limit: 2})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if total != 5 || len(rows) != 2 {
		t.Fatalf("page1: total=%d len=%d", total, len(rows))
	}

	// страницы не пересекаются и исчерпывают набор
	seen := map[uuid.UUID]bool{}
	for offset := 0; offset < 5; offset += 2 {
		page, _, err := e.orders.ListOrders(ctx, service.OrderListQuery{Limit: 2, Offset: offset})
		if err != nil {
			t.Fatalf("ListOrders offset=%d: %v", offset, err)
		}
		for _, o := range page {
			if seen[o.ID] {
				t.Fatalf("duplicate order %s across pages", o.ID)
			}
			seen[o.ID] = true
		}
	}
	if len(seen) != 5 {
		t.Fatalf("pages expected to cover 5 orders, covered %d", len(seen))
	}

	status := "DRAFT"
	_, total, err = e.orders.ListOrders(ctx, service.OrderListQuery{Status: &status})
	if err != nil || total != 5 {
		t.Fatalf("status filter: total=%d err=%v", total, err)
	}
	status = "COMPLETED"
	_, total, err = e.orders.ListOrders(ctx, service.OrderListQuery{Status: &status})
	if err != nil || total != 0 {
		t.Fatalf("status filter: total=%d err=%v", total, err)
	}
}
