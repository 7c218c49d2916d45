package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"
)

// OrderLineInput describes one line to snapshot. Two shapes are accepted:
//
//   - catalog line: ProductID set; the price comes from the resolver unless
//     PriceCents overrides it manually;
//   - ad-hoc line: ProductID nil; Name and PriceCents are then required.
type OrderLineInput struct {
	ProductID    *uuid.UUID
	Quantity     int32
	PriceLevelID *uuid.UUID // форсирует уровень цен для этой строки

	Name        string
	SKU         *string
	Description *string
	PriceCents  *int64
}

type CreateOrderInput struct {
	CustomerID *uuid.UUID
	Reference  *string
	Notes      *string
	Currency   string
	Items      []OrderLineInput
}

// UpdateOrderInput is a patch: nil pointer means "leave as is", the Clear
// flags null the column out.
type UpdateOrderInput struct {
	Status *string

	Reference      *string
	ClearReference bool

	Notes      *string
	ClearNotes bool

	CustomerID    *uuid.UUID
	ClearCustomer bool
}

type OrderListQuery struct {
	Status     *string
	CustomerID *uuid.UUID
	Query      string
	Limit      int
	Offset     int
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, q OrderListQuery) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, in UpdateOrderInput) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	AddOrderItem(ctx context.Context, orderID uuid.UUID, line OrderLineInput) (*models.Order, error)
	RemoveOrderItem(ctx context.Context, orderID, itemID uuid.UUID) (*models.Order, error)
	ReplaceOrderItems(ctx context.Context, orderID uuid.UUID, lines []OrderLineInput) (*models.Order, error)
}

type orderService struct {
	repo    *repository.Repository
	pricing PriceResolver
	bus     EventBus
	log     *zap.Logger
	now     func() time.Time
}

func NewOrderService(repo *repository.Repository, pricing PriceResolver, bus EventBus, log *zap.Logger) OrderService {
	return &orderService{repo: repo, pricing: pricing, bus: bus, log: log, now: time.Now}
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if len(currency) != 3 {
		return nil, validationf("currency must be a 3-letter code")
	}
	if in.CustomerID != nil {
		customer, err := s.repo.Customers.GetByID(ctx, *in.CustomerID, hubID)
		if err != nil {
			return nil, storage(err)
		}
		if customer == nil {
			return nil, ErrNotFound
		}
	}
	if in.Reference != nil {
		if strings.TrimSpace(*in.Reference) == "" {
			return nil, validationf("reference must not be blank")
		}
		existing, err := s.repo.Orders.GetByHubAndReference(ctx, hubID, *in.Reference)
		if err != nil {
			return nil, storage(err)
		}
		if existing != nil {
			return nil, ErrConflict
		}
	}

	order := &models.Order{
		HubID:      hubID,
		CustomerID: in.CustomerID,
		Reference:  in.Reference,
		Notes:      in.Notes,
		Status:     models.OrderStatusDraft,
		Currency:   currency,
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Orders.Create(ctx, order); err != nil {
			return storage(err)
		}
		if len(in.Items) == 0 {
			return nil
		}
		items := make([]models.OrderProduct, 0, len(in.Items))
		for _, line := range in.Items {
			item, err := s.buildLine(ctx, tx, order, line)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		if err := tx.OrderItems.BulkCreate(ctx, items); err != nil {
			return storage(err)
		}
		return s.recomputeTotals(ctx, tx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Orders.GetByID(ctx, order.ID, hubID)
	if err != nil {
		return nil, storage(err)
	}
	s.log.Info("заказ создан",
		zap.String("order_id", order.ID.String()),
		zap.String("hub_id", hubID.String()),
		zap.Int("items", len(in.Items)),
	)
	publishOrder(ctx, s.bus, OrderEvent{
		Type:       EventOrderCreated,
		HubID:      hubID,
		OrderID:    created.ID,
		CustomerID: created.CustomerID,
		Status:     created.Status,
		TotalCents: created.TotalCents,
		Currency:   created.Currency,
		OccurredAt: s.now().UTC(),
	})
	return created, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.Orders.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, q OrderListQuery) ([]models.Order, int64, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, 0, err
	}
	filter := repository.OrderListFilter{
		HubID:      hubID,
		CustomerID: q.CustomerID,
		Query:      q.Query,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if q.Status != nil {
		status, ok := models.ParseOrderStatus(*q.Status)
		if !ok {
			return nil, 0, validationf("unknown order status %q", *q.Status)
		}
		filter.Status = &status
	}
	rows, total, err := s.repo.Orders.List(ctx, filter)
	if err != nil {
		return nil, 0, storage(err)
	}
	return rows, total, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, id uuid.UUID, in UpdateOrderInput) (*models.Order, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.Orders.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if order == nil {
		return nil, ErrNotFound
	}

	fields := map[string]any{}
	prevStatus := order.Status
	statusChanged := false

	if in.Status != nil {
		next, ok := models.ParseOrderStatus(*in.Status)
		if !ok {
			return nil, validationf("unknown order status %q", *in.Status)
		}
		if !order.Status.CanTransitionTo(next) {
			return nil, ErrInvalidTransition
		}
		if next != order.Status {
			fields["status"] = next
			statusChanged = true
		}
	}
	switch {
	case in.ClearReference:
		fields["reference"] = nil
	case in.Reference != nil:
		if strings.TrimSpace(*in.Reference) == "" {
			return nil, validationf("reference must not be blank")
		}
		existing, err := s.repo.Orders.GetByHubAndReference(ctx, hubID, *in.Reference)
		if err != nil {
			return nil, storage(err)
		}
		if existing != nil && existing.ID != order.ID {
			return nil, ErrConflict
		}
		fields["reference"] = *in.Reference
	}
	switch {
	case in.ClearNotes:
		fields["notes"] = nil
	case in.Notes != nil:
		fields["notes"] = *in.Notes
	}
	switch {
	case in.ClearCustomer:
		fields["customer_id"] = nil
	case in.CustomerID != nil:
		customer, err := s.repo.Customers.GetByID(ctx, *in.CustomerID, hubID)
		if err != nil {
			return nil, storage(err)
		}
		if customer == nil {
			return nil, ErrNotFound
		}
		fields["customer_id"] = *in.CustomerID
	}

	if len(fields) > 0 {
		if _, err := s.repo.Orders.UpdateFields(ctx, id, hubID, fields); err != nil {
			return nil, storage(err)
		}
	}
	updated, err := s.repo.Orders.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if statusChanged {
		s.log.Info("статус заказа изменён",
			zap.String("order_id", id.String()),
			zap.String("from", string(prevStatus)),
			zap.String("to", string(updated.Status)),
		)
		publishOrder(ctx, s.bus, OrderEvent{
			Type:       EventOrderStatusChanged,
			HubID:      hubID,
			OrderID:    updated.ID,
			CustomerID: updated.CustomerID,
			Status:     updated.Status,
			PrevStatus: prevStatus,
			TotalCents: updated.TotalCents,
			Currency:   updated.Currency,
			OccurredAt: s.now().UTC(),
		})
	}
	return updated, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Orders.Delete(ctx, id, hubID)
	if err != nil {
		return storage(err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *orderService) AddOrderItem(ctx context.Context, orderID uuid.UUID, line OrderLineInput) (*models.Order, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		order, err := s.editableOrder(ctx, tx, orderID, hubID)
		if err != nil {
			return err
		}
		item, err := s.buildLine(ctx, tx, order, line)
		if err != nil {
			return err
		}
		if err := tx.OrderItems.BulkCreate(ctx, []models.OrderProduct{item}); err != nil {
			return storage(err)
		}
		return s.recomputeTotals(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) RemoveOrderItem(ctx context.Context, orderID, itemID uuid.UUID) (*models.Order, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if _, err := s.editableOrder(ctx, tx, orderID, hubID); err != nil {
			return err
		}
		deleted, err := tx.OrderItems.DeleteByID(ctx, itemID, orderID)
		if err != nil {
			return storage(err)
		}
		if !deleted {
			return ErrNotFound
		}
		return s.recomputeTotals(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) ReplaceOrderItems(ctx context.Context, orderID uuid.UUID, lines []OrderLineInput) (*models.Order, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyItems
	}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		order, err := s.editableOrder(ctx, tx, orderID, hubID)
		if err != nil {
			return err
		}
		if _, err := tx.OrderItems.DeleteByOrderID(ctx, orderID); err != nil {
			return storage(err)
		}
		items := make([]models.OrderProduct, 0, len(lines))
		for _, line := range lines {
			item, err := s.buildLine(ctx, tx, order, line)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		if err := tx.OrderItems.BulkCreate(ctx, items); err != nil {
			return storage(err)
		}
		return s.recomputeTotals(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

// editableOrder loads the order and rejects line edits on terminal orders.
func (s *orderService) editableOrder(ctx context.Context, tx *repository.Repository, orderID, hubID uuid.UUID) (*models.Order, error) {
	order, err := tx.Orders.GetByID(ctx, orderID, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.Status.Terminal() {
		return nil, ErrInvalidTransition
	}
	return order, nil
}

// buildLine freezes one snapshot row. Catalog state is copied at this moment
// and never re-read: later product or price edits do not touch the line.
func (s *orderService) buildLine(ctx context.Context, tx *repository.Repository, order *models.Order, line OrderLineInput) (models.OrderProduct, error) {
	if line.Quantity <= 0 {
		return models.OrderProduct{}, ErrInvalidQuantity
	}

	item := models.OrderProduct{
		OrderID:  order.ID,
		Currency: order.Currency,
		Quantity: line.Quantity,
	}

	if line.ProductID == nil {
		if strings.TrimSpace(line.Name) == "" {
			return models.OrderProduct{}, validationf("ad-hoc line requires a name")
		}
		if line.PriceCents == nil {
			return models.OrderProduct{}, validationf("ad-hoc line requires a price")
		}
		if *line.PriceCents < 0 {
			return models.OrderProduct{}, validationf("price must not be negative")
		}
		item.Name = line.Name
		item.SKU = line.SKU
		item.Description = line.Description
		item.PriceCents = *line.PriceCents
	} else {
		product, err := tx.Products.GetByID(ctx, *line.ProductID, order.HubID)
		if err != nil {
			return models.OrderProduct{}, storage(err)
		}
		if product == nil {
			return models.OrderProduct{}, ErrNotFound
		}
		if product.Currency != order.Currency {
			return models.OrderProduct{}, ErrCurrencyMismatch
		}
		item.ProductID = &product.ID
		item.Name = product.Name
		item.SKU = product.SKU
		item.Description = product.Description

		switch {
		case line.PriceCents != nil:
			if *line.PriceCents < 0 {
				return models.OrderProduct{}, validationf("price must not be negative")
			}
			item.PriceCents = *line.PriceCents
		default:
			resolved, err := s.pricing.Resolve(ctx, ResolvePriceInput{
				ProductID:    product.ID,
				CustomerID:   order.CustomerID,
				PriceLevelID: line.PriceLevelID,
			})
			if err != nil {
				return models.OrderProduct{}, err
			}
			item.PriceCents = resolved.PriceCents
		}
	}

	item.LineTotalCents = item.PriceCents * int64(line.Quantity)
	return item, nil
}

// recomputeTotals re-derives the order total from its lines inside the same
// transaction as the mutation that invalidated it.
func (s *orderService) recomputeTotals(ctx context.Context, tx *repository.Repository, orderID uuid.UUID) error {
	total, err := tx.OrderItems.SumByOrder(ctx, orderID)
	if err != nil {
		return storage(err)
	}
	if err := tx.Orders.UpdateTotals(ctx, orderID, total); err != nil {
		return storage(err)
	}
	return nil
}
