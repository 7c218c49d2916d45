package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pushkindt/pushkind-orders/internal/metrics"
	"github.com/pushkindt/pushkind-orders/internal/service"
)

type orderHandler struct {
	svc service.OrderService
}

type orderLineRequest struct {
	ProductID    *uuid.UUID `json:"product_id"`
	Quantity     int32      `json:"quantity"`
	PriceLevelID *uuid.UUID `json:"price_level_id"`

	Name        string  `json:"name"`
	SKU         *string `json:"sku"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
}

func (r orderLineRequest) toInput() service.OrderLineInput {
	return service.OrderLineInput{
		ProductID:    r.ProductID,
		Quantity:     r.Quantity,
		PriceLevelID: r.PriceLevelID,
		Name:         r.Name,
		SKU:          r.SKU,
		Description:  r.Description,
		PriceCents:   r.PriceCents,
	}
}

type createOrderRequest struct {
	CustomerID *uuid.UUID         `json:"customer_id"`
	Reference  *string            `json:"reference"`
	Notes      *string            `json:"notes"`
	Currency   string             `json:"currency"`
	Items      []orderLineRequest `json:"items"`
}

func (h *orderHandler) create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in := service.CreateOrderInput{
		CustomerID: req.CustomerID,
		Reference:  req.Reference,
		Notes:      req.Notes,
		Currency:   req.Currency,
	}
	for _, line := range req.Items {
		in.Items = append(in.Items, line.toInput())
	}
	order, err := h.svc.CreateOrder(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	metrics.OrdersCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, fromOrder(*order))
}

func (h *orderHandler) get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromOrder(*order))
}

func (h *orderHandler) list(c echo.Context) error {
	limit, offset := parsePaging(c)
	customerID, err := queryUUID(c, "customer_id")
	if err != nil {
		return err
	}
	q := service.OrderListQuery{
		CustomerID: customerID,
		Query:      c.QueryParam("q"),
		Limit:      limit,
		Offset:     offset,
	}
	if s := c.QueryParam("status"); s != "" {
		q.Status = &s
	}
	rows, total, err := h.svc.ListOrders(c.Request().Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]orderResponse, 0, len(rows))
	for _, o := range rows {
		items = append(items, fromOrder(o))
	}
	return c.JSON(http.StatusOK, listEnvelope[orderResponse]{Items: items, Total: total})
}

type updateOrderRequest struct {
	Status *string `json:"status"`

	Reference      *string `json:"reference"`
	ClearReference bool    `json:"clear_reference"`

	Notes      *string `json:"notes"`
	ClearNotes bool    `json:"clear_notes"`

	CustomerID    *uuid.UUID `json:"customer_id"`
	ClearCustomer bool       `json:"clear_customer"`
}

func (h *orderHandler) update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	order, err := h.svc.UpdateOrder(c.Request().Context(), id, service.UpdateOrderInput{
		Status:         req.Status,
		Reference:      req.Reference,
		ClearReference: req.ClearReference,
		Notes:          req.Notes,
		ClearNotes:     req.ClearNotes,
		CustomerID:     req.CustomerID,
		ClearCustomer:  req.ClearCustomer,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromOrder(*order))
}

func (h *orderHandler) delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteOrder(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *orderHandler) addItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req orderLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	order, err := h.svc.AddOrderItem(c.Request().Context(), id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromOrder(*order))
}

func (h *orderHandler) removeItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseIDParam(c, "itemID")
	if err != nil {
		return err
	}
	order, err := h.svc.RemoveOrderItem(c.Request().Context(), id, itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromOrder(*order))
}

func (h *orderHandler) replaceItems(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Items []orderLineRequest `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	lines := make([]service.OrderLineInput, 0, len(req.Items))
	for _, line := range req.Items {
		lines = append(lines, line.toInput())
	}
	order, err := h.svc.ReplaceOrderItems(c.Request().Context(), id, lines)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromOrder(*order))
}
