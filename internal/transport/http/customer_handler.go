package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/service"
)

type customerHandler struct {
	customers service.CustomerService
	discounts service.DiscountService
}

type createCustomerRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

func (h *customerHandler) create(c echo.Context) error {
	var req createCustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	customer, err := h.customers.CreateCustomer(c.Request().Context(), service.CreateCustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, fromCustomer(*customer))
}

func (h *customerHandler) get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	customer, err := h.customers.GetCustomer(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromCustomer(*customer))
}

func (h *customerHandler) list(c echo.Context) error {
	limit, offset := parsePaging(c)
	priceLevelID, err := queryUUID(c, "price_level_id")
	if err != nil {
		return err
	}
	rows, total, err := h.customers.ListCustomers(c.Request().Context(), service.CustomerListQuery{
		Query:        c.QueryParam("q"),
		PriceLevelID: priceLevelID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]customerResponse, 0, len(rows))
	for _, customer := range rows {
		items = append(items, fromCustomer(customer))
	}
	return c.JSON(http.StatusOK, listEnvelope[customerResponse]{Items: items, Total: total})
}

type updateCustomerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`

	Phone      *string `json:"phone"`
	ClearPhone bool    `json:"clear_phone"`
}

func (h *customerHandler) update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req updateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	customer, err := h.customers.UpdateCustomer(c.Request().Context(), id, service.UpdateCustomerInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		ClearPhone: req.ClearPhone,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromCustomer(*customer))
}

func (h *customerHandler) delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.customers.DeleteCustomer(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type assignPriceLevelRequest struct {
	CustomerIDs  []uuid.UUID `json:"customer_ids"`
	PriceLevelID *uuid.UUID  `json:"price_level_id"`
}

func (h *customerHandler) assignPriceLevel(c echo.Context) error {
	var req assignPriceLevelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.customers.AssignPriceLevel(c.Request().Context(), req.CustomerIDs, req.PriceLevelID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *customerHandler) approvedLevels(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	levels, err := h.discounts.ApprovedLevelsForCustomer(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, listEnvelope[priceLevelResponse]{
		Items: fromPriceLevels(levels),
		Total: int64(len(levels)),
	})
}

type requestAssignmentRequest struct {
	CustomerID   uuid.UUID `json:"customer_id"`
	PriceLevelID uuid.UUID `json:"price_level_id"`
}

func (h *customerHandler) requestAssignment(c echo.Context) error {
	var req requestAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	assignment, err := h.discounts.RequestAssignment(c.Request().Context(), req.CustomerID, req.PriceLevelID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, fromAssignment(*assignment))
}

func (h *customerHandler) listAssignments(c echo.Context) error {
	limit, offset := parsePaging(c)
	customerID, err := queryUUID(c, "customer_id")
	if err != nil {
		return err
	}
	priceLevelID, err := queryUUID(c, "price_level_id")
	if err != nil {
		return err
	}
	q := service.AssignmentListQuery{
		CustomerID:   customerID,
		PriceLevelID: priceLevelID,
		Limit:        limit,
		Offset:       offset,
	}
	if s := c.QueryParam("status"); s != "" {
		status := models.AssignmentStatus(s)
		q.Status = &status
	}
	rows, total, err := h.discounts.ListAssignments(c.Request().Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]assignmentResponse, 0, len(rows))
	for _, a := range rows {
		items = append(items, fromAssignment(a))
	}
	return c.JSON(http.StatusOK, listEnvelope[assignmentResponse]{Items: items, Total: total})
}

func (h *customerHandler) approveAssignment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	assignment, err := h.discounts.ApproveAssignment(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromAssignment(*assignment))
}

func (h *customerHandler) rejectAssignment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	assignment, err := h.discounts.RejectAssignment(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromAssignment(*assignment))
}
