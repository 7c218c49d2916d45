package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pushkindt/pushkind-orders/internal/metrics"
	"github.com/pushkindt/pushkind-orders/internal/service"
)

type productHandler struct {
	svc     service.ProductService
	levels  service.PriceLevelService
	pricing service.PriceResolver
}

type priceRateRequest struct {
	PriceLevelID uuid.UUID `json:"price_level_id"`
	PriceCents   int64     `json:"price_cents"`
}

type createProductRequest struct {
	Name        string     `json:"name"`
	SKU         *string    `json:"sku"`
	Description *string    `json:"description"`
	Units       *string    `json:"units"`
	Currency    string     `json:"currency"`
	CategoryID  *uuid.UUID `json:"category_id"`

	PriceRates []priceRateRequest `json:"price_rates"`
	TagIDs     []uuid.UUID        `json:"tag_ids"`
}

func (r createProductRequest) toInput() service.CreateProductInput {
	in := service.CreateProductInput{
		Name:        r.Name,
		SKU:         r.SKU,
		Description: r.Description,
		Units:       r.Units,
		Currency:    r.Currency,
		CategoryID:  r.CategoryID,
		TagIDs:      r.TagIDs,
	}
	for _, rate := range r.PriceRates {
		in.PriceRates = append(in.PriceRates, service.PriceRateInput{
			PriceLevelID: rate.PriceLevelID,
			PriceCents:   rate.PriceCents,
		})
	}
	return in
}

func (h *productHandler) create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	product, err := h.svc.CreateProduct(c.Request().Context(), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, fromProduct(*product))
}

func (h *productHandler) get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	product, err := h.svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromProduct(*product))
}

func (h *productHandler) list(c echo.Context) error {
	limit, offset := parsePaging(c)
	categoryID, err := queryUUID(c, "category_id")
	if err != nil {
		return err
	}
	tagID, err := queryUUID(c, "tag_id")
	if err != nil {
		return err
	}
	rows, total, err := h.svc.ListProducts(c.Request().Context(), service.ProductListQuery{
		Query:           c.QueryParam("q"),
		CategoryID:      categoryID,
		TagID:           tagID,
		IncludeArchived: c.QueryParam("include_archived") == "true",
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]productResponse, 0, len(rows))
	for _, p := range rows {
		items = append(items, fromProduct(p))
	}
	return c.JSON(http.StatusOK, listEnvelope[productResponse]{Items: items, Total: total})
}

type updateProductRequest struct {
	Name *string `json:"name"`

	SKU      *string `json:"sku"`
	ClearSKU bool    `json:"clear_sku"`

	Description      *string `json:"description"`
	ClearDescription bool    `json:"clear_description"`

	Units      *string `json:"units"`
	ClearUnits bool    `json:"clear_units"`

	Currency *string `json:"currency"`

	CategoryID    *uuid.UUID `json:"category_id"`
	ClearCategory bool       `json:"clear_category"`
}

func (h *productHandler) update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	product, err := h.svc.UpdateProduct(c.Request().Context(), id, service.UpdateProductInput{
		Name:             req.Name,
		SKU:              req.SKU,
		ClearSKU:         req.ClearSKU,
		Description:      req.Description,
		ClearDescription: req.ClearDescription,
		Units:            req.Units,
		ClearUnits:       req.ClearUnits,
		Currency:         req.Currency,
		CategoryID:       req.CategoryID,
		ClearCategory:    req.ClearCategory,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromProduct(*product))
}

func (h *productHandler) delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteProduct(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *productHandler) archive(c echo.Context) error {
	return h.setArchived(c, true)
}

func (h *productHandler) restore(c echo.Context) error {
	return h.setArchived(c, false)
}

func (h *productHandler) setArchived(c echo.Context, archived bool) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.SetProductArchived(c.Request().Context(), id, archived); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *productHandler) replaceRates(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		PriceRates []priceRateRequest `json:"price_rates"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	rates := make([]service.PriceRateInput, 0, len(req.PriceRates))
	for _, rate := range req.PriceRates {
		rates = append(rates, service.PriceRateInput{
			PriceLevelID: rate.PriceLevelID,
			PriceCents:   rate.PriceCents,
		})
	}
	product, err := h.svc.ReplacePriceRates(c.Request().Context(), id, rates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromProduct(*product))
}

func (h *productHandler) replaceTags(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		TagIDs []uuid.UUID `json:"tag_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	product, err := h.svc.ReplaceTags(c.Request().Context(), id, req.TagIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromProduct(*product))
}

// resolvePrice exposes price resolution directly: ?customer_id=... or
// ?price_level_id=... selects the path.
func (h *productHandler) resolvePrice(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	customerID, err := queryUUID(c, "customer_id")
	if err != nil {
		return err
	}
	priceLevelID, err := queryUUID(c, "price_level_id")
	if err != nil {
		return err
	}
	resolved, err := h.pricing.Resolve(c.Request().Context(), service.ResolvePriceInput{
		ProductID:    id,
		CustomerID:   customerID,
		PriceLevelID: priceLevelID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPriceLevel):
			metrics.PriceResolutionFailures.WithLabelValues("no_price_level").Inc()
		case errors.Is(err, service.ErrPriceNotConfigured):
			metrics.PriceResolutionFailures.WithLabelValues("not_configured").Inc()
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"price_cents":    resolved.PriceCents,
		"currency":       resolved.Currency,
		"price_level_id": resolved.PriceLevelID,
	})
}

// importCSV loads products from a CSV file. Fixed columns: name, sku,
// description, units, currency. Any other column is treated as a price level
// name and its cells as prices in cents. The first bad row aborts the whole
// import.
func (h *productHandler) importCSV(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot open file"})
	}
	defer src.Close()

	ctx := c.Request().Context()

	levels, _, err := h.levels.ListPriceLevels(ctx, service.PriceLevelListQuery{Limit: 1000})
	if err != nil {
		return writeError(c, err)
	}
	levelByName := make(map[string]uuid.UUID, len(levels))
	for _, level := range levels {
		levelByName[strings.ToLower(level.Name)] = level.ID
	}

	reader := csv.NewReader(src)
	header, err := reader.Read()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read csv header"})
	}

	fixed := map[string]int{"name": -1, "sku": -1, "description": -1, "units": -1, "currency": -1}
	type levelColumn struct {
		index   int
		levelID uuid.UUID
	}
	var levelColumns []levelColumn
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		if _, ok := fixed[key]; ok {
			fixed[key] = i
			continue
		}
		levelID, ok := levelByName[key]
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": fmt.Sprintf("unknown column %q: not a field and not a price level", col),
			})
		}
		levelColumns = append(levelColumns, levelColumn{index: i, levelID: levelID})
	}
	if fixed["name"] < 0 || fixed["currency"] < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "csv must contain name and currency columns"})
	}

	cell := func(record []string, idx int) *string {
		if idx < 0 || strings.TrimSpace(record[idx]) == "" {
			return nil
		}
		v := strings.TrimSpace(record[idx])
		return &v
	}

	imported := 0
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("row %d: %v", row, err)})
		}

		in := service.CreateProductInput{
			Name:        strings.TrimSpace(record[fixed["name"]]),
			SKU:         cell(record, fixed["sku"]),
			Description: cell(record, fixed["description"]),
			Units:       cell(record, fixed["units"]),
			Currency:    strings.TrimSpace(record[fixed["currency"]]),
		}
		for _, col := range levelColumns {
			raw := strings.TrimSpace(record[col.index])
			if raw == "" {
				continue
			}
			cents, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error": fmt.Sprintf("row %d: bad price %q", row, raw),
				})
			}
			in.PriceRates = append(in.PriceRates, service.PriceRateInput{
				PriceLevelID: col.levelID,
				PriceCents:   cents,
			})
		}

		if _, err := h.svc.CreateProduct(ctx, in); err != nil {
			if errors.Is(err, service.ErrUnauthorized) || errors.Is(err, service.ErrForbidden) {
				return writeError(c, err)
			}
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": fmt.Sprintf("row %d: %v", row, err),
			})
		}
		imported++
	}

	return c.JSON(http.StatusOK, echo.Map{"imported": imported})
}
