package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pushkindt/pushkind-orders/internal/service"
	"github.com/pushkindt/pushkind-orders/pkg/jwtutil"
)

type Services struct {
	Orders      service.OrderService
	Products    service.ProductService
	Categories  service.CategoryService
	Tags        service.TagService
	PriceLevels service.PriceLevelService
	Customers   service.CustomerService
	Discounts   service.DiscountService
	Pricing     service.PriceResolver
}

// NewRouter wires middleware and the API routes. Everything under /api
// requires a valid hub-scoped token.
func NewRouter(svc Services, provider *jwtutil.Provider, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(MetricsMiddleware)
	e.Use(RequestLogger(log))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	api := e.Group("/api", AuthMiddleware(provider, log))

	oh := &orderHandler{svc: svc.Orders}
	api.POST("/orders", oh.create)
	api.GET("/orders", oh.list)
	api.GET("/orders/:id", oh.get)
	api.PATCH("/orders/:id", oh.update)
	api.DELETE("/orders/:id", oh.delete)
	api.POST("/orders/:id/items", oh.addItem)
	api.PUT("/orders/:id/items", oh.replaceItems)
	api.DELETE("/orders/:id/items/:itemID", oh.removeItem)

	ph := &productHandler{svc: svc.Products, levels: svc.PriceLevels, pricing: svc.Pricing}
	api.POST("/products", ph.create)
	api.GET("/products", ph.list)
	api.GET("/products/:id", ph.get)
	api.PATCH("/products/:id", ph.update)
	api.DELETE("/products/:id", ph.delete)
	api.POST("/products/:id/archive", ph.archive)
	api.POST("/products/:id/restore", ph.restore)
	api.PUT("/products/:id/prices", ph.replaceRates)
	api.PUT("/products/:id/tags", ph.replaceTags)
	api.GET("/products/:id/price", ph.resolvePrice)
	api.POST("/products/import", ph.importCSV)

	ch := &catalogHandler{categories: svc.Categories, tags: svc.Tags, levels: svc.PriceLevels}
	api.POST("/categories", ch.createCategory)
	api.GET("/categories", ch.listCategories)
	api.GET("/categories/:id", ch.getCategory)
	api.PATCH("/categories/:id", ch.updateCategory)
	api.DELETE("/categories/:id", ch.deleteCategory)
	api.POST("/tags", ch.createTag)
	api.GET("/tags", ch.listTags)
	api.PATCH("/tags/:id", ch.renameTag)
	api.DELETE("/tags/:id", ch.deleteTag)
	api.POST("/price-levels", ch.createPriceLevel)
	api.GET("/price-levels", ch.listPriceLevels)
	api.PATCH("/price-levels/:id", ch.renamePriceLevel)
	api.POST("/price-levels/:id/default", ch.setDefaultPriceLevel)
	api.DELETE("/price-levels/:id", ch.deletePriceLevel)

	cuh := &customerHandler{customers: svc.Customers, discounts: svc.Discounts}
	api.POST("/customers", cuh.create)
	api.GET("/customers", cuh.list)
	api.GET("/customers/:id", cuh.get)
	api.PATCH("/customers/:id", cuh.update)
	api.DELETE("/customers/:id", cuh.delete)
	api.POST("/customers/assign-price-level", cuh.assignPriceLevel)
	api.GET("/customers/:id/price-levels", cuh.approvedLevels)

	api.POST("/discount-assignments", cuh.requestAssignment)
	api.GET("/discount-assignments", cuh.listAssignments)
	api.POST("/discount-assignments/:id/approve", cuh.approveAssignment)
	api.POST("/discount-assignments/:id/reject", cuh.rejectAssignment)

	return e
}

func parseIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func parsePaging(c echo.Context) (limit, offset int) {
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}

func queryUUID(c echo.Context, name string) (*uuid.UUID, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &id, nil
}
