package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pushkindt/pushkind-orders/internal/service"
)

type catalogHandler struct {
	categories service.CategoryService
	tags       service.TagService
	levels     service.PriceLevelService
}

type createCategoryRequest struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

func (h *catalogHandler) createCategory(c echo.Context) error {
	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	category, err := h.categories.CreateCategory(c.Request().Context(), service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, fromCategory(*category))
}

func (h *catalogHandler) getCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	category, err := h.categories.GetCategory(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromCategory(*category))
}

func (h *catalogHandler) listCategories(c echo.Context) error {
	rows, err := h.categories.ListCategories(c.Request().Context(), c.QueryParam("include_archived") == "true")
	if err != nil {
		return writeError(c, err)
	}
	items := make([]categoryResponse, 0, len(rows))
	for _, category := range rows {
		items = append(items, fromCategory(category))
	}
	return c.JSON(http.StatusOK, listEnvelope[categoryResponse]{Items: items, Total: int64(len(items))})
}

type updateCategoryRequest struct {
	Name *string `json:"name"`

	Description      *string `json:"description"`
	ClearDescription bool    `json:"clear_description"`

	ParentID    *uuid.UUID `json:"parent_id"`
	ClearParent bool       `json:"clear_parent"`

	IsArchived *bool `json:"is_archived"`
}

func (h *catalogHandler) updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req updateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	category, err := h.categories.UpdateCategory(c.Request().Context(), id, service.UpdateCategoryInput{
		Name:             req.Name,
		Description:      req.Description,
		ClearDescription: req.ClearDescription,
		ParentID:         req.ParentID,
		ClearParent:      req.ClearParent,
		IsArchived:       req.IsArchived,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromCategory(*category))
}

func (h *catalogHandler) deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.categories.DeleteCategory(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *catalogHandler) createTag(c echo.Context) error {
	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tag, err := h.tags.CreateTag(c.Request().Context(), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, fromTag(*tag))
}

func (h *catalogHandler) listTags(c echo.Context) error {
	limit, offset := parsePaging(c)
	rows, total, err := h.tags.ListTags(c.Request().Context(), service.TagListQuery{
		Query:  c.QueryParam("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]tagResponse, 0, len(rows))
	for _, tag := range rows {
		items = append(items, fromTag(tag))
	}
	return c.JSON(http.StatusOK, listEnvelope[tagResponse]{Items: items, Total: total})
}

func (h *catalogHandler) renameTag(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tag, err := h.tags.RenameTag(c.Request().Context(), id, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromTag(*tag))
}

func (h *catalogHandler) deleteTag(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.tags.DeleteTag(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type createPriceLevelRequest struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

func (h *catalogHandler) createPriceLevel(c echo.Context) error {
	var req createPriceLevelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	level, err := h.levels.CreatePriceLevel(c.Request().Context(), req.Name, req.IsDefault)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, fromPriceLevel(*level))
}

func (h *catalogHandler) listPriceLevels(c echo.Context) error {
	limit, offset := parsePaging(c)
	rows, total, err := h.levels.ListPriceLevels(c.Request().Context(), service.PriceLevelListQuery{
		Query:  c.QueryParam("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, listEnvelope[priceLevelResponse]{Items: fromPriceLevels(rows), Total: total})
}

func (h *catalogHandler) renamePriceLevel(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	level, err := h.levels.RenamePriceLevel(c.Request().Context(), id, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromPriceLevel(*level))
}

func (h *catalogHandler) setDefaultPriceLevel(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	level, err := h.levels.SetDefaultPriceLevel(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fromPriceLevel(*level))
}

func (h *catalogHandler) deletePriceLevel(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.levels.DeletePriceLevel(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
