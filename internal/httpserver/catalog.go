package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/juanCamilo2002/gamer-buy-api/internal/logging"
	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
	"github.com/juanCamilo2002/gamer-buy-api/internal/service"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category_list")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return toHTTP(l, "list_categories", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category_get")

	cat, err := h.Svc.GetCategoryBySlug(ctx, c.Param("slug"))
	if err != nil {
		return toHTTP(l, "get_category", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category_create")

	var req categoryRequest
	if err := bind(c, &req); err != nil {
		l.Warn("create_category_error", "status", 400, "error", err)
		return err
	}
	cat, err := h.Svc.CreateCategory(ctx, service.CategoryInput(req))
	if err != nil {
		return toHTTP(l, "create_category", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) PatchCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category_patch")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req categoryRequest
	if err := bind(c, &req); err != nil {
		l.Warn("patch_category_error", "status", 400, "error", err)
		return err
	}
	cat, err := h.Svc.UpdateCategory(ctx, id, service.CategoryInput(req))
	if err != nil {
		return toHTTP(l, "patch_category", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category_delete")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return toHTTP(l, "delete_category", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_list")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	q := service.ProductQuery{Page: page, Limit: limit, Search: c.QueryParam("search")}
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category_id")
		}
		q.CategoryID = &id
	}

	products, meta, err := h.Svc.ListProducts(ctx, q)
	if err != nil {
		return toHTTP(l, "list_products", err)
	}
	return c.JSON(http.StatusOK, pageResponse[models.Product]{Data: products, Meta: meta})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_search")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	products, meta, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, limit)
	if err != nil {
		return toHTTP(l, "search_products", err)
	}
	return c.JSON(http.StatusOK, pageResponse[models.Product]{Data: products, Meta: meta})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_get")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return toHTTP(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_create")

	var req productRequest
	if err := bind(c, &req); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return err
	}
	p, err := h.Svc.CreateProduct(ctx, service.ProductInput(req))
	if err != nil {
		return toHTTP(l, "create_product", err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_patch")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req productRequest
	if err := bind(c, &req); err != nil {
		l.Warn("patch_product_error", "status", 400, "error", err)
		return err
	}
	p, err := h.Svc.UpdateProduct(ctx, id, service.ProductInput(req))
	if err != nil {
		return toHTTP(l, "patch_product", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_delete")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return toHTTP(l, "delete_product", err)
	}
	return c.NoContent(http.StatusNoContent)
}
