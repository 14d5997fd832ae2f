package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/juanCamilo2002/gamer-buy-api/internal/logging"
	authmw "github.com/juanCamilo2002/gamer-buy-api/internal/middleware/auth"
	"github.com/juanCamilo2002/gamer-buy-api/internal/service"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_get")
	userID, _ := authmw.UserIDFrom(c)

	cart, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return toHTTP(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_add_item")
	userID, _ := authmw.UserIDFrom(c)

	var req addCartItemRequest
	if err := bind(c, &req); err != nil {
		l.Warn("add_item_error", "status", 400, "error", err)
		return err
	}

	item, err := h.Svc.AddItem(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return toHTTP(l, "add_item", err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_update_item")
	userID, _ := authmw.UserIDFrom(c)

	productID, err := parseID(c, "productId")
	if err != nil {
		return err
	}
	var req updateCartItemRequest
	if err := bind(c, &req); err != nil {
		l.Warn("update_item_error", "status", 400, "error", err)
		return err
	}

	item, err := h.Svc.UpdateItem(ctx, userID, productID, req.Quantity)
	if err != nil {
		return toHTTP(l, "update_item", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_remove_item")
	userID, _ := authmw.UserIDFrom(c)

	productID, err := parseID(c, "productId")
	if err != nil {
		return err
	}
	if err := h.Svc.RemoveItem(ctx, userID, productID); err != nil {
		return toHTTP(l, "remove_item", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_clear")
	userID, _ := authmw.UserIDFrom(c)

	n, err := h.Svc.Clear(ctx, userID)
	if err != nil {
		return toHTTP(l, "clear_cart", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": n})
}
