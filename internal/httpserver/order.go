package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/juanCamilo2002/gamer-buy-api/internal/logging"
	authmw "github.com/juanCamilo2002/gamer-buy-api/internal/middleware/auth"
	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
	"github.com/juanCamilo2002/gamer-buy-api/internal/service"
	"github.com/juanCamilo2002/gamer-buy-api/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_checkout")
	userID, _ := authmw.UserIDFrom(c)

	order, err := h.Svc.Checkout(ctx, userID)
	if err != nil {
		return toHTTP(l, "checkout", err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_list")
	userID, _ := authmw.UserIDFrom(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	orders, total, err := h.Svc.ListOrders(ctx, userID, page, limit)
	if err != nil {
		return toHTTP(l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, pageResponse[models.Order]{Data: orders, Meta: util.Meta(page, limit, total)})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_get")
	userID, _ := authmw.UserIDFrom(c)

	orderID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.Svc.GetOrder(ctx, userID, orderID)
	if err != nil {
		return toHTTP(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_update_status")

	orderID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := bind(c, &req); err != nil {
		l.Warn("update_status_error", "status", 400, "error", err)
		return err
	}

	order, err := h.Svc.UpdateStatus(ctx, orderID, models.OrderStatus(req.Status))
	if err != nil {
		return toHTTP(l, "update_status", err)
	}
	return c.JSON(http.StatusOK, order)
}
