package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juanCamilo2002/gamer-buy-api/internal/events"
	"github.com/juanCamilo2002/gamer-buy-api/internal/logging"
	"github.com/juanCamilo2002/gamer-buy-api/internal/metrics"
	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
	"github.com/juanCamilo2002/gamer-buy-api/internal/repo"
	"github.com/juanCamilo2002/gamer-buy-api/internal/util"
)

type OrderService struct {
	Repo    *repo.GormRepo
	Events  events.Publisher
	Metrics *metrics.Metrics
}

func insufficientStock(p *models.Product) *Error {
	e := validationError("insufficient stock for %s", p.Name)
	e.Reason = "insufficient_stock"
	return e
}

// Checkout turns the user's cart into a PENDING order. Stock check, order
// creation, stock decrement and cart clearing commit or roll back together.
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)

	cart, err := s.Repo.FindCartByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		l.Error("checkout_error", "status", 500, "reason", "store error", "error", err)
		s.Metrics.Checkout("error")
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		e := validationError("cart is empty")
		e.Reason = "empty_cart"
		l.Warn("checkout_error", "status", 400, "reason", e.Reason)
		s.Metrics.Checkout(e.Reason)
		return nil, e
	}

	var order *models.Order
	err = s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		// re-read inside the transaction so checks see current stock and lines
		lines, err := tx.ListCartItems(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("load cart items: %w", err)
		}
		if len(lines) == 0 {
			e := validationError("cart is empty")
			e.Reason = "empty_cart"
			return e
		}

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for i, line := range lines {
			if line.Product == nil {
				return fmt.Errorf("cart item %s has no product", line.ID)
			}
			if line.Product.Stock < line.Quantity {
				return insufficientStock(line.Product)
			}
			unitPrice := line.Product.Price
			subtotal = subtotal.Add(unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				Position:  i,
				Quantity:  line.Quantity,
				UnitPrice: unitPrice,
			})
		}

		order = &models.Order{
			UserID:   userID,
			Status:   models.OrderStatusPending,
			Subtotal: subtotal,
			Total:    subtotal,
			Items:    items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		changes := make([]repo.StockChange, len(lines))
		for i, line := range lines {
			changes[i] = repo.StockChange{ProductID: line.ProductID, Quantity: line.Quantity}
		}
		ok, short, err := tx.DecrementStocks(ctx, changes)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if !ok {
			for _, line := range lines {
				if line.ProductID == short {
					return insufficientStock(line.Product)
				}
			}
			e := validationError("insufficient stock")
			e.Reason = "insufficient_stock"
			return e
		}

		if _, err := tx.ClearCart(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		// reload so item products carry post-checkout stock
		order, err = tx.FindOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("reload order: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			reason := ReasonOf(err)
			l.Warn("checkout_error", "status", 400, "reason", reason, "error", err)
			s.Metrics.Checkout(reason)
			return nil, err
		}
		l.Error("checkout_error", "status", 500, "reason", "transaction failed", "error", err)
		s.Metrics.Checkout("error")
		return nil, err
	}

	s.Metrics.Checkout("success")
	l.Info("checkout_success", "order_id", order.ID, "total", order.Total.StringFixed(2))

	ids := make([]string, len(order.Items))
	for i, it := range order.Items {
		ids[i] = it.ProductID.String()
	}
	publish(ctx, s.Events, events.TopicOrderEvents, order.ID.String(), "order_created", map[string]any{
		"order_id":    order.ID,
		"user_id":     userID,
		"total":       order.Total.StringFixed(2),
		"product_ids": strings.Join(ids, ","),
	})
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int64, error) {
	offset, limit := util.Calculate(page, size)
	orders, total, err := s.Repo.ListOrders(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// GetOrder only returns orders owned by userID; anything else is not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.FindOrderForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError("order not found")
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", orderID)

	status = models.OrderStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return nil, validationError("status must be one of PENDING, PAID, SHIPPED, CANCELLED")
	}

	if err := s.Repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError("order not found")
		}
		l.Error("update_status_error", "status", 500, "error", err)
		return nil, fmt.Errorf("update order status: %w", err)
	}

	order, err := s.Repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	l.Info("update_status_success", "new_status", status)
	publish(ctx, s.Events, events.TopicOrderEvents, order.ID.String(), "order_status_updated", map[string]any{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
	})
	return order, nil
}
