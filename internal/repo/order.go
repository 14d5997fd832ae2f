package repo

import (
	"bytes"
	"context"
	"slices"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
)

func orderedOrderItems(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.position ASC")
}

// CreateOrder inserts the order together with its items.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

// DecrementStock subtracts qty only while enough stock remains. false means
// the guard rejected the update.
func (r *GormRepo) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

type StockChange struct {
	ProductID uuid.UUID
	Quantity  int
}

// DecrementStocks applies every change in product id order, so transactions
// touching overlapping products take row locks in the same order. It stops
// at the first product without enough stock and returns its id with ok=false.
func (r *GormRepo) DecrementStocks(ctx context.Context, changes []StockChange) (ok bool, short uuid.UUID, err error) {
	sorted := slices.Clone(changes)
	slices.SortFunc(sorted, func(a, b StockChange) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	for _, ch := range sorted {
		ok, err := r.DecrementStock(ctx, ch.ProductID, ch.Quantity)
		if err != nil {
			return false, uuid.Nil, err
		}
		if !ok {
			return false, ch.ProductID, nil
		}
	}
	return true, uuid.Nil, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := q.
		Preload("Items", orderedOrderItems).
		Preload("Items.Product").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormRepo) FindOrderForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", orderedOrderItems).
		Preload("Items.Product").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", orderedOrderItems).
		Preload("Items.Product").
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
