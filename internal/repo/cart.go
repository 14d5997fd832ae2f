package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
)

func orderedCartItems(db *gorm.DB) *gorm.DB {
	return db.Order("cart_items.created_at ASC, cart_items.id ASC")
}

// FindCartByUserID loads the cart with its items (insertion order) and their products.
// It never creates a cart.
func (r *GormRepo) FindCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).
		Preload("Items", orderedCartItems).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).FirstOrCreate(&cart).Error
	if err != nil && isDuplicate(err) {
		// lost a creation race, the other request's cart is there now
		err = r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	}
	if err != nil {
		return nil, err
	}
	return r.FindCartByUserID(ctx, userID)
}

func (r *GormRepo) ListCartItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := orderedCartItems(r.DB.WithContext(ctx)).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) FindCartItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddCartItem increments the quantity of an existing line or inserts a new one.
func (r *GormRepo) AddCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", item.CartID, item.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("cart_id = ? AND product_id = ?", item.CartID, item.ProductID).First(item).Error
		}
		return tx.Create(item).Error
	})
}

func (r *GormRepo) UpdateCartItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, cartID, productID uuid.UUID) error {
	res := r.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
