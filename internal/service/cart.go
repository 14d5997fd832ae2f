package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
	"github.com/juanCamilo2002/gamer-buy-api/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if productID == uuid.Nil {
		return nil, validationError("product_id is required")
	}
	if quantity < 1 {
		return nil, validationError("quantity must be at least 1")
	}

	if _, err := s.Repo.FindProduct(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError("product not found")
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	item := models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
	if err := s.Repo.AddCartItem(ctx, &item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return s.Repo.FindCartItem(ctx, cart.ID, productID)
}

func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, validationError("quantity must be at least 1")
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if err := s.Repo.UpdateCartItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError("item not found in cart")
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return s.Repo.FindCartItem(ctx, cart.ID, productID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	if err := s.Repo.DeleteCartItem(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError("item not found in cart")
		}
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get cart: %w", err)
	}
	n, err := s.Repo.ClearCart(ctx, cart.ID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return n, nil
}
