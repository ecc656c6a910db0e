package api

import (
	"context"
	"fmt"
	"net/http"

	"shopfront/internal/models"
)

// CartService keeps the client cart view consistent with the backend.
// Every operation is one round trip and every response is the full
// resulting cart; callers replace their snapshot with it and never apply
// local deltas. A failed call leaves the caller's previous snapshot intact.
type CartService struct {
	client *Client
}

// NewCartService creates a new CartService.
func NewCartService(client *Client) *CartService {
	return &CartService{client: client}
}

// Get fetches the current user's cart.
func (s *CartService) Get(ctx context.Context) (*models.Cart, error) {
	var cart models.Cart
	if err := s.client.do(ctx, http.MethodGet, "/cart", nil, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Add puts a product/size/quantity selection into the cart. No stock
// validation happens here; an out-of-stock rejection arrives as a backend
// error and propagates unchanged.
func (s *CartService) Add(ctx context.Context, req models.AddToCartRequest) (*models.Cart, error) {
	var cart models.Cart
	if err := s.client.do(ctx, http.MethodPost, "/cart", nil, req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateItem changes the quantity of one cart line.
func (s *CartService) UpdateItem(ctx context.Context, itemID, quantity int) (*models.Cart, error) {
	var cart models.Cart
	req := models.UpdateCartItemRequest{Quantity: quantity}
	if err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/cart/%d", itemID), nil, req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Remove deletes one cart line.
func (s *CartService) Remove(ctx context.Context, itemID int) (*models.Cart, error) {
	var cart models.Cart
	if err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d", itemID), nil, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context) (*models.Cart, error) {
	var cart models.Cart
	if err := s.client.do(ctx, http.MethodDelete, "/cart", nil, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
