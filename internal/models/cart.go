package models

// CartItem is a single line in the cart. Prices are denormalized snapshots
// taken by the backend at add time; the client never recomputes them for
// anything other than display checks.
type CartItem struct {
	ID           int     `json:"id"`
	ProductID    int     `json:"product_id"`
	ProductName  string  `json:"product_name,omitempty"`
	ProductImage string  `json:"product_image,omitempty"`
	ProductSlug  string  `json:"product_slug,omitempty"`
	ProductSize  string  `json:"product_size"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	TotalPrice   float64 `json:"total_price"`
}

// Cart is the server-authoritative cart snapshot. Every mutation replaces
// the whole value from the backend's response.
type Cart struct {
	ID       int        `json:"id"`
	UserID   string     `json:"user_id"`
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Total    float64    `json:"total"`
}

// Consistent reports whether the snapshot satisfies the cart arithmetic
// invariants: each line's total equals unit price times quantity, and the
// cart total equals the sum of line totals.
func (c Cart) Consistent() bool {
	const eps = 1e-9
	sum := 0.0
	for _, it := range c.Items {
		if diff := it.TotalPrice - it.UnitPrice*float64(it.Quantity); diff > eps || diff < -eps {
			return false
		}
		sum += it.TotalPrice
	}
	diff := c.Total - sum
	return diff <= eps && diff >= -eps
}

// AddToCartRequest is the payload for adding an item. The client validates
// shape only; stock rejection is the backend's call.
type AddToCartRequest struct {
	ProductID int    `json:"product_id" validate:"required,gt=0"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartItemRequest changes the quantity of an existing line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}
