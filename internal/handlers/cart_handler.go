package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shopfront/internal/api"
	"shopfront/internal/models"
	"shopfront/internal/session"
)

// CartHandler handles the cart and checkout views. Every mutation returns
// the backend's full cart snapshot; nothing here does cart arithmetic, and
// a failed operation renders an error without touching the last snapshot
// the visitor saw.
type CartHandler struct {
	cart     *api.CartService
	sessions *session.Manager
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *api.CartService, sessions *session.Manager) *CartHandler {
	return &CartHandler{
		cart:     cart,
		sessions: sessions,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes; the caller wraps the router
// with the login guard.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/cart", h.HandleGetCart)
	router.Post("/cart", h.HandleAddToCart)
	router.Put("/cart/:itemID", h.HandleUpdateItem)
	router.Delete("/cart/:itemID", h.HandleRemoveItem)
	router.Delete("/cart", h.HandleClearCart)
	router.Get("/checkout", h.HandleCheckout)
}

// HandleGetCart renders the current cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.cart.Get(c.Context())
	if err != nil {
		log.Printf("Error fetching cart: %v", err)
		return respondBackendError(c, "Could not load cart", err)
	}
	return c.JSON(cart)
}

// HandleAddToCart adds a product/size/quantity selection. Shape is checked
// locally; stock rejection is the backend's and surfaces as its message.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req models.AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	cart, err := h.cart.Add(c.Context(), req)
	if err != nil {
		log.Printf("Error adding product %d to cart: %v", req.ProductID, err)
		return respondBackendError(c, "Could not add to cart", err)
	}
	return c.JSON(cart)
}

// HandleUpdateItem changes the quantity of one line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("itemID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid cart item id",
			"error":   err.Error(),
		})
	}

	var req models.UpdateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	cart, err := h.cart.UpdateItem(c.Context(), itemID, req.Quantity)
	if err != nil {
		log.Printf("Error updating cart item %d: %v", itemID, err)
		return respondBackendError(c, "Could not update cart", err)
	}
	return c.JSON(cart)
}

// HandleRemoveItem deletes one line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("itemID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid cart item id",
			"error":   err.Error(),
		})
	}

	cart, err := h.cart.Remove(c.Context(), itemID)
	if err != nil {
		log.Printf("Error removing cart item %d: %v", itemID, err)
		return respondBackendError(c, "Could not remove item", err)
	}
	return c.JSON(cart)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	cart, err := h.cart.Clear(c.Context())
	if err != nil {
		log.Printf("Error clearing cart: %v", err)
		return respondBackendError(c, "Could not clear cart", err)
	}
	return c.JSON(cart)
}

// HandleCheckout renders the checkout view: the authoritative cart plus
// the shipping details from the profile. Order placement and payment live
// in the backend.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	cart, err := h.cart.Get(c.Context())
	if err != nil {
		log.Printf("Error fetching cart for checkout: %v", err)
		return respondBackendError(c, "Could not load cart", err)
	}

	user, _ := h.sessions.Current()
	return c.JSON(fiber.Map{
		"cart":     cart,
		"user":     user,
		"currency": h.sessions.Currency(),
	})
}
