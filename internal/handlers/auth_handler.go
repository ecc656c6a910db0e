package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shopfront/internal/api"
	"shopfront/internal/guard"
	"shopfront/internal/models"
	"shopfront/internal/session"
)

// AuthHandler handles login, registration, password recovery and the
// profile pages.
type AuthHandler struct {
	sessions *session.Manager
	auth     *api.AuthService
	validate *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *session.Manager, auth *api.AuthService) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		auth:     auth,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public auth routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/login", h.HandleLogin)
	router.Post("/register", h.HandleRegister)
	router.Post("/forgot-password", h.HandleForgotPassword)
	router.Post("/logout", h.HandleLogout)
}

// RegisterProfileRoutes registers the profile routes; the caller wraps the
// router with the login guard.
func (h *AuthHandler) RegisterProfileRoutes(router fiber.Router) {
	profile := router.Group("/profile")
	profile.Get("/", h.HandleGetProfile)
	profile.Post("/", h.HandleUpdateProfile)
	profile.Post("/password", h.HandleChangePassword)
	profile.Post("/currency", h.HandleSetCurrency)
}

// HandleLogin authenticates the visitor. On failure the session is left
// untouched and the backend's message is rendered inline.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	user, err := h.sessions.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		log.Printf("Login failed for %s: %v", req.Email, err)
		return respondBackendError(c, "Login failed", err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
	})
}

// HandleRegister creates a new account. Confirmation mismatch and short
// passwords are caught locally and never reach the backend.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var body struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
	}
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	req := models.RegisterRequest{
		Email:           body.Email,
		Password:        body.Password,
		ConfirmPassword: body.ConfirmPassword,
		FirstName:       body.FirstName,
		LastName:        body.LastName,
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	user, err := h.auth.Register(c.Context(), req)
	if err != nil {
		log.Printf("Registration failed for %s: %v", req.Email, err)
		return respondBackendError(c, "Registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"user":    user,
	})
}

// HandleForgotPassword starts the password-reset flow.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(body); err != nil {
		return respondValidationError(c, err)
	}

	message, err := h.auth.ForgotPassword(c.Context(), body.Email)
	if err != nil {
		log.Printf("Forgot-password failed for %s: %v", body.Email, err)
		return respondBackendError(c, "Password reset failed", err)
	}

	return c.JSON(fiber.Map{"message": message})
}

// HandleLogout clears the session and sends the visitor to the public
// landing page.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	h.sessions.Logout()
	return c.Redirect(guard.HomePath, fiber.StatusFound)
}

// HandleGetProfile renders the profile view model.
func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, ok := h.sessions.Current()
	if !ok {
		// The guard keeps this from happening; treat it as a stale session.
		return c.Redirect(guard.LoginPath, fiber.StatusFound)
	}
	return c.JSON(fiber.Map{
		"user":     user,
		"currency": h.sessions.Currency(),
	})
}

// HandleUpdateProfile sends the edits to the backend and replaces the
// cached identity with the server's full response.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req models.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	user, err := h.auth.UpdateProfile(c.Context(), req)
	if err != nil {
		log.Printf("Profile update failed: %v", err)
		return respondBackendError(c, "Profile update failed", err)
	}

	h.sessions.SetUser(*user)
	return c.JSON(fiber.Map{
		"message": "Profile updated",
		"user":    user,
	})
}

// HandleChangePassword changes the account password. Local checks mirror
// the registration rules.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	req := models.PasswordChangeRequest{
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
		ConfirmPassword: body.ConfirmPassword,
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.auth.ChangePassword(c.Context(), req); err != nil {
		log.Printf("Password change failed: %v", err)
		return respondBackendError(c, "Password change failed", err)
	}

	return c.JSON(fiber.Map{"message": "Password changed"})
}

// HandleSetCurrency stores the display-currency preference.
func (h *AuthHandler) HandleSetCurrency(c *fiber.Ctx) error {
	var body struct {
		Currency string `json:"currency" validate:"required,len=3"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(body); err != nil {
		return respondValidationError(c, err)
	}

	h.sessions.SetCurrency(body.Currency)
	return c.JSON(fiber.Map{
		"message":  "Currency updated",
		"currency": h.sessions.Currency(),
	})
}
