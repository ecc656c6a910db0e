package api

import (
	"context"
	"net/http"

	"shopfront/internal/models"
)

// AuthService maps authentication actions onto backend endpoints.
type AuthService struct {
	client *Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Register creates a new account and returns the created user.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := s.client.do(ctx, http.MethodPost, "/auth/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for an access token plus the user record.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := s.client.do(ctx, http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the user behind the current token.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.client.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ForgotPassword asks the backend to start a password reset for the email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	payload := map[string]string{"email": email}
	if err := s.client.do(ctx, http.MethodPost, "/auth/forgot-password", nil, payload, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UpdateProfile sends the edited fields and returns the full updated user.
// The caller replaces its cached identity with the response, never with a
// locally merged record.
func (s *AuthService) UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) (*models.User, error) {
	var user models.User
	if err := s.client.do(ctx, http.MethodPut, "/auth/profile", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword changes the account password.
func (s *AuthService) ChangePassword(ctx context.Context, req models.PasswordChangeRequest) error {
	return s.client.do(ctx, http.MethodPost, "/auth/change-password", nil, req, nil)
}
