package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"

	"shopfront/internal/models"
)

// Authenticator is the slice of the auth service the manager needs to log
// a user in. The concrete implementation lives in internal/api.
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// Manager is the single authority on the current session. It holds exactly
// one user object at a time, replaces it wholesale on login and profile
// updates, and mirrors every change into persisted storage so a restart
// resumes the same session.
type Manager struct {
	mu      sync.RWMutex
	storage Storage
	auth    Authenticator

	token    string
	user     *models.User
	currency string
}

// NewManager creates a Manager and restores the persisted snapshot. A
// corrupt snapshot is discarded rather than propagated; the visitor simply
// starts logged out.
func NewManager(storage Storage, defaultCurrency string) (*Manager, error) {
	m := &Manager{
		storage:  storage,
		currency: defaultCurrency,
	}

	token, ok, err := storage.Get(StorageKeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session token: %w", err)
	}
	if ok {
		m.token = token
	}

	raw, ok, err := storage.Get(StorageKeyUser)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session user: %w", err)
	}
	if ok {
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			log.Printf("Discarding unreadable session user snapshot: %v", err)
			m.token = ""
		} else {
			m.user = &user
		}
	}

	if currency, ok, err := storage.Get(StorageKeyCurrency); err != nil {
		return nil, fmt.Errorf("failed to restore currency preference: %w", err)
	} else if ok {
		m.currency = currency
	}

	return m, nil
}

// UseAuth wires in the auth service. Called once during startup, after the
// API client (which needs this manager as its token source) exists.
func (m *Manager) UseAuth(auth Authenticator) {
	m.auth = auth
}

// Login authenticates against the backend. On success the token and user
// replace the current session and are persisted; on failure the session is
// left untouched and the backend's message comes back as the error.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	if m.auth == nil {
		return nil, fmt.Errorf("session manager has no auth service attached")
	}

	resp, err := m.auth.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = resp.AccessToken
	m.user = &resp.User
	m.persistLocked()
	return m.user, nil
}

// Logout clears the session from memory and storage. Any authenticated
// request already in flight is the backend's problem to reject.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.user = nil
	if err := m.storage.Delete(StorageKeyToken); err != nil {
		log.Printf("Failed to clear persisted token: %v", err)
	}
	if err := m.storage.Delete(StorageKeyUser); err != nil {
		log.Printf("Failed to clear persisted user: %v", err)
	}
}

// SetUser replaces the cached identity after a profile edit. The argument
// must be the backend's full response, never a locally merged record.
func (m *Manager) SetUser(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user = &user
	m.persistLocked()
}

// Current returns a copy of the logged-in user, if any.
func (m *Manager) Current() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil || !m.loggedInLocked() {
		return models.User{}, false
	}
	return *m.user, true
}

// IsLoggedIn reports whether a usable session exists.
func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loggedInLocked()
}

// Role returns the current user's role, or RoleUser when logged out.
func (m *Manager) Role() models.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil {
		return models.RoleUser
	}
	return m.user.Role
}

// Token returns the bearer token for outgoing requests. It satisfies the
// API client's TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Currency returns the persisted display-currency preference.
func (m *Manager) Currency() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currency
}

// SetCurrency stores a new display-currency preference.
func (m *Manager) SetCurrency(currency string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.currency = currency
	if err := m.storage.Set(StorageKeyCurrency, currency); err != nil {
		log.Printf("Failed to persist currency preference: %v", err)
	}
}

func (m *Manager) loggedInLocked() bool {
	return m.token != "" && m.user != nil && !tokenExpired(m.token)
}

func (m *Manager) persistLocked() {
	if err := m.storage.Set(StorageKeyToken, m.token); err != nil {
		log.Printf("Failed to persist session token: %v", err)
	}
	raw, err := json.Marshal(m.user)
	if err != nil {
		log.Printf("Failed to encode session user: %v", err)
		return
	}
	if err := m.storage.Set(StorageKeyUser, string(raw)); err != nil {
		log.Printf("Failed to persist session user: %v", err)
	}
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; verification is the backend's job. Tokens that are not JWTs
// are treated as opaque and assumed live.
func tokenExpired(tokenString string) bool {
	parser := new(jwt.Parser)
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	return !claims.VerifyExpiresAt(time.Now().Unix(), false)
}
