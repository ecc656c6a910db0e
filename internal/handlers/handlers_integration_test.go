package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"shopfront/internal/api"
	"shopfront/internal/guard"
	"shopfront/internal/handlers"
	"shopfront/internal/models"
	"shopfront/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// backendCall records one request the app made to the stub backend.
type backendCall struct {
	Method   string
	Path     string
	RawQuery string
	Body     []byte
}

// stubBackend stands in for the REST backend: canned responses per
// method+path, every incoming call recorded.
type stubBackend struct {
	mu     sync.Mutex
	calls  []backendCall
	routes map[string]http.HandlerFunc
}

func newStubBackend(t *testing.T) (*stubBackend, string) {
	stub := &stubBackend{routes: make(map[string]http.HandlerFunc)}
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)
	return stub, server.URL
}

func (s *stubBackend) On(method, path string, handler http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = handler
}

func (s *stubBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.calls = append(s.calls, backendCall{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Body:     body,
	})
	handler, ok := s.routes[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "not found"}`))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	handler(w, r)
}

func (s *stubBackend) Calls() []backendCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backendCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// setupApp wires the app exactly the way main does, against the stub
// backend and in-memory session storage. seed, when non-nil, establishes a
// logged-in session before the app starts.
func setupApp(t *testing.T, backendURL string, seed *models.User) (*fiber.App, *session.Manager) {
	storage := session.NewMemoryStorage()
	if seed != nil {
		raw, err := json.Marshal(seed)
		assert.NoError(t, err)
		assert.NoError(t, storage.Set(session.StorageKeyToken, "seeded-token"))
		assert.NoError(t, storage.Set(session.StorageKeyUser, string(raw)))
	}

	sessions, err := session.NewManager(storage, "VND")
	assert.NoError(t, err)

	client := api.NewClient(api.Config{BaseURL: backendURL}, sessions)
	authService := api.NewAuthService(client)
	productService := api.NewProductService(client)
	cartService := api.NewCartService(client)
	chatService := api.NewChatService(client)
	sessions.UseAuth(authService)

	authHandler := handlers.NewAuthHandler(sessions, authService)
	productHandler := handlers.NewProductHandler(productService, 10000000)
	cartHandler := handlers.NewCartHandler(cartService, sessions)
	chatHandler := handlers.NewChatHandler(chatService)

	app := fiber.New()
	authHandler.RegisterRoutes(app)
	productHandler.RegisterRoutes(app)
	chatHandler.RegisterRoutes(app)

	loginRequired := guard.Protected(sessions, "")
	app.Use("/profile", loginRequired)
	app.Use("/cart", loginRequired)
	app.Use("/checkout", loginRequired)
	authHandler.RegisterProfileRoutes(app)
	cartHandler.RegisterRoutes(app)

	app.Use("/admin", guard.Protected(sessions, models.RoleAdmin))
	productHandler.RegisterAdminRoutes(app)

	return app, sessions
}

func jsonRequest(method, path string, payload interface{}) *http.Request {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// TestMain suppresses handler logging for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestLoginFailureShowsMessageAndKeepsSession(t *testing.T) {
	stub, url := newStubBackend(t)
	stub.On(http.MethodPost, "/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Email hoac mat khau khong dung"}`))
	})

	app, sessions := setupApp(t, url, nil)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/login", fiber.Map{
		"email":    "a@b.com",
		"password": "wrong",
	}), -1)
	assert.NoError(t, err)

	// No redirect: the error renders inline on the login form.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Email hoac mat khau khong dung", body["error"])
	assert.NotEmpty(t, body["error"])

	assert.False(t, sessions.IsLoggedIn())
}

func TestLoginSuccessEstablishesSession(t *testing.T) {
	stub, url := newStubBackend(t)
	stub.On(http.MethodPost, "/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","user":{"id":1,"email":"a@b.com","role":"user"}}`))
	})

	app, sessions := setupApp(t, url, nil)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/login", fiber.Map{
		"email":    "a@b.com",
		"password": "secret",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.True(t, sessions.IsLoggedIn())
	assert.Equal(t, "tok-1", sessions.Token())
}

func TestShortRegistrationPasswordNeverReachesBackend(t *testing.T) {
	stub, url := newStubBackend(t)
	app, _ := setupApp(t, url, nil)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/register", fiber.Map{
		"email":            "a@b.com",
		"password":         "abc12",
		"confirm_password": "abc12",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Local validation failed, so no network call was issued.
	assert.Empty(t, stub.Calls())
}

func TestPasswordConfirmationMismatchIsLocal(t *testing.T) {
	stub, url := newStubBackend(t)
	app, _ := setupApp(t, url, nil)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/register", fiber.Map{
		"email":            "a@b.com",
		"password":         "abc123",
		"confirm_password": "abc124",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, stub.Calls())
}

func TestGuardRedirectsAcrossRoles(t *testing.T) {
	_, url := newStubBackend(t)

	// Logged out: protected routes redirect to login, children never run.
	app, _ := setupApp(t, url, nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/cart", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, guard.LoginPath, resp.Header.Get("Location"))

	// Plain user on an admin route: redirect home.
	app, _ = setupApp(t, url, &models.User{ID: 1, Email: "a@b.com", Role: models.RoleUser})
	resp, err = app.Test(jsonRequest(http.MethodPost, "/admin/products", fiber.Map{}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, guard.HomePath, resp.Header.Get("Location"))
}

func TestAddToCartKeepsServerArithmetic(t *testing.T) {
	stub, url := newStubBackend(t)
	stub.On(http.MethodPost, "/cart", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"user_id":"u1","items":[{"id":10,"product_id":7,"product_size":"M","quantity":2,"unit_price":50,"total_price":100}],"subtotal":100,"total":100}`))
	})

	app, _ := setupApp(t, url, &models.User{ID: 1, Email: "a@b.com", Role: models.RoleUser})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/cart", fiber.Map{
		"product_id": 7,
		"size":       "M",
		"quantity":   2,
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cart models.Cart
	decodeBody(t, resp, &cart)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 100.0, cart.Items[0].TotalPrice)
	assert.True(t, cart.Consistent())

	// The bearer token from the seeded session went out with the call.
	calls := stub.Calls()
	assert.Len(t, calls, 1)
}

func TestCartFailureSurfacesBackendDetail(t *testing.T) {
	stub, url := newStubBackend(t)
	stub.On(http.MethodPost, "/cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "San pham da het hang"}`))
	})

	app, _ := setupApp(t, url, &models.User{ID: 1, Email: "a@b.com", Role: models.RoleUser})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/cart", fiber.Map{
		"product_id": 7,
		"size":       "M",
		"quantity":   99,
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "San pham da het hang", body["error"])
}

func TestFilterScenarioShoesWithFullRange(t *testing.T) {
	stub, url := newStubBackend(t)
	stub.On(http.MethodGet, "/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	app, _ := setupApp(t, url, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products?category=Shoes&min_price=0&max_price=10000000", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	calls := stub.Calls()
	assert.Len(t, calls, 1)
	query := calls[0].RawQuery
	assert.Contains(t, query, "product_type=Shoes")
	assert.NotContains(t, query, "min_price")
	assert.NotContains(t, query, "max_price")
}

func TestBareListingEqualsReset(t *testing.T) {
	stub, url := newStubBackend(t)
	stub.On(http.MethodGet, "/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	app, _ := setupApp(t, url, nil)

	// First page load: no controls submitted.
	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/products", nil), -1)
	assert.NoError(t, err)
	// After reset: the controls submit their default values.
	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/products?search=&category=all&min_price=&max_price=", nil), -1)
	assert.NoError(t, err)

	calls := stub.Calls()
	assert.Len(t, calls, 2)
	assert.Equal(t, calls[0].RawQuery, calls[1].RawQuery)
}

func TestProductDetailNotFoundIsTerminalView(t *testing.T) {
	_, url := newStubBackend(t)
	app, _ := setupApp(t, url, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products/missing-slug", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Product not found", body["message"])
	// The only recovery action points back to the listing.
	assert.Equal(t, "/products", body["back"])
}

func TestAdminCreateProductFillsSlug(t *testing.T) {
	stub, url := newStubBackend(t)
	stub.On(http.MethodPost, "/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":5,"product_name":"Trail Runner","product_type":"Shoes","price":150,"stock":10}`))
	})

	app, _ := setupApp(t, url, &models.User{ID: 2, Email: "admin@b.com", Role: models.RoleAdmin})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/admin/products", fiber.Map{
		"product_name": "Trail Runner",
		"product_type": "Shoes",
		"price":        150,
		"stock":        10,
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	calls := stub.Calls()
	assert.Len(t, calls, 1)

	var sent models.CreateProductRequest
	assert.NoError(t, json.Unmarshal(calls[0].Body, &sent))
	assert.Contains(t, sent.Slug, "trail-runner-")
}

func TestProfileUpdateReplacesCachedUser(t *testing.T) {
	stub, url := newStubBackend(t)
	stub.On(http.MethodPut, "/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"email":"a@b.com","role":"user","first_name":"An"}`))
	})

	app, sessions := setupApp(t, url, &models.User{ID: 1, Email: "a@b.com", Role: models.RoleUser, Phone: "555"})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/profile", fiber.Map{
		"first_name": "An",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The cached identity is the server's full response; the old phone is
	// gone because the server's record did not carry it.
	current, ok := sessions.Current()
	assert.True(t, ok)
	assert.Equal(t, "An", current.FirstName)
	assert.Empty(t, current.Phone)
}

func TestLogoutClearsSessionAndRedirectsHome(t *testing.T) {
	_, url := newStubBackend(t)
	app, sessions := setupApp(t, url, &models.User{ID: 1, Email: "a@b.com", Role: models.RoleUser})
	assert.True(t, sessions.IsLoggedIn())

	resp, err := app.Test(jsonRequest(http.MethodPost, "/logout", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, guard.HomePath, resp.Header.Get("Location"))
	assert.False(t, sessions.IsLoggedIn())

	// Protected views now redirect again.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/profile", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, guard.LoginPath, resp.Header.Get("Location"))
}

func TestChatRoundTripKeepsHistory(t *testing.T) {
	stub, url := newStubBackend(t)
	replies := []string{"Hi there!", "We ship within 3 days."}
	call := 0
	stub.On(http.MethodPost, "/chat", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fiber.Map{"message": replies[call]})
		call++
	})

	app, _ := setupApp(t, url, nil)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/chat", fiber.Map{"message": "hello"}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The thread cookie keeps the visitor on the same history.
	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == "chat_id" {
			cookie = c.Value
		}
	}
	assert.NotEmpty(t, cookie)

	req := jsonRequest(http.MethodPost, "/chat", fiber.Map{"message": "how long is shipping?"})
	req.AddCookie(&http.Cookie{Name: "chat_id", Value: cookie})
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)

	var body struct {
		Accepted bool                 `json:"accepted"`
		Messages []models.ChatMessage `json:"messages"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Accepted)
	assert.Len(t, body.Messages, 4)
	assert.Equal(t, "We ship within 3 days.", body.Messages[3].Content)
}
