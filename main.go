package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shopfront/internal/api"
	"shopfront/internal/guard"
	"shopfront/internal/handlers"
	"shopfront/internal/models"
	"shopfront/internal/session"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("API_BASE_URL", "http://localhost:8000")
	viper.SetDefault("API_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SESSION_DB", "shopfront.db")
	viper.SetDefault("PRICE_CEILING", 10000000)
	viper.SetDefault("DEFAULT_CURRENCY", "VND")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	baseURL := viper.GetString("API_BASE_URL")
	timeout := time.Duration(viper.GetInt("API_TIMEOUT_SECONDS")) * time.Second
	sessionDB := viper.GetString("SESSION_DB")
	ceiling := viper.GetFloat64("PRICE_CEILING")
	currency := viper.GetString("DEFAULT_CURRENCY")

	// --- Persisted session storage ---
	db, err := openSessionDB(sessionDB)
	if err != nil {
		log.Fatalf("Failed to open session storage: %v", err)
	}
	storage, err := session.NewGORMStorage(db)
	if err != nil {
		log.Fatalf("Failed to initialize session storage: %v", err)
	}

	// The manager restores the persisted session before the first request.
	sessions, err := session.NewManager(storage, currency)
	if err != nil {
		log.Fatalf("Failed to restore session: %v", err)
	}

	// --- Backend API client and services ---
	// The client takes its bearer token from the session manager, so the
	// manager exists first and gets the auth service attached right after.
	client := api.NewClient(api.Config{BaseURL: baseURL, Timeout: timeout}, sessions)
	authService := api.NewAuthService(client)
	productService := api.NewProductService(client)
	cartService := api.NewCartService(client)
	chatService := api.NewChatService(client)
	sessions.UseAuth(authService)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(sessions, authService)
	productHandler := handlers.NewProductHandler(productService, ceiling)
	cartHandler := handlers.NewCartHandler(cartService, sessions)
	chatHandler := handlers.NewChatHandler(chatService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())

	// Public routes
	authHandler.RegisterRoutes(app)
	productHandler.RegisterRoutes(app)
	chatHandler.RegisterRoutes(app)

	// Routes behind the login guard
	loginRequired := guard.Protected(sessions, "")
	app.Use("/profile", loginRequired)
	app.Use("/cart", loginRequired)
	app.Use("/checkout", loginRequired)
	authHandler.RegisterProfileRoutes(app)
	cartHandler.RegisterRoutes(app)

	// Routes behind the admin guard
	app.Use("/admin", guard.Protected(sessions, models.RoleAdmin))
	productHandler.RegisterAdminRoutes(app)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP server with graceful shutdown ---
	log.Printf("Starting shopfront on %s (backend %s)", appPort, baseURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// openSessionDB opens the session store: a Postgres DSN when one is
// configured, a local SQLite file otherwise.
func openSessionDB(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}
