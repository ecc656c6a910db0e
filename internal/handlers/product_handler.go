package handlers

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shopfront/internal/api"
	"shopfront/internal/catalog"
	"shopfront/internal/models"
	"shopfront/internal/viewstate"
)

// ProductHandler handles the home page, the product listing with its
// filters, the product detail page, and the admin product panel.
type ProductHandler struct {
	products *api.ProductService
	validate *validator.Validate
	ceiling  float64
}

// NewProductHandler creates a new ProductHandler. ceiling is the configured
// maximum of the price filter control.
func NewProductHandler(products *api.ProductService, ceiling float64) *ProductHandler {
	return &ProductHandler{
		products: products,
		validate: validator.New(),
		ceiling:  ceiling,
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
	router.Get("/products", h.HandleListProducts)
	router.Get("/products/:slug", h.HandleProductDetail)
}

// RegisterAdminRoutes registers the product CRUD routes; the caller wraps
// the router with the admin guard.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	admin := router.Group("/admin/products")
	admin.Post("/", h.HandleCreateProduct)
	admin.Post("/image", h.HandleUploadImage)
}

// HandleHome renders the landing view: the category banners plus the
// newest products from an unfiltered fetch.
func (h *ProductHandler) HandleHome(c *fiber.Ctx) error {
	filter := catalog.Default(h.ceiling)
	products, err := h.products.List(c.Context(), filter.Query())
	if err != nil {
		log.Printf("Error loading home products: %v", err)
		return respondBackendError(c, "Could not load products", err)
	}

	return c.JSON(fiber.Map{
		"categories": catalog.Categories(),
		"products":   products,
	})
}

// HandleListProducts renders the product listing. The filter controls
// arrive as query parameters exactly as typed; they are parsed and applied
// here, once per explicit submit, never per keystroke.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter, err := h.buildFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid filter",
			"error":   err.Error(),
		})
	}

	products, err := h.products.List(c.Context(), filter.Query())
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return respondBackendError(c, "Could not load products", err)
	}

	return c.JSON(fiber.Map{
		"products":       products,
		"active_filters": filter.ActiveCount(),
		"filter": fiber.Map{
			"search":    filter.Search,
			"category":  filter.Category,
			"min_price": filter.MinPrice,
			"max_price": filter.MaxPrice,
			"sort":      filter.Sort,
		},
	})
}

// buildFilter reduces the submitted controls to a canonical filter state.
// Absent controls keep their defaults, so a bare /products request builds
// the same query as a reset.
func (h *ProductHandler) buildFilter(c *fiber.Ctx) (catalog.Filter, error) {
	filter := catalog.Default(h.ceiling)

	filter.Search = c.Query("search")
	if category := c.Query("category"); category != "" {
		filter.Category = catalog.Category(category)
	}
	if sort := c.Query("sort"); sort != "" {
		filter.Sort = sort
	}
	if page := c.QueryInt("page", catalog.DefaultPage); page >= 0 {
		filter.Page = page
	}

	minPrice, err := catalog.ParsePrice(c.Query("min_price"), 0)
	if err != nil {
		return catalog.Filter{}, err
	}
	maxPrice, err := catalog.ParsePrice(c.Query("max_price"), h.ceiling)
	if err != nil {
		return catalog.Filter{}, err
	}
	filter.MinPrice = minPrice
	filter.MaxPrice = maxPrice

	return filter, nil
}

// HandleProductDetail renders the product page. A missing product is a
// terminal empty view with a single way back to the listing, not an error
// banner.
func (h *ProductHandler) HandleProductDetail(c *fiber.Ctx) error {
	detail := viewstate.NewProductDetail()
	detail.Load(c.Context(), h.products, c.Params("slug"))

	product, ok := detail.Product()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
			"back":    "/products",
		})
	}

	return c.JSON(fiber.Map{
		"product": product,
		"on_sale": product.OnSale(),
	})
}

// HandleCreateProduct creates a catalog entry from the admin form.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create-product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if req.Slug == "" {
		req.Slug = Slugify(req.ProductName)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	product, err := h.products.Create(c.Context(), req)
	if err != nil {
		log.Printf("Error creating product %s: %v", req.ProductName, err)
		return respondBackendError(c, "Could not create product", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created",
		"product": product,
	})
}

// HandleUploadImage forwards an uploaded product image to the backend and
// returns its hosted URL.
func (h *ProductHandler) HandleUploadImage(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Image file is required",
			"error":   err.Error(),
		})
	}

	file, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not read uploaded file",
			"error":   err.Error(),
		})
	}
	defer file.Close()

	url, err := h.products.UploadImage(c.Context(), header.Filename, file)
	if err != nil {
		log.Printf("Error uploading image %s: %v", header.Filename, err)
		return respondBackendError(c, "Could not upload image", err)
	}

	return c.JSON(fiber.Map{"url": url})
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a product name, suffixed with a timestamp
// so repeated names stay unique.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return fmt.Sprintf("%s-%s", slug, strconv.FormatInt(time.Now().UnixMilli(), 10))
}
