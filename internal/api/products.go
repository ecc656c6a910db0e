package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"shopfront/internal/models"
)

// ProductService maps catalog actions onto backend endpoints.
type ProductService struct {
	client *Client
}

// NewProductService creates a new ProductService.
func NewProductService(client *Client) *ProductService {
	return &ProductService{client: client}
}

// List fetches products matching the given query. The query comes from the
// filter builder and contains only the constraints that are actually active.
// Results are normalized before return.
func (s *ProductService) List(ctx context.Context, query url.Values) ([]models.Product, error) {
	var products []models.Product
	if err := s.client.do(ctx, http.MethodGet, "/products", query, nil, &products); err != nil {
		return nil, err
	}
	for i := range products {
		products[i] = models.NormalizeProduct(products[i])
	}
	return products, nil
}

// Get fetches a single product by slug.
func (s *ProductService) Get(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := s.client.do(ctx, http.MethodGet, "/products/"+url.PathEscape(slug), nil, nil, &product); err != nil {
		return nil, err
	}
	product = models.NormalizeProduct(product)
	return &product, nil
}

// Create creates a new product. Admin only; the guard enforces that before
// this is ever reached, and the backend enforces it again.
func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	var product models.Product
	if err := s.client.do(ctx, http.MethodPost, "/products", nil, req, &product); err != nil {
		return nil, err
	}
	product = models.NormalizeProduct(product)
	return &product, nil
}

// UploadImage uploads a product image and returns its hosted URL.
func (s *ProductService) UploadImage(ctx context.Context, fileName string, file io.Reader) (string, error) {
	var result models.UploadResult
	if err := s.client.upload(ctx, "/upload-image", "file", fileName, file, &result); err != nil {
		return "", err
	}
	return result.URL, nil
}
