package models

import "strconv"

// ProductSize is a per-size stock entry for a product.
type ProductSize struct {
	SizeID        int    `json:"size_id"`
	Size          string `json:"size"`
	StockQuantity int    `json:"stock_quantity"`
}

// ProductColor is a colour variant, optionally with its own image.
type ProductColor struct {
	ID       int    `json:"id"`
	Color    string `json:"color"`
	ImageURL string `json:"image_url,omitempty"`
}

// Product is a read-only catalog entry. Admin create/update is the only
// write path and goes through the products service.
type Product struct {
	ID          int            `json:"id"`
	ProductID   string         `json:"product_id"`
	Slug        string         `json:"slug,omitempty"`
	ProductType string         `json:"product_type"`
	ProductName string         `json:"product_name"`
	Price       float64        `json:"price"`
	SalePrice   float64        `json:"sale_price,omitempty"`
	Blurb       string         `json:"blurb,omitempty"`
	Stock       int            `json:"stock"`
	ImageURL    string         `json:"image_url,omitempty"`
	Sizes       []ProductSize  `json:"sizes"`
	Colors      []ProductColor `json:"colors"`
}

// OnSale reports whether the product carries an active discount.
func (p Product) OnSale() bool {
	return p.SalePrice > 0 && p.SalePrice < p.Price
}

// EffectivePrice returns the price a buyer pays right now.
func (p Product) EffectivePrice() float64 {
	if p.OnSale() {
		return p.SalePrice
	}
	return p.Price
}

// NormalizeProduct fills the optional fields the backend may omit: nil
// size/colour slices become empty, and the legacy string product_id mirrors
// the numeric id.
func NormalizeProduct(p Product) Product {
	p.ProductID = strconv.Itoa(p.ID)
	if p.Sizes == nil {
		p.Sizes = []ProductSize{}
	}
	if p.Colors == nil {
		p.Colors = []ProductColor{}
	}
	return p
}

// CreateProductRequest is the admin payload for creating a product.
type CreateProductRequest struct {
	Slug        string         `json:"slug" validate:"required"`
	ProductType string         `json:"product_type" validate:"required"`
	ProductName string         `json:"product_name" validate:"required"`
	Price       float64        `json:"price" validate:"required,gt=0"`
	SalePrice   float64        `json:"sale_price,omitempty" validate:"omitempty,gt=0,ltfield=Price"`
	Blurb       string         `json:"blurb,omitempty"`
	Description string         `json:"description,omitempty"`
	Stock       int            `json:"stock" validate:"gte=0"`
	ImageURL    string         `json:"image_url,omitempty"`
	Sizes       []ProductSize  `json:"sizes"`
	Colors      []ProductColor `json:"colors"`
}

// UploadResult is the backend's answer to an image upload.
type UploadResult struct {
	URL string `json:"url"`
}
