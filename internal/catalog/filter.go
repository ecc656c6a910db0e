// Package catalog holds the product-listing filter builder: it reduces the
// independently controlled filter inputs into the minimal request query and
// knows when no filter is active.
package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Category is the product-type filter enumeration.
type Category string

// CategoryAll is the sentinel meaning "no category constraint". It is
// omitted from the request, never sent literally, because the backend
// treats absence-of-field and explicit values differently.
const CategoryAll Category = "all"

// Categories available in the listing filter.
const (
	CategoryTops        Category = "Tops"
	CategoryBottoms     Category = "Bottoms"
	CategoryShoes       Category = "Shoes"
	CategoryAccessories Category = "Accessories"
)

// Categories lists the selectable categories, starting with the sentinel.
func Categories() []Category {
	return []Category{CategoryAll, CategoryTops, CategoryBottoms, CategoryShoes, CategoryAccessories}
}

// SortNewest is the default sort key.
const SortNewest = "newest"

// Listing pagination defaults.
const (
	DefaultPage  = 0
	DefaultLimit = 20
)

// Filter is the transient, UI-local filter state for the product listing.
// It is rebuilt each session and never persisted.
type Filter struct {
	Search   string
	Category Category
	MinPrice float64
	MaxPrice float64
	Sort     string
	Page     int
	Limit    int

	// Ceiling is the configured maximum of the price control. A MaxPrice
	// equal to it means "unbounded" and is omitted from the request.
	Ceiling float64
}

// Default returns the filter state of a fresh page load. Resetting the
// controls must return to exactly this value.
func Default(ceiling float64) Filter {
	return Filter{
		Search:   "",
		Category: CategoryAll,
		MinPrice: 0,
		MaxPrice: ceiling,
		Sort:     SortNewest,
		Page:     DefaultPage,
		Limit:    DefaultLimit,
		Ceiling:  ceiling,
	}
}

// Reset returns the filter to its defaults, keeping the configured ceiling.
func (f Filter) Reset() Filter {
	return Default(f.Ceiling)
}

// Query builds the request query. Only fields deviating from their defaults
// appear; omission, not an empty value, signals "no constraint". Page and
// limit are always present so a reset produces a byte-identical query to
// the very first page load.
func (f Filter) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))

	if search := strings.TrimSpace(f.Search); search != "" {
		q.Set("search", search)
	}
	if f.Category != CategoryAll && f.Category != "" {
		q.Set("product_type", string(f.Category))
	}
	if f.MinPrice > 0 {
		q.Set("min_price", formatPrice(f.MinPrice))
	}
	if f.MaxPrice < f.Ceiling {
		q.Set("max_price", formatPrice(f.MaxPrice))
	}
	if f.Sort != "" && f.Sort != SortNewest {
		q.Set("sort", f.Sort)
	}
	return q
}

// ActiveCount counts how many of the three filter groups (search, category,
// price range) deviate from default. It feeds the UI badge only; request
// construction never consults it.
func (f Filter) ActiveCount() int {
	count := 0
	if strings.TrimSpace(f.Search) != "" {
		count++
	}
	if f.Category != CategoryAll && f.Category != "" {
		count++
	}
	if f.MinPrice > 0 || f.MaxPrice < f.Ceiling {
		count++
	}
	return count
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParsePrice converts a typed price bound to a number. The inputs are free
// text until the user applies the filter, so this runs once per apply, not
// per keystroke. An empty string yields the given fallback.
func ParsePrice(input string, fallback float64) (float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", input)
	}
	if v < 0 {
		return 0, fmt.Errorf("price must not be negative")
	}
	return v, nil
}
