package viewstate

import (
	"context"
	"sync"

	"shopfront/internal/api"
	"shopfront/internal/models"
)

// DetailState is the product-detail page state.
type DetailState int

const (
	// DetailLoading is the state on entering a product route.
	DetailLoading DetailState = iota
	// DetailFound holds a product payload.
	DetailFound
	// DetailNotFound is terminal for the current navigation; the only
	// recovery is navigating back to the listing. There is no retry.
	DetailNotFound
)

// ProductDetail drives the loading -> {found, not_found} machine for one
// product view. A fresh navigation restarts it in loading; stale fetches
// from an earlier navigation can no longer change what is shown.
type ProductDetail struct {
	mu      sync.RWMutex
	state   DetailState
	product *models.Product
	seq     Sequencer
}

// NewProductDetail creates the view state in loading.
func NewProductDetail() *ProductDetail {
	return &ProductDetail{state: DetailLoading}
}

// Load fetches the product behind slug and resolves the state machine.
// An error or empty payload resolves to not found; there is no distinction
// surfaced to the visitor and no automatic retry.
func (d *ProductDetail) Load(ctx context.Context, products *api.ProductService, slug string) {
	seq := d.seq.Next()

	d.mu.Lock()
	d.state = DetailLoading
	d.product = nil
	d.mu.Unlock()

	product, err := products.Get(ctx, slug)

	d.seq.Apply(seq, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if err != nil || product == nil {
			d.state = DetailNotFound
			d.product = nil
			return
		}
		d.state = DetailFound
		d.product = product
	})
}

// State returns the current machine state.
func (d *ProductDetail) State() DetailState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Product returns the loaded product when the state is found.
func (d *ProductDetail) Product() (models.Product, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.state != DetailFound || d.product == nil {
		return models.Product{}, false
	}
	return *d.product, true
}
