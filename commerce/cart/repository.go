package cart

import (
	"context"
	"time"

	"github.com/tanpawarit/chative-wholesale-agent/commerce/catalog"
)

// Repository persists carts. Create and Apply are all-or-nothing.
type Repository interface {
	// Create inserts the cart and its items, filling in their ids.
	Create(ctx context.Context, c *Cart) error
	// Get returns errx.ErrNotFound when the cart does not exist.
	Get(ctx context.Context, id int64) (*Cart, error)
	// Apply upserts or removes items. UpdatedAt moves only when some item
	// row changed. It returns errx.ErrNotFound when the cart does not exist.
	Apply(ctx context.Context, id int64, changes []Change, now time.Time) error
}

// ProductReader resolves catalog products for validation and pricing.
type ProductReader interface {
	GetByID(ctx context.Context, id int64) (*catalog.Product, error)
}
