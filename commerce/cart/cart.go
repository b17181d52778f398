package cart

import (
	"time"

	"github.com/uptrace/bun"
)

// Cart is a buyer's quote. Total and the per-item price fields are computed on
// every read and never persisted.
type Cart struct {
	bun.BaseModel `bun:"table:carts,alias:c" json:"-"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
	Items     []*Item   `bun:"rel:has-many,join:id=cart_id" json:"items"`

	Total float64 `bun:"-" json:"total"`
}

// Item is one product line. A cart holds at most one item per product.
type Item struct {
	bun.BaseModel `bun:"table:cart_items,alias:ci" json:"-"`

	ID        int64 `bun:"id,pk,autoincrement" json:"id"`
	CartID    int64 `bun:"cart_id,notnull" json:"cart_id"`
	ProductID int64 `bun:"product_id,notnull" json:"product_id"`
	Qty       int   `bun:"qty,notnull" json:"qty"`

	ProductName string  `bun:"-" json:"product_name"`
	UnitPrice   float64 `bun:"-" json:"unit_price"`
	Subtotal    float64 `bun:"-" json:"subtotal"`
}

// LineInput is a requested (product, quantity) pair.
type LineInput struct {
	ProductID int64 `json:"product_id"`
	Qty       int   `json:"qty"`
}

// Change is a validated write against a cart. Qty zero removes the item.
type Change struct {
	ProductID int64
	Qty       int
}

func (c *Cart) clone() *Cart {
	out := *c
	out.Items = make([]*Item, 0, len(c.Items))
	for _, it := range c.Items {
		cp := *it
		out.Items = append(out.Items, &cp)
	}
	return &out
}
