package contract

import (
	"context"

	"github.com/tanpawarit/chative-wholesale-agent/commerce/cart"
	"github.com/tanpawarit/chative-wholesale-agent/commerce/catalog"
)

// Catalog is the read side the tools search and inspect.
type Catalog interface {
	Search(ctx context.Context, query string) ([]catalog.Product, error)
	GetByID(ctx context.Context, id int64) (*catalog.Product, error)
}

// Carts is the write side behind the two mutating tools.
type Carts interface {
	Create(ctx context.Context, items []cart.LineInput) (*cart.Cart, error)
	Update(ctx context.Context, cartID int64, items []cart.LineInput) (*cart.Cart, error)
}

// Conversation is the chat boundary the channel adapters depend on.
type Conversation interface {
	ProcessMessage(ctx context.Context, userID string, text string) string
	ClearHistory(ctx context.Context, userID string)
}
