package catalog

import "context"

// Repository is the persistence port of the catalog.
type Repository interface {
	// Search returns products whose SearchText contains needle, ordered by id.
	Search(ctx context.Context, needle string, limit int) ([]Product, error)
	ListAvailable(ctx context.Context, limit int) ([]Product, error)
	// GetByID returns errx.ErrNotFound when the product does not exist.
	GetByID(ctx context.Context, id int64) (*Product, error)
	Upsert(ctx context.Context, products []Product) error
}
