package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
	"github.com/uptrace/bun"
)

// BunRepository stores products in PostgreSQL.
type BunRepository struct {
	db bun.IDB
}

var _ Repository = (*BunRepository)(nil)

func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

// CreateSchema creates the products table and its unique name index.
func (r *BunRepository) CreateSchema(ctx context.Context) error {
	if _, err := r.db.NewCreateTable().
		Model((*Product)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	if _, err := r.db.NewCreateIndex().
		Model((*Product)(nil)).
		Index("products_name_key").
		Unique().
		Column("name").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create products name index: %w", err)
	}
	return nil
}

func (r *BunRepository) Search(ctx context.Context, needle string, limit int) ([]Product, error) {
	var products []Product
	err := r.db.NewSelect().
		Model(&products).
		Where("p.search_text LIKE ?", "%"+escapeLike(needle)+"%").
		OrderExpr("p.id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select products by text: %w", err)
	}
	return products, nil
}

func (r *BunRepository) ListAvailable(ctx context.Context, limit int) ([]Product, error) {
	var products []Product
	err := r.db.NewSelect().
		Model(&products).
		Where("p.available = TRUE").
		OrderExpr("p.id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select available products: %w", err)
	}
	return products, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	p := new(Product)
	err := r.db.NewSelect().
		Model(p).
		Where("p.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errx.NotFound("product %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select product %d: %w", id, err)
	}
	return p, nil
}

func (r *BunRepository) Upsert(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	for i := range products {
		products[i].RefreshSearchText()
	}
	_, err := r.db.NewInsert().
		Model(&products).
		ExcludeColumn("id").
		On("CONFLICT (name) DO UPDATE").
		Set("description = EXCLUDED.description").
		Set("price_50u = EXCLUDED.price_50u").
		Set("price_100u = EXCLUDED.price_100u").
		Set("price_200u = EXCLUDED.price_200u").
		Set("stock = EXCLUDED.stock").
		Set("available = EXCLUDED.available").
		Set("category = EXCLUDED.category").
		Set("color = EXCLUDED.color").
		Set("size = EXCLUDED.size").
		Set("type = EXCLUDED.type").
		Set("search_text = EXCLUDED.search_text").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert products: %w", err)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
