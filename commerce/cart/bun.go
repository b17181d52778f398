package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
	"github.com/uptrace/bun"
)

// BunRepository stores carts in PostgreSQL.
type BunRepository struct {
	db bun.IDB
}

var _ Repository = (*BunRepository)(nil)

func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

// CreateSchema creates carts and cart_items. It expects the products table to exist.
func (r *BunRepository) CreateSchema(ctx context.Context) error {
	if _, err := r.db.NewCreateTable().
		Model((*Cart)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create carts table: %w", err)
	}
	if _, err := r.db.NewCreateTable().
		Model((*Item)(nil)).
		IfNotExists().
		ForeignKey(`("cart_id") REFERENCES "carts" ("id") ON DELETE CASCADE`).
		ForeignKey(`("product_id") REFERENCES "products" ("id")`).
		Exec(ctx); err != nil {
		return fmt.Errorf("create cart_items table: %w", err)
	}
	if _, err := r.db.NewCreateIndex().
		Model((*Item)(nil)).
		Index("cart_items_cart_product_key").
		Unique().
		Column("cart_id", "product_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create cart_items unique index: %w", err)
	}
	return nil
}

func (r *BunRepository) Create(ctx context.Context, c *Cart) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(c).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("insert cart: %w", err)
		}
		if len(c.Items) == 0 {
			return nil
		}
		for _, it := range c.Items {
			it.CartID = c.ID
		}
		if _, err := tx.NewInsert().Model(&c.Items).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("insert cart items: %w", err)
		}
		return nil
	})
}

func (r *BunRepository) Get(ctx context.Context, id int64) (*Cart, error) {
	c := new(Cart)
	err := r.db.NewSelect().
		Model(c).
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("ci.id ASC")
		}).
		Where("c.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errx.NotFound("cart %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select cart %d: %w", id, err)
	}
	return c, nil
}

func (r *BunRepository) Apply(ctx context.Context, id int64, changes []Change, now time.Time) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*Cart)(nil)).Where("c.id = ?", id).Exists(ctx)
		if err != nil {
			return fmt.Errorf("select cart %d: %w", id, err)
		}
		if !exists {
			return errx.NotFound("cart %d not found", id)
		}

		var affected int64
		for _, ch := range changes {
			var res sql.Result
			if ch.Qty == 0 {
				res, err = tx.NewDelete().
					Model((*Item)(nil)).
					Where("cart_id = ?", id).
					Where("product_id = ?", ch.ProductID).
					Exec(ctx)
				if err != nil {
					return fmt.Errorf("delete cart item %d: %w", ch.ProductID, err)
				}
			} else {
				item := &Item{CartID: id, ProductID: ch.ProductID, Qty: ch.Qty}
				res, err = tx.NewInsert().
					Model(item).
					On("CONFLICT (cart_id, product_id) DO UPDATE").
					Set("qty = EXCLUDED.qty").
					Exec(ctx)
				if err != nil {
					return fmt.Errorf("upsert cart item %d: %w", ch.ProductID, err)
				}
			}
			if n, err := res.RowsAffected(); err == nil {
				affected += n
			}
		}
		if affected == 0 {
			return nil
		}

		if _, err := tx.NewUpdate().
			Model((*Cart)(nil)).
			Set("updated_at = ?", now).
			Where("c.id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("touch cart: %w", err)
		}
		return nil
	})
}
