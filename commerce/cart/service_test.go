package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tanpawarit/chative-wholesale-agent/commerce/catalog"
	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository, *catalog.MemoryRepository) {
	t.Helper()

	products := catalog.NewMemoryRepository(
		catalog.Product{ID: 1, Name: "Polo Blanco (M)", Price50: 100, Price100: 90, Price200: 80, Stock: 300, Available: true},
		catalog.Product{ID: 2, Name: "Jean Azul (32)", Price50: 200, Price100: 180, Price200: 150, Stock: 60, Available: true},
		catalog.Product{ID: 3, Name: "Gorra Roja (U)", Price50: 30, Price100: 25, Price200: 20, Stock: 1000, Available: false},
	)
	repo := NewMemoryRepository()
	svc := NewService(repo, catalog.NewService(products))
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, repo, products
}

func TestCreateAndUpdateRecomputesTotal(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, []LineInput{{ProductID: 1, Qty: 50}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Total != 5000 {
		t.Fatalf("Create().Total = %v, want 5000", c.Total)
	}
	if c.Items[0].UnitPrice != 100 || c.Items[0].ProductName != "Polo Blanco (M)" {
		t.Fatalf("Create().Items[0] = %+v", c.Items[0])
	}

	c, err = svc.Update(ctx, c.ID, []LineInput{{ProductID: 1, Qty: 150}})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if c.Total != 13500 {
		t.Fatalf("Update().Total = %v, want 13500", c.Total)
	}
	if len(c.Items) != 1 || c.Items[0].Qty != 150 || c.Items[0].UnitPrice != 90 {
		t.Fatalf("Update().Items = %+v, want one item at qty 150 priced 90", c.Items)
	}
}

func TestGetIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, []LineInput{{ProductID: 1, Qty: 200}, {ProductID: 2, Qty: 55}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first.Total != second.Total || first.Total != 200*80+55*200 {
		t.Fatalf("Get() totals = %v and %v, want %v", first.Total, second.Total, 200*80+55*200)
	}
}

func TestGetUsesCurrentTiers(t *testing.T) {
	t.Parallel()

	svc, _, products := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, []LineInput{{ProductID: 1, Qty: 50}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	repriced := catalog.Product{ID: 1, Name: "Polo Blanco (M)", Price50: 110, Price100: 90, Price200: 80, Stock: 300, Available: true}
	if err := products.Upsert(ctx, []catalog.Product{repriced}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := svc.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Total != 5500 {
		t.Fatalf("Get().Total = %v, want 5500", got.Total)
	}
}

func TestCreateEmptyItems(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)

	_, err := svc.Create(context.Background(), nil)
	if !errors.Is(err, errx.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}
	if len(repo.carts) != 0 {
		t.Fatalf("carts stored = %d, want 0", len(repo.carts))
	}
}

func TestCreateFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []LineInput
		want  error
	}{
		{name: "unknown product", items: []LineInput{{ProductID: 99, Qty: 50}}, want: errx.ErrNotFound},
		{name: "unavailable", items: []LineInput{{ProductID: 3, Qty: 50}}, want: errx.ErrConflict},
		{name: "insufficient stock", items: []LineInput{{ProductID: 2, Qty: 61}}, want: errx.ErrConflict},
		{name: "zero quantity", items: []LineInput{{ProductID: 1, Qty: 0}}, want: errx.ErrValidation},
		{name: "missing product id", items: []LineInput{{Qty: 50}}, want: errx.ErrValidation},
		{name: "second line fails", items: []LineInput{{ProductID: 1, Qty: 50}, {ProductID: 2, Qty: 500}}, want: errx.ErrConflict},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, repo, products := newTestService(t)
			_, err := svc.Create(context.Background(), tt.items)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Create() error = %v, want %v", err, tt.want)
			}
			if len(repo.carts) != 0 {
				t.Fatalf("carts stored = %d, want 0", len(repo.carts))
			}
			p, err := products.GetByID(context.Background(), 2)
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if p.Stock != 60 {
				t.Fatalf("stock = %d, want 60", p.Stock)
			}
		})
	}
}

func TestCreateMergesDuplicateProducts(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	c, err := svc.Create(context.Background(), []LineInput{{ProductID: 1, Qty: 50}, {ProductID: 1, Qty: 120}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Qty != 120 {
		t.Fatalf("Create().Items = %+v, want a single line at qty 120", c.Items)
	}
}

func TestUpdateRemoveAbsentIsNoop(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, []LineInput{{ProductID: 1, Qty: 50}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	svc.now = func() time.Time { return time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC) }
	got, err := svc.Update(ctx, c.ID, []LineInput{{ProductID: 2, Qty: 0}})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(got.Items) != 1 || got.Total != c.Total {
		t.Fatalf("Update() = %+v, want the cart unchanged", got)
	}
	if !got.UpdatedAt.Equal(c.UpdatedAt) {
		t.Fatalf("Update().UpdatedAt = %v, want %v", got.UpdatedAt, c.UpdatedAt)
	}

	got, err = svc.Update(ctx, c.ID, []LineInput{{ProductID: 1, Qty: 60}})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !got.UpdatedAt.After(c.UpdatedAt) {
		t.Fatalf("Update().UpdatedAt = %v, want it moved past %v", got.UpdatedAt, c.UpdatedAt)
	}
}

func TestUpdateRemovesAndInserts(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, []LineInput{{ProductID: 1, Qty: 50}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Update(ctx, c.ID, []LineInput{{ProductID: 1, Qty: 0}, {ProductID: 2, Qty: 60}})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ProductID != 2 {
		t.Fatalf("Update().Items = %+v, want only product 2", got.Items)
	}
	if got.Total != 12000 {
		t.Fatalf("Update().Total = %v, want 12000", got.Total)
	}
}

func TestUpdateFailures(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, 42, []LineInput{{ProductID: 1, Qty: 50}}); !errors.Is(err, errx.ErrNotFound) {
		t.Fatalf("Update(missing cart) error = %v, want ErrNotFound", err)
	}

	c, err := svc.Create(ctx, []LineInput{{ProductID: 1, Qty: 50}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Update(ctx, c.ID, []LineInput{{ProductID: 2, Qty: 100}}); !errors.Is(err, errx.ErrConflict) {
		t.Fatalf("Update(over stock) error = %v, want ErrConflict", err)
	}
	if _, err := svc.Update(ctx, c.ID, []LineInput{{ProductID: 1, Qty: -1}}); !errors.Is(err, errx.ErrValidation) {
		t.Fatalf("Update(negative) error = %v, want ErrValidation", err)
	}

	got, err := svc.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Total != 5000 {
		t.Fatalf("Get().Total = %v, want 5000 after rejected updates", got.Total)
	}
}

func TestGetMissingCart(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	if _, err := svc.Get(context.Background(), 7); !errors.Is(err, errx.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}
