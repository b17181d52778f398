package cart

import (
	"context"
	"sync"
	"time"

	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
)

type MemoryRepository struct {
	mu         sync.RWMutex
	carts      map[int64]*Cart
	nextCartID int64
	nextItemID int64
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[int64]*Cart)}
}

func (r *MemoryRepository) Create(_ context.Context, c *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextCartID++
	c.ID = r.nextCartID
	for _, it := range c.Items {
		r.nextItemID++
		it.ID = r.nextItemID
		it.CartID = c.ID
	}
	r.carts[c.ID] = c.clone()
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (*Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[id]
	if !ok {
		return nil, errx.NotFound("cart %d not found", id)
	}
	return c.clone(), nil
}

func (r *MemoryRepository) Apply(_ context.Context, id int64, changes []Change, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[id]
	if !ok {
		return errx.NotFound("cart %d not found", id)
	}

	changed := false
	for _, ch := range changes {
		idx := -1
		for i, it := range c.Items {
			if it.ProductID == ch.ProductID {
				idx = i
				break
			}
		}
		switch {
		case ch.Qty == 0 && idx >= 0:
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			changed = true
		case ch.Qty == 0:
		case idx >= 0:
			c.Items[idx].Qty = ch.Qty
			changed = true
		default:
			changed = true
			r.nextItemID++
			c.Items = append(c.Items, &Item{
				ID:        r.nextItemID,
				CartID:    c.ID,
				ProductID: ch.ProductID,
				Qty:       ch.Qty,
			})
		}
	}
	if changed {
		c.UpdatedAt = now
	}
	return nil
}
