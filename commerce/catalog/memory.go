package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
)

// MemoryRepository keeps products in process memory. Products are matched by
// name on Upsert, mirroring the unique name index of the SQL schema.
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[int64]Product
	byName   map[string]int64
	nextID   int64
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository(seed ...Product) *MemoryRepository {
	r := &MemoryRepository{
		products: make(map[int64]Product, len(seed)),
		byName:   make(map[string]int64, len(seed)),
	}
	_ = r.Upsert(context.Background(), seed)
	return r
}

func (r *MemoryRepository) Search(_ context.Context, needle string, limit int) ([]Product, error) {
	return r.collect(limit, func(p Product) bool {
		return strings.Contains(p.SearchText, needle)
	}), nil
}

func (r *MemoryRepository) ListAvailable(_ context.Context, limit int) ([]Product, error) {
	return r.collect(limit, func(p Product) bool {
		return p.Available
	}), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, errx.NotFound("product %d not found", id)
	}
	return &p, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, products []Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range products {
		p.RefreshSearchText()
		if p.ID == 0 {
			if id, ok := r.byName[p.Name]; ok {
				p.ID = id
			} else {
				r.nextID++
				p.ID = r.nextID
			}
		} else if p.ID > r.nextID {
			r.nextID = p.ID
		}
		r.products[p.ID] = p
		r.byName[p.Name] = p.ID
	}
	return nil
}

func (r *MemoryRepository) collect(limit int, match func(Product) bool) []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Product, 0, limit)
	for _, id := range ids {
		if len(out) >= limit {
			break
		}
		if p := r.products[id]; match(p) {
			out = append(out, p)
		}
	}
	return out
}
