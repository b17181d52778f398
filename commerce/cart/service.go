package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tanpawarit/chative-wholesale-agent/commerce/catalog"
	"github.com/tanpawarit/chative-wholesale-agent/commerce/pricing"
	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
)

type Service struct {
	repo     Repository
	products ProductReader
	now      func() time.Time
}

func NewService(repo Repository, products ProductReader) *Service {
	return &Service{
		repo:     repo,
		products: products,
		now:      time.Now,
	}
}

// Create validates every line before writing anything, then stores the cart
// and its items in a single transaction.
func (s *Service) Create(ctx context.Context, items []LineInput) (*Cart, error) {
	if len(items) == 0 {
		return nil, errx.Validation("cart must contain at least one item")
	}

	lines := mergeLines(items)
	for _, line := range lines {
		if line.ProductID <= 0 {
			return nil, errx.Validation("product_id must be a positive integer")
		}
		if line.Qty <= 0 {
			return nil, errx.Validation("quantity for product %d must be greater than zero", line.ProductID)
		}
		if _, err := s.checkProduct(ctx, line); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	c := &Cart{
		CreatedAt: now,
		UpdatedAt: now,
		Items:     make([]*Item, 0, len(lines)),
	}
	for _, line := range lines {
		c.Items = append(c.Items, &Item{ProductID: line.ProductID, Qty: line.Qty})
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	logx.Ctx(ctx).Info().Int64("cart_id", c.ID).Int("items", len(c.Items)).Msg("cart created")
	return s.Get(ctx, c.ID)
}

// Update applies lines to an existing cart. Qty zero removes the product and
// is a no-op when the product is not in the cart.
func (s *Service) Update(ctx context.Context, cartID int64, items []LineInput) (*Cart, error) {
	if _, err := s.repo.Get(ctx, cartID); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errx.Validation("update must contain at least one item")
	}

	lines := mergeLines(items)
	changes := make([]Change, 0, len(lines))
	for _, line := range lines {
		if line.ProductID <= 0 {
			return nil, errx.Validation("product_id must be a positive integer")
		}
		if line.Qty < 0 {
			return nil, errx.Validation("quantity for product %d must not be negative", line.ProductID)
		}
		if line.Qty > 0 {
			if _, err := s.checkProduct(ctx, line); err != nil {
				return nil, err
			}
		}
		changes = append(changes, Change(line))
	}

	if err := s.repo.Apply(ctx, cartID, changes, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("update cart %d: %w", cartID, err)
	}

	logx.Ctx(ctx).Info().Int64("cart_id", cartID).Int("changes", len(changes)).Msg("cart updated")
	return s.Get(ctx, cartID)
}

// Get loads a cart and prices it with the current tiers.
func (s *Service) Get(ctx context.Context, cartID int64) (*Cart, error) {
	c, err := s.repo.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := s.price(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) price(ctx context.Context, c *Cart) error {
	var total float64
	for _, it := range c.Items {
		p, err := s.products.GetByID(ctx, it.ProductID)
		if errors.Is(err, errx.ErrNotFound) {
			logx.Ctx(ctx).Warn().Int64("cart_id", c.ID).Int64("product_id", it.ProductID).Msg("cart item references missing product")
			it.UnitPrice, it.Subtotal = 0, 0
			continue
		}
		if err != nil {
			return fmt.Errorf("price cart %d: %w", c.ID, err)
		}
		it.ProductName = p.Name
		it.UnitPrice = pricing.UnitPrice(p.Tiers(), it.Qty)
		it.Subtotal = pricing.LineTotal(p.Tiers(), it.Qty)
		total += it.Subtotal
	}
	c.Total = pricing.RoundCents(total)
	return nil
}

func (s *Service) checkProduct(ctx context.Context, line LineInput) (*catalog.Product, error) {
	p, err := s.products.GetByID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.Available {
		return nil, errx.Conflict("product %s is not available", p.Name)
	}
	if line.Qty > p.Stock {
		return nil, errx.Conflict("insufficient stock for %s: available %d", p.Name, p.Stock)
	}
	return p, nil
}

// mergeLines collapses repeated products, keeping first-seen order and the
// last quantity given.
func mergeLines(items []LineInput) []LineInput {
	out := make([]LineInput, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			out[i].Qty = it.Qty
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}
