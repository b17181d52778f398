package tool

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/chative-wholesale-agent/agent/contract"
	"github.com/tanpawarit/chative-wholesale-agent/commerce/cart"
	"github.com/tanpawarit/chative-wholesale-agent/commerce/catalog"
	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
	"github.com/tanpawarit/chative-wholesale-agent/pkg/metrics"
)

// Dispatcher executes typed tool calls against the catalog and cart store.
type Dispatcher struct {
	catalog contractx.Catalog
	carts   contractx.Carts
}

func NewDispatcher(catalog contractx.Catalog, carts contractx.Carts) (*Dispatcher, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if carts == nil {
		return nil, errors.New("cart store is required")
	}
	return &Dispatcher{catalog: catalog, carts: carts}, nil
}

// Execute parses and dispatches a raw model tool call. Malformed calls come
// back as failure results, never as errors.
func (d *Dispatcher) Execute(ctx context.Context, name string, rawArgs string) contractx.ToolResult {
	call, err := ParseCall(name, rawArgs)
	if err != nil {
		logx.Ctx(ctx).Warn().Err(err).Str("tool", name).Msg("rejected tool call")
		metrics.ObserveToolCall(metricLabel(name), true)
		return contractx.ToolFailure(name, fmt.Sprintf("invalid call to %s: check the tool name and arguments", name))
	}
	return d.Dispatch(ctx, call)
}

// Dispatch runs call and wraps every outcome in a ToolResult.
func (d *Dispatcher) Dispatch(ctx context.Context, call Call) contractx.ToolResult {
	if call == nil {
		return contractx.ToolFailure("", "empty tool call")
	}

	var res contractx.ToolResult
	switch c := call.(type) {
	case SearchProducts:
		res = d.searchProducts(ctx, c)
	case GetProductDetail:
		res = d.getProductDetail(ctx, c)
	case CreateCart:
		res = d.createCart(ctx, c)
	case UpdateCart:
		res = d.updateCart(ctx, c)
	default:
		res = contractx.ToolFailure(call.Name(), "unsupported tool")
	}

	metrics.ObserveToolCall(res.Tool, res.Failed)
	event := logx.Ctx(ctx).Debug()
	if res.Failed {
		event = logx.Ctx(ctx).Info().Str("message", res.Message)
	}
	event.Str("tool", res.Tool).Bool("failed", res.Failed).Msg("tool executed")
	return res
}

func (d *Dispatcher) searchProducts(ctx context.Context, c SearchProducts) contractx.ToolResult {
	products, err := d.catalog.Search(ctx, c.Query)
	if err != nil {
		return failure(ctx, c.Name(), err)
	}
	out := contractx.SearchProductsResult{
		Count:    len(products),
		Products: make([]contractx.ProductSummary, 0, len(products)),
	}
	for i := range products {
		out.Products = append(out.Products, summarizeProduct(&products[i], false))
	}
	return contractx.ToolSuccess(c.Name(), out)
}

func (d *Dispatcher) getProductDetail(ctx context.Context, c GetProductDetail) contractx.ToolResult {
	p, err := d.catalog.GetByID(ctx, int64(c.ProductID))
	if err != nil {
		return failure(ctx, c.Name(), err)
	}
	return contractx.ToolSuccess(c.Name(), summarizeProduct(p, true))
}

func (d *Dispatcher) createCart(ctx context.Context, c CreateCart) contractx.ToolResult {
	created, err := d.carts.Create(ctx, toLineInputs(c.Items))
	if err != nil {
		return failure(ctx, c.Name(), err)
	}
	return contractx.ToolSuccess(c.Name(), summarizeCart(created))
}

func (d *Dispatcher) updateCart(ctx context.Context, c UpdateCart) contractx.ToolResult {
	updated, err := d.carts.Update(ctx, int64(c.CartID), toLineInputs(c.Items))
	if err != nil {
		return failure(ctx, c.Name(), err)
	}
	return contractx.ToolSuccess(c.Name(), summarizeCart(updated))
}

// failure keeps taxonomy messages and hides anything else.
func failure(ctx context.Context, tool string, err error) contractx.ToolResult {
	var appErr *errx.AppError
	if !errors.As(err, &appErr) {
		logx.Ctx(ctx).Error().Err(err).Str("tool", tool).Msg("tool failed")
	}
	return contractx.ToolFailure(tool, errx.Message(err))
}

func toLineInputs(lines []CartLine) []cart.LineInput {
	out := make([]cart.LineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, cart.LineInput{ProductID: int64(l.ProductID), Qty: int(l.Qty)})
	}
	return out
}

func summarizeProduct(p *catalog.Product, withType bool) contractx.ProductSummary {
	s := contractx.ProductSummary{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price50:     p.Price50,
		Price100:    p.Price100,
		Price200:    p.Price200,
		Stock:       p.Stock,
		Available:   p.Available,
		Color:       p.Color,
		Size:        p.Size,
		Category:    p.Category,
	}
	if withType {
		s.Type = p.Type
	}
	return s
}

func summarizeCart(c *cart.Cart) contractx.CartSummary {
	out := contractx.CartSummary{
		ID:        c.ID,
		Items:     make([]contractx.CartLineSummary, 0, len(c.Items)),
		Total:     c.Total,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, it := range c.Items {
		out.Items = append(out.Items, contractx.CartLineSummary{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Qty:         it.Qty,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return out
}

// metricLabel keeps model-supplied names out of metric labels unless they
// name a declared tool.
func metricLabel(name string) string {
	switch name {
	case ToolSearchProducts, ToolGetProductDetail, ToolCreateCart, ToolUpdateCart:
		return name
	default:
		return metrics.UnknownTool
	}
}
