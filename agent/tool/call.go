package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/chative-wholesale-agent/agent/contract"
)

const (
	ToolSearchProducts   = "searchProducts"
	ToolGetProductDetail = "getProductDetail"
	ToolCreateCart       = "createCart"
	ToolUpdateCart       = "updateCart"
)

// Call is one tool invocation requested by the model. The set of
// implementations is closed: SearchProducts, GetProductDetail, CreateCart and
// UpdateCart.
type Call interface {
	Name() string
	isCall()
}

type SearchProducts struct {
	Query string `json:"query"`
}

type GetProductDetail struct {
	ProductID Int `json:"productId"`
}

type CreateCart struct {
	Items []CartLine `json:"items"`
}

type UpdateCart struct {
	CartID Int        `json:"cartId"`
	Items  []CartLine `json:"items"`
}

type CartLine struct {
	ProductID Int `json:"product_id"`
	Qty       Int `json:"qty"`
}

func (SearchProducts) Name() string   { return ToolSearchProducts }
func (GetProductDetail) Name() string { return ToolGetProductDetail }
func (CreateCart) Name() string       { return ToolCreateCart }
func (UpdateCart) Name() string       { return ToolUpdateCart }

func (SearchProducts) isCall()   {}
func (GetProductDetail) isCall() {}
func (CreateCart) isCall()       {}
func (UpdateCart) isCall()       {}

// Int is an integer argument that also accepts numeric strings and whole
// floats, since models are loose about JSON number formatting.
type Int int64

func (v *Int) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = 0
		return nil
	}
	raw := string(b)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*v = Int(n)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int64(f)) {
		return fmt.Errorf("%q is not an integer", string(b))
	}
	*v = Int(int64(f))
	return nil
}

// ParseCall decodes a model tool call into its typed form. It is the only place
// a tool name string is interpreted.
func ParseCall(name string, rawArgs string) (Call, error) {
	name = strings.TrimSpace(name)
	rawArgs = strings.TrimSpace(rawArgs)
	if rawArgs == "" {
		rawArgs = "{}"
	}

	switch name {
	case ToolSearchProducts:
		var c SearchProducts
		if err := decodeArgs(name, rawArgs, &c); err != nil {
			return nil, err
		}
		return c, nil
	case ToolGetProductDetail:
		var c GetProductDetail
		if err := decodeArgs(name, rawArgs, &c); err != nil {
			return nil, err
		}
		if c.ProductID <= 0 {
			return nil, fmt.Errorf("%w: tool=%s requires a positive productId", contractx.ErrSchemaViolation, name)
		}
		return c, nil
	case ToolCreateCart:
		var c CreateCart
		if err := decodeArgs(name, rawArgs, &c); err != nil {
			return nil, err
		}
		return c, nil
	case ToolUpdateCart:
		var c UpdateCart
		if err := decodeArgs(name, rawArgs, &c); err != nil {
			return nil, err
		}
		if c.CartID <= 0 {
			return nil, fmt.Errorf("%w: tool=%s requires a positive cartId", contractx.ErrSchemaViolation, name)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: unknown tool=%q", contractx.ErrSchemaViolation, name)
	}
}

func decodeArgs(tool string, rawArgs string, dst any) error {
	if err := json.Unmarshal([]byte(rawArgs), dst); err != nil {
		return fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
	}
	return nil
}
