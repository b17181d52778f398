package contract

import (
	"encoding/json"
	"time"
)

// ToolResult is the outcome of one tool execution. Failures never escape as Go
// errors past the dispatcher; they are carried here and shown to the model as
// {"error": true, "message": ...}.
type ToolResult struct {
	Tool    string
	Failed  bool
	Message string
	Data    any
}

type toolErrorEnvelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func ToolFailure(tool, message string) ToolResult {
	return ToolResult{Tool: tool, Failed: true, Message: message}
}

func ToolSuccess(tool string, data any) ToolResult {
	return ToolResult{Tool: tool, Data: data}
}

// Payload renders the result as the JSON content of a tool turn.
func (r ToolResult) Payload() string {
	var v any = r.Data
	if r.Failed {
		v = toolErrorEnvelope{Error: true, Message: r.Message}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		raw, _ = json.Marshal(toolErrorEnvelope{Error: true, Message: "tool result could not be encoded"})
	}
	return string(raw)
}

// ProductSummary is the product view shared with the model.
type ProductSummary struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price50     float64 `json:"price_50u"`
	Price100    float64 `json:"price_100u"`
	Price200    float64 `json:"price_200u"`
	Stock       int     `json:"stock"`
	Available   bool    `json:"available"`
	Color       string  `json:"color"`
	Size        string  `json:"size"`
	Category    string  `json:"category"`
	Type        string  `json:"type,omitempty"`
}

type SearchProductsResult struct {
	Count    int              `json:"count"`
	Products []ProductSummary `json:"products"`
}

type CartLineSummary struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Qty         int     `json:"qty"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

type CartSummary struct {
	ID        int64             `json:"id"`
	Items     []CartLineSummary `json:"items"`
	Total     float64           `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
