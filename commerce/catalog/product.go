package catalog

import (
	"strings"

	"github.com/tanpawarit/chative-wholesale-agent/commerce/pricing"
	"github.com/uptrace/bun"
)

// Product is a catalog entry. It is written only by Import and read everywhere else.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p" json:"-"`

	ID          int64   `bun:"id,pk,autoincrement" json:"id"`
	Name        string  `bun:"name,notnull" json:"name"`
	Description string  `bun:"description" json:"description"`
	Price50     float64 `bun:"price_50u,type:numeric(10,2),notnull" json:"price_50u"`
	Price100    float64 `bun:"price_100u,type:numeric(10,2),notnull" json:"price_100u"`
	Price200    float64 `bun:"price_200u,type:numeric(10,2),notnull" json:"price_200u"`
	Stock       int     `bun:"stock,notnull" json:"stock"`
	Available   bool    `bun:"available,notnull,default:true" json:"available"`
	Category    string  `bun:"category" json:"category"`
	Color       string  `bun:"color" json:"color"`
	Size        string  `bun:"size" json:"size"`
	Type        string  `bun:"type" json:"type"`

	// SearchText is the folded concatenation of the searchable facets.
	SearchText string `bun:"search_text,notnull" json:"-"`
}

func (p *Product) Tiers() pricing.Tiers {
	return pricing.Tiers{
		Price50:  p.Price50,
		Price100: p.Price100,
		Price200: p.Price200,
	}
}

// RefreshSearchText recomputes SearchText from the current facets.
func (p *Product) RefreshSearchText() {
	fields := []string{p.Name, p.Description, p.Color, p.Category, p.Type, p.Size}
	folded := make([]string, 0, len(fields))
	for _, f := range fields {
		if n := Normalize(f); n != "" {
			folded = append(folded, n)
		}
	}
	// Fields are joined with a separator that Normalize never produces so a
	// query cannot match across two facets.
	p.SearchText = strings.Join(folded, "\x1f")
}
