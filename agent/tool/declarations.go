package tool

import (
	"github.com/cloudwego/eino/schema"
)

func cartItemsParam(desc string) *schema.ParameterInfo {
	return &schema.ParameterInfo{
		Type:     schema.Array,
		Desc:     desc,
		Required: true,
		ElemInfo: &schema.ParameterInfo{
			Type: schema.Object,
			SubParams: map[string]*schema.ParameterInfo{
				"product_id": {Type: schema.Integer, Desc: "Numeric product id taken from searchProducts or getProductDetail.", Required: true},
				"qty":        {Type: schema.Integer, Desc: "Units. Minimum 50. Tiers: 50-99, 100-199, 200+. Use 0 in updateCart to remove the product.", Required: true},
			},
		},
	}
}

// Declarations returns the tool schemas bound to the chat model. The usage
// policy in each description is a prompting contract; Dispatch does not
// re-check it.
func Declarations() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolSearchProducts,
			Desc: `Search the catalog by garment type, color, size, category or description.
Use when the buyer names a garment, color, size or category ("pantalones verdes", "camiseta roja L").
Do not use for generic questions ("qué tenés"); ask what garment, color or size they want instead.
Do not use when you already know the product id (use getProductDetail) or when the buyer only confirms something.
Send a short singular query without articles, e.g. "pantalon verde L".`,
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {Type: schema.String, Desc: "Normalized search terms, e.g. \"camiseta roja L\".", Required: true},
			}),
		},
		{
			Name: ToolGetProductDetail,
			Desc: `Get full details of one product: the three volume prices, exact stock, description, color, size, category and type.
Use when the buyer asks for price, stock or details of a product already mentioned, and before creating a cart to check stock.
Do not use to search; use searchProducts.`,
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"productId": {Type: schema.Integer, Desc: "Numeric product id.", Required: true},
			}),
		},
		{
			Name: ToolCreateCart,
			Desc: `Create a new cart. Mutating action: requires explicit buyer confirmation first.
Required flow: the buyer states what and how many; you compute the total with the right tier and ask "¿Confirmás 100u de <producto> por $<total>?"; the buyer answers yes; only then call createCart.
Do not call when the buyer is only exploring, when there was no explicit confirmation, when you do not know the product id, or when the quantity exceeds stock or is below 50.`,
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"items": cartItemsParam("Products to put in the cart, one entry per product."),
			}),
		},
		{
			Name: ToolUpdateCart,
			Desc: `Change quantities in an existing cart, add products to it, or remove them with qty 0.
Mutating action: confirm the change and the new total with the buyer before calling.
Use only with a cart id returned earlier by createCart in this conversation.`,
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"cartId": {Type: schema.Integer, Desc: "Cart id returned by createCart.", Required: true},
				"items":  cartItemsParam("Lines to set. qty 0 removes the product; other quantities replace the current one."),
			}),
		},
	}
}
