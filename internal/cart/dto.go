package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nhatminhle/fashio-backend/pkg/db/models"
)

// CartView is the read model returned to clients. Prices are resolved from
// the live variants at read time; the cart itself never stores money.
type CartView struct {
	ID       uuid.UUID       `json:"id"`
	UserID   uuid.UUID       `json:"user_id"`
	Items    []CartLineView  `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartLineView is a single cart line hydrated with current catalog data.
type CartLineView struct {
	ItemID      uuid.UUID       `json:"item_id"`
	VariantID   uuid.UUID       `json:"variant_id"`
	ProductName string          `json:"product_name"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	ImageURL    string          `json:"image_url,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	InStock     bool            `json:"in_stock"`
}

func buildCartView(cart *models.Cart) CartView {
	view := CartView{
		ID:       cart.ID,
		UserID:   cart.UserID,
		Items:    make([]CartLineView, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
	}

	for _, item := range cart.Items {
		line := CartLineView{
			ItemID:    item.ID,
			VariantID: item.ProductVariantID,
			Quantity:  item.Quantity,
		}
		if variant := item.ProductVariant; variant != nil {
			line.Color = variant.Color
			line.Size = variant.Size
			line.ImageURL = variant.ImageURL
			line.UnitPrice = variant.Price
			line.LineTotal = variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			line.InStock = variant.StockQuantity >= item.Quantity
			if variant.Product != nil {
				line.ProductName = variant.Product.Name
			}
			view.Subtotal = view.Subtotal.Add(line.LineTotal)
		}
		view.Items = append(view.Items, line)
	}

	return view
}
