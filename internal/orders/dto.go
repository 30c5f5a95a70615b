package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nhatminhle/fashio-backend/pkg/db/models"
	"github.com/nhatminhle/fashio-backend/pkg/enums"
)

// ShippingInfo is the delivery data captured at checkout.
type ShippingInfo struct {
	Address      string
	PhoneNumber  string
	CustomerName string
}

// OrderView is the read model returned from order endpoints.
type OrderView struct {
	ID              uuid.UUID           `json:"id"`
	OrderDate       time.Time           `json:"order_date"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	TotalPrice      decimal.Decimal     `json:"total_price"`
	ShippingAddress string              `json:"shipping_address"`
	PhoneNumber     string              `json:"phone_number"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email,omitempty"`
	Items           []OrderLineView     `json:"items,omitempty"`
}

// OrderLineView exposes the frozen per-line snapshot.
type OrderLineView struct {
	ID          uuid.UUID       `json:"id"`
	VariantID   uuid.UUID       `json:"variant_id"`
	ProductName string          `json:"product_name"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	ImageURL    string          `json:"image_url,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderList is a cursor page of the caller's orders.
type OrderList struct {
	Orders     []OrderView `json:"orders"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}

// BuildOrderView maps a persisted order onto the read model.
func BuildOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:              order.ID,
		OrderDate:       order.OrderDate,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		TotalPrice:      order.TotalPrice,
		ShippingAddress: order.ShippingAddress,
		PhoneNumber:     order.PhoneNumber,
		CustomerName:    order.CustomerName,
	}
	if order.User != nil {
		view.CustomerEmail = order.User.Email
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, OrderLineView{
			ID:          item.ID,
			VariantID:   item.ProductVariantID,
			ProductName: item.SnapshotName,
			Color:       item.SnapshotColor,
			Size:        item.SnapshotSize,
			ImageURL:    item.SnapshotImageURL,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return view
}
