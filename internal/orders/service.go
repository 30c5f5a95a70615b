package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nhatminhle/fashio-backend/internal/cart"
	"github.com/nhatminhle/fashio-backend/internal/catalog"
	"github.com/nhatminhle/fashio-backend/pkg/db/models"
	"github.com/nhatminhle/fashio-backend/pkg/enums"
	pkgerrors "github.com/nhatminhle/fashio-backend/pkg/errors"
	"github.com/nhatminhle/fashio-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service converts carts into orders and exposes order reads and the
// privileged shipping-status update.
type Service interface {
	CreateOrderFromCart(ctx context.Context, userID uuid.UUID, shipping ShippingInfo) (*OrderView, error)
	GetOrder(ctx context.Context, userID uuid.UUID, isStaff bool, orderID uuid.UUID) (*OrderView, error)
	GetMyOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderView, error)
}

type service struct {
	repo     Repository
	carts    cart.CartRepository
	variants catalog.VariantRepository
	tx       txRunner
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, carts cart.CartRepository, variants catalog.VariantRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, carts: carts, variants: variants, tx: tx}, nil
}

// CreateOrderFromCart snapshots the cart into an order atomically. Every line
// is validated against live stock and priced from the current catalog; any
// failing line aborts the whole conversion. Stock itself is not decremented
// here, that happens when payment is confirmed.
func (s *service) CreateOrderFromCart(ctx context.Context, userID uuid.UUID, shipping ShippingInfo) (*OrderView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateShipping(shipping); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		variants := s.variants.WithTx(tx)
		repo := s.repo.WithTx(tx)

		userCart, err := carts.FindByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(userCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		order := &models.Order{
			UserID:          userID,
			OrderDate:       time.Now().UTC(),
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusUnpaid,
			ShippingAddress: shipping.Address,
			PhoneNumber:     shipping.PhoneNumber,
			CustomerName:    shipping.CustomerName,
		}

		total := decimal.Zero
		for _, line := range userCart.Items {
			variant, err := variants.GetVariantByID(ctx, line.ProductVariantID)
			if err != nil {
				return err
			}
			if variant.StockQuantity < line.Quantity {
				return insufficientStock(variant, line.Quantity)
			}

			lineTotal := variant.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(lineTotal)

			item := models.OrderItem{
				ProductVariantID: variant.ID,
				Quantity:         line.Quantity,
				UnitPrice:        variant.Price,
				SnapshotColor:    variant.Color,
				SnapshotSize:     variant.Size,
				SnapshotImageURL: variant.ImageURL,
			}
			if variant.Product != nil {
				item.SnapshotName = variant.Product.Name
			}
			order.Items = append(order.Items, item)
		}
		order.TotalPrice = total

		if _, err := repo.Add(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		if err := carts.ClearCart(ctx, userCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		// Re-read with the owning user so the view carries the
		// denormalized customer email.
		created, err = repo.GetDetails(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load created order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := BuildOrderView(created)
	return &view, nil
}

// GetOrder loads order details. Customers may only read their own orders;
// staff may read any.
func (s *service) GetOrder(ctx context.Context, userID uuid.UUID, isStaff bool, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.repo.GetDetails(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !isStaff && order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	view := BuildOrderView(order)
	return &view, nil
}

// GetMyOrders returns a cursor page of the caller's orders, newest first.
func (s *service) GetMyOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	orders, next, err := s.repo.GetUserOrders(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	list := &OrderList{Orders: make([]OrderView, 0, len(orders))}
	for i := range orders {
		list.Orders = append(list.Orders, BuildOrderView(&orders[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		list.NextCursor = &encoded
	}
	return list, nil
}

// UpdateOrderStatus applies a staff shipping-status change. Terminal states
// are frozen, cancellation is allowed from any non-terminal state, and
// forward movement is single-step only.
func (s *service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderView, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.GetDetails(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").WithDetails(map[string]any{
			"current":   order.Status,
			"requested": next,
		})
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	order.Status = next
	view := BuildOrderView(order)
	return &view, nil
}

func validateShipping(shipping ShippingInfo) error {
	missing := []string{}
	if strings.TrimSpace(shipping.Address) == "" {
		missing = append(missing, "shipping_address")
	}
	if strings.TrimSpace(shipping.PhoneNumber) == "" {
		missing = append(missing, "phone_number")
	}
	if strings.TrimSpace(shipping.CustomerName) == "" {
		missing = append(missing, "customer_name")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping information incomplete").WithDetails(map[string]any{
			"missing": missing,
		})
	}
	return nil
}

func insufficientStock(variant *models.ProductVariant, requested int) error {
	name := ""
	if variant.Product != nil {
		name = variant.Product.Name
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(map[string]any{
		"variant_id":   variant.ID,
		"product_name": name,
		"color":        variant.Color,
		"size":         variant.Size,
		"requested":    requested,
		"available":    variant.StockQuantity,
	})
}
