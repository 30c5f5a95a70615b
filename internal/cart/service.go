package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhatminhle/fashio-backend/internal/catalog"
	"github.com/nhatminhle/fashio-backend/pkg/db"
	"github.com/nhatminhle/fashio-backend/pkg/db/models"
	pkgerrors "github.com/nhatminhle/fashio-backend/pkg/errors"
)

// Service exposes the cart operations backing the authenticated cart routes.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) (*CartView, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartView, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     CartRepository
	variants catalog.VariantRepository
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, variants catalog.VariantRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	return &service{repo: repo, variants: variants}, nil
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := buildCartView(cart)
	return &view, nil
}

// AddItem merges the variant into the cart, topping up an existing line.
func (s *service) AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) (*CartView, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	variant, err := s.variants.GetVariantByID(ctx, variantID)
	if err != nil {
		return nil, err
	}

	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindItemByVariant(ctx, cart.ID, variantID)
	switch {
	case err == nil:
		requested := existing.Quantity + qty
		if variant.StockQuantity < requested {
			return nil, insufficientStock(variant)
		}
		existing.Quantity = requested
		if _, err := s.repo.UpdateItem(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if variant.StockQuantity < qty {
			return nil, insufficientStock(variant)
		}
		item := &models.CartItem{
			CartID:           cart.ID,
			ProductVariantID: variantID,
			Quantity:         qty,
		}
		if _, err := s.repo.CreateItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	return s.GetCart(ctx, userID)
}

// UpdateItemQuantity sets the line quantity; zero or below removes the line.
func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) (*CartView, error) {
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if qty <= 0 {
		if err := s.repo.DeleteItem(ctx, cart.ID, itemID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
		return s.GetCart(ctx, userID)
	}

	variant, err := s.variants.GetVariantByID(ctx, item.ProductVariantID)
	if err != nil {
		return nil, err
	}
	if variant.StockQuantity < qty {
		return nil, insufficientStock(variant)
	}

	item.Quantity = qty
	if _, err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem drops a line from the cart.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartView, error) {
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if err := s.repo.DeleteItem(ctx, cart.ID, itemID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	return s.GetCart(ctx, userID)
}

// ClearCart removes every line from the user's cart.
func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.ClearCart(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) getOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	cart, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	created, err := s.repo.Create(ctx, &models.Cart{UserID: userID})
	if err != nil {
		// Two first-touch requests can race on the carts.user_id unique
		// constraint; the loser adopts the winner's cart.
		if db.IsUniqueViolation(err, "user_id") {
			if existing, findErr := s.repo.FindByUser(ctx, userID); findErr == nil {
				return existing, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func insufficientStock(variant *models.ProductVariant) error {
	name := ""
	if variant.Product != nil {
		name = variant.Product.Name
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(map[string]any{
		"variant_id":   variant.ID,
		"product_name": name,
		"color":        variant.Color,
		"size":         variant.Size,
		"available":    variant.StockQuantity,
	})
}
