package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nhatminhle/fashio-backend/pkg/db/models"
	pkgerrors "github.com/nhatminhle/fashio-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ProductVariant{}); err != nil {
		t.Fatalf("migrate catalog: %v", err)
	}
	return db
}

func seedVariant(t *testing.T, db *gorm.DB, stock int) *models.ProductVariant {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Linen Shirt",
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	variant := &models.ProductVariant{
		ID:            uuid.New(),
		ProductID:     product.ID,
		Color:         "white",
		Size:          "M",
		Price:         decimal.NewFromInt(350000),
		StockQuantity: stock,
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return variant
}

func TestGetVariantByIDPreloadsProduct(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	seeded := seedVariant(t, db, 5)

	got, err := repo.GetVariantByID(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("get variant: %v", err)
	}
	if got.Product == nil || got.Product.Name != "Linen Shirt" {
		t.Fatalf("expected product preloaded, got %+v", got.Product)
	}
}

func TestGetVariantByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	_, err := repo.GetVariantByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConditionalDecrement(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	seeded := seedVariant(t, db, 3)

	ok, err := repo.ConditionalDecrement(context.Background(), seeded.ID, 2)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if !ok {
		t.Fatal("expected decrement to succeed")
	}

	var after models.ProductVariant
	if err := db.First(&after, "id = ?", seeded.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if after.StockQuantity != 1 {
		t.Fatalf("expected stock 1, got %d", after.StockQuantity)
	}
}

func TestConditionalDecrementGuardsStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	seeded := seedVariant(t, db, 1)

	ok, err := repo.ConditionalDecrement(context.Background(), seeded.ID, 2)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if ok {
		t.Fatal("expected guard to reject the decrement")
	}

	var after models.ProductVariant
	if err := db.First(&after, "id = ?", seeded.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if after.StockQuantity != 1 {
		t.Fatalf("stock changed despite rejected decrement: %d", after.StockQuantity)
	}
}

func TestConditionalDecrementRejectsNonPositiveQty(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	seeded := seedVariant(t, db, 1)

	_, err := repo.ConditionalDecrement(context.Background(), seeded.ID, 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}
