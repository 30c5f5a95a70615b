package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nhatminhle/fashio-backend/pkg/db/models"
	"github.com/nhatminhle/fashio-backend/pkg/enums"
	"github.com/nhatminhle/fashio-backend/pkg/pagination"
)

func TestMarkPaidIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		OrderDate:       time.Now().UTC(),
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusUnpaid,
		TotalPrice:      decimal.NewFromInt(100000),
		ShippingAddress: "a",
		PhoneNumber:     "b",
		CustomerName:    "c",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	flipped, err := repo.MarkPaid(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !flipped {
		t.Fatal("expected first flip to win")
	}

	replayed, err := repo.MarkPaid(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("replay mark paid: %v", err)
	}
	if replayed {
		t.Fatal("expected replay to be a no-op")
	}

	var after models.Order
	if err := db.First(&after, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if after.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", after.PaymentStatus)
	}
	if after.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", after.Status)
	}
}

func TestMarkDeclinedOnlyFromUnpaid(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		OrderDate:       time.Now().UTC(),
		Status:          enums.OrderStatusProcessing,
		PaymentStatus:   enums.PaymentStatusPaid,
		TotalPrice:      decimal.NewFromInt(100000),
		ShippingAddress: "a",
		PhoneNumber:     "b",
		CustomerName:    "c",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	flipped, err := repo.MarkDeclined(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("mark declined: %v", err)
	}
	if flipped {
		t.Fatal("paid order must not be cancelled by a decline")
	}

	var after models.Order
	if err := db.First(&after, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if after.PaymentStatus != enums.PaymentStatusPaid || after.Status != enums.OrderStatusProcessing {
		t.Fatalf("order mutated: %s/%s", after.Status, after.PaymentStatus)
	}
}

func TestGetUserOrdersPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		order := &models.Order{
			ID:              uuid.New(),
			UserID:          userID,
			OrderDate:       base.Add(time.Duration(i) * time.Minute),
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusUnpaid,
			TotalPrice:      decimal.NewFromInt(int64(10000 * (i + 1))),
			ShippingAddress: "a",
			PhoneNumber:     "b",
			CustomerName:    "c",
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(order).Error; err != nil {
			t.Fatalf("create order %d: %v", i, err)
		}
	}

	first, next, err := repo.GetUserOrders(context.Background(), userID, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(first))
	}
	if next == nil {
		t.Fatal("expected next cursor")
	}

	second, tail, err := repo.GetUserOrders(context.Background(), userID, pagination.Params{
		Limit:  2,
		Cursor: pagination.EncodeCursor(*next),
	})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected 1 order, got %d", len(second))
	}
	if tail != nil {
		t.Fatal("expected exhausted cursor")
	}
	if second[0].ID == first[0].ID || second[0].ID == first[1].ID {
		t.Fatal("pages overlap")
	}
}
