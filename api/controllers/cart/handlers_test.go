package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nhatminhle/fashio-backend/api/middleware"
	cartsvc "github.com/nhatminhle/fashio-backend/internal/cart"
	pkgerrors "github.com/nhatminhle/fashio-backend/pkg/errors"
)

type stubCartService struct {
	view        *cartsvc.CartView
	err         error
	lastVariant uuid.UUID
	lastItem    uuid.UUID
	lastQty     int
}

func (s *stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cartsvc.CartView, error) {
	return s.view, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) (*cartsvc.CartView, error) {
	s.lastVariant = variantID
	s.lastQty = qty
	return s.view, s.err
}

func (s *stubCartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) (*cartsvc.CartView, error) {
	s.lastItem = itemID
	s.lastQty = qty
	return s.view, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cartsvc.CartView, error) {
	s.lastItem = itemID
	return s.view, s.err
}

func (s *stubCartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestCartFetchSuccess(t *testing.T) {
	userID := uuid.New()
	view := &cartsvc.CartView{ID: uuid.New(), UserID: userID}
	handler := CartFetch(&stubCartService{view: view}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.CartView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != view.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
}

func TestCartFetchMissingUserContext(t *testing.T) {
	handler := CartFetch(&stubCartService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemValidatesBody(t *testing.T) {
	handler := CartAddItem(&stubCartService{view: &cartsvc.CartView{}}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", `{"quantity":2}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemSuccess(t *testing.T) {
	stub := &stubCartService{view: &cartsvc.CartView{ID: uuid.New()}}
	handler := CartAddItem(stub, nil)

	variantID := uuid.New()
	body := `{"variant_id":"` + variantID.String() + `","quantity":3}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if stub.lastVariant != variantID || stub.lastQty != 3 {
		t.Fatalf("service called with %s/%d", stub.lastVariant, stub.lastQty)
	}
}

func TestCartAddItemInsufficientStock(t *testing.T) {
	stub := &stubCartService{err: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")}
	handler := CartAddItem(stub, nil)

	body := `{"variant_id":"` + uuid.NewString() + `","quantity":99}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCartUpdateItemRejectsBadID(t *testing.T) {
	handler := CartUpdateItem(&stubCartService{}, nil)

	req := authedRequest(http.MethodPatch, "/api/v1/cart/items/not-a-uuid", `{"quantity":1}`)
	req = withURLParam(req, "itemId", "not-a-uuid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartRemoveItemSuccess(t *testing.T) {
	stub := &stubCartService{view: &cartsvc.CartView{}}
	handler := CartRemoveItem(stub, nil)

	itemID := uuid.New()
	req := authedRequest(http.MethodDelete, "/api/v1/cart/items/"+itemID.String(), "")
	req = withURLParam(req, "itemId", itemID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.lastItem != itemID {
		t.Fatalf("service called with item %s", stub.lastItem)
	}
}

func TestCartClearSuccess(t *testing.T) {
	handler := CartClear(&stubCartService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
