package orders

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
	ordersvc "github.com/nhatminhle/fashio-backend/internal/orders"
	"github.com/nhatminhle/fashio-backend/pkg/enums"
	pkgerrors "github.com/nhatminhle/fashio-backend/pkg/errors"
	"github.com/nhatminhle/fashio-backend/pkg/pagination"
)

type stubOrderService struct {
	view         *ordersvc.OrderView
	list         *ordersvc.OrderList
	err          error
	lastShipping ordersvc.ShippingInfo
	lastStatus   enums.OrderStatus
	lastIsStaff  bool
	lastParams   pagination.Params
}

func (s *stubOrderService) CreateOrderFromCart(ctx context.Context, userID uuid.UUID, shipping ordersvc.ShippingInfo) (*ordersvc.OrderView, error) {
	s.lastShipping = shipping
	return s.view, s.err
}

func (s *stubOrderService) GetOrder(ctx context.Context, userID uuid.UUID, isStaff bool, orderID uuid.UUID) (*ordersvc.OrderView, error) {
	s.lastIsStaff = isStaff
	return s.view, s.err
}

func (s *stubOrderService) GetMyOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ordersvc.OrderList, error) {
	s.lastParams = params
	return s.list, s.err
}

func (s *stubOrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*ordersvc.OrderView, error) {
	s.lastStatus = next
	return s.view, s.err
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

func withURLParam(req *http.Request, key, value string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestCreateSuccess(t *testing.T) {
	stub := &stubOrderService{view: &ordersvc.OrderView{ID: uuid.New(), Status: enums.OrderStatusPending}}
	handler := Create(stub, nil)

	body := `{"shipping_address":"12 Hang Bai, Hanoi","phone_number":"+84912345678","customer_name":"Tran Binh"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.lastShipping.CustomerName != "Tran Binh" {
		t.Fatalf("shipping not forwarded: %+v", stub.lastShipping)
	}

	var envelope struct {
		Data ordersvc.OrderView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != stub.view.ID {
		t.Fatalf("unexpected order id: %s", envelope.Data.ID)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	handler := Create(&stubOrderService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders", `{"phone_number":"+84912345678"}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateEmptyCart(t *testing.T) {
	stub := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")}
	handler := Create(stub, nil)

	body := `{"shipping_address":"12 Hang Bai, Hanoi","phone_number":"+84912345678","customer_name":"Tran Binh"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListMineForwardsPagination(t *testing.T) {
	stub := &stubOrderService{list: &ordersvc.OrderList{}}
	handler := ListMine(stub, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/orders/my?limit=5&cursor=abc", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.lastParams.Limit != 5 || stub.lastParams.Cursor != "abc" {
		t.Fatalf("pagination not forwarded: %+v", stub.lastParams)
	}
}

func TestListMineRejectsOversizedLimit(t *testing.T) {
	handler := ListMine(&stubOrderService{list: &ordersvc.OrderList{}}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/orders/my?limit=9999", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDetailHidesForeignOrders(t *testing.T) {
	stub := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	handler := Detail(stub, nil)

	orderID := uuid.New()
	req := authedRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), "")
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestDetailStaffFlagFromRole(t *testing.T) {
	stub := &stubOrderService{view: &ordersvc.OrderView{ID: uuid.New()}}
	handler := Detail(stub, nil)

	orderID := uuid.New()
	req := authedRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), "")
	req = req.WithContext(middleware.WithRole(req.Context(), enums.UserRoleAdmin.String()))
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !stub.lastIsStaff {
		t.Fatal("admin role should set the staff flag")
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	handler := UpdateStatus(&stubOrderService{}, nil)

	orderID := uuid.New()
	req := authedRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", `{"status":"teleported"}`)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	stub := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "invalid status transition")}
	handler := UpdateStatus(stub, nil)

	orderID := uuid.New()
	req := authedRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", `{"status":"shipped"}`)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	if stub.lastStatus != enums.OrderStatusShipped {
		t.Fatalf("status not forwarded: %s", stub.lastStatus)
	}
}
