package payments

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nhatminhle/fashio-backend/api/middleware"
	"github.com/nhatminhle/fashio-backend/api/responses"
	paymentsvc "github.com/nhatminhle/fashio-backend/internal/payments"
	"github.com/nhatminhle/fashio-backend/pkg/enums"
	pkgerrors "github.com/nhatminhle/fashio-backend/pkg/errors"
	"github.com/nhatminhle/fashio-backend/pkg/logger"
)

type paymentURLResponse struct {
	PaymentURL string `json:"payment_url"`
}

// Pay builds a signed gateway redirect URL for a pending, unpaid order.
func Pay(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.BuildPaymentURL(r.Context(), userID, isStaffRequest(r), orderID, clientIP(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, paymentURLResponse{PaymentURL: url})
	}
}

// VNPayReturn receives the browser redirect back from the gateway, verifies
// the signature and reconciles the order. Unauthenticated: the signature is
// the credential.
func VNPayReturn(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		params := flattenQuery(r)
		result, err := svc.HandleGatewayReturn(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// flattenQuery keeps the first value per key, matching what the gateway sends.
func flattenQuery(r *http.Request) map[string]string {
	params := make(map[string]string, len(r.URL.Query()))
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id in token")
	}
	return userID, nil
}

func isStaffRequest(r *http.Request) bool {
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	return err == nil && role.IsStaff()
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id").WithDetails(map[string]any{"order_id": raw})
	}
	return orderID, nil
}
