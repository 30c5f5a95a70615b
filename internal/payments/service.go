package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhatminhle/fashio-backend/internal/catalog"
	"github.com/nhatminhle/fashio-backend/internal/orders"
	"github.com/nhatminhle/fashio-backend/internal/payments/vnpay"
	"github.com/nhatminhle/fashio-backend/pkg/enums"
	pkgerrors "github.com/nhatminhle/fashio-backend/pkg/errors"
	"github.com/nhatminhle/fashio-backend/pkg/logger"
	"github.com/nhatminhle/fashio-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Outcome describes how a verified callback was applied.
type Outcome string

const (
	OutcomePaid     Outcome = "paid"
	OutcomeReplay   Outcome = "replay"
	OutcomeDeclined Outcome = "declined"
)

// ReconcileResult is the boolean-style result of a gateway return: the caller
// learns the outcome, never partial progress.
type ReconcileResult struct {
	OrderID uuid.UUID `json:"order_id"`
	Outcome Outcome   `json:"outcome"`
}

// Service builds signed payment URLs and reconciles gateway callbacks.
type Service interface {
	BuildPaymentURL(ctx context.Context, userID uuid.UUID, isStaff bool, orderID uuid.UUID, clientIP string) (string, error)
	HandleGatewayReturn(ctx context.Context, params map[string]string) (*ReconcileResult, error)
}

type service struct {
	gateway  *vnpay.Gateway
	repo     orders.Repository
	variants catalog.VariantRepository
	tx       txRunner
	logg     *logger.Logger
}

// NewService wires the payment service.
func NewService(gateway *vnpay.Gateway, repo orders.Repository, variants catalog.VariantRepository, tx txRunner, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("vnpay gateway required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{gateway: gateway, repo: repo, variants: variants, tx: tx, logg: logg}, nil
}

// BuildPaymentURL returns the signed redirect URL for a pending order. Only
// the order's owner (or staff) may request it.
func (s *service) BuildPaymentURL(ctx context.Context, userID uuid.UUID, isStaff bool, orderID uuid.UUID, clientIP string) (string, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !isStaff && order.UserID != userID {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusUnpaid {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "order is not payable").WithDetails(map[string]any{
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
		})
	}

	rawURL, err := s.gateway.BuildPaymentURL(vnpay.PaymentRequest{
		OrderID:    order.ID,
		Amount:     order.TotalPrice,
		OrderInfo:  fmt.Sprintf("Thanh toan don hang %s", order.ID),
		ClientIP:   clientIP,
		CreateTime: time.Now().UTC(),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build payment url")
	}
	return rawURL, nil
}

// HandleGatewayReturn verifies and applies a gateway callback. The signature
// gate runs first; nothing in the parameter set is trusted before it passes.
// Success flips the order to paid/processing and decrements stock for every
// line in one transaction; replays are no-ops; declines cancel the order.
func (s *service) HandleGatewayReturn(ctx context.Context, params map[string]string) (*ReconcileResult, error) {
	if !s.gateway.VerifyReturn(params) {
		metrics.SignatureFailures.Inc()
		s.logg.Warn(ctx, "gateway callback rejected: signature mismatch")
		return nil, pkgerrors.New(pkgerrors.CodeSignature, "signature verification failed")
	}

	orderID, err := uuid.Parse(params[vnpay.ParamTxnRef])
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction reference")
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	responseCode := params[vnpay.ParamResponseCode]
	if responseCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing response code")
	}

	if !vnpay.IsSuccess(responseCode, params[vnpay.ParamTransactionStatus]) {
		return s.applyDecline(ctx, orderID, responseCode)
	}
	return s.applySuccess(ctx, orderID)
}

func (s *service) applySuccess(ctx context.Context, orderID uuid.UUID) (*ReconcileResult, error) {
	result := &ReconcileResult{OrderID: orderID}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		variants := s.variants.WithTx(tx)

		flipped, err := repo.MarkPaid(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		if !flipped {
			// someone already reconciled this order; confirm it exists and
			// treat the callback as a replay
			if _, err := repo.GetByID(ctx, orderID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
			}
			result.Outcome = OutcomeReplay
			return nil
		}

		order, err := repo.GetDetails(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}

		for _, item := range order.Items {
			ok, err := variants.ConditionalDecrement(ctx, item.ProductVariantID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeReconciliation, "stock could not be honored after payment").WithDetails(map[string]any{
					"order_id":   orderID,
					"variant_id": item.ProductVariantID,
					"quantity":   item.Quantity,
				})
			}
		}

		result.Outcome = OutcomePaid
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeReconciliation {
			metrics.ReconciliationTotal.WithLabelValues(metrics.OutcomeOutOfStock).Inc()
			s.logg.Error(ctx, "payment reconciliation failed: paid order cannot be stocked", err)
		} else {
			metrics.ReconciliationTotal.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return nil, err
	}

	switch result.Outcome {
	case OutcomeReplay:
		metrics.ReconciliationTotal.WithLabelValues(metrics.OutcomeReplay).Inc()
		s.logg.Info(ctx, "gateway callback replayed, order already reconciled")
	default:
		metrics.ReconciliationTotal.WithLabelValues(metrics.OutcomePaid).Inc()
		s.logg.Info(ctx, "order paid and stock committed")
	}
	return result, nil
}

func (s *service) applyDecline(ctx context.Context, orderID uuid.UUID, responseCode string) (*ReconcileResult, error) {
	cancelled, err := s.repo.MarkDeclined(ctx, orderID)
	if err != nil {
		metrics.ReconciliationTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel declined order")
	}

	outcome := OutcomeDeclined
	if !cancelled {
		if _, err := s.repo.GetByID(ctx, orderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		outcome = OutcomeReplay
	}

	metrics.ReconciliationTotal.WithLabelValues(metrics.OutcomeDeclined).Inc()
	s.logg.Info(ctx, fmt.Sprintf("gateway declined payment with code %s", responseCode))
	return &ReconcileResult{OrderID: orderID, Outcome: outcome}, nil
}
