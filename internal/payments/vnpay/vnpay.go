// Package vnpay implements the VNPay redirect protocol: canonical parameter
// encoding, HMAC-SHA512 signing of outbound payment URLs, and verification of
// the signed return callback.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nhatminhle/fashio-backend/pkg/config"
)

// Protocol parameter names.
const (
	ParamVersion           = "vnp_Version"
	ParamCommand           = "vnp_Command"
	ParamTmnCode           = "vnp_TmnCode"
	ParamAmount            = "vnp_Amount"
	ParamCreateDate        = "vnp_CreateDate"
	ParamCurrCode          = "vnp_CurrCode"
	ParamIPAddr            = "vnp_IpAddr"
	ParamLocale            = "vnp_Locale"
	ParamOrderInfo         = "vnp_OrderInfo"
	ParamOrderType         = "vnp_OrderType"
	ParamReturnURL         = "vnp_ReturnUrl"
	ParamTxnRef            = "vnp_TxnRef"
	ParamSecureHash        = "vnp_SecureHash"
	ParamSecureHashType    = "vnp_SecureHashType"
	ParamResponseCode      = "vnp_ResponseCode"
	ParamTransactionStatus = "vnp_TransactionStatus"
)

// ResponseCodeSuccess is the gateway's approval code.
const ResponseCodeSuccess = "00"

// createDateLayout is the gateway's timestamp convention (yyyyMMddHHmmss).
const createDateLayout = "20060102150405"

// Gateway signs payment URLs and verifies return callbacks. The merchant
// credentials are injected; nothing here is compiled in.
type Gateway struct {
	cfg config.VNPayConfig
}

// New builds a gateway bound to the provided credentials.
func New(cfg config.VNPayConfig) (*Gateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("vnpay base url required")
	}
	if cfg.TmnCode == "" {
		return nil, fmt.Errorf("vnpay tmn code required")
	}
	if cfg.HashSecret == "" {
		return nil, fmt.Errorf("vnpay hash secret required")
	}
	if cfg.ReturnURL == "" {
		return nil, fmt.Errorf("vnpay return url required")
	}
	return &Gateway{cfg: cfg}, nil
}

// PaymentRequest carries the order data that goes onto the redirect URL.
type PaymentRequest struct {
	OrderID    uuid.UUID
	Amount     decimal.Decimal
	OrderInfo  string
	ClientIP   string
	CreateTime time.Time
}

// BuildPaymentURL renders the signed redirect URL. Deterministic for a fixed
// request, so the same order and timestamp always produce the same URL.
func (g *Gateway) BuildPaymentURL(req PaymentRequest) (string, error) {
	if req.OrderID == uuid.Nil {
		return "", fmt.Errorf("order id required")
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		return "", fmt.Errorf("amount must be positive")
	}

	params := map[string]string{
		ParamVersion:    g.cfg.Version,
		ParamCommand:    g.cfg.Command,
		ParamTmnCode:    g.cfg.TmnCode,
		ParamAmount:     minorUnits(req.Amount),
		ParamCreateDate: req.CreateTime.Format(createDateLayout),
		ParamCurrCode:   g.cfg.CurrCode,
		ParamIPAddr:     req.ClientIP,
		ParamLocale:     g.cfg.Locale,
		ParamOrderInfo:  req.OrderInfo,
		ParamOrderType:  g.cfg.OrderType,
		ParamReturnURL:  g.cfg.ReturnURL,
		ParamTxnRef:     req.OrderID.String(),
	}

	canonical := canonicalQuery(params)
	signature := g.sign(canonical)
	return g.cfg.BaseURL + "?" + canonical + "&" + ParamSecureHash + "=" + signature, nil
}

// VerifyReturn checks the callback signature over the full parameter set.
// Any missing or malformed input yields false; no field is trusted until the
// signature matches.
func (g *Gateway) VerifyReturn(params map[string]string) bool {
	provided, ok := params[ParamSecureHash]
	if !ok || provided == "" {
		return false
	}

	rest := make(map[string]string, len(params))
	for key, value := range params {
		if key == ParamSecureHash || key == ParamSecureHashType {
			continue
		}
		rest[key] = value
	}
	if len(rest) == 0 {
		return false
	}

	expected := g.sign(canonicalQuery(rest))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(provided))) == 1
}

// SignParams computes the signature the gateway would attach to the given
// parameter set (signature fields excluded from the signing string).
func (g *Gateway) SignParams(params map[string]string) string {
	rest := make(map[string]string, len(params))
	for key, value := range params {
		if key == ParamSecureHash || key == ParamSecureHashType {
			continue
		}
		rest[key] = value
	}
	return g.sign(canonicalQuery(rest))
}

// IsSuccess applies the gateway's approval rule: response code 00, and when a
// transaction status is present it must be 00 as well.
func IsSuccess(responseCode, transactionStatus string) bool {
	if responseCode != ResponseCodeSuccess {
		return false
	}
	return transactionStatus == "" || transactionStatus == ResponseCodeSuccess
}

// canonicalQuery encodes each key and value (space as '+') and joins the
// pairs in ordinal key order. Used identically for signing and transmission.
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[key]))
	}
	return b.String()
}

func (g *Gateway) sign(payload string) string {
	mac := hmac.New(sha512.New, []byte(g.cfg.HashSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// minorUnits renders the amount in the gateway's convention: price times 100,
// as an integer string.
func minorUnits(amount decimal.Decimal) string {
	return amount.Mul(decimal.NewFromInt(100)).Truncate(0).String()
}
