package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	rzpsdk "github.com/razorpay/razorpay-go"

	"github.com/wittyvishnu/starfashion-backend/pkg/config"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
)

var (
	errKeyIDRequired         = errors.New("razorpay key id is required")
	errKeySecretRequired     = errors.New("razorpay key secret is required")
	errWebhookSecretRequired = errors.New("razorpay webhook secret is required")
	errLoggerRequired        = errors.New("razorpay logger is required")
)

type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type paymentAPI interface {
	Refund(paymentID string, amount int, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client exposes Razorpay primitives with centralized auth, logging, and error mapping.
type Client struct {
	orders        orderAPI
	payments      paymentAPI
	keyID         string
	keySecret     string
	webhookSecret string
	currency      string
	logger        *logger.Logger
}

// OrderCreateParams describes a gateway order to open before capture.
type OrderCreateParams struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// GatewayOrder is the subset of the gateway order payload the platform consumes.
type GatewayOrder struct {
	ID          string
	AmountMinor int64
	Currency    string
	Status      string
}

// RefundCreateParams describes a refund against a captured payment.
type RefundCreateParams struct {
	PaymentID   string
	AmountMinor int64
	Notes       map[string]string
}

// GatewayRefund is the subset of the gateway refund payload the platform consumes.
type GatewayRefund struct {
	ID     string
	Status string
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}

	sdk := rzpsdk.NewClient(keyID, keySecret)
	c := &Client{
		orders:        sdk.Order,
		payments:      sdk.Payment,
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		currency:      currency,
		logger:        logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// KeyID returns the public key identifier handed to the checkout widget.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// CreateOrder opens a gateway order for the given minor-unit amount.
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (*GatewayOrder, error) {
	currency := params.Currency
	if currency == "" {
		currency = c.currency
	}
	data := map[string]interface{}{
		"amount":   params.AmountMinor,
		"currency": currency,
	}
	if params.Receipt != "" {
		data["receipt"] = params.Receipt
	}
	if len(params.Notes) > 0 {
		notes := make(map[string]interface{}, len(params.Notes))
		for k, v := range params.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount":   params.AmountMinor,
		"currency": currency,
		"receipt":  params.Receipt,
	})

	resp, err := c.orders.Create(data, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay create order failed")
	}

	order := &GatewayOrder{
		ID:          stringField(resp, "id"),
		AmountMinor: intField(resp, "amount"),
		Currency:    stringField(resp, "currency"),
		Status:      stringField(resp, "status"),
	}
	if order.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay order response missing id")
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"gateway_order_id": order.ID,
		"status":           order.Status,
	})
	return order, nil
}

// RefundPayment issues a refund against a captured payment for the minor-unit amount.
func (c *Client) RefundPayment(ctx context.Context, params RefundCreateParams) (*GatewayRefund, error) {
	if strings.TrimSpace(params.PaymentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required for refund")
	}
	data := map[string]interface{}{}
	if len(params.Notes) > 0 {
		notes := make(map[string]interface{}, len(params.Notes))
		for k, v := range params.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	c.log(ctx, "request", "refund_payment", map[string]any{
		"gateway_payment_id": params.PaymentID,
		"amount":             params.AmountMinor,
	})

	resp, err := c.payments.Refund(params.PaymentID, int(params.AmountMinor), data, nil)
	if err != nil {
		c.log(ctx, "error", "refund_payment", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay refund failed")
	}

	refund := &GatewayRefund{
		ID:     stringField(resp, "id"),
		Status: stringField(resp, "status"),
	}
	if refund.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay refund response missing id")
	}

	c.log(ctx, "response", "refund_payment", map[string]any{
		"gateway_refund_id": refund.ID,
		"status":            refund.Status,
	})
	return refund, nil
}

// VerifyPaymentSignature checks the checkout handler signature over "orderID|paymentID".
func (c *Client) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if c == nil || gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return false
	}
	payload := gatewayOrderID + "|" + gatewayPaymentID
	return verifyHMAC([]byte(payload), signature, c.keySecret)
}

// VerifyWebhookSignature checks the x-razorpay-signature header over the raw body.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if c == nil || len(body) == 0 || signature == "" {
		return false
	}
	return verifyHMAC(body, signature, c.webhookSecret)
}

func verifyHMAC(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpay %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "signature", "token", "email", "phone", "contact"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func stringField(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func intField(payload map[string]interface{}, key string) int64 {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
