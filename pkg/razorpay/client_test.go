package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/wittyvishnu/starfashion-backend/pkg/config"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
)

type fakeOrderAPI struct {
	resp map[string]interface{}
	err  error
	data map[string]interface{}
}

func (f *fakeOrderAPI) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.data = data
	return f.resp, f.err
}

type fakePaymentAPI struct {
	resp      map[string]interface{}
	err       error
	paymentID string
	amount    int
}

func (f *fakePaymentAPI) Refund(paymentID string, amount int, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.paymentID = paymentID
	f.amount = amount
	return f.resp, f.err
}

func testClient(t *testing.T) *Client {
	t.Helper()
	logg := logger.New(logger.Options{Level: logger.ParseLevel("error")})
	client, err := NewClient(context.Background(), config.RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     "key-secret",
		WebhookSecret: "webhook-secret",
		Currency:      "inr",
	}, logg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientValidatesCredentials(t *testing.T) {
	logg := logger.New(logger.Options{Level: logger.ParseLevel("error")})
	if _, err := NewClient(context.Background(), config.RazorpayConfig{KeySecret: "s", WebhookSecret: "w"}, logg); err == nil {
		t.Fatal("expected missing key id error")
	}
	if _, err := NewClient(context.Background(), config.RazorpayConfig{KeyID: "k", WebhookSecret: "w"}, logg); err == nil {
		t.Fatal("expected missing key secret error")
	}
	if _, err := NewClient(context.Background(), config.RazorpayConfig{KeyID: "k", KeySecret: "s"}, logg); err == nil {
		t.Fatal("expected missing webhook secret error")
	}
	if _, err := NewClient(context.Background(), config.RazorpayConfig{KeyID: "k", KeySecret: "s", WebhookSecret: "w"}, nil); err == nil {
		t.Fatal("expected missing logger error")
	}
}

func TestCreateOrderMapsResponse(t *testing.T) {
	client := testClient(t)
	fake := &fakeOrderAPI{resp: map[string]interface{}{
		"id":       "order_abc",
		"amount":   float64(52499),
		"currency": "INR",
		"status":   "created",
	}}
	client.orders = fake

	order, err := client.CreateOrder(context.Background(), OrderCreateParams{
		AmountMinor: 52499,
		Receipt:     "rcpt_user-1",
		Notes:       map[string]string{"reservation_id": "res-1"},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "order_abc" || order.AmountMinor != 52499 || order.Currency != "INR" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if fake.data["currency"] != "INR" {
		t.Fatalf("expected configured currency to fill in, got %v", fake.data["currency"])
	}
	if fake.data["receipt"] != "rcpt_user-1" {
		t.Fatalf("expected receipt passthrough, got %v", fake.data["receipt"])
	}
}

func TestCreateOrderWrapsGatewayFailure(t *testing.T) {
	client := testClient(t)
	client.orders = &fakeOrderAPI{err: errors.New("gateway down")}

	_, err := client.CreateOrder(context.Background(), OrderCreateParams{AmountMinor: 100})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestCreateOrderRejectsMissingID(t *testing.T) {
	client := testClient(t)
	client.orders = &fakeOrderAPI{resp: map[string]interface{}{"status": "created"}}

	_, err := client.CreateOrder(context.Background(), OrderCreateParams{AmountMinor: 100})
	if pkgerrors.As(err) == nil {
		t.Fatalf("expected error for response without id, got %v", err)
	}
}

func TestRefundPaymentMapsResponse(t *testing.T) {
	client := testClient(t)
	fake := &fakePaymentAPI{resp: map[string]interface{}{
		"id":     "rfnd_123",
		"status": "processed",
	}}
	client.payments = fake

	refund, err := client.RefundPayment(context.Background(), RefundCreateParams{
		PaymentID:   "pay_123",
		AmountMinor: 2099,
	})
	if err != nil {
		t.Fatalf("refund payment: %v", err)
	}
	if refund.ID != "rfnd_123" || refund.Status != "processed" {
		t.Fatalf("unexpected refund: %+v", refund)
	}
	if fake.paymentID != "pay_123" || fake.amount != 2099 {
		t.Fatalf("unexpected sdk call: %s %d", fake.paymentID, fake.amount)
	}
}

func TestRefundPaymentRequiresPaymentID(t *testing.T) {
	client := testClient(t)
	_, err := client.RefundPayment(context.Background(), RefundCreateParams{AmountMinor: 100})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func signHex(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	client := testClient(t)
	sig := signHex("key-secret", []byte("order_abc|pay_123"))

	if !client.VerifyPaymentSignature("order_abc", "pay_123", sig) {
		t.Fatal("expected valid signature to verify")
	}
	if client.VerifyPaymentSignature("order_abc", "pay_999", sig) {
		t.Fatal("expected mismatched payment id to fail")
	}
	if client.VerifyPaymentSignature("order_abc", "pay_123", "") {
		t.Fatal("expected empty signature to fail")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := testClient(t)
	body := []byte(`{"event":"payment.captured"}`)
	sig := signHex("webhook-secret", body)

	if !client.VerifyWebhookSignature(body, sig) {
		t.Fatal("expected valid webhook signature to verify")
	}
	if client.VerifyWebhookSignature([]byte(`{"event":"tampered"}`), sig) {
		t.Fatal("expected tampered body to fail")
	}
}
