package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	rzpwebhook "github.com/wittyvishnu/starfashion-backend/internal/webhooks/razorpay"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
)

const webhookSecret = "whsec_test"

type fakeWebhookService struct {
	calls  int
	events []string
	err    error
}

func (f *fakeWebhookService) HandleEvent(_ context.Context, event *rzpwebhook.Event) error {
	f.calls++
	f.events = append(f.events, event.Event)
	return f.err
}

type hmacVerifier struct {
	secret string
}

func (v hmacVerifier) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	return hmac.Equal([]byte(hex.EncodeToString(mac.Sum(nil))), []byte(signature))
}

type memoryGuard struct {
	seen map[string]bool
}

func (g *memoryGuard) CheckAndMark(_ context.Context, eventID string) bool {
	if eventID == "" {
		return true
	}
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[eventID] {
		return false
	}
	g.seen[eventID] = true
	return true
}

func (g *memoryGuard) Release(_ context.Context, eventID string) {
	delete(g.seen, eventID)
}

func sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func postEvent(handler http.HandlerFunc, payload []byte, signature, eventID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	if eventID != "" {
		req.Header.Set("X-Razorpay-Event-Id", eventID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRazorpayWebhookSuccessAndDuplicate(t *testing.T) {
	service := &fakeWebhookService{}
	handler := RazorpayWebhook(service, hmacVerifier{secret: webhookSecret}, &memoryGuard{}, nil)

	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`)
	rec := postEvent(handler, payload, sign(payload), "evt_1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.calls != 1 || service.events[0] != "payment.captured" {
		t.Fatalf("service calls = %d %v", service.calls, service.events)
	}

	rec = postEvent(handler, payload, sign(payload), "evt_1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on duplicate, got %d", rec.Code)
	}
	if service.calls != 1 {
		t.Fatalf("duplicate delivery must not reach the service, calls = %d", service.calls)
	}
}

func TestRazorpayWebhookBadSignature(t *testing.T) {
	service := &fakeWebhookService{}
	handler := RazorpayWebhook(service, hmacVerifier{secret: webhookSecret}, &memoryGuard{}, nil)

	payload := []byte(`{"event":"payment.captured"}`)
	rec := postEvent(handler, payload, "forged", "evt_2")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad signature, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatal("service must not run on a bad signature")
	}

	rec = postEvent(handler, payload, "", "evt_2")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing signature, got %d", rec.Code)
	}
}

func TestRazorpayWebhookHandlerErrorReleasesGuard(t *testing.T) {
	service := &fakeWebhookService{err: pkgerrors.New(pkgerrors.CodeInternal, "db down")}
	guard := &memoryGuard{}
	handler := RazorpayWebhook(service, hmacVerifier{secret: webhookSecret}, guard, nil)

	payload := []byte(`{"event":"refund.processed","payload":{"refund":{"entity":{"id":"rfnd_1"}}}}`)
	rec := postEvent(handler, payload, sign(payload), "evt_3")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	// The gateway retry must get through after the failure.
	service.err = nil
	rec = postEvent(handler, payload, sign(payload), "evt_3")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected retry to succeed, got %d", rec.Code)
	}
	if service.calls != 2 {
		t.Fatalf("calls = %d, want 2", service.calls)
	}
}

func TestRazorpayWebhookUnknownEventAcks(t *testing.T) {
	service := &fakeWebhookService{}
	handler := RazorpayWebhook(service, hmacVerifier{secret: webhookSecret}, nil, nil)

	payload := []byte(`{"event":"payment.authorized"}`)
	rec := postEvent(handler, payload, sign(payload), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
