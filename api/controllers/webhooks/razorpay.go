package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/wittyvishnu/starfashion-backend/api/responses"
	rzpwebhook "github.com/wittyvishnu/starfashion-backend/internal/webhooks/razorpay"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
)

const (
	signatureHeader = "X-Razorpay-Signature"
	eventIDHeader   = "X-Razorpay-Event-Id"
)

type RazorpayWebhookService interface {
	HandleEvent(ctx context.Context, event *rzpwebhook.Event) error
}

type webhookVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

type webhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) bool
	Release(ctx context.Context, eventID string)
}

// RazorpayWebhook handles payment and refund lifecycle events. Only a bad
// signature is rejected; business no-ops acknowledge so the gateway stops
// retrying.
func RazorpayWebhook(svc RazorpayWebhookService, verifier webhookVerifier, guard webhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "signature verifier unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature := strings.TrimSpace(r.Header.Get(signatureHeader))
		if signature == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook signature missing"))
			return
		}
		if !verifier.VerifyWebhookSignature(payload, signature) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook signature mismatch"))
			return
		}

		var event rzpwebhook.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		eventID := strings.TrimSpace(r.Header.Get(eventIDHeader))
		if guard != nil && !guard.CheckAndMark(ctx, eventID) {
			responses.WriteSuccess(w, map[string]string{"status": "ok"})
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			if guard != nil {
				guard.Release(ctx, eventID)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			eventCtx := logg.WithField(ctx, "gateway_event", event.Event)
			logg.Info(eventCtx, "razorpay event processed")
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
