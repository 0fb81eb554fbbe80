package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wittyvishnu/starfashion-backend/api/responses"
	"github.com/wittyvishnu/starfashion-backend/api/validators"
	checkoutsvc "github.com/wittyvishnu/starfashion-backend/internal/checkout"
	"github.com/wittyvishnu/starfashion-backend/internal/payments"
	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
)

type checkoutRequest struct {
	AddressID     uuid.UUID       `json:"address_id" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=COD Razorpay"`
	Total         decimal.Decimal `json:"total" validate:"required"`
}

// Checkout submits the caller's cart for purchase.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), userID, checkoutsvc.Input{
			AddressID:     payload.AddressID,
			PaymentMethod: enums.PaymentMethod(payload.PaymentMethod),
			QuotedTotal:   payload.Total,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// VerifyPayment is the client-side payment confirmation entry point. The
// payload signature authenticates the request, so no bearer token is needed.
func VerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.VerifyAndCapture(r.Context(), payments.VerifyInput{
			GatewayOrderID:   payload.RazorpayOrderID,
			GatewayPaymentID: payload.RazorpayPaymentID,
			Signature:        payload.RazorpaySignature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
