package controllers

import (
	"net/http"

	"github.com/wittyvishnu/starfashion-backend/api/responses"
	"github.com/wittyvishnu/starfashion-backend/api/validators"
	orderssvc "github.com/wittyvishnu/starfashion-backend/internal/orders"
	"github.com/wittyvishnu/starfashion-backend/internal/refunds"
	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
)

// ListOrders returns the caller's orders newest first.
func ListOrders(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListOrders(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetOrder returns one of the caller's orders.
func GetOrder(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.GetOrder(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type cancelItemRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// CancelOrderItem cancels one item of the caller's order and starts the
// matching refund flow.
func CancelOrderItem(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancelItemRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := svc.CancelItem(r.Context(), userID, orderID, productID, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type itemStatusRequest struct {
	Status     string  `json:"status" validate:"required,oneof=Processing Shipped Delivered"`
	TrackingID *string `json:"tracking_id,omitempty" validate:"omitempty,max=64"`
}

// UpdateOrderItemStatus moves one item along the fulfillment pipeline.
func UpdateOrderItemStatus(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := userIDFromRequest(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload itemStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.UpdateItemStatus(r.Context(), orderssvc.ItemStatusInput{
			OrderID:    orderID,
			ProductID:  productID,
			Status:     enums.OrderStatus(payload.Status),
			TrackingID: payload.TrackingID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": payload.Status})
	}
}
