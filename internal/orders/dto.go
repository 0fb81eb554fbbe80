package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
)

// OrderItemSummary exposes one purchased line with its live statuses.
type OrderItemSummary struct {
	ProductID     uuid.UUID           `json:"product_id"`
	Name          string              `json:"name"`
	Thumbnail     string              `json:"thumbnail,omitempty"`
	Quantity      int                 `json:"quantity"`
	Price         decimal.Decimal     `json:"price"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	OrderStatus   enums.OrderStatus   `json:"order_status"`
	TrackingID    *string             `json:"tracking_id,omitempty"`
}

// OrderSummary exposes the order header plus its items.
type OrderSummary struct {
	ID             uuid.UUID           `json:"id"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Tax            decimal.Decimal     `json:"tax"`
	TotalPrice     decimal.Decimal     `json:"total_price"`
	Currency       string              `json:"currency"`
	GatewayOrderID *string             `json:"gateway_order_id,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []OrderItemSummary  `json:"items"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ToOrderSummary maps a stored order into its API shape.
func ToOrderSummary(order *models.Order) OrderSummary {
	items := make([]OrderItemSummary, 0, len(order.Items))
	for _, item := range order.Items {
		summary := OrderItemSummary{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			Price:         item.Price,
			PaymentStatus: item.PaymentStatus,
			OrderStatus:   item.OrderStatus,
			TrackingID:    item.TrackingID,
		}
		if item.Product != nil {
			summary.Name = item.Product.Name
			summary.Thumbnail = item.Product.Thumbnail
		}
		items = append(items, summary)
	}
	return OrderSummary{
		ID:             order.ID,
		PaymentMethod:  order.PaymentMethod,
		Subtotal:       order.PaymentDetails.Subtotal,
		Tax:            order.PaymentDetails.Tax,
		TotalPrice:     order.PaymentDetails.TotalPrice,
		Currency:       order.Currency,
		GatewayOrderID: order.GatewayOrderID,
		CreatedAt:      order.CreatedAt,
		Items:          items,
	}
}
