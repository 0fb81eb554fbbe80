package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wittyvishnu/starfashion-backend/api/controllers"
	webhookcontrollers "github.com/wittyvishnu/starfashion-backend/api/controllers/webhooks"
	"github.com/wittyvishnu/starfashion-backend/api/middleware"
	cartsvc "github.com/wittyvishnu/starfashion-backend/internal/cart"
	checkoutsvc "github.com/wittyvishnu/starfashion-backend/internal/checkout"
	orderssvc "github.com/wittyvishnu/starfashion-backend/internal/orders"
	"github.com/wittyvishnu/starfashion-backend/internal/payments"
	"github.com/wittyvishnu/starfashion-backend/internal/products"
	"github.com/wittyvishnu/starfashion-backend/internal/refunds"
	rzpwebhook "github.com/wittyvishnu/starfashion-backend/internal/webhooks/razorpay"
	"github.com/wittyvishnu/starfashion-backend/pkg/config"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
	"github.com/wittyvishnu/starfashion-backend/pkg/razorpay"
)

// RouterParams gathers everything the HTTP surface depends on.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	Probes          map[string]func(ctx context.Context) error
	ProductsRepo    products.Repository
	CartService     cartsvc.Service
	CheckoutService checkoutsvc.Service
	PaymentsService payments.Service
	OrdersService   orderssvc.Service
	RefundsService  refunds.Service
	WebhookService  *rzpwebhook.Service
	WebhookGuard    *rzpwebhook.Guard
	Razorpay        *razorpay.Client
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Probes))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookcontrollers.RazorpayWebhook(params.WebhookService, params.Razorpay, params.WebhookGuard, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(params.ProductsRepo, logg))
		r.Get("/{productID}", controllers.GetProduct(params.ProductsRepo, logg))
	})

	// The payload signature authenticates this call; a shopper returning
	// from the Razorpay widget may not carry a bearer token.
	r.Post("/api/v1/payments/verify", controllers.VerifyPayment(params.PaymentsService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(params.CartService, logg))
			r.Post("/items", controllers.AddCartItem(params.CartService, logg))
			r.Patch("/items/{productID}", controllers.UpdateCartItem(params.CartService, logg))
			r.Delete("/items/{productID}", controllers.RemoveCartItem(params.CartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(params.CheckoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(params.OrdersService, logg))
			r.Get("/{orderID}", controllers.GetOrder(params.OrdersService, logg))
			r.Post("/{orderID}/items/{productID}/cancel", controllers.CancelOrderItem(params.RefundsService, logg))
			r.Patch("/{orderID}/items/{productID}/status", controllers.UpdateOrderItemStatus(params.OrdersService, logg))
		})
	})

	return r
}
