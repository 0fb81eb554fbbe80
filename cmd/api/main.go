package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/wittyvishnu/starfashion-backend/api/routes"
	"github.com/wittyvishnu/starfashion-backend/internal/cart"
	"github.com/wittyvishnu/starfashion-backend/internal/checkout"
	"github.com/wittyvishnu/starfashion-backend/internal/orders"
	"github.com/wittyvishnu/starfashion-backend/internal/payments"
	"github.com/wittyvishnu/starfashion-backend/internal/products"
	"github.com/wittyvishnu/starfashion-backend/internal/refunds"
	rzpwebhook "github.com/wittyvishnu/starfashion-backend/internal/webhooks/razorpay"
	"github.com/wittyvishnu/starfashion-backend/pkg/config"
	"github.com/wittyvishnu/starfashion-backend/pkg/db"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
	"github.com/wittyvishnu/starfashion-backend/pkg/migrate"
	"github.com/wittyvishnu/starfashion-backend/pkg/razorpay"
	"github.com/wittyvishnu/starfashion-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gateway, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create razorpay client", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	productsRepo := products.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	refundRepo := orders.NewRefundRepository(gormDB)
	reservationRepo := checkout.NewReservationRepository(gormDB)
	contacts := checkout.NewContactReader(gormDB)

	cartService, err := cart.NewService(cartRepo, productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Tx:              dbClient,
		CartRepo:        cartRepo,
		OrdersRepo:      ordersRepo,
		ReservationRepo: reservationRepo,
		Contacts:        contacts,
		Gateway:         gateway,
		ReservationTTL:  cfg.Checkout.ReservationTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Tx:              dbClient,
		OrdersRepo:      ordersRepo,
		ReservationRepo: reservationRepo,
		CartRepo:        cartRepo,
		Verifier:        gateway,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	refundsService, err := refunds.NewService(refunds.ServiceParams{
		Tx:         dbClient,
		OrdersRepo: ordersRepo,
		RefundRepo: refundRepo,
		Gateway:    gateway,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create refunds service", err)
		os.Exit(1)
	}

	webhookService, err := rzpwebhook.NewService(rzpwebhook.ServiceParams{
		Tx:         dbClient,
		Payments:   paymentsService,
		OrdersRepo: ordersRepo,
		RefundRepo: refundRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config: cfg,
			Logger: logg,
			Probes: map[string]func(ctx context.Context) error{
				"db":    dbClient.Ping,
				"redis": redisClient.Ping,
			},
			ProductsRepo:    productsRepo,
			CartService:     cartService,
			CheckoutService: checkoutService,
			PaymentsService: paymentsService,
			OrdersService:   ordersService,
			RefundsService:  refundsService,
			WebhookService:  webhookService,
			WebhookGuard:    rzpwebhook.NewGuard(redisClient),
			Razorpay:        gateway,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
