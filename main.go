package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appNotification "github.com/Zhima-Mochi/minishop-checkout/internal/application/notification"
	appOrder "github.com/Zhima-Mochi/minishop-checkout/internal/application/order"
	appPayment "github.com/Zhima-Mochi/minishop-checkout/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/application/pricing"
	"github.com/Zhima-Mochi/minishop-checkout/internal/config"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
	domainOrder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/kafka"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/notify"
	infraobs "github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/paystack"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/postgres"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/redislock"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	httppresentation "github.com/Zhima-Mochi/minishop-checkout/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-checkout/internal/presentation/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// stores groups the persistence ports so memory and Postgres are interchangeable.
type stores struct {
	catalog catalog.Repository
	orders  domainOrder.Repository
	health  httppresentation.Pinger
	close   func() error
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, err := zaplogger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger.Zap())
	systemLogger := baseLogger.System()

	shutdownTracing := oteltrace.Install(cfg.ServiceName)
	defer func() { _ = shutdownTracing(context.Background()) }()
	tel := infraobs.Bootstrap(cfg.ServiceName, baseLogger, prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, systemLogger)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	if cfg.SeedCatalog {
		n, err := seedCatalog(ctx, st.catalog)
		if err != nil {
			return err
		}
		if n > 0 {
			systemLogger.Info("catalog_seeded", observability.F("products", n))
		}
	}

	lock, closeLock, err := openReferenceLock(ctx, cfg, baseLogger)
	if err != nil {
		return err
	}
	defer func() { _ = closeLock() }()

	// In-memory event bus fanning placements out to notification and Kafka.
	bus := outbox.NewBus(baseLogger, outbox.WithHandlerTimeout(cfg.EventHandlerTimeout))
	notifications := appNotification.NewService(notify.NewLogNotifier(baseLogger, cfg.OwnerEmail), tel)
	workerpresentation.RegisterNotifications(bus, notifications, tel)
	if len(cfg.KafkaBrokers) > 0 {
		relay := kafka.NewRelay(kafka.NewWriter(cfg.KafkaTopic, cfg.KafkaBrokers...), tel)
		relay.Register(bus)
		defer func() { _ = relay.Close() }()
		systemLogger.Info("kafka_relay_enabled",
			observability.F("topic", cfg.KafkaTopic),
			observability.F("brokers", cfg.KafkaBrokers),
		)
	}
	bus.Start(ctx)

	if cfg.PaystackSecretKey == "" {
		systemLogger.Warn("paystack_secret_missing")
	}
	gateway := paystack.New(paystack.Config{
		SecretKey: cfg.PaystackSecretKey,
		BaseURL:   cfg.PaystackBaseURL,
		Timeout:   cfg.PaystackTimeout,
	}, tel)
	pricer := pricing.NewCalculator(st.catalog, pricing.ShippingPolicy{
		FlatFee:       cfg.ShippingFlatFee,
		FreeThreshold: cfg.ShippingFreeThreshold,
	})
	idGenerator := id.NewUUIDGenerator()

	handler := httppresentation.NewHandler(httppresentation.Deps{
		PlaceOrder:        appOrder.NewPlaceManualOrderUseCase(st.orders, idGenerator, bus, tel),
		UpdateStatus:      appOrder.NewUpdateStatusUseCase(st.orders, bus, tel),
		Orders:            appOrder.NewQueries(st.orders),
		Products:          st.catalog,
		InitializePayment: appPayment.NewInitializePaymentUseCase(gateway, pricer, cfg.PaymentCallbackURL, tel),
		ReconcilePayment: appPayment.NewReconcilePaymentUseCase(
			gateway, pricer, st.orders, lock, idGenerator, bus, tel,
		),
		StorefrontURL: cfg.StorefrontURL,
		Health:        st.health,
	}, tel)

	router := handler.Router()
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		systemLogger.Info("http_server_start",
			observability.F("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error", observability.E(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error", observability.E(err))
	} else {
		systemLogger.Info("http_server_stopped")
	}
	bus.Stop(shutdownCtx)
	return nil
}

func openStores(ctx context.Context, cfg config.Config, log observability.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		mem := memory.NewStore()
		log.Info("store_selected", observability.F("store", "memory"))
		return &stores{
			catalog: mem.Catalog(),
			orders:  mem.Orders(),
			close:   func() error { return nil },
		}, nil
	}

	pg, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}
	log.Info("store_selected", observability.F("store", "postgres"))
	return &stores{
		catalog: pg.Catalog(),
		orders:  pg.Orders(),
		health:  pg,
		close:   pg.Close,
	}, nil
}

func openReferenceLock(ctx context.Context, cfg config.Config, logger observability.Logger) (appPayment.ReferenceLock, func() error, error) {
	if cfg.RedisAddr == "" {
		return memory.NewReferenceLock(), func() error { return nil }, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return redislock.New(client, cfg.ReconcileLockTTL, logger), client.Close, nil
}
