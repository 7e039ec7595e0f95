package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/albazaar/storefront/internal/application/cart"
	catalogapp "github.com/albazaar/storefront/internal/application/catalog"
	checkoutapp "github.com/albazaar/storefront/internal/application/checkout"
	identityapp "github.com/albazaar/storefront/internal/application/identity"
	"github.com/albazaar/storefront/internal/domain/order"
	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/domain/shared/valueobject"
	"github.com/albazaar/storefront/internal/infrastructure/auth"
	"github.com/albazaar/storefront/internal/infrastructure/backend"
	"github.com/albazaar/storefront/internal/infrastructure/cache"
	"github.com/albazaar/storefront/internal/infrastructure/config"
	"github.com/albazaar/storefront/internal/infrastructure/event"
	"github.com/albazaar/storefront/internal/infrastructure/logger"
	"github.com/albazaar/storefront/internal/infrastructure/telemetry"
	"github.com/albazaar/storefront/internal/interfaces/http/handler"
	"github.com/albazaar/storefront/internal/interfaces/http/middleware"
	"github.com/albazaar/storefront/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Bootstrap logger for telemetry setup, replaced once the logs bridge exists
	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Fields: map[string]string{
			"service": cfg.Telemetry.ServiceName,
			"version": version,
		},
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	collector := telemetry.Collector{
		Endpoint:       cfg.Telemetry.CollectorEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Collector: collector,
		Enabled:   cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}

	log, err := logger.New(logCfg, telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: loggerProvider,
		Level:          logger.ParseLevel(cfg.Telemetry.LogsExportLevel),
	}))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Collector:     collector,
		Enabled:       cfg.Telemetry.Enabled,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Collector:      collector,
		Enabled:        cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		ExportInterval: cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	metrics, err := telemetry.NewStorefrontMetrics(meterProvider.Meter(cfg.Telemetry.ServiceName))
	if err != nil {
		log.Fatal("Failed to register storefront metrics", zap.Error(err))
	}

	// Shared store for sessions, checkout guards, journals and the catalog cache
	store, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create session store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing store", zap.Error(err))
		}
	}()

	backendConfig := backend.NewConfig(cfg.Backend.BaseURL)
	backendConfig.ProductBaseURL = cfg.Backend.ProductBaseURL
	backendConfig.TimeoutSeconds = cfg.Backend.TimeoutSeconds
	backendConfig.MaxResponseBytes = cfg.Backend.MaxResponseBytes
	storeBackend, err := backend.NewClient(backendConfig, log)
	if err != nil {
		log.Fatal("Failed to create backend client", zap.Error(err))
	}

	// Event bus: business metrics always, Kafka when enabled
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewMetricsHandler(metrics, log))

	var kafkaPublisher *event.KafkaPublisher
	if cfg.Events.KafkaEnabled {
		kafkaPublisher, err = event.NewKafkaPublisher(cfg.Events, log)
		if err != nil {
			log.Fatal("Failed to create Kafka publisher", zap.Error(err))
		}
		eventBus.Subscribe(event.NewIdempotentHandler("kafka", kafkaPublisher, store, log,
			event.WithDeliveryRecorder(metrics)))
		log.Info("Kafka event publishing enabled",
			zap.Strings("brokers", cfg.Events.KafkaBrokers),
			zap.String("topic", cfg.Events.KafkaTopic),
		)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	var events shared.EventPublisher = eventBus

	// Application services
	tokens, err := auth.NewJWTService(cfg.Session)
	if err != nil {
		log.Fatal("Failed to create session token service", zap.Error(err))
	}
	sessions := identityapp.NewSessionManager(
		cache.NewSessionStore(store),
		tokens,
		auth.NewStoreTokenBlacklist(store),
		events,
		identityapp.SessionManagerConfig{
			TTL:            cfg.Session.TTL,
			RequireAddress: cfg.Session.RequireAddress,
		},
		log,
	)

	location := cfg.App.Location()
	loginService := identityapp.NewLoginService(storeBackend, sessions, metrics, log)
	accountService := identityapp.NewAccountService(storeBackend, sessions, location, log)
	catalogService := catalogapp.NewCatalogService(
		storeBackend,
		cache.NewCatalogCache(store, cfg.Catalog.CacheTTL, cfg.Catalog.CacheEnabled, log),
		log,
	)
	cartService := cartapp.NewCartService(storeBackend, catalogService, sessions, metrics, log)
	checkoutService := checkoutapp.NewCheckoutService(checkoutapp.CheckoutServiceConfig{
		Carts:    cartService,
		Profiles: accountService,
		Orders:   storeBackend,
		Accounts: storeBackend,
		Sessions: sessions,
		Journals: cache.NewJournalStore(store),
		Guard:    store,
		Events:   events,
		Policy: order.ShippingPolicy{
			NormalFee:             valueobject.Won(cfg.Checkout.NormalFee),
			IslandFee:             valueobject.Won(cfg.Checkout.IslandFee),
			FreeShippingEnabled:   cfg.Checkout.FreeShippingEnabled,
			FreeShippingThreshold: valueobject.Won(cfg.Checkout.FreeShippingThreshold),
		},
		GuardTTL:   cfg.Checkout.GuardTTL,
		JournalTTL: cfg.Checkout.JournalTTL,
		Location:   location,
		Metrics:    metrics,
		Logger:     log,
	})

	// HTTP handlers
	cookie := middleware.SessionCookie{
		Name:     cfg.Session.CookieName,
		Domain:   cfg.Cookie.Domain,
		Path:     cfg.Cookie.Path,
		Secure:   cfg.Cookie.Secure,
		SameSite: middleware.ParseSameSite(cfg.Cookie.SameSite),
	}
	handlers := router.Handlers{
		Session:  handler.NewSessionHandler(loginService, cartService),
		Auth:     handler.NewAuthHandler(loginService, cookie, metrics),
		Account:  handler.NewAccountHandler(accountService),
		Cart:     handler.NewCartHandler(cartService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Catalog:  handler.NewCatalogHandler(catalogService),
	}
	healthHandler := handler.NewHealthHandler(cfg.App.Name, version, store, log)

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Logger and Recovery - Log requests, catch panics
	// 3. Tracing - Server span with session and error code, 5xx marking
	// 4. HTTPMetrics - Request counters and latency
	// 5. Security and CORS
	// 6. BodyLimit and Timeout
	// 7. RateLimit - Per-IP budget kept in the shared store (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName:  cfg.Telemetry.ServiceName,
		Enabled:      tracerProvider.IsEnabled(),
		SkipPrefixes: []string{"/health"},
	}))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       meterProvider.IsEnabled(),
		Logger:        log,
	}))
	security := middleware.DefaultSecurityConfig()
	if cfg.Cookie.Secure {
		security.HSTSMaxAge = 365 * 24 * time.Hour
	}
	engine.Use(middleware.SecureWithConfig(security))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", handler.IdempotencyKeyHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(store, "global", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, log)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	var authLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(store, "auth", cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow, log)
		authLimit = middleware.AuthRateLimit(authLimiter)
	}

	// Probes stay outside the API and never get a session
	engine.GET("/health", healthHandler.Live)
	engine.GET("/health/ready", healthHandler.Ready)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.Session(middleware.SessionMiddlewareConfig{
		Resolver:  sessions,
		Cookie:    cookie,
		SkipPaths: []string{"/health", "/health/ready"},
		Logger:    log,
	}))
	for _, group := range router.StorefrontGroups(handlers, router.Guards{
		RequireLogin: middleware.RequireLogin(),
		AuthLimit:    authLimit,
	}) {
		r.Register(group)
		log.Debug("Routes registered",
			zap.String("group", group.Name()),
			zap.Strings("routes", group.Routes()),
		)
	}
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Drain events before closing their sinks
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error("Error closing Kafka publisher", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracing", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down OTEL logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
