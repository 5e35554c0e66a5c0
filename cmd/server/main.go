package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/ComunidadDecidida/mayoristas/internal/application/catalog"
	orderingapp "github.com/ComunidadDecidida/mayoristas/internal/application/ordering"
	settingsapp "github.com/ComunidadDecidida/mayoristas/internal/application/settings"
	syncapp "github.com/ComunidadDecidida/mayoristas/internal/application/sync"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/ComunidadDecidida/mayoristas/internal/infrastructure/cache"
	"github.com/ComunidadDecidida/mayoristas/internal/infrastructure/config"
	"github.com/ComunidadDecidida/mayoristas/internal/infrastructure/logger"
	"github.com/ComunidadDecidida/mayoristas/internal/infrastructure/persistence"
	"github.com/ComunidadDecidida/mayoristas/internal/infrastructure/scheduler"
	supplierinfra "github.com/ComunidadDecidida/mayoristas/internal/infrastructure/supplier"
	"github.com/ComunidadDecidida/mayoristas/internal/interfaces/http/handler"
	"github.com/ComunidadDecidida/mayoristas/internal/interfaces/http/middleware"
	"github.com/ComunidadDecidida/mayoristas/internal/interfaces/http/router"
)

const appVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	zapLogger, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", appVersion))

	gormLogger := logger.NewGormLogger(zapLogger, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// The lock TTL exceeds the run timeout so a crashed run releases
	// its lock on its own
	lockTTL := cfg.Sync.RunTimeout + 2*time.Minute
	var runLock supplier.RunLock
	if cfg.Redis.Enabled {
		redisLock, err := cache.NewRedisRunLock(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, lockTTL)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisLock.Close()
		runLock = redisLock
		zapLogger.Info("Using Redis run lock")
	} else {
		runLock = cache.NewInMemoryRunLock(lockTTL)
		zapLogger.Info("Using in-memory run lock")
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	brandRepo := persistence.NewGormBrandRepository(db.DB)
	bannerRepo := persistence.NewGormBannerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	syncRunRepo := persistence.NewGormSyncRunRepository(db.DB)

	// Application services. The settings service doubles as the pricing
	// source for the catalog, ordering and sync services.
	settingsService := settingsapp.NewService(settingsRepo)
	productService := catalogapp.NewProductService(productRepo, settingsService)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	brandService := catalogapp.NewBrandService(brandRepo)
	bannerService := catalogapp.NewBannerService(bannerRepo)
	orderService := orderingapp.NewOrderService(orderRepo, productRepo, settingsService, zapLogger)

	// Supplier gateways
	var adapters []supplier.Gateway
	limiters := make(map[supplier.Code]*supplierinfra.RateLimiter)

	if cfg.Suppliers.Syscom.Enabled {
		limiter := supplierinfra.NewRateLimiter(
			cfg.Suppliers.Syscom.MaxRequests,
			cfg.Suppliers.Syscom.Window,
			cfg.Suppliers.Syscom.MinDelay,
			zapLogger)
		creds, err := supplierinfra.NewOAuthProvider(supplierinfra.OAuthConfig{
			TokenURL:     cfg.Suppliers.Syscom.TokenURL,
			ClientID:     cfg.Suppliers.Syscom.ClientID,
			ClientSecret: cfg.Suppliers.Syscom.ClientSecret,
			Timeout:      cfg.Suppliers.Syscom.Timeout,
		})
		if err != nil {
			zapLogger.Fatal("Invalid SYSCOM credentials", zap.Error(err))
		}
		adapterCfg := supplierinfra.NewSyscomConfig(
			cfg.Suppliers.Syscom.ClientID, cfg.Suppliers.Syscom.ClientSecret)
		if cfg.Suppliers.Syscom.BaseURL != "" {
			adapterCfg.BaseURL = cfg.Suppliers.Syscom.BaseURL
		}
		if cfg.Suppliers.Syscom.Timeout > 0 {
			adapterCfg.Timeout = cfg.Suppliers.Syscom.Timeout
		}
		adapter, err := supplierinfra.NewSyscomAdapter(adapterCfg, creds, limiter, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to build SYSCOM adapter", zap.Error(err))
		}
		adapters = append(adapters, adapter)
		limiters[supplier.CodeSyscom] = limiter
	}

	if cfg.Suppliers.Tecnosinergia.Enabled {
		limiter := supplierinfra.NewRateLimiter(
			cfg.Suppliers.Tecnosinergia.MaxRequests,
			cfg.Suppliers.Tecnosinergia.Window,
			cfg.Suppliers.Tecnosinergia.MinDelay,
			zapLogger)
		creds, err := supplierinfra.NewStaticKeyProvider(cfg.Suppliers.Tecnosinergia.APIToken)
		if err != nil {
			zapLogger.Fatal("Invalid TECNOSINERGIA credentials", zap.Error(err))
		}
		adapterCfg := supplierinfra.NewTecnosinergiaConfig(cfg.Suppliers.Tecnosinergia.APIToken)
		if cfg.Suppliers.Tecnosinergia.BaseURL != "" {
			adapterCfg.BaseURL = cfg.Suppliers.Tecnosinergia.BaseURL
		}
		if cfg.Suppliers.Tecnosinergia.Timeout > 0 {
			adapterCfg.Timeout = cfg.Suppliers.Tecnosinergia.Timeout
		}
		if cfg.Suppliers.Tecnosinergia.PageSize > 0 {
			adapterCfg.PageSize = cfg.Suppliers.Tecnosinergia.PageSize
		}
		adapter, err := supplierinfra.NewTecnosinergiaAdapter(adapterCfg, creds, limiter, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to build TECNOSINERGIA adapter", zap.Error(err))
		}
		adapters = append(adapters, adapter)
		limiters[supplier.CodeTecnosinergia] = limiter
	}

	registry := supplierinfra.NewRegistry(adapters...)
	gateways := registry.Gateways()
	if len(gateways) == 0 {
		zapLogger.Warn("No supplier gateways enabled, sync is unavailable")
	}

	syncService := syncapp.NewService(
		gateways, productRepo, categoryRepo, syncRunRepo, runLock,
		settingsService,
		syncapp.Config{
			RunTimeout:          cfg.Sync.RunTimeout,
			CategoryDelay:       cfg.Sync.CategoryDelay,
			BatchSize:           cfg.Sync.BatchSize,
			BatchPause:          cfg.Sync.BatchPause,
			MaxPagesPerCategory: cfg.Sync.MaxPagesPerCategory,
		},
		zapLogger)

	// Scheduler
	var syncScheduler *scheduler.SyncScheduler
	if cfg.Sync.SchedulerEnabled && len(gateways) > 0 {
		schedCfg := scheduler.DefaultConfig()
		schedCfg.Enabled = true
		if cfg.Sync.SchedulerInterval > 0 {
			schedCfg.Interval = cfg.Sync.SchedulerInterval
		}
		schedCfg.RunOnStart = cfg.Sync.SchedulerRunOnStart
		syncScheduler, err = scheduler.NewSyncScheduler(schedCfg, syncService, zapLogger)
		if err != nil {
			zapLogger.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		if err := syncScheduler.Start(context.Background()); err != nil {
			zapLogger.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// HTTP stack
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			zapLogger.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(zapLogger),
		logger.Recovery(zapLogger),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.HTTP.RateLimitEnabled {
		ratePerSecond := float64(cfg.HTTP.RateLimitRequests) / cfg.HTTP.RateLimitWindow.Seconds()
		engine.Use(middleware.RateLimit(
			middleware.NewRateLimiter(ratePerSecond, cfg.HTTP.RateLimitRequests)))
	}

	r := router.New(engine)
	r.Register(
		handler.NewSystemHandler(cfg.App.Name, appVersion, db),
		handler.NewProductHandler(productService),
		handler.NewCategoryHandler(categoryService),
		handler.NewBrandHandler(brandService),
		handler.NewBannerHandler(bannerService),
		handler.NewSettingsHandler(settingsService),
		handler.NewOrderHandler(orderService),
		handler.NewSyncHandler(syncService, syncRunRepo, limiters),
	)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if syncScheduler != nil {
		if err := syncScheduler.Stop(shutdownCtx); err != nil {
			zapLogger.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Forced shutdown", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}
