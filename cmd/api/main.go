package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"posledger/api/swagger"
	"posledger/internal/config"
	"posledger/internal/database"
	"posledger/internal/handler"
	"posledger/internal/logger"
	"posledger/internal/metrics"
	"posledger/internal/middleware"
	"posledger/internal/model"
	"posledger/internal/repository"
	"posledger/internal/service"
	"posledger/internal/storage"
	"posledger/internal/websocket"

	"github.com/bsm/redislock"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	logger.Init("posledger", cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(cfg.CORSOrigins)
	go wsHub.Run(ctx)

	onWriteError := func(ctx context.Context, key string, err error) {
		storage.LogWriteError(ctx, key, err)
		m.StorageWriteFailed(key)
		wsHub.Notify(service.EventStorageError, gin.H{"key": key})
	}

	store, txManager, closeStore := openStorage(ctx, cfg, onWriteError)
	defer closeStore()

	// Set up dependencies (Repository -> Service -> Handler)
	shopData := repository.NewShopDataStore(ctx, store, onWriteError)
	itemRepo := repository.NewItemRepository(shopData)
	customerRepo := repository.NewCustomerRepository(shopData)
	inventoryRepo := repository.NewInventoryRepository(ctx, store, onWriteError)
	activityRepo := repository.NewActivityRepository(ctx, store, onWriteError)
	storeRepo := repository.NewStoreRepository(ctx, store, onWriteError)
	settingsRepo := repository.NewSettingsRepository(store, onWriteError)
	docRepos := []repository.DocumentRepository{
		repository.NewDocumentRepository(ctx, model.KindInvoice, store, onWriteError),
		repository.NewDocumentRepository(ctx, model.KindReturn, store, onWriteError),
		repository.NewDocumentRepository(ctx, model.KindTransfer, store, onWriteError),
	}

	activityService := service.NewActivityService(activityRepo)
	inventoryService := service.NewInventoryService(inventoryRepo, itemRepo, activityService, txManager, wsHub, m)
	catalogService := service.NewCatalogService(itemRepo, inventoryService, activityService, txManager)
	ledgerService := service.NewLedgerService(customerRepo, txManager, wsHub, m)
	customerService := service.NewCustomerService(customerRepo, txManager, cfg.PhoneRegion)
	settingsService := service.NewSettingsService(settingsRepo, cfg.DefaultExchangeRate)
	storeService := service.NewStoreService(storeRepo)
	reportService := service.NewReportService(inventoryService, activityService, ledgerService)
	documentService := service.NewDocumentService(service.DocumentServiceDeps{
		Repositories:   docRepos,
		Catalog:        catalogService,
		Customers:      customerRepo,
		Ledger:         ledgerService,
		Inventory:      inventoryService,
		Activity:       activityService,
		Settings:       settingsService,
		TxManager:      txManager,
		Notifier:       wsHub,
		Metrics:        m,
		OversellPolicy: cfg.OversellPolicy,
	})

	inventoryService.SyncFromCatalog(ctx)

	reloaders := []repository.Reloader{shopData, inventoryRepo, activityRepo, storeRepo}
	for _, r := range docRepos {
		reloaders = append(reloaders, r)
	}
	var documentHandlers []*handler.DocumentHandler
	for _, kind := range []model.DocumentKind{model.KindInvoice, model.KindReturn, model.KindTransfer} {
		editor := service.NewEditor(documentService, kind)
		reloaders = append(reloaders, editor)
		documentHandlers = append(documentHandlers, handler.NewDocumentHandler(documentService, editor))
	}
	backupService := service.NewBackupService(store, txManager, onWriteError, reloaders...)

	// Initialize Handlers
	itemHandler := handler.NewItemHandler(catalogService)
	customerHandler := handler.NewCustomerHandler(customerService, ledgerService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	activityHandler := handler.NewActivityHandler(activityService)
	settingsHandler := handler.NewSettingsHandler(settingsService, storeService)
	backupHandler := handler.NewBackupHandler(backupService)
	reportHandler := handler.NewReportHandler(reportService)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery(), middleware.AccessLog(), middleware.Metrics(m))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "storage": cfg.StorageDriver, "clients": wsHub.ClientCount()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// API Routing
	api := router.Group("")
	itemHandler.RegisterRoutes(api)
	customerHandler.RegisterRoutes(api)
	inventoryHandler.RegisterRoutes(api)
	activityHandler.RegisterRoutes(api)
	settingsHandler.RegisterRoutes(api)
	backupHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	for _, h := range documentHandlers {
		h.RegisterRoutes(api)
	}

	if cfg.SwaggerEnabled {
		swagger.Mount(router, swagger.NewDoc("POS Ledger API", "1.0"))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// openStorage selects the backing store by STORAGE_DRIVER. The returned
// func releases its connections.
func openStorage(ctx context.Context, cfg *config.Config, onErr storage.WriteErrorHandler) (storage.Store, storage.TransactionManager, func()) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := database.NewConnection(cfg.DSN())
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Database connection failed")
		}
		logger.Logger.Info().Msg("Connected to PostgreSQL successfully.")
		return storage.NewGormStore(db), storage.NewGormTransactionManager(db, onErr), func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis connection failed")
		}
		logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis successfully.")
		locker := redislock.New(client)
		return storage.NewRedisStore(client, cfg.RedisPrefix), storage.NewRedisTransactionManager(locker, cfg.RedisPrefix), func() {
			_ = client.Close()
		}

	default:
		logger.Logger.Warn().Msg("Using in-memory storage; data is lost on restart")
		return storage.NewMemoryStore(), storage.NewLocalTransactionManager(), func() {}
	}
}
