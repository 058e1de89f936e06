package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "wms/api/swagger" // swagger docs
	"wms/internal/config"
	"wms/internal/database"
	"wms/internal/handler"
	"wms/internal/logger"
	"wms/internal/metrics"
	"wms/internal/middleware"
	"wms/internal/repository"
	"wms/internal/service"
	"wms/internal/token"
	"wms/internal/websocket"
)

// @title           Warehouse Management API
// @version         1.0
// @description     Accounts, catalog, inventory and orders for a single warehouse.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadServer(config.DefaultEnvFile)
	if err != nil {
		logger.New(logger.Config{}).Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{Env: cfg.LogEnv, Level: cfg.LogLevel, Service: "wms-api"})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Server, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DSN(), log)
	if err != nil {
		return err
	}
	log.Info("connected to PostgreSQL")

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	wsHub := websocket.NewHub(log)
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	denylist := middleware.NewDenylist()
	auth := middleware.NewAuthenticator(issuer, denylist)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	accountRepo := repository.NewAccountRepository(db)
	itemRepo := repository.NewItemRepository(db)
	boxRepo := repository.NewBoxRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	authService := service.NewAuthService(accountRepo, issuer)
	accountService := service.NewAccountService(accountRepo, auditRepo, txManager)
	itemService := service.NewItemService(itemRepo, auditRepo, txManager)
	boxService := service.NewBoxService(boxRepo, itemRepo, auditRepo, txManager)
	inventoryService := service.NewInventoryService(inventoryRepo, itemRepo, auditRepo, txManager, wsHub)
	orderService := service.NewOrderService(orderRepo, itemRepo, accountRepo, auditRepo, txManager)
	auditService := service.NewAuditService(auditRepo)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return err
		}
	}

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(metrics.Middleware())
	router.Use(middleware.SecureHeaders(cfg.SSLRedirect, !cfg.IsRelease()))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, auth, c)
	})

	root := router.Group("")
	handler.NewAuthHandler(authService, auth, denylist).RegisterRoutes(root)
	handler.NewAccountHandler(accountService, auth).RegisterRoutes(root)
	handler.NewItemHandler(itemService, auth).RegisterRoutes(root)
	handler.NewBoxHandler(boxService, auth).RegisterRoutes(root)
	handler.NewInventoryHandler(inventoryService, auth).RegisterRoutes(root)
	handler.NewOrderHandler(orderService, auth).RegisterRoutes(root)
	handler.NewAuditHandler(auditService, auth).RegisterRoutes(root)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wsHub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
