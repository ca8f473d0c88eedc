package main

import (
	"context"
	"log"
	"os"

	"go-inventory-pos/internal/cache"
	"go-inventory-pos/internal/config"
	"go-inventory-pos/internal/handler"
	"go-inventory-pos/internal/middleware"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/service"
	"go-inventory-pos/internal/ws"
	"go-inventory-pos/pkg/database"
	"go-inventory-pos/pkg/jwt"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 3. Report cache (optional)
	var reportCache service.ReportCache
	var cacheStatus handler.CacheStatus
	var redisCache *cache.Cache
	if cfg.Cache.RedisAddr != "" {
		redisCache, err = cache.Connect(context.Background(), cfg.Cache.RedisAddr, cfg.Cache.Prefix, cfg.Cache.TTL)
		if err != nil {
			log.Printf("Warning: report cache disabled: %v", err)
		} else {
			reportCache = redisCache
			cacheStatus = redisCache
			log.Printf("Report cache enabled (%s, ttl %s)", cfg.Cache.RedisAddr, cfg.Cache.TTL)
		}
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	userRepo := repository.NewUserRepo(db)

	saleNumbers, err := service.NewSaleNumberGenerator(service.SystemClock)
	if err != nil {
		log.Fatal(err)
	}

	ledgerService := service.NewLedgerService(db, productRepo, txRepo, wsHub, reportCache)
	invService := service.NewInventoryService(db, productRepo, categoryRepo, ledgerService, wsHub, reportCache)
	checkoutService := service.NewCheckoutService(db, productRepo, saleRepo, ledgerService, saleNumbers, cfg.Sales.NumberAttempts, wsHub, reportCache)
	reportService := service.NewReportService(productRepo, txRepo, saleRepo, reportCache, service.SystemClock)

	handlers := handler.Handlers{
		Inventory: handler.NewInventoryHandler(invService),
		Ledger:    handler.NewLedgerHandler(ledgerService),
		Sales:     handler.NewSaleHandler(checkoutService),
		Reports:   handler.NewReportHandler(reportService),
		Dashboard: handler.NewDashboardHandler(reportService),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	app.Get("/health", handler.NewHealthHandler(db, cacheStatus, wsHub).Check)

	// 7. Routes
	verifier := jwt.NewVerifier(cfg.Auth.JWTSecret)
	handler.RegisterRoutes(app.Group("/api/v1"), handlers, middleware.RequireAuth(verifier, userRepo))

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Panic(err)
		}
	}()

	// 8. Graceful Shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.App.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"fiber": func(ctx context.Context) error {
				log.Println("Shutting down server...")
				err := app.ShutdownWithContext(ctx)
				wsHub.Stop()
				return err
			},
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
			"redis": func(ctx context.Context) error {
				if redisCache == nil {
					return nil
				}
				return redisCache.Close()
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
