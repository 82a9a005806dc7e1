package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/config"
	"github.com/peermarket/backend/internal/db"
	"github.com/peermarket/backend/internal/events"
	apphttp "github.com/peermarket/backend/internal/http"
	"github.com/peermarket/backend/internal/http/handlers"
	"github.com/peermarket/backend/internal/repositories"
	"github.com/peermarket/backend/internal/services"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	blockRepo := repositories.NewBlockRepo(pool)
	wishlistRepo := repositories.NewWishlistRepo(pool)
	negotiationRepo := repositories.NewNegotiationRepo(pool)
	dealRepo := repositories.NewDealRepo(pool)
	analyticsRepo := repositories.NewAnalyticsRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)

	// Services
	analyticsService := services.NewAnalyticsService(analyticsRepo, rdb, publisher, cfg, log)
	userService := services.NewUserService(userRepo, profileRepo, cfg, log)
	productService := services.NewProductService(productRepo, analyticsRepo, analyticsService, log)
	blockService := services.NewBlockService(blockRepo, userRepo)
	wishlistService := services.NewWishlistService(wishlistRepo, productRepo, analyticsService)
	negotiationService := services.NewNegotiationService(
		negotiationRepo, productRepo, blockRepo, profileRepo, userRepo, analyticsService, publisher, log)
	dealService := services.NewDealService(dealRepo, publisher, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, log)
	userHandler := handlers.NewUserHandler(userService, log)
	productHandler := handlers.NewProductHandler(productService, log)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo, log)
	blockHandler := handlers.NewBlockHandler(blockService, log)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService, log)
	negotiationHandler := handlers.NewNegotiationHandler(negotiationService, log)
	dealHandler := handlers.NewDealHandler(dealService, log)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb,
		authHandler, userHandler, productHandler, categoryHandler,
		blockHandler, wishlistHandler, negotiationHandler, dealHandler, analyticsHandler)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
