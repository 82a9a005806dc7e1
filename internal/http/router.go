package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/config"
	"github.com/peermarket/backend/internal/http/handlers"
	"github.com/peermarket/backend/internal/middleware"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	productHandler *handlers.ProductHandler,
	categoryHandler *handlers.CategoryHandler,
	blockHandler *handlers.BlockHandler,
	wishlistHandler *handlers.WishlistHandler,
	negotiationHandler *handlers.NegotiationHandler,
	dealHandler *handlers.DealHandler,
	analyticsHandler *handlers.AnalyticsHandler,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Auth (public)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Categories are readable without auth.
	api.Get("/categories", categoryHandler.List)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Get("/me/profile", userHandler.GetProfile)
	protected.Put("/me/profile", userHandler.UpdateProfile)

	// Products
	protected.Post("/products", productHandler.Create)
	protected.Get("/products", productHandler.List)
	protected.Get("/products/mine", productHandler.Mine)
	protected.Get("/products/:id", productHandler.Get)
	protected.Put("/products/:id", productHandler.Update)
	protected.Delete("/products/:id", productHandler.Delete)
	protected.Post("/products/:id/click", productHandler.Click)
	protected.Get("/products/:id/images", productHandler.ListImages)
	protected.Post("/products/:id/images", productHandler.AddImage)
	protected.Delete("/product-images/:id", productHandler.DeleteImage)

	// Categories (create is admin-only)
	protected.Post("/categories", middleware.AdminMiddleware(cfg), categoryHandler.Create)

	// Blocks
	protected.Post("/blocks", blockHandler.Create)
	protected.Get("/blocks", blockHandler.List)
	protected.Delete("/blocks/:id", blockHandler.Delete)

	// Wishlist
	protected.Post("/wishlist", wishlistHandler.Add)
	protected.Get("/wishlist", wishlistHandler.List)
	protected.Delete("/wishlist/:productId", wishlistHandler.Remove)

	// Negotiations
	protected.Post("/negotiations/start", negotiationHandler.Start)
	protected.Get("/negotiations", negotiationHandler.List)
	protected.Get("/negotiations/selling", negotiationHandler.Selling)
	protected.Get("/negotiations/buying", negotiationHandler.Buying)
	protected.Get("/negotiations/:id", negotiationHandler.Get)
	protected.Post("/negotiations/:id/offer", negotiationHandler.Offer)
	protected.Post("/negotiations/:id/accept", negotiationHandler.Accept)
	protected.Post("/negotiations/:id/reject", negotiationHandler.Reject)
	protected.Post("/negotiations/:id/cancel", negotiationHandler.Cancel)

	// Deals
	protected.Get("/deals", dealHandler.List)
	protected.Get("/deals/sales", dealHandler.Sales)
	protected.Get("/deals/purchases", dealHandler.Purchases)
	protected.Get("/deals/:id", dealHandler.Get)
	protected.Patch("/deals/:id/status", dealHandler.UpdateStatus)

	// Analytics reads
	protected.Get("/analytics/top-products", analyticsHandler.TopProducts)
	protected.Get("/analytics/by-location", analyticsHandler.ByLocation)
}
