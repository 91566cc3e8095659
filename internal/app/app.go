// Package app wires repositories, services and handlers into a fiber app.
package app

import (
	"petstore/internal/config"
	"petstore/internal/handlers"
	"petstore/internal/middleware"
	"petstore/internal/recommend"
	"petstore/internal/repositories"
	"petstore/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dependencies are the process-level handles the app is built from.
// Events and Generator may be nil.
type Dependencies struct {
	Products  repositories.ProductRepository
	Events    services.EventPublisher
	Generator recommend.Generator
	Logger    *zap.Logger
}

// New builds the HTTP application.
func New(cfg *config.Config, deps Dependencies) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	productService := services.NewProductService(deps.Products, deps.Events, logger)
	selector := services.NewCandidateSelector(deps.Products)
	recommender := recommend.NewRecommender(selector, deps.Generator, logger.Named("recommend"))

	app := fiber.New(fiber.Config{
		AppName:               "petstore",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.AccessLog(logger.Named("http")))
	if cfg.RequestTimeout > 0 {
		app.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	}

	handlers.NewHealthHandler(deps.Products, deps.Events != nil, recommender.Enabled()).RegisterRoutes(app)

	apiV1 := app.Group("/api/v1")
	handlers.NewProductHandler(productService, selector, logger).RegisterRoutes(apiV1)
	handlers.NewRecommendationHandler(recommender, logger).RegisterRoutes(apiV1)

	return app
}
