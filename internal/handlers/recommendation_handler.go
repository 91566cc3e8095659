package handlers

import (
	"petstore/internal/models"
	"petstore/internal/recommend"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RecommendationHandler serves product recommendations.
type RecommendationHandler struct {
	recommender *recommend.Recommender
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recommender *recommend.Recommender, logger *zap.Logger) *RecommendationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationHandler{
		recommender: recommender,
		validate:    validator.New(),
		logger:      logger,
	}
}

// RegisterRoutes registers the recommendation route.
func (h *RecommendationHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/recommendation", h.HandleRecommend)
}

// HandleRecommend picks one product for the described pet.
func (h *RecommendationHandler) HandleRecommend(c *fiber.Ctx) error {
	var description models.PetDescription
	if err := c.BodyParser(&description); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(description); err != nil {
		return validationFailed(c, validationErrors(err))
	}

	rec, err := h.recommender.Recommend(c.UserContext(), description)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(rec)
}
