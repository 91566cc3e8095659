package handlers

import (
	"petstore/internal/models"
	"petstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	selector *services.CandidateSelector
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, selector *services.CandidateSelector, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{
		service:  service,
		selector: selector,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	// must precede "/:id"
	productRoutes.Get("/candidates", h.HandleGetCandidates)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeactivateProduct)
	productRoutes.Post("/:id/sell", h.HandleSellProduct)
	productRoutes.Put("/:id/stock", h.HandleRestockProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(products)
}

// HandleGetCandidates returns the active, in-stock products offered to recommendations.
func (h *ProductHandler) HandleGetCandidates(c *fiber.Ctx) error {
	products, err := h.selector.ActiveInStock(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidProductID(c)
	}
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(input); err != nil {
		return validationFailed(c, validationErrors(err))
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidProductID(c)
	}
	var patch models.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody(c, err)
	}
	if errorMessages := validatePatch(h.validate, patch); len(errorMessages) > 0 {
		return validationFailed(c, errorMessages)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, patch)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleDeactivateProduct soft-deletes a product.
func (h *ProductHandler) HandleDeactivateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidProductID(c)
	}
	if _, err := h.service.DeactivateProduct(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSellProduct sells units of a product.
func (h *ProductHandler) HandleSellProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidProductID(c)
	}
	var req models.SellRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, validationErrors(err))
	}

	product, err := h.service.SellProduct(c.UserContext(), id, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleRestockProduct sets the stock level of a product.
func (h *ProductHandler) HandleRestockProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidProductID(c)
	}
	var req models.StockRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, validationErrors(err))
	}

	product, err := h.service.RestockProduct(c.UserContext(), id, *req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(product)
}

// productID parses the ":id" path parameter.
func productID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return 0, false
	}
	return int64(id), true
}

func invalidProductID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Product ID must be a non-negative integer",
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
