package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/shopsmart/internal/database"
	"github.com/foxxcyber/shopsmart/internal/models"
	"github.com/foxxcyber/shopsmart/internal/services"
)

// Handler holds all handler dependencies
type Handler struct {
	list        *services.ShoppingListService
	suggestions *services.SuggestionService
	exports     *services.ExportService
	logger      *slog.Logger
}

// New creates a new Handler instance
func New(list *services.ShoppingListService, suggestions *services.SuggestionService, exports *services.ExportService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		list:        list,
		suggestions: suggestions,
		exports:     exports,
		logger:      logger.With("component", "http"),
	}
}

// ErrorHandler is a custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Default to 500
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	// Check if it's a Fiber error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return Error(c, code, message)
}

// APIResponse is a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}

// serviceError maps domain errors to a status; anything unknown is logged
// and reported as fallback with a 500
func (h *Handler) serviceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	// an invalid plan body can wrap a not-found error, so it is checked first
	case errors.Is(err, services.ErrInvalidDietPlan),
		errors.Is(err, models.ErrUnknownStore),
		errors.Is(err, models.ErrInvalidFreshness),
		errors.Is(err, models.ErrUnknownWeekday),
		errors.Is(err, models.ErrUnknownMeal),
		errors.Is(err, services.ErrNoFoodItems),
		errors.Is(err, models.ErrDuplicateDayType):
		return Error(c, fiber.StatusBadRequest, err.Error())

	case errors.Is(err, database.ErrProfileNotFound),
		errors.Is(err, database.ErrItemNotFound),
		errors.Is(err, models.ErrDayTypeNotFound),
		errors.Is(err, models.ErrFoodItemNotFound):
		return Error(c, fiber.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrDefaultProfile):
		return Error(c, fiber.StatusConflict, err.Error())

	case errors.Is(err, services.ErrSuggestionsDisabled),
		errors.Is(err, services.ErrExportDisabled):
		return Error(c, fiber.StatusServiceUnavailable, err.Error())

	case errors.Is(err, services.ErrSuggestionFailed):
		return Error(c, fiber.StatusBadGateway, services.ErrSuggestionFailed.Error())
	}

	h.logger.Error(fallback, "method", c.Method(), "path", c.Path(), "error", err)
	return Error(c, fiber.StatusInternalServerError, fallback)
}

// Health reports that the server is up
func (h *Handler) Health(c *fiber.Ctx) error {
	return Success(c, fiber.Map{
		"status":      "ok",
		"suggestions": h.suggestions != nil && h.suggestions.Enabled(),
	})
}

// Routes registers every endpoint under router
func (h *Handler) Routes(router fiber.Router) {
	router.Get("/health", h.Health)

	// Profiles and their diet plans
	profiles := router.Group("/profiles")
	profiles.Get("/", h.ListProfiles)
	profiles.Get("/:id", h.GetProfile)
	profiles.Put("/:id", h.SaveProfile)
	profiles.Delete("/:id", h.DeleteProfile)
	profiles.Post("/:id/day-types", h.AddDayType)
	profiles.Put("/:id/day-types/:dayTypeId", h.RenameDayType)
	profiles.Delete("/:id/day-types/:dayTypeId", h.RemoveDayType)
	profiles.Post("/:id/day-types/:dayTypeId/meals/:meal/items", h.AddFoodItem)
	profiles.Post("/:id/day-types/:dayTypeId/meals/:meal/items/import", h.ImportFoodItems)
	profiles.Put("/:id/day-types/:dayTypeId/meals/:meal/items/:itemId", h.UpdateFoodItem)
	profiles.Delete("/:id/day-types/:dayTypeId/meals/:meal/items/:itemId", h.RemoveFoodItem)
	profiles.Put("/:id/week/:weekday", h.AssignWeekday)

	// Consolidated shopping list
	list := router.Group("/shopping-list")
	list.Get("/", h.GetShoppingList)
	list.Get("/total", h.GetShoppingListTotal)
	list.Post("/recompute", h.RecomputeShoppingList)
	list.Post("/export", h.ExportShoppingList)
	list.Put("/items/:id", h.UpdateShoppingItem)
	list.Post("/items/:id/suggestions", h.SuggestAlternatives)
}
