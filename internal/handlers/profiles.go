package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/shopsmart/internal/models"
)

// ListProfiles returns the ids of all profiles
func (h *Handler) ListProfiles(c *fiber.Ctx) error {
	ids, err := h.list.ListProfiles(c.Context())
	if err != nil {
		return h.serviceError(c, err, "failed to list profiles")
	}

	return Success(c, ids)
}

// GetProfile returns the diet plan of a profile
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	plan, err := h.list.GetDietPlan(c.Context(), c.Params("id"))
	if err != nil {
		return h.serviceError(c, err, "failed to get diet plan")
	}

	return Success(c, plan)
}

// SaveProfile replaces a profile's diet plan and recomputes the list
func (h *Handler) SaveProfile(c *fiber.Ctx) error {
	plan := models.NewDietPlan()
	if err := c.BodyParser(plan); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.list.SaveDietPlan(c.Context(), c.Params("id"), plan)
	if err != nil {
		return h.serviceError(c, err, "failed to save diet plan")
	}

	return Success(c, fiber.Map{
		"plan":    plan,
		"changes": result.Changes,
	})
}

// DeleteProfile removes a profile and recomputes the list
func (h *Handler) DeleteProfile(c *fiber.Ctx) error {
	result, err := h.list.DeleteProfile(c.Context(), c.Params("id"))
	if err != nil {
		return h.serviceError(c, err, "failed to delete profile")
	}

	return Success(c, fiber.Map{
		"message": "profile deleted",
		"changes": result.Changes,
	})
}

// AddDayType appends an empty day type
func (h *Handler) AddDayType(c *fiber.Ctx) error {
	var req models.AddDayTypeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return Error(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	dayType, err := h.list.AddDayType(c.Context(), c.Params("id"), req.Name)
	if err != nil {
		return h.serviceError(c, err, "failed to add day type")
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    dayType,
	})
}

// RenameDayType changes the name of a day type
func (h *Handler) RenameDayType(c *fiber.Ctx) error {
	var req models.RenameDayTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return Error(c, fiber.StatusBadRequest, "name is required")
	}

	plan, err := h.list.RenameDayType(c.Context(), c.Params("id"), c.Params("dayTypeId"), strings.TrimSpace(req.Name))
	if err != nil {
		return h.serviceError(c, err, "failed to rename day type")
	}

	return Success(c, plan)
}

// RemoveDayType deletes a day type and clears the weekdays using it
func (h *Handler) RemoveDayType(c *fiber.Ctx) error {
	plan, err := h.list.RemoveDayType(c.Context(), c.Params("id"), c.Params("dayTypeId"))
	if err != nil {
		return h.serviceError(c, err, "failed to remove day type")
	}

	return Success(c, plan)
}

// AddFoodItem appends a food item to a meal
func (h *Handler) AddFoodItem(c *fiber.Ctx) error {
	var item models.DietFoodItem
	if err := c.BodyParser(&item); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	added, err := h.list.AddFoodItem(c.Context(), c.Params("id"), c.Params("dayTypeId"), mealParam(c), item)
	if err != nil {
		return h.serviceError(c, err, "failed to add food item")
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    added,
	})
}

// ImportFoodItems adds every food listed in a block of text to a meal
func (h *Handler) ImportFoodItems(c *fiber.Ctx) error {
	var req models.ImportFoodItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	items, err := h.list.ImportFoodItems(c.Context(), c.Params("id"), c.Params("dayTypeId"), mealParam(c), req.Content)
	if err != nil {
		return h.serviceError(c, err, "failed to import food items")
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    items,
	})
}

// UpdateFoodItem replaces a food item inside a meal
func (h *Handler) UpdateFoodItem(c *fiber.Ctx) error {
	var item models.DietFoodItem
	if err := c.BodyParser(&item); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	item.ID = c.Params("itemId")

	plan, err := h.list.UpdateFoodItem(c.Context(), c.Params("id"), c.Params("dayTypeId"), mealParam(c), item)
	if err != nil {
		return h.serviceError(c, err, "failed to update food item")
	}

	return Success(c, plan)
}

// RemoveFoodItem deletes a food item from a meal
func (h *Handler) RemoveFoodItem(c *fiber.Ctx) error {
	plan, err := h.list.RemoveFoodItem(c.Context(), c.Params("id"), c.Params("dayTypeId"), mealParam(c), c.Params("itemId"))
	if err != nil {
		return h.serviceError(c, err, "failed to remove food item")
	}

	return Success(c, plan)
}

// AssignWeekday points a weekday at a day type; a null day_type_id clears it
func (h *Handler) AssignWeekday(c *fiber.Ctx) error {
	var req models.AssignWeekdayRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	day := models.Weekday(strings.ToLower(c.Params("weekday")))
	plan, err := h.list.AssignWeekday(c.Context(), c.Params("id"), day, req.DayTypeID)
	if err != nil {
		return h.serviceError(c, err, "failed to assign weekday")
	}

	return Success(c, plan)
}

func mealParam(c *fiber.Ctx) models.MealType {
	return models.MealType(strings.ToLower(c.Params("meal")))
}
