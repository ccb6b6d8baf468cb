package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/shopsmart/internal/models"
)

// GetShoppingList returns the priced list, filtered by ?search= and ordered by ?sort=
func (h *Handler) GetShoppingList(c *fiber.Ctx) error {
	sort, err := models.ParseSortOrder(c.Query("sort"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, err.Error())
	}

	view, err := h.list.ListView(c.Context(), models.ListQuery{
		Search: c.Query("search"),
		Sort:   sort,
	})
	if err != nil {
		return h.serviceError(c, err, "failed to get shopping list")
	}

	return Success(c, view)
}

// GetShoppingListTotal returns only the estimated cost of the whole list
func (h *Handler) GetShoppingListTotal(c *fiber.Ctx) error {
	view, err := h.list.ListView(c.Context(), models.ListQuery{})
	if err != nil {
		return h.serviceError(c, err, "failed to compute total")
	}

	return Success(c, fiber.Map{
		"total":         view.Total,
		"total_rounded": view.TotalRounded,
		"item_count":    view.ItemCount,
	})
}

// RecomputeShoppingList rebuilds the list from the diet plans
func (h *Handler) RecomputeShoppingList(c *fiber.Ctx) error {
	result, err := h.list.Recompute(c.Context())
	if err != nil {
		return h.serviceError(c, err, "failed to recompute shopping list")
	}

	return Success(c, result)
}

// UpdateShoppingItem edits prices, freshness or the highlight flag of an item
func (h *Handler) UpdateShoppingItem(c *fiber.Ctx) error {
	var req models.UpdateShoppingItemRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.list.UpdateItem(c.Context(), c.Params("id"), req)
	if err != nil {
		return h.serviceError(c, err, "failed to update item")
	}

	return Success(c, item)
}

// SuggestAlternatives asks the suggestion model for cheaper options
func (h *Handler) SuggestAlternatives(c *fiber.Ctx) error {
	resp, err := h.suggestions.Suggest(c.Context(), c.Params("id"))
	if err != nil {
		return h.serviceError(c, err, "failed to get suggestions")
	}

	return Success(c, resp)
}

// ExportShoppingList uploads a snapshot of the list and returns its download link
func (h *Handler) ExportShoppingList(c *fiber.Ctx) error {
	result, err := h.exports.Export(c.Context())
	if err != nil {
		return h.serviceError(c, err, "failed to export shopping list")
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    result,
	})
}
