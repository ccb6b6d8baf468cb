package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/foxxcyber/shopsmart/internal/models"
	"github.com/foxxcyber/shopsmart/internal/planner"
)

var (
	ErrDefaultProfile  = errors.New("the default profile cannot be deleted")
	ErrInvalidDietPlan = errors.New("invalid diet plan")
)

// Repository is the persistence the shopping list service needs. Both the
// Postgres and the SQLite stores implement it.
type Repository interface {
	ListProfileIDs(ctx context.Context) ([]string, error)
	LoadAllProfiles(ctx context.Context) (models.Profiles, error)
	GetDietPlan(ctx context.Context, profileID string) (*models.DietPlan, error)
	SaveDietPlan(ctx context.Context, profileID string, plan *models.DietPlan) error
	DeleteProfile(ctx context.Context, profileID string) error

	LoadShoppingList(ctx context.Context) ([]models.ShoppingItem, error)
	GetShoppingItem(ctx context.Context, id string) (*models.ShoppingItem, error)
	UpdateShoppingItem(ctx context.Context, item *models.ShoppingItem) error
	CommitShoppingListChanges(ctx context.Context, changes models.ChangeSet) error
}

// RecomputeResult is the list after a recompute and what was written to get there
type RecomputeResult struct {
	Items   []models.ShoppingItem `json:"items"`
	Changes models.ChangeSet      `json:"changes"`
}

// ShoppingListService keeps the consolidated shopping list in step with the
// diet plans of every profile.
type ShoppingListService struct {
	repo   Repository
	parser *FoodItemParser
	logger *slog.Logger

	// serializes writers in this process so each recompute reads the list
	// the previous one committed
	mu sync.Mutex
}

// NewShoppingListService creates a new shopping list service
func NewShoppingListService(repo Repository, logger *slog.Logger) *ShoppingListService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShoppingListService{
		repo:   repo,
		parser: NewFoodItemParser(),
		logger: logger.With("component", "shopping_list"),
	}
}

// Recompute rebuilds the list from all diet plans and commits the difference
// to the stored list in one batch.
func (s *ShoppingListService) Recompute(ctx context.Context) (*RecomputeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recompute(ctx)
}

func (s *ShoppingListService) recompute(ctx context.Context) (*RecomputeResult, error) {
	// a recompute that has started runs to completion
	ctx = context.WithoutCancel(ctx)

	profiles, err := s.repo.LoadAllProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading profiles: %w", err)
	}

	prior, err := s.repo.LoadShoppingList(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading shopping list: %w", err)
	}

	items := planner.Reconcile(planner.Aggregate(profiles), prior)
	changes := planner.Diff(prior, items)

	if !changes.IsEmpty() {
		if err := s.repo.CommitShoppingListChanges(ctx, changes); err != nil {
			return nil, fmt.Errorf("committing shopping list: %w", err)
		}
	}

	s.logger.Info("shopping list recomputed",
		"profiles", len(profiles),
		"items", len(items),
		"upserts", len(changes.Upserts),
		"deletes", len(changes.DeleteIDs),
	)

	return &RecomputeResult{Items: items, Changes: changes}, nil
}

// ListProfiles returns the stored profile ids
func (s *ShoppingListService) ListProfiles(ctx context.Context) ([]string, error) {
	return s.repo.ListProfileIDs(ctx)
}

// GetDietPlan returns the plan of a profile
func (s *ShoppingListService) GetDietPlan(ctx context.Context, profileID string) (*models.DietPlan, error) {
	profileID, err := cleanProfileID(profileID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetDietPlan(ctx, profileID)
}

// SaveDietPlan validates and stores a whole plan, then recomputes the list
func (s *ShoppingListService) SaveDietPlan(ctx context.Context, profileID string, plan *models.DietPlan) (*RecomputeResult, error) {
	profileID, err := cleanProfileID(profileID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: plan is required", ErrInvalidDietPlan)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDietPlan, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveDietPlan(ctx, profileID, plan); err != nil {
		return nil, fmt.Errorf("saving diet plan: %w", err)
	}

	s.logger.Info("diet plan saved", "profile", profileID, "day_types", len(plan.DayTypes))
	return s.recompute(ctx)
}

// DeleteProfile removes a profile and recomputes the list without it
func (s *ShoppingListService) DeleteProfile(ctx context.Context, profileID string) (*RecomputeResult, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == models.DefaultProfileID {
		return nil, ErrDefaultProfile
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteProfile(ctx, profileID); err != nil {
		return nil, err
	}

	s.logger.Info("profile deleted", "profile", profileID)
	return s.recompute(ctx)
}

// editPlan loads a plan, applies edit, and saves and recomputes when it succeeds
func (s *ShoppingListService) editPlan(ctx context.Context, profileID string, edit func(*models.DietPlan) error) (*models.DietPlan, error) {
	profileID, err := cleanProfileID(profileID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.repo.GetDietPlan(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if err := edit(plan); err != nil {
		return nil, err
	}

	if err := s.repo.SaveDietPlan(ctx, profileID, plan); err != nil {
		return nil, fmt.Errorf("saving diet plan: %w", err)
	}

	if _, err := s.recompute(ctx); err != nil {
		return nil, err
	}

	return plan, nil
}

// cleanProfileID trims a profile id; profiles are created on first use, so
// the only invalid id is a blank one
func cleanProfileID(profileID string) (string, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return "", fmt.Errorf("%w: profile id is required", ErrInvalidDietPlan)
	}
	return profileID, nil
}

// AddDayType appends an empty day type to a profile's plan
func (s *ShoppingListService) AddDayType(ctx context.Context, profileID, name string) (*models.DayType, error) {
	var added models.DayType
	_, err := s.editPlan(ctx, profileID, func(plan *models.DietPlan) error {
		added = plan.AddDayType(name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// RenameDayType changes the name of a day type
func (s *ShoppingListService) RenameDayType(ctx context.Context, profileID, dayTypeID, name string) (*models.DietPlan, error) {
	return s.editPlan(ctx, profileID, func(plan *models.DietPlan) error {
		return plan.RenameDayType(dayTypeID, name)
	})
}

// RemoveDayType deletes a day type and any weekday assignments to it
func (s *ShoppingListService) RemoveDayType(ctx context.Context, profileID, dayTypeID string) (*models.DietPlan, error) {
	return s.editPlan(ctx, profileID, func(plan *models.DietPlan) error {
		return plan.RemoveDayType(dayTypeID)
	})
}

// AssignWeekday sets or clears the day type used on a weekday
func (s *ShoppingListService) AssignWeekday(ctx context.Context, profileID string, day models.Weekday, dayTypeID *string) (*models.DietPlan, error) {
	return s.editPlan(ctx, profileID, func(plan *models.DietPlan) error {
		return plan.AssignWeekday(day, dayTypeID)
	})
}

// AddFoodItem appends an item to one meal of a day type
func (s *ShoppingListService) AddFoodItem(ctx context.Context, profileID, dayTypeID string, meal models.MealType, item models.DietFoodItem) (*models.DietFoodItem, error) {
	if err := item.Prices.Validate(); err != nil {
		return nil, err
	}

	var added models.DietFoodItem
	_, err := s.editPlan(ctx, profileID, func(plan *models.DietPlan) error {
		var err error
		added, err = plan.AddFoodItem(dayTypeID, meal, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// ImportFoodItems parses free text and appends every food it finds to a
// meal in a single save
func (s *ShoppingListService) ImportFoodItems(ctx context.Context, profileID, dayTypeID string, meal models.MealType, content string) ([]models.DietFoodItem, error) {
	parsed, err := s.parser.Parse(content)
	if err != nil {
		return nil, err
	}

	added := make([]models.DietFoodItem, 0, len(parsed))
	_, err = s.editPlan(ctx, profileID, func(plan *models.DietPlan) error {
		for _, item := range parsed {
			a, err := plan.AddFoodItem(dayTypeID, meal, item)
			if err != nil {
				return err
			}
			added = append(added, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateFoodItem replaces an item inside a meal
func (s *ShoppingListService) UpdateFoodItem(ctx context.Context, profileID, dayTypeID string, meal models.MealType, item models.DietFoodItem) (*models.DietPlan, error) {
	if err := item.Prices.Validate(); err != nil {
		return nil, err
	}

	return s.editPlan(ctx, profileID, func(plan *models.DietPlan) error {
		return plan.UpdateFoodItem(dayTypeID, meal, item)
	})
}

// RemoveFoodItem deletes an item from a meal
func (s *ShoppingListService) RemoveFoodItem(ctx context.Context, profileID, dayTypeID string, meal models.MealType, itemID string) (*models.DietPlan, error) {
	return s.editPlan(ctx, profileID, func(plan *models.DietPlan) error {
		return plan.RemoveFoodItem(dayTypeID, meal, itemID)
	})
}

// UpdateItem edits the user-owned fields of a list item. Prices that are
// not positive are dropped from the map, which is how a price is cleared.
func (s *ShoppingListService) UpdateItem(ctx context.Context, id string, req models.UpdateShoppingItemRequest) (*models.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.repo.GetShoppingItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Prices != nil {
		if err := req.Prices.Validate(); err != nil {
			return nil, err
		}
		prices := models.Prices{}
		for store, price := range *req.Prices {
			if _, ok := (*req.Prices).Get(store); ok {
				prices[store] = price
			}
		}
		item.Prices = prices
	}

	if req.Freshness != nil {
		freshness, err := models.ParseFreshness(*req.Freshness)
		if err != nil {
			return nil, err
		}
		item.Freshness = freshness
	}

	if req.IsHighlighted != nil {
		item.IsHighlighted = *req.IsHighlighted
	}

	if err := s.repo.UpdateShoppingItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Debug("shopping item updated", "id", id)
	return item, nil
}

// ListView returns the stored list filtered, sorted and priced for display
func (s *ShoppingListService) ListView(ctx context.Context, query models.ListQuery) (*models.ShoppingListView, error) {
	items, err := s.repo.LoadShoppingList(ctx)
	if err != nil {
		return nil, err
	}

	view := planner.BuildView(items, query)
	return &view, nil
}

// GetItem returns one stored list item
func (s *ShoppingListService) GetItem(ctx context.Context, id string) (*models.ShoppingItem, error) {
	return s.repo.GetShoppingItem(ctx, id)
}
