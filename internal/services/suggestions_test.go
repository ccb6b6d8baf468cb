package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foxxcyber/shopsmart/internal/database"
	"github.com/foxxcyber/shopsmart/internal/models"
	"github.com/foxxcyber/shopsmart/internal/services"
	"github.com/foxxcyber/shopsmart/internal/testutil"
)

type fakeSuggester struct {
	got  models.SuggestionRequest
	resp *models.SuggestionResponse
	err  error
}

func (f *fakeSuggester) SuggestAlternatives(ctx context.Context, req models.SuggestionRequest) (*models.SuggestionResponse, error) {
	f.got = req
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline on the context")
	}
	return f.resp, f.err
}

func TestSuggest_Disabled(t *testing.T) {
	store := testutil.NewTestStore(t)
	svc := services.NewSuggestionService(store, nil, time.Second, nil)

	if svc.Enabled() {
		t.Error("expected suggestions disabled")
	}
	if _, err := svc.Suggest(context.Background(), "rice"); !errors.Is(err, services.ErrSuggestionsDisabled) {
		t.Errorf("expected ErrSuggestionsDisabled, got %v", err)
	}
}

func TestSuggest_PassesThrough(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	if _, err := services.NewShoppingListService(store, nil).SaveDietPlan(ctx, models.DefaultProfileID, workdayPlan()); err != nil {
		t.Fatalf("saving plan: %v", err)
	}

	want := []models.SuggestedAlternative{
		{Store: "lidl", AlternativeItem: "Petto di pollo", Price: 6.9, PricePerUnit: 6.9, Reason: "cheaper per kg"},
		{Store: "somewhere", AlternativeItem: "Tofu", Price: 100, PricePerUnit: -1, Reason: "not validated"},
	}
	suggester := &fakeSuggester{resp: &models.SuggestionResponse{SuggestedAlternatives: want}}
	svc := services.NewSuggestionService(store, suggester, time.Second, nil)

	resp, err := svc.Suggest(ctx, "chicken")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}

	if suggester.got.Item != "Chicken" || suggester.got.Quantity != 1.5 || suggester.got.Unit != models.UnitKilogram {
		t.Errorf("unexpected request %+v", suggester.got)
	}
	if suggester.got.Prices[models.StoreLidl] != 8 {
		t.Errorf("expected item prices in request, got %v", suggester.got.Prices)
	}
	if len(resp.SuggestedAlternatives) != 2 || resp.SuggestedAlternatives[1] != want[1] {
		t.Errorf("expected results unmodified, got %+v", resp.SuggestedAlternatives)
	}
}

func TestSuggest_FailureIsReported(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	if _, err := services.NewShoppingListService(store, nil).SaveDietPlan(ctx, models.DefaultProfileID, workdayPlan()); err != nil {
		t.Fatalf("saving plan: %v", err)
	}
	before, _ := store.LoadShoppingList(ctx)

	svc := services.NewSuggestionService(store, &fakeSuggester{err: errors.New("quota exceeded")}, time.Second, nil)
	if _, err := svc.Suggest(ctx, "rice"); !errors.Is(err, services.ErrSuggestionFailed) {
		t.Fatalf("expected ErrSuggestionFailed, got %v", err)
	}

	after, _ := store.LoadShoppingList(ctx)
	if len(after) != len(before) {
		t.Errorf("expected list untouched, got %d items instead of %d", len(after), len(before))
	}

	if _, err := svc.Suggest(ctx, "missing"); !errors.Is(err, database.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestSuggest_EmptyResult(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	if _, err := services.NewShoppingListService(store, nil).SaveDietPlan(ctx, models.DefaultProfileID, workdayPlan()); err != nil {
		t.Fatalf("saving plan: %v", err)
	}

	svc := services.NewSuggestionService(store, &fakeSuggester{resp: &models.SuggestionResponse{}}, time.Second, nil)
	resp, err := svc.Suggest(ctx, "rice")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if resp.SuggestedAlternatives == nil || len(resp.SuggestedAlternatives) != 0 {
		t.Errorf("expected an empty, non-nil list, got %#v", resp.SuggestedAlternatives)
	}
}
