package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/shopsmart/internal/handlers"
	"github.com/foxxcyber/shopsmart/internal/models"
	"github.com/foxxcyber/shopsmart/internal/services"
	"github.com/foxxcyber/shopsmart/internal/testutil"
)

type stubSuggester struct {
	err error
}

func (s stubSuggester) SuggestAlternatives(ctx context.Context, req models.SuggestionRequest) (*models.SuggestionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.SuggestionResponse{SuggestedAlternatives: []models.SuggestedAlternative{
		{Store: "lidl", AlternativeItem: req.Item + " (store brand)", Price: 1, PricePerUnit: 2, Reason: "cheaper"},
	}}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestApp(t *testing.T, suggester services.Suggester) *fiber.App {
	t.Helper()

	store := testutil.NewTestStore(t)
	list := services.NewShoppingListService(store, nil)
	suggestions := services.NewSuggestionService(store, suggester, time.Second, nil)
	exports := services.NewExportService(list, nil, time.Hour, 0, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		UnescapePath: true,
	})
	handlers.New(list, suggestions, exports, nil).Routes(app.Group("/api"))
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decoding %s %s response: %v", method, path, err)
	}
	return resp.StatusCode, env
}

const planBody = `{
	"day_types": [{
		"id": "workday",
		"name": "Workday",
		"breakfast": [{"name": "Yogurt", "quantity": 125, "unit": "g"}],
		"lunch": [{"name": "Pasta", "quantity": 90, "unit": "g", "prices": {"lidl": 1.1, "famila": 1.2}}],
		"dinner": [{"name": "Salmon", "quantity": 0.2, "unit": "kg", "prices": {"primoprezzo": 20}}]
	}],
	"week": {"monday": "workday", "wednesday": "workday"}
}`

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)

	status, env := doRequest(t, app, http.MethodGet, "/api/health", "")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("expected 200 success, got %d %+v", status, env)
	}
}

func TestProfiles_SaveAndList(t *testing.T) {
	app := newTestApp(t, nil)

	status, env := doRequest(t, app, http.MethodPut, "/api/profiles/principale", planBody)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, env.Error)
	}

	status, env = doRequest(t, app, http.MethodGet, "/api/shopping-list?sort=alphabetical", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, env.Error)
	}

	var view models.ShoppingListView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decoding view: %v", err)
	}
	if view.ItemCount != 3 {
		t.Fatalf("expected 3 items, got %d", view.ItemCount)
	}
	if view.Items[0].Name != "Pasta" || view.Items[0].Quantity != 180 {
		t.Errorf("expected pasta 180 g first, got %+v", view.Items[0].ShoppingItem)
	}
	// pasta 0.18 kg at famila 1.2 (within 20% of lidl) + salmon 0.4 kg at 20
	if view.TotalRounded != 8.22 {
		t.Errorf("expected total 8.22, got %v", view.TotalRounded)
	}
	if view.Items[0].SelectedStore == nil || *view.Items[0].SelectedStore != models.StoreFamila {
		t.Errorf("expected famila selected for pasta, got %v", view.Items[0].SelectedStore)
	}

	status, env = doRequest(t, app, http.MethodGet, "/api/profiles", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var ids []string
	json.Unmarshal(env.Data, &ids)
	if len(ids) != 1 || ids[0] != models.DefaultProfileID {
		t.Errorf("expected [principale], got %v", ids)
	}
}

func TestProfiles_Errors(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed body", http.MethodPut, "/api/profiles/principale", `{"day_types": [`, http.StatusBadRequest},
		{"dangling weekday", http.MethodPut, "/api/profiles/principale", `{"day_types": [], "week": {"monday": "ghost"}}`, http.StatusBadRequest},
		{"unknown store", http.MethodPut, "/api/profiles/principale",
			`{"day_types": [{"id": "a", "lunch": [{"name": "x", "quantity": 1, "unit": "g", "prices": {"coop": 1}}]}]}`, http.StatusBadRequest},
		{"delete default", http.MethodDelete, "/api/profiles/principale", "", http.StatusConflict},
		{"delete missing", http.MethodDelete, "/api/profiles/ghost", "", http.StatusNotFound},
		{"unknown weekday", http.MethodPut, "/api/profiles/principale/week/someday", `{"day_type_id": null}`, http.StatusBadRequest},
		{"unknown day type", http.MethodDelete, "/api/profiles/principale/day-types/ghost", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, app, tt.method, tt.path, tt.body)
			if status != tt.want {
				t.Errorf("expected %d, got %d (%s)", tt.want, status, env.Error)
			}
			if env.Success {
				t.Error("expected success=false")
			}
		})
	}
}

func TestProfiles_CreatedOnFirstUse(t *testing.T) {
	app := newTestApp(t, nil)

	status, env := doRequest(t, app, http.MethodGet, "/api/profiles/Mario%20Rossi", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, env.Error)
	}
	var plan models.DietPlan
	json.Unmarshal(env.Data, &plan)
	if len(plan.DayTypes) != 0 {
		t.Errorf("expected empty plan, got %+v", plan)
	}

	status, env = doRequest(t, app, http.MethodPost, "/api/profiles/Giulia/day-types", `{"name": "Workday"}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, env.Error)
	}

	_, env = doRequest(t, app, http.MethodGet, "/api/profiles", "")
	var ids []string
	json.Unmarshal(env.Data, &ids)
	want := []string{"Giulia", "Mario Rossi", models.DefaultProfileID}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func TestDayTypeWorkflow(t *testing.T) {
	app := newTestApp(t, nil)

	status, env := doRequest(t, app, http.MethodPost, "/api/profiles/principale/day-types", `{"name": "Rest day"}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, env.Error)
	}
	var dayType models.DayType
	json.Unmarshal(env.Data, &dayType)

	base := "/api/profiles/principale/day-types/" + dayType.ID
	status, env = doRequest(t, app, http.MethodPost, base+"/meals/dinner/items", `{"name": "Minestrone", "quantity": 1.2, "unit": "kg"}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, env.Error)
	}
	var item models.DietFoodItem
	json.Unmarshal(env.Data, &item)

	status, env = doRequest(t, app, http.MethodPut, "/api/profiles/principale/week/Sunday", `{"day_type_id": "`+dayType.ID+`"}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, env.Error)
	}

	_, env = doRequest(t, app, http.MethodGet, "/api/shopping-list", "")
	var view models.ShoppingListView
	json.Unmarshal(env.Data, &view)
	if view.ItemCount != 1 || view.Items[0].Quantity != 1.2 || view.Items[0].Unit != models.UnitKilogram {
		t.Fatalf("expected minestrone 1.2 kg, got %+v", view.Items)
	}

	status, _ = doRequest(t, app, http.MethodPost, base+"/meals/snack/items", `{"name": "Nuts", "quantity": 30}`)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown meal, got %d", status)
	}

	status, env = doRequest(t, app, http.MethodDelete, base+"/meals/dinner/items/"+item.ID, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, env.Error)
	}

	status, env = doRequest(t, app, http.MethodPut, base, `{"name": "Sunday"}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, env.Error)
	}

	status, env = doRequest(t, app, http.MethodDelete, base, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, env.Error)
	}
	var plan models.DietPlan
	json.Unmarshal(env.Data, &plan)
	if plan.Week.Sunday != nil {
		t.Errorf("expected sunday cleared, got %v", *plan.Week.Sunday)
	}
}

func TestImportFoodItems(t *testing.T) {
	app := newTestApp(t, nil)

	_, env := doRequest(t, app, http.MethodPost, "/api/profiles/principale/day-types", `{"name": "Office"}`)
	var dayType models.DayType
	json.Unmarshal(env.Data, &dayType)

	path := "/api/profiles/principale/day-types/" + dayType.ID + "/meals/lunch/items/import"
	status, env := doRequest(t, app, http.MethodPost, path, `{"content": "- [ ] 80 g riso\n- pollo 0,3 kg"}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, env.Error)
	}
	var items []models.DietFoodItem
	json.Unmarshal(env.Data, &items)
	if len(items) != 2 || items[0].Name != "riso" || items[1].Unit != "kg" {
		t.Errorf("expected riso and pollo, got %+v", items)
	}

	status, _ = doRequest(t, app, http.MethodPost, path, `{"content": ""}`)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for empty content, got %d", status)
	}
}

func TestShoppingList_UpdateItem(t *testing.T) {
	app := newTestApp(t, nil)
	doRequest(t, app, http.MethodPut, "/api/profiles/principale", planBody)

	status, env := doRequest(t, app, http.MethodPut, "/api/shopping-list/items/yogurt",
		`{"prices": {"lidl": 2.5, "famila": 0}, "freshness": "urgent", "is_highlighted": true}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, env.Error)
	}

	var item models.ShoppingItem
	json.Unmarshal(env.Data, &item)
	if !item.IsHighlighted || item.Freshness != models.FreshnessUrgent || len(item.Prices) != 1 {
		t.Errorf("unexpected item %+v", item)
	}

	_, env = doRequest(t, app, http.MethodGet, "/api/shopping-list", "")
	var view models.ShoppingListView
	json.Unmarshal(env.Data, &view)
	if view.Items[0].ID != "yogurt" {
		t.Errorf("expected highlighted yogurt first, got %s", view.Items[0].ID)
	}

	status, _ = doRequest(t, app, http.MethodPut, "/api/shopping-list/items/yogurt", `{"freshness": "purple"}`)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for bad freshness, got %d", status)
	}
	status, _ = doRequest(t, app, http.MethodPut, "/api/shopping-list/items/caviar", `{"is_highlighted": true}`)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for missing item, got %d", status)
	}
	status, _ = doRequest(t, app, http.MethodGet, "/api/shopping-list?sort=price", "")
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown sort, got %d", status)
	}
}

func TestShoppingList_MultiWordItemIDs(t *testing.T) {
	app := newTestApp(t, stubSuggester{})

	status, env := doRequest(t, app, http.MethodPut, "/api/profiles/principale", `{
		"day_types": [{
			"id": "workday",
			"name": "Workday",
			"lunch": [{"name": "Petto di pollo", "quantity": 150, "unit": "g"}],
			"dinner": [{"name": "Crème fraîche #2", "quantity": 30, "unit": "g"}]
		}],
		"week": {"monday": "workday"}
	}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, env.Error)
	}

	tests := []struct {
		path string
		id   string
	}{
		{"/api/shopping-list/items/petto%20di%20pollo", "petto di pollo"},
		{"/api/shopping-list/items/cr%C3%A8me%20fra%C3%AEche%20_2", "crème fraîche _2"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			status, env := doRequest(t, app, http.MethodPut, tt.path, `{"is_highlighted": true}`)
			if status != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", status, env.Error)
			}
			var item models.ShoppingItem
			json.Unmarshal(env.Data, &item)
			if item.ID != tt.id || !item.IsHighlighted {
				t.Errorf("expected %q highlighted, got %+v", tt.id, item)
			}

			status, env = doRequest(t, app, http.MethodPost, tt.path+"/suggestions", "")
			if status != http.StatusOK {
				t.Errorf("expected 200 for suggestions, got %d: %s", status, env.Error)
			}
		})
	}
}

func TestShoppingList_TotalAndRecompute(t *testing.T) {
	app := newTestApp(t, nil)
	doRequest(t, app, http.MethodPut, "/api/profiles/principale", planBody)

	status, env := doRequest(t, app, http.MethodPost, "/api/shopping-list/recompute", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, env.Error)
	}
	var result services.RecomputeResult
	json.Unmarshal(env.Data, &result)
	if len(result.Items) != 3 || !result.Changes.IsEmpty() {
		t.Errorf("expected 3 unchanged items, got %+v", result)
	}

	status, env = doRequest(t, app, http.MethodGet, "/api/shopping-list/total", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var total struct {
		TotalRounded float64 `json:"total_rounded"`
		ItemCount    int     `json:"item_count"`
	}
	json.Unmarshal(env.Data, &total)
	if total.TotalRounded != 8.22 || total.ItemCount != 3 {
		t.Errorf("expected 8.22 over 3 items, got %+v", total)
	}
}

func TestSuggestions(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		app := newTestApp(t, nil)
		status, _ := doRequest(t, app, http.MethodPost, "/api/shopping-list/items/pasta/suggestions", "")
		if status != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", status)
		}
	})

	t.Run("success", func(t *testing.T) {
		app := newTestApp(t, stubSuggester{})
		doRequest(t, app, http.MethodPut, "/api/profiles/principale", planBody)

		status, env := doRequest(t, app, http.MethodPost, "/api/shopping-list/items/pasta/suggestions", "")
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, env.Error)
		}
		var resp models.SuggestionResponse
		json.Unmarshal(env.Data, &resp)
		if len(resp.SuggestedAlternatives) != 1 || resp.SuggestedAlternatives[0].AlternativeItem != "Pasta (store brand)" {
			t.Errorf("unexpected suggestions %+v", resp)
		}
	})

	t.Run("failure", func(t *testing.T) {
		app := newTestApp(t, stubSuggester{err: errors.New("upstream timeout")})
		doRequest(t, app, http.MethodPut, "/api/profiles/principale", planBody)

		status, env := doRequest(t, app, http.MethodPost, "/api/shopping-list/items/pasta/suggestions", "")
		if status != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", status)
		}
		if env.Error != services.ErrSuggestionFailed.Error() {
			t.Errorf("expected retry notice, got %q", env.Error)
		}
	})
}

func TestExport_Disabled(t *testing.T) {
	app := newTestApp(t, nil)

	status, _ := doRequest(t, app, http.MethodPost, "/api/shopping-list/export", "")
	if status != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", status)
	}
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	app := newTestApp(t, nil)

	status, env := doRequest(t, app, http.MethodGet, "/api/nope", "")
	if status != http.StatusNotFound || env.Success {
		t.Errorf("expected 404 envelope, got %d %+v", status, env)
	}
}
