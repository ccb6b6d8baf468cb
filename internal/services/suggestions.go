package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/foxxcyber/shopsmart/internal/models"
)

var (
	ErrSuggestionsDisabled = errors.New("suggestions are not configured")
	ErrSuggestionFailed    = errors.New("suggestion request failed, try again")
)

// Suggester proposes cheaper alternatives for an item
type Suggester interface {
	SuggestAlternatives(ctx context.Context, req models.SuggestionRequest) (*models.SuggestionResponse, error)
}

// ItemReader looks up stored list items
type ItemReader interface {
	GetShoppingItem(ctx context.Context, id string) (*models.ShoppingItem, error)
}

// SuggestionService asks the suggester about a stored list item. It never
// writes to the list.
type SuggestionService struct {
	items     ItemReader
	suggester Suggester
	timeout   time.Duration
	logger    *slog.Logger
}

// NewSuggestionService creates a suggestion service. A nil suggester
// disables suggestions.
func NewSuggestionService(items ItemReader, suggester Suggester, timeout time.Duration, logger *slog.Logger) *SuggestionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SuggestionService{
		items:     items,
		suggester: suggester,
		timeout:   timeout,
		logger:    logger.With("component", "suggestions"),
	}
}

// Enabled reports whether a suggester is configured
func (s *SuggestionService) Enabled() bool {
	return s.suggester != nil
}

// Suggest returns the alternatives for the list item with the given id as
// the suggester returned them.
func (s *SuggestionService) Suggest(ctx context.Context, itemID string) (*models.SuggestionResponse, error) {
	if s.suggester == nil {
		return nil, ErrSuggestionsDisabled
	}

	item, err := s.items.GetShoppingItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.suggester.SuggestAlternatives(ctx, models.SuggestionRequest{
		Item:     item.Name,
		Quantity: item.Quantity,
		Unit:     item.Unit,
		Prices:   item.Prices,
	})
	if err != nil {
		s.logger.Warn("suggestion request failed", "item", itemID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSuggestionFailed, err)
	}

	if resp.SuggestedAlternatives == nil {
		resp.SuggestedAlternatives = []models.SuggestedAlternative{}
	}
	return resp, nil
}

// VertexConfig holds the Vertex AI settings for the suggester
type VertexConfig struct {
	ProjectID       string
	Location        string
	CredentialsFile string
	Model           string
}

// VertexSuggester implements Suggester on Vertex AI Gemini models
type VertexSuggester struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewVertexSuggester connects to Vertex AI
func NewVertexSuggester(ctx context.Context, cfg VertexConfig) (*VertexSuggester, error) {
	opts := []option.ClientOption{}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	return &VertexSuggester{client: client, model: model}, nil
}

// Close releases the client connection
func (v *VertexSuggester) Close() error {
	return v.client.Close()
}

// SuggestAlternatives asks the model for cheaper substitutes
func (v *VertexSuggester) SuggestAlternatives(ctx context.Context, req models.SuggestionRequest) (*models.SuggestionResponse, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(buildSuggestionPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("failed to call ai: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response generated")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	return parseSuggestionResponse(text.String())
}

func buildSuggestionPrompt(req models.SuggestionRequest) string {
	var b strings.Builder
	b.WriteString("You help a household in Italy spend less on groceries.\n")
	fmt.Fprintf(&b, "Item: %s\nQuantity: %g %s\n", req.Item, req.Quantity, req.Unit)

	if len(req.Prices) > 0 {
		b.WriteString("Known prices per kg:\n")
		for _, store := range models.Stores {
			if price, ok := req.Prices.Get(store); ok {
				fmt.Fprintf(&b, "- %s: %.2f EUR\n", store, price)
			}
		}
	}

	b.WriteString(`Suggest cheaper alternative products available at famila, lidl or primoprezzo.
Respond with a JSON object only:
{
	"suggestedAlternatives": [
		{"store": "string", "alternativeItem": "string", "price": number, "pricePerUnit": number, "reason": "string"}
	]
}
Return an empty list if there is no cheaper alternative.`)

	return b.String()
}

// parseSuggestionResponse accepts the JSON object with or without a
// markdown code fence around it
func parseSuggestionResponse(text string) (*models.SuggestionResponse, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var out models.SuggestionResponse
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w while parsing %s", err, text)
	}

	if out.SuggestedAlternatives == nil {
		out.SuggestedAlternatives = []models.SuggestedAlternative{}
	}
	return &out, nil
}
