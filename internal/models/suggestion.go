package models

// SuggestionRequest describes the item alternatives are asked for
type SuggestionRequest struct {
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit"`
	Prices   Prices  `json:"prices,omitempty"`
}

// SuggestedAlternative is a cheaper option proposed by the suggestion model
type SuggestedAlternative struct {
	Store           string  `json:"store"`
	AlternativeItem string  `json:"alternativeItem"`
	Price           float64 `json:"price"`
	PricePerUnit    float64 `json:"pricePerUnit"`
	Reason          string  `json:"reason"`
}

// SuggestionResponse is passed through to the caller as returned by the model
type SuggestionResponse struct {
	SuggestedAlternatives []SuggestedAlternative `json:"suggestedAlternatives"`
}
