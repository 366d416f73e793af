package idea

import (
	"encoding/json"
	"fmt"
	"time"
)

// Disclaimer is attached to every enrichment result.
const Disclaimer = "Estimates - verify independently"

// MaxCompetitors bounds the competitor list kept per enrichment.
const MaxCompetitors = 5

// Competitor is a named competitor with a one-line description.
type Competitor struct {
	Name    string `json:"name"`
	OneLine string `json:"one_line"`
}

// Enrichment is the structured market analysis produced for a
// clarified idea.
type Enrichment struct {
	Summary            string              `json:"summary"`
	Competitors        []Competitor        `json:"competitors"`
	MarketSizeEstimate string              `json:"market_size_estimate"`
	CAGREstimate       float64             `json:"cagr_pct_estimate"`
	BusinessModels     []string            `json:"likely_biz_models"`
	NextStep           string              `json:"next_step"`
	Category           *CategorySuggestion `json:"category,omitempty"`
	Disclaimer         string              `json:"disclaimer"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// ParseEnrichment decodes a model response into an Enrichment,
// normalizing it: the competitor list is capped, the disclaimer is
// forced to the canonical text, the generation timestamp is set if
// absent, and any category confidence is clamped.
func ParseEnrichment(raw []byte, now time.Time) (*Enrichment, error) {
	var e Enrichment
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("idea: decoding enrichment: %v: %w", err, ErrEnrichmentParse)
	}
	if e.Summary == "" {
		return nil, fmt.Errorf("idea: enrichment missing summary: %w", ErrEnrichmentParse)
	}
	if len(e.Competitors) > MaxCompetitors {
		e.Competitors = e.Competitors[:MaxCompetitors]
	}
	e.Disclaimer = Disclaimer
	if e.GeneratedAt.IsZero() {
		e.GeneratedAt = now
	}
	if e.Category != nil {
		e.Category.Clamp()
	}
	return &e, nil
}
