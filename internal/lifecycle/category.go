package lifecycle

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/ideavault/ideavault/internal/idea"
)

// palette holds the select-option colors categories may be created
// with.
var palette = []string{
	"default", "gray", "brown", "orange", "yellow",
	"green", "blue", "purple", "pink", "red",
}

func randomColor() string {
	return palette[rand.IntN(len(palette))]
}

// reconcileCategory applies a model-suggested category against the
// known taxonomy: suggestions below the confidence threshold are
// dropped, an existing name is matched case-insensitively (keeping
// its stored casing), and a genuinely new name is added with a random
// palette color. Taxonomy write failures are non-fatal; the suggested
// name is still applied to the idea.
func (s *Service) reconcileCategory(ctx context.Context, suggestion *idea.CategorySuggestion, known []idea.Category) (string, float64) {
	if suggestion == nil || suggestion.Name == "" {
		return "", 0
	}
	suggestion.Clamp()
	if suggestion.Confidence < idea.ConfidenceThreshold {
		s.logger.Debug("category suggestion below threshold",
			"name", suggestion.Name, "confidence", suggestion.Confidence)
		return "", 0
	}

	name := strings.TrimSpace(suggestion.Name)
	for _, c := range known {
		if strings.EqualFold(c.Name, name) {
			return c.Name, suggestion.Confidence
		}
	}

	bestEffort(s.logger, "category create", func() error {
		created, err := s.store.AddCategory(ctx, name, randomColor())
		if err != nil {
			return err
		}
		name = created.Name
		return nil
	})
	return name, suggestion.Confidence
}
