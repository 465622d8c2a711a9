package repositories

import (
	"context"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
)

// Translator abstracts the translation backend. The request must yield
// translation-only output, never a conversational response, and must
// normalize script-ambiguous target languages to their canonical
// script.
type Translator interface {
	Translate(ctx context.Context, text string, source, target entities.Language) (string, error)
}
