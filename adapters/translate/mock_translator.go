package translate

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

// MockTranslator is a deterministic translator for tests and for
// running the server without an API key.
type MockTranslator struct {
	logger *zap.Logger

	mu sync.Mutex
	// Responses maps input text to a fixed translation. Unmapped text
	// is echoed back annotated with the language direction.
	Responses map[string]string
	// Err, when set, makes every call fail.
	Err   error
	calls []string
}

var _ repositories.Translator = (*MockTranslator)(nil)

// NewMockTranslator creates an echoing translator.
func NewMockTranslator(logger *zap.Logger) *MockTranslator {
	return &MockTranslator{logger: logger}
}

func (m *MockTranslator) Translate(ctx context.Context, text string, source, target entities.Language) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, text)
	if m.Err != nil {
		return "", m.Err
	}
	if out, ok := m.Responses[text]; ok {
		return out, nil
	}
	return fmt.Sprintf("[%s→%s] %s", source.Code, target.Code, text), nil
}

// Calls returns the texts translated so far.
func (m *MockTranslator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
