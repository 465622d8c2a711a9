package tts

import (
	"context"
	"encoding/base64"
	"sync"

	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

// MockSynthesizer is a synthesizer stand-in for tests and for running
// the server without an API key. It returns a short silent buffer.
type MockSynthesizer struct {
	logger *zap.Logger

	mu        sync.Mutex
	calls     []string
	languages []string
	// Err, when set, makes every call fail.
	Err error
}

var _ repositories.SpeechSynthesizer = (*MockSynthesizer)(nil)

// NewMockSynthesizer creates a silent synthesizer.
func NewMockSynthesizer(logger *zap.Logger) *MockSynthesizer {
	return &MockSynthesizer{logger: logger}
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string, language entities.Language) (repositories.SynthesisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, text)
	m.languages = append(m.languages, language.Code)
	if m.Err != nil {
		return repositories.SynthesisResult{}, m.Err
	}

	m.logger.Debug("Mock synthesis", zap.String("language", language.Code))
	silence := make([]byte, 480) // 10 ms of 24 kHz mono silence
	return repositories.SynthesisResult{
		AudioData:  base64.StdEncoding.EncodeToString(silence),
		SampleRate: repositories.PlaybackSampleRate,
		Channels:   1,
	}, nil
}

// Calls returns the synthesized texts so far.
func (m *MockSynthesizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Languages returns the language codes of the calls so far.
func (m *MockSynthesizer) Languages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.languages...)
}
