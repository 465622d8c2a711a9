package translate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

const (
	defaultModel          = "gemini-2.0-flash"
	defaultTimeoutSeconds = 20
)

// GeminiTranslator implements Translator on the Gemini API.
type GeminiTranslator struct {
	client  *genai.Client
	logger  *zap.Logger
	model   string
	timeout time.Duration
}

var _ repositories.Translator = (*GeminiTranslator)(nil)

// NewGeminiTranslator creates a translator. GEMINI_API_KEY must be set.
func NewGeminiTranslator(logger *zap.Logger) (*GeminiTranslator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiTranslator{
		client:  client,
		logger:  logger,
		model:   defaultModel,
		timeout: defaultTimeoutSeconds * time.Second,
	}, nil
}

// Translate sends one translation request and returns the translated
// text. The prompt pins the model to translation-only output and, for
// script-ambiguous targets, to the canonical script.
func (g *GeminiTranslator) Translate(ctx context.Context, text string, source, target entities.Language) (string, error) {
	prompt := BuildPrompt(text, source, target)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate translation: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("translation response contained no candidates")
	}

	var translated string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			translated += part.Text
		}
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		return "", fmt.Errorf("translation response was empty")
	}

	g.logger.Info("Translation completed",
		zap.String("source", source.Name),
		zap.String("target", target.Name),
		zap.Int("inputLength", len(text)),
		zap.Int("outputLength", len(translated)))

	return translated, nil
}

// BuildPrompt builds the translation-only instruction for one request.
func BuildPrompt(text string, source, target entities.Language) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a translation engine. Translate the following text from %s to %s.\n", source.Name, target.Name)
	b.WriteString("Output only the translation. Do not explain, do not converse, do not add any other text.\n")
	if target.ScriptAmbiguous {
		fmt.Fprintf(&b, "Always write the translation in %s characters, regardless of dialect or accent.\n", target.CanonicalScript)
	}
	b.WriteString("\nText:\n")
	b.WriteString(text)
	return b.String()
}
