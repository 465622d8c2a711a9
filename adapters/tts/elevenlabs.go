package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

const (
	defaultAPIBaseURL   = "https://api.elevenlabs.io/v1"
	defaultVoiceID      = "21m00Tcm4TlvDq8ikWAM" // Rachel voice
	defaultOutputFormat = "pcm_24000"
	defaultModelID      = "eleven_multilingual_v2"
	defaultStability    = 0.5
	defaultClarity      = 0.75
)

// ElevenLabsConfig holds configuration for the ElevenLabsTTS adapter.
// APIKey is required; everything else has a default.
type ElevenLabsConfig struct {
	APIKey       string
	APIBaseURL   string
	VoiceID      string
	ModelID      string
	OutputFormat string
	Stability    float64
	Clarity      float64
}

// ElevenLabsTTS implements SpeechSynthesizer using the Eleven Labs API.
type ElevenLabsTTS struct {
	apiKey       string
	apiBaseURL   string
	voiceID      string
	modelID      string
	outputFormat string
	stability    float64
	clarity      float64
	httpClient   *http.Client
	logger       *zap.Logger
}

var _ repositories.SpeechSynthesizer = (*ElevenLabsTTS)(nil)

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	LanguageCode  string                  `json:"language_code,omitempty"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

// NewElevenLabsConfigFromEnv builds a config from environment
// variables, leaving unset fields to their defaults.
func NewElevenLabsConfigFromEnv() ElevenLabsConfig {
	return ElevenLabsConfig{
		APIKey:     os.Getenv("ELEVEN_LABS_API_KEY"),
		APIBaseURL: os.Getenv("ELEVEN_LABS_API_BASE_URL"),
		VoiceID:    os.Getenv("ELEVEN_LABS_VOICE_ID"),
		ModelID:    os.Getenv("ELEVEN_LABS_MODEL_ID"),
	}
}

// ValidateElevenLabsConfig validates the ElevenLabsConfig.
func ValidateElevenLabsConfig(config ElevenLabsConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("eleven labs API key is required")
	}
	if config.Stability != 0 && (config.Stability < 0 || config.Stability > 1) {
		return fmt.Errorf("stability must be between 0 and 1, got %f", config.Stability)
	}
	if config.Clarity != 0 && (config.Clarity < 0 || config.Clarity > 1) {
		return fmt.Errorf("clarity must be between 0 and 1, got %f", config.Clarity)
	}
	return nil
}

// NewElevenLabsTTS creates a new Eleven Labs synthesizer.
func NewElevenLabsTTS(config ElevenLabsConfig, logger *zap.Logger) (*ElevenLabsTTS, error) {
	if err := ValidateElevenLabsConfig(config); err != nil {
		return nil, err
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	voiceID := config.VoiceID
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultModelID
	}
	outputFormat := config.OutputFormat
	if outputFormat == "" {
		outputFormat = defaultOutputFormat
	}
	stability := config.Stability
	if stability == 0 {
		stability = defaultStability
	}
	clarity := config.Clarity
	if clarity == 0 {
		clarity = defaultClarity
	}

	return &ElevenLabsTTS{
		apiKey:       config.APIKey,
		apiBaseURL:   apiBaseURL,
		voiceID:      voiceID,
		modelID:      modelID,
		outputFormat: outputFormat,
		stability:    stability,
		clarity:      clarity,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		logger:       logger,
	}, nil
}

// Synthesize converts text to 24 kHz mono PCM and returns it base64
// encoded.
func (e *ElevenLabsTTS) Synthesize(ctx context.Context, text string, language entities.Language) (repositories.SynthesisResult, error) {
	if strings.TrimSpace(text) == "" {
		return repositories.SynthesisResult{}, fmt.Errorf("text cannot be empty")
	}

	request := elevenLabsRequest{
		Text:         text,
		ModelID:      e.modelID,
		LanguageCode: language.Code,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       e.stability,
			SimilarityBoost: e.clarity,
		},
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return repositories.SynthesisResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s",
		e.apiBaseURL, e.voiceID, e.outputFormat)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return repositories.SynthesisResult{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Accept", "audio/pcm")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return repositories.SynthesisResult{}, fmt.Errorf("failed to execute synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return repositories.SynthesisResult{}, fmt.Errorf("synthesis API returned status %d: %s",
			resp.StatusCode, string(errorBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return repositories.SynthesisResult{}, fmt.Errorf("failed to read synthesis response: %w", err)
	}

	e.logger.Info("Synthesis completed",
		zap.String("language", language.Code),
		zap.Int("textLength", len(text)),
		zap.Int("audioBytes", len(audio)))

	return repositories.SynthesisResult{
		AudioData:  base64.StdEncoding.EncodeToString(audio),
		SampleRate: repositories.PlaybackSampleRate,
		Channels:   1,
	}, nil
}
