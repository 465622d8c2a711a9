package tts

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

func TestNewElevenLabsTTSRequiresAPIKey(t *testing.T) {
	logger := zaptest.NewLogger(t)

	if _, err := NewElevenLabsTTS(ElevenLabsConfig{}, logger); err == nil {
		t.Error("Expected error when API key is not set")
	}

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}
	if tts.voiceID != defaultVoiceID {
		t.Errorf("Expected default voice ID %q, got %q", defaultVoiceID, tts.voiceID)
	}
	if tts.outputFormat != defaultOutputFormat {
		t.Errorf("Expected default output format %q, got %q", defaultOutputFormat, tts.outputFormat)
	}
}

func TestValidateElevenLabsConfig(t *testing.T) {
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", Stability: 1.5}); err == nil {
		t.Error("Expected error for stability out of range")
	}
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", Clarity: -0.1}); err == nil {
		t.Error("Expected error for clarity out of range")
	}
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k"}); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestSynthesizeReturnsBase64PCM(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "test-api-key" {
			t.Errorf("Expected api key header, got %q", r.Header.Get("xi-api-key"))
		}
		w.Write(pcm)
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	result, err := tts.Synthesize(context.Background(), "hello", entities.English)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if result.SampleRate != repositories.PlaybackSampleRate {
		t.Errorf("Expected sample rate %d, got %d", repositories.PlaybackSampleRate, result.SampleRate)
	}
	if result.Channels != 1 {
		t.Errorf("Expected mono audio, got %d channels", result.Channels)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.AudioData)
	if err != nil {
		t.Fatalf("Audio payload is not valid base64: %v", err)
	}
	if string(decoded) != string(pcm) {
		t.Errorf("Expected payload %v, got %v", pcm, decoded)
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if _, err := tts.Synthesize(context.Background(), "   ", entities.English); err == nil {
		t.Error("Expected error for empty text")
	}
}

func TestSynthesizeSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if _, err := tts.Synthesize(context.Background(), "hello", entities.English); err == nil {
		t.Error("Expected error for non-200 response")
	}
}
