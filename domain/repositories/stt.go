package repositories

import (
	"context"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
)

// RecognitionConfig scopes one streaming recognition session.
type RecognitionConfig struct {
	SampleRate int
	Language   entities.Language
}

// SpeechRecognizer abstracts a duplex streaming transcription backend.
// The backend transcribes only, it never translates and never
// converses, and normalizes script-ambiguous languages to one
// canonical written form.
type SpeechRecognizer interface {
	Open(ctx context.Context, config RecognitionConfig) (RecognitionStream, error)
}

// RecognitionStream is one open streaming session.
type RecognitionStream interface {
	// Send pushes one transport-encoded PCM frame. Frames sent after
	// Close are silently dropped. Send failures are best effort: the
	// caller logs and drops the frame, the session continues.
	Send(encodedFrame string) error

	// Fragments delivers incremental transcript text in arrival order.
	// The channel is closed when the stream ends.
	Fragments() <-chan string

	// Err delivers at most one connection-level failure. Only these
	// abort the turn.
	Err() <-chan error

	// Close ends the session. Idempotent.
	Close() error
}
