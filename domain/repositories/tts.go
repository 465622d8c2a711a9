package repositories

import (
	"context"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
)

// PlaybackSampleRate is the fixed profile of synthesized audio.
const PlaybackSampleRate = 24000

// SynthesisResult is the synthesized audio payload.
type SynthesisResult struct {
	// AudioData is base64 encoded 16-bit little-endian PCM.
	AudioData  string `json:"audio_data"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// SpeechSynthesizer abstracts the text-to-speech backend.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, language entities.Language) (SynthesisResult, error)
}

// AudioPlayer plays a fully decoded mono PCM buffer.
type AudioPlayer interface {
	Play(ctx context.Context, samples []int16, sampleRate int) error
}
