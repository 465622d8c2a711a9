package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
	"github.com/Shawnzeng217/AI-Translator/internal/audio"
)

// markupPattern matches structural markup that must never be
// vocalized.
var markupPattern = regexp.MustCompile("[*_`#>~]|\\[|\\]|\\(http[^)]*\\)")

// SpeechPlayback synthesizes finalized text and plays it, serializing
// requests to at most one playback in flight system-wide.
type SpeechPlayback struct {
	synthesizer repositories.SpeechSynthesizer
	player      repositories.AudioPlayer
	logger      *zap.Logger
	inFlight    atomic.Bool
}

// NewSpeechPlayback creates an idle playback pipeline.
func NewSpeechPlayback(synthesizer repositories.SpeechSynthesizer, player repositories.AudioPlayer, logger *zap.Logger) *SpeechPlayback {
	return &SpeechPlayback{
		synthesizer: synthesizer,
		player:      player,
		logger:      logger,
	}
}

// Playing reports whether a playback is currently in flight.
func (p *SpeechPlayback) Playing() bool {
	return p.inFlight.Load()
}

// Play synthesizes text and plays it to completion. A no-op when the
// text is empty or a playback is already in flight. The in-flight lock
// is released only after playback completes or fails; failure is
// reported as ErrPlaybackFailed and corrupts no state.
func (p *SpeechPlayback) Play(ctx context.Context, text string, language entities.Language) error {
	text = strings.TrimSpace(markupPattern.ReplaceAllString(text, ""))
	if text == "" {
		return nil
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("Playback already in progress, ignoring request")
		return nil
	}
	defer p.inFlight.Store(false)

	result, err := p.synthesizer.Synthesize(ctx, text, language)
	if err != nil {
		p.logger.Error("Speech synthesis failed", zap.Error(err))
		return fmt.Errorf("%w: %v", entities.ErrPlaybackFailed, err)
	}

	raw, err := base64.StdEncoding.DecodeString(result.AudioData)
	if err != nil {
		p.logger.Error("Synthesized audio payload is not valid base64", zap.Error(err))
		return fmt.Errorf("%w: %v", entities.ErrPlaybackFailed, err)
	}
	samples, err := audio.BytesToPCM(raw)
	if err != nil {
		p.logger.Error("Synthesized audio payload is malformed", zap.Error(err))
		return fmt.Errorf("%w: %v", entities.ErrPlaybackFailed, err)
	}

	sampleRate := result.SampleRate
	if sampleRate == 0 {
		sampleRate = repositories.PlaybackSampleRate
	}

	if err := p.player.Play(ctx, samples, sampleRate); err != nil {
		p.logger.Error("Audio playback failed", zap.Error(err))
		return fmt.Errorf("%w: %v", entities.ErrPlaybackFailed, err)
	}

	p.logger.Info("Playback completed",
		zap.String("language", language.Code),
		zap.Int("samples", len(samples)))
	return nil
}
