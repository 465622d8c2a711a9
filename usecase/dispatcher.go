package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

// NoInputDetected is the fixed result for an empty finalized turn. It
// is produced without invoking the translation service.
const NoInputDetected = "No input detected."

// TranslationDispatcher invokes the translation backend for finalized
// turn text. Calls are serialized per speaker so two overlapping
// requests can never interleave their results into the wrong display
// slot.
type TranslationDispatcher struct {
	translator repositories.Translator
	logger     *zap.Logger
	locks      map[entities.Speaker]*sync.Mutex
}

// NewTranslationDispatcher creates a dispatcher.
func NewTranslationDispatcher(translator repositories.Translator, logger *zap.Logger) *TranslationDispatcher {
	return &TranslationDispatcher{
		translator: translator,
		logger:     logger,
		locks: map[entities.Speaker]*sync.Mutex{
			entities.SpeakerHost:  {},
			entities.SpeakerGuest: {},
		},
	}
}

// Translate translates finalized text for one speaker. Empty input
// short-circuits to the fixed NoInputDetected result. A backend
// failure is surfaced as ErrTranslationFailed; the caller must leave
// its prior state visible.
func (d *TranslationDispatcher) Translate(ctx context.Context, speaker entities.Speaker, text string, source, target entities.Language) (entities.TranslationResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		d.logger.Info("Skipping translation, no input detected",
			zap.String("speaker", string(speaker)))
		return entities.TranslationResult{
			TranslatedText:     NoInputDetected,
			TargetLanguageName: target.Name,
		}, nil
	}

	lock := d.locks[speaker]
	if lock == nil {
		return entities.TranslationResult{}, fmt.Errorf("%w: unknown speaker %q", entities.ErrInvalidState, speaker)
	}
	lock.Lock()
	defer lock.Unlock()

	translated, err := d.translator.Translate(ctx, text, source, target)
	if err != nil {
		d.logger.Error("Translation request failed",
			zap.String("speaker", string(speaker)),
			zap.String("source", source.Code),
			zap.String("target", target.Code),
			zap.Error(err))
		return entities.TranslationResult{}, fmt.Errorf("%w: %v", entities.ErrTranslationFailed, err)
	}

	return entities.TranslationResult{
		OriginalText:       text,
		TranslatedText:     translated,
		TargetLanguageName: target.Name,
	}, nil
}
