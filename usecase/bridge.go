package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

// TurnViews are the two display slots published after a finalized
// turn. Which slot holds the original and which holds the translated
// text depends on who just spoke, see finalizeViews.
type TurnViews struct {
	Transcript  string `json:"transcript"`
	Translation string `json:"translation"`
}

// BridgeCoordinator orchestrates the two turn sessions of a bridge
// under mutual exclusion: at most one speaker's session is starting or
// live at any time. It owns the language pair, the mode-scoped
// transcript/translation state and the handoff into translation and
// playback.
type BridgeCoordinator struct {
	sessions   map[entities.Speaker]*TurnSession
	dispatcher *TranslationDispatcher
	playback   *SpeechPlayback
	logger     *zap.Logger

	onPreview func(entities.Speaker, string)
	onViews   func(entities.Mode, TurnViews)
	onError   func(entities.Speaker, error)

	mu        sync.Mutex
	pair      entities.LanguagePair
	mode      entities.Mode
	modeState map[entities.Mode]entities.ModeState
	views     TurnViews
	active    entities.Speaker
	lastTurn  entities.Speaker
	lastPair  entities.LanguagePair
}

// NewBridgeCoordinator wires two turn sessions over a shared capture
// device and recognizer.
func NewBridgeCoordinator(
	device repositories.CaptureDevice,
	recognizer repositories.SpeechRecognizer,
	translator repositories.Translator,
	playback *SpeechPlayback,
	logger *zap.Logger,
) *BridgeCoordinator {
	c := &BridgeCoordinator{
		sessions: map[entities.Speaker]*TurnSession{
			entities.SpeakerHost:  NewTurnSession(device, recognizer, logger),
			entities.SpeakerGuest: NewTurnSession(device, recognizer, logger),
		},
		dispatcher: NewTranslationDispatcher(translator, logger),
		playback:   playback,
		logger:     logger,
		pair:       entities.DefaultLanguagePair(),
		mode:       entities.ModeSolo,
		modeState:  make(map[entities.Mode]entities.ModeState),
	}

	for _, session := range c.sessions {
		session.OnPreview(c.publishPreview)
		session.OnInterrupt(c.publishInterrupt)
	}
	return c
}

// OnPreview registers the live transcript preview callback.
func (c *BridgeCoordinator) OnPreview(fn func(entities.Speaker, string)) {
	c.onPreview = fn
}

// OnViews registers the finalized views callback.
func (c *BridgeCoordinator) OnViews(fn func(entities.Mode, TurnViews)) {
	c.onViews = fn
}

// OnError registers the mid-turn interruption callback.
func (c *BridgeCoordinator) OnError(fn func(entities.Speaker, error)) {
	c.onError = fn
}

// StartTurn begins a turn for one speaker. The host is transcribed in
// the source language, the guest in the target language. Rejected
// while the other speaker's turn is active.
func (c *BridgeCoordinator) StartTurn(ctx context.Context, speaker entities.Speaker) error {
	if !speaker.Valid() {
		return fmt.Errorf("%w: unknown speaker %q", entities.ErrInvalidState, speaker)
	}

	c.mu.Lock()
	if c.active != "" {
		active := c.active
		c.mu.Unlock()
		return fmt.Errorf("%w: %s turn is already active", entities.ErrInvalidState, active)
	}
	c.active = speaker
	language := c.pair.Source
	if speaker == entities.SpeakerGuest {
		language = c.pair.Target
	}
	c.mu.Unlock()

	if err := c.sessions[speaker].Start(ctx, speaker, language); err != nil {
		c.mu.Lock()
		c.active = ""
		c.mu.Unlock()
		return err
	}
	return nil
}

// StopTurn finalizes one speaker's turn: tears the session down,
// translates the accumulated text and publishes the resulting views.
// A stop with no active turn is a no-op. A translation failure leaves
// the prior views untouched and is surfaced to the caller.
func (c *BridgeCoordinator) StopTurn(ctx context.Context, speaker entities.Speaker) (TurnViews, error) {
	if !speaker.Valid() {
		return c.Views(), fmt.Errorf("%w: unknown speaker %q", entities.ErrInvalidState, speaker)
	}

	final, err := c.sessions[speaker].Stop(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidState) {
			// Already idle, nothing to finalize.
			return c.Views(), nil
		}
		return c.Views(), err
	}

	c.mu.Lock()
	if c.active == speaker {
		c.active = ""
	}
	pair := c.pair
	c.mu.Unlock()

	source, target := pair.Source, pair.Target
	if speaker == entities.SpeakerGuest {
		source, target = pair.Target, pair.Source
	}

	result, err := c.dispatcher.Translate(ctx, speaker, final, source, target)
	if err != nil {
		return c.Views(), err
	}

	views := finalizeViews(speaker, final, result.TranslatedText)

	c.mu.Lock()
	c.views = views
	c.modeState[c.mode] = entities.ModeState(views)
	c.lastTurn = speaker
	c.lastPair = pair
	mode := c.mode
	onViews := c.onViews
	c.mu.Unlock()

	if onViews != nil {
		onViews(mode, views)
	}
	return views, nil
}

// finalizeViews maps one finalized turn onto the two display slots.
// After a host turn the transcript slot holds what the host said and
// the translation slot holds the target-language text. After a guest
// turn the slots swap meaning: the guest's own words go to the
// translation slot and the translated source-language text goes to the
// transcript slot, so each party always reads their own language in
// the same place.
func finalizeViews(speaker entities.Speaker, original, translated string) TurnViews {
	if speaker == entities.SpeakerGuest {
		return TurnViews{Transcript: translated, Translation: original}
	}
	return TurnViews{Transcript: original, Translation: translated}
}

// SetMode switches between solo and conversation. The outgoing mode's
// live state is saved and the incoming mode's stored state restored,
// so the two modes never leak into each other. Rejected while a turn
// is active, switching mid-turn would orphan the session.
func (c *BridgeCoordinator) SetMode(mode entities.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", entities.ErrInvalidState, mode)
	}

	c.mu.Lock()
	if c.active != "" {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot switch mode during an active turn", entities.ErrInvalidState)
	}
	if mode == c.mode {
		c.mu.Unlock()
		return nil
	}

	c.modeState[c.mode] = entities.ModeState(c.views)
	restored := c.modeState[mode]
	c.views = TurnViews(restored)
	c.mode = mode
	views := c.views
	onViews := c.onViews
	c.mu.Unlock()

	c.logger.Info("Mode switched", zap.String("mode", string(mode)))
	if onViews != nil {
		onViews(mode, views)
	}
	return nil
}

// SwapLanguages exchanges source and target. Rejected mid-turn.
func (c *BridgeCoordinator) SwapLanguages() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != "" {
		return fmt.Errorf("%w: cannot swap languages during an active turn", entities.ErrInvalidState)
	}
	c.pair = c.pair.Swapped()
	c.logger.Info("Languages swapped",
		zap.String("source", c.pair.Source.Code),
		zap.String("target", c.pair.Target.Code))
	return nil
}

// SetLanguagePair replaces the active pair. Rejected mid-turn.
func (c *BridgeCoordinator) SetLanguagePair(pair entities.LanguagePair) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != "" {
		return fmt.Errorf("%w: cannot change languages during an active turn", entities.ErrInvalidState)
	}
	c.pair = pair
	return nil
}

// PlayTranslation speaks the translated side of the last finalized
// turn. After a host turn that is the translation slot in the target
// language; after a guest turn it is the transcript slot in the source
// language. The languages are the pair captured at finalize time, so a
// swap after the turn cannot relabel the stored text. A no-op when
// nothing has been finalized.
func (c *BridgeCoordinator) PlayTranslation(ctx context.Context) error {
	if c.playback == nil {
		return nil
	}

	c.mu.Lock()
	last := c.lastTurn
	views := c.views
	pair := c.lastPair
	c.mu.Unlock()

	text, language := views.Translation, pair.Target
	if last == entities.SpeakerGuest {
		text, language = views.Transcript, pair.Source
	}
	if text == "" || text == NoInputDetected {
		return nil
	}
	return c.playback.Play(ctx, text, language)
}

// Views returns the current display slots.
func (c *BridgeCoordinator) Views() TurnViews {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.views
}

// Mode returns the current mode.
func (c *BridgeCoordinator) Mode() entities.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// LanguagePair returns the active pair.
func (c *BridgeCoordinator) LanguagePair() entities.LanguagePair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pair
}

// ActiveSpeaker returns the speaker whose turn is active, or "" when
// no turn is running.
func (c *BridgeCoordinator) ActiveSpeaker() entities.Speaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *BridgeCoordinator) publishPreview(speaker entities.Speaker, accumulated string) {
	if c.onPreview != nil {
		c.onPreview(speaker, accumulated)
	}
}

func (c *BridgeCoordinator) publishInterrupt(speaker entities.Speaker, err error) {
	if c.onError != nil {
		c.onError(speaker, err)
	}
}
