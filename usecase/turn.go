package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
	"github.com/Shawnzeng217/AI-Translator/internal/audio"
)

// TurnState is the lifecycle state of a turn session.
type TurnState int32

const (
	TurnIdle TurnState = iota
	TurnStarting
	TurnLive
	TurnStopping
	// TurnErrored is a per-attempt state: the turn was interrupted but
	// its transcript is preserved until Stop collects it.
	TurnErrored
)

func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnStarting:
		return "starting"
	case TurnLive:
		return "live"
	case TurnStopping:
		return "stopping"
	case TurnErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// TurnSession owns exactly one active capture stream and recognition
// stream pair and accumulates transcript fragments for the turn.
//
// The state machine is IDLE → STARTING → LIVE → STOPPING → IDLE, with
// ERRORED between LIVE and IDLE when the backend interrupts the turn.
type TurnSession struct {
	device     repositories.CaptureDevice
	recognizer repositories.SpeechRecognizer
	logger     *zap.Logger

	// onPreview receives the accumulated transcript on every fragment.
	onPreview func(entities.Speaker, string)
	// onInterrupt receives connection-level failures while live.
	onInterrupt func(entities.Speaker, error)

	mu       sync.Mutex
	state    TurnState
	speaker  entities.Speaker
	language entities.Language
	turnID   string
	buffer   *entities.TranscriptBuffer
	capture  repositories.CaptureStream
	stream   repositories.RecognitionStream
	pumpStop chan struct{}
	pumpDone chan struct{}
	recvDone chan struct{}
}

// NewTurnSession creates an idle session.
func NewTurnSession(device repositories.CaptureDevice, recognizer repositories.SpeechRecognizer, logger *zap.Logger) *TurnSession {
	return &TurnSession{
		device:     device,
		recognizer: recognizer,
		logger:     logger,
		buffer:     entities.NewTranscriptBuffer(),
	}
}

// OnPreview registers the live preview callback. Must be set before
// Start.
func (s *TurnSession) OnPreview(fn func(entities.Speaker, string)) {
	s.onPreview = fn
}

// OnInterrupt registers the mid-turn failure callback. Must be set
// before Start.
func (s *TurnSession) OnInterrupt(fn func(entities.Speaker, error)) {
	s.onInterrupt = fn
}

// State returns the current lifecycle state.
func (s *TurnSession) State() TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether the session holds or is acquiring resources.
func (s *TurnSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == TurnStarting || s.state == TurnLive
}

// Start begins a turn: clears the transcript, acquires the capture
// stream, opens the recognition connection and begins pumping frames.
// Valid only from IDLE. A failure to acquire either resource returns
// the session to IDLE without a partial live state.
func (s *TurnSession) Start(ctx context.Context, speaker entities.Speaker, language entities.Language) error {
	s.mu.Lock()
	if s.state != TurnIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot start turn while %s", entities.ErrInvalidState, state)
	}
	s.state = TurnStarting
	s.speaker = speaker
	s.language = language
	s.turnID = uuid.NewString()
	s.buffer.Reset()
	turnID := s.turnID
	s.mu.Unlock()

	s.logger.Info("Starting turn",
		zap.String("turnID", turnID),
		zap.String("speaker", string(speaker)),
		zap.String("language", language.Code))

	capture, err := s.device.Open(ctx)
	if err != nil {
		s.abortStart()
		return fmt.Errorf("%w: %v", entities.ErrCaptureUnavailable, err)
	}

	stream, err := s.recognizer.Open(ctx, repositories.RecognitionConfig{
		SampleRate: repositories.CaptureSampleRate,
		Language:   language,
	})
	if err != nil {
		if cerr := capture.Close(); cerr != nil {
			s.logger.Warn("Failed to release capture after open failure", zap.Error(cerr))
		}
		s.abortStart()
		return fmt.Errorf("%w: %v", entities.ErrConnectionFailed, err)
	}

	s.mu.Lock()
	if s.state != TurnStarting {
		// Stopped while the streams were being opened.
		s.mu.Unlock()
		if cerr := capture.Close(); cerr != nil {
			s.logger.Warn("Failed to release capture for cancelled turn", zap.Error(cerr))
		}
		if cerr := stream.Close(); cerr != nil {
			s.logger.Warn("Failed to close stream for cancelled turn", zap.Error(cerr))
		}
		s.logger.Info("Turn cancelled during start", zap.String("turnID", turnID))
		return nil
	}
	s.capture = capture
	s.stream = stream
	s.pumpStop = make(chan struct{})
	s.pumpDone = make(chan struct{})
	s.recvDone = make(chan struct{})
	s.state = TurnLive
	pumpStop, pumpDone, recvDone := s.pumpStop, s.pumpDone, s.recvDone
	s.mu.Unlock()

	go s.pumpFrames(capture, stream, pumpStop, pumpDone)
	go s.receive(stream, speaker, recvDone)

	s.logger.Info("Turn live", zap.String("turnID", turnID))
	return nil
}

// Stop ends the turn and returns the finalized transcript, trimmed of
// surrounding whitespace. Teardown runs in fixed order: the frame
// producer is disconnected first, then the capture stream is released,
// then the recognition connection is closed. The final read happens
// only after the receive loop has drained, so no fragment callback can
// mutate the buffer past the read.
//
// Valid from LIVE, STARTING or ERRORED. Stop while IDLE returns
// ErrInvalidState so callers can treat a double stop as a no-op.
func (s *TurnSession) Stop(ctx context.Context) (string, error) {
	s.mu.Lock()
	switch s.state {
	case TurnLive, TurnErrored:
	case TurnStarting:
		// Resources are still being acquired. Flag the start attempt
		// as cancelled; Start will release whatever it opened.
		s.state = TurnIdle
		s.mu.Unlock()
		return "", nil
	default:
		state := s.state
		s.mu.Unlock()
		return "", fmt.Errorf("%w: cannot stop turn while %s", entities.ErrInvalidState, state)
	}
	s.state = TurnStopping
	capture, stream := s.capture, s.stream
	pumpStop, pumpDone, recvDone := s.pumpStop, s.pumpDone, s.recvDone
	turnID := s.turnID
	s.capture = nil
	s.stream = nil
	s.mu.Unlock()

	s.logger.Info("Stopping turn", zap.String("turnID", turnID))

	// 1. Disconnect the frame producer.
	close(pumpStop)
	<-pumpDone

	// 2. Stop the audio device and release the capture stream.
	if err := capture.Close(); err != nil {
		s.logger.Warn("Failed to release capture stream", zap.Error(err))
	}

	// 3. Close the streaming recognition connection.
	if err := stream.Close(); err != nil {
		s.logger.Warn("Failed to close recognition stream", zap.Error(err))
	}

	// 4. Wait for the receive loop to drain before the final read so a
	// fragment already in flight cannot land mid-read.
	select {
	case <-recvDone:
	case <-ctx.Done():
		s.logger.Warn("Gave up waiting for recognition drain", zap.Error(ctx.Err()))
	}

	final := s.buffer.Final()

	s.mu.Lock()
	s.state = TurnIdle
	s.mu.Unlock()

	s.logger.Info("Turn finalized",
		zap.String("turnID", turnID),
		zap.Int("transcriptLength", len(final)))
	return final, nil
}

// abortStart returns a failed start attempt to IDLE.
func (s *TurnSession) abortStart() {
	s.mu.Lock()
	if s.state == TurnStarting {
		s.state = TurnIdle
	}
	s.mu.Unlock()
}

// pumpFrames encodes capture frames and pushes them to the recognition
// stream until the producer is disconnected or the capture ends. A
// failed send drops the frame with a warning and never retries.
func (s *TurnSession) pumpFrames(capture repositories.CaptureStream, stream repositories.RecognitionStream, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case frame, ok := <-capture.Frames():
			if !ok {
				return
			}
			if err := stream.Send(audio.EncodeFrame(frame)); err != nil {
				s.logger.Warn("Dropping audio frame, send failed", zap.Error(err))
			}
		}
	}
}

// receive appends fragments in arrival order and republishes the
// accumulated transcript as a live preview. A connection-level error
// interrupts the turn without losing what was already accumulated.
func (s *TurnSession) receive(stream repositories.RecognitionStream, speaker entities.Speaker, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case fragment, ok := <-stream.Fragments():
			if !ok {
				return
			}
			s.buffer.Append(fragment)
			if s.onPreview != nil {
				s.onPreview(speaker, s.buffer.String())
			}
		case err := <-stream.Err():
			if err != nil {
				s.interrupt(speaker, err)
			}
			// Drain fragments already delivered by the backend.
			for fragment := range stream.Fragments() {
				s.buffer.Append(fragment)
			}
			return
		}
	}
}

// interrupt marks a live turn as errored, keeping the transcript for a
// best-effort finalize.
func (s *TurnSession) interrupt(speaker entities.Speaker, err error) {
	s.mu.Lock()
	if s.state == TurnLive || s.state == TurnStarting {
		s.state = TurnErrored
	}
	turnID := s.turnID
	s.mu.Unlock()

	s.logger.Error("Turn interrupted by recognition backend",
		zap.String("turnID", turnID),
		zap.Error(err))

	if s.onInterrupt != nil {
		s.onInterrupt(speaker, fmt.Errorf("%w: %v", entities.ErrConnectionFailed, err))
	}
}
