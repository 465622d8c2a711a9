package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/adapters/capture"
	"github.com/Shawnzeng217/AI-Translator/adapters/stt"
	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
	"github.com/Shawnzeng217/AI-Translator/internal/audio"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func newTestSession(t *testing.T) (*TurnSession, *capture.ChannelDevice, *stt.MockRecognizer) {
	t.Helper()
	logger := zap.NewNop()
	device := capture.NewChannelDevice(8, logger)
	recognizer := stt.NewMockRecognizer(logger)
	return NewTurnSession(device, recognizer, logger), device, recognizer
}

func TestTurnSessionLifecycle(t *testing.T) {
	session, device, recognizer := newTestSession(t)

	previews := make(chan string, 16)
	session.OnPreview(func(_ entities.Speaker, accumulated string) {
		previews <- accumulated
	})

	if session.State() != TurnIdle {
		t.Fatalf("Expected idle state, got %s", session.State())
	}

	if err := session.Start(context.Background(), entities.SpeakerHost, entities.English); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if session.State() != TurnLive {
		t.Fatalf("Expected live state, got %s", session.State())
	}

	// Frames flow through the encoder into the recognition stream.
	frame := []float32{0.1, -0.1, 0.5}
	device.Push(frame)
	stream := recognizer.Last()
	waitFor(t, "frame delivery", func() bool { return len(stream.Sent()) == 1 })
	if stream.Sent()[0] != audio.EncodeFrame(frame) {
		t.Error("Expected the pumped frame to be the encoded capture frame")
	}

	// Fragments are appended in arrival order and republished.
	stream.Emit("Hello")
	if got := <-previews; got != "Hello" {
		t.Errorf("Expected preview %q, got %q", "Hello", got)
	}
	stream.Emit(" there")
	if got := <-previews; got != "Hello there" {
		t.Errorf("Expected preview %q, got %q", "Hello there", got)
	}

	final, err := session.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if final != "Hello there" {
		t.Errorf("Expected final transcript %q, got %q", "Hello there", final)
	}
	if session.State() != TurnIdle {
		t.Errorf("Expected idle state after stop, got %s", session.State())
	}
	if !stream.Closed() {
		t.Error("Expected recognition stream to be closed")
	}
}

func TestTurnSessionStartWhileLive(t *testing.T) {
	session, _, _ := newTestSession(t)

	if err := session.Start(context.Background(), entities.SpeakerHost, entities.English); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	err := session.Start(context.Background(), entities.SpeakerHost, entities.English)
	if !errors.Is(err, entities.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestTurnSessionStopWhileIdle(t *testing.T) {
	session, _, _ := newTestSession(t)

	if _, err := session.Stop(context.Background()); !errors.Is(err, entities.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestTurnSessionCaptureUnavailable(t *testing.T) {
	session, device, _ := newTestSession(t)

	// Hold the device so the session cannot acquire it.
	if _, err := device.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	err := session.Start(context.Background(), entities.SpeakerHost, entities.English)
	if !errors.Is(err, entities.ErrCaptureUnavailable) {
		t.Errorf("Expected ErrCaptureUnavailable, got %v", err)
	}
	if session.State() != TurnIdle {
		t.Errorf("Expected idle after failed start, got %s", session.State())
	}
}

func TestTurnSessionConnectionFailed(t *testing.T) {
	session, device, recognizer := newTestSession(t)
	recognizer.OpenErr = errors.New("backend down")

	err := session.Start(context.Background(), entities.SpeakerHost, entities.English)
	if !errors.Is(err, entities.ErrConnectionFailed) {
		t.Errorf("Expected ErrConnectionFailed, got %v", err)
	}
	if session.State() != TurnIdle {
		t.Errorf("Expected idle after failed start, got %s", session.State())
	}

	// The capture stream must have been released on the failure path.
	if _, err := device.Open(context.Background()); err != nil {
		t.Errorf("Expected capture device to be free, got %v", err)
	}
}

func TestTurnSessionBackendInterrupt(t *testing.T) {
	session, _, recognizer := newTestSession(t)

	interrupts := make(chan error, 1)
	session.OnInterrupt(func(_ entities.Speaker, err error) {
		interrupts <- err
	})

	if err := session.Start(context.Background(), entities.SpeakerHost, entities.English); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stream := recognizer.Last()
	stream.Emit("partial text")
	waitFor(t, "fragment accumulation", func() bool { return session.buffer.Len() > 0 })

	stream.Fail(errors.New("stream reset"))

	err := <-interrupts
	if !errors.Is(err, entities.ErrConnectionFailed) {
		t.Errorf("Expected ErrConnectionFailed, got %v", err)
	}
	waitFor(t, "errored state", func() bool { return session.State() == TurnErrored })

	// The accumulated transcript survives for a best-effort finalize.
	final, err := session.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if final != "partial text" {
		t.Errorf("Expected preserved transcript %q, got %q", "partial text", final)
	}
}

func TestTurnSessionFinalReadAfterDrain(t *testing.T) {
	session, _, recognizer := newTestSession(t)

	if err := session.Start(context.Background(), entities.SpeakerHost, entities.English); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Fragments still in flight when Stop is called must be applied
	// before the final read, never after it.
	stream := recognizer.Last()
	stream.Emit("one ")
	stream.Emit("two ")
	stream.Emit("three")

	final, err := session.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if final != "one two three" {
		t.Errorf("Expected all in-flight fragments in final read, got %q", final)
	}
}

// wedgedStream models a backend that stops responding after Close: the
// fragment channel is never closed, so the receive loop cannot drain.
type wedgedStream struct {
	fragments chan string
	errs      chan error
}

func (s *wedgedStream) Send(string) error        { return nil }
func (s *wedgedStream) Fragments() <-chan string { return s.fragments }
func (s *wedgedStream) Err() <-chan error        { return s.errs }
func (s *wedgedStream) Close() error             { return nil }

type wedgedRecognizer struct {
	stream *wedgedStream
}

func (r *wedgedRecognizer) Open(context.Context, repositories.RecognitionConfig) (repositories.RecognitionStream, error) {
	return r.stream, nil
}

func TestTurnSessionStopDrainDeadline(t *testing.T) {
	logger := zap.NewNop()
	device := capture.NewChannelDevice(8, logger)
	recognizer := &wedgedRecognizer{stream: &wedgedStream{
		fragments: make(chan string),
		errs:      make(chan error, 1),
	}}
	session := NewTurnSession(device, recognizer, logger)

	if err := session.Start(context.Background(), entities.SpeakerHost, entities.English); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		if _, err := session.Stop(ctx); err != nil {
			t.Errorf("Stop failed: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not give up on the wedged drain")
	}
	if session.State() != TurnIdle {
		t.Errorf("Expected idle after bounded stop, got %s", session.State())
	}
}

func TestTurnSessionTrimsWhitespace(t *testing.T) {
	session, _, recognizer := newTestSession(t)

	if err := session.Start(context.Background(), entities.SpeakerHost, entities.English); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	recognizer.Last().Emit("  padded  ")

	final, err := session.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if final != "padded" {
		t.Errorf("Expected trimmed transcript, got %q", final)
	}
}
