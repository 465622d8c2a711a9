package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/adapters/stt"
	"github.com/Shawnzeng217/AI-Translator/adapters/translate"
	"github.com/Shawnzeng217/AI-Translator/adapters/tts"
	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

type testBridge struct {
	conn       *websocket.Conn
	recognizer *stt.MockRecognizer
	translator *translate.MockTranslator
}

func setupTestBridge(t *testing.T) *testBridge {
	t.Helper()
	logger := zap.NewNop()

	recognizer := stt.NewMockRecognizer(logger)
	translator := translate.NewMockTranslator(logger)
	synthesizer := tts.NewMockSynthesizer(logger)

	hub := NewHub(recognizer, translator, synthesizer, logger)
	go hub.Run()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocketWithAuth(hub, c, "test-client", logger)
	})
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &testBridge{conn: conn, recognizer: recognizer, translator: translator}
}

// readUntil reads messages until one of the wanted type arrives.
func (b *testBridge) readUntil(t *testing.T, wanted MessageType) map[string]interface{} {
	t.Helper()
	b.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, payload, err := b.conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read message while waiting for %q: %v", wanted, err)
		}
		var msg map[string]interface{}
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("Failed to parse message: %v", err)
		}
		if msg["type"] == string(wanted) {
			return msg
		}
	}
}

func (b *testBridge) sendControl(t *testing.T, msg ClientMessage) {
	t.Helper()
	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Failed to marshal control message: %v", err)
	}
	if err := b.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("Failed to send control message: %v", err)
	}
}

func (b *testBridge) waitForStream(t *testing.T) *stt.MockStream {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := b.recognizer.Last(); s != nil {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Timed out waiting for recognition stream")
	return nil
}

func TestBridgeTurnOverWebSocket(t *testing.T) {
	bridge := setupTestBridge(t)
	bridge.translator.Responses = map[string]string{"Hello there": "你好"}

	bridge.sendControl(t, ClientMessage{Type: MessageTypeTurnStart, Speaker: "host"})

	state := bridge.readUntil(t, MessageTypeBridgeState)
	if state["active_speaker"] != "host" {
		t.Errorf("Expected host active, got %v", state["active_speaker"])
	}

	// Microphone frames arrive as raw little-endian float32 samples.
	frame := make([]byte, 8) // two zero samples
	if err := bridge.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("Failed to send audio frame: %v", err)
	}

	stream := bridge.waitForStream(t)
	stream.Emit("Hello")
	preview := bridge.readUntil(t, MessageTypePreview)
	if preview["text"] != "Hello" {
		t.Errorf("Expected preview %q, got %v", "Hello", preview["text"])
	}
	stream.Emit(" there")

	bridge.sendControl(t, ClientMessage{Type: MessageTypeTurnStop, Speaker: "host"})

	final := bridge.readUntil(t, MessageTypeTurnFinal)
	if final["transcript"] != "Hello there" {
		t.Errorf("Expected transcript %q, got %v", "Hello there", final["transcript"])
	}
	if final["translation"] != "你好" {
		t.Errorf("Expected translation %q, got %v", "你好", final["translation"])
	}
}

func TestBridgeRejectsConcurrentTurns(t *testing.T) {
	bridge := setupTestBridge(t)

	bridge.sendControl(t, ClientMessage{Type: MessageTypeTurnStart, Speaker: "host"})
	bridge.readUntil(t, MessageTypeBridgeState)

	bridge.sendControl(t, ClientMessage{Type: MessageTypeTurnStart, Speaker: "guest"})

	errMsg := bridge.readUntil(t, MessageTypeError)
	if errMsg["error_code"] != "invalid_state" {
		t.Errorf("Expected invalid_state error, got %v", errMsg["error_code"])
	}
}

func TestBridgeModeSwitchOverWebSocket(t *testing.T) {
	bridge := setupTestBridge(t)

	bridge.sendControl(t, ClientMessage{Type: MessageTypeSetMode, Mode: "conversation"})

	state := bridge.readUntil(t, MessageTypeBridgeState)
	if state["mode"] != "conversation" {
		t.Errorf("Expected conversation mode, got %v", state["mode"])
	}
}

func TestErrorCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{entities.ErrCaptureUnavailable, "capture_unavailable"},
		{entities.ErrConnectionFailed, "connection_failed"},
		{entities.ErrTranslationFailed, "translation_failed"},
		{entities.ErrPlaybackFailed, "playback_failed"},
		{entities.ErrInvalidState, "invalid_state"},
		{errors.New("anything else"), "internal_error"},
	}
	for _, tc := range cases {
		if got := errorCode(tc.err); got != tc.code {
			t.Errorf("Expected code %q for %v, got %q", tc.code, tc.err, got)
		}
	}
}

func TestUnregisterLeavesSendOpen(t *testing.T) {
	logger := zap.NewNop()
	hub := NewHub(stt.NewMockRecognizer(logger), translate.NewMockTranslator(logger),
		tts.NewMockSynthesizer(logger), logger)
	go hub.Run()

	client := &Client{
		hub:      hub,
		send:     make(chan WriteData, 1),
		done:     make(chan struct{}),
		clientID: "c1",
		logger:   logger,
	}
	hub.register <- client
	hub.unregister <- client

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		_, registered := hub.clients["c1"]
		hub.mu.RUnlock()
		if !registered {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A playback still in flight when the client unregisters must be
	// able to finish; the send channel stays open.
	player := &clientPlayer{client: client}
	if err := player.Play(context.Background(), []int16{1, 2}, repositories.PlaybackSampleRate); err != nil {
		t.Fatalf("Play after unregister failed: %v", err)
	}
}

func TestClientPlayerAfterDisconnect(t *testing.T) {
	client := &Client{send: make(chan WriteData), done: make(chan struct{}), logger: zap.NewNop()}
	close(client.done)

	player := &clientPlayer{client: client}
	if err := player.Play(context.Background(), []int16{1}, repositories.PlaybackSampleRate); err == nil {
		t.Error("Expected an error for a disconnected client")
	}
}

func TestClientPlayerEncodesAudio(t *testing.T) {
	client := &Client{send: make(chan WriteData, 1), done: make(chan struct{}), logger: zap.NewNop()}
	player := &clientPlayer{client: client}

	samples := []int16{1, -1, 100}
	if err := player.Play(context.Background(), samples, repositories.PlaybackSampleRate); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	out := <-client.send
	var msg AudioMessage
	if err := json.Unmarshal(out.Payload, &msg); err != nil {
		t.Fatalf("Failed to parse audio message: %v", err)
	}
	if msg.Type != MessageTypeAudio {
		t.Errorf("Expected audio message, got %q", msg.Type)
	}
	if msg.SampleRate != repositories.PlaybackSampleRate {
		t.Errorf("Expected sample rate %d, got %d", repositories.PlaybackSampleRate, msg.SampleRate)
	}
}
