package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/adapters/capture"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
	"github.com/Shawnzeng217/AI-Translator/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer, sized for audio frames.
	maxMessageSize = 512 * 1024

	// Frames buffered between the network reader and the turn pump.
	captureBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active bridge clients. Each client owns one
// BridgeCoordinator: its microphone frames feed that coordinator's
// capture device, and previews, finalized views and synthesized audio
// flow back over the same connection.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	recognizer  repositories.SpeechRecognizer
	translator  repositories.Translator
	synthesizer repositories.SpeechSynthesizer

	logger *zap.Logger
}

// NewHub creates a hub over the backend services shared by all
// clients.
func NewHub(
	recognizer repositories.SpeechRecognizer,
	translator repositories.Translator,
	synthesizer repositories.SpeechSynthesizer,
	logger *zap.Logger,
) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		recognizer:  recognizer,
		translator:  translator,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.clientID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("clientID", client.clientID))

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client.clientID)
			h.mu.Unlock()
			// The send channel is never closed: a playback goroutine may
			// still hold it. The client's done channel stops the write
			// pump instead.
			h.logger.Info("Client unregistered", zap.String("clientID", client.clientID))
		}
	}
}

// WriteData is one outbound websocket message.
type WriteData struct {
	// Type is websocket.TextMessage or websocket.BinaryMessage.
	Type    int
	Payload []byte
}

// HandleWebSocketWithAuth upgrades a pre-authenticated request and
// wires a fresh bridge for the client.
func HandleWebSocketWithAuth(hub *Hub, c echo.Context, clientID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	if clientID == "" {
		clientID = uuid.NewString()
	}

	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan WriteData, 256),
		done:     make(chan struct{}),
		clientID: clientID,
		logger:   logger.With(zap.String("clientID", clientID)),
	}

	client.device = capture.NewChannelDevice(captureBuffer, client.logger)
	playback := usecase.NewSpeechPlayback(hub.synthesizer, &clientPlayer{client: client}, client.logger)
	client.bridge = usecase.NewBridgeCoordinator(
		client.device, hub.recognizer, hub.translator, playback, client.logger)
	client.bridge.OnPreview(client.sendPreview)
	client.bridge.OnViews(client.sendTurnFinal)
	client.bridge.OnError(client.sendTurnError)

	client.hub.register <- client

	go client.writePump()
	go client.readPump()

	return nil
}
