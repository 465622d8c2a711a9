package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/adapters/capture"
	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/internal/audio"
	"github.com/Shawnzeng217/AI-Translator/usecase"
)

// Client is a middleman between one websocket connection and its
// bridge coordinator.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan WriteData
	done     chan struct{}
	clientID string
	logger   *zap.Logger

	device *capture.ChannelDevice
	bridge *usecase.BridgeCoordinator
}

// readPump pumps messages from the websocket connection to the bridge.
func (c *Client) readPump() {
	defer func() {
		c.shutdownBridge()
		close(c.done)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.processAudioFrame(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the bridge to the websocket
// connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage dispatches one control message from the bridge UI.
func (c *Client) processMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Error("Failed to parse message", zap.Error(err))
		return
	}

	ctx := context.Background()

	switch msg.Type {
	case MessageTypeTurnStart:
		if err := c.bridge.StartTurn(ctx, entities.Speaker(msg.Speaker)); err != nil {
			c.sendError(err)
			return
		}
		c.sendBridgeState()

	case MessageTypeTurnStop:
		// Bound the teardown drain so a wedged recognition stream cannot
		// hold the read loop forever.
		stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if _, err := c.bridge.StopTurn(stopCtx, entities.Speaker(msg.Speaker)); err != nil {
			c.sendError(err)
		}
		cancel()
		c.sendBridgeState()

	case MessageTypeSetMode:
		if err := c.bridge.SetMode(entities.Mode(msg.Mode)); err != nil {
			c.sendError(err)
			return
		}
		c.sendBridgeState()

	case MessageTypeSwapLanguages:
		if err := c.bridge.SwapLanguages(); err != nil {
			c.sendError(err)
			return
		}
		c.sendBridgeState()

	case MessageTypeSetLanguages:
		source, ok := entities.LanguageByCode(msg.Source)
		if !ok {
			c.sendError(errors.New("unknown source language " + msg.Source))
			return
		}
		target, ok := entities.LanguageByCode(msg.Target)
		if !ok {
			c.sendError(errors.New("unknown target language " + msg.Target))
			return
		}
		if err := c.bridge.SetLanguagePair(entities.LanguagePair{Source: source, Target: target}); err != nil {
			c.sendError(err)
			return
		}
		c.sendBridgeState()

	case MessageTypeSpeak:
		// Playback runs to completion; keep the read loop responsive.
		go func() {
			if err := c.bridge.PlayTranslation(context.Background()); err != nil {
				c.sendError(err)
			}
		}()

	default:
		c.logger.Warn("Unknown message type", zap.String("type", string(msg.Type)))
	}
}

// processAudioFrame feeds one microphone frame into the capture
// device. The payload is raw little-endian float32 samples. Frames
// arriving with no open capture stream are dropped silently, the UI
// keeps sending briefly around turn boundaries.
func (c *Client) processAudioFrame(data []byte) {
	samples, err := audio.BytesToFloats(data)
	if err != nil {
		c.logger.Warn("Discarding malformed audio frame", zap.Error(err))
		return
	}
	c.device.Push(samples)
}

// shutdownBridge finalizes any turn still running when the connection
// drops so the capture and recognition resources are released.
func (c *Client) shutdownBridge() {
	speaker := c.bridge.ActiveSpeaker()
	if speaker == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.bridge.StopTurn(ctx, speaker); err != nil {
		c.logger.Warn("Failed to finalize turn on disconnect", zap.Error(err))
	}
}

func (c *Client) sendPreview(speaker entities.Speaker, text string) {
	c.sendJSON(PreviewMessage{
		Type:    MessageTypePreview,
		Speaker: string(speaker),
		Text:    text,
	})
}

func (c *Client) sendTurnFinal(mode entities.Mode, views usecase.TurnViews) {
	c.sendJSON(TurnFinalMessage{
		Type:        MessageTypeTurnFinal,
		Mode:        string(mode),
		Transcript:  views.Transcript,
		Translation: views.Translation,
	})
}

func (c *Client) sendTurnError(speaker entities.Speaker, err error) {
	c.logger.Warn("Turn interrupted", zap.String("speaker", string(speaker)), zap.Error(err))
	c.sendError(err)
}

func (c *Client) sendBridgeState() {
	pair := c.bridge.LanguagePair()
	c.sendJSON(BridgeStateMessage{
		Type:          MessageTypeBridgeState,
		Mode:          string(c.bridge.Mode()),
		SourceCode:    pair.Source.Code,
		TargetCode:    pair.Target.Code,
		ActiveSpeaker: string(c.bridge.ActiveSpeaker()),
	})
}

func (c *Client) sendError(err error) {
	c.sendJSON(ErrorMessage{
		Type:    MessageTypeError,
		Code:    errorCode(err),
		Message: err.Error(),
	})
}

func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}
	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	case <-c.done:
	default:
		c.logger.Warn("Dropping outbound message, send buffer full")
	}
}

// errorCode maps the error taxonomy onto wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, entities.ErrCaptureUnavailable):
		return "capture_unavailable"
	case errors.Is(err, entities.ErrConnectionFailed):
		return "connection_failed"
	case errors.Is(err, entities.ErrTranslationFailed):
		return "translation_failed"
	case errors.Is(err, entities.ErrPlaybackFailed):
		return "playback_failed"
	case errors.Is(err, entities.ErrInvalidState):
		return "invalid_state"
	default:
		return "internal_error"
	}
}
