package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"

	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
	"github.com/Shawnzeng217/AI-Translator/internal/audio"
)

// clientPlayer implements AudioPlayer by shipping the decoded buffer
// to the remote client, which owns the actual speaker.
type clientPlayer struct {
	client *Client
}

var _ repositories.AudioPlayer = (*clientPlayer)(nil)

func (p *clientPlayer) Play(ctx context.Context, samples []int16, sampleRate int) error {
	msg := AudioMessage{
		Type:       MessageTypeAudio,
		AudioData:  base64.StdEncoding.EncodeToString(audio.PCMToBytes(samples)),
		SampleRate: sampleRate,
		Channels:   1,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	select {
	case p.client.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
		return nil
	case <-p.client.done:
		return errors.New("client disconnected")
	case <-ctx.Done():
		return ctx.Err()
	}
}
