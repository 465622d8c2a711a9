package websocket

// MessageType defines the type of a bridge WebSocket message.
type MessageType string

// Supported message types. Clients send turn/mode/language control and
// binary microphone frames; the server sends previews, finalized
// views, synthesized audio and errors.
const (
	MessageTypeTurnStart     MessageType = "turn_start"
	MessageTypeTurnStop      MessageType = "turn_stop"
	MessageTypeSetMode       MessageType = "set_mode"
	MessageTypeSwapLanguages MessageType = "swap_languages"
	MessageTypeSetLanguages  MessageType = "set_languages"
	MessageTypeSpeak         MessageType = "speak"
	MessageTypePreview       MessageType = "preview"
	MessageTypeTurnFinal     MessageType = "turn_final"
	MessageTypeBridgeState   MessageType = "bridge_state"
	MessageTypeAudio         MessageType = "audio"
	MessageTypeError         MessageType = "error"
)

// ClientMessage is a control message from the bridge UI.
type ClientMessage struct {
	Type    MessageType `json:"type"`
	Speaker string      `json:"speaker,omitempty"`
	Mode    string      `json:"mode,omitempty"`
	Source  string      `json:"source,omitempty"`
	Target  string      `json:"target,omitempty"`
}

// PreviewMessage carries the live transcript accumulated so far.
type PreviewMessage struct {
	Type    MessageType `json:"type"`
	Speaker string      `json:"speaker"`
	Text    string      `json:"text"`
}

// TurnFinalMessage carries the display slots after a finalized turn.
type TurnFinalMessage struct {
	Type        MessageType `json:"type"`
	Mode        string      `json:"mode"`
	Transcript  string      `json:"transcript"`
	Translation string      `json:"translation"`
}

// BridgeStateMessage mirrors the coordinator state to the client.
type BridgeStateMessage struct {
	Type          MessageType `json:"type"`
	Mode          string      `json:"mode"`
	SourceCode    string      `json:"source"`
	TargetCode    string      `json:"target"`
	ActiveSpeaker string      `json:"active_speaker"`
}

// AudioMessage carries synthesized playback audio.
type AudioMessage struct {
	Type       MessageType `json:"type"`
	AudioData  string      `json:"audio_data"` // base64 PCM
	SampleRate int         `json:"sample_rate"`
	Channels   int         `json:"channels"`
}

// ErrorMessage reports a turn or operation failure.
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Code    string      `json:"error_code"`
	Message string      `json:"message"`
}
