package entities

// Mode selects between single-speaker translation and the two-party
// conversation bridge.
type Mode string

const (
	ModeSolo         Mode = "solo"
	ModeConversation Mode = "conversation"
)

// Valid reports whether the mode is known.
func (m Mode) Valid() bool {
	return m == ModeSolo || m == ModeConversation
}

// ModeState is the snapshot of one mode's display slots. Switching
// modes saves the outgoing mode's state and restores the incoming
// mode's, so the two modes never leak into each other.
type ModeState struct {
	Transcript  string `json:"transcript"`
	Translation string `json:"translation"`
}

// TranslationResult is the outcome of one translation request. It is
// ephemeral and never persisted.
type TranslationResult struct {
	OriginalText       string `json:"original_text"`
	TranslatedText     string `json:"translated_text"`
	TargetLanguageName string `json:"target_language_name"`
}
