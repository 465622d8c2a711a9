package entities

import "errors"

// Error taxonomy for the bridge. Capture and connection errors abort
// only the current turn; translation and playback errors abort only the
// one operation. Nothing is retried automatically.
var (
	// ErrCaptureUnavailable means the microphone could not be acquired.
	ErrCaptureUnavailable = errors.New("audio capture unavailable")

	// ErrConnectionFailed means the streaming recognition connection
	// could not be opened or failed mid stream.
	ErrConnectionFailed = errors.New("recognition connection failed")

	// ErrTranslationFailed means the translation backend failed. Prior
	// display state must be left intact by the caller.
	ErrTranslationFailed = errors.New("translation failed")

	// ErrPlaybackFailed means synthesis or playback failed. Non fatal.
	ErrPlaybackFailed = errors.New("speech playback failed")

	// ErrInvalidState means the operation is not legal in the current
	// session state, e.g. starting a turn while another is live.
	ErrInvalidState = errors.New("invalid session state")
)
