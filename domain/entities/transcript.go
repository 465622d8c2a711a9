package entities

import (
	"strings"
	"sync"
)

// TranscriptBuffer accumulates transcript fragments for one turn.
// It has a single writer, the active turn session, which appends
// fragments in arrival order. It is reset at turn start and read out
// once at finalize.
type TranscriptBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

// NewTranscriptBuffer returns an empty buffer.
func NewTranscriptBuffer() *TranscriptBuffer {
	return &TranscriptBuffer{}
}

// Append adds a fragment verbatim to the end of the buffer.
func (t *TranscriptBuffer) Append(fragment string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.b.WriteString(fragment)
}

// String returns the accumulated text.
func (t *TranscriptBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.b.String()
}

// Final returns the accumulated text trimmed of surrounding whitespace.
func (t *TranscriptBuffer) Final() string {
	return strings.TrimSpace(t.String())
}

// Reset clears the buffer for a new turn.
func (t *TranscriptBuffer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.b.Reset()
}

// Len returns the accumulated length in bytes.
func (t *TranscriptBuffer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.b.Len()
}
