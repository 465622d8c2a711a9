package repositories

import "context"

// Audio profile of the capture side. Single fixed PCM profile, no
// format negotiation.
const (
	CaptureSampleRate = 16000
	CaptureFrameSize  = 1024
)

// CaptureDevice acquires a microphone input stream.
type CaptureDevice interface {
	// Open acquires the device and starts delivering frames. Returns
	// an error when the microphone is denied or missing.
	Open(ctx context.Context) (CaptureStream, error)
}

// CaptureStream yields fixed-size frames of mono float32 samples in
// [-1.0, 1.0] at 16 kHz. The channel is closed when the stream ends.
type CaptureStream interface {
	Frames() <-chan []float32
	// Close stops the device and releases the stream. Idempotent.
	Close() error
}
