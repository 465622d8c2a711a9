package capture

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

// ChannelDevice is a capture device fed by an external producer, the
// remote client that owns the actual microphone. Frames are handed off
// on a buffered channel so a slow consumer never blocks the producer:
// when the buffer is full the frame is dropped with a warning.
type ChannelDevice struct {
	logger *zap.Logger
	buffer int

	mu     sync.Mutex
	stream *channelStream
}

var _ repositories.CaptureDevice = (*ChannelDevice)(nil)

// NewChannelDevice creates a device whose stream buffers up to buffer
// frames between producer and consumer.
func NewChannelDevice(buffer int, logger *zap.Logger) *ChannelDevice {
	if buffer <= 0 {
		buffer = 32
	}
	return &ChannelDevice{logger: logger, buffer: buffer}
}

// Open acquires the device. Only one stream may be open at a time.
func (d *ChannelDevice) Open(ctx context.Context) (repositories.CaptureStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream != nil {
		return nil, fmt.Errorf("capture device already in use")
	}

	s := &channelStream{
		device: d,
		frames: make(chan []float32, d.buffer),
	}
	d.stream = s
	d.logger.Debug("Capture stream opened", zap.Int("buffer", d.buffer))
	return s, nil
}

// Push delivers one frame to the open stream. It never blocks: the
// frame is dropped when no stream is open or the buffer is full.
// Returns true when the frame was accepted.
func (d *ChannelDevice) Push(frame []float32) bool {
	d.mu.Lock()
	s := d.stream
	d.mu.Unlock()

	if s == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	select {
	case s.frames <- frame:
		return true
	default:
		d.logger.Warn("Dropping capture frame, consumer too slow",
			zap.Int("samples", len(frame)))
		return false
	}
}

func (d *ChannelDevice) release(s *channelStream) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream == s {
		d.stream = nil
	}
}

type channelStream struct {
	device *ChannelDevice
	frames chan []float32

	mu     sync.Mutex
	closed bool
}

func (s *channelStream) Frames() <-chan []float32 {
	return s.frames
}

// Close stops delivery and releases the device. Idempotent.
func (s *channelStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.frames)
	s.mu.Unlock()

	s.device.release(s)
	s.device.logger.Debug("Capture stream closed")
	return nil
}
