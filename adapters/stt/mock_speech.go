package stt

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

// MockRecognizer is a scripted recognizer for tests and for running
// the server without Google credentials.
type MockRecognizer struct {
	logger *zap.Logger

	mu      sync.Mutex
	streams []*MockStream
	configs []repositories.RecognitionConfig

	// OpenErr, when set, makes Open fail.
	OpenErr error
	// Script is handed to every opened stream: each entry is emitted
	// as one fragment after the stream has seen one Send.
	Script []string
}

// NewMockRecognizer creates an empty mock.
func NewMockRecognizer(logger *zap.Logger) *MockRecognizer {
	return &MockRecognizer{logger: logger}
}

func (m *MockRecognizer) Open(ctx context.Context, config repositories.RecognitionConfig) (repositories.RecognitionStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.OpenErr != nil {
		return nil, m.OpenErr
	}

	m.logger.Debug("Opening mock recognition stream",
		zap.String("language", config.Language.RecognitionCode))

	s := &MockStream{
		script:    append([]string(nil), m.Script...),
		fragments: make(chan string, 16),
		errs:      make(chan error, 1),
	}
	m.streams = append(m.streams, s)
	m.configs = append(m.configs, config)
	return s, nil
}

// LastConfig returns the config of the most recently opened stream.
func (m *MockRecognizer) LastConfig() repositories.RecognitionConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.configs) == 0 {
		return repositories.RecognitionConfig{}
	}
	return m.configs[len(m.configs)-1]
}

// Last returns the most recently opened stream.
func (m *MockRecognizer) Last() *MockStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.streams) == 0 {
		return nil
	}
	return m.streams[len(m.streams)-1]
}

// MockStream records sends and lets tests push fragments and errors.
type MockStream struct {
	script    []string
	fragments chan string
	errs      chan error

	mu       sync.Mutex
	closed   bool
	sent     []string
	scripted bool
}

func (s *MockStream) Send(encodedFrame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.sent = append(s.sent, encodedFrame)
	if !s.scripted && len(s.script) > 0 {
		s.scripted = true
		for _, f := range s.script {
			s.fragments <- f
		}
	}
	return nil
}

func (s *MockStream) Fragments() <-chan string { return s.fragments }

func (s *MockStream) Err() <-chan error { return s.errs }

func (s *MockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.fragments)
	return nil
}

// Emit pushes one fragment, as if the backend delivered it.
func (s *MockStream) Emit(fragment string) {
	s.fragments <- fragment
}

// Fail injects a connection-level failure.
func (s *MockStream) Fail(err error) {
	s.errs <- err
}

// Sent returns the frames pushed so far.
func (s *MockStream) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

// Closed reports whether Close has been called.
func (s *MockStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
