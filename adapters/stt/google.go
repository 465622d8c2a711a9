package stt

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

// GoogleRecognizer implements SpeechRecognizer on Google Cloud
// Speech-to-Text streaming recognition.
type GoogleRecognizer struct {
	logger *zap.Logger
}

// NewGoogleRecognizer creates a recognizer. Credentials come from the
// ambient Google application default credentials.
func NewGoogleRecognizer(logger *zap.Logger) *GoogleRecognizer {
	return &GoogleRecognizer{logger: logger}
}

// Open starts a streaming recognition session scoped to one language.
// The language code is the canonical recognition code of the language,
// so script-ambiguous languages always come back in one written form.
func (g *GoogleRecognizer) Open(ctx context.Context, config repositories.RecognitionConfig) (repositories.RecognitionStream, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to open streaming recognize: %w", err)
	}

	sampleRate := config.SampleRate
	if sampleRate == 0 {
		sampleRate = repositories.CaptureSampleRate
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz: int32(sampleRate),
					LanguageCode:    config.Language.RecognitionCode,
				},
			},
		},
	}); err != nil {
		stream.CloseSend()
		client.Close()
		return nil, fmt.Errorf("failed to send streaming config: %w", err)
	}

	g.logger.Info("Recognition stream opened",
		zap.String("language", config.Language.RecognitionCode),
		zap.Int("sampleRate", sampleRate))

	s := &googleStream{
		client:    client,
		stream:    stream,
		logger:    g.logger,
		fragments: make(chan string, 16),
		errs:      make(chan error, 1),
	}
	go s.receive()
	return s, nil
}

type googleStream struct {
	client    *speech.Client
	stream    speechpb.Speech_StreamingRecognizeClient
	logger    *zap.Logger
	fragments chan string
	errs      chan error

	mu     sync.Mutex
	closed bool
}

// Send pushes one base64-encoded PCM frame. Frames arriving after
// Close are silently dropped.
func (s *googleStream) Send(encodedFrame string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	data, err := base64.StdEncoding.DecodeString(encodedFrame)
	if err != nil {
		return fmt.Errorf("failed to decode audio frame: %w", err)
	}

	err = s.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: data,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send audio frame: %w", err)
	}
	return nil
}

func (s *googleStream) Fragments() <-chan string {
	return s.fragments
}

func (s *googleStream) Err() <-chan error {
	return s.errs
}

// Close signals end of audio and releases the connection. Idempotent.
func (s *googleStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.stream.CloseSend(); err != nil {
		s.client.Close()
		return fmt.Errorf("failed to close send stream: %w", err)
	}
	return nil
}

// receive pumps recognition results until the stream ends. Each final
// result is one fragment, delivered in arrival order.
func (s *googleStream) receive() {
	defer close(s.fragments)
	defer s.client.Close()

	for {
		resp, err := s.stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				s.errs <- fmt.Errorf("recognition stream failed: %w", err)
			}
			return
		}

		for _, result := range resp.Results {
			if result.IsFinal && len(result.Alternatives) > 0 {
				s.fragments <- result.Alternatives[0].Transcript
			}
		}
	}
}
