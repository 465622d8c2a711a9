package audio

import (
	"encoding/base64"
	"fmt"
	"math"
)

// Fixed PCM profile of the bridge: 16 kHz mono capture, 24 kHz mono
// playback, 16-bit little-endian samples on the wire.
const (
	CaptureSampleRate  = 16000
	PlaybackSampleRate = 24000
	FrameSize          = 1024
)

// EncodeFrame converts one frame of mono float samples to 16-bit
// signed little-endian PCM and base64 encodes it for transport.
// Samples are clamped to [-1, 1] before scaling so out-of-range input
// can never wrap around. The conversion is lossy (16-bit quantization)
// and deterministic for identical input.
func EncodeFrame(samples []float32) string {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int16(clamp(s) * math.MaxInt16)
		buf[2*i] = byte(v)
		buf[2*i+1] = byte(v >> 8)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeFrame is the symmetric inverse of EncodeFrame up to
// quantization error.
func DecodeFrame(encoded string) ([]int16, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return BytesToPCM(raw)
}

// BytesToPCM unpacks little-endian 16-bit samples.
func BytesToPCM(raw []byte) ([]int16, error) {
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("pcm payload has odd length %d", len(raw))
	}
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(raw[2*i]) | int16(raw[2*i+1])<<8
	}
	return samples, nil
}

// PCMToBytes packs samples little-endian.
func PCMToBytes(samples []int16) []byte {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		raw[2*i] = byte(s)
		raw[2*i+1] = byte(s >> 8)
	}
	return raw
}

// BytesToFloats converts raw little-endian float32 samples, the layout
// the capture transport delivers.
func BytesToFloats(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("float payload length %d is not a multiple of 4", len(raw))
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		bits := uint32(raw[4*i]) | uint32(raw[4*i+1])<<8 | uint32(raw[4*i+2])<<16 | uint32(raw[4*i+3])<<24
		samples[i] = math.Float32frombits(bits)
	}
	return samples, nil
}

func clamp(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
