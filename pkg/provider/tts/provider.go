// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service (e.g., Gemini speech
// generation or a local Piper instance) and presents a uniform batch
// interface: one call synthesizes one utterance into raw PCM. Container
// encoding (WAV, data URIs) is the caller's concern; see pkg/audio.
//
// Implementations must be safe for concurrent use.
package tts

import (
	"context"
	"errors"
)

// ErrUnknownVoice is returned by Synthesize when the requested voice name is
// not in the provider's catalogue.
var ErrUnknownVoice = errors.New("tts: unknown voice")

// Audio is one synthesized utterance as raw little-endian PCM.
type Audio struct {
	// PCM holds the raw samples, 16-bit little-endian.
	PCM []byte

	// SampleRate in Hz, e.g. 24000.
	SampleRate int

	// Channels is the channel count, 1 for mono.
	Channels int
}

// Provider is the abstraction over any TTS backend.
//
// Implementations must be safe for concurrent use; multiple synthesis
// requests may run in parallel.
type Provider interface {
	// Synthesize converts text into spoken audio using the named voice and
	// returns the raw PCM. An empty voice selects the provider's default.
	//
	// Returns an error if the voice is unknown, the request fails, or ctx is
	// cancelled before the audio arrives.
	Synthesize(ctx context.Context, text, voice string) (Audio, error)

	// Voices returns the names of the voices this provider offers.
	Voices() []string
}
