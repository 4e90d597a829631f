// Package mock provides a test double for the tts.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/flashflow-ai/flashflow/pkg/provider/tts"
	"github.com/flashflow-ai/flashflow/pkg/types"
)

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	Text  string
	Voice string
}

// Provider is a mock implementation of tts.Provider. Zero values for response
// fields cause Synthesize to return an empty Audio and nil error.
type Provider struct {
	mu sync.Mutex

	// Audio is returned by Synthesize.
	Audio tts.Audio

	// Err, if non-nil, is returned as the error from Synthesize.
	Err error

	// VoiceNames is returned by Voices. Defaults to the fixed catalogue when
	// nil.
	VoiceNames []string

	// SynthesizeCalls records every invocation of Synthesize in order.
	SynthesizeCalls []SynthesizeCall
}

// Synthesize records the call and returns Audio, Err.
func (p *Provider) Synthesize(_ context.Context, text, voice string) (tts.Audio, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, SynthesizeCall{Text: text, Voice: voice})
	return p.Audio, p.Err
}

// Voices returns VoiceNames, or the fixed catalogue when unset.
func (p *Provider) Voices() []string {
	if p.VoiceNames != nil {
		return p.VoiceNames
	}
	return types.Voices()
}

// Ensure Provider implements tts.Provider at compile time.
var _ tts.Provider = (*Provider)(nil)
