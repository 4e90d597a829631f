package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/flashflow-ai/flashflow/pkg/provider/tts"
	ttsmock "github.com/flashflow-ai/flashflow/pkg/provider/tts/mock"
)

func TestTTSFallbackFailsOver(t *testing.T) {
	primary := &ttsmock.Provider{Err: errors.New("quota exceeded")}
	fallback := &ttsmock.Provider{
		Audio: tts.Audio{PCM: []byte{1, 2}, SampleRate: 24000, Channels: 1},
	}

	f := NewTTSFallback(primary, "primary", FallbackConfig{})
	f.AddFallback("fallback", fallback)

	out, err := f.Synthesize(context.Background(), "hello", "Algenib")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(out.PCM) != 2 {
		t.Errorf("audio = %+v", out)
	}
	if len(fallback.SynthesizeCalls) != 1 {
		t.Errorf("fallback calls = %d", len(fallback.SynthesizeCalls))
	}
}

func TestTTSFallbackAllFailed(t *testing.T) {
	primary := &ttsmock.Provider{Err: errors.New("down")}

	f := NewTTSFallback(primary, "primary", FallbackConfig{})
	if _, err := f.Synthesize(context.Background(), "hello", ""); !errors.Is(err, ErrAllFailed) {
		t.Errorf("Synthesize() error = %v, want ErrAllFailed", err)
	}
}

func TestTTSFallbackVoicesComeFromPrimary(t *testing.T) {
	primary := &ttsmock.Provider{VoiceNames: []string{"A", "B"}}
	fallback := &ttsmock.Provider{VoiceNames: []string{"X"}}

	f := NewTTSFallback(primary, "primary", FallbackConfig{})
	f.AddFallback("fallback", fallback)

	voices := f.Voices()
	if len(voices) != 2 || voices[0] != "A" {
		t.Errorf("voices = %v", voices)
	}
}
