// Package assist implements the assistant flows: text analysis, tone
// rewriting, and speech synthesis. Each flow talks to a hosted model through
// the provider interfaces in pkg/provider and enforces the service's
// single-in-flight rule: one analysis, one rewrite, and one synthesis at a
// time per Service.
//
// A Service belongs to one editor session. Flows of different kinds may run
// concurrently; a second request of the same kind while one is in flight
// fails fast with [ErrBusy] instead of queuing.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/flashflow-ai/flashflow/internal/observe"
	"github.com/flashflow-ai/flashflow/pkg/audio"
	"github.com/flashflow-ai/flashflow/pkg/provider/llm"
	"github.com/flashflow-ai/flashflow/pkg/provider/tts"
	"github.com/flashflow-ai/flashflow/pkg/types"
)

var (
	// ErrEmptyInput is returned when a flow is invoked with blank text.
	ErrEmptyInput = errors.New("assist: input text is empty")

	// ErrBusy is returned when a flow of the same kind is already in flight.
	ErrBusy = errors.New("assist: action already in progress")

	// ErrNoProvider is returned when the flow's backing provider is not
	// configured. The config loader allows running without an LLM or TTS
	// provider; the corresponding flows are then unavailable.
	ErrNoProvider = errors.New("assist: provider not configured")
)

// Service runs the assistant flows for one editor session.
type Service struct {
	llm     llm.Provider
	tts     tts.Provider
	metrics *observe.Metrics

	temperature float64
	maxTokens   int

	// One slot per action kind. TryAcquire gives the fail-fast busy check.
	analyzing *semaphore.Weighted
	rewriting *semaphore.Weighted
	speaking  *semaphore.Weighted
}

// Option is a functional option for Service.
type Option func(*Service)

// WithMetrics sets the metrics instance used for flow instrumentation.
// Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTemperature sets the sampling temperature for LLM calls.
func WithTemperature(t float64) Option {
	return func(s *Service) {
		s.temperature = t
	}
}

// WithMaxTokens caps completion length for LLM calls. Zero means provider
// default.
func WithMaxTokens(n int) Option {
	return func(s *Service) {
		s.maxTokens = n
	}
}

// New creates a Service over the given providers.
func New(llmProvider llm.Provider, ttsProvider tts.Provider, opts ...Option) *Service {
	s := &Service{
		llm:       llmProvider,
		tts:       ttsProvider,
		analyzing: semaphore.NewWeighted(1),
		rewriting: semaphore.NewWeighted(1),
		speaking:  semaphore.NewWeighted(1),
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Analyze runs the text analysis flow: one completion call with the analysis
// prompt, parsed into suggestions. Model-emitted ids are discarded and
// replaced with locally generated ones, and suggestions with a category
// outside the recognised set are dropped.
//
// Returns [ErrEmptyInput] for blank text, [ErrNoProvider] when no LLM
// provider is configured, and [ErrBusy] when an analysis is already in flight.
func (s *Service) Analyze(ctx context.Context, text string) ([]types.Suggestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if s.llm == nil {
		return nil, ErrNoProvider
	}
	if !s.analyzing.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer s.analyzing.Release(1)

	start := time.Now()
	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: analysisSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: "Text to Analyze:\n" + text},
		},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	s.metrics.AnalysisDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordProviderError(ctx, "llm", "analysis")
		return nil, fmt.Errorf("assist: analysis completion: %w", err)
	}
	s.metrics.RecordProviderRequest(ctx, "llm", "analysis", "ok")

	suggestions, err := parseSuggestions(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("assist: parse analysis response: %w", err)
	}
	for _, sg := range suggestions {
		s.metrics.RecordSuggestion(ctx, string(sg.Category))
	}
	return suggestions, nil
}

// Rewrite runs the tone-rewrite flow and returns the rewritten text.
// Email tones produce a fully structured email; other tones rewrite in style
// while preserving the core message.
//
// Returns [ErrEmptyInput] for blank text and [ErrBusy] when a rewrite is
// already in flight.
func (s *Service) Rewrite(ctx context.Context, text, tone string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	if strings.TrimSpace(tone) == "" {
		return "", fmt.Errorf("assist: tone must not be empty")
	}
	if s.llm == nil {
		return "", ErrNoProvider
	}
	if !s.rewriting.TryAcquire(1) {
		return "", ErrBusy
	}
	defer s.rewriting.Release(1)

	start := time.Now()
	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: rewriteSystemPrompt(tone),
		Messages: []llm.Message{
			{Role: "user", Content: "Original Text:\n" + text},
		},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	s.metrics.RewriteDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordProviderError(ctx, "llm", "rewrite")
		return "", fmt.Errorf("assist: rewrite completion: %w", err)
	}
	s.metrics.RecordProviderRequest(ctx, "llm", "rewrite", "ok")

	return strings.TrimSpace(resp.Content), nil
}

// RewriteStream runs the tone-rewrite flow as a stream. The returned channel
// emits text chunks as the model produces them and is closed when the stream
// ends. The busy slot is held until the stream finishes.
//
// Returns [ErrEmptyInput] for blank text and [ErrBusy] when a rewrite is
// already in flight.
func (s *Service) RewriteStream(ctx context.Context, text, tone string) (<-chan llm.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if strings.TrimSpace(tone) == "" {
		return nil, fmt.Errorf("assist: tone must not be empty")
	}
	if s.llm == nil {
		return nil, ErrNoProvider
	}
	if !s.rewriting.TryAcquire(1) {
		return nil, ErrBusy
	}

	start := time.Now()
	upstream, err := s.llm.StreamCompletion(ctx, llm.CompletionRequest{
		SystemPrompt: rewriteSystemPrompt(tone),
		Messages: []llm.Message{
			{Role: "user", Content: "Original Text:\n" + text},
		},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		s.rewriting.Release(1)
		s.metrics.RecordProviderError(ctx, "llm", "rewrite")
		return nil, fmt.Errorf("assist: start rewrite stream: %w", err)
	}

	out := make(chan llm.Chunk, 32)
	go func() {
		defer s.rewriting.Release(1)
		defer close(out)
		for chunk := range upstream {
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
		s.metrics.RewriteDuration.Record(ctx, time.Since(start).Seconds())
		s.metrics.RecordProviderRequest(ctx, "llm", "rewrite", "ok")
	}()
	return out, nil
}

// Synthesize runs the speech flow: the provider's raw PCM is wrapped in a
// WAV container and returned as a playable data URI
// ("data:audio/wav;base64,…"). An empty voice selects the default voice.
//
// Returns [ErrEmptyInput] for blank text and [ErrBusy] when a synthesis is
// already in flight.
func (s *Service) Synthesize(ctx context.Context, text, voice string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	if s.tts == nil {
		return "", ErrNoProvider
	}
	if !s.speaking.TryAcquire(1) {
		return "", ErrBusy
	}
	defer s.speaking.Release(1)

	start := time.Now()
	out, err := s.tts.Synthesize(ctx, text, voice)
	s.metrics.SpeechDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordProviderError(ctx, "tts", "speech")
		return "", fmt.Errorf("assist: synthesize speech: %w", err)
	}
	s.metrics.RecordProviderRequest(ctx, "tts", "speech", "ok")

	wav := audio.EncodeWAV(out.PCM, audio.Format{
		SampleRate: out.SampleRate,
		Channels:   out.Channels,
		BitDepth:   16,
	})
	return audio.DataURI("audio/wav", wav), nil
}

// Voices returns the voice catalogue of the speech provider, or nil when no
// provider is configured.
func (s *Service) Voices() []string {
	if s.tts == nil {
		return nil
	}
	return s.tts.Voices()
}
