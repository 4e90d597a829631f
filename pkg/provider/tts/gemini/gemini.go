// Package gemini provides a TTS provider backed by the Gemini speech
// generation REST API. It implements the tts.Provider interface.
//
// Synthesis is performed via POST /v1beta/models/{model}:generateContent with
// responseModalities set to AUDIO and a prebuilt voice configuration. The
// service returns base64-encoded raw PCM (24kHz mono 16-bit) inside the
// candidate's inlineData part; the provider decodes it and reports the sample
// rate parsed from the part's MIME type.
//
// Typical usage:
//
//	p, err := gemini.New(apiKey,
//	    gemini.WithModel("gemini-2.5-flash-preview-tts"),
//	    gemini.WithTimeout(15*time.Second),
//	)
//	audio, err := p.Synthesize(ctx, "Hello there", "Algenib")
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/flashflow-ai/flashflow/pkg/provider/tts"
	"github.com/flashflow-ai/flashflow/pkg/types"
)

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultModel      = "gemini-2.5-flash-preview-tts"
	defaultTimeout    = 30 * time.Second
	defaultSampleRate = 24000
)

// Option is a functional option for configuring a gemini Provider.
type Option func(*Provider)

// WithBaseURL overrides the default API base URL. Useful for tests and
// proxies.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel overrides the default speech model.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// Provider implements tts.Provider backed by the Gemini speech API. It is
// safe for concurrent use; multiple Synthesize calls may run in parallel.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a new Gemini TTS Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// ---- internal request/response types ----

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities"`
	SpeechConfig       speechConfig `json:"speechConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// ---- Synthesize ----

// Synthesize performs a single generateContent call with AUDIO response
// modality and returns the decoded PCM. An empty voice selects the default
// voice; an unrecognised voice name returns tts.ErrUnknownVoice without
// calling the service.
func (p *Provider) Synthesize(ctx context.Context, text, voice string) (tts.Audio, error) {
	if voice == "" {
		voice = types.DefaultVoice
	}
	if !types.IsValidVoice(voice) {
		return tts.Audio{}, fmt.Errorf("gemini: voice %q: %w", voice, tts.ErrUnknownVoice)
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voice},
				},
			},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("gemini: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return tts.Audio{}, fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("gemini: POST generateContent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return tts.Audio{}, fmt.Errorf("gemini: generateContent returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return tts.Audio{}, fmt.Errorf("gemini: decode response: %w", err)
	}

	inline := firstInlineData(out)
	if inline == nil {
		return tts.Audio{}, errors.New("gemini: response contains no audio data")
	}

	pcm, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("gemini: decode audio payload: %w", err)
	}

	return tts.Audio{
		PCM:        pcm,
		SampleRate: sampleRateFromMime(inline.MimeType),
		Channels:   1,
	}, nil
}

// Voices returns the fixed prebuilt voice catalogue.
func (p *Provider) Voices() []string {
	return types.Voices()
}

// firstInlineData returns the first inlineData part of the first candidate.
func firstInlineData(resp generateResponse) *inlineData {
	for _, c := range resp.Candidates {
		for _, pt := range c.Content.Parts {
			if pt.InlineData != nil && pt.InlineData.Data != "" {
				return pt.InlineData
			}
		}
	}
	return nil
}

// sampleRateFromMime extracts the rate parameter from MIME types like
// "audio/L16;codec=pcm;rate=24000". Falls back to 24000 when absent.
func sampleRateFromMime(mime string) int {
	for _, p := range strings.Split(mime, ";") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(p), "rate="); ok {
			if rate, err := strconv.Atoi(v); err == nil && rate > 0 {
				return rate
			}
		}
	}
	return defaultSampleRate
}
