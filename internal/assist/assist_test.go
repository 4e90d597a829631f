package assist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/flashflow-ai/flashflow/pkg/audio"
	"github.com/flashflow-ai/flashflow/pkg/provider/llm"
	llmmock "github.com/flashflow-ai/flashflow/pkg/provider/llm/mock"
	"github.com/flashflow-ai/flashflow/pkg/provider/tts"
	ttsmock "github.com/flashflow-ai/flashflow/pkg/provider/tts/mock"
	"github.com/flashflow-ai/flashflow/pkg/types"
)

const analysisJSON = `[
  {"id":"dup","category":"Grammar","original":"goed","suggestion":"went","explanation":"Past tense of go is went."},
  {"id":"dup","category":"Vocabulary","original":"use","suggestion":"utilize","explanation":"More formal.","alternatives":["employ","leverage"]},
  {"id":"x","category":"Style","original":"whatever","suggestion":"w","explanation":"Unknown category."}
]`

func newService(l *llmmock.Provider, t *ttsmock.Provider) *Service {
	if l == nil {
		l = &llmmock.Provider{}
	}
	if t == nil {
		t = &ttsmock.Provider{}
	}
	return New(l, t)
}

func TestAnalyze(t *testing.T) {
	l := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: analysisJSON},
	}
	s := newService(l, nil)

	got, err := s.Analyze(context.Background(), "i goed home and use tools")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("suggestions = %d, want 2 (unknown category dropped)", len(got))
	}
	if got[0].Category != types.CategoryGrammar || got[0].Original != "goed" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if len(got[1].Alternatives) != 2 {
		t.Errorf("alternatives = %v, want two entries", got[1].Alternatives)
	}

	// Model-emitted ids are discarded for fresh unique ones.
	if got[0].ID == "dup" || got[1].ID == "dup" {
		t.Error("model id survived, want locally generated ids")
	}
	if got[0].ID == got[1].ID {
		t.Error("ids are not unique")
	}

	// The document text reaches the model.
	if calls := l.CompleteCalls; len(calls) != 1 || !strings.Contains(calls[0].Req.Messages[0].Content, "i goed home") {
		t.Errorf("unexpected completion request: %+v", calls)
	}
}

func TestAnalyzeFencedOutput(t *testing.T) {
	l := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "```json\n" + analysisJSON + "\n```"},
	}
	s := newService(l, nil)

	got, err := s.Analyze(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("suggestions = %d, want 2", len(got))
	}
}

func TestAnalyzeWrappedObject(t *testing.T) {
	l := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `{"suggestions":[{"id":"1","category":"Spelling","original":"teh","suggestion":"the","explanation":"typo"}]}`,
		},
	}
	s := newService(l, nil)

	got, err := s.Analyze(context.Background(), "teh")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(got) != 1 || got[0].Category != types.CategorySpelling {
		t.Errorf("suggestions = %+v", got)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	s := newService(nil, nil)
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := s.Analyze(context.Background(), text); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Analyze(%q) error = %v, want ErrEmptyInput", text, err)
		}
	}
}

func TestNoProviderConfigured(t *testing.T) {
	// Running without providers is a supported configuration; the flows must
	// fail with a handled error instead of dereferencing a nil interface.
	s := New(nil, nil)
	ctx := context.Background()

	if _, err := s.Analyze(ctx, "some text"); !errors.Is(err, ErrNoProvider) {
		t.Errorf("Analyze() error = %v, want ErrNoProvider", err)
	}
	if _, err := s.Rewrite(ctx, "some text", "Formal"); !errors.Is(err, ErrNoProvider) {
		t.Errorf("Rewrite() error = %v, want ErrNoProvider", err)
	}
	if _, err := s.RewriteStream(ctx, "some text", "Formal"); !errors.Is(err, ErrNoProvider) {
		t.Errorf("RewriteStream() error = %v, want ErrNoProvider", err)
	}
	if _, err := s.Synthesize(ctx, "some text", ""); !errors.Is(err, ErrNoProvider) {
		t.Errorf("Synthesize() error = %v, want ErrNoProvider", err)
	}
	if v := s.Voices(); v != nil {
		t.Errorf("Voices() = %v, want nil", v)
	}
}

func TestAnalyzeBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	l := &llmmock.Provider{
		CompleteFn: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			close(started)
			<-release
			return &llm.CompletionResponse{Content: "[]"}, nil
		},
	}
	s := newService(l, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Analyze(context.Background(), "slow one")
	}()
	<-started

	if _, err := s.Analyze(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Analyze() error = %v, want ErrBusy", err)
	}
	close(release)
	wg.Wait()

	// The slot is released once the first call completes.
	l.CompleteFn = nil
	l.CompleteResponse = &llm.CompletionResponse{Content: "[]"}
	if _, err := s.Analyze(context.Background(), "third"); err != nil {
		t.Errorf("Analyze() after release error = %v", err)
	}
}

func TestAnalyzeBusyReleasedOnError(t *testing.T) {
	l := &llmmock.Provider{CompleteErr: errors.New("model down")}
	s := newService(l, nil)

	if _, err := s.Analyze(context.Background(), "text"); err == nil {
		t.Fatal("Analyze() error = nil, want provider error")
	}
	// A failed flow must not leave the busy flag stuck.
	l.CompleteErr = nil
	l.CompleteResponse = &llm.CompletionResponse{Content: "[]"}
	if _, err := s.Analyze(context.Background(), "text"); err != nil {
		t.Errorf("Analyze() after failure error = %v, want busy flag released", err)
	}
}

func TestRewrite(t *testing.T) {
	l := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "  Dear team, ...  "},
	}
	s := newService(l, nil)

	got, err := s.Rewrite(context.Background(), "meeting moved to 3", "Formal Email")
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != "Dear team, ..." {
		t.Errorf("Rewrite() = %q, want trimmed content", got)
	}
	req := l.CompleteCalls[0].Req
	if !strings.Contains(req.SystemPrompt, "Formal Email") {
		t.Errorf("system prompt missing tone: %q", req.SystemPrompt)
	}
	if !strings.Contains(req.SystemPrompt, "subject line") {
		t.Errorf("system prompt missing email structure rule: %q", req.SystemPrompt)
	}
}

func TestRewriteEmptyInputs(t *testing.T) {
	s := newService(nil, nil)
	if _, err := s.Rewrite(context.Background(), " ", "Casual"); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("blank text error = %v, want ErrEmptyInput", err)
	}
	if _, err := s.Rewrite(context.Background(), "text", ""); err == nil {
		t.Error("blank tone error = nil, want error")
	}
}

func TestRewriteStream(t *testing.T) {
	l := &llmmock.Provider{
		StreamChunks: []llm.Chunk{
			{Text: "Hey"}, {Text: " there"}, {FinishReason: "stop"},
		},
	}
	s := newService(l, nil)

	ch, err := s.RewriteStream(context.Background(), "hello", "Casual")
	if err != nil {
		t.Fatalf("RewriteStream() error = %v", err)
	}

	var sb strings.Builder
	for chunk := range ch {
		sb.WriteString(chunk.Text)
	}
	if sb.String() != "Hey there" {
		t.Errorf("streamed text = %q, want %q", sb.String(), "Hey there")
	}

	// Slot released after the stream drains.
	if _, err := s.RewriteStream(context.Background(), "again", "Casual"); err != nil {
		t.Errorf("second RewriteStream() error = %v", err)
	}
}

func TestRewriteStreamBusy(t *testing.T) {
	l := &llmmock.Provider{StreamChunks: []llm.Chunk{{Text: "x"}}}
	s := newService(l, nil)

	ch, err := s.RewriteStream(context.Background(), "one", "Casual")
	if err != nil {
		t.Fatalf("RewriteStream() error = %v", err)
	}
	// While the first stream is undrained, both rewrite entry points are busy.
	if _, err := s.Rewrite(context.Background(), "two", "Casual"); !errors.Is(err, ErrBusy) {
		t.Errorf("Rewrite() during stream error = %v, want ErrBusy", err)
	}
	for range ch {
	}
}

func TestSynthesize(t *testing.T) {
	pcm := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	tp := &ttsmock.Provider{
		Audio: tts.Audio{PCM: pcm, SampleRate: 24000, Channels: 1},
	}
	s := newService(nil, tp)

	uri, err := s.Synthesize(context.Background(), "read this aloud", "Canopus")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	mime, wav, err := audio.ParseDataURI(uri)
	if err != nil {
		t.Fatalf("ParseDataURI() error = %v", err)
	}
	if mime != "audio/wav" {
		t.Errorf("mime = %q, want audio/wav", mime)
	}
	gotPCM, f, err := audio.ParseWAV(wav)
	if err != nil {
		t.Fatalf("ParseWAV() error = %v", err)
	}
	if string(gotPCM) != string(pcm) {
		t.Errorf("payload = % x, want % x", gotPCM, pcm)
	}
	if f.SampleRate != 24000 || f.Channels != 1 || f.BitDepth != 16 {
		t.Errorf("format = %+v", f)
	}

	if calls := tp.SynthesizeCalls; len(calls) != 1 || calls[0].Voice != "Canopus" {
		t.Errorf("synthesize calls = %+v", calls)
	}
}

func TestSynthesizeEmptyInput(t *testing.T) {
	s := newService(nil, nil)
	if _, err := s.Synthesize(context.Background(), "  ", ""); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("error = %v, want ErrEmptyInput", err)
	}
}

func TestFlowsOfDifferentKindsRunConcurrently(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	l := &llmmock.Provider{
		CompleteFn: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			close(started)
			<-release
			return &llm.CompletionResponse{Content: "[]"}, nil
		},
	}
	tp := &ttsmock.Provider{Audio: tts.Audio{PCM: []byte{1, 2}, SampleRate: 24000, Channels: 1}}
	s := newService(l, tp)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Analyze(context.Background(), "busy analysis")
	}()
	<-started

	// Speech is a different action kind, so it is not blocked.
	if _, err := s.Synthesize(context.Background(), "speak", ""); err != nil {
		t.Errorf("Synthesize() during analysis error = %v, want nil", err)
	}
	close(release)
	wg.Wait()
}
