package config_test

import (
	"errors"
	"testing"

	"github.com/flashflow-ai/flashflow/internal/config"
	"github.com/flashflow-ai/flashflow/pkg/provider/llm"
	llmmock "github.com/flashflow-ai/flashflow/pkg/provider/llm/mock"
	"github.com/flashflow-ai/flashflow/pkg/provider/tts"
	ttsmock "github.com/flashflow-ai/flashflow/pkg/provider/tts/mock"
)

func TestRegistryCreateLLM(t *testing.T) {
	reg := config.NewRegistry()

	var gotEntry config.ProviderEntry
	reg.RegisterLLM("mock", func(entry config.ProviderEntry) (llm.Provider, error) {
		gotEntry = entry
		return &llmmock.Provider{}, nil
	})

	entry := config.ProviderEntry{Name: "mock", APIKey: "k", Model: "m"}
	p, err := reg.CreateLLM(entry)
	if err != nil {
		t.Fatalf("CreateLLM() error = %v", err)
	}
	if p == nil {
		t.Fatal("CreateLLM() returned nil provider")
	}
	if gotEntry.APIKey != "k" || gotEntry.Model != "m" {
		t.Errorf("factory received entry %+v", gotEntry)
	}
}

func TestRegistryCreateTTS(t *testing.T) {
	reg := config.NewRegistry()
	reg.RegisterTTS("mock", func(config.ProviderEntry) (tts.Provider, error) {
		return &ttsmock.Provider{}, nil
	})

	p, err := reg.CreateTTS(config.ProviderEntry{Name: "mock"})
	if err != nil {
		t.Fatalf("CreateTTS() error = %v", err)
	}
	if p == nil {
		t.Fatal("CreateTTS() returned nil provider")
	}
}

func TestRegistryUnregistered(t *testing.T) {
	reg := config.NewRegistry()

	if _, err := reg.CreateLLM(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateLLM() error = %v, want ErrProviderNotRegistered", err)
	}
	if _, err := reg.CreateTTS(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateTTS() error = %v, want ErrProviderNotRegistered", err)
	}
}
