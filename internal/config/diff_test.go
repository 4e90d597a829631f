package config_test

import (
	"testing"

	"github.com/flashflow-ai/flashflow/internal/config"
)

func baseConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.LogLevel = config.LogInfo
	cfg.Providers.LLM = config.ProviderEntry{Name: "gemini", Model: "gemini-2.0-flash"}
	cfg.Providers.TTS = config.ProviderEntry{Name: "gemini"}
	cfg.Assist.ExtraTones = []string{"Persuasive"}
	return cfg
}

func TestDiffNoChanges(t *testing.T) {
	a, b := baseConfig(), baseConfig()
	d := config.Diff(a, b)
	if d.LogLevelChanged || d.TonesChanged || d.ProvidersChanged {
		t.Errorf("Diff() = %+v, want no changes", d)
	}
}

func TestDiffLogLevel(t *testing.T) {
	a, b := baseConfig(), baseConfig()
	b.Server.LogLevel = config.LogDebug

	d := config.Diff(a, b)
	if !d.LogLevelChanged || d.NewLogLevel != config.LogDebug {
		t.Errorf("Diff() = %+v, want log level change to debug", d)
	}
}

func TestDiffTones(t *testing.T) {
	a, b := baseConfig(), baseConfig()
	b.Assist.ExtraTones = []string{"Persuasive", "Sympathetic"}

	d := config.Diff(a, b)
	if !d.TonesChanged || len(d.NewTones) != 2 {
		t.Errorf("Diff() = %+v, want tone change", d)
	}
}

func TestDiffProviders(t *testing.T) {
	a, b := baseConfig(), baseConfig()
	b.Providers.LLM.Model = "gpt-4o-mini"

	d := config.Diff(a, b)
	if !d.ProvidersChanged {
		t.Errorf("Diff() = %+v, want provider change flag", d)
	}
}
