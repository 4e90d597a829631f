// Command flashflow is the main entry point for the FlashFlow writing
// assistant server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/flashflow-ai/flashflow/internal/assist"
	"github.com/flashflow-ai/flashflow/internal/auth"
	"github.com/flashflow-ai/flashflow/internal/config"
	"github.com/flashflow-ai/flashflow/internal/health"
	"github.com/flashflow-ai/flashflow/internal/observe"
	"github.com/flashflow-ai/flashflow/internal/resilience"
	"github.com/flashflow-ai/flashflow/internal/server"
	profilepg "github.com/flashflow-ai/flashflow/pkg/profile/postgres"
	"github.com/flashflow-ai/flashflow/pkg/provider/llm"
	"github.com/flashflow-ai/flashflow/pkg/provider/llm/anyllm"
	llmopenai "github.com/flashflow-ai/flashflow/pkg/provider/llm/openai"
	"github.com/flashflow-ai/flashflow/pkg/provider/tts"
	ttsgemini "github.com/flashflow-ai/flashflow/pkg/provider/tts/gemini"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "flashflow: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "flashflow: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel := new(slog.LevelVar)
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("flashflow starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "flashflow",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Providers ─────────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// Breaker state changes of the failover groups land in metrics.
	fallbackCfg := resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			OnStateChange: func(name string, from, to resilience.State) {
				observe.DefaultMetrics().RecordBreakerTransition(
					context.Background(), name, from.String(), to.String())
			},
		},
	}

	var llmProvider llm.Provider
	if name := cfg.Providers.LLM.Name; name != "" {
		llmProvider, err = reg.CreateLLM(cfg.Providers.LLM)
		if err != nil {
			slog.Error("failed to create llm provider", "name", name, "err", err)
			return 1
		}
		slog.Info("provider created", "kind", "llm", "name", name, "model", cfg.Providers.LLM.Model)

		if len(cfg.Providers.LLMFallbacks) > 0 {
			group := resilience.NewLLMFallback(llmProvider, name, fallbackCfg)
			for _, entry := range cfg.Providers.LLMFallbacks {
				fb, err := reg.CreateLLM(entry)
				if err != nil {
					slog.Error("failed to create llm fallback", "name", entry.Name, "err", err)
					return 1
				}
				group.AddFallback(entry.Name, fb)
				slog.Info("fallback registered", "kind", "llm", "name", entry.Name, "model", entry.Model)
			}
			llmProvider = group
		}
	}

	var ttsProvider tts.Provider
	if name := cfg.Providers.TTS.Name; name != "" {
		ttsProvider, err = reg.CreateTTS(cfg.Providers.TTS)
		if err != nil {
			slog.Error("failed to create tts provider", "name", name, "err", err)
			return 1
		}
		slog.Info("provider created", "kind", "tts", "name", name, "model", cfg.Providers.TTS.Model)

		if len(cfg.Providers.TTSFallbacks) > 0 {
			group := resilience.NewTTSFallback(ttsProvider, name, fallbackCfg)
			for _, entry := range cfg.Providers.TTSFallbacks {
				fb, err := reg.CreateTTS(entry)
				if err != nil {
					slog.Error("failed to create tts fallback", "name", entry.Name, "err", err)
					return 1
				}
				group.AddFallback(entry.Name, fb)
				slog.Info("fallback registered", "kind", "tts", "name", entry.Name, "model", entry.Model)
			}
			ttsProvider = group
		}
	}

	// ── Profile store and auth (optional) ─────────────────────────────────────
	var (
		authSvc  *auth.Service
		store    *profilepg.Store
		checkers []health.Checker
	)
	if cfg.Store.PostgresDSN != "" {
		store, err = profilepg.NewStore(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			slog.Error("failed to connect to profile store", "err", err)
			return 1
		}
		defer store.Close()

		var authOpts []auth.Option
		if cfg.Auth.TokenTTL > 0 {
			authOpts = append(authOpts, auth.WithTokenTTL(cfg.Auth.TokenTTL))
		}
		if cfg.Auth.GoogleClientID != "" {
			authOpts = append(authOpts, auth.WithGoogleVerifier(
				auth.NewTokeninfoVerifier(cfg.Auth.GoogleClientID)))
		}
		authSvc = auth.New(store, cfg.Auth.JWTSecret, authOpts...)
		checkers = append(checkers, health.DatabaseChecker(store.Pool()))
		slog.Info("profile store connected")
	}
	checkers = append(checkers,
		health.ProviderChecker("llm", llmProvider != nil),
		health.ProviderChecker("tts", ttsProvider != nil),
	)

	// ── Assistant services ────────────────────────────────────────────────────
	assistOpts := func() []assist.Option {
		opts := []assist.Option{}
		if cfg.Assist.Temperature > 0 {
			opts = append(opts, assist.WithTemperature(cfg.Assist.Temperature))
		}
		if cfg.Assist.MaxTokens > 0 {
			opts = append(opts, assist.WithMaxTokens(cfg.Assist.MaxTokens))
		}
		return opts
	}
	newAssist := func() *assist.Service {
		return assist.New(llmProvider, ttsProvider, assistOpts()...)
	}

	idleTimeout := cfg.Server.SessionIdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 30 * time.Minute
	}
	sessions := server.NewSessionManager(idleTimeout, newAssist, observe.DefaultMetrics())
	sessions.Start(ctx)
	defer sessions.Stop()

	srv := &server.Server{
		Sessions:   sessions,
		Assist:     newAssist(),
		Auth:       authSvc,
		Store:      store,
		Health:     health.New(checkers...),
		Metrics:    observe.DefaultMetrics(),
		ExtraTones: cfg.Assist.ExtraTones,
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		diff := config.Diff(old, new)
		if diff.LogLevelChanged {
			logLevel.Set(slogLevel(diff.NewLogLevel))
			slog.Info("log level changed", "level", diff.NewLogLevel)
		}
		if diff.TonesChanged {
			srv.ExtraTones = diff.NewTones
			slog.Info("tone catalogue updated", "tones", len(diff.NewTones))
		}
		if diff.ProvidersChanged {
			slog.Warn("provider configuration changed — restart required to apply")
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	listenAddr := cfg.Server.ListenAddr
	if listenAddr == "" {
		listenAddr = ":8080"
	}
	httpSrv := &http.Server{
		Addr:              listenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", listenAddr)
		if cfg.Server.TLS != nil {
			errCh <- httpSrv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			errCh <- httpSrv.ListenAndServe()
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			return 1
		}
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// Hosted chat backends share the same pattern: optional APIKey + BaseURL.
	for _, providerName := range []string{
		"openai", "anthropic", "gemini",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	// openai-native talks to the OpenAI API through the official SDK instead
	// of the any-llm abstraction.
	reg.RegisterLLM("openai-native", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []llmopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, llmopenai.WithBaseURL(entry.BaseURL))
		}
		return llmopenai.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterTTS("gemini", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []ttsgemini.Option
		if entry.Model != "" {
			opts = append(opts, ttsgemini.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, ttsgemini.WithBaseURL(entry.BaseURL))
		}
		return ttsgemini.New(entry.APIKey, opts...)
	})
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
