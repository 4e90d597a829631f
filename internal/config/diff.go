package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// TonesChanged is true when assist.extra_tones differs.
	TonesChanged bool
	NewTones     []string

	// ProvidersChanged is true when any provider entry differs. Provider
	// swaps require a restart; the watcher callback only logs this.
	ProvidersChanged bool
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart, plus a flag for
// provider changes that are not.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if !equalStrings(old.Assist.ExtraTones, new.Assist.ExtraTones) {
		d.TonesChanged = true
		d.NewTones = new.Assist.ExtraTones
	}

	if !providerEntryEqual(old.Providers.LLM, new.Providers.LLM) ||
		!providerEntryEqual(old.Providers.TTS, new.Providers.TTS) ||
		!providerEntriesEqual(old.Providers.LLMFallbacks, new.Providers.LLMFallbacks) ||
		!providerEntriesEqual(old.Providers.TTSFallbacks, new.Providers.TTSFallbacks) {
		d.ProvidersChanged = true
	}

	return d
}

// providerEntryEqual compares the scalar fields of two provider entries.
// Options maps are compared by length only; a changed option value with the
// same keys still reports equal, which is acceptable for restart warnings.
func providerEntryEqual(a, b ProviderEntry) bool {
	return a.Name == b.Name &&
		a.APIKey == b.APIKey &&
		a.BaseURL == b.BaseURL &&
		a.Model == b.Model &&
		len(a.Options) == len(b.Options)
}

func providerEntriesEqual(a, b []ProviderEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !providerEntryEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
