package testsupport

import (
	"path/filepath"
	"testing"

	"mindscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory. Network
// backends are disabled: no API keys, no transcription delay, memory store.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Store.Backend = config.BackendMemory
	cfgVal.Store.SQLitePath = filepath.Join(base, "data", "mindscribe.db")
	cfgVal.Transcription.OfflineDelayMS = 0
	cfgVal.LLM.Provider = config.ProviderNone
	cfgVal.API.Bind = "127.0.0.1:0"

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithBackend selects the store backend.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = backend
	}
}

// WithoutSeed starts the store empty.
func WithoutSeed() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Seed = false
	}
}

// WithAPIToken requires a bearer token on the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.Token = token
	}
}

// WithTranscription points the transcription adapter at baseURL with key.
func WithTranscription(baseURL, key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.BaseURL = baseURL
		b.cfg.Transcription.APIKey = key
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
