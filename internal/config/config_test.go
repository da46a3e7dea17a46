package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mindscribe/internal/config"
	"mindscribe/internal/testsupport"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	testsupport.ClearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "mindscribe", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "mindscribe")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Store.Backend != config.BackendMemory {
		t.Fatalf("expected memory backend by default, got %q", cfg.Store.Backend)
	}
	if cfg.Store.SQLitePath != filepath.Join(wantData, "mindscribe.db") {
		t.Fatalf("unexpected sqlite path %q", cfg.Store.SQLitePath)
	}
	if cfg.Transcription.ModelID != "scribe_v1" {
		t.Fatalf("unexpected transcription model %q", cfg.Transcription.ModelID)
	}
	if cfg.LLM.Provider != config.ProviderGemini || cfg.LLM.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected llm defaults %+v", cfg.LLM)
	}
	if cfg.GetLLM().Enabled() {
		t.Fatal("expected generation disabled without an api key")
	}
	if cfg.API.Bind != "127.0.0.1:7480" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if got := cfg.GetTranscription().OfflineDelay; got != 2*time.Second {
		t.Fatalf("unexpected offline delay %v", got)
	}
	if cfg.LockPath() != filepath.Join(wantData, "mindscribe.lock") {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	testsupport.ClearEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "mindscribe.toml")
	content := `
[paths]
data_dir = "` + filepath.ToSlash(filepath.Join(dir, "data")) + `"

[store]
backend = "SQLite"
latency_ms = 500

[llm]
provider = "openrouter"
api_key = "file-key"

[logging]
format = "JSON"
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to resolve, got %q exists=%v", resolved, exists)
	}
	if cfg.Store.Backend != config.BackendSQLite {
		t.Fatalf("expected normalized backend, got %q", cfg.Store.Backend)
	}
	if cfg.StoreLatency() != 500*time.Millisecond {
		t.Fatalf("unexpected latency %v", cfg.StoreLatency())
	}
	llm := cfg.GetLLM()
	if llm.Model != "google/gemini-2.5-flash" || llm.BaseURL != "https://openrouter.ai/api/v1/chat/completions" {
		t.Fatalf("unexpected openrouter defaults %+v", llm)
	}
	if !llm.Enabled() {
		t.Fatal("expected generation enabled with an api key")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lower-cased format, got %q", cfg.Logging.Format)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data")); err != nil {
		t.Fatalf("data dir not created: %v", err)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	testsupport.ClearEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "mindscribe.toml")
	content := `
[transcription]
api_key = "file-elevenlabs"

[llm]
api_key = "file-gemini"

[api]
token = "file-token"
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ELEVENLABS_API_KEY", "env-elevenlabs")
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("MINDSCRIBE_API_TOKEN", "env-token")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Transcription.APIKey != "env-elevenlabs" {
		t.Errorf("expected ElevenLabs key from env, got %q", cfg.Transcription.APIKey)
	}
	if cfg.LLM.APIKey != "env-gemini" {
		t.Errorf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.API.Token != "env-token" {
		t.Errorf("expected API token from env, got %q", cfg.API.Token)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	testsupport.ClearEnv(t)
	configPath := filepath.Join(t.TempDir(), "mindscribe.toml")
	if err := os.WriteFile(configPath, []byte("[store]\nbackend = \"memory\"\nbogus = 1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "ELEVENLABS_API_KEY") {
		t.Fatalf("sample config missing env guidance: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Store.Backend != config.BackendSQLite {
		t.Fatalf("expected sample to use sqlite, got %q", cfg.Store.Backend)
	}
	if !strings.Contains(cfg.Paths.DataDir, "mindscribe") {
		t.Fatalf("expected data dir to contain mindscribe, got %q", cfg.Paths.DataDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Store.Backend = "mongo" }, "store.backend"},
		{"postgres dsn", func(c *config.Config) { c.Store.Backend = config.BackendPostgres }, "store.postgres_dsn"},
		{"latency", func(c *config.Config) { c.Store.LatencyMS = -1 }, "store.latency_ms"},
		{"transcription timeout", func(c *config.Config) { c.Transcription.TimeoutSeconds = 0 }, "transcription.timeout_seconds"},
		{"provider", func(c *config.Config) { c.LLM.Provider = "claude" }, "llm.provider"},
		{"bind", func(c *config.Config) { c.API.Bind = "" }, "api.bind"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range cases {
		cfg := config.Default()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
