package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Generation providers.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderNone       = "none"
)

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir" env:"MINDSCRIBE_DATA_DIR"`
	LogDir  string `toml:"log_dir" env:"MINDSCRIBE_LOG_DIR"`
}

// Store selects and configures the persistence backend.
type Store struct {
	Backend     string `toml:"backend" env:"MINDSCRIBE_STORE_BACKEND"`
	SQLitePath  string `toml:"sqlite_path" env:"MINDSCRIBE_SQLITE_PATH"`
	PostgresDSN string `toml:"postgres_dsn" env:"MINDSCRIBE_POSTGRES_DSN,DATABASE_URL"`
	LatencyMS   int    `toml:"latency_ms"`
	Seed        bool   `toml:"seed"`
}

// Transcription configures the ElevenLabs speech-to-text adapter.
type Transcription struct {
	APIKey         string `toml:"api_key" env:"ELEVENLABS_API_KEY"`
	BaseURL        string `toml:"base_url"`
	ModelID        string `toml:"model_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	OfflineDelayMS int    `toml:"offline_delay_ms"`
}

// LLM configures the generation provider used for structuring and notes.
type LLM struct {
	Provider       string `toml:"provider" env:"MINDSCRIBE_LLM_PROVIDER"`
	APIKey         string `toml:"api_key" env:"MINDSCRIBE_LLM_API_KEY,GEMINI_API_KEY,OPENROUTER_API_KEY,API_KEY"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model" env:"MINDSCRIBE_LLM_MODEL"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// API contains HTTP server settings.
type API struct {
	Bind  string `toml:"bind" env:"MINDSCRIBE_API_BIND"`
	Token string `toml:"token" env:"MINDSCRIBE_API_TOKEN"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"MINDSCRIBE_LOG_FORMAT"`
	Level  string `toml:"level" env:"MINDSCRIBE_LOG_LEVEL"`
}

// Config encapsulates all configuration values for MindScribe.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Store: entity store backend (memory, sqlite, postgres)
//   - Transcription: ElevenLabs credentials and limits
//   - LLM: generation provider for transcript structuring and notes
//   - API: HTTP bind address and bearer token
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Store         Store         `toml:"store"`
	Transcription Transcription `toml:"transcription"`
	LLM           LLM           `toml:"llm"`
	API           API           `toml:"api"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file, then overlays
// environment variables. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfig)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Store.Backend == BackendSQLite {
		if err := os.MkdirAll(filepath.Dir(c.Store.SQLitePath), 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}
	return nil
}

// LockPath is the file the API server locks to stay single-instance.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "mindscribe.lock")
}

// PIDPath is where the API server records its process id.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.DataDir, "mindscribe.pid")
}

// LogFilePath is where file logging is written when a log directory is set.
func (c *Config) LogFilePath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "mindscribe.log")
}

// StoreLatency returns the simulated store latency.
func (c *Config) StoreLatency() time.Duration {
	return time.Duration(c.Store.LatencyMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// TranscriptionConfig contains the ElevenLabs adapter settings.
type TranscriptionConfig struct {
	APIKey       string
	BaseURL      string
	ModelID      string
	Timeout      time.Duration
	OfflineDelay time.Duration
}

// GetTranscription returns the transcription adapter settings.
func (c *Config) GetTranscription() TranscriptionConfig {
	return TranscriptionConfig{
		APIKey:       strings.TrimSpace(c.Transcription.APIKey),
		BaseURL:      strings.TrimSpace(c.Transcription.BaseURL),
		ModelID:      strings.TrimSpace(c.Transcription.ModelID),
		Timeout:      time.Duration(c.Transcription.TimeoutSeconds) * time.Second,
		OfflineDelay: time.Duration(c.Transcription.OfflineDelayMS) * time.Millisecond,
	}
}

// LLMConfig contains the generation provider settings.
type LLMConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Enabled reports whether a provider is selected and has credentials.
func (l LLMConfig) Enabled() bool {
	return l.Provider != ProviderNone && l.APIKey != ""
}

// Timeout returns the request timeout, or zero for the client default.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// GetLLM returns the generation provider settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:       strings.TrimSpace(c.LLM.Provider),
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
