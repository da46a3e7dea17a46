package config

const (
	defaultDataDir                     = "~/.local/share/mindscribe"
	defaultLogDir                      = "~/.local/share/mindscribe/logs"
	defaultConfigPath                  = "~/.config/mindscribe/config.toml"
	defaultProjectConfig               = "mindscribe.toml"
	defaultStoreBackend                = BackendMemory
	defaultSQLiteFile                  = "mindscribe.db"
	defaultTranscriptionBaseURL        = "https://api.elevenlabs.io/v1"
	defaultTranscriptionModel          = "scribe_v1"
	defaultTranscriptionTimeoutSeconds = 300
	defaultOfflineDelayMillis          = 2000
	defaultLLMProvider                 = ProviderGemini
	defaultGeminiModel                 = "gemini-2.5-flash"
	defaultOpenRouterBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel             = "google/gemini-2.5-flash"
	defaultLLMReferer                  = "https://mindscribe.io"
	defaultLLMTitle                    = "MindScribe"
	defaultLLMTimeoutSeconds           = 60
	defaultAPIBind                     = "127.0.0.1:7480"
	defaultLogFormat                   = "console"
	defaultLogLevel                    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Store: Store{
			Backend: defaultStoreBackend,
			Seed:    true,
		},
		Transcription: Transcription{
			BaseURL:        defaultTranscriptionBaseURL,
			ModelID:        defaultTranscriptionModel,
			TimeoutSeconds: defaultTranscriptionTimeoutSeconds,
			OfflineDelayMS: defaultOfflineDelayMillis,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
