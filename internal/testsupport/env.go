package testsupport

import (
	"os"
	"testing"
)

// EnvKeys lists every environment variable the config loader reads.
var EnvKeys = []string{
	"ELEVENLABS_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY", "API_KEY",
	"MINDSCRIBE_LLM_API_KEY", "MINDSCRIBE_LLM_PROVIDER", "MINDSCRIBE_LLM_MODEL",
	"MINDSCRIBE_STORE_BACKEND", "MINDSCRIBE_POSTGRES_DSN", "DATABASE_URL", "MINDSCRIBE_SQLITE_PATH",
	"MINDSCRIBE_DATA_DIR", "MINDSCRIBE_LOG_DIR", "MINDSCRIBE_API_BIND", "MINDSCRIBE_API_TOKEN",
	"MINDSCRIBE_LOG_FORMAT", "MINDSCRIBE_LOG_LEVEL",
}

// ClearEnv unsets every config environment variable for the duration of the
// test. An empty value would still override file settings, so the variables
// are removed rather than blanked.
func ClearEnv(t *testing.T) {
	t.Helper()
	for _, key := range EnvKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}
