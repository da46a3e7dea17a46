package preflight

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mindscribe/internal/config"
	"mindscribe/internal/records"
	"mindscribe/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil, Options{}); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_OfflineConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := RunAll(context.Background(), cfg, testsupport.SeededStore(t), Options{})
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected required checks to pass, got %+v", failed)
	}
	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	if got := byName["Store"].Detail; got != "memory (2 clients)" {
		t.Fatalf("store detail = %q", got)
	}
	if tr := byName["Transcription"]; tr.Passed || !tr.Optional {
		t.Fatalf("expected optional failed transcription check, got %+v", tr)
	}
	if llm := byName["Note generation"]; llm.Passed || !strings.Contains(llm.Detail, "disabled") {
		t.Fatalf("unexpected llm check %+v", llm)
	}
}

func TestRunAll_MissingDirectoriesAndStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	failed := Failed(RunAll(context.Background(), cfg, nil, Options{}))
	if len(failed) != 3 {
		t.Fatalf("expected data dir, log dir and store failures, got %+v", failed)
	}
}

type failingLister struct{}

func (failingLister) ListClients(context.Context) ([]records.Client, error) {
	return nil, errors.New("connection refused")
}

func TestCheckStore_Error(t *testing.T) {
	result := CheckStore(context.Background(), config.BackendPostgres, failingLister{})
	if result.Passed || !strings.Contains(result.Detail, "connection refused") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckLLM_MissingKey(t *testing.T) {
	result := CheckLLM(config.LLMConfig{Provider: config.ProviderGemini})
	if result.Passed || !result.Optional {
		t.Fatalf("expected optional failure, got %+v", result)
	}
	if !strings.Contains(result.Detail, "API key missing") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func openRouterServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"finish_reason": "stop", "message": map[string]any{"content": content}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestProbeLLM_OpenRouterReachable(t *testing.T) {
	server := openRouterServer(t, http.StatusOK, `{"ok":true}`)
	result := ProbeLLM(context.Background(), config.LLMConfig{
		Provider: config.ProviderOpenRouter,
		APIKey:   "key",
		BaseURL:  server.URL,
		Model:    "test-model",
	})
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestProbeLLM_OpenRouterUnauthorized(t *testing.T) {
	server := openRouterServer(t, http.StatusUnauthorized, "")
	result := ProbeLLM(context.Background(), config.LLMConfig{
		Provider: config.ProviderOpenRouter,
		APIKey:   "bad",
		BaseURL:  server.URL,
	})
	if result.Passed {
		t.Fatalf("expected failure, got %+v", result)
	}
}
