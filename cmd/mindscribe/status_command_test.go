package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"mindscribe/internal/api"
	"mindscribe/internal/config"
	"mindscribe/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Server", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Server:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Server", statusOK, "Running", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestStatusLinesOffline(t *testing.T) {
	lines := statusLines(api.DaemonStatus{
		StoreBackend:         config.BackendMemory,
		TranscriptionOffline: true,
		LLMProvider:          config.ProviderNone,
		Clients:              2,
		Sessions:             2,
	}, false)
	joined := strings.Join(lines, "\n")
	requireContains(t, joined, "[INFO] Not running")
	requireContains(t, joined, "memory (2 clients, 2 sessions)")
	requireContains(t, joined, "[WARN] Offline placeholder")
	requireContains(t, joined, "[WARN] Sample content only")
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "status")
	requireContains(t, out, "== MindScribe ==")
	requireContains(t, out, "Not running")
	requireContains(t, out, "sqlite (2 clients, 2 sessions)")
	requireContains(t, out, "== Readiness ==")
	requireContains(t, out, "[OK] sqlite (2 clients)")
	requireContains(t, out, "[WARN] API key missing")
	if strings.Contains(out, "Failed checks") {
		t.Fatalf("required checks should pass:\n%s", out)
	}
}

func TestCheckLinesListsFailures(t *testing.T) {
	lines := checkLines([]preflight.Result{
		{Name: "Data directory", Detail: "/nope (error: does not exist)"},
		{Name: "Transcription", Optional: true, Detail: "API key missing"},
	}, false)
	joined := strings.Join(lines, "\n")
	requireContains(t, joined, "[ERROR] /nope")
	requireContains(t, joined, "[WARN] API key missing")
	requireContains(t, joined, "Failed checks: Data directory")
}

func TestStatusDetectsHeldLock(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRunCLI(t, env, "config", "validate")

	cfg := &config.Config{Paths: config.Paths{DataDir: env.dataDir}}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("take lock: ok=%v err=%v", ok, err)
	}
	defer lock.Unlock()

	out := mustRunCLI(t, env, "--json", "status")
	var status statusReport
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if len(status.Checks) == 0 {
		t.Fatal("expected readiness checks in json output")
	}
	if !status.Running {
		t.Fatalf("expected running status while lock is held: %+v", status)
	}
}
