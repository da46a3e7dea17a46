package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"mindscribe/internal/api"
	"mindscribe/internal/app"
	"mindscribe/internal/records"
	"mindscribe/internal/services"
	"mindscribe/internal/testsupport"
)

func TestIngestCreatesSession(t *testing.T) {
	env := setupCLITestEnv(t)
	recording := testsupport.WriteRecording(t, env.baseDir, "session.mp3", 64)
	transcriber := &testsupport.StubTranscriber{Text: "T: How was your week?\nC: Better than the last one."}

	out, _, err := runCLI(t, env, []string{"--json", "ingest", "--client", "2", recording}, app.WithTranscriber(transcriber))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	var resp api.RecordingResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode response: %v\n%s", err, out)
	}
	if resp.ClientID != "2" || resp.SessionID == "" || resp.Degraded {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Path != "/clients/2/sessions/"+resp.SessionID {
		t.Fatalf("path = %q", resp.Path)
	}
	if transcriber.Calls() != 1 || transcriber.Last().Name != filepath.Base(recording) {
		t.Fatalf("transcriber saw %d calls, last %q", transcriber.Calls(), transcriber.Last().Name)
	}

	out = mustRunCLI(t, env, "--json", "sessions", "show", resp.SessionID)
	var session records.Session
	if err := json.Unmarshal([]byte(out), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Type != records.TranscribedSessionType || len(session.Transcript) != 2 {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.Transcript[1].Speaker != "Tony" {
		t.Fatalf("client speaker = %q", session.Transcript[1].Speaker)
	}
}

func TestIngestTextOutputAndOfflineWarning(t *testing.T) {
	env := setupCLITestEnv(t)
	recording := testsupport.WriteRecording(t, env.baseDir, "session.wav", 16)

	out, stderr, err := runCLI(t, env, []string{"ingest", "--client", "1", recording})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	requireContains(t, out, "Created session")
	requireContains(t, out, "Path: /clients/1/sessions/")
	requireContains(t, stderr, "placeholder transcript")
}

func TestIngestRequiresClient(t *testing.T) {
	env := setupCLITestEnv(t)
	recording := testsupport.WriteRecording(t, env.baseDir, "session.mp3", 16)

	_, _, err := runCLI(t, env, []string{"ingest", recording})
	if err == nil {
		t.Fatal("expected missing --client to fail")
	}
	requireContains(t, err.Error(), "--client")

	if _, _, err := runCLI(t, env, []string{"ingest", "--client", "1", filepath.Join(env.baseDir, "missing.mp3")}); err == nil {
		t.Fatal("expected missing recording to fail")
	}
}

func TestIngestTranscriptionFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	recording := testsupport.WriteRecording(t, env.baseDir, "session.mp3", 16)
	transcriber := &testsupport.StubTranscriber{Err: &services.TranscriptionError{Status: 401, Cause: "Invalid API key"}}

	_, _, err := runCLI(t, env, []string{"ingest", "--client", "1", recording}, app.WithTranscriber(transcriber))
	if err == nil {
		t.Fatal("expected transcription failure")
	}
	var terr *services.TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscriptionError, got %T: %v", err, err)
	}

	out := mustRunCLI(t, env, "sessions", "list", "--client", "1")
	requireContains(t, out, "101")
}
