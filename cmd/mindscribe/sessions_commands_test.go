package main

import (
	"encoding/json"
	"strings"
	"testing"

	"mindscribe/internal/api"
	"mindscribe/internal/records"
)

func TestSessionsListShowAndNote(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "sessions", "list", "--client", "1")
	requireContains(t, out, "101")
	if strings.Contains(out, "102") {
		t.Fatalf("client filter leaked session 102:\n%s", out)
	}

	out = mustRunCLI(t, env, "sessions", "show", "101")
	requireContains(t, out, "History of violence")
	requireContains(t, out, "SPEAKER")
	requireContains(t, out, "DIALOGUE")

	out = mustRunCLI(t, env, "sessions", "note", "101", "Follow up next week")
	requireContains(t, out, "Saved private note for session 101")

	out = mustRunCLI(t, env, "--json", "sessions", "show", "101")
	var session records.Session
	if err := json.Unmarshal([]byte(out), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.PrivateNote != "Follow up next week" {
		t.Fatalf("private note = %q", session.PrivateNote)
	}
}

func TestSessionsListUnknownClient(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, []string{"sessions", "list", "--client", "999"}); err == nil {
		t.Fatal("expected unknown client to fail")
	}
}

func TestSessionsDelete(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "sessions", "delete", "102")
	requireContains(t, out, "Deleted session 102")

	out = mustRunCLI(t, env, "--json", "sessions", "list")
	var resp api.SessionListResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	if len(resp.Sessions) != 1 || resp.Sessions[0].ID != "101" {
		t.Fatalf("unexpected sessions after delete: %+v", resp.Sessions)
	}

	if _, _, err := runCLI(t, env, []string{"sessions", "show", "102"}); err == nil {
		t.Fatal("expected deleted session to be missing")
	}
}
