package main

import (
	"encoding/json"
	"strings"
	"testing"

	"mindscribe/internal/api"
)

func TestClientsListAndSearch(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "clients", "list")
	requireContains(t, out, "Rhonda Garcia Sanchez")
	requireContains(t, out, "Tony Pasano")
	if strings.Index(out, "Rhonda") > strings.Index(out, "Tony") {
		t.Fatalf("expected clients sorted by last name:\n%s", out)
	}

	out = mustRunCLI(t, env, "clients", "list", "--search", "TONY")
	requireContains(t, out, "Tony Pasano")
	if strings.Contains(out, "Rhonda") {
		t.Fatalf("search should exclude Rhonda:\n%s", out)
	}

	out = mustRunCLI(t, env, "clients", "list", "--search", "nobody")
	requireContains(t, out, "No clients found")
}

func TestClientsAddPersistsAndDelete(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "clients", "add",
		"--first-name", "Ada", "--last-name", "Adams",
		"--email", "ada@example.com", "--modality", "CBT", "--modality", "CBT")
	requireContains(t, out, "Added client Ada Adams")

	out = mustRunCLI(t, env, "--json", "clients", "list")
	var resp api.ClientListResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode clients: %v\n%s", err, out)
	}
	if len(resp.Clients) != 3 {
		t.Fatalf("expected 3 clients, got %d", len(resp.Clients))
	}
	added := resp.Clients[0]
	if added.LastName != "Adams" || added.Initials != "AA" {
		t.Fatalf("expected Adams first, got %+v", added)
	}
	if len(added.Modalities) != 1 {
		t.Fatalf("expected de-duplicated modalities, got %v", added.Modalities)
	}

	out = mustRunCLI(t, env, "clients", "delete", added.ID)
	requireContains(t, out, "Deleted client "+added.ID)
	out = mustRunCLI(t, env, "clients", "list")
	if strings.Contains(out, "Adams") {
		t.Fatalf("deleted client still listed:\n%s", out)
	}
}

func TestClientsAddCouple(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "clients", "add", "--first-name", "Sam", "--last-name", "Lee",
		"--type", "couple", "--partner-first-name", "Kim", "--partner-last-name", "Lee")
	requireContains(t, out, "Added client Sam Lee")

	out = mustRunCLI(t, env, "clients", "list", "--search", "sam")
	requireContains(t, out, "Sam Lee & Kim Lee")
}

func TestClientsAddValidation(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, []string{"clients", "add", "--last-name", "Adams"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "firstName")

	_, _, err = runCLI(t, env, []string{"clients", "add", "--first-name", "Sam", "--last-name", "Lee", "--type", "couple"})
	if err == nil {
		t.Fatal("expected couple without partner to fail")
	}
	requireContains(t, err.Error(), "client2")
}

func TestClientsDeleteUnknown(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, []string{"clients", "delete", "999"}); err == nil {
		t.Fatal("expected not found error")
	}
}
