// Package storetest holds the behavioural checks every Store backend must
// pass. Backend test files call Run with a constructor for a fresh, empty
// store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"mindscribe/internal/records"
	"mindscribe/internal/store"
)

// Factory returns an empty store. Cleanup is registered on t.
type Factory func(t *testing.T) store.Store

// Run exercises the Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(*testing.T, store.Store)
	}{
		{"CreateClientAssignsUniqueIDs", testCreateClientAssignsUniqueIDs},
		{"CreateClientRejectsInvalidDraft", testCreateClientRejectsInvalidDraft},
		{"DeleteClientCascades", testDeleteClientCascades},
		{"DeleteUnknownClient", testDeleteUnknownClient},
		{"CreateSessionRequiresClient", testCreateSessionRequiresClient},
		{"CreateSessionDefaults", testCreateSessionDefaults},
		{"UpdateSessionMerges", testUpdateSessionMerges},
		{"UpdateMissingSessionLeavesStoreUnchanged", testUpdateMissingSession},
		{"DeleteSession", testDeleteSession},
		{"ListsAreIdempotent", testListsAreIdempotent},
		{"ReturnedRecordsAreCopies", testReturnedRecordsAreCopies},
		{"ConcurrentCreates", testConcurrentCreates},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func mustClient(t *testing.T, s store.Store, first, last string) records.Client {
	t.Helper()
	c, err := s.CreateClient(context.Background(), records.ClientDraft{FirstName: first, LastName: last})
	if err != nil {
		t.Fatalf("CreateClient(%s %s) failed: %v", first, last, err)
	}
	return c
}

func mustSession(t *testing.T, s store.Store, clientID, title string) records.Session {
	t.Helper()
	sess, err := s.CreateSession(context.Background(), records.SessionDraft{
		ClientID: clientID,
		Date:     "Apr 29, 2023",
		Time:     "07:00 PM",
		Type:     records.TranscribedSessionType,
		Title:    title,
		Transcript: []records.TranscriptEntry{
			{Time: "0:00", Speaker: records.PractitionerLabel, Dialogue: "Hi."},
			{Time: "0:05", Speaker: "Rhonda", Dialogue: "I'm fine."},
		},
	})
	if err != nil {
		t.Fatalf("CreateSession(%s) failed: %v", clientID, err)
	}
	return sess
}

func testCreateClientAssignsUniqueIDs(t *testing.T, s store.Store) {
	ctx := context.Background()
	draft := records.ClientDraft{
		FirstName:  "Rhonda",
		LastName:   "Garcia Sanchez",
		Email:      "rhonda.sanchez@example.com",
		Pronouns:   "She/Her",
		Modalities: []string{"Logotherapy", "Multicultural Therapy"},
		Type:       records.ClientIndividual,
	}
	first, err := s.CreateClient(ctx, draft)
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	second := mustClient(t, s, "Tony", "Pasano")
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct ids, got %q and %q", first.ID, second.ID)
	}

	clients, err := s.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	matches := 0
	for _, c := range clients {
		if c.ID != first.ID {
			continue
		}
		matches++
		want := first
		if !reflect.DeepEqual(c, want) {
			t.Fatalf("listed client = %+v, want %+v", c, want)
		}
	}
	if matches != 1 {
		t.Fatalf("expected exactly one listed client with id %s, got %d", first.ID, matches)
	}

	if err := s.DeleteClient(ctx, second.ID); err != nil {
		t.Fatalf("DeleteClient failed: %v", err)
	}
	third := mustClient(t, s, "Sam", "Lee")
	if third.ID == first.ID || third.ID == second.ID {
		t.Fatalf("id %s reused after delete", third.ID)
	}
}

func testCreateClientRejectsInvalidDraft(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.CreateClient(ctx, records.ClientDraft{FirstName: "Solo", Type: records.ClientCouple})
	if !errors.Is(err, records.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	clients, err := s.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if len(clients) != 0 {
		t.Fatalf("store mutated by invalid draft: %+v", clients)
	}
}

func testDeleteClientCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	one := mustClient(t, s, "Rhonda", "Garcia Sanchez")
	two := mustClient(t, s, "Tony", "Pasano")
	mustSession(t, s, one.ID, "one")
	kept := mustSession(t, s, two.ID, "two")

	if err := s.DeleteClient(ctx, one.ID); err != nil {
		t.Fatalf("DeleteClient failed: %v", err)
	}
	clients, err := s.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if len(clients) != 1 || clients[0].ID != two.ID {
		t.Fatalf("expected only client %s to remain, got %+v", two.ID, clients)
	}
	sessions, err := s.ListSessions(ctx, "")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != kept.ID {
		t.Fatalf("expected only session %s to remain, got %+v", kept.ID, sessions)
	}
	if _, err := s.GetClient(ctx, one.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found for deleted client, got %v", err)
	}
}

func testDeleteUnknownClient(t *testing.T, s store.Store) {
	err := s.DeleteClient(context.Background(), "999")
	var nf *records.NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "client" {
		t.Fatalf("expected client NotFoundError, got %v", err)
	}
}

func testCreateSessionRequiresClient(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.CreateSession(ctx, records.SessionDraft{ClientID: "404", Type: records.TranscribedSessionType})
	if !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found for dangling client, got %v", err)
	}
	sessions, err := s.ListSessions(ctx, "")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("session persisted for missing client: %+v", sessions)
	}
}

func testCreateSessionDefaults(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := mustClient(t, s, "Tony", "Pasano")
	sess, err := s.CreateSession(ctx, records.SessionDraft{ClientID: c.ID, Type: "Progress note demo", Duration: 28})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if sess.Title != records.DefaultSessionTitle || sess.Description != records.DefaultSessionDescription {
		t.Fatalf("expected default title/description, got %q / %q", sess.Title, sess.Description)
	}
	fetched, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !reflect.DeepEqual(fetched, sess) {
		t.Fatalf("fetched session = %+v, want %+v", fetched, sess)
	}
	other := mustSession(t, s, c.ID, "second")
	if other.ID == sess.ID {
		t.Fatalf("duplicate session id %s", sess.ID)
	}
}

func testUpdateSessionMerges(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := mustClient(t, s, "Rhonda", "Garcia Sanchez")
	sess := mustSession(t, s, c.ID, "Intake")
	note := "Client seems hesitant to open up."
	updated, err := s.UpdateSession(ctx, sess.ID, records.SessionPatch{PrivateNote: &note})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	want := sess
	want.PrivateNote = note
	if !reflect.DeepEqual(updated, want) {
		t.Fatalf("updated = %+v, want %+v", updated, want)
	}
	fetched, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if fetched.PrivateNote != note || fetched.Title != "Intake" {
		t.Fatalf("update not persisted: %+v", fetched)
	}
}

func testUpdateMissingSession(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := mustClient(t, s, "Rhonda", "Garcia Sanchez")
	mustSession(t, s, c.ID, "Intake")
	before, err := s.ListSessions(ctx, "")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	title := "changed"
	_, err = s.UpdateSession(ctx, "987654", records.SessionPatch{Title: &title})
	var nf *records.NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "session" {
		t.Fatalf("expected session NotFoundError, got %v", err)
	}
	after, err := s.ListSessions(ctx, "")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("store changed by failed update: before=%+v after=%+v", before, after)
	}
}

func testDeleteSession(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := mustClient(t, s, "Tony", "Pasano")
	sess := mustSession(t, s, c.ID, "Progress")
	if err := s.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := s.GetSession(ctx, sess.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := s.DeleteSession(ctx, sess.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := s.GetClient(ctx, c.ID); err != nil {
		t.Fatalf("client removed with session: %v", err)
	}
}

func testListsAreIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	one := mustClient(t, s, "Rhonda", "Garcia Sanchez")
	two := mustClient(t, s, "Tony", "Pasano")
	mustSession(t, s, one.ID, "a")
	mustSession(t, s, two.ID, "b")

	firstClients, _ := s.ListClients(ctx)
	secondClients, _ := s.ListClients(ctx)
	if !reflect.DeepEqual(firstClients, secondClients) {
		t.Fatalf("ListClients not idempotent: %+v vs %+v", firstClients, secondClients)
	}
	firstSessions, _ := s.ListSessions(ctx, "")
	secondSessions, _ := s.ListSessions(ctx, "")
	if !reflect.DeepEqual(firstSessions, secondSessions) {
		t.Fatalf("ListSessions not idempotent: %+v vs %+v", firstSessions, secondSessions)
	}
	filtered, err := s.ListSessions(ctx, two.ID)
	if err != nil {
		t.Fatalf("ListSessions(%s) failed: %v", two.ID, err)
	}
	if len(filtered) != 1 || filtered[0].ClientID != two.ID {
		t.Fatalf("unexpected filtered sessions: %+v", filtered)
	}
}

func testReturnedRecordsAreCopies(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := mustClient(t, s, "Rhonda", "Garcia Sanchez")
	sess := mustSession(t, s, c.ID, "Intake")

	fetched, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	fetched.Transcript[0].Dialogue = "tampered"
	fetched.Title = "tampered"

	again, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if again.Transcript[0].Dialogue != "Hi." || again.Title != "Intake" {
		t.Fatalf("store record changed through returned copy: %+v", again)
	}
}

func testConcurrentCreates(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := mustClient(t, s, "Rhonda", "Garcia Sanchez")

	const workers = 8
	var wg sync.WaitGroup
	ids := make(chan string, workers)
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := s.CreateSession(ctx, records.SessionDraft{
				ClientID: c.ID,
				Type:     records.TranscribedSessionType,
				Title:    fmt.Sprintf("session %d", i),
			})
			if err != nil {
				errs <- err
				return
			}
			ids <- sess.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent CreateSession failed: %v", err)
	}
	seen := map[string]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate session id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d sessions, got %d", workers, len(seen))
	}
}
