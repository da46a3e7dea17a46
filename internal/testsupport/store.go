package testsupport

import (
	"context"
	"testing"

	"mindscribe/internal/records"
	"mindscribe/internal/store"
)

// SeededStore returns an in-memory store holding the demo practice.
func SeededStore(t testing.TB, opts ...store.Option) *store.Memory {
	t.Helper()

	s := store.NewMemory(append([]store.Option{store.WithSeed()}, opts...)...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// MustClient creates an individual client and fails the test on error.
func MustClient(t testing.TB, s store.Store, first, last string) records.Client {
	t.Helper()

	client, err := s.CreateClient(context.Background(), records.ClientDraft{FirstName: first, LastName: last})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	return client
}

// MustSession loads a session and fails the test on error.
func MustSession(t testing.TB, s store.Store, id string) records.Session {
	t.Helper()

	session, err := s.GetSession(context.Background(), id)
	if err != nil {
		t.Fatalf("GetSession(%s): %v", id, err)
	}
	return session
}
