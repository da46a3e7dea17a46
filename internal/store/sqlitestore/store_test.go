package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"mindscribe/internal/records"
	"mindscribe/internal/store"
	"mindscribe/internal/store/sqlitestore"
	"mindscribe/internal/store/storetest"
)

func openStore(t *testing.T) *sqlitestore.Store {
	t.Helper()
	s, err := sqlitestore.Open(context.Background(), filepath.Join(t.TempDir(), "mindscribe.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openStore(t)
	})
}

func TestSeedKeepsIDsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	clients, sessions := store.Seed()
	if err := s.Seed(ctx, clients, sessions); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := s.Seed(ctx, clients, sessions); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	listed, err := s.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 seeded clients, got %d", len(listed))
	}
	intake, err := s.GetSession(ctx, "101")
	if err != nil {
		t.Fatalf("GetSession(101) failed: %v", err)
	}
	if intake.PrivateNote == "" || len(intake.Transcript) != 12 {
		t.Fatalf("unexpected seeded session: %+v", intake)
	}

	created, err := s.CreateSession(ctx, records.SessionDraft{ClientID: "2", Type: records.TranscribedSessionType})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if created.ID != "103" {
		t.Fatalf("expected id 103 after seed, got %s", created.ID)
	}
}

func TestReopenPreservesData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mindscribe.db")
	s, err := sqlitestore.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	c, err := s.CreateClient(ctx, records.ClientDraft{
		FirstName: "Sam", LastName: "Lee", Type: records.ClientCouple,
		Client2: &records.Partner{FirstName: "Alex", LastName: "Lee"},
	})
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := sqlitestore.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	fetched, err := reopened.GetClient(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	if fetched.Client2 == nil || fetched.Client2.FirstName != "Alex" {
		t.Fatalf("partner not persisted: %+v", fetched)
	}
}
