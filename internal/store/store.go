package store

import (
	"context"
	"time"

	"mindscribe/internal/records"
)

// Store is the persistence boundary for clients and sessions.
type Store interface {
	ListClients(ctx context.Context) ([]records.Client, error)
	GetClient(ctx context.Context, id string) (records.Client, error)
	CreateClient(ctx context.Context, draft records.ClientDraft) (records.Client, error)
	DeleteClient(ctx context.Context, id string) error

	// ListSessions returns sessions for clientID, or every session when
	// clientID is empty.
	ListSessions(ctx context.Context, clientID string) ([]records.Session, error)
	GetSession(ctx context.Context, id string) (records.Session, error)
	CreateSession(ctx context.Context, draft records.SessionDraft) (records.Session, error)
	UpdateSession(ctx context.Context, id string, patch records.SessionPatch) (records.Session, error)
	DeleteSession(ctx context.Context, id string) error

	Close() error
}

// Delay blocks for d or until ctx is cancelled. Backends use it to simulate
// remote latency.
func Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
