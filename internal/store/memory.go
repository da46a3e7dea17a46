package store

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"mindscribe/internal/records"
)

// Memory is a process-local Store guarded by a single RWMutex. Each method
// holds the lock for its whole read-modify-write.
type Memory struct {
	mu            sync.RWMutex
	clients       []records.Client
	sessions      []records.Session
	nextClientID  int64
	nextSessionID int64
	latency       time.Duration
}

// Option configures a Memory store.
type Option func(*Memory)

// WithLatency delays every operation by d to mimic a remote store.
func WithLatency(d time.Duration) Option {
	return func(m *Memory) { m.latency = d }
}

// WithRecords preloads clients and sessions. Id counters continue after the
// highest numeric id supplied.
func WithRecords(clients []records.Client, sessions []records.Session) Option {
	return func(m *Memory) {
		for _, c := range clients {
			m.clients = append(m.clients, c.Clone())
			m.nextClientID = max(m.nextClientID, numericID(c.ID)+1)
		}
		for _, s := range sessions {
			m.sessions = append(m.sessions, s.Clone())
			m.nextSessionID = max(m.nextSessionID, numericID(s.ID)+1)
		}
	}
}

// WithSeed preloads the demo clients and sessions.
func WithSeed() Option {
	clients, sessions := Seed()
	return WithRecords(clients, sessions)
}

// NewMemory builds an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{nextClientID: 1, nextSessionID: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *Memory) ListClients(ctx context.Context) ([]records.Client, error) {
	if err := Delay(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]records.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (m *Memory) GetClient(ctx context.Context, id string) (records.Client, error) {
	if err := Delay(ctx, m.latency); err != nil {
		return records.Client{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.clientIndex(id)
	if idx < 0 {
		return records.Client{}, records.ClientNotFound(id)
	}
	return m.clients[idx].Clone(), nil
}

func (m *Memory) CreateClient(ctx context.Context, draft records.ClientDraft) (records.Client, error) {
	if err := draft.Validate(); err != nil {
		return records.Client{}, err
	}
	if err := Delay(ctx, m.latency); err != nil {
		return records.Client{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	client, err := records.NewClient(strconv.FormatInt(m.nextClientID, 10), draft)
	if err != nil {
		return records.Client{}, err
	}
	m.nextClientID++
	m.clients = append(m.clients, client)
	return client.Clone(), nil
}

func (m *Memory) DeleteClient(ctx context.Context, id string) error {
	if err := Delay(ctx, m.latency); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.clientIndex(id)
	if idx < 0 {
		return records.ClientNotFound(id)
	}
	m.clients = slices.Delete(m.clients, idx, idx+1)
	m.sessions = slices.DeleteFunc(m.sessions, func(s records.Session) bool {
		return s.ClientID == id
	})
	return nil
}

func (m *Memory) ListSessions(ctx context.Context, clientID string) ([]records.Session, error) {
	if err := Delay(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]records.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if clientID != "" && s.ClientID != clientID {
			continue
		}
		out = append(out, s.Clone())
	}
	return out, nil
}

func (m *Memory) GetSession(ctx context.Context, id string) (records.Session, error) {
	if err := Delay(ctx, m.latency); err != nil {
		return records.Session{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.sessionIndex(id)
	if idx < 0 {
		return records.Session{}, records.SessionNotFound(id)
	}
	return m.sessions[idx].Clone(), nil
}

func (m *Memory) CreateSession(ctx context.Context, draft records.SessionDraft) (records.Session, error) {
	if err := draft.Validate(); err != nil {
		return records.Session{}, err
	}
	if err := Delay(ctx, m.latency); err != nil {
		return records.Session{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clientIndex(draft.ClientID) < 0 {
		return records.Session{}, records.ClientNotFound(draft.ClientID)
	}
	session, err := records.NewSession(strconv.FormatInt(m.nextSessionID, 10), draft)
	if err != nil {
		return records.Session{}, err
	}
	m.nextSessionID++
	m.sessions = append(m.sessions, session)
	return session.Clone(), nil
}

func (m *Memory) UpdateSession(ctx context.Context, id string, patch records.SessionPatch) (records.Session, error) {
	if err := patch.Validate(); err != nil {
		return records.Session{}, err
	}
	if err := Delay(ctx, m.latency); err != nil {
		return records.Session{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.sessionIndex(id)
	if idx < 0 {
		return records.Session{}, records.SessionNotFound(id)
	}
	m.sessions[idx] = patch.Apply(m.sessions[idx])
	return m.sessions[idx].Clone(), nil
}

func (m *Memory) DeleteSession(ctx context.Context, id string) error {
	if err := Delay(ctx, m.latency); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.sessionIndex(id)
	if idx < 0 {
		return records.SessionNotFound(id)
	}
	m.sessions = slices.Delete(m.sessions, idx, idx+1)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }

func (m *Memory) clientIndex(id string) int {
	return slices.IndexFunc(m.clients, func(c records.Client) bool { return c.ID == id })
}

func (m *Memory) sessionIndex(id string) int {
	return slices.IndexFunc(m.sessions, func(s records.Session) bool { return s.ID == id })
}

func numericID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
