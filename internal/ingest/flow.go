package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mindscribe/internal/logging"
	"mindscribe/internal/records"
	"mindscribe/internal/structuring"
)

// State names a step of the ingestion flow.
type State string

const (
	StateSelectingClient State = "selecting_client"
	StateAwaitingFile    State = "awaiting_file"
	StateProcessing      State = "processing"
	StateComplete        State = "complete"
	StateClosed          State = "closed"
)

var (
	ErrInvalidTransition = errors.New("invalid flow transition")
	ErrFlowClosed        = errors.New("ingestion flow closed")
)

// Store is the slice of the persistence boundary the flow needs.
type Store interface {
	ListClients(ctx context.Context) ([]records.Client, error)
	GetClient(ctx context.Context, id string) (records.Client, error)
	CreateClient(ctx context.Context, draft records.ClientDraft) (records.Client, error)
	CreateSession(ctx context.Context, draft records.SessionDraft) (records.Session, error)
}

// Transcriber converts a recording to raw text.
type Transcriber interface {
	Transcribe(ctx context.Context, media records.MediaFile) (string, error)
}

// Structurer converts raw text into transcript entries.
type Structurer interface {
	Structure(ctx context.Context, rawText, clientName string) structuring.Result
}

// Outcome describes a committed session.
type Outcome struct {
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id"`
	Degraded  bool   `json:"degraded"`
	Path      string `json:"path"`
}

// Snapshot is a point-in-time copy of the flow's observable state.
type Snapshot struct {
	FlowID   string
	State    State
	Client   *records.Client
	FileName string
	Error    string
	Outcome  *Outcome
}

// Option configures a Flow.
type Option func(*Flow)

// WithClock overrides the time source used to stamp new sessions.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		if now != nil {
			f.now = now
		}
	}
}

// WithFlowID sets the identifier carried in log fields.
func WithFlowID(id string) Option {
	return func(f *Flow) {
		if id != "" {
			f.id = id
		}
	}
}

// Flow is a single ingestion wizard. It is safe for concurrent use.
type Flow struct {
	store       Store
	transcriber Transcriber
	structurer  Structurer
	logger      *slog.Logger
	now         func() time.Time
	id          string

	mu      sync.Mutex
	state   State
	client  *records.Client
	file    *records.MediaFile
	errMsg  string
	outcome *Outcome
	epoch   uint64
	cancel  context.CancelFunc
}

// New builds a flow in SelectingClient.
func New(store Store, transcriber Transcriber, structurer Structurer, logger *slog.Logger, opts ...Option) *Flow {
	f := &Flow{
		store:       store,
		transcriber: transcriber,
		structurer:  structurer,
		logger:      logging.NewComponentLogger(logger, "ingest"),
		now:         time.Now,
		id:          uuid.NewString(),
		state:       StateSelectingClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// ID returns the flow identifier.
func (f *Flow) ID() string { return f.id }

// Snapshot returns the current state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{FlowID: f.id, State: f.state, Error: f.errMsg}
	if f.client != nil {
		client := f.client.Clone()
		snap.Client = &client
	}
	if f.file != nil {
		snap.FileName = f.file.Name
	}
	if f.outcome != nil {
		outcome := *f.outcome
		snap.Outcome = &outcome
	}
	return snap
}

// SelectClient binds an existing client and advances to AwaitingFile.
func (f *Flow) SelectClient(ctx context.Context, id string) (records.Client, error) {
	if err := f.expect(StateSelectingClient, "select client"); err != nil {
		return records.Client{}, err
	}
	client, err := f.store.GetClient(ctx, id)
	if err != nil {
		return records.Client{}, err
	}
	return client, f.bindClient(client)
}

// AddClient creates a client from draft and binds it.
func (f *Flow) AddClient(ctx context.Context, draft records.ClientDraft) (records.Client, error) {
	if err := f.expect(StateSelectingClient, "add client"); err != nil {
		return records.Client{}, err
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return records.Client{}, err
	}
	client, err := f.store.CreateClient(ctx, draft)
	if err != nil {
		return records.Client{}, err
	}
	f.logger.Info("client created during ingestion",
		logging.String(logging.FieldFlowID, f.id),
		logging.String(logging.FieldClientID, client.ID),
		logging.String(logging.FieldEventType, "client_created"),
	)
	return client, f.bindClient(client)
}

// ChangeClient returns to client selection, dropping the client and file.
func (f *Flow) ChangeClient() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expectLocked(StateAwaitingFile, "change client"); err != nil {
		return err
	}
	f.state = StateSelectingClient
	f.client = nil
	f.file = nil
	f.errMsg = ""
	return nil
}

// BindFile attaches a recording, replacing any earlier one.
func (f *Flow) BindFile(media records.MediaFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expectLocked(StateAwaitingFile, "bind file"); err != nil {
		return err
	}
	if media.Size() == 0 {
		return records.NewValidationError("file", "recording is empty")
	}
	bound := media
	f.file = &bound
	f.errMsg = ""
	return nil
}

// Close invalidates the flow. Work still in flight is cancelled and its
// result discarded.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateClosed {
		return
	}
	f.epoch++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.state = StateClosed
	f.client = nil
	f.file = nil
	f.errMsg = ""
	f.outcome = nil
}

// Reset returns the flow to SelectingClient with nothing retained.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.epoch++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.state = StateSelectingClient
	f.client = nil
	f.file = nil
	f.errMsg = ""
	f.outcome = nil
}

// Reopen starts the flow over after Close.
func (f *Flow) Reopen() { f.Reset() }

func (f *Flow) bindClient(client records.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expectLocked(StateSelectingClient, "bind client"); err != nil {
		return err
	}
	bound := client.Clone()
	f.client = &bound
	f.file = nil
	f.errMsg = ""
	f.state = StateAwaitingFile
	return nil
}

func (f *Flow) expect(want State, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expectLocked(want, action)
}

func (f *Flow) expectLocked(want State, action string) error {
	if f.state == StateClosed {
		return ErrFlowClosed
	}
	if f.state != want {
		return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, f.state)
	}
	return nil
}
