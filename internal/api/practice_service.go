package api

import (
	"context"
	"errors"
	"log/slog"

	"mindscribe/internal/ingest"
	"mindscribe/internal/logging"
	"mindscribe/internal/notes"
	"mindscribe/internal/records"
	"mindscribe/internal/services"
	"mindscribe/internal/store"
)

// FlowFactory starts a fresh ingestion flow.
type FlowFactory func() *ingest.Flow

// PracticeService exposes client, session, ingestion and note operations
// returning API DTOs.
type PracticeService struct {
	store   store.Store
	newFlow FlowFactory
	views   *notes.Views
	logger  *slog.Logger
}

// NewPracticeService constructs a PracticeService.
func NewPracticeService(st store.Store, newFlow FlowFactory, views *notes.Views, logger *slog.Logger) *PracticeService {
	if st == nil {
		return nil
	}
	return &PracticeService{
		store:   st,
		newFlow: newFlow,
		views:   views,
		logger:  logging.NewComponentLogger(logger, "practice"),
	}
}

// Clients lists clients ordered by last name, filtered by query.
func (s *PracticeService) Clients(ctx context.Context, query string) ([]Client, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	return FromClients(ingest.SearchClients(clients, query)), nil
}

// Client fetches one client.
func (s *PracticeService) Client(ctx context.Context, id string) (Client, error) {
	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		return Client{}, err
	}
	return FromClient(client), nil
}

// CreateClient validates and stores a new client.
func (s *PracticeService) CreateClient(ctx context.Context, draft records.ClientDraft) (Client, error) {
	client, err := s.store.CreateClient(ctx, draft.Normalize())
	if err != nil {
		return Client{}, err
	}
	return FromClient(client), nil
}

// DeleteClient removes a client and its sessions.
func (s *PracticeService) DeleteClient(ctx context.Context, id string) error {
	sessions, err := s.store.ListSessions(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteClient(ctx, id); err != nil {
		return err
	}
	for _, session := range sessions {
		s.invalidate(session.ID)
	}
	return nil
}

// Sessions lists sessions for clientID, or every session when it is empty.
// A named client must exist.
func (s *PracticeService) Sessions(ctx context.Context, clientID string) ([]records.Session, error) {
	if clientID != "" {
		if _, err := s.store.GetClient(ctx, clientID); err != nil {
			return nil, err
		}
	}
	sessions, err := s.store.ListSessions(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []records.Session{}
	}
	return sessions, nil
}

// Session fetches one session.
func (s *PracticeService) Session(ctx context.Context, id string) (records.Session, error) {
	return s.store.GetSession(ctx, id)
}

// UpdateSession applies patch and drops any cached notes for the session.
func (s *PracticeService) UpdateSession(ctx context.Context, id string, patch records.SessionPatch) (records.Session, error) {
	updated, err := s.store.UpdateSession(ctx, id, patch)
	if err != nil {
		return records.Session{}, err
	}
	s.invalidate(id)
	return updated, nil
}

// DeleteSession removes a session.
func (s *PracticeService) DeleteSession(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

// IngestRecording runs one ingestion flow for clientID over media.
func (s *PracticeService) IngestRecording(ctx context.Context, clientID string, media records.MediaFile) (RecordingResponse, error) {
	if s.newFlow == nil {
		return RecordingResponse{}, services.Wrap(services.ErrConfiguration, "ingest", "start flow", "ingestion is not configured", nil)
	}
	flow := s.newFlow()
	defer flow.Close()

	if _, err := flow.SelectClient(ctx, clientID); err != nil {
		return RecordingResponse{}, err
	}
	if err := flow.BindFile(media); err != nil {
		return RecordingResponse{}, err
	}
	outcome, err := flow.Process(ctx)
	if err != nil {
		return RecordingResponse{}, err
	}
	return FromOutcome(outcome), nil
}

// IntakeNote returns the intake note for a session.
func (s *PracticeService) IntakeNote(ctx context.Context, sessionID string) (IntakeNoteResponse, error) {
	view, err := s.view(ctx, sessionID)
	if err != nil {
		return IntakeNoteResponse{}, err
	}
	result := view.Intake(ctx)
	return IntakeNoteResponse{Note: result.Note, Degraded: result.Degraded, Reason: result.Reason}, nil
}

// Summary returns the client summary for a session.
func (s *PracticeService) Summary(ctx context.Context, sessionID string) (SummaryResponse, error) {
	view, err := s.view(ctx, sessionID)
	if err != nil {
		return SummaryResponse{}, err
	}
	result := view.Summary(ctx)
	return SummaryResponse{Summary: result.Text, Degraded: result.Degraded, Reason: result.Reason}, nil
}

// SavePrivateNote stores the therapist's private note on a session.
func (s *PracticeService) SavePrivateNote(ctx context.Context, sessionID, text string) (records.Session, error) {
	view, err := s.view(ctx, sessionID)
	if err != nil {
		return records.Session{}, err
	}
	return view.SavePrivateNote(ctx, text)
}

// CachedViews reports how many sessions have cached notes.
func (s *PracticeService) CachedViews() int {
	if s == nil || s.views == nil {
		return 0
	}
	return s.views.Len()
}

func (s *PracticeService) view(ctx context.Context, sessionID string) (*notes.View, error) {
	if s.views == nil {
		return nil, services.Wrap(services.ErrConfiguration, "notes", "open view", "note generation is not configured", nil)
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	client, err := s.store.GetClient(ctx, session.ClientID)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			s.logger.Warn("session references a missing client",
				logging.String(logging.FieldSessionID, session.ID),
				logging.String(logging.FieldClientID, session.ClientID),
				logging.String(logging.FieldEventType, "orphan_session"),
			)
		}
		return nil, err
	}
	return s.views.Open(session, client.DisplayName()), nil
}

func (s *PracticeService) invalidate(sessionID string) {
	if s.views != nil {
		s.views.Invalidate(sessionID)
	}
}
