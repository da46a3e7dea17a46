package api

import (
	"errors"

	"mindscribe/internal/ingest"
	"mindscribe/internal/records"
)

// Client describes a client in a transport-friendly format.
type Client struct {
	records.Client
	DisplayName string `json:"displayName"`
	Initials    string `json:"initials"`
}

// FromClient converts a stored client.
func FromClient(c records.Client) Client {
	return Client{Client: c, DisplayName: c.DisplayName(), Initials: c.Initials()}
}

// FromClients converts a slice of stored clients.
func FromClients(clients []records.Client) []Client {
	out := make([]Client, 0, len(clients))
	for _, c := range clients {
		out = append(out, FromClient(c))
	}
	return out
}

// ClientListResponse wraps a collection of clients.
type ClientListResponse struct {
	Clients []Client `json:"clients"`
}

// SessionListResponse wraps a collection of sessions.
type SessionListResponse struct {
	Sessions []records.Session `json:"sessions"`
}

// RecordingResponse reports a committed ingestion run.
type RecordingResponse struct {
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id"`
	Path      string `json:"path"`
	Degraded  bool   `json:"degraded"`
}

// FromOutcome converts an ingestion outcome.
func FromOutcome(o ingest.Outcome) RecordingResponse {
	return RecordingResponse{SessionID: o.SessionID, ClientID: o.ClientID, Path: o.Path, Degraded: o.Degraded}
}

// IntakeNoteResponse carries a generated intake note.
type IntakeNoteResponse struct {
	Note     records.GeneratedNote `json:"note"`
	Degraded bool                  `json:"degraded"`
	Reason   string                `json:"reason,omitempty"`
}

// SummaryResponse carries a generated client summary.
type SummaryResponse struct {
	Summary  string `json:"summary"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

// PrivateNoteRequest is the body of a private-note update.
type PrivateNoteRequest struct {
	PrivateNote string `json:"privateNote"`
}

// DaemonStatus aggregates runtime information for API consumers.
type DaemonStatus struct {
	Running              bool   `json:"running"`
	PID                  int    `json:"pid"`
	LockFilePath         string `json:"lockFilePath"`
	StoreBackend         string `json:"storeBackend"`
	TranscriptionOffline bool   `json:"transcriptionOffline"`
	LLMProvider          string `json:"llmProvider"`
	Clients              int    `json:"clients"`
	Sessions             int    `json:"sessions"`
	CachedViews          int    `json:"cachedViews"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error  string               `json:"error"`
	Fields []records.FieldError `json:"fields,omitempty"`
}

// NewErrorResponse builds the envelope for err, listing field errors for
// validation failures.
func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error()}
	var validation *records.ValidationError
	if errors.As(err, &validation) {
		resp.Fields = validation.Errors
	}
	return resp
}
