// Package api defines the wire-format types served by the MindScribe HTTP API
// and the PracticeService facade the handlers call.
//
// # Key Types
//
// Client: a records.Client plus the display name and initials shown in
// client listings.
//
// RecordingResponse: the outcome of an ingestion run, including the
// navigation path of the new session.
//
// IntakeNoteResponse/SummaryResponse: generated documents with a degraded
// flag when fallback content was served.
//
// ErrorResponse: the error envelope every failing request returns.
//
// # Design Notes
//
// Entity payloads keep the camelCase tags of the records package. The
// ingestion outcome uses snake_case keys. PracticeService owns view-cache
// invalidation: any update or delete of a session drops its cached notes.
package api
