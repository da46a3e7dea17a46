// Package records defines the practice data model: clients, sessions, their
// transcripts, and the derived intake note.
//
// The package owns field validation and the shared domain errors
// (ErrNotFound, ErrValidation) so every store backend and the ingestion flow
// classify failures the same way. It has no dependencies on storage or
// transport code.
package records
