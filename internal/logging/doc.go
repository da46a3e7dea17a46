// Package logging assembles the structured slog loggers used across MindScribe.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context helpers that tag log lines with client, session, flow, and request
// identifiers. Transcript text and note content never belong in log fields;
// callers log identifiers and sizes instead.
package logging
