// Package services defines shared utilities consumed by the ingestion
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp client IDs, session IDs, pipeline stages, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (transcription, configuration, transient) without string
//     matching.
//   - TranscriptionError, the only failure the ingestion flow recovers from.
//
// Use these helpers when wiring new adapters so operational behaviour stays
// uniform across the pipeline.
package services
