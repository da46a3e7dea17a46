// Package elevenlabs implements the speech-to-text adapter that turns an
// uploaded recording into raw transcript text.
//
// Requests are single attempts: a failed upload surfaces as a
// services.TranscriptionError so the ingestion flow can ask for another file.
// Without an API key the client sleeps for the configured offline delay and
// returns a placeholder transcript, letting the rest of the pipeline run in
// development environments.
package elevenlabs
