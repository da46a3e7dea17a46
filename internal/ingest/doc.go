// Package ingest drives one recording from client selection to a persisted
// session.
//
// A Flow walks SelectingClient → AwaitingFile → Processing → Complete. The
// Processing stage transcribes the bound file, structures the transcript
// around the client's first name and commits the session in a single store
// call. Transcription failures return the flow to AwaitingFile with the file
// cleared; other failures keep the file so the caller can retry. Close
// invalidates in-flight work so a late result never creates a session or
// reports navigation.
package ingest
