// Package app assembles MindScribe's components from configuration.
//
// Build opens the configured entity store, seeds it with the demonstration
// practice when asked, and constructs the transcription adapter, the
// generation provider and the structuring and note services on top of it.
// Command handlers and the daemon share the resulting App.
package app
