// Package daemon coordinates the long-running MindScribe API process.
//
// It wires the assembled components into a single lifecycle with flock-based
// locking to prevent two servers sharing one data directory. The daemon owns
// the HTTP listener, the request middleware chain and runtime status
// reporting.
//
// Keep request handling thin here: entity and ingestion logic lives behind
// api.PracticeService and the packages it calls.
package daemon
