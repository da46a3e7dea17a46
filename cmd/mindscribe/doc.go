// Command mindscribe manages a therapy practice's clients and sessions,
// ingests session recordings, drafts notes and serves the HTTP API.
//
// Commands other than `serve` open the configured store directly. With the
// memory backend every invocation starts from the demonstration practice, so
// use the sqlite or postgres backend to keep changes between commands.
package main
