// Package sqlitestore persists clients and sessions in a local SQLite file.
//
// It uses the pure-Go modernc.org/sqlite driver with WAL journaling and
// foreign keys enabled. Writes that hit SQLITE_BUSY are retried with a short
// exponential backoff, and the client cascade runs inside one transaction.
package sqlitestore
