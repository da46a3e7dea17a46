// Package pgstore persists clients and sessions in PostgreSQL through a pgx
// connection pool. Queries are assembled with squirrel using dollar
// placeholders; multi-statement operations (client cascade, session
// read-modify-write) run in a single transaction.
package pgstore
