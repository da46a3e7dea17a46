// Package store defines the Entity Store contract for clients and sessions and
// ships the in-memory implementation used by default and in tests.
//
// Every backend guarantees the same rules: ids are assigned by the store and
// never reused, deleting a client removes its sessions in the same operation,
// and callers only ever receive copies so a concurrent reader never observes a
// half-applied write. Durable backends live in the sqlitestore and pgstore
// subpackages; Open picks one from configuration.
package store
