// Package logs reads the server log file for `mindscribe logs`.
//
// Last returns the final lines of the file with bounded memory. Follow polls
// from a byte offset and restarts from the top when the file shrinks. Filter
// narrows output to one client or session and understands both the console
// and JSON log formats.
package logs
