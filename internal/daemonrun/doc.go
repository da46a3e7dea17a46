// Package daemonrun hosts the process-level runtime for `mindscribe serve`:
// signal handling, logger setup, the PID file and the daemon lifecycle.
package daemonrun
