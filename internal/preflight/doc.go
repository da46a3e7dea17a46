// Package preflight provides readiness checks for the directories, store and
// external services MindScribe depends on.
//
// These checks run in two contexts:
//   - The API server runs RunAll at startup and logs a warning for every
//     failed check. It keeps serving; a missing provider key only means the
//     offline placeholders are used.
//   - The CLI "mindscribe status" command renders the same results, and with
//     --probe it also pings the configured generation provider.
//
// Optional checks cover credentials that have a local fallback. They never
// make the overall result fail.
package preflight
