// Package structuring turns raw transcript text into timestamped dialogue
// entries attributed to the practitioner ("You") or the client.
//
// With a generator configured the text is sent to the model with a JSON
// Schema and the reply is cleaned up: speaker hints are normalised, empty
// lines dropped, and timestamps forced to be non-decreasing. Any generator
// failure yields a fixed demonstration transcript flagged as degraded, so
// Structure never fails. Without a generator, a deterministic parser splits
// the text on T:/C: role markers instead.
package structuring
