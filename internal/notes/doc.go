// Package notes generates clinical documents from a persisted session
// transcript: a structured intake note for the practitioner and a
// second-person summary for the client.
//
// Generation never fails from the caller's point of view. When the generator
// is missing, errors, or omits a required intake field, a canned document is
// returned with Degraded set and a warning is logged.
//
// A View binds one session for the lifetime of a screen or API resource and
// keeps each document once it has been generated successfully. Degraded
// fallbacks are not kept, so the next request tries the generator again.
// Views bounds the number of cached sessions with an LRU. Saving the private
// note through a View is the only write this package performs.
package notes
