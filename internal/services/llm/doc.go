// Package llm provides an OpenRouter-compatible chat completion client used as
// a generation backend for transcript structuring and note writing.
//
// GenerateJSON requests a JSON document (constrained by a JSON Schema when one
// is supplied) and GenerateText requests free prose. Both retry on HTTP
// 408/429/5xx, empty completions, and network timeouts with exponential
// backoff (base 1s, max 10s, up to 5 attempts by default); context
// cancellation aborts retries immediately.
//
// DecodeJSON tolerates the formatting quirks models add around JSON payloads
// (code fences, leading prose) and is shared with the Gemini backend.
package llm
