// Package config loads, normalizes, and validates MindScribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and overlays environment variables such as
// ELEVENLABS_API_KEY and GEMINI_API_KEY. The Config type centralizes every
// knob the CLI and API server need, so the store backend, provider
// credentials, and logging are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
