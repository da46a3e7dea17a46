// Package gemini implements the generation backend on the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. JSON requests set
// ResponseMIMEType to application/json and pass the caller's JSON Schema as
// ResponseJsonSchema so the model output is constrained server-side.
package gemini

const defaultModel = "gemini-2.5-flash"
