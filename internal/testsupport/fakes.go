package testsupport

import (
	"context"
	"sync"

	"mindscribe/internal/records"
)

// StubTranscriber returns canned text or an error. Block, when set, is waited
// on before returning so tests can hold a transcription in flight.
type StubTranscriber struct {
	Text  string
	Err   error
	Block chan struct{}

	mu    sync.Mutex
	calls int
	last  records.MediaFile
}

// Transcribe implements the transcription contract.
func (s *StubTranscriber) Transcribe(ctx context.Context, media records.MediaFile) (string, error) {
	s.mu.Lock()
	s.calls++
	s.last = media
	block := s.Block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

// Calls reports how many times Transcribe ran.
func (s *StubTranscriber) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Last returns the most recent media passed to Transcribe.
func (s *StubTranscriber) Last() records.MediaFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// StubGenerator returns canned generation output. TranscriptJSON, when set,
// answers requests whose schema describes an array so one stub can serve
// transcript structuring and intake notes together.
type StubGenerator struct {
	JSON           string
	TranscriptJSON string
	Text           string
	Err            error

	mu      sync.Mutex
	prompts []string
}

// GenerateJSON implements the generation contract.
func (g *StubGenerator) GenerateJSON(_ context.Context, prompt string, schema map[string]any) (string, error) {
	err := g.record(prompt)
	if g.TranscriptJSON != "" && schema["type"] == "array" {
		return g.TranscriptJSON, err
	}
	return g.JSON, err
}

// GenerateText implements the generation contract.
func (g *StubGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	err := g.record(prompt)
	return g.Text, err
}

// SetErr replaces the error returned by later calls.
func (g *StubGenerator) SetErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Err = err
}

// Prompts returns every prompt received so far.
func (g *StubGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

func (g *StubGenerator) record(prompt string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.Err
}
