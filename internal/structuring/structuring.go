package structuring

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"mindscribe/internal/logging"
	"mindscribe/internal/records"
	"mindscribe/internal/services"
	"mindscribe/internal/services/llm"
)

// Generator produces a JSON document constrained by a JSON Schema.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema map[string]any) (string, error)
}

// Result is the outcome of structuring one transcript.
type Result struct {
	Entries []records.TranscriptEntry
	// Degraded is set when the entries are the demonstration fallback rather
	// than a structuring of the input.
	Degraded bool
	Reason   string
}

// Service structures raw transcripts.
type Service struct {
	generator Generator
	logger    *slog.Logger
}

// NewService builds a Service. A nil generator selects the local role-marker parser.
func NewService(generator Generator, logger *slog.Logger) *Service {
	return &Service{
		generator: generator,
		logger:    logging.NewComponentLogger(logger, "structuring"),
	}
}

// Structure converts rawText into transcript entries for clientName.
func (s *Service) Structure(ctx context.Context, rawText, clientName string) Result {
	clientName = strings.TrimSpace(clientName)
	rawText = strings.TrimSpace(rawText)
	ctx = services.WithStage(ctx, "structuring")
	logger := logging.WithContext(ctx, s.logger)

	if rawText == "" || rawText == records.NoSpeechPlaceholder {
		return Result{Entries: []records.TranscriptEntry{noSpeechEntry(clientName)}}
	}
	if s.generator == nil {
		entries := ParseRoleMarkers(rawText, clientName)
		logger.Debug("structured transcript locally", logging.Int("entries", len(entries)))
		return Result{Entries: entries}
	}

	start := time.Now()
	payload, err := s.generator.GenerateJSON(ctx, buildPrompt(rawText, clientName), transcriptSchema)
	if err != nil {
		return s.degrade(ctx, clientName, "generator request failed", err)
	}
	var decoded []records.TranscriptEntry
	if err := llm.DecodeJSON(payload, &decoded); err != nil {
		return s.degrade(ctx, clientName, "generator returned unparsable output", err)
	}
	entries := Normalize(decoded, clientName)
	if len(entries) == 0 {
		return s.degrade(ctx, clientName, "generator returned no dialogue", nil)
	}
	logger.Info("transcript structured",
		logging.Int("entries", len(entries)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return Result{Entries: entries}
}

func (s *Service) degrade(ctx context.Context, clientName, reason string, err error) Result {
	attrs := []logging.Attr{
		logging.String("reason", reason),
		logging.String(logging.FieldErrorHint, "check the llm provider configuration and quota"),
		logging.String(logging.FieldImpact, "session saved with a demonstration transcript"),
	}
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	logging.WarnWithContext(ctx, s.logger, "transcript structuring degraded", "generation_degraded", attrs...)
	return Result{Entries: FallbackTranscript(clientName), Degraded: true, Reason: reason}
}

// FallbackTranscript is the demonstration dialogue used when structuring fails.
func FallbackTranscript(clientName string) []records.TranscriptEntry {
	you := records.PractitionerLabel
	return []records.TranscriptEntry{
		{Time: "0:00", Speaker: you, Dialogue: "Welcome back. How are you arriving today?"},
		{Time: "0:05", Speaker: clientName, Dialogue: "Drained, honestly. It feels like I never stop moving."},
		{Time: "0:10", Speaker: you, Dialogue: "Constant motion. What's that like for you?"},
		{Time: "0:15", Speaker: clientName, Dialogue: "Exhausting. I wake up tired and go to bed anxious."},
		{Time: "0:20", Speaker: you, Dialogue: "This is a mock structured transcript due to an API error."},
	}
}

func noSpeechEntry(clientName string) records.TranscriptEntry {
	return records.TranscriptEntry{Time: "0:00", Speaker: clientName, Dialogue: records.NoSpeechPlaceholder}
}

// Normalize cleans generator output: speaker hints become "You" or the client
// name, empty dialogue is dropped, and each timestamp is clamped so it never
// precedes the one before it. Unparsable timestamps take the previous value.
func Normalize(entries []records.TranscriptEntry, clientName string) []records.TranscriptEntry {
	out := make([]records.TranscriptEntry, 0, len(entries))
	var previous time.Duration
	for _, entry := range entries {
		dialogue := strings.TrimSpace(entry.Dialogue)
		if dialogue == "" {
			continue
		}
		offset, err := records.ParseTimestamp(strings.TrimSpace(entry.Time))
		if err != nil || offset < previous {
			offset = previous
		}
		previous = offset
		out = append(out, records.TranscriptEntry{
			Time:     records.FormatTimestamp(offset),
			Speaker:  normalizeSpeaker(entry.Speaker, clientName),
			Dialogue: dialogue,
		})
	}
	return out
}

func normalizeSpeaker(speaker, clientName string) string {
	trimmed := strings.TrimSpace(speaker)
	switch strings.ToLower(trimmed) {
	case "t", "therapist", "you", "practitioner":
		return records.PractitionerLabel
	case "c", "client", "":
		return clientName
	}
	return trimmed
}
