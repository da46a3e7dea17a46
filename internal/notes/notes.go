package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mindscribe/internal/logging"
	"mindscribe/internal/records"
	"mindscribe/internal/services"
	"mindscribe/internal/services/llm"
)

// Generator is the generation backend used for notes.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema map[string]any) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// IntakeResult is a generated intake note.
type IntakeResult struct {
	Note     records.GeneratedNote
	Degraded bool
	Reason   string
}

// SummaryResult is a generated client summary.
type SummaryResult struct {
	Text     string
	Degraded bool
	Reason   string
}

// FallbackSummary is shown when the summary cannot be generated.
const FallbackSummary = "Could not generate summary at this time. This might be due to a missing API key or a network issue. For demonstration, this is a sample summary: It sounds like you've been going through a lot, and it's completely understandable that you're feeling overwhelmed. You showed a lot of courage by opening up about your past experiences and the challenges you're facing with family and work. Remember to be kind to yourself as you navigate these feelings."

// Service generates notes. It never touches the store.
type Service struct {
	generator Generator
	logger    *slog.Logger
}

// NewService builds a Service. A nil generator always yields fallback documents.
func NewService(generator Generator, logger *slog.Logger) *Service {
	return &Service{generator: generator, logger: logging.NewComponentLogger(logger, "notes")}
}

// IntakeNote drafts an intake note from transcript for the client named clientName.
func (s *Service) IntakeNote(ctx context.Context, transcript []records.TranscriptEntry, clientName string) IntakeResult {
	ctx = services.WithStage(ctx, "intake_note")
	if s.generator == nil {
		return s.degradedIntake(ctx, clientName, "generator not configured", nil)
	}
	start := time.Now()
	payload, err := s.generator.GenerateJSON(ctx, intakePrompt(records.FormatTranscript(transcript), clientName), intakeSchema)
	if err != nil {
		return s.degradedIntake(ctx, clientName, "generator request failed", err)
	}
	var note records.GeneratedNote
	if err := llm.DecodeJSON(payload, &note); err != nil {
		return s.degradedIntake(ctx, clientName, "generator returned unparsable output", err)
	}
	note = trimNote(note)
	if err := note.Validate(); err != nil {
		return s.degradedIntake(ctx, clientName, "generator omitted required fields", err)
	}
	logging.WithContext(ctx, s.logger).Info("intake note generated",
		logging.Int("entries", len(transcript)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return IntakeResult{Note: note}
}

// Summary drafts a second-person summary of transcript.
func (s *Service) Summary(ctx context.Context, transcript []records.TranscriptEntry) SummaryResult {
	ctx = services.WithStage(ctx, "client_summary")
	if s.generator == nil {
		return s.degradedSummary(ctx, "generator not configured", nil)
	}
	start := time.Now()
	text, err := s.generator.GenerateText(ctx, summaryPrompt(records.FormatTranscript(transcript)))
	if err != nil {
		return s.degradedSummary(ctx, "generator request failed", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return s.degradedSummary(ctx, "generator returned an empty summary", nil)
	}
	logging.WithContext(ctx, s.logger).Info("client summary generated",
		logging.Int("entries", len(transcript)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return SummaryResult{Text: text}
}

// FallbackNote is the demonstration intake note for clientName.
func FallbackNote(clientName string) records.GeneratedNote {
	return records.GeneratedNote{
		IdentificationInformation:   fmt.Sprintf("Name: %s\nDate of Birth: Unknown (Age: 24 years old)", clientName),
		FamilySituation:             "Family Situation: Single mother with two children, has an older sister and a younger sister, mother alive but not in contact, father deceased. Limited contact with grandparents and cousins.",
		SocioDemographicInformation: "Socio-demographic Information: 24-year-old warehouse worker, history of substance use and anger issues, strained family relationships, legal issues (DUI), raised Catholic but has concerns about strict rules.",
		ReasonForSeekingTherapy:     "The client is seeking therapy due to concerns raised by a friend, primarily struggling with anger management, substance abuse (marijuana and Xanax), and maintaining employment and relationships. They also have a history of legal issues and experience occasional suicidal thoughts during difficult times. The client's goals for counseling include managing anger, developing coping skills, improving relationships, and addressing substance use.",
	}
}

func (s *Service) degradedIntake(ctx context.Context, clientName, reason string, err error) IntakeResult {
	s.warn(ctx, "intake note degraded", reason, "a sample intake note is shown instead", err)
	return IntakeResult{Note: FallbackNote(clientName), Degraded: true, Reason: reason}
}

func (s *Service) degradedSummary(ctx context.Context, reason string, err error) SummaryResult {
	s.warn(ctx, "client summary degraded", reason, "a sample summary is shown instead", err)
	return SummaryResult{Text: FallbackSummary, Degraded: true, Reason: reason}
}

func (s *Service) warn(ctx context.Context, msg, reason, impact string, err error) {
	attrs := []logging.Attr{
		logging.String("reason", reason),
		logging.String(logging.FieldErrorHint, "check the llm provider configuration and quota"),
		logging.String(logging.FieldImpact, impact),
	}
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	logging.WarnWithContext(ctx, s.logger, msg, "generation_degraded", attrs...)
}

func trimNote(note records.GeneratedNote) records.GeneratedNote {
	note.IdentificationInformation = strings.TrimSpace(note.IdentificationInformation)
	note.FamilySituation = strings.TrimSpace(note.FamilySituation)
	note.SocioDemographicInformation = strings.TrimSpace(note.SocioDemographicInformation)
	note.ReasonForSeekingTherapy = strings.TrimSpace(note.ReasonForSeekingTherapy)
	return note
}
