package structuring_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mindscribe/internal/records"
	"mindscribe/internal/structuring"
)

type stubGenerator struct {
	payload string
	err     error
	prompt  string
	schema  map[string]any
	calls   int
}

func (g *stubGenerator) GenerateJSON(_ context.Context, prompt string, schema map[string]any) (string, error) {
	g.calls++
	g.prompt = prompt
	g.schema = schema
	return g.payload, g.err
}

func TestStructureNormalizesGeneratorOutput(t *testing.T) {
	gen := &stubGenerator{payload: "```json\n" + `[
		{"time":"0:00","speaker":"T","dialogue":"How was your week?"},
		{"time":"0:07","speaker":"Client","dialogue":"Long."},
		{"time":"0:04","speaker":"Therapist","dialogue":"Tell me more."},
		{"time":"0:12","speaker":"Rhonda","dialogue":"   "},
		{"time":"soon","speaker":"C","dialogue":"Work has been a lot."}
	]` + "\n```"}
	svc := structuring.NewService(gen, nil)

	result := svc.Structure(context.Background(), "T: How was your week? C: Long.", "Rhonda")
	if result.Degraded {
		t.Fatalf("unexpected degraded result: %s", result.Reason)
	}
	want := []records.TranscriptEntry{
		{Time: "0:00", Speaker: "You", Dialogue: "How was your week?"},
		{Time: "0:07", Speaker: "Rhonda", Dialogue: "Long."},
		{Time: "0:07", Speaker: "You", Dialogue: "Tell me more."},
		{Time: "0:07", Speaker: "Rhonda", Dialogue: "Work has been a lot."},
	}
	if len(result.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), result.Entries)
	}
	for i := range want {
		if result.Entries[i] != want[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, result.Entries[i], want[i])
		}
	}
	if err := records.ValidateTranscript(result.Entries); err != nil {
		t.Fatalf("structured transcript invalid: %v", err)
	}
	if !strings.Contains(gen.prompt, `"Rhonda"`) || !strings.Contains(gen.prompt, "T: How was your week?") {
		t.Fatalf("prompt missing client name or raw text: %s", gen.prompt)
	}
	if gen.schema["type"] != "array" {
		t.Fatalf("expected array schema, got %v", gen.schema)
	}
}

func TestStructureFallsBackOnGeneratorError(t *testing.T) {
	svc := structuring.NewService(&stubGenerator{err: errors.New("quota exceeded")}, nil)
	result := svc.Structure(context.Background(), "C: hello", "Tony")
	assertFallback(t, result, "Tony")
}

func TestStructureFallsBackOnUnparsableOutput(t *testing.T) {
	svc := structuring.NewService(&stubGenerator{payload: "I cannot help with that."}, nil)
	assertFallback(t, svc.Structure(context.Background(), "C: hello", "Tony"), "Tony")
}

func TestStructureFallsBackOnEmptyArray(t *testing.T) {
	svc := structuring.NewService(&stubGenerator{payload: "[]"}, nil)
	assertFallback(t, svc.Structure(context.Background(), "C: hello", "Tony"), "Tony")
}

func assertFallback(t *testing.T, result structuring.Result, clientName string) {
	t.Helper()
	if !result.Degraded || result.Reason == "" {
		t.Fatalf("expected degraded result with reason, got %+v", result)
	}
	if len(result.Entries) != 5 {
		t.Fatalf("expected 5 fallback entries, got %d", len(result.Entries))
	}
	times := []string{"0:00", "0:05", "0:10", "0:15", "0:20"}
	for i, entry := range result.Entries {
		if entry.Time != times[i] {
			t.Fatalf("entry %d time %q, want %q", i, entry.Time, times[i])
		}
		wantSpeaker := "You"
		if i%2 == 1 {
			wantSpeaker = clientName
		}
		if entry.Speaker != wantSpeaker {
			t.Fatalf("entry %d speaker %q, want %q", i, entry.Speaker, wantSpeaker)
		}
	}
}

func TestStructureSkipsGeneratorForEmptyText(t *testing.T) {
	gen := &stubGenerator{payload: "[]"}
	svc := structuring.NewService(gen, nil)
	for _, raw := range []string{"", "  ", records.NoSpeechPlaceholder} {
		result := svc.Structure(context.Background(), raw, "Tony")
		if result.Degraded || len(result.Entries) != 1 || result.Entries[0].Dialogue != records.NoSpeechPlaceholder {
			t.Fatalf("raw %q: unexpected result %+v", raw, result)
		}
	}
	if gen.calls != 0 {
		t.Fatalf("generator should not be called, got %d calls", gen.calls)
	}
}

func TestStructureWithoutGeneratorParsesRoleMarkers(t *testing.T) {
	svc := structuring.NewService(nil, nil)
	result := svc.Structure(context.Background(), "T: How are you today? C: Tired. therapist: Say more. Client: Work.", "Rhonda")
	if result.Degraded {
		t.Fatal("local parsing must not be degraded")
	}
	want := []records.TranscriptEntry{
		{Time: "0:00", Speaker: "You", Dialogue: "How are you today?"},
		{Time: "0:05", Speaker: "Rhonda", Dialogue: "Tired."},
		{Time: "0:10", Speaker: "You", Dialogue: "Say more."},
		{Time: "0:15", Speaker: "Rhonda", Dialogue: "Work."},
	}
	if len(result.Entries) != len(want) {
		t.Fatalf("unexpected entries %+v", result.Entries)
	}
	for i := range want {
		if result.Entries[i] != want[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, result.Entries[i], want[i])
		}
	}
}

func TestParseRoleMarkersWithoutMarkers(t *testing.T) {
	entries := structuring.ParseRoleMarkers("Just a monologue about the week.", "Tony")
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %+v", entries)
	}
	if entries[0].Speaker != "Tony" || entries[0].Time != "0:00" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestParseRoleMarkersLeadingTextAndEmptyTurns(t *testing.T) {
	entries := structuring.ParseRoleMarkers("Recording starts. T: C: Hello.", "Tony")
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %+v", entries)
	}
	if entries[0].Speaker != "Tony" || entries[0].Dialogue != "Recording starts." {
		t.Fatalf("unexpected leading entry %+v", entries[0])
	}
	if entries[1].Speaker != "Tony" || entries[1].Dialogue != "Hello." || entries[1].Time != "0:05" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
}

func TestParseRoleMarkersIgnoresMidSentenceColons(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []records.TranscriptEntry
	}{
		{
			name: "contraction before colon",
			raw:  "T: How has it been? C: I said I don't: I just can't anymore.",
			want: []records.TranscriptEntry{
				{Time: "0:00", Speaker: "You", Dialogue: "How has it been?"},
				{Time: "0:05", Speaker: "Rhonda", Dialogue: "I said I don't: I just can't anymore."},
			},
		},
		{
			name: "drive letter",
			raw:  "T: Where did you keep them? C: The notes are on drive C: somewhere.",
			want: []records.TranscriptEntry{
				{Time: "0:00", Speaker: "You", Dialogue: "Where did you keep them?"},
				{Time: "0:05", Speaker: "Rhonda", Dialogue: "The notes are on drive C: somewhere."},
			},
		},
		{
			name: "markers on separate lines",
			raw:  "Therapist: Welcome.\nClient: \"Thanks.\" T: Shall we start?",
			want: []records.TranscriptEntry{
				{Time: "0:00", Speaker: "You", Dialogue: "Welcome."},
				{Time: "0:05", Speaker: "Rhonda", Dialogue: "\"Thanks.\""},
				{Time: "0:10", Speaker: "You", Dialogue: "Shall we start?"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := structuring.ParseRoleMarkers(tt.raw, "Rhonda")
			if len(entries) != len(tt.want) {
				t.Fatalf("expected %d entries, got %+v", len(tt.want), entries)
			}
			for i := range tt.want {
				if entries[i] != tt.want[i] {
					t.Fatalf("entry %d: got %+v want %+v", i, entries[i], tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeKeepsLongTimestamps(t *testing.T) {
	entries := structuring.Normalize([]records.TranscriptEntry{
		{Time: "0:59:58", Speaker: "you", Dialogue: "Almost time."},
		{Time: "1:00:03", Speaker: "Tony Pasano", Dialogue: "Already?"},
	}, "Tony")
	if entries[0].Time != "59:58" || entries[1].Time != "1:00:03" {
		t.Fatalf("unexpected times %+v", entries)
	}
	if entries[0].Speaker != "You" || entries[1].Speaker != "Tony Pasano" {
		t.Fatalf("unexpected speakers %+v", entries)
	}
}
