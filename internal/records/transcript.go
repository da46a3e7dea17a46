package records

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// PractitionerLabel is the speaker label used for the therapist.
	PractitionerLabel = "You"
	// NoSpeechPlaceholder is the dialogue used when a recording had no speech.
	NoSpeechPlaceholder = "(No speech detected)"
)

// TranscriptEntry is one speaker-attributed utterance.
type TranscriptEntry struct {
	Time     string `json:"time"`
	Speaker  string `json:"speaker"`
	Dialogue string `json:"dialogue"`
}

// ParseTimestamp parses "M:SS" or "H:MM:SS" display timestamps.
func ParseTimestamp(value string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("timestamp %q: expected M:SS or H:MM:SS", value)
	}
	var total int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("timestamp %q: invalid component %q", value, part)
		}
		if i > 0 && (n > 59 || len(part) != 2) {
			return 0, fmt.Errorf("timestamp %q: component %q out of range", value, part)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

// FormatTimestamp renders an offset as "M:SS", or "H:MM:SS" past the hour.
func FormatTimestamp(offset time.Duration) string {
	if offset < 0 {
		offset = 0
	}
	total := int(offset / time.Second)
	hours, minutes, seconds := total/3600, (total/60)%60, total%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// ValidateTranscript checks that every entry has a speaker and dialogue and
// that parsable timestamps never move backwards.
func ValidateTranscript(entries []TranscriptEntry) error {
	var errs fieldErrors
	var last time.Duration
	for i, entry := range entries {
		field := fmt.Sprintf("transcript[%d]", i)
		if strings.TrimSpace(entry.Speaker) == "" {
			errs.add(field+".speaker", "is required")
		}
		if strings.TrimSpace(entry.Dialogue) == "" {
			errs.add(field+".dialogue", "is required")
		}
		offset, err := ParseTimestamp(entry.Time)
		if err != nil {
			errs.add(field+".time", err.Error())
			continue
		}
		if offset < last {
			errs.add(field+".time", "precedes the previous entry")
		}
		last = offset
	}
	return errs.err()
}

// FormatTranscript serializes entries as "Speaker: Dialogue" lines.
func FormatTranscript(entries []TranscriptEntry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.Speaker+": "+entry.Dialogue)
	}
	return strings.Join(lines, "\n")
}
