package structuring

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"mindscribe/internal/records"
)

const localEntrySpacing = 5 * time.Second

var roleMarker = regexp.MustCompile(`(?i)\b(therapist|client|t|c)\s*:`)

// ParseRoleMarkers splits text on T:/C: (or Therapist:/Client:) markers.
// A marker only counts at the start of the text, at the start of a line, or
// after whitespace that follows sentence punctuation or another marker.
// Entries are spaced five seconds apart from 0:00. Text before the first
// marker, or text with no markers at all, is attributed to the client.
func ParseRoleMarkers(rawText, clientName string) []records.TranscriptEntry {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return []records.TranscriptEntry{noSpeechEntry(clientName)}
	}

	type turn struct{ speaker, dialogue string }
	var turns []turn
	matches := roleMarker.FindAllStringSubmatchIndex(text, -1)
	cursor := 0
	speaker := clientName
	for _, m := range matches {
		if !markerBoundary(text[:m[0]]) {
			continue
		}
		if chunk := strings.TrimSpace(text[cursor:m[0]]); chunk != "" {
			turns = append(turns, turn{speaker, chunk})
		}
		speaker = normalizeSpeaker(text[m[2]:m[3]], clientName)
		cursor = m[1]
	}
	if chunk := strings.TrimSpace(text[cursor:]); chunk != "" {
		turns = append(turns, turn{speaker, chunk})
	}
	if len(turns) == 0 {
		return []records.TranscriptEntry{noSpeechEntry(clientName)}
	}

	entries := make([]records.TranscriptEntry, 0, len(turns))
	for i, t := range turns {
		entries = append(entries, records.TranscriptEntry{
			Time:     records.FormatTimestamp(time.Duration(i) * localEntrySpacing),
			Speaker:  t.speaker,
			Dialogue: t.dialogue,
		})
	}
	return entries
}

// markerBoundary reports whether a role marker may begin right after before.
func markerBoundary(before string) bool {
	if before == "" {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(before)
	if !unicode.IsSpace(last) {
		return false
	}
	trimmed := strings.TrimRight(before, " \t")
	if trimmed == "" || strings.HasSuffix(trimmed, "\n") || strings.HasSuffix(trimmed, "\r") {
		return true
	}
	trimmed = strings.TrimRight(trimmed, `"')]’”`)
	last, _ = utf8.DecodeLastRuneInString(trimmed)
	return strings.ContainsRune(".!?:;…", last)
}
