package logs

import "strings"

// Filter selects log lines about one client or session. Empty fields match
// everything.
type Filter struct {
	ClientID  string
	SessionID string
}

// Empty reports whether the filter matches every line.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.ClientID) == "" && strings.TrimSpace(f.SessionID) == ""
}

// Match reports whether line carries the filtered ids. Console lines tag the
// subject as "[client 1 session 101]"; JSON lines carry client_id and
// session_id keys.
func (f Filter) Match(line string) bool {
	if id := strings.TrimSpace(f.ClientID); id != "" {
		if !containsAny(line, `"client_id":"`+id+`"`, "[client "+id+"]", "[client "+id+" ") {
			return false
		}
	}
	if id := strings.TrimSpace(f.SessionID); id != "" {
		if !containsAny(line, `"session_id":"`+id+`"`, "session "+id+"]") {
			return false
		}
	}
	return true
}

// Apply returns the lines that match f.
func (f Filter) Apply(lines []string) []string {
	if f.Empty() {
		return lines
	}
	out := lines[:0:0]
	for _, line := range lines {
		if f.Match(line) {
			out = append(out, line)
		}
	}
	return out
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
