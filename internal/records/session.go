package records

import (
	"slices"
	"strings"
)

const (
	DefaultSessionTitle       = "New Session"
	DefaultSessionDescription = "No description provided."
	// TranscribedSessionType labels sessions created by the ingestion flow.
	TranscribedSessionType = "Transcribed Session"
)

// Session is one therapy appointment belonging to a client.
type Session struct {
	ID          string            `json:"id"`
	ClientID    string            `json:"clientId"`
	Date        string            `json:"date"`
	Type        string            `json:"type"`
	Time        string            `json:"time"`
	Duration    int               `json:"duration,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Transcript  []TranscriptEntry `json:"transcript"`
	PrivateNote string            `json:"privateNote,omitempty"`
}

// SessionDraft carries the fields of a session before the store assigns an id.
type SessionDraft struct {
	ClientID    string            `json:"clientId"`
	Date        string            `json:"date"`
	Type        string            `json:"type"`
	Time        string            `json:"time"`
	Duration    int               `json:"duration,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Transcript  []TranscriptEntry `json:"transcript"`
	PrivateNote string            `json:"privateNote,omitempty"`
}

// SessionPatch lists the mutable session fields. Nil fields are left as-is.
type SessionPatch struct {
	Date        *string            `json:"date,omitempty"`
	Type        *string            `json:"type,omitempty"`
	Time        *string            `json:"time,omitempty"`
	Duration    *int               `json:"duration,omitempty"`
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	Transcript  *[]TranscriptEntry `json:"transcript,omitempty"`
	PrivateNote *string            `json:"privateNote,omitempty"`
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	out := s
	out.Transcript = slices.Clone(s.Transcript)
	return out
}

// Validate checks the draft fields that do not depend on the store.
func (d SessionDraft) Validate() error {
	var errs fieldErrors
	if strings.TrimSpace(d.ClientID) == "" {
		errs.add("clientId", "is required")
	}
	if d.Duration < 0 {
		errs.add("duration", "must be a positive number of minutes")
	}
	if err := ValidateTranscript(d.Transcript); err != nil {
		errs = append(errs, err.(*ValidationError).Errors...)
	}
	return errs.err()
}

// NewSession builds a session from the draft, filling the default title and
// description when absent.
func NewSession(id string, draft SessionDraft) (Session, error) {
	if err := draft.Validate(); err != nil {
		return Session{}, err
	}
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		title = DefaultSessionTitle
	}
	description := strings.TrimSpace(draft.Description)
	if description == "" {
		description = DefaultSessionDescription
	}
	transcript := slices.Clone(draft.Transcript)
	if transcript == nil {
		transcript = []TranscriptEntry{}
	}
	return Session{
		ID:          id,
		ClientID:    strings.TrimSpace(draft.ClientID),
		Date:        draft.Date,
		Type:        draft.Type,
		Time:        draft.Time,
		Duration:    draft.Duration,
		Title:       title,
		Description: description,
		Transcript:  transcript,
		PrivateNote: draft.PrivateNote,
	}, nil
}

// Validate checks the patch values that are set.
func (p SessionPatch) Validate() error {
	var errs fieldErrors
	if p.Duration != nil && *p.Duration < 0 {
		errs.add("duration", "must be a positive number of minutes")
	}
	if p.Transcript != nil {
		if err := ValidateTranscript(*p.Transcript); err != nil {
			errs = append(errs, err.(*ValidationError).Errors...)
		}
	}
	return errs.err()
}

// IsEmpty reports whether the patch changes nothing.
func (p SessionPatch) IsEmpty() bool {
	return p.Date == nil && p.Type == nil && p.Time == nil && p.Duration == nil &&
		p.Title == nil && p.Description == nil && p.Transcript == nil && p.PrivateNote == nil
}

// Apply performs a shallow merge of the patch over s and returns the result.
func (p SessionPatch) Apply(s Session) Session {
	out := s.Clone()
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Time != nil {
		out.Time = *p.Time
	}
	if p.Duration != nil {
		out.Duration = *p.Duration
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Transcript != nil {
		out.Transcript = slices.Clone(*p.Transcript)
	}
	if p.PrivateNote != nil {
		out.PrivateNote = *p.PrivateNote
	}
	return out
}
