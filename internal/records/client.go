package records

import (
	"net/mail"
	"slices"
	"strings"
)

// ClientType distinguishes individual clients from couples.
type ClientType string

const (
	ClientIndividual ClientType = "individual"
	ClientCouple     ClientType = "couple"
)

// Partner holds the second person of a couple.
type Partner struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Pronouns  string `json:"pronouns,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Client is a person or couple receiving therapy.
type Client struct {
	ID         string     `json:"id"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email,omitempty"`
	Pronouns   string     `json:"pronouns,omitempty"`
	Modalities []string   `json:"modalities"`
	Type       ClientType `json:"type"`
	Client2    *Partner   `json:"client2,omitempty"`
}

// ClientDraft carries the caller-supplied fields of a new client.
type ClientDraft struct {
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email,omitempty"`
	Pronouns   string     `json:"pronouns,omitempty"`
	Modalities []string   `json:"modalities"`
	Type       ClientType `json:"type"`
	Client2    *Partner   `json:"client2,omitempty"`
}

// DisplayName returns "First Last".
func (c Client) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Initials returns the upper-case initials used in client listings.
func (c Client) Initials() string {
	var b strings.Builder
	for _, name := range []string{c.FirstName, c.LastName} {
		for _, r := range strings.TrimSpace(name) {
			b.WriteString(strings.ToUpper(string(r)))
			break
		}
	}
	return b.String()
}

// Clone returns a deep copy.
func (c Client) Clone() Client {
	out := c
	out.Modalities = slices.Clone(c.Modalities)
	if c.Client2 != nil {
		partner := *c.Client2
		out.Client2 = &partner
	}
	return out
}

// Normalize trims names, defaults the type to individual, and de-duplicates
// modalities. It returns a copy; the draft is left untouched.
func (d ClientDraft) Normalize() ClientDraft {
	out := d
	out.FirstName = strings.TrimSpace(d.FirstName)
	out.LastName = strings.TrimSpace(d.LastName)
	out.Email = strings.TrimSpace(d.Email)
	out.Pronouns = strings.TrimSpace(d.Pronouns)
	if out.Type == "" {
		out.Type = ClientIndividual
	}
	out.Modalities = make([]string, 0, len(d.Modalities))
	for _, m := range d.Modalities {
		m = strings.TrimSpace(m)
		if m == "" || slices.Contains(out.Modalities, m) {
			continue
		}
		out.Modalities = append(out.Modalities, m)
	}
	if d.Client2 != nil {
		partner := Partner{
			FirstName: strings.TrimSpace(d.Client2.FirstName),
			LastName:  strings.TrimSpace(d.Client2.LastName),
			Pronouns:  strings.TrimSpace(d.Client2.Pronouns),
			Email:     strings.TrimSpace(d.Client2.Email),
		}
		out.Client2 = &partner
	}
	return out
}

// Validate checks required fields and the couple invariant: Client2 is
// present if and only if Type is couple.
func (d ClientDraft) Validate() error {
	d = d.Normalize()
	var errs fieldErrors
	if d.FirstName == "" {
		errs.add("firstName", "is required")
	}
	if d.LastName == "" {
		errs.add("lastName", "is required")
	}
	if d.Email != "" && !validEmail(d.Email) {
		errs.add("email", "is not a valid address")
	}
	switch d.Type {
	case ClientIndividual:
		if d.Client2 != nil {
			errs.add("client2", "is only allowed for couples")
		}
	case ClientCouple:
		if d.Client2 == nil {
			errs.add("client2", "is required for couples")
			break
		}
		if d.Client2.FirstName == "" {
			errs.add("client2.firstName", "is required")
		}
		if d.Client2.LastName == "" {
			errs.add("client2.lastName", "is required")
		}
		if d.Client2.Email != "" && !validEmail(d.Client2.Email) {
			errs.add("client2.email", "is not a valid address")
		}
	default:
		errs.add("type", "must be individual or couple")
	}
	return errs.err()
}

// NewClient validates the draft and builds a client with the given id.
func NewClient(id string, draft ClientDraft) (Client, error) {
	if err := draft.Validate(); err != nil {
		return Client{}, err
	}
	d := draft.Normalize()
	return Client{
		ID:         id,
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Email:      d.Email,
		Pronouns:   d.Pronouns,
		Modalities: d.Modalities,
		Type:       d.Type,
		Client2:    d.Client2,
	}, nil
}

func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}
