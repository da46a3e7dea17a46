package records

import "strings"

// GeneratedNote is the four-field intake note derived from a transcript. It is
// never persisted.
type GeneratedNote struct {
	IdentificationInformation   string `json:"identificationInformation"`
	FamilySituation             string `json:"familySituation"`
	SocioDemographicInformation string `json:"socioDemographicInformation"`
	ReasonForSeekingTherapy     string `json:"reasonForSeekingTherapy"`
}

// Validate checks the two fields every intake note must carry.
func (n GeneratedNote) Validate() error {
	var errs fieldErrors
	if strings.TrimSpace(n.IdentificationInformation) == "" {
		errs.add("identificationInformation", "is required")
	}
	if strings.TrimSpace(n.ReasonForSeekingTherapy) == "" {
		errs.add("reasonForSeekingTherapy", "is required")
	}
	return errs.err()
}
