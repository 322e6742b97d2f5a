package catalog

import (
	"fmt"
	"strings"
)

// SectionID identifies one topical unit of the guided interview.
// The set of valid IDs is closed: every ID is declared below and
// registered in the catalog at startup, so an unknown ID can only
// enter the system through external input and is rejected by Resolve.
type SectionID string

const (
	SectionInterview       SectionID = "interview"
	SectionICP             SectionID = "icp"
	SectionPain            SectionID = "pain"
	SectionDeepFear        SectionID = "deep_fear"
	SectionPayoffs         SectionID = "payoffs"
	SectionSignatureMethod SectionID = "signature_method"
	SectionMistakes        SectionID = "mistakes"
	SectionPrize           SectionID = "prize"
)

// SectionStatus tracks how far a section has progressed.
type SectionStatus string

const (
	StatusPending    SectionStatus = "pending"
	StatusInProgress SectionStatus = "in_progress"
	StatusDone       SectionStatus = "done"
)

// ValidationRule constrains one collected field of a section.
type ValidationRule struct {
	FieldName    string
	RuleType     string // "required", "min_length", "max_length", "choices"
	Value        interface{}
	ErrorMessage string
}

// Validate applies the rule to a collected field value.
func (r ValidationRule) Validate(value string) error {
	switch r.RuleType {
	case "required":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s", r.ErrorMessage)
		}
	case "min_length":
		if n, ok := r.Value.(int); ok && len(strings.TrimSpace(value)) < n {
			return fmt.Errorf("%s", r.ErrorMessage)
		}
	case "max_length":
		if n, ok := r.Value.(int); ok && len(value) > n {
			return fmt.Errorf("%s", r.ErrorMessage)
		}
	case "choices":
		choices, ok := r.Value.([]string)
		if !ok {
			return nil
		}
		for _, c := range choices {
			if strings.EqualFold(strings.TrimSpace(value), c) {
				return nil
			}
		}
		return fmt.Errorf("%s", r.ErrorMessage)
	}
	return nil
}

// SectionDefinition is the immutable template for one section.
// Definitions are loaded once at startup and shared read-only;
// conversation state references them by ID, never by copy.
type SectionDefinition struct {
	ID              SectionID
	Order           int
	Name            string
	Description     string
	PromptTemplate  string // named {placeholder} slots filled from collected data
	RequiredFields  []string
	ValidationRules []ValidationRule
	Next            SectionID // zero value means last section
}

// HasNext reports whether another section follows in catalog order.
func (d SectionDefinition) HasNext() bool {
	return d.Next != ""
}
