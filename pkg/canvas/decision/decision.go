package decision

import (
	"ai-canvas-be/pkg/canvas/state"
)

// Decision is the structured routing directive extracted once per turn.
// It is consumed immediately by the router and memory updater and never
// persisted as-is.
type Decision struct {
	Directive    state.Directive
	ModifyTarget string // section id when Directive is modify

	// Satisfaction is the model's reading of the user's rating.
	// nil means unknown (still collecting facts).
	Satisfaction *bool
	Feedback     string // the user's satisfaction feedback, verbatim

	// ShouldSave is true only when the last reply is a presentable
	// summary shown for confirmation, never while interrogating the
	// user for raw facts.
	ShouldSave bool

	// Fields holds structured answers extracted from the conversation,
	// keyed by the section's required field names.
	Fields map[string]string
}

// Default is the safe decision used whenever extraction fails: stay on
// the current section, satisfaction unknown, save nothing.
func Default() Decision {
	return Decision{Directive: state.DirectiveStay}
}

// Satisfied reports a known-true satisfaction.
func (d Decision) Satisfied() bool {
	return d.Satisfaction != nil && *d.Satisfaction
}

// Dissatisfied reports a known-false satisfaction.
func (d Decision) Dissatisfied() bool {
	return d.Satisfaction != nil && !*d.Satisfaction
}
