package state

import (
	"strings"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/document"
)

// Directive is the routing instruction resolved once per turn.
// "modify" targets carry the section id separately (see ParseDirective).
type Directive string

const (
	DirectiveStay   Directive = "stay"
	DirectiveNext   Directive = "next"
	DirectiveModify Directive = "modify"

	directiveModifyPrefix = "modify:"
)

// ParseDirective splits a raw directive string into its verb and, for
// modify, the target section id. Unknown verbs come back as stay so a
// malformed model output can never route anywhere.
func ParseDirective(raw string) (Directive, string) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(strings.ToLower(raw), directiveModifyPrefix):
		return DirectiveModify, strings.TrimSpace(raw[len(directiveModifyPrefix):])
	case strings.EqualFold(raw, string(DirectiveNext)):
		return DirectiveNext, ""
	default:
		return DirectiveStay, ""
	}
}

// Turn is one message in the conversation, tagged with the section that
// was active when it was produced.
type Turn struct {
	Role      string            `json:"role"` // "user" or "assistant"
	Content   string            `json:"content"`
	SectionID catalog.SectionID `json:"section_id,omitempty"`

	// TriggeredSave marks the assistant summary whose confirmation was
	// persisted, so a later history scan can find it again.
	TriggeredSave bool `json:"triggered_save,omitempty"`
}

// SectionState is the per-thread progress record for one section.
type SectionState struct {
	SectionID    catalog.SectionID     `json:"section_id"`
	Content      document.Document     `json:"content"`
	PlainText    string                `json:"plain_text,omitempty"`
	Status       catalog.SectionStatus `json:"status"`
	Satisfaction string                `json:"satisfaction,omitempty"` // free-text feedback from the user
}

// ContextPacket is the rendered prompt context for the active section,
// loaded from the section-context provider whenever the section changes.
type ContextPacket struct {
	SectionID    catalog.SectionID     `json:"section_id"`
	Status       catalog.SectionStatus `json:"status"`
	SystemPrompt string                `json:"system_prompt"`
	Draft        *SectionState         `json:"draft,omitempty"`
}

// maxShortMemory bounds the recent-turn window fed to the LLM.
const maxShortMemory = 20

// ConversationState is the mutable per-thread record the pipeline
// operates on. One turn owns it exclusively for the duration of a pass;
// it is never shared across goroutines.
type ConversationState struct {
	UserID   string `json:"user_id"`
	ThreadID string `json:"thread_id"`

	CurrentSection catalog.SectionID                       `json:"current_section"`
	SectionStates  map[catalog.SectionID]*SectionState     `json:"section_states"`
	Collected      map[string]string                       `json:"collected"` // cross-section structured answers for template interpolation

	ShortMemory []Turn `json:"short_memory"`
	History     []Turn `json:"history"`

	ContextPacket *ContextPacket `json:"context_packet,omitempty"`

	PendingDirective Directive `json:"pending_directive"`
	ModifyTarget     string    `json:"modify_target,omitempty"`

	// ForcedAdvance marks a next directive issued by the no-progress
	// safety counter rather than the decision, so routing knows to
	// move past the stuck section instead of resolving back to it.
	ForcedAdvance bool `json:"forced_advance,omitempty"`

	AwaitingUserInput bool `json:"awaiting_user_input"`
	Finished          bool `json:"finished"`

	ConsecutiveStays int    `json:"consecutive_stays"`
	ErrorCount       int    `json:"error_count"`
	LastError        string `json:"last_error,omitempty"`

	Deliverable string `json:"deliverable,omitempty"`
}

// New creates the state for a fresh thread. The first pipeline pass sees
// a pending "next" directive so the router loads the opening section.
func New(userID, threadID string) *ConversationState {
	return &ConversationState{
		UserID:           userID,
		ThreadID:         threadID,
		SectionStates:    make(map[catalog.SectionID]*SectionState),
		Collected:        make(map[string]string),
		PendingDirective: DirectiveNext,
	}
}

// Section returns the state for a section, creating a pending record on
// first touch.
func (s *ConversationState) Section(id catalog.SectionID) *SectionState {
	if st, ok := s.SectionStates[id]; ok {
		return st
	}
	st := &SectionState{
		SectionID: id,
		Content:   document.Empty(),
		Status:    catalog.StatusPending,
	}
	s.SectionStates[id] = st
	return st
}

// Statuses projects the per-section statuses for catalog scans.
func (s *ConversationState) Statuses() map[catalog.SectionID]catalog.SectionStatus {
	out := make(map[catalog.SectionID]catalog.SectionStatus, len(s.SectionStates))
	for id, st := range s.SectionStates {
		out[id] = st.Status
	}
	return out
}

// AppendHistory records a turn in the durable message log.
func (s *ConversationState) AppendHistory(t Turn) {
	s.History = append(s.History, t)
}

// AppendShortMemory records a turn in the bounded recent window,
// dropping the oldest turns beyond the cap.
func (s *ConversationState) AppendShortMemory(t Turn) {
	s.ShortMemory = append(s.ShortMemory, t)
	if len(s.ShortMemory) > maxShortMemory {
		s.ShortMemory = s.ShortMemory[len(s.ShortMemory)-maxShortMemory:]
	}
}

// ClearShortMemory resets the recent window. Called on every section
// change so a new section starts from its own prompt, not leftovers.
func (s *ConversationState) ClearShortMemory() {
	s.ShortMemory = nil
}

// LastUserTurn returns the most recent user message if it has not been
// answered yet (i.e. it is the final entry in history).
func (s *ConversationState) LastUserTurn() (Turn, bool) {
	if len(s.History) == 0 {
		return Turn{}, false
	}
	last := s.History[len(s.History)-1]
	if last.Role != "user" {
		return Turn{}, false
	}
	return last, true
}

// RecordError notes a non-fatal failure for observability.
func (s *ConversationState) RecordError(msg string) {
	s.ErrorCount++
	s.LastError = msg
}

// SectionStatusView is the snapshot row exposed to the delivery layer
// for progress display.
type SectionStatusView struct {
	SectionID catalog.SectionID     `json:"section_id"`
	Name      string                `json:"name"`
	Status    catalog.SectionStatus `json:"status"`
}

// Snapshot builds the progress view in catalog order.
func (s *ConversationState) Snapshot(cat *catalog.Catalog) []SectionStatusView {
	views := make([]SectionStatusView, 0, cat.Len())
	for _, id := range cat.Order() {
		def, _ := cat.Get(id)
		status := catalog.StatusPending
		if st, ok := s.SectionStates[id]; ok {
			status = st.Status
		}
		views = append(views, SectionStatusView{SectionID: id, Name: def.Name, Status: status})
	}
	return views
}

// CompletedCount counts sections whose status is done.
func (s *ConversationState) CompletedCount() int {
	n := 0
	for _, st := range s.SectionStates {
		if st.Status == catalog.StatusDone {
			n++
		}
	}
	return n
}
