package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/decision"
	"ai-canvas-be/pkg/canvas/document"
	"ai-canvas-be/pkg/canvas/state"
	"ai-canvas-be/pkg/canvas/store"
)

// forceNextThreshold is the no-progress safety counter: after this many
// consecutive turns resolving to stay with nothing saved, the directive
// is forced to next so a section can never stall the conversation
// forever.
const forceNextThreshold = 3

// Updater persists confirmed section content and applies the
// no-progress safety counter. Local state stays authoritative even when
// the store is unavailable.
type Updater struct {
	catalog *catalog.Catalog
	store   store.SectionStore
	logger  *log.Logger
}

func New(cat *catalog.Catalog, sectionStore store.SectionStore, logger *log.Logger) *Updater {
	return &Updater{
		catalog: cat,
		store:   sectionStore,
		logger:  logger,
	}
}

// Persist applies the decision's persistence consequences to the state.
//
// Branch A: the decision carries structured content (a confirmed
// summary) - persist it and update local state even if the store fails.
// Branch B: no content but a known satisfaction verdict - recover the
// last presentable summary from history; without recoverable content
// the save is aborted rather than writing an empty section.
// Branch C: neither - only the stay counter moves.
func (u *Updater) Persist(ctx context.Context, st *state.ConversationState, dec decision.Decision, lastReply string) {
	switch {
	case dec.ShouldSave:
		u.persistStructured(ctx, st, dec, lastReply)
	case dec.Satisfaction != nil:
		u.persistRecovered(ctx, st, dec)
	default:
		u.applyStayCounter(st)
	}
}

// persistStructured is Branch A.
func (u *Updater) persistStructured(ctx context.Context, st *state.ConversationState, dec decision.Decision, lastReply string) {
	sectionID := st.CurrentSection
	dec.Fields = u.validFields(sectionID, dec.Fields)
	doc := contentFromDecision(dec, lastReply)
	if doc.IsEmpty() {
		// Should not happen given the extractor's summary check, but
		// the no-empty-save rule holds here too.
		u.logger.Printf("[MEMORY] Branch A produced empty content for %s, aborting save", sectionID)
		u.applyStayCounter(st)
		return
	}

	status := statusFromDecision(dec)
	u.saveAndUpdate(ctx, st, sectionID, doc, status, dec.Feedback)

	// Collected answers feed placeholder interpolation in later
	// sections' prompts.
	for field, value := range dec.Fields {
		if strings.TrimSpace(value) != "" {
			st.Collected[field] = value
		}
	}

	u.markTriggeredSave(st)
	st.ConsecutiveStays = 0
	u.logger.Printf("[MEMORY] Section %s saved with structured content (status=%s)", sectionID, status)
}

// persistRecovered is Branch B.
func (u *Updater) persistRecovered(ctx context.Context, st *state.ConversationState, dec decision.Decision) {
	sectionID := st.CurrentSection

	var doc document.Document
	if sec, ok := st.SectionStates[sectionID]; ok && !sec.Content.IsEmpty() {
		doc = sec.Content
	} else if summary, ok := u.recoverSummary(st); ok {
		doc = document.FromPlainText(summary)
	}

	if doc.IsEmpty() {
		// Hard invariant: a section is never persisted without real
		// content, even when satisfaction data exists.
		u.logger.Printf("[MEMORY] No recoverable content for %s, aborting save", sectionID)
		st.RecordError(fmt.Sprintf("save aborted for %s: no recoverable content", sectionID))
		u.applyStayCounter(st)
		return
	}

	status := statusFromDecision(dec)
	u.saveAndUpdate(ctx, st, sectionID, doc, status, dec.Feedback)
	st.ConsecutiveStays = 0
	u.logger.Printf("[MEMORY] Section %s saved from recovered summary (status=%s)", sectionID, status)
}

// validFields filters extracted field values through the section's
// validation rules. A value that fails its rule is dropped rather than
// persisted: the model will be asked for it again on a later pass.
func (u *Updater) validFields(sectionID catalog.SectionID, fields map[string]string) map[string]string {
	def, ok := u.catalog.Get(sectionID)
	if !ok || len(def.ValidationRules) == 0 || len(fields) == 0 {
		return fields
	}
	for _, rule := range def.ValidationRules {
		value, present := fields[rule.FieldName]
		if !present {
			continue
		}
		if err := rule.Validate(value); err != nil {
			u.logger.Printf("[MEMORY] Field %s rejected for %s: %v", rule.FieldName, sectionID, err)
			delete(fields, rule.FieldName)
		}
	}
	return fields
}

// applyStayCounter is Branch C.
func (u *Updater) applyStayCounter(st *state.ConversationState) {
	if st.PendingDirective != state.DirectiveStay {
		return
	}
	st.ConsecutiveStays++
	if st.ConsecutiveStays >= forceNextThreshold {
		u.logger.Printf("[MEMORY] %d stays without progress on %s, forcing next", st.ConsecutiveStays, st.CurrentSection)
		st.PendingDirective = state.DirectiveNext
		st.ForcedAdvance = true
		st.ConsecutiveStays = 0
	}
}

// saveAndUpdate writes to the store and mirrors the result into local
// state. A store failure is logged and swallowed: in-memory state is
// authoritative for the remainder of the session.
func (u *Updater) saveAndUpdate(
	ctx context.Context,
	st *state.ConversationState,
	sectionID catalog.SectionID,
	doc document.Document,
	status catalog.SectionStatus,
	feedback string,
) {
	if u.store != nil {
		err := u.store.SaveSection(ctx, store.SectionRecord{
			UserID:       st.UserID,
			ThreadID:     st.ThreadID,
			SectionID:    sectionID,
			Content:      doc,
			PlainText:    doc.PlainText(),
			Status:       status,
			Satisfaction: feedback,
		})
		if err != nil {
			u.logger.Printf("[MEMORY] Store write failed for %s (local state kept): %v", sectionID, err)
			st.RecordError("section store write failed: " + err.Error())
		}
	}

	sec := st.Section(sectionID)
	sec.Content = doc
	sec.PlainText = doc.PlainText()
	sec.Status = status
	sec.Satisfaction = feedback
}

// recoverSummary scans history backward for the last assistant turn
// that presented a summary with a rating request.
func (u *Updater) recoverSummary(st *state.ConversationState) (string, bool) {
	for i := len(st.History) - 1; i >= 0; i-- {
		turn := st.History[i]
		if turn.Role != "assistant" {
			continue
		}
		lower := strings.ToLower(turn.Content)
		if strings.Contains(lower, "summary") &&
			(strings.Contains(lower, "satisfied") || strings.Contains(lower, "rate") || strings.Contains(lower, "0-5")) {
			u.logger.Printf("[MEMORY] Recovered summary from history (turn %d)", i)
			return turn.Content, true
		}
	}
	return "", false
}

// markTriggeredSave tags the newest assistant turn so a later recovery
// scan can identify which summary was confirmed.
func (u *Updater) markTriggeredSave(st *state.ConversationState) {
	for i := len(st.History) - 1; i >= 0; i-- {
		if st.History[i].Role == "assistant" {
			st.History[i].TriggeredSave = true
			return
		}
	}
}

// statusFromDecision: moving on or an explicit satisfied verdict means
// the section is done; anything else leaves it in progress.
func statusFromDecision(dec decision.Decision) catalog.SectionStatus {
	if dec.Directive == state.DirectiveNext || dec.Satisfied() {
		return catalog.StatusDone
	}
	return catalog.StatusInProgress
}

// contentFromDecision builds the section document: structured fields
// when present, otherwise the summary text itself.
func contentFromDecision(dec decision.Decision, lastReply string) document.Document {
	if len(dec.Fields) > 0 {
		var lines []string
		for _, field := range sortedKeys(dec.Fields) {
			value := strings.TrimSpace(dec.Fields[field])
			if value == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %s", field, value))
		}
		if len(lines) > 0 {
			return document.FromPlainText(strings.Join(lines, "\n"))
		}
	}
	return document.FromPlainText(lastReply)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AllSectionsDone reports whether every catalog section is done.
func (u *Updater) AllSectionsDone(st *state.ConversationState) bool {
	statuses := st.Statuses()
	for _, id := range u.catalog.Order() {
		if statuses[id] != catalog.StatusDone {
			return false
		}
	}
	return true
}

// closingPhrases signal the user considers the canvas complete.
var closingPhrases = []string{
	"looks good", "we're done", "we are done", "that's everything",
	"finish", "complete", "all set", "wrap it up",
}

// CompletionSignaled reports whether the final section's confirmation
// has been observed: an explicit satisfied verdict, or an equivalent
// closing phrase in the latest user message. The scan runs after the
// reply is already in history, so it walks back to the newest user turn.
func (u *Updater) CompletionSignaled(st *state.ConversationState, dec decision.Decision) bool {
	if dec.Satisfied() || dec.Directive == state.DirectiveNext {
		return true
	}
	for i := len(st.History) - 1; i >= 0; i-- {
		if st.History[i].Role != "user" {
			continue
		}
		lower := strings.ToLower(st.History[i].Content)
		for _, phrase := range closingPhrases {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
		break
	}
	return false
}
