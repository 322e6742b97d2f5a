package synthesis

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/state"
	"ai-canvas-be/pkg/canvas/store"
	"ai-canvas-be/pkg/llm"
)

// AlreadyCompleteReply is returned for any message arriving after the
// deliverable exists. Post-completion input never re-synthesizes.
const AlreadyCompleteReply = "Your Value Canvas is already complete. You can review the final document any time, or start a new canvas to rework it from scratch."

// Synthesizer aggregates all confirmed section content into the final
// deliverable once every section is done.
type Synthesizer struct {
	catalog  *catalog.Catalog
	provider llm.Provider
	store    store.DeliverableStore
	logger   *log.Logger
}

func New(cat *catalog.Catalog, provider llm.Provider, deliverableStore store.DeliverableStore, logger *log.Logger) *Synthesizer {
	return &Synthesizer{
		catalog:  cat,
		provider: provider,
		store:    deliverableStore,
		logger:   logger,
	}
}

// Synthesize builds the deliverable, persists it, appends a closing
// message to history, and marks the conversation finished. Idempotent:
// once a deliverable exists it is returned as-is, never regenerated
// from further input.
func (s *Synthesizer) Synthesize(ctx context.Context, st *state.ConversationState) string {
	if st.Finished && st.Deliverable != "" {
		return st.Deliverable
	}

	skeleton := s.aggregate(st)
	deliverable := s.compose(ctx, skeleton)

	if s.store != nil {
		if err := s.store.SaveDeliverable(ctx, st.UserID, st.ThreadID, deliverable); err != nil {
			s.logger.Printf("[SYNTHESIS] Deliverable store write failed (kept in memory): %v", err)
			st.RecordError("deliverable store write failed: " + err.Error())
		}
	}

	st.Deliverable = deliverable
	st.Finished = true

	closing := fmt.Sprintf(
		"All sections are complete. Here is your finished Value Canvas:\n\n---\n\n%s\n\n---\n\nTest it in the market, then come back to refine any section.",
		deliverable,
	)
	st.AppendHistory(state.Turn{Role: "assistant", Content: closing, SectionID: st.CurrentSection})

	s.logger.Printf("[SYNTHESIS] Deliverable created for thread %s (%d chars)", st.ThreadID, len(deliverable))
	return deliverable
}

// aggregate concatenates the sections' plain-text projections under
// templated headers, in catalog order.
func (s *Synthesizer) aggregate(st *state.ConversationState) string {
	var sb strings.Builder
	sb.WriteString("# Value Canvas\n")
	for _, id := range s.catalog.Order() {
		def, _ := s.catalog.Get(id)
		sb.WriteString(fmt.Sprintf("\n## %s\n\n", def.Name))
		if sec, ok := st.SectionStates[id]; ok && sec.PlainText != "" {
			sb.WriteString(sec.PlainText)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// compose asks the model to turn the aggregated skeleton into a
// polished document. On failure the skeleton itself is the deliverable;
// synthesis never fails the turn.
func (s *Synthesizer) compose(ctx context.Context, skeleton string) string {
	prompt := fmt.Sprintf(`You are a professional copywriter finalizing a Value Canvas document.

Below is the confirmed content of every section. Rewrite it as one cohesive, well-structured Markdown document. Keep every header. Use only the data provided - no placeholders, no invented facts. Plain, direct language.

%s`, skeleton)

	composed, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		s.logger.Printf("[SYNTHESIS] Compose call failed, using aggregated content: %v", err)
		return skeleton
	}
	if strings.TrimSpace(composed) == "" {
		return skeleton
	}
	return composed
}
