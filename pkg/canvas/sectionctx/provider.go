package sectionctx

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/state"
	"ai-canvas-be/pkg/canvas/store"
)

// Provider renders the prompt context for a section: the base rules plus
// the section template with placeholders filled from previously
// collected answers, and any draft saved on an earlier pass.
type Provider struct {
	catalog *catalog.Catalog
	store   store.SectionStore
	logger  *log.Logger
}

func NewProvider(cat *catalog.Catalog, sectionStore store.SectionStore, logger *log.Logger) *Provider {
	return &Provider{
		catalog: cat,
		store:   sectionStore,
		logger:  logger,
	}
}

var placeholderRe = regexp.MustCompile(`\{([a-z0-9_]+)\}`)

// GetContext builds the context packet for one section. A missing
// placeholder renders as empty string, never as an error: later
// sections reference earlier answers, and an unanswered field must not
// block loading the section.
func (p *Provider) GetContext(
	ctx context.Context,
	userID, threadID string,
	sectionID catalog.SectionID,
	collected map[string]string,
) (*state.ContextPacket, error) {

	def, ok := p.catalog.Get(sectionID)
	if !ok {
		return nil, fmt.Errorf("unknown section id: %s", sectionID)
	}

	values := withDerived(collected)
	sectionPrompt := placeholderRe.ReplaceAllStringFunc(def.PromptTemplate, func(m string) string {
		key := m[1 : len(m)-1]
		return values[key]
	})

	packet := &state.ContextPacket{
		SectionID:    sectionID,
		Status:       catalog.StatusPending,
		SystemPrompt: catalog.BaseRules + "\n\n---\n\n" + sectionPrompt,
	}

	// Load any previously saved draft so a revisited section resumes
	// from its stored content instead of starting over.
	if p.store != nil {
		rec, err := p.store.GetSection(ctx, userID, threadID, sectionID)
		if err != nil {
			p.logger.Printf("[CONTEXT] Draft fetch failed for %s (continuing without): %v", sectionID, err)
		} else if rec != nil {
			packet.Status = rec.Status
			if !rec.Content.IsEmpty() {
				packet.Draft = &state.SectionState{
					SectionID:    sectionID,
					Content:      rec.Content,
					PlainText:    rec.Content.PlainText(),
					Status:       rec.Status,
					Satisfaction: rec.Satisfaction,
				}
			}
		}
	}

	return packet, nil
}

// withDerived augments collected answers with composite placeholders
// that span multiple fields.
func withDerived(collected map[string]string) map[string]string {
	values := make(map[string]string, len(collected)+1)
	for k, v := range collected {
		values[k] = v
	}

	if _, ok := values["pain_summary"]; !ok {
		var pains []string
		for _, key := range []string{"pain_1", "pain_2", "pain_3"} {
			if v := strings.TrimSpace(collected[key]); v != "" {
				pains = append(pains, "- "+v)
			}
		}
		values["pain_summary"] = strings.Join(pains, "\n")
	}

	return values
}
