package reply

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/state"
	"ai-canvas-be/pkg/llm"
)

// FallbackReply is sent when the model call fails. The conversation
// still advances; the orchestrator never stalls on a single LLM error.
const FallbackReply = "Sorry, I ran into a problem composing my response. Could you rephrase that for me?"

// Generator produces the next user-facing message for the active
// section.
type Generator struct {
	catalog  *catalog.Catalog
	provider llm.Provider
	logger   *log.Logger
}

func New(cat *catalog.Catalog, provider llm.Provider, logger *log.Logger) *Generator {
	return &Generator{
		catalog:  cat,
		provider: provider,
		logger:   logger,
	}
}

// Generate assembles the prompt, invokes the model once, and records
// the reply in durable history and short memory. The returned string
// is the user-visible text (possibly the fallback).
func (g *Generator) Generate(ctx context.Context, st *state.ConversationState) string {
	messages := g.buildMessages(st)

	lastUser, hadPendingUser := st.LastUserTurn()

	text, err := g.provider.Chat(ctx, messages)
	if err != nil {
		g.logger.Printf("[REPLY] Generation failed for section %s: %v", st.CurrentSection, err)
		st.RecordError("reply generation failed: " + err.Error())
		text = FallbackReply
	} else {
		text = unwrapJSONReply(text, g.logger)
	}

	turn := state.Turn{
		Role:      "assistant",
		Content:   text,
		SectionID: st.CurrentSection,
	}
	st.AppendHistory(turn)
	if hadPendingUser {
		st.AppendShortMemory(lastUser)
	}
	st.AppendShortMemory(turn)

	return text
}

// buildMessages assembles the LLM input in a fixed order: the section
// system prompt, a progress banner, a fresh-section guard, the short
// memory window, and the still-unanswered user message.
func (g *Generator) buildMessages(st *state.ConversationState) []llm.Message {
	var messages []llm.Message

	if st.ContextPacket != nil {
		messages = append(messages, llm.Message{Role: "system", Content: st.ContextPacket.SystemPrompt})
		messages = append(messages, llm.Message{Role: "system", Content: g.progressBanner(st)})

		// A section with no saved content must not inherit data from
		// earlier sections: the model is told to collect, not invent.
		sec, hasState := st.SectionStates[st.CurrentSection]
		if !hasState || sec.Content.IsEmpty() {
			messages = append(messages, llm.Message{Role: "system", Content: fmt.Sprintf(
				"IMPORTANT: You are now in the %s section and it has no content yet. "+
					"Follow the section prompt's conversation flow from the start. "+
					"Do not fabricate content for this section from other sections' data.",
				st.CurrentSection,
			)})
		} else if st.ContextPacket.Draft != nil {
			messages = append(messages, llm.Message{Role: "system", Content: fmt.Sprintf(
				"The section already has a saved draft:\n%s\nOffer to refine it rather than starting over.",
				st.ContextPacket.Draft.PlainText,
			)})
		}
	}

	for _, turn := range st.ShortMemory {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	if lastUser, ok := st.LastUserTurn(); ok {
		// Only append if short memory does not already end with it.
		if n := len(st.ShortMemory); n == 0 || st.ShortMemory[n-1] != lastUser {
			messages = append(messages, llm.Message{Role: "user", Content: lastUser.Content})
		}
	}

	messages = append(messages, llm.Message{
		Role:    "system",
		Content: "OVERRIDE: Reply with natural conversational prose only. Do NOT output JSON.",
	})

	return messages
}

func (g *Generator) progressBanner(st *state.ConversationState) string {
	var completed []string
	for _, id := range g.catalog.Order() {
		if sec, ok := st.SectionStates[id]; ok && sec.Status == catalog.StatusDone {
			def, _ := g.catalog.Get(id)
			completed = append(completed, def.Name)
		}
	}

	current := string(st.CurrentSection)
	if def, ok := g.catalog.Get(st.CurrentSection); ok {
		current = def.Name
	}

	banner := fmt.Sprintf("SYSTEM STATUS:\n- Total sections: %d\n- Completed: %d sections", g.catalog.Len(), len(completed))
	if len(completed) > 0 {
		banner += fmt.Sprintf(" (%s)", strings.Join(completed, ", "))
	}
	banner += fmt.Sprintf("\n- Currently working on: %s", current)
	return banner
}

// unwrapJSONReply recovers prose from a model that ignored the no-JSON
// instruction. If the output parses as a JSON object with a "reply"
// field, that field wins; otherwise the raw text is kept.
func unwrapJSONReply(text string, logger *log.Logger) string {
	trimmed := strings.TrimSpace(text)
	if !strings.Contains(trimmed, "```json") && !strings.HasPrefix(trimmed, "{") {
		return text
	}

	cleaned := strings.ReplaceAll(trimmed, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		logger.Printf("[REPLY] JSON-looking reply did not parse, keeping raw text: %v", err)
		return text
	}
	if replyField, ok := payload["reply"].(string); ok && replyField != "" {
		logger.Printf("[REPLY] Extracted reply field from JSON output")
		return replyField
	}
	logger.Printf("[REPLY] JSON output had no reply field, keeping raw text")
	return text
}
