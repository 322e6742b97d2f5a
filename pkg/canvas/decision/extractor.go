package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-canvas-be/pkg/canvas/state"
	"ai-canvas-be/pkg/llm"
)

// Extractor runs the second, independent model invocation of a turn:
// classifying the just-produced exchange into a structured Decision.
// Every failure path degrades to Default() - extraction errors are
// never surfaced as user-visible routing.
type Extractor struct {
	provider llm.Provider
	logger   *log.Logger
}

func New(provider llm.Provider, logger *log.Logger) *Extractor {
	return &Extractor{
		provider: provider,
		logger:   logger,
	}
}

// rawDecision is the wire shape the model is asked to emit.
type rawDecision struct {
	RouterDirective          string            `json:"router_directive"`
	IsSatisfied              *bool             `json:"is_satisfied"`
	UserSatisfactionFeedback string            `json:"user_satisfaction_feedback"`
	ShouldSaveContent        bool              `json:"should_save_content"`
	Fields                   map[string]string `json:"fields"`
}

// Decide analyzes the conversation plus the latest reply and produces a
// Decision, applying the safety rails:
//
//  1. satisfaction=false forces the directive to stay, whatever the
//     model proposed - user dissatisfaction always wins;
//  2. shouldSave is revoked when the reply being confirmed does not
//     actually look like a presentable summary;
//  3. any extraction failure produces the default decision.
//
// The decision is also applied to the state's pending directive and the
// awaiting-input flag.
func (e *Extractor) Decide(ctx context.Context, st *state.ConversationState, latestReply string) Decision {
	if strings.TrimSpace(latestReply) == "" {
		e.logger.Printf("[DECISION] No reply to analyze, defaulting to stay")
		return e.apply(st, Default(), latestReply)
	}

	prompt := e.buildPrompt(st, latestReply)

	raw, err := e.provider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		e.logger.Printf("[DECISION] Extraction call failed: %v", err)
		st.RecordError("decision extraction failed: " + err.Error())
		return e.apply(st, Default(), latestReply)
	}

	dec, err := parseDecision(raw)
	if err != nil {
		e.logger.Printf("[DECISION] Malformed decision output, using default: %v", err)
		st.RecordError("decision output malformed: " + err.Error())
		return e.apply(st, Default(), latestReply)
	}

	return e.apply(st, dec, latestReply)
}

// apply enforces the safety rails and mirrors the decision onto state.
func (e *Extractor) apply(st *state.ConversationState, dec Decision, latestReply string) Decision {
	// Rail 1: dissatisfaction always wins.
	if dec.Dissatisfied() && dec.Directive != state.DirectiveStay {
		e.logger.Printf("[DECISION] User not satisfied, forcing stay (model proposed %s)", dec.Directive)
		dec.Directive = state.DirectiveStay
		dec.ModifyTarget = ""
	}

	// Rail 2: a save request only stands when the reply is a summary
	// being shown for confirmation. Asking for a rating with nothing to
	// confirm would persist junk and loop the section.
	if dec.ShouldSave && !looksLikeSummary(latestReply) {
		e.logger.Printf("[DECISION] Save requested but reply is not a presentable summary, revoking")
		dec.ShouldSave = false
		if !dec.Satisfied() {
			dec.Directive = state.DirectiveStay
			dec.ModifyTarget = ""
		}
	}

	// A known satisfaction verdict overrides the raw directive:
	// satisfied moves on, dissatisfied stays put.
	if dec.Satisfaction != nil && dec.Directive != state.DirectiveModify {
		if dec.Satisfied() {
			dec.Directive = state.DirectiveNext
		} else {
			dec.Directive = state.DirectiveStay
		}
	}

	st.PendingDirective = dec.Directive
	st.ModifyTarget = dec.ModifyTarget

	// Expecting user input next when staying without a verdict.
	st.AwaitingUserInput = dec.Directive == state.DirectiveStay && dec.Satisfaction == nil

	return dec
}

func (e *Extractor) buildPrompt(st *state.ConversationState, latestReply string) string {
	var sb strings.Builder

	sb.WriteString("You are analyzing a guided-interview conversation to make a routing decision.\n\n")
	sb.WriteString(fmt.Sprintf("CURRENT SECTION: %s\n", st.CurrentSection))
	sb.WriteString(fmt.Sprintf("LAST ASSISTANT REPLY:\n%s\n\n", latestReply))

	if st.ContextPacket != nil {
		sb.WriteString("SECTION RULES (the full prompt governing this section - study it to know when content should be saved):\n---\n")
		sb.WriteString(st.ContextPacket.SystemPrompt)
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("CONVERSATION HISTORY:\n")
	sb.WriteString(formatHistory(st.History))
	sb.WriteString("\n")

	sb.WriteString(`DECISION RULES:
1. "router_directive" is "stay" while still collecting facts or refining, "next" when the user confirmed satisfaction with a presented summary, or "modify:<section_id>" only when the user explicitly asked to work on a different section.
2. "is_satisfied" is true/false ONLY when the user just responded to a satisfaction rating request (4-5 means true, 0-3 means false); otherwise null.
3. "should_save_content" is true ONLY when the last assistant reply presents a section summary for confirmation. It is never true while still asking for raw facts.
4. "fields" holds the section's collected answers as short strings keyed by field name, only for fields with real user data. Never invent values.

Respond with ONLY valid JSON:
{
  "router_directive": "stay",
  "is_satisfied": null,
  "user_satisfaction_feedback": "",
  "should_save_content": false,
  "fields": {}
}`)

	return sb.String()
}

func formatHistory(history []state.Turn) string {
	// The full log can be long; the decision needs recency, not volume.
	const window = 30
	if len(history) > window {
		history = history[len(history)-window:]
	}
	var sb strings.Builder
	for _, turn := range history {
		role := "User"
		if turn.Role == "assistant" {
			role = "Assistant"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", role, turn.Content))
	}
	return sb.String()
}

// parseDecision extracts and strictly decodes the JSON decision. Any
// schema violation is an error handled by the caller's default branch,
// never a crash.
func parseDecision(response string) (Decision, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return Decision{}, fmt.Errorf("no JSON object in response")
	}

	var raw rawDecision
	decoder := json.NewDecoder(strings.NewReader(jsonContent))
	if err := decoder.Decode(&raw); err != nil {
		return Decision{}, fmt.Errorf("decode decision: %w", err)
	}

	directive, target := state.ParseDirective(raw.RouterDirective)
	if directive == state.DirectiveModify && target == "" {
		return Decision{}, fmt.Errorf("modify directive without a target section")
	}

	return Decision{
		Directive:    directive,
		ModifyTarget: target,
		Satisfaction: raw.IsSatisfied,
		Feedback:     strings.TrimSpace(raw.UserSatisfactionFeedback),
		ShouldSave:   raw.ShouldSaveContent,
		Fields:       raw.Fields,
	}, nil
}

func extractJSON(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return response[start : end+1]
}

// summaryMarkers are the phrases a confirmation summary reliably
// carries. Used to veto save requests on non-summary replies.
var summaryMarkers = []string{
	"here's what i gathered",
	"here's what i've gathered",
	"here's your summary",
	"here's the summary",
	"summary",
	"rate",
	"0-5",
	"0 to 5",
	"satisfied",
}

func looksLikeSummary(reply string) bool {
	lower := strings.ToLower(reply)
	for _, marker := range summaryMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
