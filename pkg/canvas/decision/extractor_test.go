package decision

import (
	"context"
	"io"
	"log"
	"testing"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/state"
	"ai-canvas-be/pkg/llm/scripted"
)

const summaryReply = "Here's your summary: a SaaS founder drowning in manual work. Rate your satisfaction 0-5."

func newTestState() *state.ConversationState {
	st := state.New("u", "t")
	st.CurrentSection = catalog.SectionInterview
	st.AppendHistory(state.Turn{Role: "assistant", Content: summaryReply})
	st.AppendHistory(state.Turn{Role: "user", Content: "5, spot on"})
	return st
}

func TestDecideSatisfiedAdvances(t *testing.T) {
	provider := scripted.NewProvider(`{
		"router_directive": "next",
		"is_satisfied": true,
		"user_satisfaction_feedback": "5, spot on",
		"should_save_content": true,
		"fields": {"client_name": "Dana"}
	}`)
	ex := New(provider, log.New(io.Discard, "", 0))
	st := newTestState()

	dec := ex.Decide(context.Background(), st, summaryReply)

	if dec.Directive != state.DirectiveNext {
		t.Errorf("directive = %s, want next", dec.Directive)
	}
	if !dec.Satisfied() {
		t.Error("decision should report satisfaction")
	}
	if !dec.ShouldSave {
		t.Error("confirmed summary should be saved")
	}
	if dec.Fields["client_name"] != "Dana" {
		t.Errorf("fields not carried: %v", dec.Fields)
	}
	if st.PendingDirective != state.DirectiveNext {
		t.Errorf("state directive = %s, want next", st.PendingDirective)
	}
}

func TestDecideDissatisfactionForcesStay(t *testing.T) {
	provider := scripted.NewProvider(`{
		"router_directive": "next",
		"is_satisfied": false,
		"user_satisfaction_feedback": "2, misses the point",
		"should_save_content": true,
		"fields": {}
	}`)
	ex := New(provider, log.New(io.Discard, "", 0))
	st := newTestState()

	dec := ex.Decide(context.Background(), st, summaryReply)

	// The model proposed next; the user's dissatisfaction wins.
	if dec.Directive != state.DirectiveStay {
		t.Errorf("directive = %s, want stay", dec.Directive)
	}
	if st.PendingDirective != state.DirectiveStay {
		t.Errorf("state directive = %s, want stay", st.PendingDirective)
	}
	if dec.Feedback != "2, misses the point" {
		t.Errorf("feedback = %q", dec.Feedback)
	}
}

func TestDecideModifyTarget(t *testing.T) {
	provider := scripted.NewProvider(`{
		"router_directive": "modify:icp",
		"is_satisfied": null,
		"user_satisfaction_feedback": "",
		"should_save_content": false,
		"fields": {}
	}`)
	ex := New(provider, log.New(io.Discard, "", 0))
	st := newTestState()

	dec := ex.Decide(context.Background(), st, "Sure, let's revisit the persona.")

	if dec.Directive != state.DirectiveModify {
		t.Errorf("directive = %s, want modify", dec.Directive)
	}
	if dec.ModifyTarget != "icp" {
		t.Errorf("target = %q, want icp", dec.ModifyTarget)
	}
	if st.ModifyTarget != "icp" {
		t.Errorf("state target = %q, want icp", st.ModifyTarget)
	}
}

func TestDecideMalformedOutputDefaults(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "no json at all", response: "I think we should move on."},
		{name: "broken json", response: `{"router_directive": "next", "is_satisfied":`},
		{name: "modify without target", response: `{"router_directive": "modify:", "fields": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := New(scripted.NewProvider(tt.response), log.New(io.Discard, "", 0))
			st := newTestState()

			dec := ex.Decide(context.Background(), st, summaryReply)

			if dec.Directive != state.DirectiveStay {
				t.Errorf("directive = %s, want stay", dec.Directive)
			}
			if dec.ShouldSave {
				t.Error("default decision must not save")
			}
			if st.ErrorCount != 1 {
				t.Errorf("ErrorCount = %d, want 1", st.ErrorCount)
			}
		})
	}
}

func TestDecideProviderFailureDefaults(t *testing.T) {
	provider := scripted.NewProvider() // exhausted: every call errors
	ex := New(provider, log.New(io.Discard, "", 0))
	st := newTestState()

	dec := ex.Decide(context.Background(), st, summaryReply)

	if dec.Directive != state.DirectiveStay {
		t.Errorf("directive = %s, want stay", dec.Directive)
	}
	if st.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", st.ErrorCount)
	}
}

func TestDecideEmptyReplySkipsModelCall(t *testing.T) {
	provider := scripted.NewProvider(`{"router_directive": "next"}`)
	ex := New(provider, log.New(io.Discard, "", 0))
	st := newTestState()

	dec := ex.Decide(context.Background(), st, "   ")

	if dec.Directive != state.DirectiveStay {
		t.Errorf("directive = %s, want stay", dec.Directive)
	}
	if provider.Calls() != 0 {
		t.Errorf("model was called %d times for an empty reply", provider.Calls())
	}
}

func TestDecideRevokesSaveOnNonSummaryReply(t *testing.T) {
	provider := scripted.NewProvider(`{
		"router_directive": "stay",
		"is_satisfied": null,
		"user_satisfaction_feedback": "",
		"should_save_content": true,
		"fields": {}
	}`)
	ex := New(provider, log.New(io.Discard, "", 0))
	st := newTestState()

	dec := ex.Decide(context.Background(), st, "What industry is your business in?")

	if dec.ShouldSave {
		t.Error("save must be revoked when the reply is a plain question")
	}
	if dec.Directive != state.DirectiveStay {
		t.Errorf("directive = %s, want stay", dec.Directive)
	}
}

func TestDecideJSONWrappedInProse(t *testing.T) {
	provider := scripted.NewProvider("Sure! Here is the decision:\n```json\n" +
		`{"router_directive": "stay", "is_satisfied": null, "user_satisfaction_feedback": "", "should_save_content": false, "fields": {"industry": "fitness coaching"}}` +
		"\n```\nLet me know if you need anything else.")
	ex := New(provider, log.New(io.Discard, "", 0))
	st := newTestState()

	dec := ex.Decide(context.Background(), st, summaryReply)

	if dec.Fields["industry"] != "fitness coaching" {
		t.Errorf("fields not extracted from wrapped JSON: %v", dec.Fields)
	}
	if st.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", st.ErrorCount)
	}
}
