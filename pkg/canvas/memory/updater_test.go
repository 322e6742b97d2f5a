package memory

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/decision"
	"ai-canvas-be/pkg/canvas/state"
	"ai-canvas-be/pkg/canvas/store"
)

func newTestUpdater() (*Updater, *store.InMemoryStore) {
	memStore := store.NewInMemoryStore()
	u := New(catalog.ValueCanvas(), memStore, log.New(io.Discard, "", 0))
	return u, memStore
}

func boolPtr(b bool) *bool { return &b }

func TestPersistStructuredSave(t *testing.T) {
	u, memStore := newTestUpdater()
	st := state.New("u", "t")
	st.CurrentSection = catalog.SectionInterview
	st.PendingDirective = state.DirectiveNext
	st.AppendHistory(state.Turn{Role: "assistant", Content: "Here's your summary, rate it 0-5."})
	st.AppendHistory(state.Turn{Role: "user", Content: "5"})

	dec := decision.Decision{
		Directive:    state.DirectiveNext,
		Satisfaction: boolPtr(true),
		Feedback:     "5",
		ShouldSave:   true,
		Fields: map[string]string{
			"client_name":  "Dana",
			"company_name": "Studio North",
			"industry":     "fitness coaching",
		},
	}

	u.Persist(context.Background(), st, dec, "Here's your summary, rate it 0-5.")

	if memStore.Saves != 1 {
		t.Fatalf("store saves = %d, want 1", memStore.Saves)
	}

	sec := st.Section(catalog.SectionInterview)
	if sec.Status != catalog.StatusDone {
		t.Errorf("section status = %s, want done", sec.Status)
	}
	if !strings.Contains(sec.PlainText, "client_name: Dana") {
		t.Errorf("content missing structured field: %q", sec.PlainText)
	}
	if sec.Satisfaction != "5" {
		t.Errorf("satisfaction = %q, want 5", sec.Satisfaction)
	}

	// Collected answers feed later sections' prompt placeholders.
	if st.Collected["industry"] != "fitness coaching" {
		t.Errorf("collected = %v", st.Collected)
	}
	// The confirmed summary turn is tagged for later recovery scans.
	if !st.History[0].TriggeredSave {
		t.Error("assistant summary turn not marked as triggering the save")
	}
	if st.ConsecutiveStays != 0 {
		t.Errorf("stay counter = %d, want 0", st.ConsecutiveStays)
	}
}

func TestPersistDropsInvalidFields(t *testing.T) {
	u, memStore := newTestUpdater()
	st := state.New("u", "t")
	st.CurrentSection = catalog.SectionICP
	st.AppendHistory(state.Turn{Role: "assistant", Content: "Persona summary, rate it 0-5."})

	dec := decision.Decision{
		Directive:  state.DirectiveStay,
		ShouldSave: true,
		Fields: map[string]string{
			"icp_nickname":       "The Overbooked Coach",
			"icp_golden_insight": "too short", // fails the min_length rule
		},
	}

	u.Persist(context.Background(), st, dec, "Persona summary, rate it 0-5.")

	if memStore.Saves != 1 {
		t.Fatalf("store saves = %d, want 1", memStore.Saves)
	}
	sec := st.Section(catalog.SectionICP)
	if !strings.Contains(sec.PlainText, "The Overbooked Coach") {
		t.Errorf("valid field missing from content: %q", sec.PlainText)
	}
	if strings.Contains(sec.PlainText, "too short") {
		t.Errorf("invalid field persisted: %q", sec.PlainText)
	}
	if _, ok := st.Collected["icp_golden_insight"]; ok {
		t.Error("invalid field must not enter collected answers")
	}
}

func TestPersistRecoveredFromHistory(t *testing.T) {
	u, memStore := newTestUpdater()
	st := state.New("u", "t")
	st.CurrentSection = catalog.SectionPain
	summary := "Here's the summary of your three pains. Are you satisfied? Rate 0-5."
	st.AppendHistory(state.Turn{Role: "assistant", Content: summary})
	st.AppendHistory(state.Turn{Role: "user", Content: "4"})

	// Satisfaction verdict without structured content: Branch B digs
	// the last presented summary out of history.
	dec := decision.Decision{
		Directive:    state.DirectiveNext,
		Satisfaction: boolPtr(true),
		Feedback:     "4",
	}

	u.Persist(context.Background(), st, dec, "")

	if memStore.Saves != 1 {
		t.Fatalf("store saves = %d, want 1", memStore.Saves)
	}
	sec := st.Section(catalog.SectionPain)
	if sec.Status != catalog.StatusDone {
		t.Errorf("section status = %s, want done", sec.Status)
	}
	if !strings.Contains(sec.PlainText, "three pains") {
		t.Errorf("recovered content = %q", sec.PlainText)
	}
}

func TestPersistAbortsWithoutRecoverableContent(t *testing.T) {
	u, memStore := newTestUpdater()
	st := state.New("u", "t")
	st.CurrentSection = catalog.SectionPain
	st.AppendHistory(state.Turn{Role: "assistant", Content: "What is the first pain?"})
	st.AppendHistory(state.Turn{Role: "user", Content: "4"})

	dec := decision.Decision{
		Directive:    state.DirectiveNext,
		Satisfaction: boolPtr(true),
	}

	u.Persist(context.Background(), st, dec, "")

	// No summary exists anywhere: the save is aborted, never written
	// empty.
	if memStore.Saves != 0 {
		t.Fatalf("store saves = %d, want 0", memStore.Saves)
	}
	if st.Section(catalog.SectionPain).Status == catalog.StatusDone {
		t.Error("section must not be done after an aborted save")
	}
	if st.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", st.ErrorCount)
	}
}

func TestStayCounterForcesNext(t *testing.T) {
	u, _ := newTestUpdater()
	st := state.New("u", "t")
	st.CurrentSection = catalog.SectionDeepFear
	st.PendingDirective = state.DirectiveStay

	dec := decision.Decision{Directive: state.DirectiveStay}

	u.Persist(context.Background(), st, dec, "Tell me more.")
	if st.PendingDirective != state.DirectiveStay || st.ConsecutiveStays != 1 {
		t.Fatalf("after 1 stay: directive=%s stays=%d", st.PendingDirective, st.ConsecutiveStays)
	}

	u.Persist(context.Background(), st, dec, "And then?")
	if st.PendingDirective != state.DirectiveStay || st.ConsecutiveStays != 2 {
		t.Fatalf("after 2 stays: directive=%s stays=%d", st.PendingDirective, st.ConsecutiveStays)
	}

	u.Persist(context.Background(), st, dec, "Go on.")
	if st.PendingDirective != state.DirectiveNext {
		t.Errorf("after 3 stays: directive = %s, want next", st.PendingDirective)
	}
	if !st.ForcedAdvance {
		t.Error("a counter-issued next must be flagged as forced")
	}
	if st.ConsecutiveStays != 0 {
		t.Errorf("counter not reset: %d", st.ConsecutiveStays)
	}
}

func TestStayCounterIgnoresProgressTurns(t *testing.T) {
	u, _ := newTestUpdater()
	st := state.New("u", "t")
	st.CurrentSection = catalog.SectionDeepFear
	st.PendingDirective = state.DirectiveStay
	st.ConsecutiveStays = 2
	st.AppendHistory(state.Turn{Role: "assistant", Content: "Summary of the deep fear. Rate 0-5."})

	dec := decision.Decision{
		Directive:  state.DirectiveStay,
		ShouldSave: true,
		Fields:     map[string]string{"deep_fear": "being exposed as a fraud in front of clients"},
	}

	u.Persist(context.Background(), st, dec, "Summary of the deep fear. Rate 0-5.")

	if st.ConsecutiveStays != 0 {
		t.Errorf("a saving turn must reset the counter, got %d", st.ConsecutiveStays)
	}
	if st.PendingDirective != state.DirectiveStay {
		t.Errorf("directive = %s, want stay", st.PendingDirective)
	}
}

func TestPersistStoreFailureKeepsLocalState(t *testing.T) {
	u, memStore := newTestUpdater()
	memStore.FailSaves = true
	memStore.SaveErr = context.DeadlineExceeded

	st := state.New("u", "t")
	st.CurrentSection = catalog.SectionInterview
	st.AppendHistory(state.Turn{Role: "assistant", Content: "Here's your summary, rate it 0-5."})

	dec := decision.Decision{
		Directive:    state.DirectiveNext,
		Satisfaction: boolPtr(true),
		ShouldSave:   true,
		Fields:       map[string]string{"client_name": "Dana"},
	}

	u.Persist(context.Background(), st, dec, "Here's your summary, rate it 0-5.")

	// The write failed but the session continues from local state.
	sec := st.Section(catalog.SectionInterview)
	if sec.Status != catalog.StatusDone {
		t.Errorf("section status = %s, want done", sec.Status)
	}
	if st.ErrorCount == 0 {
		t.Error("store failure should be recorded")
	}
}

func TestAllSectionsDone(t *testing.T) {
	u, _ := newTestUpdater()
	cat := catalog.ValueCanvas()
	st := state.New("u", "t")

	if u.AllSectionsDone(st) {
		t.Error("fresh state reported all done")
	}

	for _, id := range cat.Order() {
		st.Section(id).Status = catalog.StatusDone
	}
	if !u.AllSectionsDone(st) {
		t.Error("all-done state not detected")
	}
}

func TestCompletionSignaled(t *testing.T) {
	u, _ := newTestUpdater()

	tests := []struct {
		name     string
		dec      decision.Decision
		lastUser string
		answered bool
		want     bool
	}{
		{
			name: "satisfied verdict",
			dec:  decision.Decision{Satisfaction: boolPtr(true)},
			want: true,
		},
		{
			name: "next directive",
			dec:  decision.Decision{Directive: state.DirectiveNext},
			want: true,
		},
		{
			name:     "closing phrase",
			dec:      decision.Decision{Directive: state.DirectiveStay},
			lastUser: "That looks good, wrap it up!",
			want:     true,
		},
		{
			name:     "ordinary message",
			dec:      decision.Decision{Directive: state.DirectiveStay},
			lastUser: "can you change the second payoff?",
			want:     false,
		},
		{
			name:     "closing phrase already answered",
			dec:      decision.Decision{Directive: state.DirectiveStay},
			lastUser: "we're done here",
			answered: true,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := state.New("u", "t")
			if tt.lastUser != "" {
				st.AppendHistory(state.Turn{Role: "user", Content: tt.lastUser})
			}
			if tt.answered {
				st.AppendHistory(state.Turn{Role: "assistant", Content: "Understood."})
			}
			if got := u.CompletionSignaled(st, tt.dec); got != tt.want {
				t.Errorf("CompletionSignaled = %v, want %v", got, tt.want)
			}
		})
	}
}
