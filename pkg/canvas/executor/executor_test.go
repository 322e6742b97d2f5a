package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/decision"
	"ai-canvas-be/pkg/canvas/document"
	"ai-canvas-be/pkg/canvas/memory"
	"ai-canvas-be/pkg/canvas/reply"
	"ai-canvas-be/pkg/canvas/router"
	"ai-canvas-be/pkg/canvas/sectionctx"
	"ai-canvas-be/pkg/canvas/state"
	"ai-canvas-be/pkg/canvas/store"
	"ai-canvas-be/pkg/canvas/synthesis"
	"ai-canvas-be/pkg/llm/scripted"
)

func newTestExecutor(provider *scripted.Provider) (*Executor, *store.InMemoryStore) {
	cat := catalog.ValueCanvas()
	logger := log.New(io.Discard, "", 0)
	memStore := store.NewInMemoryStore()

	ctxProvider := sectionctx.NewProvider(cat, memStore, logger)
	rt := router.New(cat, ctxProvider, logger)
	replies := reply.New(cat, provider, logger)
	decisions := decision.New(provider, logger)
	mem := memory.New(cat, memStore, logger)
	synth := synthesis.New(cat, provider, memStore, logger)

	return New(cat, rt, replies, decisions, mem, synth, logger), memStore
}

// confirmJSON is the decision a satisfied user produces for a section.
func confirmJSON(t *testing.T, def *catalog.SectionDefinition) string {
	t.Helper()
	fields := make(map[string]string, len(def.RequiredFields))
	for _, f := range def.RequiredFields {
		fields[f] = "a substantial confirmed answer for " + f
	}
	b, err := json.Marshal(map[string]interface{}{
		"router_directive":           "next",
		"is_satisfied":               true,
		"user_satisfaction_feedback": "5",
		"should_save_content":        true,
		"fields":                     fields,
	})
	require.NoError(t, err)
	return string(b)
}

func TestExecuteFullCanvasRun(t *testing.T) {
	provider := scripted.NewProvider()
	exec, memStore := newTestExecutor(provider)
	cat := catalog.ValueCanvas()
	st := state.New("user-1", "thread-1")
	ctx := context.Background()

	order := cat.Order()
	for i, id := range order {
		def, ok := cat.Get(id)
		require.True(t, ok)

		// One turn consumes three model calls: the summary reply, the
		// decision, and the cascaded opener (or the final compose).
		provider.Push(
			fmt.Sprintf("Here's your %s summary, rate it 0-5.", def.Name),
			confirmJSON(t, def),
		)
		if i < len(order)-1 {
			provider.Push("Moving on to the next section.")
		} else {
			provider.Push("# Value Canvas\n\nThe polished final document.")
		}

		res := exec.Execute(ctx, st, "Here is everything. 5, I'm satisfied.")

		assert.Equal(t, i+1, st.CompletedCount(), "section %s should be done", id)

		if i < len(order)-1 {
			assert.False(t, res.Finished)
			assert.Equal(t, "Moving on to the next section.", res.Reply)
			assert.Equal(t, order[i+1], st.CurrentSection, "cascade should open the next section")
		} else {
			assert.True(t, res.Finished)
			assert.Equal(t, "# Value Canvas\n\nThe polished final document.", res.Deliverable)
		}
	}

	// The deliverable was persisted.
	stored, err := memStore.GetDeliverable(ctx, "user-1", "thread-1")
	require.NoError(t, err)
	assert.Equal(t, st.Deliverable, stored)

	// Every section landed in the store exactly once per confirmation.
	for _, id := range order {
		rec, err := memStore.GetSection(ctx, "user-1", "thread-1", id)
		require.NoError(t, err)
		require.NotNil(t, rec, "section %s missing from store", id)
		assert.Equal(t, catalog.StatusDone, rec.Status)
	}
}

func TestExecuteAfterCompletion(t *testing.T) {
	provider := scripted.NewProvider()
	exec, _ := newTestExecutor(provider)
	st := state.New("u", "t")
	st.Finished = true
	st.Deliverable = "done document"

	res := exec.Execute(context.Background(), st, "can we add one more thing?")

	assert.Equal(t, synthesis.AlreadyCompleteReply, res.Reply)
	assert.Equal(t, "done document", res.Deliverable)
	assert.Zero(t, provider.Calls(), "post-completion input must not hit the model")
}

func TestExecuteModelFailureFallsBack(t *testing.T) {
	provider := scripted.NewProvider() // exhausted: every call errors
	exec, _ := newTestExecutor(provider)
	st := state.New("u", "t")

	res := exec.Execute(context.Background(), st, "hello")

	assert.Equal(t, reply.FallbackReply, res.Reply)
	assert.False(t, res.Finished)
	// Routing still happened: the opening section is active.
	assert.Equal(t, catalog.SectionInterview, st.CurrentSection)
	assert.GreaterOrEqual(t, st.ErrorCount, 1)
}

func TestExecuteStayTurnDoesNotCascade(t *testing.T) {
	provider := scripted.NewProvider(
		"What's your client's name?",
		`{"router_directive": "stay", "is_satisfied": null, "user_satisfaction_feedback": "", "should_save_content": false, "fields": {}}`,
	)
	exec, memStore := newTestExecutor(provider)
	st := state.New("u", "t")

	res := exec.Execute(context.Background(), st, "I want to build my canvas")

	assert.Equal(t, "What's your client's name?", res.Reply)
	assert.Equal(t, catalog.SectionInterview, st.CurrentSection)
	assert.Equal(t, 2, provider.Calls(), "a stay turn consumes exactly two model calls")
	assert.Zero(t, memStore.Saves)
}

func TestExecuteBareNextKeepsIncompleteSection(t *testing.T) {
	// A model-emitted next with no satisfaction verdict and nothing
	// saved must not move past the incomplete current section: the
	// first not-done section in order is still this one.
	provider := scripted.NewProvider(
		"What's your client's name?",
		`{"router_directive": "next", "is_satisfied": null, "user_satisfaction_feedback": "", "should_save_content": false, "fields": {}}`,
		"Let's keep going on your interview.",
	)
	exec, memStore := newTestExecutor(provider)
	st := state.New("u", "t")

	res := exec.Execute(context.Background(), st, "I want to build my canvas")

	assert.Equal(t, catalog.SectionInterview, st.CurrentSection)
	assert.Equal(t, "Let's keep going on your interview.", res.Reply)
	assert.NotEqual(t, catalog.StatusDone, st.Section(catalog.SectionInterview).Status)
	assert.Zero(t, memStore.Saves)
	assert.False(t, res.Finished)
}

func TestExecuteClosingPhraseFinishesCanvas(t *testing.T) {
	provider := scripted.NewProvider(
		"Anything else before we finish?",
		`{"router_directive": "stay", "is_satisfied": null, "user_satisfaction_feedback": "", "should_save_content": false, "fields": {}}`,
		"# Value Canvas\n\nThe final document.",
	)
	exec, _ := newTestExecutor(provider)
	cat := catalog.ValueCanvas()
	st := state.New("u", "t")
	for _, id := range cat.Order() {
		sec := st.Section(id)
		sec.Status = catalog.StatusDone
		sec.Content = document.FromPlainText("confirmed content for " + string(id))
	}
	st.CurrentSection = catalog.SectionPrize
	st.PendingDirective = state.DirectiveStay
	st.ContextPacket = &state.ContextPacket{SectionID: catalog.SectionPrize}

	res := exec.Execute(context.Background(), st, "Looks good, wrap it up.")

	// Every section is done and the user signaled completion, so the
	// closing advance fires without an explicit next from the model.
	assert.True(t, res.Finished)
	assert.Equal(t, "# Value Canvas\n\nThe final document.", res.Deliverable)
	assert.Equal(t, 3, provider.Calls())
}

func TestExecuteDeadlockBreaker(t *testing.T) {
	provider := scripted.NewProvider()
	exec, _ := newTestExecutor(provider)
	st := state.New("u", "t")
	ctx := context.Background()

	stayJSON := `{"router_directive": "stay", "is_satisfied": null, "user_satisfaction_feedback": "", "should_save_content": false, "fields": {}}`

	// Two fruitless turns stay on the opening section.
	for i := 0; i < 2; i++ {
		provider.Push("Tell me more.", stayJSON)
		exec.Execute(ctx, st, "hmm")
		assert.Equal(t, catalog.SectionInterview, st.CurrentSection)
	}

	// The third stay trips the counter: the turn force-advances and
	// cascades into the next section's opener.
	provider.Push("Tell me more.", stayJSON, "Welcome to the persona section.")
	res := exec.Execute(ctx, st, "hmm")

	assert.Equal(t, catalog.SectionICP, st.CurrentSection)
	assert.Equal(t, "Welcome to the persona section.", res.Reply)
	// The skipped section is not silently completed.
	assert.NotEqual(t, catalog.StatusDone, st.Section(catalog.SectionInterview).Status)
}

func TestExecuteSerializesTurnsPerThread(t *testing.T) {
	provider := scripted.NewProvider()
	stayJSON := `{"router_directive": "stay", "is_satisfied": null, "user_satisfaction_feedback": "", "should_save_content": false, "fields": {}}`
	for i := 0; i < 16; i++ {
		provider.Push("One question at a time.", stayJSON)
	}
	exec, _ := newTestExecutor(provider)
	st := state.New("u", "t")

	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		go func() {
			exec.Execute(context.Background(), st, "concurrent message")
			done <- struct{}{}
		}()
	}
	for i := 0; i < 5; i++ {
		<-done
	}

	// All five turns ran to completion without racing on shared state:
	// every user message is in history, each followed by at least one
	// assistant reply.
	users := 0
	for _, turn := range st.History {
		if turn.Role == "user" {
			users++
		}
	}
	assert.Equal(t, 5, users)
	assert.GreaterOrEqual(t, len(st.History), 10)
}
