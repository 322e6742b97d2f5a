package executor

import (
	"context"
	"log"
	"sync"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/decision"
	"ai-canvas-be/pkg/canvas/memory"
	"ai-canvas-be/pkg/canvas/reply"
	"ai-canvas-be/pkg/canvas/router"
	"ai-canvas-be/pkg/canvas/state"
	"ai-canvas-be/pkg/canvas/synthesis"
)

// Result is what one processed turn hands back to the delivery layer.
type Result struct {
	Reply       string
	Snapshot    []state.SectionStatusView
	Finished    bool
	Deliverable string
}

// Executor drives the full turn pipeline: route, generate, decide,
// persist, and at most one cascaded hop when the turn closed a section.
type Executor struct {
	catalog     *catalog.Catalog
	router      *router.Router
	replies     *reply.Generator
	decisions   *decision.Extractor
	memory      *memory.Updater
	synthesizer *synthesis.Synthesizer
	logger      *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(
	cat *catalog.Catalog,
	rt *router.Router,
	replies *reply.Generator,
	decisions *decision.Extractor,
	mem *memory.Updater,
	synth *synthesis.Synthesizer,
	logger *log.Logger,
) *Executor {
	return &Executor{
		catalog:     cat,
		router:      rt,
		replies:     replies,
		decisions:   decisions,
		memory:      mem,
		synthesizer: synth,
		logger:      logger,
		locks:       make(map[string]*sync.Mutex),
	}
}

// threadLock serializes turns per thread. Concurrent messages on the
// same thread queue up instead of racing on shared state.
func (e *Executor) threadLock(threadID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[threadID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[threadID] = l
	}
	return l
}

// Execute processes one user message against the conversation state
// and returns the assistant reply plus a progress snapshot. The state
// is mutated in place; the caller persists it afterwards.
func (e *Executor) Execute(ctx context.Context, st *state.ConversationState, userMessage string) Result {
	lock := e.threadLock(st.ThreadID)
	lock.Lock()
	defer lock.Unlock()

	if st.Finished && st.Deliverable != "" {
		return e.result(st, synthesis.AlreadyCompleteReply)
	}

	st.AppendHistory(state.Turn{Role: "user", Content: userMessage, SectionID: st.CurrentSection})

	if err := e.router.Route(ctx, st); err != nil {
		e.logger.Printf("[EXECUTOR] Routing failed for thread %s: %v", st.ThreadID, err)
		st.RecordError("routing failed: " + err.Error())
		return e.result(st, reply.FallbackReply)
	}
	if st.Finished {
		return e.result(st, e.synthesizer.Synthesize(ctx, st))
	}

	answer := e.replies.Generate(ctx, st)
	dec := e.decisions.Decide(ctx, st, answer)
	e.memory.Persist(ctx, st, dec, answer)

	// The final confirmation may arrive without an explicit next: when
	// every section is done and the turn signaled completion, the
	// closing advance happens now instead of waiting for another turn.
	if st.PendingDirective == state.DirectiveStay &&
		e.memory.AllSectionsDone(st) && e.memory.CompletionSignaled(st, dec) {
		st.PendingDirective = state.DirectiveNext
	}

	// One bounded hop: when the decision closed the current section the
	// next section's opening reply is produced in the same turn. The
	// cascaded hop never re-extracts a decision, so it cannot chain.
	if st.PendingDirective == state.DirectiveNext {
		if err := e.router.Route(ctx, st); err != nil {
			e.logger.Printf("[EXECUTOR] Cascade routing failed for thread %s: %v", st.ThreadID, err)
			st.RecordError("cascade routing failed: " + err.Error())
			return e.result(st, answer)
		}
		if st.Finished {
			return e.result(st, e.synthesizer.Synthesize(ctx, st))
		}
		answer = e.replies.Generate(ctx, st)
	}

	return e.result(st, answer)
}

func (e *Executor) result(st *state.ConversationState, answer string) Result {
	return Result{
		Reply:       answer,
		Snapshot:    st.Snapshot(e.catalog),
		Finished:    st.Finished,
		Deliverable: st.Deliverable,
	}
}
