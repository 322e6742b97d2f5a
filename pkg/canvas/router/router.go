package router

import (
	"context"
	"log"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/sectionctx"
	"ai-canvas-be/pkg/canvas/state"
)

// Router applies the pending directive to the conversation state:
// navigation between sections, context loading, and completion.
type Router struct {
	catalog  *catalog.Catalog
	provider *sectionctx.Provider
	logger   *log.Logger
}

func New(cat *catalog.Catalog, provider *sectionctx.Provider, logger *log.Logger) *Router {
	return &Router{
		catalog:  cat,
		provider: provider,
		logger:   logger,
	}
}

// Route processes the pending directive.
//
//   - stay: no section change; loads the current section's context if
//     none is loaded yet (first pass of a thread).
//   - next: advances to the first not-done section in catalog order;
//     when none remains, marks the conversation finished.
//   - modify: jumps to the named section, the one place a user may move
//     out of order; an invalid target mutates nothing except the error
//     counters.
//
// After a handled next/modify the directive is reset to stay so a second
// pass through the router within the same turn cannot re-trigger the
// transition.
func (r *Router) Route(ctx context.Context, st *state.ConversationState) error {
	// A fresh user message means the previous reply has been answered.
	if _, ok := st.LastUserTurn(); ok {
		st.AwaitingUserInput = false
	}

	switch st.PendingDirective {
	case state.DirectiveNext:
		return r.routeNext(ctx, st)
	case state.DirectiveModify:
		return r.routeModify(ctx, st)
	default:
		return r.routeStay(ctx, st)
	}
}

func (r *Router) routeStay(ctx context.Context, st *state.ConversationState) error {
	if st.ContextPacket != nil || st.CurrentSection == "" {
		r.logger.Printf("[ROUTER] Staying on section %s", st.CurrentSection)
		return nil
	}
	// Context was never loaded (e.g. state recovered from scratch).
	return r.loadContext(ctx, st, st.CurrentSection)
}

func (r *Router) routeNext(ctx context.Context, st *state.ConversationState) error {
	statuses := st.Statuses()
	currentDone := true
	if st.CurrentSection != "" {
		currentDone = statuses[st.CurrentSection] == catalog.StatusDone
	}

	// A forced advance must not resolve back to the section being
	// left: it is stuck while incomplete. Only then is the current
	// section masked out of the scan; it stays not-done and is
	// revisited later. An ordinary next keeps the strict order, so an
	// incomplete current section is where the scan lands.
	forced := st.ForcedAdvance
	st.ForcedAdvance = false
	if forced && st.CurrentSection != "" {
		statuses[st.CurrentSection] = catalog.StatusDone
	}

	next, ok := r.catalog.NextUnfinished(statuses)
	if !ok {
		if !currentDone {
			// Only reachable on a forced advance: everything else is
			// done, so there is nowhere to advance to.
			r.logger.Printf("[ROUTER] No section to advance to from %s, staying", st.CurrentSection)
			st.PendingDirective = state.DirectiveStay
			return nil
		}
		r.logger.Printf("[ROUTER] All sections complete for thread %s", st.ThreadID)
		st.Finished = true
		st.PendingDirective = state.DirectiveStay
		return nil
	}

	previous := st.CurrentSection
	st.CurrentSection = next
	if previous != next {
		st.ClearShortMemory()
		r.logger.Printf("[ROUTER] Transition %s -> %s (next)", previous, next)
	}

	if err := r.loadContext(ctx, st, next); err != nil {
		return err
	}
	st.PendingDirective = state.DirectiveStay
	return nil
}

func (r *Router) routeModify(ctx context.Context, st *state.ConversationState) error {
	target, err := r.catalog.Resolve(st.ModifyTarget)
	if err != nil {
		r.logger.Printf("[ROUTER] Invalid modify target %q: %v", st.ModifyTarget, err)
		st.RecordError("invalid section id: " + st.ModifyTarget)
		st.PendingDirective = state.DirectiveStay
		st.ModifyTarget = ""
		return nil
	}

	previous := st.CurrentSection
	st.CurrentSection = target
	if previous != target {
		st.ClearShortMemory()
		r.logger.Printf("[ROUTER] Transition %s -> %s (modify)", previous, target)
	}

	// Jumping back into a finished section reopens it until the user
	// confirms it again.
	if sec := st.Section(target); sec.Status == catalog.StatusDone {
		sec.Status = catalog.StatusInProgress
	}

	if err := r.loadContext(ctx, st, target); err != nil {
		return err
	}
	st.PendingDirective = state.DirectiveStay
	st.ModifyTarget = ""
	return nil
}

func (r *Router) loadContext(ctx context.Context, st *state.ConversationState, id catalog.SectionID) error {
	packet, err := r.provider.GetContext(ctx, st.UserID, st.ThreadID, id, st.Collected)
	if err != nil {
		return err
	}
	st.ContextPacket = packet
	return nil
}
