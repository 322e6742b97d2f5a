package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/decision"
	"ai-canvas-be/pkg/canvas/executor"
	"ai-canvas-be/pkg/canvas/memory"
	"ai-canvas-be/pkg/canvas/reply"
	"ai-canvas-be/pkg/canvas/router"
	"ai-canvas-be/pkg/canvas/sectionctx"
	"ai-canvas-be/pkg/canvas/state"
	"ai-canvas-be/pkg/canvas/store"
	"ai-canvas-be/pkg/canvas/synthesis"
	"ai-canvas-be/pkg/llm/scripted"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Offline walkthrough of a complete canvas run. A scripted provider
// plays the model so the whole pipeline (routing, decisions, saves,
// cascade, synthesis) runs deterministically with no server, DB or
// LLM backend.
func main() {
	color.Cyan("🚀 Canvas Orchestrator Simulation (offline, scripted model)\n")

	cat := catalog.ValueCanvas()
	provider := scripted.NewProvider()
	memStore := store.NewInMemoryStore()
	logger := log.New(io.Discard, "", 0)

	ctxProvider := sectionctx.NewProvider(cat, memStore, logger)
	rt := router.New(cat, ctxProvider, logger)
	replies := reply.New(cat, provider, logger)
	decisions := decision.New(provider, logger)
	mem := memory.New(cat, memStore, logger)
	synth := synthesis.New(cat, provider, memStore, logger)
	exec := executor.New(cat, rt, replies, decisions, mem, synth, logger)

	userID := uuid.NewString()
	threadID := uuid.NewString()
	st := state.New(userID, threadID)

	ctx := context.Background()
	order := cat.Order()

	for i, sectionID := range order {
		def, _ := cat.Get(sectionID)
		color.Yellow("\n━━ Section %d/%d: %s ━━", i+1, len(order), def.Name)

		// Script the three model calls this turn consumes: the summary
		// reply, the extracted decision, and either the greeting for
		// the next section or the final deliverable.
		provider.Push(
			fmt.Sprintf("Here is a summary of your %s. Are you happy with it?", def.Name),
			confirmDecision(def),
		)
		if i < len(order)-1 {
			nextDef, _ := cat.Get(order[i+1])
			provider.Push(fmt.Sprintf("Great, let's move on to %s.", nextDef.Name))
		} else {
			provider.Push("# Value Canvas\n\nYour polished value canvas, assembled from every confirmed section.")
		}

		userMsg := fmt.Sprintf("Here is everything about my %s. Rating: 5, looks perfect.", def.Name)
		color.White("USER: %s", userMsg)

		res := exec.Execute(ctx, st, userMsg)
		color.Green("AI:   %s", res.Reply)
		printProgress(res.Snapshot)

		if res.Finished {
			color.Cyan("\n🏁 Canvas completed (%d model calls).", provider.Calls())
			color.Cyan("\n--- Deliverable ---\n%s", res.Deliverable)
		}
	}

	// One message past the end exercises the already-complete rail.
	color.Yellow("\n━━ Post-completion message ━━")
	color.White("USER: Can we keep going?")
	res := exec.Execute(ctx, st, "Can we keep going?")
	color.Green("AI:   %s", res.Reply)
}

// confirmDecision builds the decision JSON a satisfied user produces:
// confirmed summary, save the section, advance.
func confirmDecision(def *catalog.SectionDefinition) string {
	fields := make(map[string]string, len(def.RequiredFields))
	for _, f := range def.RequiredFields {
		fields[f] = fmt.Sprintf("simulated value for %s with enough substance to pass validation", f)
	}

	payload := map[string]interface{}{
		"router_directive":           "next",
		"is_satisfied":               true,
		"user_satisfaction_feedback": "Rating: 5, looks perfect.",
		"should_save_content":        true,
		"fields":                     fields,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("failed to build decision payload: %v", err)
	}
	return string(b)
}

func printProgress(views []state.SectionStatusView) {
	done := 0
	for _, v := range views {
		if v.Status == catalog.StatusDone {
			done++
		}
	}
	fmt.Printf("      progress: %d/%d sections done\n", done, len(views))
}
