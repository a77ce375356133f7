package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/fireline/internal/graph"
	"github.com/dusk-indust/fireline/internal/prompt"
	"github.com/dusk-indust/fireline/internal/results"
	"github.com/dusk-indust/fireline/internal/template"
)

// runWaves executes topological levels with the sections of one level
// dispatched concurrently. This is safe for context cascading because
// sections within a level never depend on each other: every prompt in a wave
// is rendered from the fully-merged output of all earlier waves, before any
// dispatch. Responses merge in template order within the wave, so the
// accumulated context later waves see is independent of completion-arrival
// order.
func (o *Orchestrator) runWaves(ctx context.Context, tpl *template.Template, builder *prompt.Builder, led *ledger) error {
	g, err := graph.Build(ctx, tpl.Sections, graph.Strict)
	if err != nil {
		return err
	}
	levels, err := graph.Levels(g)
	if err != nil {
		return err
	}

	total := g.Len()
	step := 0

	for _, wave := range levels {
		if err := o.checkBudget(led, step, total); err != nil {
			return err
		}

		// Render every prompt in the wave before any call starts.
		prompts := make([]string, len(wave))
		for i, id := range wave {
			sec := g.Node(id).Section
			prompts[i] = builder.ForSection(sec, dependencySections(g, id), led.acc)
			led.recordPrompt(prompts[i])
		}

		raws := make([]string, len(wave))
		eg, egCtx := errgroup.WithContext(ctx)
		for i, id := range wave {
			sec := g.Node(id).Section
			stepIndex := step + i
			o.reporter.Emit(Event{Step: stepIndex, Total: total, Label: sec.Name, Status: StatusWorking})

			eg.Go(func() error {
				raw, err := o.callWithRetry(egCtx, prompts[i], sec.Name)
				if err != nil {
					o.reporter.Emit(Event{Step: stepIndex, Total: total, Label: sec.Name, Status: StatusFailed, Message: err.Error()})
					return err
				}
				raws[i] = raw
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}

		// Merge in wave (template) order, never arrival order.
		for i, id := range wave {
			sec := g.Node(id).Section
			if err := results.MergeSection(led.acc, sec.Name, raws[i]); err != nil {
				o.reporter.Emit(Event{Step: step + i, Total: total, Label: sec.Name, Status: StatusFailed, Message: err.Error()})
				return err
			}
			o.reporter.Emit(Event{Step: step + i, Total: total, Label: sec.Name, Status: StatusComplete})
		}

		step += len(wave)
	}

	return nil
}
