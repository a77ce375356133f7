package batch

import (
	"context"
	"fmt"

	"github.com/dusk-indust/fireline/internal/ctxlog"
	"github.com/dusk-indust/fireline/internal/template"
)

// Config is one coarse processing batch: a stage, the sections assigned to
// it, and a human-readable description. Batches with zero sections are
// omitted from the plan.
type Config struct {
	Name        Stage
	Description string
	Sections    []template.Section
}

// Stats aggregates classification outcomes for diagnosability.
type Stats struct {
	PerStage      map[Stage]int
	PerConfidence map[Confidence]int
	PerSignal     map[Signal]int
}

// Warnings flags degenerate distributions. These never affect correctness;
// they exist so template authors can see when the heuristic is guessing.
func (s Stats) Warnings() []string {
	var warnings []string

	total := 0
	nonEmpty := 0
	for _, n := range s.PerStage {
		total += n
		if n > 0 {
			nonEmpty++
		}
	}
	if total > 1 && nonEmpty == 1 {
		warnings = append(warnings, "all sections classified into a single batch")
	}
	if total > 0 && s.PerConfidence[ConfidenceLow]*2 > total {
		warnings = append(warnings, fmt.Sprintf(
			"more than half of sections (%d/%d) classified with low confidence", s.PerConfidence[ConfidenceLow], total))
	}

	return warnings
}

// Plan classifies every section and builds the ordered batch list
// (foundation, discussion, action). Every section lands in exactly one
// batch; empty batches are dropped.
func Plan(ctx context.Context, sections []template.Section) ([]Config, Stats) {
	stats := Stats{
		PerStage:      make(map[Stage]int),
		PerConfidence: make(map[Confidence]int),
		PerSignal:     make(map[Signal]int),
	}

	byStage := make(map[Stage][]template.Section)
	log := ctxlog.FromContext(ctx)

	for i, s := range sections {
		a := Classify(s, i, len(sections))
		stats.PerStage[a.Stage]++
		stats.PerConfidence[a.Confidence]++
		stats.PerSignal[a.Signal]++
		byStage[a.Stage] = append(byStage[a.Stage], s)

		log.Debug("batch: classified section",
			"section", a.SectionID,
			"stage", string(a.Stage),
			"confidence", string(a.Confidence),
			"signal", string(a.Signal),
			"matched", a.MatchedKeyword,
		)
	}

	var batches []Config
	for _, stage := range stageOrder {
		if len(byStage[stage]) == 0 {
			continue
		}
		batches = append(batches, Config{
			Name:        stage,
			Description: stage.Description(),
			Sections:    byStage[stage],
		})
	}

	for _, w := range stats.Warnings() {
		log.Warn("batch: " + w)
	}

	return batches, stats
}
