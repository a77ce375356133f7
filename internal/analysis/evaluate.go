package analysis

import (
	"context"

	"github.com/dusk-indust/fireline/internal/results"
)

// Evaluation is the metadata a self-evaluation pass returns alongside the
// (possibly revised) results.
type Evaluation struct {
	Score float64 `json:"score"`
	Notes string  `json:"notes,omitempty"`
}

// Evaluator reviews a completed draft against the prompts that produced it
// and may return a revised aggregate. Implementations are external
// collaborators; the engine only defines the seam.
type Evaluator interface {
	Evaluate(ctx context.Context, draft *results.AnalysisResults, promptsUsed []string) (*results.AnalysisResults, *Evaluation, error)
}
