package analysis

import (
	"time"

	"github.com/dusk-indust/fireline/internal/results"
)

// ledger is the run-private accumulator: partial results, the ordered log of
// every rendered prompt, and the clock reading the budget is measured from.
// It is owned exclusively by the orchestrator for the lifetime of one run.
type ledger struct {
	acc     *results.AnalysisResults
	prompts []string
	started time.Time
}

func newLedger(started time.Time) *ledger {
	return &ledger{
		acc:     &results.AnalysisResults{},
		started: started,
	}
}

func (l *ledger) recordPrompt(p string) {
	l.prompts = append(l.prompts, p)
}

func (l *ledger) elapsed(now time.Time) time.Duration {
	return now.Sub(l.started)
}
