package analysis

import (
	"errors"
	"fmt"
	"time"
)

// ErrTruncated marks a completion that stopped because the output hit the
// token limit. Retrying without changing the prompt would reproduce the same
// failure, so it is fatal.
var ErrTruncated = errors.New("analysis: response truncated due to length")

// BudgetError reports a run that could not finish inside its global
// wall-clock budget. It is raised at a step boundary, before the completion
// service is invoked for that step.
type BudgetError struct {
	Completed int
	Total     int
	Budget    time.Duration
	Remaining time.Duration
	Required  time.Duration
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf(
		"analysis: could not finish within the %s budget: completed %d of %d steps (%s remaining, next step needs %s); try the batch strategy or a template with fewer sections",
		e.Budget, e.Completed, e.Total, e.Remaining, e.Required)
}
