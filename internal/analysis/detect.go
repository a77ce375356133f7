package analysis

import "github.com/dusk-indust/fireline/internal/template"

// Strategy selects how a run schedules its completion calls.
type Strategy string

const (
	// StrategyAuto picks cascade or batch from the template's shape.
	StrategyAuto Strategy = "auto"

	// StrategyCascade processes sections one at a time in strict
	// topological order, each prompt seeing every prior step's output.
	StrategyCascade Strategy = "cascade"

	// StrategyBatch groups sections into three coarse stages and makes one
	// call per stage. Cheaper, coarser context.
	StrategyBatch Strategy = "batch"

	// StrategyWaves processes topological levels, dispatching the sections
	// of one level concurrently. Sections in a level never feed each
	// other's prompts, so context visibility matches cascade.
	StrategyWaves Strategy = "waves"
)

// DetectStrategy picks the natural strategy for a template: cascade when any
// section declares dependencies, batch otherwise.
func DetectStrategy(t *template.Template) Strategy {
	if t.HasDependencies() {
		return StrategyCascade
	}
	return StrategyBatch
}
