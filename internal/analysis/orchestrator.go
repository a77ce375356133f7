package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dusk-indust/fireline/internal/batch"
	"github.com/dusk-indust/fireline/internal/completion"
	"github.com/dusk-indust/fireline/internal/ctxlog"
	"github.com/dusk-indust/fireline/internal/graph"
	"github.com/dusk-indust/fireline/internal/prompt"
	"github.com/dusk-indust/fireline/internal/results"
	"github.com/dusk-indust/fireline/internal/template"
	"github.com/dusk-indust/fireline/internal/transcript"
)

// Config holds run-time configuration for one analysis run.
type Config struct {
	// Strategy selects the scheduling mode. Empty means StrategyAuto.
	Strategy Strategy

	// Budget is the total wall clock allowed for the whole run, shared
	// across every completion call. Checked at step boundaries, not
	// preemptively mid-call.
	Budget time.Duration

	// StepTimeout bounds each individual completion call.
	StepTimeout time.Duration

	// MaxAttempts bounds retries for transient call failures per step.
	MaxAttempts int

	// BackoffBase is the first retry's wait; subsequent waits double.
	BackoffBase time.Duration

	// Temperature and MaxOutputTokens pass through to every call.
	Temperature     float64
	MaxOutputTokens int

	// RunSelfEvaluation invokes the Evaluator on the completed draft.
	RunSelfEvaluation bool

	// OnProgress, when non-nil, is invoked before each step with the
	// zero-based step index, the total step count, and a label.
	OnProgress func(current, total int, label string)
}

// withDefaults fills unset fields with production defaults.
func (c Config) withDefaults() Config {
	if c.Strategy == "" {
		c.Strategy = StrategyAuto
	}
	if c.Budget <= 0 {
		c.Budget = 5 * time.Minute
	}
	if c.StepTimeout <= 0 {
		c.StepTimeout = 60 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = 500 * time.Millisecond
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = 4096
	}
	return c
}

// Output is everything a completed run returns.
type Output struct {
	Results     *results.AnalysisResults
	PromptsUsed []string

	// ReferenceIssues lists relationship ids that did not resolve cleanly
	// after the final merge.
	ReferenceIssues []results.ReferenceIssue

	// Strategy is the mode the run actually used (after auto-detection).
	Strategy Strategy

	// Evaluation is set when a self-evaluation pass ran.
	Evaluation *Evaluation
}

// Orchestrator drives one analysis run: build, schedule, then a strict
// loop of render -> call -> merge under a shared wall-clock budget. It owns
// all mutable run state; a single Orchestrator may be reused across runs but
// never runs concurrently with itself.
type Orchestrator struct {
	svc       completion.Service
	evaluator Evaluator
	cfg       Config
	reporter  *Reporter

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEvaluator attaches the self-evaluation collaborator.
func WithEvaluator(e Evaluator) Option {
	return func(o *Orchestrator) {
		o.evaluator = e
	}
}

// WithClock replaces the wall clock. Tests use it to drive budget checks.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithSleep replaces the backoff wait. Tests use it to skip real waiting.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) {
		o.sleep = sleep
	}
}

// New creates an Orchestrator over the given completion service.
func New(svc completion.Service, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		svc:      svc,
		cfg:      cfg.withDefaults(),
		reporter: NewReporter(cfg.OnProgress),
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Progress returns the channel of progress events for the orchestrator's
// runs.
func (o *Orchestrator) Progress() <-chan Event {
	return o.reporter.Subscribe()
}

// Close shuts down the progress reporter.
func (o *Orchestrator) Close() {
	o.reporter.Close()
}

// Run executes one full analysis. On any fatal condition it returns a single
// descriptive error and no partial results; the prompt log and step
// lifecycle are available through the logger for post-mortems.
func (o *Orchestrator) Run(ctx context.Context, tpl *template.Template, tr *transcript.Transcript) (*Output, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()[:8]
	log := ctxlog.FromContext(ctx).With("run", runID, "template", tpl.Name)
	ctx = ctxlog.WithLogger(ctx, log)

	strategy := o.cfg.Strategy
	if strategy == StrategyAuto {
		strategy = DetectStrategy(tpl)
	}
	log.Info("analysis: run starting", "strategy", string(strategy), "sections", len(tpl.Sections), "budget", o.cfg.Budget)

	led := newLedger(o.now())
	builder := prompt.NewBuilder(tr)

	var err error
	switch strategy {
	case StrategyCascade:
		err = o.runCascade(ctx, tpl, builder, led)
	case StrategyBatch:
		err = o.runBatch(ctx, tpl, builder, led)
	case StrategyWaves:
		err = o.runWaves(ctx, tpl, builder, led)
	default:
		err = fmt.Errorf("analysis: unknown strategy %q", strategy)
	}
	if err != nil {
		log.Error("analysis: run failed", "error", err)
		return nil, err
	}

	issues := results.CheckReferences(led.acc)
	for _, issue := range issues {
		log.Warn("analysis: dangling reference", "detail", issue.Description)
	}

	out := &Output{
		Results:         led.acc,
		PromptsUsed:     led.prompts,
		ReferenceIssues: issues,
		Strategy:        strategy,
	}

	if o.cfg.RunSelfEvaluation && o.evaluator != nil {
		revised, eval, evalErr := o.evaluator.Evaluate(ctx, led.acc, led.prompts)
		if evalErr != nil {
			// The draft is complete; a failed review pass does not undo it.
			log.Warn("analysis: self-evaluation failed; keeping draft", "error", evalErr)
		} else {
			if revised != nil {
				out.Results = revised
			}
			out.Evaluation = eval
		}
	}

	log.Info("analysis: run complete", "steps", len(led.prompts), "elapsed", led.elapsed(o.now()))
	return out, nil
}

// ---------------------------------------------------------------------------
// Cascade strategy (strict per-section topological order)
// ---------------------------------------------------------------------------

func (o *Orchestrator) runCascade(ctx context.Context, tpl *template.Template, builder *prompt.Builder, led *ledger) error {
	g, err := graph.Build(ctx, tpl.Sections, graph.Strict)
	if err != nil {
		return err
	}
	order, err := graph.TopoOrder(g)
	if err != nil {
		return err
	}

	for i, id := range order {
		sec := g.Node(id).Section
		if err := o.checkBudget(led, i, len(order)); err != nil {
			return err
		}
		o.reporter.Emit(Event{Step: i, Total: len(order), Label: sec.Name, Status: StatusWorking})

		p := builder.ForSection(sec, dependencySections(g, id), led.acc)
		led.recordPrompt(p)

		raw, err := o.callWithRetry(ctx, p, sec.Name)
		if err != nil {
			o.reporter.Emit(Event{Step: i, Total: len(order), Label: sec.Name, Status: StatusFailed, Message: err.Error()})
			return err
		}

		if err := results.MergeSection(led.acc, sec.Name, raw); err != nil {
			o.reporter.Emit(Event{Step: i, Total: len(order), Label: sec.Name, Status: StatusFailed, Message: err.Error()})
			return err
		}
		o.reporter.Emit(Event{Step: i, Total: len(order), Label: sec.Name, Status: StatusComplete})
	}

	return nil
}

// dependencySections resolves a node's dependency ids to their sections, in
// the order the template declared them.
func dependencySections(g *graph.Graph, id string) []template.Section {
	node := g.Node(id)
	deps := make([]template.Section, 0, len(node.Dependencies))
	for _, dep := range node.Dependencies {
		deps = append(deps, g.Node(dep).Section)
	}
	return deps
}

// ---------------------------------------------------------------------------
// Batch strategy (coarse 3-stage grouping; no dependency graph)
// ---------------------------------------------------------------------------

func (o *Orchestrator) runBatch(ctx context.Context, tpl *template.Template, builder *prompt.Builder, led *ledger) error {
	batches, _ := batch.Plan(ctx, tpl.Sections)

	for i, b := range batches {
		label := string(b.Name)
		if err := o.checkBudget(led, i, len(batches)); err != nil {
			return err
		}
		o.reporter.Emit(Event{Step: i, Total: len(batches), Label: label, Status: StatusWorking})

		p := builder.ForBatch(b, led.acc)
		led.recordPrompt(p)

		raw, err := o.callWithRetry(ctx, p, label)
		if err != nil {
			o.reporter.Emit(Event{Step: i, Total: len(batches), Label: label, Status: StatusFailed, Message: err.Error()})
			return err
		}

		if err := results.MergeBatch(led.acc, raw); err != nil {
			o.reporter.Emit(Event{Step: i, Total: len(batches), Label: label, Status: StatusFailed, Message: err.Error()})
			return err
		}
		o.reporter.Emit(Event{Step: i, Total: len(batches), Label: label, Status: StatusComplete})
	}

	return nil
}

// ---------------------------------------------------------------------------
// Shared step machinery
// ---------------------------------------------------------------------------

// checkBudget fails the run when the remaining budget cannot cover another
// step. completed/total only feed the error message.
func (o *Orchestrator) checkBudget(led *ledger, completed, total int) error {
	remaining := o.cfg.Budget - led.elapsed(o.now())
	if remaining < o.cfg.StepTimeout {
		return &BudgetError{
			Completed: completed,
			Total:     total,
			Budget:    o.cfg.Budget,
			Remaining: remaining,
			Required:  o.cfg.StepTimeout,
		}
	}
	return nil
}

// callWithRetry invokes the completion service for one rendered prompt,
// classifying each outcome:
//   - transport errors, content-filter stops, and empty payloads are
//     transient and retried with exponential backoff;
//   - a length stop is fatal immediately, without consuming a retry;
//   - exhausting the attempt budget surfaces the last transient error.
func (o *Orchestrator) callWithRetry(ctx context.Context, userPrompt, label string) (string, error) {
	log := ctxlog.FromContext(ctx)
	req := completion.Request{
		System:          prompt.SystemInstruction,
		Prompt:          userPrompt,
		Temperature:     o.cfg.Temperature,
		MaxOutputTokens: o.cfg.MaxOutputTokens,
		ForceJSONObject: true,
	}

	var lastErr error
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := o.cfg.BackoffBase << (attempt - 2)
			log.Debug("analysis: retrying step", "step", label, "attempt", attempt, "wait", wait)
			if err := o.sleep(ctx, wait); err != nil {
				return "", err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, o.cfg.StepTimeout)
		resp, err := o.svc.Complete(callCtx, req)
		cancel()

		if err != nil {
			lastErr = err
			log.Warn("analysis: completion call failed", "step", label, "attempt", attempt, "error", err)
			continue
		}

		switch resp.FinishReason {
		case completion.FinishLength:
			return "", fmt.Errorf("%w: step %q; try a strategy with smaller per-call scope", ErrTruncated, label)
		case completion.FinishContentFilter:
			lastErr = fmt.Errorf("analysis: step %q flagged by content filter", label)
			log.Warn("analysis: content filter hit; treating as transient", "step", label, "attempt", attempt)
			continue
		}

		if strings.TrimSpace(resp.Content) == "" {
			lastErr = fmt.Errorf("analysis: step %q returned an empty payload", label)
			log.Warn("analysis: empty payload; treating as transient", "step", label, "attempt", attempt)
			continue
		}

		return resp.Content, nil
	}

	return "", fmt.Errorf("analysis: step %q failed after %d attempts: %w", label, o.cfg.MaxAttempts, lastErr)
}

// sleepContext waits for d or for ctx cancellation, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
