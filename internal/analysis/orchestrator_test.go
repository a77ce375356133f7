package analysis

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/fireline/internal/completion"
	"github.com/dusk-indust/fireline/internal/results"
	"github.com/dusk-indust/fireline/internal/template"
	"github.com/dusk-indust/fireline/internal/transcript"
)

// fakeClock is a manually-advanced clock for budget tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// serviceFunc adapts a function to completion.Service.
type serviceFunc func(ctx context.Context, req completion.Request) (*completion.Response, error)

func (f serviceFunc) Complete(ctx context.Context, req completion.Request) (*completion.Response, error) {
	return f(ctx, req)
}

// stubEvaluator records what it was asked to review and returns a fixed
// score without revising the draft.
type stubEvaluator struct {
	score      float64
	calls      int
	gotPrompts []string
}

func (e *stubEvaluator) Evaluate(_ context.Context, _ *results.AnalysisResults, promptsUsed []string) (*results.AnalysisResults, *Evaluation, error) {
	e.calls++
	e.gotPrompts = promptsUsed
	return nil, &Evaluation{Score: e.score, Notes: "clean"}, nil
}

// noSleep is a backoff stub that records waits instead of sleeping.
func noSleep(waits *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func testTr() *transcript.Transcript {
	return &transcript.Transcript{Text: "[00:14] Engine 3 on scene.\n[12:45] Water on the fire."}
}

func sec(id, name, prompt string, deps ...string) template.Section {
	return template.Section{ID: id, Name: name, Prompt: prompt, Dependencies: deps}
}

func cascadeTemplate() *template.Template {
	return &template.Template{
		Name: "cascade",
		Sections: []template.Section{
			sec("agenda", "Agenda", "List the operational priorities discussed."),
			sec("decisions", "Decisions", "What was decided?", "agenda"),
			sec("actions", "Actions", "List all tasks assigned.", "decisions"),
		},
	}
}

func TestRun_EndToEndCascade(t *testing.T) {
	svc := completion.NewScripted(
		completion.Reply{Content: `{"content": "Priorities: ventilation.", "summary": "Residential fire.",
			"agendaItems": [{"id": "a1", "title": "Ventilation"}]}`},
		completion.Reply{Content: `{"content": "One decision.",
			"decisions": [{"id": "d1", "description": "Go defensive", "agendaItemIds": ["a1"]}]}`},
		completion.Reply{Content: `{"content": "One task.",
			"actionItems": [{"id": "t1", "description": "Overhaul the attic", "agendaItemIds": ["a1"], "decisionIds": ["d1"]}]}`},
	)

	o := New(svc, Config{})
	out, err := o.Run(context.Background(), cascadeTemplate(), testTr())
	require.NoError(t, err)

	assert.Equal(t, StrategyCascade, out.Strategy, "dependencies must auto-select cascade")
	require.Len(t, out.PromptsUsed, 3)

	// Processing order follows the dependency chain.
	reqs := svc.Requests()
	assert.Contains(t, reqs[0].Prompt, `"Agenda"`)
	assert.Contains(t, reqs[1].Prompt, `"Decisions"`)
	assert.Contains(t, reqs[2].Prompt, `"Actions"`)

	// Step 2 sees step 1's extracted ids; step 3 sees both.
	assert.Contains(t, reqs[1].Prompt, "[a1] Ventilation")
	assert.Contains(t, reqs[2].Prompt, "[a1] Ventilation")
	assert.Contains(t, reqs[2].Prompt, "[d1] Go defensive")

	r := out.Results
	assert.Equal(t, "Residential fire.", r.Summary)
	require.Len(t, r.AgendaItems, 1)
	require.Len(t, r.Decisions, 1)
	require.Len(t, r.ActionItems, 1)
	assert.Equal(t, []string{"a1"}, r.Decisions[0].AgendaItemIDs)
	assert.Equal(t, []string{"a1"}, r.ActionItems[0].AgendaItemIDs)
	assert.Equal(t, []string{"d1"}, r.ActionItems[0].DecisionIDs)
	assert.Empty(t, out.ReferenceIssues)
	require.Len(t, r.Sections, 3)
	assert.Equal(t, []string{"Agenda", "Decisions", "Actions"},
		[]string{r.Sections[0].Name, r.Sections[1].Name, r.Sections[2].Name})
}

func TestRun_BudgetEnforcement(t *testing.T) {
	clock := newFakeClock()

	// Each completed step consumes 3.5s of the 10s budget; before step 3
	// only 3s remain, which is less than the 4s step timeout.
	svc := completion.NewScripted(
		completion.Reply{Content: `{"content": "one"}`, Before: func(completion.Request) { clock.Advance(3500 * time.Millisecond) }},
		completion.Reply{Content: `{"content": "two"}`, Before: func(completion.Request) { clock.Advance(3500 * time.Millisecond) }},
		completion.Reply{Content: `{"content": "never reached"}`},
	)

	tpl := &template.Template{
		Name: "flat",
		Sections: []template.Section{
			sec("a", "Alpha", "p"), sec("b", "Bravo", "p"), sec("c", "Charlie", "p"),
		},
	}

	o := New(svc, Config{
		Strategy:    StrategyCascade,
		Budget:      10 * time.Second,
		StepTimeout: 4 * time.Second,
	}, WithClock(clock.Now))

	_, err := o.Run(context.Background(), tpl, testTr())
	require.Error(t, err)

	var budgetErr *BudgetError
	require.ErrorAs(t, err, &budgetErr)
	assert.Equal(t, 2, budgetErr.Completed)
	assert.Equal(t, 3, budgetErr.Total)
	assert.Equal(t, 2, svc.Calls(), "step 3 must fail before invoking the completion service")
}

func TestRun_LengthStopIsFatalWithoutRetry(t *testing.T) {
	svc := completion.NewScripted(
		completion.Reply{Content: "trunc", FinishReason: completion.FinishLength},
	)
	tpl := &template.Template{Name: "one", Sections: []template.Section{sec("a", "Alpha", "p")}}

	var waits []time.Duration
	o := New(svc, Config{Strategy: StrategyCascade, MaxAttempts: 3}, WithSleep(noSleep(&waits)))

	_, err := o.Run(context.Background(), tpl, testTr())
	require.ErrorIs(t, err, ErrTruncated)
	assert.Contains(t, err.Error(), "smaller per-call scope")
	assert.Equal(t, 1, svc.Calls(), "length stop must not consume retries")
	assert.Empty(t, waits)
}

func TestRun_EmptyPayloadRetriedToExhaustion(t *testing.T) {
	svc := completion.NewScripted(
		completion.Reply{Content: "   "},
		completion.Reply{Content: ""},
		completion.Reply{Content: ""},
	)
	tpl := &template.Template{Name: "one", Sections: []template.Section{sec("a", "Alpha", "p")}}

	var waits []time.Duration
	o := New(svc, Config{Strategy: StrategyCascade, MaxAttempts: 3, BackoffBase: time.Second},
		WithSleep(noSleep(&waits)))

	_, err := o.Run(context.Background(), tpl, testTr())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Contains(t, err.Error(), "empty payload")
	assert.Equal(t, 3, svc.Calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits,
		"backoff must double between attempts")
}

func TestRun_ContentFilterRetriedThenSucceeds(t *testing.T) {
	svc := completion.NewScripted(
		completion.Reply{Content: "flagged", FinishReason: completion.FinishContentFilter},
		completion.Reply{Content: `{"content": "fine"}`},
	)
	tpl := &template.Template{Name: "one", Sections: []template.Section{sec("a", "Alpha", "p")}}

	var waits []time.Duration
	o := New(svc, Config{Strategy: StrategyCascade}, WithSleep(noSleep(&waits)))

	out, err := o.Run(context.Background(), tpl, testTr())
	require.NoError(t, err)
	assert.Equal(t, 2, svc.Calls())
	assert.Equal(t, "fine", out.Results.Sections[0].Content)
}

func TestRun_MalformedJSONIsFatal(t *testing.T) {
	svc := completion.NewScripted(
		completion.Reply{Content: `{"content": "ok"}`},
		completion.Reply{Content: `this is not json`},
	)
	tpl := &template.Template{
		Name:     "two",
		Sections: []template.Section{sec("a", "Alpha", "p"), sec("b", "Bravo", "p")},
	}

	o := New(svc, Config{Strategy: StrategyCascade})
	out, err := o.Run(context.Background(), tpl, testTr())
	require.Error(t, err)
	assert.Nil(t, out, "no partial results on fatal failure")
	assert.Equal(t, 2, svc.Calls(), "malformed JSON must not be retried")
}

func TestRun_BatchStrategy(t *testing.T) {
	svc := completion.NewScripted(
		completion.Reply{Content: `{"sections": [{"name": "Incident Summary", "content": "Two-story fire."}],
			"summary": "Two-story fire.", "agendaItems": [{"id": "a1", "title": "Water supply"}]}`},
		completion.Reply{Content: `{"sections": [{"name": "Key Decisions", "content": "Went defensive."}],
			"decisions": [{"id": "d1", "description": "Defensive", "agendaItemIds": ["a1"]}]}`},
		completion.Reply{Content: `{"sections": [{"name": "Action Items", "content": "Overhaul."}]}`},
	)

	tpl := &template.Template{
		Name: "coarse",
		Sections: []template.Section{
			sec("sum", "Incident Summary", "Summarize."),
			sec("dec", "Key Decisions", "What was decided?"),
			sec("act", "Action Items", "List tasks."),
		},
	}

	o := New(svc, Config{})
	out, err := o.Run(context.Background(), tpl, testTr())
	require.NoError(t, err)

	assert.Equal(t, StrategyBatch, out.Strategy, "dependency-free templates auto-select batch")
	assert.Equal(t, 3, svc.Calls(), "one call per non-empty batch")
	assert.Len(t, out.Results.Sections, 3)
	assert.Equal(t, "Two-story fire.", out.Results.Summary)

	// Later batches see earlier batches' extracted ids.
	reqs := svc.Requests()
	assert.Contains(t, reqs[1].Prompt, "[a1] Water supply")
}

func TestRun_WavesStrategy(t *testing.T) {
	var mu sync.Mutex
	var gammaPrompt string

	svc := serviceFunc(func(_ context.Context, req completion.Request) (*completion.Response, error) {
		var content string
		switch {
		case strings.Contains(req.Prompt, `"Alpha"`):
			content = `{"content": "A", "agendaItems": [{"id": "a1", "title": "Alpha topic"}]}`
		case strings.Contains(req.Prompt, `"Bravo"`):
			content = `{"content": "B", "agendaItems": [{"id": "b1", "title": "Bravo topic"}]}`
		default:
			mu.Lock()
			gammaPrompt = req.Prompt
			mu.Unlock()
			content = `{"content": "C"}`
		}
		return &completion.Response{Content: content, FinishReason: completion.FinishStop}, nil
	})

	tpl := &template.Template{
		Name: "waved",
		Sections: []template.Section{
			sec("a", "Alpha", "p"),
			sec("b", "Bravo", "p"),
			sec("c", "Gamma", "p", "a", "b"),
		},
	}

	o := New(svc, Config{Strategy: StrategyWaves})
	out, err := o.Run(context.Background(), tpl, testTr())
	require.NoError(t, err)

	// Merge order within a wave is template order, not arrival order.
	require.Len(t, out.Results.Sections, 3)
	assert.Equal(t, "Alpha", out.Results.Sections[0].Name)
	assert.Equal(t, "Bravo", out.Results.Sections[1].Name)
	assert.Equal(t, "Gamma", out.Results.Sections[2].Name)

	// The second wave's prompt sees both first-wave items.
	assert.Contains(t, gammaPrompt, "[a1] Alpha topic")
	assert.Contains(t, gammaPrompt, "[b1] Bravo topic")
}

func TestRun_ProgressCallback(t *testing.T) {
	svc := completion.NewScripted(
		completion.Reply{Content: `{"content": "one"}`},
		completion.Reply{Content: `{"content": "two"}`},
	)
	tpl := &template.Template{
		Name:     "obs",
		Sections: []template.Section{sec("a", "Alpha", "p"), sec("b", "Bravo", "p")},
	}

	type call struct {
		current, total int
		label          string
	}
	var calls []call

	o := New(svc, Config{
		Strategy: StrategyCascade,
		OnProgress: func(current, total int, label string) {
			calls = append(calls, call{current, total, label})
		},
	})

	_, err := o.Run(context.Background(), tpl, testTr())
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, call{0, 2, "Alpha"}, calls[0])
	assert.Equal(t, call{1, 2, "Bravo"}, calls[1])
}

func TestRun_CycleFailsBeforeAnyCall(t *testing.T) {
	svc := completion.NewScripted()
	tpl := &template.Template{
		Name: "cyclic",
		Sections: []template.Section{
			sec("a", "Alpha", "p", "b"),
			sec("b", "Bravo", "p", "a"),
		},
	}

	o := New(svc, Config{Strategy: StrategyCascade})
	_, err := o.Run(context.Background(), tpl, testTr())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
	assert.Equal(t, 0, svc.Calls())
}

func TestRun_SelfEvaluation(t *testing.T) {
	svc := completion.NewScripted(completion.Reply{Content: `{"content": "draft"}`})
	tpl := &template.Template{Name: "one", Sections: []template.Section{sec("a", "Alpha", "p")}}

	eval := &stubEvaluator{score: 0.9}
	o := New(svc, Config{Strategy: StrategyCascade, RunSelfEvaluation: true}, WithEvaluator(eval))

	out, err := o.Run(context.Background(), tpl, testTr())
	require.NoError(t, err)
	require.NotNil(t, out.Evaluation)
	assert.Equal(t, 0.9, out.Evaluation.Score)
	assert.Equal(t, 1, eval.calls)
	assert.Len(t, eval.gotPrompts, 1, "evaluator receives the full prompt log")
}

func TestDetectStrategy(t *testing.T) {
	withDeps := cascadeTemplate()
	assert.Equal(t, StrategyCascade, DetectStrategy(withDeps))

	flat := &template.Template{Name: "flat", Sections: []template.Section{sec("a", "A", "p")}}
	assert.Equal(t, StrategyBatch, DetectStrategy(flat))
}
