package mcptools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/fireline/internal/analysis"
	"github.com/dusk-indust/fireline/internal/completion"
)

const validYAML = `
name: review
sections:
  - id: summary
    name: Incident Summary
    prompt: Summarize the incident.
  - id: decisions
    name: Key Decisions
    prompt: What was decided?
    dependencies: [summary]
  - id: actions
    name: Action Items
    prompt: List all tasks assigned.
    dependencies: [decisions]
`

func newService(replies ...completion.Reply) *AnalysisService {
	return NewAnalysisService(completion.NewScripted(replies...), analysis.Config{})
}

func TestValidateTemplate(t *testing.T) {
	svc := newService()

	_, out, err := svc.ValidateTemplate(context.Background(), nil, ValidateTemplateInput{TemplateYAML: validYAML})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, 3, out.Sections)
	assert.Equal(t, 2, out.WithDependencies)
	assert.Empty(t, out.Errors)
}

func TestValidateTemplate_UnknownDependency(t *testing.T) {
	svc := newService()
	yaml := `
name: broken
sections:
  - id: a
    name: Alpha
    prompt: p
    dependencies: [ghost]
`

	_, out, err := svc.ValidateTemplate(context.Background(), nil, ValidateTemplateInput{TemplateYAML: yaml})
	require.NoError(t, err, "author errors are reported in the output")
	assert.False(t, out.Valid)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "non-existent")

	// Lenient mode prunes the edge and warns instead.
	_, out, err = svc.ValidateTemplate(context.Background(), nil, ValidateTemplateInput{TemplateYAML: yaml, Lenient: true})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "edge dropped")
}

func TestValidateTemplate_Cycle(t *testing.T) {
	svc := newService()
	yaml := `
name: cyclic
sections:
  - id: a
    name: Alpha
    prompt: p
    dependencies: [b]
  - id: b
    name: Bravo
    prompt: p
    dependencies: [a]
`

	_, out, err := svc.ValidateTemplate(context.Background(), nil, ValidateTemplateInput{TemplateYAML: yaml})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "cycle")
}

func TestClassifySections(t *testing.T) {
	svc := newService()

	_, out, err := svc.ClassifySections(context.Background(), nil, ClassifySectionsInput{TemplateYAML: validYAML})
	require.NoError(t, err)
	require.Len(t, out.Assignments, 3)
	assert.Equal(t, "foundation", out.Assignments[0].Stage)
	assert.Equal(t, "discussion", out.Assignments[1].Stage)
	assert.Equal(t, "action", out.Assignments[2].Stage)
	assert.Equal(t, []string{"foundation", "discussion", "action"}, out.Batches)
}

func TestPlanOrder(t *testing.T) {
	svc := newService()

	_, out, err := svc.PlanOrder(context.Background(), nil, PlanOrderInput{TemplateYAML: validYAML})
	require.NoError(t, err)
	assert.Equal(t, []string{"summary", "decisions", "actions"}, out.Order)
	require.Len(t, out.Waves, 3, "a strict chain is one section per wave")
	assert.Contains(t, out.Mermaid, "graph TD")
}

func TestAnalyzeTranscript(t *testing.T) {
	svc := newService(
		completion.Reply{Content: `{"content": "A two-story house fire.", "summary": "House fire."}`},
		completion.Reply{Content: `{"content": "Went defensive.", "decisions": [{"id": "d1", "description": "Defensive"}]}`},
		completion.Reply{Content: `{"content": "Overhaul assigned."}`},
	)

	_, out, err := svc.AnalyzeTranscript(context.Background(), nil, AnalyzeTranscriptInput{
		TemplateYAML: validYAML,
		Transcript:   "[00:30] Engine 1 on scene, two-story house, fire showing.",
	})
	require.NoError(t, err)
	assert.Equal(t, "cascade", out.Strategy)
	assert.Equal(t, 3, out.Steps)
	require.NotNil(t, out.Results)
	assert.Equal(t, "House fire.", out.Results.Summary)
	assert.Len(t, out.Results.Sections, 3)
}

func TestAnalyzeTranscript_RequiresTranscript(t *testing.T) {
	svc := newService()

	_, _, err := svc.AnalyzeTranscript(context.Background(), nil, AnalyzeTranscriptInput{TemplateYAML: validYAML})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcript is required")
}
