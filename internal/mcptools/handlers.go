package mcptools

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/fireline/internal/analysis"
	"github.com/dusk-indust/fireline/internal/batch"
	"github.com/dusk-indust/fireline/internal/completion"
	"github.com/dusk-indust/fireline/internal/export"
	"github.com/dusk-indust/fireline/internal/graph"
	"github.com/dusk-indust/fireline/internal/template"
	"github.com/dusk-indust/fireline/internal/templatedata"
	"github.com/dusk-indust/fireline/internal/transcript"
)

// AnalysisService handles MCP tool calls for the fireline server mode. It
// wraps a completion service and the base run configuration.
type AnalysisService struct {
	svc completion.Service
	cfg analysis.Config
}

// NewAnalysisService creates an AnalysisService with the given completion
// service and base config.
func NewAnalysisService(svc completion.Service, cfg analysis.Config) *AnalysisService {
	return &AnalysisService{svc: svc, cfg: cfg}
}

// ValidateTemplate checks a template's structural and graph invariants.
// Author errors come back in the output, not as a tool error, so callers can
// present them.
func (s *AnalysisService) ValidateTemplate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ValidateTemplateInput,
) (*mcp.CallToolResult, ValidateTemplateOutput, error) {
	tpl, err := template.Parse([]byte(input.TemplateYAML))
	if err != nil {
		return nil, ValidateTemplateOutput{Errors: []string{err.Error()}}, nil
	}

	mode := graph.Strict
	if input.Lenient {
		mode = graph.Lenient
	}
	g, err := graph.Build(ctx, tpl.Sections, mode)
	if err != nil {
		return nil, ValidateTemplateOutput{
			Errors:   []string{err.Error()},
			Sections: len(tpl.Sections),
		}, nil
	}
	if _, err := graph.TopoOrder(g); err != nil {
		return nil, ValidateTemplateOutput{
			Errors:   []string{err.Error()},
			Sections: len(tpl.Sections),
		}, nil
	}

	stats := g.Stats()
	return nil, ValidateTemplateOutput{
		Valid:            true,
		Warnings:         g.Warnings(),
		Sections:         stats.Total,
		WithDependencies: stats.WithDependencies,
		Leaves:           stats.Leaves,
		Isolated:         stats.Isolated,
	}, nil
}

// ClassifySections reports the batch-stage assignment of every section.
func (s *AnalysisService) ClassifySections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClassifySectionsInput,
) (*mcp.CallToolResult, ClassifySectionsOutput, error) {
	tpl, err := template.Parse([]byte(input.TemplateYAML))
	if err != nil {
		return nil, ClassifySectionsOutput{}, err
	}

	out := ClassifySectionsOutput{}
	for i, sec := range tpl.Sections {
		a := batch.Classify(sec, i, len(tpl.Sections))
		out.Assignments = append(out.Assignments, SectionAssignment{
			SectionID:      a.SectionID,
			Stage:          string(a.Stage),
			Confidence:     string(a.Confidence),
			Signal:         string(a.Signal),
			MatchedKeyword: a.MatchedKeyword,
		})
	}

	batches, stats := batch.Plan(ctx, tpl.Sections)
	for _, b := range batches {
		out.Batches = append(out.Batches, string(b.Name))
	}
	out.Warnings = stats.Warnings()
	return nil, out, nil
}

// PlanOrder computes the processing order a cascade run would use, the
// concurrent waves a parallel run would use, and a Mermaid rendering of the
// dependency graph.
func (s *AnalysisService) PlanOrder(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PlanOrderInput,
) (*mcp.CallToolResult, PlanOrderOutput, error) {
	tpl, err := template.Parse([]byte(input.TemplateYAML))
	if err != nil {
		return nil, PlanOrderOutput{}, err
	}

	g, err := graph.Build(ctx, tpl.Sections, graph.Strict)
	if err != nil {
		return nil, PlanOrderOutput{}, err
	}
	order, err := graph.TopoOrder(g)
	if err != nil {
		return nil, PlanOrderOutput{}, err
	}
	waves, err := graph.Levels(g)
	if err != nil {
		return nil, PlanOrderOutput{}, err
	}

	return nil, PlanOrderOutput{
		Order:   order,
		Waves:   waves,
		Mermaid: export.Mermaid(tpl.Sections),
	}, nil
}

// AnalyzeTranscript runs a full analysis over the given transcript.
func (s *AnalysisService) AnalyzeTranscript(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeTranscriptInput,
) (*mcp.CallToolResult, AnalyzeTranscriptOutput, error) {
	if input.Transcript == "" {
		return nil, AnalyzeTranscriptOutput{}, fmt.Errorf("mcptools: transcript is required")
	}

	tpl, err := s.resolveTemplate(input)
	if err != nil {
		return nil, AnalyzeTranscriptOutput{}, err
	}

	cfg := s.cfg
	if input.Strategy != "" {
		cfg.Strategy = analysis.Strategy(input.Strategy)
	}
	if input.BudgetSeconds > 0 {
		cfg.Budget = time.Duration(input.BudgetSeconds) * time.Second
	}

	tr := &transcript.Transcript{Text: input.Transcript, Supplemental: input.Supplemental}
	out, err := analysis.New(s.svc, cfg).Run(ctx, tpl, tr)
	if err != nil {
		return nil, AnalyzeTranscriptOutput{}, err
	}

	result := AnalyzeTranscriptOutput{
		Strategy: string(out.Strategy),
		Steps:    len(out.PromptsUsed),
		Results:  out.Results,
	}
	for _, issue := range out.ReferenceIssues {
		result.ReferenceIssues = append(result.ReferenceIssues, issue.Description)
	}
	return nil, result, nil
}

// resolveTemplate picks the template for a run: inline YAML wins, then a
// named built-in, then the default.
func (s *AnalysisService) resolveTemplate(input AnalyzeTranscriptInput) (*template.Template, error) {
	if input.TemplateYAML != "" {
		return template.Parse([]byte(input.TemplateYAML))
	}
	name := input.Template
	if name == "" {
		name = templatedata.DefaultName
	}
	return templatedata.Load(name)
}
