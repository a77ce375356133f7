package mcptools

import "github.com/dusk-indust/fireline/internal/results"

// --- MCP tool types for the fireline server mode (--serve-mcp) ---
// These tools are exposed when the binary runs as an MCP server so agents can
// validate templates and run analyses through structured calls instead of
// shelling out.

// ValidateTemplateInput is the input for the validate_template MCP tool.
type ValidateTemplateInput struct {
	TemplateYAML string `json:"templateYaml" jsonschema:"template definition in YAML"`
	Lenient      bool   `json:"lenient,omitempty" jsonschema:"prune unresolvable dependencies instead of failing"`
}

// ValidateTemplateOutput is the result of the validate_template MCP tool.
type ValidateTemplateOutput struct {
	Valid            bool     `json:"valid"`
	Errors           []string `json:"errors,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	Sections         int      `json:"sections"`
	WithDependencies int      `json:"withDependencies"`
	Leaves           int      `json:"leaves"`
	Isolated         int      `json:"isolated"`
}

// ClassifySectionsInput is the input for the classify_sections MCP tool.
type ClassifySectionsInput struct {
	TemplateYAML string `json:"templateYaml" jsonschema:"template definition in YAML"`
}

// SectionAssignment reports where one section was placed and why.
type SectionAssignment struct {
	SectionID      string `json:"sectionId"`
	Stage          string `json:"stage"`
	Confidence     string `json:"confidence"`
	Signal         string `json:"signal"`
	MatchedKeyword string `json:"matchedKeyword,omitempty"`
}

// ClassifySectionsOutput is the result of the classify_sections MCP tool.
type ClassifySectionsOutput struct {
	Assignments []SectionAssignment `json:"assignments"`
	Batches     []string            `json:"batches"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// PlanOrderInput is the input for the plan_order MCP tool.
type PlanOrderInput struct {
	TemplateYAML string `json:"templateYaml" jsonschema:"template definition in YAML"`
}

// PlanOrderOutput is the result of the plan_order MCP tool.
type PlanOrderOutput struct {
	Order   []string   `json:"order"`
	Waves   [][]string `json:"waves"`
	Mermaid string     `json:"mermaid"`
}

// AnalyzeTranscriptInput is the input for the analyze_transcript MCP tool.
type AnalyzeTranscriptInput struct {
	TemplateYAML  string `json:"templateYaml,omitempty" jsonschema:"template definition in YAML; overrides template"`
	Template      string `json:"template,omitempty" jsonschema:"built-in template name (default: fireground)"`
	Transcript    string `json:"transcript" jsonschema:"transcript text with [MM:SS] markers"`
	Supplemental  string `json:"supplemental,omitempty" jsonschema:"supplemental material appended to every prompt"`
	Strategy      string `json:"strategy,omitempty" jsonschema:"auto, cascade, batch, or waves"`
	BudgetSeconds int    `json:"budgetSeconds,omitempty" jsonschema:"wall-clock budget for the whole run"`
}

// AnalyzeTranscriptOutput is the result of the analyze_transcript MCP tool.
type AnalyzeTranscriptOutput struct {
	Strategy        string                   `json:"strategy"`
	Steps           int                      `json:"steps"`
	Results         *results.AnalysisResults `json:"results"`
	ReferenceIssues []string                 `json:"referenceIssues,omitempty"`
}
