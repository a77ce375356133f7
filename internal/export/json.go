package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/fireline/internal/analysis"
	"github.com/dusk-indust/fireline/internal/results"
	"github.com/dusk-indust/fireline/internal/template"
)

// RunExport is the top-level JSON export structure for one completed run.
type RunExport struct {
	Template        string                   `json:"template"`
	Category        string                   `json:"category,omitempty"`
	Strategy        string                   `json:"strategy"`
	ExportedAt      string                   `json:"exportedAt"`
	Sections        []SectionExport          `json:"sections"`
	Results         *results.AnalysisResults `json:"results"`
	ReferenceIssues []results.ReferenceIssue `json:"referenceIssues,omitempty"`
	Evaluation      *analysis.Evaluation     `json:"evaluation,omitempty"`
}

// SectionExport describes one template section as analyzed.
type SectionExport struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	OutputFormat string   `json:"outputFormat,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// BuildRunExport assembles a RunExport from a template and a completed run.
func BuildRunExport(tpl *template.Template, out *analysis.Output) *RunExport {
	ex := &RunExport{
		Template:        tpl.Name,
		Category:        tpl.Category,
		Strategy:        string(out.Strategy),
		ExportedAt:      time.Now().UTC().Format(time.RFC3339),
		Results:         out.Results,
		ReferenceIssues: out.ReferenceIssues,
		Evaluation:      out.Evaluation,
	}
	for _, sec := range tpl.Sections {
		ex.Sections = append(ex.Sections, SectionExport{
			ID:           sec.ID,
			Name:         sec.Name,
			OutputFormat: string(sec.OutputFormat),
			Dependencies: sec.Dependencies,
		})
	}
	return ex
}

// WriteJSON writes the export as indented JSON.
func (e *RunExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("export: encode run: %w", err)
	}
	return nil
}
