package template

import (
	"fmt"
	"strings"
)

// OutputFormat identifies the desired shape of a section's extracted output.
type OutputFormat string

const (
	FormatBulletPoints OutputFormat = "bullet_points"
	FormatParagraph    OutputFormat = "paragraph"
	FormatActionItems  OutputFormat = "action_items"
	FormatDecisions    OutputFormat = "decisions"
	FormatQuotes       OutputFormat = "quotes"
	FormatBenchmarks   OutputFormat = "benchmarks"
	FormatRadioReports OutputFormat = "radio_reports"
	FormatSafetyEvents OutputFormat = "safety_events"
)

// knownFormats is the set of output formats a template may declare.
var knownFormats = map[OutputFormat]bool{
	FormatBulletPoints: true,
	FormatParagraph:    true,
	FormatActionItems:  true,
	FormatDecisions:    true,
	FormatQuotes:       true,
	FormatBenchmarks:   true,
	FormatRadioReports: true,
	FormatSafetyEvents: true,
}

// Section is one named extraction task within a template. Dependencies list
// the ids of sections whose output this section's prompt should see.
type Section struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Prompt       string       `yaml:"prompt"`
	OutputFormat OutputFormat `yaml:"outputFormat"`
	Dependencies []string     `yaml:"dependencies,omitempty"`
}

// Template is an ordered collection of sections representing one complete
// analysis definition. Name and Category are display-only; Outputs names the
// result categories the template intends to populate.
type Template struct {
	Name     string    `yaml:"name"`
	Category string    `yaml:"category,omitempty"`
	Outputs  []string  `yaml:"outputs,omitempty"`
	Sections []Section `yaml:"sections"`
}

// SectionByID returns the section with the given id, or nil.
func (t *Template) SectionByID(id string) *Section {
	for i := range t.Sections {
		if t.Sections[i].ID == id {
			return &t.Sections[i]
		}
	}
	return nil
}

// HasDependencies reports whether any section declares at least one dependency.
func (t *Template) HasDependencies() bool {
	for _, s := range t.Sections {
		if len(s.Dependencies) > 0 {
			return true
		}
	}
	return false
}

// Validate checks the template's structural invariants: at least one section,
// non-empty unique ids, non-empty prompts, and known output formats. Graph
// invariants (unresolvable or self-referential dependencies) are checked by
// the graph builder, not here.
func (t *Template) Validate() error {
	if len(t.Sections) == 0 {
		return fmt.Errorf("template: %q has no sections", t.Name)
	}

	seen := make(map[string]bool, len(t.Sections))
	for i, s := range t.Sections {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("template: section %d (%q) has an empty id", i, s.Name)
		}
		if seen[s.ID] {
			return fmt.Errorf("template: duplicate section id %q", s.ID)
		}
		seen[s.ID] = true

		if strings.TrimSpace(s.Prompt) == "" {
			return fmt.Errorf("template: section %q has an empty prompt", s.ID)
		}
		if s.OutputFormat != "" && !knownFormats[s.OutputFormat] {
			return fmt.Errorf("template: section %q has unknown output format %q", s.ID, s.OutputFormat)
		}
	}

	return nil
}
