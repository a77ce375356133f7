package prompt

import (
	"strings"

	"github.com/dusk-indust/fireline/internal/template"
)

// blockSet records which structured output schemas a prompt should request.
type blockSet struct {
	Agenda       bool
	Decisions    bool
	Actions      bool
	Quotes       bool
	Benchmarks   bool
	RadioReports bool
	SafetyEvents bool
}

func (b blockSet) any() bool {
	return b.Agenda || b.Decisions || b.Actions || b.Quotes || b.Benchmarks || b.RadioReports || b.SafetyEvents
}

func (b blockSet) merge(other blockSet) blockSet {
	return blockSet{
		Agenda:       b.Agenda || other.Agenda,
		Decisions:    b.Decisions || other.Decisions,
		Actions:      b.Actions || other.Actions,
		Quotes:       b.Quotes || other.Quotes,
		Benchmarks:   b.Benchmarks || other.Benchmarks,
		RadioReports: b.RadioReports || other.RadioReports,
		SafetyEvents: b.SafetyEvents || other.SafetyEvents,
	}
}

// formatBlocks maps declared output formats to the schema block they imply.
var formatBlocks = map[template.OutputFormat]blockSet{
	template.FormatActionItems:  {Actions: true},
	template.FormatDecisions:    {Decisions: true},
	template.FormatQuotes:       {Quotes: true},
	template.FormatBenchmarks:   {Benchmarks: true},
	template.FormatRadioReports: {RadioReports: true},
	template.FormatSafetyEvents: {SafetyEvents: true},
}

// blockKeywords maps vocabulary found in section names and prompts to the
// schema blocks they imply. Evaluated as pure predicate->outcome rules; all
// matching rules apply (unlike batch classification, a section may request
// several blocks).
var blockKeywords = []struct {
	words  []string
	blocks blockSet
}{
	{[]string{"agenda", "topic", "priority", "priorities"}, blockSet{Agenda: true}},
	{[]string{"decision", "decided"}, blockSet{Decisions: true}},
	{[]string{"action", "task", "assignment", "follow-up", "follow up"}, blockSet{Actions: true}},
	{[]string{"quote", "verbatim", "exchange"}, blockSet{Quotes: true}},
	{[]string{"benchmark", "timing", "water on", "under control", "primary search"}, blockSet{Benchmarks: true}},
	{[]string{"can report", "progress report", "radio report", "par "}, blockSet{RadioReports: true}},
	{[]string{"safety", "mayday", "emergency traffic", "collapse"}, blockSet{SafetyEvents: true}},
}

// blocksFor decides which structured schemas to request for one section from
// its declared output format plus keyword scans over its name and prompt.
func blocksFor(s template.Section) blockSet {
	blocks := formatBlocks[s.OutputFormat]

	text := strings.ToLower(s.Name + " " + s.Prompt)
	for _, rule := range blockKeywords {
		for _, w := range rule.words {
			if strings.Contains(text, w) {
				blocks = blocks.merge(rule.blocks)
				break
			}
		}
	}

	return blocks
}

// schemaLines renders the JSON field descriptions for the selected blocks.
func schemaLines(b blockSet, sb *strings.Builder) {
	if b.Agenda {
		sb.WriteString(`  "agendaItems": [{"id": "<unique string>", "title": "...", "details": "...", "timeSeconds": <number>}],` + "\n")
	}
	if b.Decisions {
		sb.WriteString(`  "decisions": [{"id": "<unique string>", "description": "...", "agendaItemIds": ["..."], "timeSeconds": <number>}],` + "\n")
	}
	if b.Actions {
		sb.WriteString(`  "actionItems": [{"id": "<unique string>", "description": "...", "assignee": "...", "deadline": "...", "agendaItemIds": ["..."], "decisionIds": ["..."]}],` + "\n")
	}
	if b.Quotes {
		sb.WriteString(`  "quotes": [{"id": "<unique string>", "speaker": "...", "text": "...", "timeSeconds": <number>}],` + "\n")
	}
	if b.Benchmarks {
		sb.WriteString(`  "benchmarks": [{"id": "<unique string>", "name": "...", "timeSeconds": <number>, "achieved": true}],` + "\n")
	}
	if b.RadioReports {
		sb.WriteString(`  "radioReports": [{"id": "<unique string>", "kind": "...", "summary": "...", "timeSeconds": <number>}],` + "\n")
	}
	if b.SafetyEvents {
		sb.WriteString(`  "safetyEvents": [{"id": "<unique string>", "description": "...", "severity": "...", "timeSeconds": <number>}],` + "\n")
	}
}
