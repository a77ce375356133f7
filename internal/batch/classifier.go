package batch

import (
	"strings"

	"github.com/dusk-indust/fireline/internal/template"
)

// Stage is one of the three coarse processing stages.
type Stage string

const (
	StageFoundation Stage = "foundation"
	StageDiscussion Stage = "discussion"
	StageAction     Stage = "action"
)

// stageOrder fixes the evaluation and processing order of the stages.
var stageOrder = []Stage{StageFoundation, StageDiscussion, StageAction}

// Stages returns the stages in processing order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Description returns a human-readable summary of what the stage extracts.
func (s Stage) Description() string {
	switch s {
	case StageFoundation:
		return "Foundation: incident overview, units, agenda, and summary context"
	case StageDiscussion:
		return "Discussion: decisions, key radio exchanges, quotes, and safety events"
	case StageAction:
		return "Action: tasks, assignments, deadlines, and follow-ups"
	default:
		return "Unknown stage"
	}
}

// Confidence labels how strong the classification signal was.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Signal names which rule in the priority chain produced an assignment.
type Signal string

const (
	SignalKeyword      Signal = "keyword"
	SignalOutputFormat Signal = "output_format"
	SignalPromptText   Signal = "prompt_text"
	SignalPosition     Signal = "position"
)

// Assignment records where one section was placed and why.
type Assignment struct {
	SectionID      string
	Stage          Stage
	Confidence     Confidence
	Signal         Signal
	MatchedKeyword string // set when Signal is keyword or prompt_text
}

// stageKeywords is the fixed per-stage vocabulary matched against section
// names (rule 1).
var stageKeywords = map[Stage][]string{
	StageFoundation: {"agenda", "summary", "attendee", "overview", "size-up", "sizeup", "dispatch", "units"},
	StageDiscussion: {"decision", "discussion", "quote", "exchange", "benchmark", "safety"},
	StageAction:     {"action", "task", "deadline", "assignment", "follow-up"},
}

// formatStages maps output formats that are themselves strong stage signals
// (rule 2).
var formatStages = map[template.OutputFormat]Stage{
	template.FormatActionItems: StageAction,
	template.FormatDecisions:   StageDiscussion,
	template.FormatQuotes:      StageDiscussion,
}

// promptPhrases is the per-stage vocabulary matched against section prompt
// text (rule 3).
var promptPhrases = map[Stage][]string{
	StageFoundation: {"who attended", "who responded", "which units", "summarize the incident", "overview"},
	StageDiscussion: {"what was decided", "key exchanges", "notable quotes", "was said", "safety concern"},
	StageAction:     {"list all tasks", "action items", "assignments", "follow up", "deadline"},
}

// Classify assigns the section at the given position to exactly one stage by
// evaluating the rule chain in strict priority order: name keyword, declared
// output format, prompt phrase, then positional fallback. It never fails;
// weaker signals only lower the confidence label.
func Classify(s template.Section, index, total int) Assignment {
	name := strings.ToLower(s.Name)
	for _, stage := range stageOrder {
		for _, kw := range stageKeywords[stage] {
			if strings.Contains(name, kw) {
				return Assignment{
					SectionID:      s.ID,
					Stage:          stage,
					Confidence:     ConfidenceHigh,
					Signal:         SignalKeyword,
					MatchedKeyword: kw,
				}
			}
		}
	}

	if stage, ok := formatStages[s.OutputFormat]; ok {
		return Assignment{
			SectionID:  s.ID,
			Stage:      stage,
			Confidence: ConfidenceMedium,
			Signal:     SignalOutputFormat,
		}
	}

	prompt := strings.ToLower(s.Prompt)
	for _, stage := range stageOrder {
		for _, phrase := range promptPhrases[stage] {
			if strings.Contains(prompt, phrase) {
				return Assignment{
					SectionID:      s.ID,
					Stage:          stage,
					Confidence:     ConfidenceMedium,
					Signal:         SignalPromptText,
					MatchedKeyword: phrase,
				}
			}
		}
	}

	return Assignment{
		SectionID:  s.ID,
		Stage:      positionalStage(index, total),
		Confidence: ConfidenceLow,
		Signal:     SignalPosition,
	}
}

// positionalStage divides the section's normalized position in the template
// into thirds. A single-section template always lands in foundation.
func positionalStage(index, total int) Stage {
	if total <= 1 {
		return StageFoundation
	}
	pos := float64(index) / float64(total-1)
	switch {
	case pos < 1.0/3.0:
		return StageFoundation
	case pos < 2.0/3.0:
		return StageDiscussion
	default:
		return StageAction
	}
}
