package results

// SectionResult is the rendered output for one template section. Evidence
// spans are populated by a separate subsystem; this engine always leaves them
// empty.
type SectionResult struct {
	Name     string   `json:"name"`
	Content  string   `json:"content"`
	Evidence []string `json:"evidence"`
}

// AgendaItem is one topic or operational priority surfaced from the traffic.
// IDs are opaque strings minted by the model (or by the merger when absent)
// and are only unique within a single processing step's output.
type AgendaItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Details     string  `json:"details,omitempty"`
	TimeSeconds float64 `json:"timeSeconds,omitempty"`
}

// Decision is a command decision, optionally linked to the agenda items it
// resolves.
type Decision struct {
	ID            string   `json:"id"`
	Description   string   `json:"description"`
	AgendaItemIDs []string `json:"agendaItemIds,omitempty"`
	TimeSeconds   float64  `json:"timeSeconds,omitempty"`
}

// ActionItem is a task assigned during or after the incident.
type ActionItem struct {
	ID            string   `json:"id"`
	Description   string   `json:"description"`
	Assignee      string   `json:"assignee,omitempty"`
	Deadline      string   `json:"deadline,omitempty"`
	AgendaItemIDs []string `json:"agendaItemIds,omitempty"`
	DecisionIDs   []string `json:"decisionIds,omitempty"`
}

// Quote is a verbatim transmission worth preserving.
type Quote struct {
	ID          string  `json:"id"`
	Speaker     string  `json:"speaker,omitempty"`
	Text        string  `json:"text"`
	TimeSeconds float64 `json:"timeSeconds,omitempty"`
}

// Benchmark is a timing benchmark (water on fire, primary search complete,
// under control) with its offset from the start of the recording.
type Benchmark struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	TimeSeconds float64 `json:"timeSeconds,omitempty"`
	Achieved    bool    `json:"achieved,omitempty"`
}

// RadioReport is a structured report given over the air (CAN report,
// progress report, PAR).
type RadioReport struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind,omitempty"`
	Summary     string  `json:"summary"`
	TimeSeconds float64 `json:"timeSeconds,omitempty"`
}

// SafetyEvent is a mayday, emergency traffic, or other safety-significant
// occurrence.
type SafetyEvent struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Severity    string  `json:"severity,omitempty"`
	TimeSeconds float64 `json:"timeSeconds,omitempty"`
}

// AnalysisResults is the aggregate a full run produces. Lists are
// append-only across steps; the first non-empty summary wins.
type AnalysisResults struct {
	Summary      string          `json:"summary,omitempty"`
	Sections     []SectionResult `json:"sections"`
	AgendaItems  []AgendaItem    `json:"agendaItems,omitempty"`
	Decisions    []Decision      `json:"decisions,omitempty"`
	ActionItems  []ActionItem    `json:"actionItems,omitempty"`
	Quotes       []Quote         `json:"quotes,omitempty"`
	Benchmarks   []Benchmark     `json:"benchmarks,omitempty"`
	RadioReports []RadioReport   `json:"radioReports,omitempty"`
	SafetyEvents []SafetyEvent   `json:"safetyEvents,omitempty"`
}
