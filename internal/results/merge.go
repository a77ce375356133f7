package results

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for merge failures. Both are fatal and non-retryable:
// re-sending the same prompt would reproduce the same payload.
var (
	// ErrMalformedJSON means the payload was not parseable JSON at all.
	ErrMalformedJSON = errors.New("results: response is not valid JSON")

	// ErrShape means the payload parsed but does not match the expected
	// structure.
	ErrShape = errors.New("results: response does not match expected structure")
)

// namedSection is the per-batch payload's section entry.
type namedSection struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// stepPayload is the validated, typed form of one step's response.
type stepPayload struct {
	Content      string
	Sections     []namedSection
	Summary      string
	AgendaItems  []AgendaItem
	Decisions    []Decision
	ActionItems  []ActionItem
	Quotes       []Quote
	Benchmarks   []Benchmark
	RadioReports []RadioReport
	SafetyEvents []SafetyEvent
}

// MergeSection parses a per-section response payload, validates its shape,
// and folds it into acc as a section named sectionName. The top-level object
// must carry a "content" string.
func MergeSection(acc *AnalysisResults, sectionName, raw string) error {
	payload, err := parsePayload(raw, false)
	if err != nil {
		return err
	}

	acc.Sections = append(acc.Sections, SectionResult{
		Name:     sectionName,
		Content:  payload.Content,
		Evidence: []string{},
	})
	foldLists(acc, payload)
	return nil
}

// MergeBatch parses a per-batch response payload, validates its shape, and
// folds it into acc. The top-level object must carry a "sections" array of
// {name, content} objects.
func MergeBatch(acc *AnalysisResults, raw string) error {
	payload, err := parsePayload(raw, true)
	if err != nil {
		return err
	}

	for _, s := range payload.Sections {
		acc.Sections = append(acc.Sections, SectionResult{
			Name:     s.Name,
			Content:  s.Content,
			Evidence: []string{},
		})
	}
	foldLists(acc, payload)
	return nil
}

// foldLists appends every structured list to the aggregate and keeps the
// first non-empty summary seen across all steps. No deduplication happens
// here: cross-step id collisions are prompt design's problem, and the
// reference checker reports them.
func foldLists(acc *AnalysisResults, p *stepPayload) {
	if acc.Summary == "" && p.Summary != "" {
		acc.Summary = p.Summary
	}
	acc.AgendaItems = append(acc.AgendaItems, p.AgendaItems...)
	acc.Decisions = append(acc.Decisions, p.Decisions...)
	acc.ActionItems = append(acc.ActionItems, p.ActionItems...)
	acc.Quotes = append(acc.Quotes, p.Quotes...)
	acc.Benchmarks = append(acc.Benchmarks, p.Benchmarks...)
	acc.RadioReports = append(acc.RadioReports, p.RadioReports...)
	acc.SafetyEvents = append(acc.SafetyEvents, p.SafetyEvents...)
}

// listFields names the optional structured arrays a payload may carry.
var listFields = []string{
	"agendaItems", "decisions", "actionItems", "quotes",
	"benchmarks", "radioReports", "safetyEvents",
}

// parsePayload decodes raw into a validated stepPayload. Validation happens
// against the raw JSON kinds before typed decoding so that a scalar where an
// array of objects belongs is reported as a shape error, not a decode error.
func parsePayload(raw string, batchMode bool) (*stepPayload, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	p := &stepPayload{}

	if batchMode {
		rawSections, ok := top["sections"]
		if !ok {
			return nil, fmt.Errorf("%w: missing \"sections\" array", ErrShape)
		}
		if err := requireArrayOfObjects("sections", rawSections); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawSections, &p.Sections); err != nil {
			return nil, fmt.Errorf("%w: \"sections\": %v", ErrShape, err)
		}
		for i, s := range p.Sections {
			if s.Name == "" {
				return nil, fmt.Errorf("%w: \"sections\"[%d] is missing a name", ErrShape, i)
			}
		}
	} else {
		rawContent, ok := top["content"]
		if !ok {
			return nil, fmt.Errorf("%w: missing \"content\" string", ErrShape)
		}
		if err := json.Unmarshal(rawContent, &p.Content); err != nil {
			return nil, fmt.Errorf("%w: \"content\" is not a string", ErrShape)
		}
	}

	if rawSummary, ok := top["summary"]; ok {
		if err := json.Unmarshal(rawSummary, &p.Summary); err != nil {
			return nil, fmt.Errorf("%w: \"summary\" is not a string", ErrShape)
		}
	}

	for _, field := range listFields {
		rawList, ok := top[field]
		if !ok {
			continue
		}
		if err := requireArrayOfObjects(field, rawList); err != nil {
			return nil, err
		}
		if err := decodeList(p, field, rawList); err != nil {
			return nil, err
		}
	}

	fillMissingIDs(p)
	return p, nil
}

// requireArrayOfObjects validates that raw is a JSON array whose elements are
// all objects (not strings or scalars).
func requireArrayOfObjects(field string, raw json.RawMessage) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return fmt.Errorf("%w: %q is not an array", ErrShape, field)
	}
	for i, e := range elems {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(e, &obj); err != nil {
			return fmt.Errorf("%w: %q[%d] is not an object", ErrShape, field, i)
		}
	}
	return nil
}

// decodeList decodes a validated array into the payload's typed list.
func decodeList(p *stepPayload, field string, raw json.RawMessage) error {
	var err error
	switch field {
	case "agendaItems":
		err = json.Unmarshal(raw, &p.AgendaItems)
	case "decisions":
		err = json.Unmarshal(raw, &p.Decisions)
	case "actionItems":
		err = json.Unmarshal(raw, &p.ActionItems)
	case "quotes":
		err = json.Unmarshal(raw, &p.Quotes)
	case "benchmarks":
		err = json.Unmarshal(raw, &p.Benchmarks)
	case "radioReports":
		err = json.Unmarshal(raw, &p.RadioReports)
	case "safetyEvents":
		err = json.Unmarshal(raw, &p.SafetyEvents)
	}
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrShape, field, err)
	}
	return nil
}

// fillMissingIDs mints an id for any item the model returned without one, so
// that relationship linking and the reference checker always have something
// to resolve against.
func fillMissingIDs(p *stepPayload) {
	mint := func(id *string) {
		if *id == "" {
			*id = uuid.NewString()
		}
	}
	for i := range p.AgendaItems {
		mint(&p.AgendaItems[i].ID)
	}
	for i := range p.Decisions {
		mint(&p.Decisions[i].ID)
	}
	for i := range p.ActionItems {
		mint(&p.ActionItems[i].ID)
	}
	for i := range p.Quotes {
		mint(&p.Quotes[i].ID)
	}
	for i := range p.Benchmarks {
		mint(&p.Benchmarks[i].ID)
	}
	for i := range p.RadioReports {
		mint(&p.RadioReports[i].ID)
	}
	for i := range p.SafetyEvents {
		mint(&p.SafetyEvents[i].ID)
	}
}
