package prompt

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/fireline/internal/batch"
	"github.com/dusk-indust/fireline/internal/results"
	"github.com/dusk-indust/fireline/internal/template"
	"github.com/dusk-indust/fireline/internal/transcript"
)

// SystemInstruction is the system message sent with every completion call.
const SystemInstruction = `You are an expert fire-service incident analyst. You read transcribed
fireground radio traffic and extract structured findings. You respond with a
single JSON object and nothing else: no prose before or after, no markdown
fences.`

// Builder renders deterministic prompt text for one unit of work and the
// result-so-far. The same inputs always produce byte-identical prompts, so a
// rerun of the same template over the same transcript replays the same
// cascade.
type Builder struct {
	Transcript *transcript.Transcript
}

// NewBuilder creates a Builder over the given transcript.
func NewBuilder(tr *transcript.Transcript) *Builder {
	return &Builder{Transcript: tr}
}

// ForSection renders the prompt for one section in cascade mode. deps are
// the resolved dependency sections (template order); acc is the aggregate
// accumulated from every prior step.
func (b *Builder) ForSection(sec template.Section, deps []template.Section, acc *results.AnalysisResults) string {
	blocks := blocksFor(sec)
	var sb strings.Builder

	sb.WriteString("TASK\n")
	fmt.Fprintf(&sb, "Analyze the incident transcript below and produce the %q section.\n", sec.Name)
	sb.WriteString(sec.Prompt)
	sb.WriteString("\n\n")

	writeOutputSchema(&sb, false, sec.OutputFormat, blocks)

	b.writeSectionContext(&sb, sec, deps, blocks, acc)
	writeRelationshipRules(&sb, blocks, acc)

	sb.WriteString(timestampConvention)
	sb.WriteString("\n\n")

	b.writeSourceMaterial(&sb)
	return sb.String()
}

// ForBatch renders the prompt for one coarse-mode batch. Context is drawn
// from all strictly earlier batches' accumulated results.
func (b *Builder) ForBatch(cfg batch.Config, acc *results.AnalysisResults) string {
	blocks := blockSet{}
	for _, sec := range cfg.Sections {
		blocks = blocks.merge(blocksFor(sec))
	}

	var sb strings.Builder
	sb.WriteString("TASK\n")
	fmt.Fprintf(&sb, "Analyze the incident transcript below and produce the %s batch.\n", cfg.Name)
	sb.WriteString(cfg.Description)
	sb.WriteString("\n\nProduce one entry in \"sections\" for each of the following, in order:\n")
	for _, sec := range cfg.Sections {
		fmt.Fprintf(&sb, "- %q: %s\n", sec.Name, sec.Prompt)
	}
	sb.WriteString("\n")

	writeOutputSchema(&sb, true, "", blocks)

	b.writeBatchContext(&sb, acc)
	writeRelationshipRules(&sb, blocks, acc)

	sb.WriteString(timestampConvention)
	sb.WriteString("\n\n")

	b.writeSourceMaterial(&sb)
	return sb.String()
}

// writeOutputSchema renders the required JSON shape. Per-section mode
// requires a "content" string; batch mode requires a "sections" array.
func writeOutputSchema(sb *strings.Builder, batchMode bool, format template.OutputFormat, blocks blockSet) {
	sb.WriteString("OUTPUT FORMAT\nRespond with a single JSON object of this shape:\n{\n")
	if batchMode {
		sb.WriteString(`  "sections": [{"name": "<section name>", "content": "<the section's findings>"}],` + "\n")
	} else {
		sb.WriteString(`  "content": "<the section's findings>",` + "\n")
	}
	sb.WriteString(`  "summary": "<one-paragraph incident summary, or omit>",` + "\n")
	schemaLines(blocks, sb)
	sb.WriteString("}\nOmit any optional field you have nothing for. Never return a structured list as strings; every list element must be an object.\n")
	if format != "" && format != template.FormatParagraph {
		fmt.Fprintf(sb, "Write the \"content\" field as %s.\n", contentStyle(format))
	}
	sb.WriteString("\n")
}

// contentStyle renders the prose style hint for a declared output format.
func contentStyle(f template.OutputFormat) string {
	switch f {
	case template.FormatBulletPoints:
		return "bullet points, one finding per line"
	case template.FormatActionItems:
		return "a task list, one task per line"
	case template.FormatDecisions:
		return "a list of decisions, one per line"
	case template.FormatQuotes:
		return "a list of verbatim quotes with speakers"
	default:
		return "concise prose"
	}
}

// writeSectionContext renders the CONTEXT FROM PREVIOUS ANALYSIS block for
// cascade mode: the named dependency sections' content plus every
// already-extracted agenda item and decision with its id. When the section
// declares dependencies but nothing has accumulated yet, that gap is stated
// explicitly so the model knows it is working with less than the template
// author intended. A dependency-free section still gets the extracted id
// lists when its schema blocks will carry relationship ids; the relationship
// rules never reference a list the prompt does not contain.
func (b *Builder) writeSectionContext(sb *strings.Builder, sec template.Section, deps []template.Section, blocks blockSet, acc *results.AnalysisResults) {
	hasItems := acc != nil && (len(acc.AgendaItems) > 0 || len(acc.Decisions) > 0)

	if len(sec.Dependencies) == 0 {
		if !hasItems || !(blocks.Decisions || blocks.Actions) {
			return
		}
		sb.WriteString("CONTEXT FROM PREVIOUS ANALYSIS\n")
		writeExtractedItems(sb, acc)
		return
	}

	sb.WriteString("CONTEXT FROM PREVIOUS ANALYSIS\n")

	bySection := make(map[string]string)
	if acc != nil {
		for _, s := range acc.Sections {
			bySection[s.Name] = s.Content
		}
	}

	wroteAny := false
	for _, dep := range deps {
		content, ok := bySection[dep.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(sb, "--- %s ---\n%s\n", dep.Name, content)
		wroteAny = true
	}

	if !wroteAny {
		fmt.Fprintf(sb, "This section was defined to build on %s, but no prior analysis is available yet. Work from the transcript alone and note nothing is missing from your own output.\n\n",
			dependencyNames(sec, deps))
		writeExtractedItems(sb, acc)
		return
	}

	sb.WriteString("\n")
	writeExtractedItems(sb, acc)
}

// writeBatchContext renders context for a batch from everything earlier
// batches accumulated: the summary plus extracted agenda items and decisions.
func (b *Builder) writeBatchContext(sb *strings.Builder, acc *results.AnalysisResults) {
	if acc == nil || (acc.Summary == "" && len(acc.AgendaItems) == 0 && len(acc.Decisions) == 0) {
		return
	}

	sb.WriteString("CONTEXT FROM PREVIOUS ANALYSIS\n")
	if acc.Summary != "" {
		fmt.Fprintf(sb, "Incident summary so far: %s\n\n", acc.Summary)
	}
	writeExtractedItems(sb, acc)
}

// writeExtractedItems lists every accumulated agenda item and decision with
// its id so the model can emit correctly-linked relationship ids.
func writeExtractedItems(sb *strings.Builder, acc *results.AnalysisResults) {
	if acc == nil {
		return
	}
	if len(acc.AgendaItems) > 0 {
		sb.WriteString("Agenda items extracted so far (use these exact ids for agendaItemIds):\n")
		for _, a := range acc.AgendaItems {
			fmt.Fprintf(sb, "- [%s] %s\n", a.ID, a.Title)
		}
		sb.WriteString("\n")
	}
	if len(acc.Decisions) > 0 {
		sb.WriteString("Decisions extracted so far (use these exact ids for decisionIds):\n")
		for _, d := range acc.Decisions {
			fmt.Fprintf(sb, "- [%s] %s\n", d.ID, d.Description)
		}
		sb.WriteString("\n")
	}
}

// writeRelationshipRules renders the relationship-mapping instructions.
// Their content depends on what has already been extracted: a rule is only
// stated when the target ids actually exist in the accumulated results.
func writeRelationshipRules(sb *strings.Builder, blocks blockSet, acc *results.AnalysisResults) {
	if acc == nil {
		return
	}

	var rules []string
	if blocks.Decisions && len(acc.AgendaItems) > 0 {
		rules = append(rules, "For every decision you extract, set agendaItemIds to the ids of the agenda items it resolves, chosen from the agenda item ids listed above.")
	}
	if blocks.Actions {
		if len(acc.AgendaItems) > 0 {
			rules = append(rules, "For every action item, set agendaItemIds to the ids of the related agenda items listed above.")
		}
		if len(acc.Decisions) > 0 {
			rules = append(rules, "For every action item, set decisionIds to the ids of the decisions that produced it, chosen from the decision ids listed above.")
		}
	}
	if len(rules) == 0 {
		return
	}

	sb.WriteString("RELATIONSHIP MAPPING\n")
	for _, r := range rules {
		sb.WriteString("- " + r + "\n")
	}
	sb.WriteString("Never invent relationship ids that are not in the lists above.\n\n")
}

// writeSourceMaterial renders the transcript, supplemental material, and
// annotations.
func (b *Builder) writeSourceMaterial(sb *strings.Builder) {
	if b.Transcript == nil {
		return
	}
	if len(b.Transcript.Annotations) > 0 {
		sb.WriteString("REVIEWER ANNOTATIONS\n")
		for _, a := range b.Transcript.Annotations {
			fmt.Fprintf(sb, "- [%s] %s\n", a.Timestamp, a.Text)
		}
		sb.WriteString("\n")
	}
	if b.Transcript.Supplemental != "" {
		sb.WriteString("SUPPLEMENTAL MATERIAL\n")
		sb.WriteString(b.Transcript.Supplemental)
		sb.WriteString("\n\n")
	}
	sb.WriteString("TRANSCRIPT\n")
	sb.WriteString(b.Transcript.Text)
	sb.WriteString("\n")
}

// dependencyNames renders the declared dependencies for the
// missing-context notice, preferring resolved section names.
func dependencyNames(sec template.Section, deps []template.Section) string {
	if len(deps) == 0 {
		return fmt.Sprintf("the sections %s", strings.Join(quoteAll(sec.Dependencies), ", "))
	}
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = fmt.Sprintf("%q", d.Name)
	}
	return strings.Join(names, ", ")
}

func quoteAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = fmt.Sprintf("%q", id)
	}
	return out
}
