package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/fireline/internal/batch"
	"github.com/dusk-indust/fireline/internal/template"
)

// Mermaid produces a Mermaid graph TD diagram of a template's section
// dependency structure. Sections are grouped by their classified stage;
// dependency declarations become arrows from prerequisite to dependent.
func Mermaid(sections []template.Section) string {
	// Build section → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string, len(sections))
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	byStage := make(map[batch.Stage][]template.Section)
	for i, sec := range sections {
		a := batch.Classify(sec, i, len(sections))
		byStage[a.Stage] = append(byStage[a.Stage], sec)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, stage := range batch.Stages() {
		members := byStage[stage]
		if len(members) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%s\"]\n", getID(string(stage)+"_stage"), stage))
		for _, sec := range members {
			sb.WriteString(fmt.Sprintf("    %s[\"%.40s\"]\n", getID(sec.ID), sec.Name))
		}
		sb.WriteString("  end\n")
	}

	known := make(map[string]bool, len(sections))
	for _, sec := range sections {
		known[sec.ID] = true
	}
	for _, sec := range sections {
		for _, dep := range sec.Dependencies {
			if !known[dep] {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s --> %s\n", getID(dep), getID(sec.ID)))
		}
	}

	return sb.String()
}
