package results

import "fmt"

// ReferenceIssue flags one relationship id that could not be resolved
// cleanly against the accumulated aggregate.
type ReferenceIssue struct {
	// ItemKind and ItemID identify the referencing item.
	ItemKind string `json:"itemKind"`
	ItemID   string `json:"itemId"`

	// RefKind and RefID identify the reference that failed to resolve.
	RefKind string `json:"refKind"`
	RefID   string `json:"refId"`

	Description string `json:"description"`
}

// CheckReferences resolves every relationship id in the aggregate against
// the accumulated id sets. Dangling references (no item with that id) and
// ambiguous references (the same id minted by more than one step) are
// reported as issues. The aggregate itself is never modified; callers decide
// whether to drop or surface flagged links.
func CheckReferences(r *AnalysisResults) []ReferenceIssue {
	agendaIDs := make(map[string]int, len(r.AgendaItems))
	for _, a := range r.AgendaItems {
		agendaIDs[a.ID]++
	}
	decisionIDs := make(map[string]int, len(r.Decisions))
	for _, d := range r.Decisions {
		decisionIDs[d.ID]++
	}

	var issues []ReferenceIssue

	check := func(itemKind, itemID, refKind, refID string, ids map[string]int) {
		switch ids[refID] {
		case 0:
			issues = append(issues, ReferenceIssue{
				ItemKind: itemKind, ItemID: itemID,
				RefKind: refKind, RefID: refID,
				Description: fmt.Sprintf("%s %q references %s %q, which does not exist", itemKind, itemID, refKind, refID),
			})
		case 1:
			// Resolves cleanly.
		default:
			issues = append(issues, ReferenceIssue{
				ItemKind: itemKind, ItemID: itemID,
				RefKind: refKind, RefID: refID,
				Description: fmt.Sprintf("%s %q references %s %q, which was minted by %d different steps", itemKind, itemID, refKind, refID, ids[refID]),
			})
		}
	}

	for _, d := range r.Decisions {
		for _, ref := range d.AgendaItemIDs {
			check("decision", d.ID, "agenda item", ref, agendaIDs)
		}
	}
	for _, a := range r.ActionItems {
		for _, ref := range a.AgendaItemIDs {
			check("action item", a.ID, "agenda item", ref, agendaIDs)
		}
		for _, ref := range a.DecisionIDs {
			check("action item", a.ID, "decision", ref, decisionIDs)
		}
	}

	return issues
}
