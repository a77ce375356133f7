package graph

import (
	"context"
	"fmt"

	"github.com/dusk-indust/fireline/internal/ctxlog"
	"github.com/dusk-indust/fireline/internal/template"
)

// Mode controls how the builder treats dependency references to unknown
// section ids.
type Mode int

const (
	// Strict fails the build on any reference to a non-existent section.
	Strict Mode = iota

	// Lenient drops edges to non-existent sections and records a warning.
	Lenient
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// Node wraps one template section with its resolved dependencies and the
// computed reverse edges (dependents).
type Node struct {
	Section      template.Section
	Dependencies []string // ids this section depends on (resolved)
	Dependents   []string // ids of sections that depend on this one
}

// Graph maps section ids to nodes while preserving template declaration
// order. It is built once per run and not mutated afterwards.
type Graph struct {
	order    []string // section ids in declaration order
	nodes    map[string]*Node
	warnings []string // lenient-mode pruning notes
}

// Build constructs the dependency graph for the given sections. A
// self-referential dependency fails in either mode. A reference to an unknown
// section id fails in Strict mode and is pruned with a warning in Lenient
// mode.
func Build(ctx context.Context, sections []template.Section, mode Mode) (*Graph, error) {
	g := &Graph{
		order: make([]string, 0, len(sections)),
		nodes: make(map[string]*Node, len(sections)),
	}

	for _, s := range sections {
		g.order = append(g.order, s.ID)
		g.nodes[s.ID] = &Node{Section: s}
	}

	log := ctxlog.FromContext(ctx)

	for _, s := range sections {
		node := g.nodes[s.ID]
		for _, dep := range s.Dependencies {
			if dep == s.ID {
				return nil, fmt.Errorf("graph: section %q declares a self-referential dependency", s.ID)
			}

			target, ok := g.nodes[dep]
			if !ok {
				if mode == Strict {
					return nil, fmt.Errorf("graph: section %q depends on non-existent section %q", s.ID, dep)
				}
				warning := fmt.Sprintf("section %q depends on non-existent section %q; edge dropped", s.ID, dep)
				g.warnings = append(g.warnings, warning)
				log.Warn("graph: pruned dependency", "section", s.ID, "missing", dep)
				continue
			}

			node.Dependencies = append(node.Dependencies, dep)
			target.Dependents = append(target.Dependents, s.ID)
		}
	}

	stats := g.Stats()
	log.Debug("graph: built",
		"mode", mode.String(),
		"sections", stats.Total,
		"withDeps", stats.WithDependencies,
		"leaves", stats.Leaves,
		"isolated", stats.Isolated,
	)

	return g, nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Node returns the node for the given section id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// IDs returns section ids in template declaration order.
func (g *Graph) IDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Warnings returns the pruning notes recorded during a lenient build.
func (g *Graph) Warnings() []string {
	return g.warnings
}

// Stats summarizes the graph's structure. These are observability signals
// only; nothing branches on them.
type Stats struct {
	Total               int
	WithDependencies    int
	WithoutDependencies int
	Leaves              int // no dependents
	Isolated            int // no dependencies and no dependents
}

// Stats computes structural statistics over the graph.
func (g *Graph) Stats() Stats {
	s := Stats{Total: len(g.order)}
	for _, id := range g.order {
		n := g.nodes[id]
		if len(n.Dependencies) > 0 {
			s.WithDependencies++
		} else {
			s.WithoutDependencies++
		}
		if len(n.Dependents) == 0 {
			s.Leaves++
			if len(n.Dependencies) == 0 {
				s.Isolated++
			}
		}
	}
	return s
}
