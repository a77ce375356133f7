package graph

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError reports every dependency cycle found when a scheduling pass
// could not place all nodes.
type CycleError struct {
	// Cycles holds each cycle as an ordered chain of section names.
	Cycles [][]string

	// Unprocessed lists the ids of every section the scheduler could not place.
	Unprocessed []string
}

func (e *CycleError) Error() string {
	chains := make([]string, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		chains = append(chains, strings.Join(c, " -> "))
	}
	return fmt.Sprintf("graph: dependency cycle(s) detected: [%s]; unprocessed sections: %s",
		strings.Join(chains, "; "), strings.Join(e.Unprocessed, ", "))
}

// diagnoseCycles finds every distinct cycle among the unplaced nodes by
// depth-first walks restricted to the unplaced set. A node can be unplaced
// without sitting on a cycle (it merely feeds into one); walks from such
// nodes re-find a cycle already reported, so cycles are deduplicated by
// their normalized rotation.
func diagnoseCycles(g *Graph, unplaced map[string]bool) *CycleError {
	attributed := make(map[string]bool, len(unplaced))
	seen := make(map[string]bool)
	var cycles [][]string

	// Walk in declaration order so the report is deterministic.
	for _, id := range g.order {
		if !unplaced[id] || attributed[id] {
			continue
		}
		cycle := findCycleFrom(g, id, unplaced)
		if cycle == nil {
			continue
		}
		for _, member := range cycle {
			attributed[member] = true
		}
		key := strings.Join(rotateToSmallest(cycle), "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		cycles = append(cycles, cycleNames(g, cycle))
	}

	unprocessed := make([]string, 0, len(unplaced))
	for _, id := range g.order {
		if unplaced[id] {
			unprocessed = append(unprocessed, id)
		}
	}
	sort.Strings(unprocessed)

	return &CycleError{Cycles: cycles, Unprocessed: unprocessed}
}

// findCycleFrom walks dependency edges from start, staying inside the
// unplaced set. When the walk revisits a node already on the current path,
// the path suffix from that node onward is exactly one cycle.
func findCycleFrom(g *Graph, start string, unplaced map[string]bool) []string {
	onPath := make(map[string]int) // id -> index in path
	var path []string

	var walk func(id string) []string
	walk = func(id string) []string {
		if at, ok := onPath[id]; ok {
			return append([]string{}, path[at:]...)
		}
		onPath[id] = len(path)
		path = append(path, id)

		for _, dep := range g.nodes[id].Dependencies {
			if !unplaced[dep] {
				continue
			}
			if cycle := walk(dep); cycle != nil {
				return cycle
			}
		}

		path = path[:len(path)-1]
		delete(onPath, id)
		return nil
	}

	return walk(start)
}

// rotateToSmallest normalizes a cycle to start at its smallest id so the
// same cycle entered at different nodes compares equal.
func rotateToSmallest(cycle []string) []string {
	min := 0
	for i, id := range cycle {
		if id < cycle[min] {
			min = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[min:]...)
	out = append(out, cycle[:min]...)
	return out
}

// cycleNames maps a cycle of section ids to section names for the error
// message, closing the chain with the first name.
func cycleNames(g *Graph, cycle []string) []string {
	names := make([]string, 0, len(cycle)+1)
	for _, id := range cycle {
		names = append(names, g.nodes[id].Section.Name)
	}
	names = append(names, g.nodes[cycle[0]].Section.Name)
	return names
}
