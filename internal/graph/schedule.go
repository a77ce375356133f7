package graph

// TopoOrder computes a processing order via Kahn's algorithm. When several
// nodes are simultaneously eligible they are taken in template declaration
// order (FIFO queue seeded in declaration order), so the order is
// deterministic run-to-run for the same template. An empty graph yields an
// empty order. If a cycle prevents placing every node, the returned error is
// a *CycleError naming every cycle.
func TopoOrder(g *Graph) ([]string, error) {
	indegree := make(map[string]int, g.Len())
	for _, id := range g.order {
		indegree[id] = len(g.nodes[id].Dependencies)
	}

	var queue []string
	for _, id := range g.order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]string, 0, g.Len())
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)

		for _, dependent := range g.nodes[id].Dependents {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(sorted) < g.Len() {
		unplaced := make(map[string]bool, g.Len()-len(sorted))
		placed := make(map[string]bool, len(sorted))
		for _, id := range sorted {
			placed[id] = true
		}
		for _, id := range g.order {
			if !placed[id] {
				unplaced[id] = true
			}
		}
		return nil, diagnoseCycles(g, unplaced)
	}

	return sorted, nil
}

// Levels partitions the graph into waves: each node is assigned the smallest
// level such that every dependency sits in a strictly earlier level. Nodes
// within a wave appear in template declaration order. A cycle yields a
// *CycleError.
func Levels(g *Graph) ([][]string, error) {
	indegree := make(map[string]int, g.Len())
	for _, id := range g.order {
		indegree[id] = len(g.nodes[id].Dependencies)
	}

	leveled := make(map[string]bool, g.Len())
	var levels [][]string

	for len(leveled) < g.Len() {
		var wave []string
		for _, id := range g.order {
			if !leveled[id] && indegree[id] == 0 {
				wave = append(wave, id)
			}
		}
		if len(wave) == 0 {
			// No progress: everything left is on a cycle.
			unplaced := make(map[string]bool, g.Len()-len(leveled))
			for _, id := range g.order {
				if !leveled[id] {
					unplaced[id] = true
				}
			}
			return nil, diagnoseCycles(g, unplaced)
		}

		for _, id := range wave {
			leveled[id] = true
			for _, dependent := range g.nodes[id].Dependents {
				indegree[dependent]--
			}
		}
		levels = append(levels, wave)
	}

	return levels, nil
}
