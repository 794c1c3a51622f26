package analyze

import (
	"slices"

	"github.com/matzehuels/stacksolve/pkg/graph"
)

// frame is one package on the DFS stack and the index of its next
// dependency to explore.
type frame struct {
	id   string
	next int
}

// DetectCycles returns depends_on cycles in g, or nil when g is acyclic.
//
// Starting packages are walked in insertion order with an explicit stack.
// Each cycle is the stack path from the re-entered package through the
// current one, closed by the re-entered package again, so [A B C A] means
// A→B→C→A. At most one cycle is reported per starting package; the rest of
// that traversal still runs so every package is visited exactly once.
func DetectCycles(g *graph.Graph) [][]string {
	visited := make(map[string]bool, g.NodeCount())
	onStack := make(map[string]bool)
	var cycles [][]string

	for _, start := range g.IDs() {
		if visited[start] {
			continue
		}
		found := false
		stack := []frame{{id: start}}
		visited[start] = true
		onStack[start] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.Dependencies(top.id)
			if top.next >= len(deps) {
				onStack[top.id] = false
				stack = stack[:len(stack)-1]
				continue
			}
			child := deps[top.next]
			top.next++

			switch {
			case onStack[child]:
				if !found {
					cycles = append(cycles, cyclePath(stack, child))
					found = true
				}
			case !visited[child]:
				visited[child] = true
				onStack[child] = true
				stack = append(stack, frame{id: child})
			}
		}
	}
	return cycles
}

func cyclePath(stack []frame, closing string) []string {
	var path []string
	for i, f := range stack {
		if f.id == closing {
			for _, g := range stack[i:] {
				path = append(path, g.id)
			}
			break
		}
	}
	return append(path, closing)
}

// CycleConflicts converts cycles into high-severity dependency_cycle
// conflicts over the distinct packages of each cycle.
func CycleConflicts(cycles [][]string) []Conflict {
	out := make([]Conflict, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, newConflict(KindCycle, SeverityHigh, ResolveCycleBreaking, slices.Clone(c)))
	}
	return out
}
