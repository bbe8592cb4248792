package graph

import W "github.com/cs-au-dk/monotone/utils/worklist"

type traversalFunc[T any] func(node T) (stop bool)

// Performs a breadth-first search from the provided start nodes, calling the
// provided function (f) for every reachable node, stopping early if f returns
// true.
// Returns whether the search stopped early (as a result of f returning true).
func (G Graph[T]) BFSV(f traversalFunc[T], starts ...T) bool {
	visited := G.mapFactory()
	for _, start := range starts {
		visited.Set(start, true)
	}

	done := false
	W.StartV(starts, func(node T, add func(T)) {
		if done || f(node) {
			done = true
			return
		}

		for _, next := range G.Edges(node) {
			if _, found := visited.Get(next); !found {
				visited.Set(next, true)
				add(next)
			}
		}
	})

	return done
}

// Performs a breadth-first search from the provided start node, calling the
// provided function (f) for every reachable node, stopping early if f returns
// true.
// Returns whether the search stopped early (as a result of f returning true).
func (G Graph[T]) BFS(start T, f traversalFunc[T]) bool {
	return G.BFSV(f, start)
}

// Postorder returns the nodes reachable from the start node in depth-first
// postorder. Sibling edges are visited in the order the edge relation yields
// them, so the result is deterministic for deterministic edge relations.
func (G Graph[T]) Postorder(start T) []T {
	visited := G.mapFactory()
	order := []T{}

	var visit func(T)
	visit = func(node T) {
		if _, found := visited.Get(node); found {
			return
		}
		visited.Set(node, true)

		for _, next := range G.Edges(node) {
			visit(next)
		}

		order = append(order, node)
	}

	visit(start)
	return order
}

// ReversePostorder returns the nodes reachable from the start node in
// reverse postorder, the canonical iteration order for forward dataflow
// problems.
func (G Graph[T]) ReversePostorder(start T) []T {
	order := G.Postorder(start)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
