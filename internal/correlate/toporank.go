package correlate

import (
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/lintmux/lintmux/internal/diag"
)

// TopoRank assigns each diagnostic id a rank such that every edge points
// from a lower rank to a higher one. Kahn's algorithm with a sorted
// frontier: whenever several ids are ready, the lexicographically
// smallest id string goes first, so the ranking is a pure function of
// the id set and the edges, independent of input order. Diagnostics
// stuck in a cycle keep their original relative order and rank after
// everything reachable. The result is a bijection onto 0..n-1 over the
// distinct ids.
func TopoRank(diags []diag.Diagnostic, edges []Edge) map[diag.ID]int {
	ids := make([]diag.ID, 0, len(diags))
	known := make(map[diag.ID]bool, len(diags))
	for _, d := range diags {
		id := d.ID()
		if known[id] {
			continue
		}
		known[id] = true
		ids = append(ids, id)
	}

	g := graph.New(graph.StringHash, graph.Directed())
	for _, id := range ids {
		_ = g.AddVertex(string(id))
	}
	for _, e := range edges {
		if e.From == e.To || !known[e.From] || !known[e.To] {
			continue
		}
		_ = g.AddEdge(string(e.From), string(e.To))
	}

	preds, err := g.PredecessorMap()
	if err != nil {
		return fallbackRank(ids)
	}
	adj, err := g.AdjacencyMap()
	if err != nil {
		return fallbackRank(ids)
	}

	indegree := make(map[string]int, len(ids))
	for v, ps := range preds {
		indegree[v] = len(ps)
	}

	frontier := make([]string, 0, len(ids))
	for _, id := range ids {
		if indegree[string(id)] == 0 {
			frontier = append(frontier, string(id))
		}
	}
	sort.Strings(frontier)

	rank := make(map[diag.ID]int, len(ids))
	next := 0
	for len(frontier) > 0 {
		v := frontier[0]
		frontier = frontier[1:]
		rank[diag.ID(v)] = next
		next++

		for w := range adj[v] {
			indegree[w]--
			if indegree[w] == 0 {
				at := sort.SearchStrings(frontier, w)
				frontier = append(frontier, "")
				copy(frontier[at+1:], frontier[at:])
				frontier[at] = w
			}
		}
	}

	// Cycle members never reach indegree zero; they rank last, in the
	// order the diagnostics arrived.
	for _, id := range ids {
		if _, done := rank[id]; !done {
			rank[id] = next
			next++
		}
	}
	return rank
}

func fallbackRank(ids []diag.ID) map[diag.ID]int {
	rank := make(map[diag.ID]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	return rank
}

// Order sorts diagnostics for presentation. With edges present the
// topological rank decides; without any edges the ranking would only
// echo id strings, so the ordering falls back to severity, file and
// position. Ties under a rank collision (duplicate ids) break the same
// way. The input slice is not modified.
func Order(diags []diag.Diagnostic, edges []Edge) []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(diags))
	copy(out, diags)

	if len(edges) == 0 {
		sort.SliceStable(out, func(i, j int) bool {
			return diag.Compare(out[i], out[j]) < 0
		})
		return out
	}

	rank := TopoRank(diags, edges)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank[out[i].ID()], rank[out[j].ID()]
		if ri != rj {
			return ri < rj
		}
		return diag.Compare(out[i], out[j]) < 0
	})
	return out
}
