// Package pathfinder implements uniform-cost shortest-path search over a
// Map Index's neighbor graph. container/heap is standard library; no repo
// in the reference pack ships a graph or pathfinding library, so Dijkstra
// is implemented directly against the stdlib heap interface rather than
// imported, per DESIGN.md's stdlib justification for this package.
package pathfinder

import (
	"container/heap"

	"github.com/sourceplane/simkernel/internal/mapindex"
	"github.com/sourceplane/simkernel/internal/simerr"
)

// EdgeCost returns the cost of moving from a to b along an existing edge.
// A nil EdgeCost defaults every edge to cost 1.
type EdgeCost func(a, b mapindex.CellKey) float64

// FindPath returns the lowest-cost walkable path from start to goal,
// inclusive of both endpoints. Unwalkable cells (including the endpoints
// themselves) are never traversed and never returned. Ties in total cost
// are broken by the insertion order of the cell each candidate path most
// recently extended into, matching the Map Index's insertion sequence.
func FindPath(ix *mapindex.Index, start, goal mapindex.CellKey, cost EdgeCost) ([]mapindex.CellKey, error) {
	if !ix.IsWalkable(start) {
		return nil, simerr.New(simerr.NotFound, "start cell %s is not walkable", start)
	}
	if !ix.IsWalkable(goal) {
		return nil, simerr.New(simerr.NotFound, "goal cell %s is not walkable", goal)
	}
	if cost == nil {
		cost = func(a, b mapindex.CellKey) float64 { return 1 }
	}

	if start == goal {
		return []mapindex.CellKey{start}, nil
	}

	dist := map[mapindex.CellKey]float64{start: 0}
	prev := map[mapindex.CellKey]mapindex.CellKey{}
	visited := map[mapindex.CellKey]bool{}

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{key: start, dist: 0, seq: ix.InsertionSeq(start)})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pqItem)
		if visited[cur.key] {
			continue
		}
		visited[cur.key] = true

		if cur.key == goal {
			return reconstruct(prev, start, goal), nil
		}

		for _, next := range ix.Neighbors(cur.key) {
			if !ix.IsWalkable(next) || visited[next] {
				continue
			}
			nd := dist[cur.key] + cost(cur.key, next)
			existing, seen := dist[next]
			if !seen || nd < existing {
				dist[next] = nd
				prev[next] = cur.key
				heap.Push(pq, &pqItem{key: next, dist: nd, seq: ix.InsertionSeq(next)})
			}
		}
	}

	return nil, simerr.New(simerr.NotFound, "no path from %s to %s", start, goal)
}

func reconstruct(prev map[mapindex.CellKey]mapindex.CellKey, start, goal mapindex.CellKey) []mapindex.CellKey {
	path := []mapindex.CellKey{goal}
	cur := goal
	for cur != start {
		cur = prev[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type pqItem struct {
	key  mapindex.CellKey
	dist float64
	seq  int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(*pqItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
