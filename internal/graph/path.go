package graph

import (
	"container/heap"
	"math"

	"github.com/nao1215/wikid/internal/model"
)

const (
	// ScoreCeiling is the relevance score treated as a perfect match.
	// It equals the largest interest boost, so boosted scores cost nothing.
	ScoreCeiling = 1.2

	// MinScore is the floor applied to non-positive scores before
	// converting them into a cost.
	MinScore = 1e-6
)

// Cost converts a relevance weight into a non-negative path cost.
func Cost(weight float64) float64 {
	if math.IsNaN(weight) || weight <= 0 {
		weight = MinScore
	}
	if weight >= ScoreCeiling {
		return 0
	}
	return -math.Log(weight / ScoreCeiling)
}

// Path is a route through the graph.
type Path struct {
	// Nodes lists the route from start to destination, both included.
	Nodes []model.DocumentID

	// Cost is the summed inverted cost of the route.
	Cost float64
}

// ShortestPath returns the most relevant route from start to destination.
// It runs Dijkstra with Cost as edge length over the outbound edges
// recorded in s, so direction is respected for a directed store.
//
// Returns ErrUnknownNode if start is not in the graph and ErrNoPath if
// destination cannot be reached.
func ShortestPath(s *Store, start, destination model.DocumentID) (Path, error) {
	if !s.HasNode(start) {
		return Path{}, ErrUnknownNode
	}
	if start == destination {
		return Path{Nodes: []model.DocumentID{start}}, nil
	}

	r := &pathRunner{
		store: s,
		dist:  map[model.DocumentID]float64{start: 0},
		prev:  make(map[model.DocumentID]model.DocumentID),
		done:  make(map[model.DocumentID]bool),
	}
	r.push(start, 0)

	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*pathItem)
		if r.done[item.id] {
			// Stale entry left behind by lazy decrease-key.
			continue
		}
		r.done[item.id] = true
		if item.id == destination {
			break
		}
		r.relax(item)
	}

	if !r.done[destination] {
		return Path{}, ErrNoPath
	}

	nodes := []model.DocumentID{destination}
	for cur := destination; cur != start; {
		cur = r.prev[cur]
		nodes = append(nodes, cur)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	return Path{Nodes: nodes, Cost: r.dist[destination]}, nil
}

// pathRunner holds the mutable state of one Dijkstra run.
type pathRunner struct {
	store *Store
	dist  map[model.DocumentID]float64
	prev  map[model.DocumentID]model.DocumentID
	done  map[model.DocumentID]bool
	pq    pathPQ
	seq   int
}

func (r *pathRunner) push(id model.DocumentID, dist float64) {
	heap.Push(&r.pq, &pathItem{id: id, dist: dist, seq: r.seq})
	r.seq++
}

// relax updates the neighbours of item. Neighbours come back in insertion
// order, so among equal-cost routes the earliest discovered one wins.
func (r *pathRunner) relax(item *pathItem) {
	for _, next := range r.store.Neighbors(item.id) {
		if r.done[next] {
			continue
		}
		w, _ := r.store.Weight(item.id, next)
		nd := item.dist + Cost(w)
		if cur, seen := r.dist[next]; !seen || nd < cur {
			r.dist[next] = nd
			r.prev[next] = item.id
			r.push(next, nd)
		}
	}
}

// pathItem is a heap entry.
type pathItem struct {
	id   model.DocumentID
	dist float64
	seq  int
}

// pathPQ is a min-heap ordered by distance, then push order.
type pathPQ []*pathItem

func (pq pathPQ) Len() int { return len(pq) }

func (pq pathPQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].seq < pq[j].seq
}

func (pq pathPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *pathPQ) Push(x any) { *pq = append(*pq, x.(*pathItem)) }

func (pq *pathPQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
