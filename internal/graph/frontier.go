package graph

import "github.com/nao1215/wikid/internal/model"

// VisitedSet records the documents that have been expanded.
// It only grows; there is no removal.
type VisitedSet struct {
	order []model.DocumentID
	index map[model.DocumentID]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{
		order: make([]model.DocumentID, 0),
		index: make(map[model.DocumentID]struct{}),
	}
}

// Add marks id visited. It returns false if id was already present.
func (v *VisitedSet) Add(id model.DocumentID) bool {
	if _, ok := v.index[id]; ok {
		return false
	}
	v.index[id] = struct{}{}
	v.order = append(v.order, id)
	return true
}

// Contains reports whether id has been visited.
func (v *VisitedSet) Contains(id model.DocumentID) bool {
	_, ok := v.index[id]
	return ok
}

// Len returns the number of visited documents.
func (v *VisitedSet) Len() int {
	return len(v.order)
}

// Order returns the visited documents in the order they were added.
func (v *VisitedSet) Order() []model.DocumentID {
	out := make([]model.DocumentID, len(v.order))
	copy(out, v.order)
	return out
}

// Visited is the read side of a visited set.
type Visited interface {
	Contains(id model.DocumentID) bool
}

// SelectNext returns the unvisited endpoint of the heaviest edge in the
// whole graph, together with that edge's weight.
//
// Every edge is considered, not only those leaving the most recently
// expanded node. Among equal weights the edge inserted first wins, which
// makes the choice deterministic for a given graph and visited set.
// ok is false when every edge points at a visited node.
func SelectNext(s *Store, visited Visited) (next model.DocumentID, weight float64, ok bool) {
	for e := range s.Edges() {
		if visited.Contains(e.To) {
			continue
		}
		if !ok || e.Weight > weight {
			next, weight, ok = e.To, e.Weight, true
		}
	}
	return next, weight, ok
}
