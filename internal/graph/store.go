package graph

import (
	"iter"
	"sync"

	"github.com/nao1215/wikid/internal/model"
)

// edgeKey identifies an edge by its endpoints.
type edgeKey struct {
	from model.DocumentID
	to   model.DocumentID
}

// Store is the weighted graph of explored documents.
// Edges keep the order of their first insertion; re-adding an existing
// (from, to) pair replaces the weight in place.
//
// Store is safe for concurrent use. The search engine writes from one
// goroutine, but the lock lets scorers running in parallel funnel their
// insertions through a single Store.
type Store struct {
	mu sync.RWMutex

	// directed controls whether AddEdge also writes the reverse edge.
	directed bool

	// order holds edge keys in first-insertion order.
	order []edgeKey

	// weights maps each edge key to its current weight.
	weights map[edgeKey]float64

	// adjacency lists outbound neighbours in first-insertion order.
	adjacency map[model.DocumentID][]model.DocumentID

	// nodes holds every endpoint seen, in first-seen order.
	nodes     []model.DocumentID
	nodeIndex map[model.DocumentID]struct{}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithUndirected makes AddEdge insert both directions with the same weight.
func WithUndirected() StoreOption {
	return func(s *Store) {
		s.directed = false
	}
}

// NewStore creates an empty directed Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		directed:  true,
		order:     make([]edgeKey, 0),
		weights:   make(map[edgeKey]float64),
		adjacency: make(map[model.DocumentID][]model.DocumentID),
		nodes:     make([]model.DocumentID, 0),
		nodeIndex: make(map[model.DocumentID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Directed reports whether the store inserts edges one way only.
func (s *Store) Directed() bool {
	return s.directed
}

// AddNode registers a node without edges. The search start is added this
// way so that a dead-end start is still part of the graph.
func (s *Store) AddNode(id model.DocumentID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addNodeLocked(id)
}

// AddEdge inserts or updates the edge from→to.
// Self-edges are rejected and AddEdge returns false for them.
func (s *Store) AddEdge(from, to model.DocumentID, weight float64) bool {
	if from == to {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.putLocked(from, to, weight)
	if !s.directed {
		s.putLocked(to, from, weight)
	}
	return true
}

func (s *Store) putLocked(from, to model.DocumentID, weight float64) {
	key := edgeKey{from: from, to: to}
	if _, exists := s.weights[key]; !exists {
		s.order = append(s.order, key)
		s.adjacency[from] = append(s.adjacency[from], to)
	}
	s.weights[key] = weight
	s.addNodeLocked(from)
	s.addNodeLocked(to)
}

func (s *Store) addNodeLocked(id model.DocumentID) {
	if _, ok := s.nodeIndex[id]; ok {
		return
	}
	s.nodeIndex[id] = struct{}{}
	s.nodes = append(s.nodes, id)
}

// Edges returns a lazy sequence over all edges in insertion order.
// The sequence can be ranged over any number of times; each pass sees the
// edges present when that pass reaches them.
func (s *Store) Edges() iter.Seq[model.Edge] {
	return func(yield func(model.Edge) bool) {
		for i := 0; ; i++ {
			s.mu.RLock()
			if i >= len(s.order) {
				s.mu.RUnlock()
				return
			}
			key := s.order[i]
			e := model.Edge{From: key.from, To: key.to, Weight: s.weights[key]}
			s.mu.RUnlock()

			if !yield(e) {
				return
			}
		}
	}
}

// EdgeList returns a snapshot of all edges in insertion order.
func (s *Store) EdgeList() []model.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := make([]model.Edge, len(s.order))
	for i, key := range s.order {
		edges[i] = model.Edge{From: key.from, To: key.to, Weight: s.weights[key]}
	}
	return edges
}

// Weight returns the weight of from→to and whether the edge exists.
func (s *Store) Weight(from, to model.DocumentID) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.weights[edgeKey{from: from, to: to}]
	return w, ok
}

// HasNode reports whether id is an endpoint of any edge or was added as a node.
func (s *Store) HasNode(id model.DocumentID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodeIndex[id]
	return ok
}

// Neighbors returns the outbound neighbours of id in insertion order.
func (s *Store) Neighbors(id model.DocumentID) []model.DocumentID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.DocumentID, len(s.adjacency[id]))
	copy(out, s.adjacency[id])
	return out
}

// Nodes returns every node in first-seen order.
func (s *Store) Nodes() []model.DocumentID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.DocumentID, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of distinct edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
