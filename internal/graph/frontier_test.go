package graph

import "testing"

// TestSelectNext tests the global best-first frontier.
func TestSelectNext(t *testing.T) {
	t.Parallel()

	t.Run("picks heaviest unvisited edge", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.AddEdge("A", "B", 0.2)
		s.AddEdge("A", "C", 0.9)
		visited := NewVisitedSet()
		visited.Add("A")

		next, w, ok := SelectNext(s, visited)
		if !ok || next != "C" || w != 0.9 {
			t.Errorf("expected C/0.9, got %q/%v (ok=%v)", next, w, ok)
		}
	})

	t.Run("skips visited endpoints", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.AddEdge("A", "B", 0.2)
		s.AddEdge("A", "C", 0.9)
		visited := NewVisitedSet()
		visited.Add("A")
		visited.Add("C")

		next, w, ok := SelectNext(s, visited)
		if !ok || next != "B" || w != 0.2 {
			t.Errorf("expected B/0.2, got %q/%v (ok=%v)", next, w, ok)
		}
	})

	t.Run("frontier is global, not local", func(t *testing.T) {
		t.Parallel()

		// C was expanded last, but its links are weaker than A's remaining link.
		s := NewStore()
		s.AddEdge("A", "B", 0.8)
		s.AddEdge("A", "C", 0.9)
		s.AddEdge("C", "E", 0.1)
		visited := NewVisitedSet()
		visited.Add("A")
		visited.Add("C")

		next, _, ok := SelectNext(s, visited)
		if !ok || next != "B" {
			t.Errorf("expected B from the ancestor, got %q", next)
		}
	})

	t.Run("ties resolve to first inserted edge", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.AddEdge("A", "X", 0.5)
		s.AddEdge("A", "Y", 0.5)
		s.AddEdge("A", "Z", 0.5)
		visited := NewVisitedSet()
		visited.Add("A")

		for range 5 {
			next, _, ok := SelectNext(s, visited)
			if !ok || next != "X" {
				t.Fatalf("expected X on every call, got %q", next)
			}
		}
	})

	t.Run("exhausted frontier", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.AddEdge("A", "B", 0.5)
		visited := NewVisitedSet()
		visited.Add("A")
		visited.Add("B")

		if _, _, ok := SelectNext(s, visited); ok {
			t.Error("expected exhausted frontier")
		}
		if _, _, ok := SelectNext(NewStore(), visited); ok {
			t.Error("expected exhausted frontier on empty graph")
		}
	})

	t.Run("considers zero and negative weights", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.AddEdge("A", "B", -0.3)
		s.AddEdge("A", "C", 0)
		visited := NewVisitedSet()
		visited.Add("A")

		next, w, ok := SelectNext(s, visited)
		if !ok || next != "C" || w != 0 {
			t.Errorf("expected C/0, got %q/%v (ok=%v)", next, w, ok)
		}
	})
}

// TestVisitedSet tests the monotone visited set.
func TestVisitedSet(t *testing.T) {
	t.Parallel()

	v := NewVisitedSet()
	if !v.Add("A") {
		t.Error("first add should succeed")
	}
	if v.Add("A") {
		t.Error("second add should report duplicate")
	}
	v.Add("B")

	if v.Len() != 2 {
		t.Errorf("expected 2, got %d", v.Len())
	}
	order := v.Order()
	if order[0] != "A" || order[1] != "B" {
		t.Errorf("unexpected order %v", order)
	}
	if !v.Contains("B") || v.Contains("C") {
		t.Error("Contains mismatch")
	}
}
