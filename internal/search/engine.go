package search

import (
	"github.com/pkg/errors"

	"github.com/wilx/mincut/internal/graph"
)

// Engine runs the Expand/Refresh rules of spec.md §4.1 against a fixed
// graph. It carries no rank/messaging state: internal/coordination
// composes an Engine with the best-bound and broadcast logic.
type Engine struct {
	G *graph.Graph
}

// NewEngine builds an Engine bound to g.
func NewEngine(g *graph.Graph) *Engine {
	return &Engine{G: g}
}

// ErrRefreshFresh is returned by Refresh when called on an already-fresh
// element — a hard invariant violation per spec.md §4.1's "implementers
// must detect the bug of double-refreshing".
var ErrRefreshFresh = errors.New("search: refresh called on an already-fresh element")

// Expand advances the DFS frontier: if the front element still has
// undecided vertices, it clones a child with one more vertex moved into Y,
// pushes the child onto the front, and advances the parent's cursor.
// Expand reports whether a child was produced; when it returns false the
// caller is responsible for popping the exhausted front element (spec.md
// §4.1: "If e.next >= N, pop e from the front").
func (eng *Engine) Expand(s *Stack) bool {
	e := s.Front()
	if e == nil {
		return false
	}
	n := uint32(eng.G.N)
	if e.Next >= n {
		return false
	}

	child := e.Clone()
	child.Sigma.Set(e.Next, true)
	child.Next = e.Next + 1
	child.Fresh = false

	e.Next++

	s.PushFront(child)
	return true
}

// Refresh brings e.Weight up to date with e.Sigma by applying the
// incremental single-vertex-move update of spec.md §4.1, then marks e
// fresh. It reports whether the refreshed weight equals 1 (a proven-
// optimal leaf per spec.md §1's early-exit shortcut).
func (eng *Engine) Refresh(e *Element) (bool, error) {
	if e.Fresh {
		return false, ErrRefreshFresh
	}

	// e.Next already reflects the post-move cursor (see Expand); the
	// vertex just moved into Y is at 0-based index e.Next-1.
	u := int(e.Next) - 1
	n := eng.G.N

	for i := 0; i < n; i++ {
		if i == u {
			continue
		}
		if !eng.G.HasEdge(u, i) {
			continue
		}
		w := int32(eng.G.Weight(u, i))
		if e.Sigma.Get(uint32(i)) {
			e.Weight -= w
		} else {
			e.Weight += w
		}
	}

	e.Fresh = true
	return e.Weight == 1, nil
}

// ExpandInto expands e half times into a fresh temporary list, mutating
// e.Next in place as each child is carved off, without touching any
// stack. This is the donation half-split policy of spec.md §4.2: the
// caller passes half = floor((N-e.Next)/2) and receives up to half newly
// generated children (fewer if e runs out of vertices to decide first).
func (eng *Engine) ExpandInto(e *Element, half int) []*Element {
	out := make([]*Element, 0, half)
	n := uint32(eng.G.N)
	for i := 0; i < half && e.Next < n; i++ {
		child := e.Clone()
		child.Sigma.Set(e.Next, true)
		child.Next = e.Next + 1
		child.Fresh = false
		e.Next++
		out = append(out, child)
	}
	return out
}
