// Package graph loads the input adjacency matrix and assigns edge weights,
// replicating the behavior of the original mrg.c loader: adjacency comes
// from the input file, weights are assigned pseudo-randomly at load time.
package graph

import (
	"bufio"
	"io"
	"math/rand"

	"github.com/pkg/errors"
)

const (
	// MinWeight and MaxWeight bound the pseudo-random edge weights, per
	// spec.md §6.3 ("[1,255]").
	MinWeight = 1
	MaxWeight = 255
)

// Graph is the immutable, replicated input: a symmetric adjacency relation
// and the weights assigned to each edge. It is never mutated after Load
// returns, so it is safe to share by pointer across rank goroutines (see
// DESIGN.md, Open Question 1).
type Graph struct {
	N       int
	adj     []bool // adj[u*N+v], symmetric, diagonal unused
	weights []uint8
}

// Vertices are 1-based in the spec; internally we use 0-based indices
// and translate at the loader/printer boundary only.

func (g *Graph) idx(u, v int) int { return u*g.N + v }

// HasEdge reports whether vertices u,v (0-based) are adjacent.
func (g *Graph) HasEdge(u, v int) bool {
	if u == v {
		return false
	}
	return g.adj[g.idx(u, v)]
}

// Weight returns w(u,v) (0-based), valid only where HasEdge(u,v) is true.
func (g *Graph) Weight(u, v int) int {
	return int(g.weights[g.idx(u, v)])
}

func (g *Graph) setEdge(u, v int, w uint8) {
	g.adj[g.idx(u, v)] = true
	g.adj[g.idx(v, u)] = true
	g.weights[g.idx(u, v)] = w
	g.weights[g.idx(v, u)] = w
}

// Load parses the ASCII input format of spec.md §6.3: a leading integer N,
// then N*N whitespace-separated non-negative integers forming the
// adjacency matrix row-major. Only the upper triangle (i<=j) is the
// canonical form and is the only part consulted; entries below the
// diagonal are read (so the scanner stays in sync) but discarded. Weights
// are NOT read from the file: each upper-triangle edge is assigned a
// pseudo-random weight in [minWeight,maxWeight] by rng, scanned in
// row-major order, matching original_source/mrg.c's single-pass
// read-then-assign loop so that a fixed seed reproduces fixed weights.
func Load(r io.Reader, rng *rand.Rand, minWeight, maxWeight int) (*Graph, error) {
	if minWeight < 0 || maxWeight < minWeight {
		return nil, errors.Errorf("graph: invalid weight bounds [%d,%d]", minWeight, maxWeight)
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	readInt := func() (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, errors.Wrap(err, "graph: scan")
			}
			return 0, errors.New("graph: unexpected end of input")
		}
		v := 0
		neg := false
		s := sc.Text()
		for i, c := range s {
			if i == 0 && c == '-' {
				neg = true
				continue
			}
			if c < '0' || c > '9' {
				return 0, errors.Errorf("graph: malformed integer %q", s)
			}
			v = v*10 + int(c-'0')
		}
		if neg {
			v = -v
		}
		return v, nil
	}

	n, err := readInt()
	if err != nil {
		return nil, errors.Wrap(err, "graph: reading N")
	}
	if n < 2 {
		return nil, errors.Errorf("graph: N must be >= 2, got %d", n)
	}

	g := &Graph{
		N:       n,
		adj:     make([]bool, n*n),
		weights: make([]uint8, n*n),
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v, err := readInt()
			if err != nil {
				return nil, errors.Wrapf(err, "graph: reading entry (%d,%d)", i, j)
			}
			if i < j && v != 0 {
				w := uint8(minWeight + rng.Intn(maxWeight-minWeight+1))
				g.setEdge(i, j, w)
			}
		}
	}

	return g, nil
}
