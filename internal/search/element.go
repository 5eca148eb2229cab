// Package search implements the local DFS engine: the stack element
// representation, the front/back-addressable local stack, and the
// Expand/Refresh operations of spec.md §4.1. It has no knowledge of
// messaging, ranks, or the best-bound protocol — those live in
// internal/coordination, which composes an Engine with a transport.
package search

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/wilx/mincut/internal/bitset"
)

// Element is one partial-cut node of the DFS tree: σ, the cut weight
// (valid only if Fresh), the index of the next vertex to decide, and
// whether Weight currently reflects Sigma.
type Element struct {
	Sigma  *bitset.BitSet
	Weight int32
	Next   uint32
	Fresh  bool
}

// NewRoot returns the initial stack element for an N-vertex graph: vertex
// 1 (bit 0) fixed in X, nothing decided yet, weight 0 (no edges cut), and
// Next=1 since position 0 is never flipped.
func NewRoot(n uint32) *Element {
	return &Element{
		Sigma:  bitset.New(n),
		Weight: 0,
		Next:   1,
		Fresh:  true,
	}
}

// Clone deep-copies e, including Sigma.
func (e *Element) Clone() *Element {
	return &Element{
		Sigma:  e.Sigma.Clone(),
		Weight: e.Weight,
		Next:   e.Next,
		Fresh:  e.Fresh,
	}
}

// SerializeSize returns the exact byte length Encode will produce, per
// spec.md §6.1: int32 fresh, int32 weight, uint32 next, bitset(σ).
func (e *Element) SerializeSize() int {
	return 12 + e.Sigma.SerializeSize()
}

// Encode appends the wire representation of e to buf and returns it.
func (e *Element) Encode(buf []byte) []byte {
	var tmp [4]byte

	fresh := uint32(0)
	if e.Fresh {
		fresh = 1
	}
	binary.LittleEndian.PutUint32(tmp[:], fresh)
	buf = append(buf, tmp[:]...)

	binary.LittleEndian.PutUint32(tmp[:], uint32(e.Weight))
	buf = append(buf, tmp[:]...)

	binary.LittleEndian.PutUint32(tmp[:], e.Next)
	buf = append(buf, tmp[:]...)

	return e.Sigma.Encode(buf)
}

// DecodeElement reads an Element from buf, returning it and the number of
// bytes consumed.
func DecodeElement(buf []byte) (*Element, int, error) {
	if len(buf) < 12 {
		return nil, 0, errors.New("element: truncated header")
	}
	fresh := binary.LittleEndian.Uint32(buf[0:4]) != 0
	weight := int32(binary.LittleEndian.Uint32(buf[4:8]))
	next := binary.LittleEndian.Uint32(buf[8:12])

	sigma, n, err := bitset.Decode(buf[12:])
	if err != nil {
		return nil, 0, errors.Wrap(err, "element: decoding sigma")
	}
	return &Element{Sigma: sigma, Weight: weight, Next: next, Fresh: fresh}, 12 + n, nil
}
