// Package bitset implements the fixed-width bit vector used to represent
// subset membership (the X/Y partition) on the wire and in the DFS stack.
package bitset

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const wordBits = 32

// BitSet is a fixed-width bit vector, indexed from 0, serialized per the
// wire format: a uint32 size in bits followed by ceil(size/32) uint32
// words, bit i of the set living in word[i/32] at bit (i%32) (LSB first).
type BitSet struct {
	size  uint32
	words []uint32
}

// New allocates a zeroed BitSet of the given size in bits.
func New(size uint32) *BitSet {
	return &BitSet{
		size:  size,
		words: make([]uint32, wordCount(size)),
	}
}

func wordCount(size uint32) uint32 {
	return (size + wordBits - 1) / wordBits
}

// Size returns the number of bits in the set.
func (b *BitSet) Size() uint32 {
	return b.size
}

// Get reports whether bit i is set.
func (b *BitSet) Get(i uint32) bool {
	if i >= b.size {
		return false
	}
	return b.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Set sets or clears bit i.
func (b *BitSet) Set(i uint32, v bool) {
	if i >= b.size {
		return
	}
	if v {
		b.words[i/wordBits] |= 1 << (i % wordBits)
	} else {
		b.words[i/wordBits] &^= 1 << (i % wordBits)
	}
}

// Clone returns a deep copy.
func (b *BitSet) Clone() *BitSet {
	words := make([]uint32, len(b.words))
	copy(words, b.words)
	return &BitSet{size: b.size, words: words}
}

// Equal reports whether two bitsets have identical size and bits.
func (b *BitSet) Equal(o *BitSet) bool {
	if b.size != o.size || len(b.words) != len(o.words) {
		return false
	}
	for i := range b.words {
		if b.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// SerializeSize returns the exact byte length Encode will produce.
func (b *BitSet) SerializeSize() int {
	return 4 + len(b.words)*4
}

// Encode appends the wire representation of b to buf and returns it.
func (b *BitSet) Encode(buf []byte) []byte {
	var szBuf [4]byte
	binary.LittleEndian.PutUint32(szBuf[:], b.size)
	buf = append(buf, szBuf[:]...)
	for _, w := range b.words {
		var wBuf [4]byte
		binary.LittleEndian.PutUint32(wBuf[:], w)
		buf = append(buf, wBuf[:]...)
	}
	return buf
}

// Decode reads a BitSet from buf, returning the bitset and the number of
// bytes consumed.
func Decode(buf []byte) (*BitSet, int, error) {
	if len(buf) < 4 {
		return nil, 0, errors.New("bitset: truncated size header")
	}
	size := binary.LittleEndian.Uint32(buf[:4])
	n := int(wordCount(size))
	need := 4 + n*4
	if len(buf) < need {
		return nil, 0, errors.Errorf("bitset: truncated body: need %d bytes, have %d", need, len(buf))
	}
	words := make([]uint32, n)
	for i := 0; i < n; i++ {
		off := 4 + i*4
		words[i] = binary.LittleEndian.Uint32(buf[off : off+4])
	}
	return &BitSet{size: size, words: words}, need, nil
}

// WriteTo writes the wire representation to w, satisfying io.WriterTo.
func (b *BitSet) WriteTo(w io.Writer) (int64, error) {
	buf := b.Encode(make([]byte, 0, b.SerializeSize()))
	n, err := w.Write(buf)
	if err != nil {
		return int64(n), errors.Wrap(err, "bitset: write")
	}
	return int64(n), nil
}
