package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGetClear(t *testing.T) {
	b := New(10)
	require.False(t, b.Get(3))
	b.Set(3, true)
	require.True(t, b.Get(3))
	b.Set(3, false)
	require.False(t, b.Get(3))
}

func TestOutOfRangeIsNoop(t *testing.T) {
	b := New(4)
	b.Set(100, true)
	require.False(t, b.Get(100))
}

func TestCloneIndependence(t *testing.T) {
	b := New(8)
	b.Set(1, true)
	c := b.Clone()
	c.Set(2, true)
	require.True(t, c.Get(1))
	require.True(t, c.Get(2))
	require.False(t, b.Get(2))
}

func TestRoundTrip(t *testing.T) {
	for _, size := range []uint32{0, 1, 31, 32, 33, 64, 100} {
		b := New(size)
		for i := uint32(0); i < size; i += 3 {
			b.Set(i, true)
		}
		buf := b.Encode(nil)
		require.Equal(t, b.SerializeSize(), len(buf))

		got, n, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.True(t, b.Equal(got))
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, _, err := Decode([]byte{1, 2})
	require.Error(t, err)

	b := New(64)
	buf := b.Encode(nil)
	_, _, err = Decode(buf[:len(buf)-1])
	require.Error(t, err)
}
