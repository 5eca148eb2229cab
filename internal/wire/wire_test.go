package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wilx/mincut/internal/search"
)

func TestRoundTripSimple(t *testing.T) {
	for _, kind := range []MsgKind{MsgEOC, MsgREQ, MsgDENY, MsgDREQ, MsgEOE} {
		buf := Simple(kind).Encode(nil)
		got, n, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, TypeMsg, got.Type)
		require.Equal(t, kind, got.Kind)
		require.Equal(t, Urgent, got.Priority())
	}
}

func TestRoundTripStkElemAndBest(t *testing.T) {
	e := search.NewRoot(8)
	e.Sigma.Set(3, true)
	e.Weight = 42

	msg := StkElem(e)
	buf := msg.Encode(nil)
	got, n, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, TypeStkElem, got.Type)
	require.True(t, e.Sigma.Equal(got.Elem.Sigma))
	require.Equal(t, e.Weight, got.Elem.Weight)
	require.Equal(t, Urgent, got.Priority())

	best := Best(e)
	require.Equal(t, Deferrable, best.Priority())
}

func TestRoundTripBWeight(t *testing.T) {
	msg := BWeight(-17)
	buf := msg.Encode(nil)
	got, n, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, int32(-17), got.BWeight)
	require.Equal(t, Deferrable, got.Priority())
}

func TestRoundTripToken(t *testing.T) {
	for _, c := range []Color{ColorWhite, ColorBlack} {
		buf := Token(c).Encode(nil)
		got, n, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, c, got.Color)
		require.Equal(t, Urgent, got.Priority())
	}
}

func TestRoundTripDonor(t *testing.T) {
	for _, r := range []int8{-1, 0, 5, 127} {
		buf := Donor(r).Encode(nil)
		got, n, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, r, got.Donor)
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	_, _, err := Decode(nil)
	require.Error(t, err)

	_, _, err = Decode([]byte{byte(TypeMsg)})
	require.Error(t, err)

	_, _, err = Decode([]byte{byte(TypeBWeight), 1, 2})
	require.Error(t, err)
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, _, err := Decode([]byte{'Z'})
	require.Error(t, err)
}

func TestMultipleMessagesConcatenate(t *testing.T) {
	var buf []byte
	buf = Simple(MsgREQ).Encode(buf)
	buf = Token(ColorBlack).Encode(buf)
	buf = BWeight(9).Encode(buf)

	m1, n1, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, MsgREQ, m1.Kind)

	m2, n2, err := Decode(buf[n1:])
	require.NoError(t, err)
	require.Equal(t, ColorBlack, m2.Color)

	m3, n3, err := Decode(buf[n1+n2:])
	require.NoError(t, err)
	require.Equal(t, int32(9), m3.BWeight)
	require.Equal(t, len(buf), n1+n2+n3)
}
