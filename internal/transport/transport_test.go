package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wilx/mincut/internal/wire"
)

func TestSendRecvRoundTrip(t *testing.T) {
	ts := NewCluster(3, 4)
	require.NoError(t, ts[0].Send(2, wire.Simple(wire.MsgREQ)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	env, err := ts[2].Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, env.From)
	require.Equal(t, wire.MsgREQ, env.Msg.Kind)
}

func TestUrgentPreferredOverDeferrable(t *testing.T) {
	ts := NewCluster(2, 4)
	require.NoError(t, ts[0].Send(1, wire.BWeight(5)))
	require.NoError(t, ts[0].Send(1, wire.Simple(wire.MsgEOC)))

	env, ok := ts[1].TryRecv()
	require.True(t, ok)
	require.Equal(t, wire.TypeMsg, env.Msg.Type)
	require.Equal(t, wire.MsgEOC, env.Msg.Kind)

	env2, ok := ts[1].TryRecv()
	require.True(t, ok)
	require.Equal(t, wire.TypeBWeight, env2.Msg.Type)
}

func TestTryRecvEmpty(t *testing.T) {
	ts := NewCluster(1, 1)
	_, ok := ts[0].TryRecv()
	require.False(t, ok)
}

func TestSendOutOfRange(t *testing.T) {
	ts := NewCluster(2, 1)
	err := ts[0].Send(5, wire.Simple(wire.MsgREQ))
	require.Error(t, err)
}

func TestSendAfterCloseFails(t *testing.T) {
	ts := NewCluster(2, 1)
	ts[1].Close()
	err := ts[0].Send(1, wire.Simple(wire.MsgREQ))
	require.ErrorIs(t, err, ErrClosed)
}

func TestRecvRespectsContextCancellation(t *testing.T) {
	ts := NewCluster(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := ts[0].Recv(ctx)
	require.Error(t, err)
}

func TestFIFOWithinPriorityClass(t *testing.T) {
	ts := NewCluster(2, 4)
	require.NoError(t, ts[0].Send(1, wire.Simple(wire.MsgREQ)))
	require.NoError(t, ts[0].Send(1, wire.Simple(wire.MsgDENY)))
	require.NoError(t, ts[0].Send(1, wire.Simple(wire.MsgDREQ)))

	first, ok := ts[1].TryRecv()
	require.True(t, ok)
	require.Equal(t, wire.MsgREQ, first.Msg.Kind)

	second, ok := ts[1].TryRecv()
	require.True(t, ok)
	require.Equal(t, wire.MsgDENY, second.Msg.Kind)

	third, ok := ts[1].TryRecv()
	require.True(t, ok)
	require.Equal(t, wire.MsgDREQ, third.Msg.Kind)
}
