// Package transport stands in for the MPI communicator of the original
// design: a narrow Send/Recv collaborator that lets internal/coordination
// exchange wire.Message values between ranks without knowing whether its
// peers are goroutines, OS processes, or network sockets. The only
// implementation provided, InProcess, wires ranks together with Go
// channels, modeled on the worker-goroutine-plus-channel shape of
// go_dfs's file-traversal workers.
package transport

import (
	"context"

	"github.com/pkg/errors"

	"github.com/wilx/mincut/internal/wire"
)

// Envelope pairs a decoded Message with the rank that sent it.
type Envelope struct {
	From int
	Msg  wire.Message
}

// Transport is the per-rank view of the cluster: it can address any
// other rank by its 0-based index and can block for the next incoming
// message of either priority class.
type Transport interface {
	// Rank returns this transport's own rank.
	Rank() int

	// Size returns the number of ranks in the cluster.
	Size() int

	// Send delivers msg to rank `to`, queued on the channel matching
	// msg.Priority(). Point-to-point delivery to a given peer is FIFO
	// within a priority class, per spec.md §6's ordering guarantee.
	Send(to int, msg wire.Message) error

	// Recv blocks until a message addressed to this rank arrives on
	// either priority class, or ctx is done. Urgent messages are
	// always preferred over deferrable ones when both are ready, so
	// control traffic never queues behind best-bound diffusion.
	Recv(ctx context.Context) (Envelope, error)

	// TryRecv is the non-blocking counterpart of Recv: it returns
	// ok == false immediately if nothing is ready.
	TryRecv() (env Envelope, ok bool)

	// Close releases this rank's receive channels. Sends to a closed
	// rank return an error.
	Close()
}

// ErrClosed is returned by Send when the destination rank has closed
// its transport endpoint.
var ErrClosed = errors.New("transport: destination closed")

// InProcess is a Transport implementation connecting goroutines in a
// single process with buffered channels, one pair (urgent, deferrable)
// per rank.
type InProcess struct {
	rank int
	size int

	urgent     chan Envelope
	deferrable chan Envelope

	peers []*InProcess

	closed chan struct{}
}

// NewCluster builds size InProcess transports wired to each other,
// indexed 0..size-1. Each rank's channel pair is buffered to bufSize to
// absorb bursts (donation fan-out, best-weight broadcast) without the
// sender blocking ahead of the receiver's drain loop.
func NewCluster(size, bufSize int) []*InProcess {
	if size <= 0 {
		return nil
	}
	ts := make([]*InProcess, size)
	for i := range ts {
		ts[i] = &InProcess{
			rank:       i,
			size:       size,
			urgent:     make(chan Envelope, bufSize),
			deferrable: make(chan Envelope, bufSize),
			closed:     make(chan struct{}),
		}
	}
	for i := range ts {
		ts[i].peers = ts
	}
	return ts
}

func (t *InProcess) Rank() int { return t.rank }
func (t *InProcess) Size() int { return t.size }

func (t *InProcess) Send(to int, msg wire.Message) error {
	if to < 0 || to >= t.size {
		return errors.Errorf("transport: rank %d out of range [0,%d)", to, t.size)
	}
	dest := t.peers[to]

	ch := dest.urgent
	if msg.Priority() == wire.Deferrable {
		ch = dest.deferrable
	}

	select {
	case <-dest.closed:
		return ErrClosed
	default:
	}

	select {
	case ch <- Envelope{From: t.rank, Msg: msg}:
		return nil
	case <-dest.closed:
		return ErrClosed
	}
}

func (t *InProcess) Recv(ctx context.Context) (Envelope, error) {
	// Urgent traffic is drained preferentially: check it first in a
	// non-blocking pass before falling back to a blocking select over
	// both channels, which returns whichever message arrives first (if
	// both become ready at the same instant, select picks one at random).
	select {
	case env := <-t.urgent:
		return env, nil
	default:
	}

	select {
	case env := <-t.urgent:
		return env, nil
	case env := <-t.deferrable:
		return env, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

func (t *InProcess) TryRecv() (Envelope, bool) {
	select {
	case env := <-t.urgent:
		return env, true
	default:
	}
	select {
	case env := <-t.deferrable:
		return env, true
	default:
	}
	return Envelope{}, false
}

func (t *InProcess) Close() {
	select {
	case <-t.closed:
	default:
		close(t.closed)
	}
}
