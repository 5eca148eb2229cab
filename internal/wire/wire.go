// Package wire implements the on-channel message envelope of spec.md
// §6.1: a one-byte type tag followed by a type-specific payload. It
// wraps internal/search's Element codec for the STKELEM/BEST payloads
// and adds the handful of fixed-size payloads (simple control messages,
// a best-weight int32, a token color byte, a donor rank byte).
package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/wilx/mincut/internal/search"
)

// Type is the outer envelope tag.
type Type byte

const (
	TypeMsg     Type = 'M' // a control message, see MsgKind
	TypeStkElem Type = 'S' // a donated/returned stack element
	TypeBest    Type = 'B' // the current best stack element (rank 0 only)
	TypeBWeight Type = 'C' // the current best weight, int32 (non-rank-0)
	TypeToken   Type = 'T' // termination-detection token
	TypeDonor   Type = 'D' // answer to a donor request
)

// MsgKind is the second byte of a TypeMsg envelope.
type MsgKind byte

const (
	MsgEOC  MsgKind = 'E' // end of computation
	MsgREQ  MsgKind = 'R' // request work from a peer
	MsgDENY MsgKind = 'D' // deny a work request
	MsgDREQ MsgKind = 'O' // request a donor from rank 0
	MsgEOE  MsgKind = 'F' // no more stack elements are coming
)

// Color is the token color carried by a TypeToken envelope.
type Color byte

const (
	ColorWhite Color = 0
	ColorBlack Color = 1
)

// Message is a decoded envelope. Exactly one of the payload fields is
// meaningful, selected by Type.
type Message struct {
	Type Type

	Kind    MsgKind        // valid when Type == TypeMsg
	Elem    *search.Element // valid when Type == TypeStkElem or TypeBest
	BWeight int32          // valid when Type == TypeBWeight
	Color   Color          // valid when Type == TypeToken
	Donor   int8           // valid when Type == TypeDonor
}

// Simple builds a bare control message (EOC/REQ/DENY/DREQ/EOE).
func Simple(kind MsgKind) Message {
	return Message{Type: TypeMsg, Kind: kind}
}

// StkElem builds a STKELEM envelope carrying e.
func StkElem(e *search.Element) Message {
	return Message{Type: TypeStkElem, Elem: e}
}

// Best builds a BEST envelope carrying e.
func Best(e *search.Element) Message {
	return Message{Type: TypeBest, Elem: e}
}

// BWeight builds a BWEIGHT envelope carrying w.
func BWeight(w int32) Message {
	return Message{Type: TypeBWeight, BWeight: w}
}

// Token builds a TOKEN envelope carrying c.
func Token(c Color) Message {
	return Message{Type: TypeToken, Color: c}
}

// Donor builds a DONOR envelope carrying the answering rank r, always a
// valid rank in [0,W) per spec.md §4.2's donor-naming rule: rank 0 hands
// out its rotating counter with no self-exclusion, leaving the seeker's
// own r == self guard to handle the one case that needs special care.
func Donor(r int8) Message {
	return Message{Type: TypeDonor, Donor: r}
}

// Priority is the channel class a Message travels on: Urgent messages
// (control/protocol traffic) must never queue behind Deferrable ones
// (best-bound diffusion), per spec.md §6's two-tag backpressure scheme.
type Priority int

const (
	Urgent Priority = iota
	Deferrable
)

// Priority classifies m for transport dispatch. Only BEST and BWEIGHT
// are deferrable; every control message, donation, token, and donor
// answer is urgent.
func (m Message) Priority() Priority {
	switch m.Type {
	case TypeBest, TypeBWeight:
		return Deferrable
	default:
		return Urgent
	}
}

// Encode appends the wire representation of m to buf and returns it.
func (m Message) Encode(buf []byte) []byte {
	buf = append(buf, byte(m.Type))
	switch m.Type {
	case TypeMsg:
		buf = append(buf, byte(m.Kind))
	case TypeStkElem, TypeBest:
		buf = m.Elem.Encode(buf)
	case TypeBWeight:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(m.BWeight))
		buf = append(buf, tmp[:]...)
	case TypeToken:
		buf = append(buf, byte(m.Color))
	case TypeDonor:
		buf = append(buf, byte(m.Donor))
	}
	return buf
}

// Decode reads a Message from buf, returning it and the number of bytes
// consumed.
func Decode(buf []byte) (Message, int, error) {
	if len(buf) < 1 {
		return Message{}, 0, errors.New("wire: empty buffer")
	}
	t := Type(buf[0])
	switch t {
	case TypeMsg:
		if len(buf) < 2 {
			return Message{}, 0, errors.New("wire: truncated MSG envelope")
		}
		return Message{Type: t, Kind: MsgKind(buf[1])}, 2, nil

	case TypeStkElem, TypeBest:
		e, n, err := search.DecodeElement(buf[1:])
		if err != nil {
			return Message{}, 0, errors.Wrap(err, "wire: decoding element payload")
		}
		return Message{Type: t, Elem: e}, 1 + n, nil

	case TypeBWeight:
		if len(buf) < 5 {
			return Message{}, 0, errors.New("wire: truncated BWEIGHT envelope")
		}
		w := int32(binary.LittleEndian.Uint32(buf[1:5]))
		return Message{Type: t, BWeight: w}, 5, nil

	case TypeToken:
		if len(buf) < 2 {
			return Message{}, 0, errors.New("wire: truncated TOKEN envelope")
		}
		return Message{Type: t, Color: Color(buf[1])}, 2, nil

	case TypeDonor:
		if len(buf) < 2 {
			return Message{}, 0, errors.New("wire: truncated DONOR envelope")
		}
		return Message{Type: t, Donor: int8(buf[1])}, 2, nil

	default:
		return Message{}, 0, errors.Errorf("wire: unknown envelope type %q", byte(t))
	}
}
