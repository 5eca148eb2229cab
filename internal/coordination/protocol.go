package coordination

import (
	"context"

	"github.com/pkg/errors"

	"github.com/wilx/mincut/internal/transport"
	"github.com/wilx/mincut/internal/wire"
)

// seekOnce runs the seeker loop of spec.md §4.2 for as long as it takes
// to either replenish the local stack or observe end-of-computation. It
// is invoked once per dispatcher pass while the stack is empty; a
// DONOR(self) answer or a DENY loops inside seekOnce, and a returning nil
// means a donor answered with EOE (possibly after donating zero elements,
// in which case the next pass seeks again).
func (c *Coordinator) seekOnce(ctx context.Context) error {
	c.wouldGive = false

	for {
		if err := c.tokenAction(); err != nil {
			return err
		}

		r, err := c.obtainDonor(ctx)
		if err != nil {
			return err
		}
		if r == c.rank {
			// spec.md §4.2 step 3: re-loop on self-naming rather than
			// special-casing it away (see DESIGN.md, Open Question 3).
			continue
		}

		done, err := c.requestWorkFrom(ctx, r)
		if err != nil {
			return err
		}
		if done {
			break
		}
		// DENY: go to 1 for a fresh token action and donor.
	}

	c.wouldGive = true
	return nil
}

// tokenAction is spec.md §4.3's "Rules on becoming idle". A lone rank
// (size == 1) has no ring to forward a token around, so becoming idle
// at rank 0 in that case directly means the entire search space has
// been exhausted.
func (c *Coordinator) tokenAction() error {
	c.met.AddTokenRound()

	if c.rank == 0 {
		if c.size == 1 {
			return c.endOfComputation()
		}
		if err := c.t.Send(1, wire.Token(wire.ColorWhite)); err != nil {
			return errors.Wrap(err, "coordination: sending initial token")
		}
		c.tokenHeld = false
		return nil
	}

	if c.tokenHeld {
		next := (c.rank + 1) % c.size
		if err := c.t.Send(next, wire.Token(c.token)); err != nil {
			return errors.Wrap(err, "coordination: forwarding token")
		}
		c.tokenHeld = false
		c.mycolor = wire.ColorWhite
	}
	return nil
}

// handleToken is spec.md §4.3's "Rule on receiving a token with color t".
func (c *Coordinator) handleToken(t wire.Color) error {
	if c.rank == 0 {
		if t == wire.ColorWhite {
			return c.endOfComputation()
		}
		c.tokenHeld = true
		c.token = wire.ColorWhite
		return nil
	}

	c.tokenHeld = true
	if c.mycolor == wire.ColorWhite {
		c.token = t
	} else {
		c.token = wire.ColorBlack
	}
	return nil
}

// obtainDonor runs the donor-naming handshake of spec.md §4.2: rank 0
// answers from its own rotating counter with no round trip; every other
// rank sends DREQ to rank 0 and blocks for DONOR(r), servicing any other
// traffic that arrives meanwhile (spec.md §4.6).
func (c *Coordinator) obtainDonor(ctx context.Context) (int, error) {
	if c.rank == 0 {
		r := c.donor
		c.donor = (c.donor + 1) % c.size
		return r, nil
	}

	if err := c.t.Send(0, wire.Simple(wire.MsgDREQ)); err != nil {
		return 0, errors.Wrap(err, "coordination: sending DREQ")
	}

	for {
		env, err := c.t.Recv(ctx)
		if err != nil {
			return 0, errors.Wrap(err, "coordination: awaiting donor answer")
		}
		if env.From == 0 && env.Msg.Type == wire.TypeDonor {
			return int(env.Msg.Donor), nil
		}
		if err := c.handle(ctx, env); err != nil {
			return 0, err
		}
	}
}

// requestWorkFrom is the REQ/STKELEM*/EOE|DENY exchange of spec.md
// §4.2 step 4. It reports true when the donor signaled EOE (success,
// possibly with zero elements donated), false on DENY.
func (c *Coordinator) requestWorkFrom(ctx context.Context, r int) (bool, error) {
	if err := c.t.Send(r, wire.Simple(wire.MsgREQ)); err != nil {
		return false, errors.Wrap(err, "coordination: sending REQ")
	}

	for {
		env, err := c.t.Recv(ctx)
		if err != nil {
			return false, errors.Wrap(err, "coordination: awaiting work reply")
		}

		if env.From != r {
			if err := c.handle(ctx, env); err != nil {
				return false, err
			}
			continue
		}

		switch env.Msg.Type {
		case wire.TypeStkElem:
			c.stack.PushBack(env.Msg.Elem)
			c.met.AddSteal(1)
		case wire.TypeMsg:
			switch env.Msg.Kind {
			case wire.MsgEOE:
				return true, nil
			case wire.MsgDENY:
				c.met.AddDenialRecv()
				return false, nil
			default:
				// REQ/EOC and other control traffic from the donor itself is
				// serviced exactly like traffic from any other peer.
				if err := c.handle(ctx, env); err != nil {
					return false, err
				}
			}
		default:
			if err := c.handle(ctx, env); err != nil {
				return false, err
			}
		}
	}
}

// handleWorkRequest is the donor policy of spec.md §4.2: deny if there
// is nothing to give (empty stack, or not currently willing to give
// during our own seek), else refresh the back element, split half of
// its remaining depth into a temp list, and stream it to the requester.
func (c *Coordinator) handleWorkRequest(from int) error {
	if c.stack.Len() == 0 || !c.wouldGive {
		c.met.AddDenialSent()
		return c.t.Send(from, wire.Simple(wire.MsgDENY))
	}

	back := c.stack.Back()
	if !back.Fresh {
		if err := c.refreshAndHandle(back); err != nil {
			return err
		}
	}

	half := (c.engine.G.N - int(back.Next)) / 2
	if half > 0 && from < c.rank {
		// Work flowed "backwards" through the ring.
		c.mycolor = wire.ColorBlack
	}

	children := c.engine.ExpandInto(back, half)
	for _, child := range children {
		if err := c.t.Send(from, wire.StkElem(child)); err != nil {
			return errors.Wrap(err, "coordination: sending donated element")
		}
	}
	c.met.AddDonation(uint64(len(children)))

	return errors.Wrap(c.t.Send(from, wire.Simple(wire.MsgEOE)), "coordination: sending EOE")
}

// handleDonorRequest is rank 0's side of DREQ: hand out the rotating
// donor index with no self-exclusion (spec.md §4.2, §9 Open Question).
func (c *Coordinator) handleDonorRequest(from int) error {
	r := c.donor
	c.donor = (c.donor + 1) % c.size
	return errors.Wrap(c.t.Send(from, wire.Donor(int8(r))), "coordination: sending DONOR")
}

// handle is the generic incoming-message dispatcher used both by the
// main drain loop (spec.md §4.5 step 1) and by every targeted wait that
// must still service concurrent traffic (spec.md §4.6).
func (c *Coordinator) handle(ctx context.Context, env transport.Envelope) error {
	switch env.Msg.Type {
	case wire.TypeMsg:
		return c.handleControl(env)

	case wire.TypeStkElem:
		return errors.New("coordination: STKELEM received outside a request phase")

	case wire.TypeBest:
		return c.handleBest(env)

	case wire.TypeBWeight:
		return c.handleBWeight(env)

	case wire.TypeToken:
		return c.handleToken(env.Msg.Color)

	case wire.TypeDonor:
		return errors.New("coordination: DONOR received outside a donor-request phase")

	default:
		return errors.Errorf("coordination: unknown envelope type %q", byte(env.Msg.Type))
	}
}

func (c *Coordinator) handleControl(env transport.Envelope) error {
	switch env.Msg.Kind {
	case wire.MsgREQ:
		return c.handleWorkRequest(env.From)
	case wire.MsgDREQ:
		if c.rank != 0 {
			return errors.New("coordination: DREQ received by a non-root rank")
		}
		return c.handleDonorRequest(env.From)
	case wire.MsgEOC:
		if c.rank == 0 {
			return errors.New("coordination: EOC received by rank 0")
		}
		return errEOC
	case wire.MsgDENY, wire.MsgEOE:
		c.log.Debug("ignoring stray control message %q outside a request phase", byte(env.Msg.Kind))
		return nil
	default:
		return errors.Errorf("coordination: unknown message kind %q", byte(env.Msg.Kind))
	}
}

func (c *Coordinator) handleBest(env transport.Envelope) error {
	if c.rank != 0 {
		return errors.New("coordination: BEST received by a non-root rank")
	}
	if env.Msg.Elem.Weight < c.best.Weight {
		c.best = env.Msg.Elem
		c.met.AddBoundUpdate()
	}
	c.considerTrueBest(env.Msg.Elem)
	if c.best.Weight == 1 {
		return c.endOfComputation()
	}
	return nil
}

func (c *Coordinator) handleBWeight(env transport.Envelope) error {
	if c.rank == 0 {
		return errors.New("coordination: BWEIGHT received by rank 0")
	}
	if env.Msg.BWeight < c.best.Weight {
		// b.σ is stale/unreliable on non-root processes (spec.md §4.1).
		c.best.Weight = env.Msg.BWeight
		c.best.Fresh = false
		c.met.AddBoundUpdate()
	}
	return nil
}
