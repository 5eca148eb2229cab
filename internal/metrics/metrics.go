// Package metrics provides the observational-only per-rank counters
// exposed for diagnostics. Nothing in internal/coordination reads these
// back to make scheduling decisions; they exist purely to let an
// operator or test see what a rank did.
package metrics

import "sync/atomic"

// Counters is a set of monotonically increasing per-rank counters,
// modeled on the traversal counters a work-stealing worker pool
// normally reports (steals, donations, idle rounds).
type Counters struct {
	Steals       uint64
	Donations    uint64
	BoundUpdates uint64
	TokenRounds  uint64
	Expansions   uint64
	Pops         uint64
	DenialsSent  uint64
	DenialsRecv  uint64
}

func (c *Counters) AddSteal(n uint64)    { atomic.AddUint64(&c.Steals, n) }
func (c *Counters) AddDonation(n uint64) { atomic.AddUint64(&c.Donations, n) }
func (c *Counters) AddBoundUpdate()      { atomic.AddUint64(&c.BoundUpdates, 1) }
func (c *Counters) AddTokenRound()       { atomic.AddUint64(&c.TokenRounds, 1) }
func (c *Counters) AddExpansion()        { atomic.AddUint64(&c.Expansions, 1) }
func (c *Counters) AddPop()              { atomic.AddUint64(&c.Pops, 1) }
func (c *Counters) AddDenialSent()       { atomic.AddUint64(&c.DenialsSent, 1) }
func (c *Counters) AddDenialRecv()       { atomic.AddUint64(&c.DenialsRecv, 1) }

// Snapshot returns a copy safe to read without racing further updates.
func (c *Counters) Snapshot() Counters {
	return Counters{
		Steals:       atomic.LoadUint64(&c.Steals),
		Donations:    atomic.LoadUint64(&c.Donations),
		BoundUpdates: atomic.LoadUint64(&c.BoundUpdates),
		TokenRounds:  atomic.LoadUint64(&c.TokenRounds),
		Expansions:   atomic.LoadUint64(&c.Expansions),
		Pops:         atomic.LoadUint64(&c.Pops),
		DenialsSent:  atomic.LoadUint64(&c.DenialsSent),
		DenialsRecv:  atomic.LoadUint64(&c.DenialsRecv),
	}
}
