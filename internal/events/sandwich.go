package events

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// SandwichCandidate groups the swaps/transfers/transactions that together
// make up one detected sandwich. Slices are treated as immutable once
// constructed; the same Swap may be shared (by value) across several
// candidates while enumeration is still ranking alternatives.
type SandwichCandidate struct {
	Frontrun  []Swap
	Victim    []Swap
	Backrun   []Swap
	Transfers []Transfer
	Txs       []Transaction
}

// ID computes the deterministic external identity for this candidate: a
// v5 UUID (SHA-1 based) over the DNS namespace, built from the
// little-endian id bytes of every frontrun, backrun, victim, then transfer
// event, in that exact order. Reordering any of the four groups changes
// the UUID.
func (c SandwichCandidate) ID() uuid.UUID {
	buf := make([]byte, 0, 8*(len(c.Frontrun)+len(c.Backrun)+len(c.Victim)+len(c.Transfers)))
	var tmp [8]byte
	appendID := func(id int64) {
		binary.LittleEndian.PutUint64(tmp[:], uint64(id))
		buf = append(buf, tmp[:]...)
	}
	for _, s := range c.Frontrun {
		appendID(s.ID)
	}
	for _, s := range c.Backrun {
		appendID(s.ID)
	}
	for _, s := range c.Victim {
		appendID(s.ID)
	}
	for _, t := range c.Transfers {
		appendID(t.ID)
	}
	return uuid.NewSHA1(uuid.NameSpaceDNS, buf)
}
