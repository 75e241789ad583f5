// Package events holds the normalized record types shared by every stage of
// the decode → detect pipeline: Timestamp, Swap, Transfer, Transaction,
// TradePair and SandwichCandidate.
package events

import (
	"fmt"

	"github.com/AlekSi/pointer"
)

// Timestamp is a totally ordered position within the block stream:
// (slot, inclusion_order, ix_index, inner_ix_index). A nil InnerIxIndex
// sorts below any non-nil value at an otherwise equal prefix.
type Timestamp struct {
	Slot           uint64
	InclusionOrder uint32
	IxIndex        uint32
	InnerIxIndex   *uint32
}

// Less reports whether t sorts strictly before o.
func (t Timestamp) Less(o Timestamp) bool {
	if t.Slot != o.Slot {
		return t.Slot < o.Slot
	}
	if t.InclusionOrder != o.InclusionOrder {
		return t.InclusionOrder < o.InclusionOrder
	}
	if t.IxIndex != o.IxIndex {
		return t.IxIndex < o.IxIndex
	}
	switch {
	case t.InnerIxIndex == nil && o.InnerIxIndex == nil:
		return false
	case t.InnerIxIndex == nil:
		return true // absent sorts below present
	case o.InnerIxIndex == nil:
		return false
	default:
		return *t.InnerIxIndex < *o.InnerIxIndex
	}
}

// Equal reports whether t and o denote the same position.
func (t Timestamp) Equal(o Timestamp) bool {
	if t.Slot != o.Slot || t.InclusionOrder != o.InclusionOrder || t.IxIndex != o.IxIndex {
		return false
	}
	switch {
	case t.InnerIxIndex == nil && o.InnerIxIndex == nil:
		return true
	case t.InnerIxIndex == nil || o.InnerIxIndex == nil:
		return false
	default:
		return *t.InnerIxIndex == *o.InnerIxIndex
	}
}

func (t Timestamp) String() string {
	if t.InnerIxIndex == nil {
		return fmt.Sprintf("(%d,%d,%d,-)", t.Slot, t.InclusionOrder, t.IxIndex)
	}
	return fmt.Sprintf("(%d,%d,%d,%d)", t.Slot, t.InclusionOrder, t.IxIndex, *t.InnerIxIndex)
}

// U32Ptr constructs an optional inner-instruction index.
func U32Ptr(v uint32) *uint32 { return pointer.ToUint32(v) }
