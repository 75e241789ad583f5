package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimestampOrdering(t *testing.T) {
	base := Timestamp{Slot: 10, InclusionOrder: 2, IxIndex: 1}
	withInner := Timestamp{Slot: 10, InclusionOrder: 2, IxIndex: 1, InnerIxIndex: U32Ptr(0)}

	assert.True(t, base.Less(withInner), "absent inner index must sort below any present value")
	assert.False(t, withInner.Less(base))
	assert.False(t, base.Equal(withInner))

	laterSlot := Timestamp{Slot: 11}
	assert.True(t, base.Less(laterSlot))

	sameButLaterInner := Timestamp{Slot: 10, InclusionOrder: 2, IxIndex: 1, InnerIxIndex: U32Ptr(5)}
	assert.True(t, withInner.Less(sameButLaterInner))

	identical := Timestamp{Slot: 10, InclusionOrder: 2, IxIndex: 1, InnerIxIndex: U32Ptr(5)}
	assert.True(t, sameButLaterInner.Equal(identical))
}

func TestSandwichCandidateIDOrderMatters(t *testing.T) {
	c1 := SandwichCandidate{
		Frontrun: []Swap{{ID: 10}},
		Backrun:  []Swap{{ID: 12}},
		Victim:   []Swap{{ID: 11}},
	}
	c2 := SandwichCandidate{
		Frontrun: []Swap{{ID: 10}},
		Backrun:  []Swap{{ID: 11}}, // swapped victim/backrun ids
		Victim:   []Swap{{ID: 12}},
	}
	assert.NotEqual(t, c1.ID(), c2.ID())

	c1Again := SandwichCandidate{
		Frontrun: []Swap{{ID: 10}},
		Backrun:  []Swap{{ID: 12}},
		Victim:   []Swap{{ID: 11}},
	}
	assert.Equal(t, c1.ID(), c1Again.ID(), "same inputs must yield the same UUID across runs")
}
