package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/franco-bianco/sandwichgo/internal/events"
)

func TestSentinelPtrRoundTrip(t *testing.T) {
	require.Nil(t, sentinelPtr(-1))
	v := sentinelPtr(7)
	require.NotNil(t, v)
	require.Equal(t, uint32(7), *v)
}

func TestKeyOfDistinguishesAbsentInner(t *testing.T) {
	withInner := events.Timestamp{Slot: 1, InclusionOrder: 2, IxIndex: 3, InnerIxIndex: events.U32Ptr(4)}
	withoutInner := events.Timestamp{Slot: 1, InclusionOrder: 2, IxIndex: 3}

	require.NotEqual(t, keyOf(withInner), keyOf(withoutInner))

	// Two distinct *uint32 pointers to the same value must still collide as
	// map keys: value equality, not pointer identity.
	again := events.Timestamp{Slot: 1, InclusionOrder: 2, IxIndex: 3, InnerIxIndex: events.U32Ptr(4)}
	require.Equal(t, keyOf(withInner), keyOf(again))
}

func TestAddressCacheEmptyStringNeverInterned(t *testing.T) {
	c := NewAddressCache(nil)
	_, ok := c.ID("")
	require.False(t, ok)
}

func TestOuterOrEmpty(t *testing.T) {
	require.Equal(t, "", outerOrEmpty(nil))
	s := "abc"
	require.Equal(t, "abc", outerOrEmpty(&s))
}

func TestEstimateProfitSOLLeg(t *testing.T) {
	wsol := "So11111111111111111111111111111111111111112"

	// SOL on the frontrun's input side: profit is the backrun-out surplus.
	p := SandwichProfit{Token1Mint: wsol, Token2Mint: "TOKEN", FrontrunIn: 100, BackrunOut: 130}
	require.Equal(t, uint64(30), estimateProfit(p))

	// SOL on the frontrun's output side instead.
	p = SandwichProfit{Token1Mint: "TOKEN", Token2Mint: wsol, FrontrunOut: 500, BackrunIn: 450}
	require.Equal(t, uint64(50), estimateProfit(p))

	// No SOL leg at all: no price reference, no estimate.
	p = SandwichProfit{Token1Mint: "A", Token2Mint: "B", FrontrunIn: 1, BackrunOut: 100}
	require.Equal(t, uint64(0), estimateProfit(p))
}
