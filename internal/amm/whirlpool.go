package amm

import "github.com/franco-bianco/sandwichgo/internal/addresses"

var (
	whirlpoolSwapDiscriminant     = []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}
	whirlpoolSwapV2Discriminant   = []byte{0x2b, 0x04, 0xed, 0x0b, 0x1a, 0xc9, 0x1e, 0x62}
	whirlpoolTwoHopDiscriminant   = []byte{0xc3, 0x60, 0xed, 0x6c, 0x44, 0xa2, 0xdb, 0xe6}
	whirlpoolTwoHopV2Discriminant = []byte{0xba, 0x8f, 0xd1, 0x1d, 0xfe, 0x02, 0xc2, 0x75}
)

// whirlpoolFinders builds Whirlpool's one-hop and two-hop swap decoders.
// Both shapes fit the generic walker once direction is resolved: one-hop
// swaps flip their whole account map on a single a-to-b byte, and two-hop
// swaps run as two independent GenericFinders over the same instruction
// (one per hop), each with its own account-index map, so a single
// TwoHopSwap naturally yields two swap events.
func whirlpoolFinders() []Finder {
	return []Finder{
		// swap: [amm, userA, poolA, userB, poolB] = [2, 3, 4, 5, 6]
		GenericFinder{
			Program:  addresses.Whirlpool,
			Variants: []Variant{{Discriminant: whirlpoolSwapDiscriminant, MinDataLen: 24}},
			Resolve: directionFlag(41, 0,
				AccountMap{AMM: 2, UserIn: 5, UserOut: 3, PoolIn: 4, PoolOut: 6}, // bToA (flag==0)
				AccountMap{AMM: 2, UserIn: 3, UserOut: 5, PoolIn: 6, PoolOut: 4}, // aToB
			),
		},
		// swapV2: [amm, userA, poolA, userB, poolB] = [4, 7, 8, 9, 10]
		GenericFinder{
			Program:  addresses.Whirlpool,
			Variants: []Variant{{Discriminant: whirlpoolSwapV2Discriminant, MinDataLen: 24}},
			Resolve: directionFlag(41, 0,
				AccountMap{AMM: 4, UserIn: 9, UserOut: 7, PoolIn: 8, PoolOut: 10}, // bToA
				AccountMap{AMM: 4, UserIn: 7, UserOut: 9, PoolIn: 10, PoolOut: 8}, // aToB
			),
		},
		// TwoHopSwap hop 1: [amm, userA, poolA, userB, poolB] = [2, 4, 5, 6, 7]
		GenericFinder{
			Program:  addresses.Whirlpool,
			Variants: []Variant{{Discriminant: whirlpoolTwoHopDiscriminant, MinDataLen: 59}},
			Resolve: directionFlag(25, 0,
				AccountMap{AMM: 2, UserIn: 6, UserOut: 4, PoolIn: 5, PoolOut: 7},
				AccountMap{AMM: 2, UserIn: 4, UserOut: 6, PoolIn: 7, PoolOut: 5},
			),
		},
		// TwoHopSwap hop 2: [amm, userA, poolA, userB, poolB] = [3, 8, 9, 10, 11]
		GenericFinder{
			Program:  addresses.Whirlpool,
			Variants: []Variant{{Discriminant: whirlpoolTwoHopDiscriminant, MinDataLen: 59}},
			Resolve: directionFlag(26, 0,
				AccountMap{AMM: 3, UserIn: 10, UserOut: 8, PoolIn: 9, PoolOut: 11},
				AccountMap{AMM: 3, UserIn: 8, UserOut: 10, PoolIn: 11, PoolOut: 9},
			),
		},
		// TwoHopSwapV2 hop 1 and hop 2: the a-to-b byte lands on one of the
		// discriminant's own bytes, which is guaranteed nonzero once matched,
		// so both hops always resolve a-to-b; there are only 3 live transfers
		// (the middle token account is reused as hop1's output and hop2's
		// input), which the generic walker's cursor-advance naturally handles.
		GenericFinder{
			Program:  addresses.Whirlpool,
			Variants: []Variant{{Discriminant: whirlpoolTwoHopV2Discriminant, MinDataLen: 59}},
			Resolve:  fixed(AccountMap{AMM: 0, UserIn: 8, UserOut: 11, PoolIn: 10, PoolOut: 9}),
		},
		GenericFinder{
			Program:  addresses.Whirlpool,
			Variants: []Variant{{Discriminant: whirlpoolTwoHopV2Discriminant, MinDataLen: 59}},
			Resolve:  fixed(AccountMap{AMM: 1, UserIn: 10, UserOut: 13, PoolIn: 12, PoolOut: 11}),
		},
	}
}
