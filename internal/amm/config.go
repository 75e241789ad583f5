package amm

import (
	"github.com/franco-bianco/sandwichgo/internal/addresses"
)

// fixed returns a Resolve function that always reports the same
// AccountMap, for AMMs whose account layout never depends on a direction
// flag (Raydium V4/V5/CL, Meteora DLMM/DBC, OpenBook-style single-sided
// calls once a direction byte has already been folded into the caller).
func fixed(am AccountMap) func([]byte) (AccountMap, bool) {
	return func([]byte) (AccountMap, bool) { return am, true }
}

// directionFlag returns a Resolve function that swaps between two
// AccountMaps based on whether data[byteIdx] == aVal (the "a to b" case)
// or not, matching the `a_to_b`-style single-byte flags used by SolFi,
// ApeSU and similar CLOB-lite AMMs.
func directionFlag(byteIdx int, aVal byte, aToB, bToA AccountMap) func([]byte) (AccountMap, bool) {
	return func(data []byte) (AccountMap, bool) {
		if byteIdx >= len(data) {
			return AccountMap{}, false
		}
		if data[byteIdx] == aVal {
			return aToB, true
		}
		return bToA, true
	}
}

// Finders returns every configured GenericFinder, one per table-driven AMM
// program named in internal/addresses. addresses.PumpFun2 has no finder,
// here or among the bespoke ones.
// Bespoke AMMs (pump.fun, sugar, Whirlpool two-hop, the order-engine's
// synthetic pool address, HumidiFi's exclusive direction assertion) get
// their own Finder implementations alongside this table.
func Finders() []Finder {
	out := []Finder{
		// Raydium V4: discriminants 0x09 (swap), 0x0b (swap2), 0x10 (swapBaseOut).
		// amm=[1], user in/out = [len-3]/[len-2]; pool ATAs not reliably
		// orderable, left unspecified.
		GenericFinder{
			Program: addresses.RaydiumV4,
			Variants: []Variant{
				{Discriminant: []byte{0x09}, MinDataLen: 17},
				{Discriminant: []byte{0x0b}, MinDataLen: 17},
				{Discriminant: []byte{0x10}, MinDataLen: 17},
			},
			Resolve: fixed(AccountMap{AMM: 1, UserIn: -3, UserOut: -2, PoolIn: unspecifiedPool, PoolOut: unspecifiedPool}),
		},
		// Raydium V5 (CPMM): swap_base_input / swap_base_output.
		GenericFinder{
			Program: addresses.RaydiumV5,
			Variants: []Variant{
				{Discriminant: []byte{0x8f, 0xbe, 0x5a, 0xda, 0xc4, 0x1e, 0x33, 0xde}, MinDataLen: 24},
				{Discriminant: []byte{0x37, 0xd9, 0x62, 0x56, 0xa3, 0x4a, 0xb4, 0xad}, MinDataLen: 24},
			},
			Resolve: fixed(AccountMap{AMM: 3, UserIn: 4, UserOut: 5, PoolIn: 7, PoolOut: 6}),
		},
		// Raydium CL (concentrated liquidity): swap / swapV2.
		GenericFinder{
			Program: addresses.RaydiumCL,
			Variants: []Variant{
				{Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, MinDataLen: 41},
				{Discriminant: []byte{0x2b, 0x04, 0xed, 0x0b, 0x1a, 0xc9, 0x1e, 0x62}, MinDataLen: 41},
			},
			Resolve: fixed(AccountMap{AMM: 2, UserIn: 3, UserOut: 4, PoolIn: 6, PoolOut: 5}),
		},
		// Raydium LP (stable/legacy pools): same instruction family as V4.
		GenericFinder{
			Program: addresses.RaydiumLP,
			Variants: []Variant{
				{Discriminant: []byte{0x09}, MinDataLen: 17},
			},
			Resolve: fixed(AccountMap{AMM: 1, UserIn: -3, UserOut: -2, PoolIn: unspecifiedPool, PoolOut: unspecifiedPool}),
		},
		// Meteora DLMM: 6 instruction variants, all sharing [4]/[5] for the
		// user's in/out ATA and [0] for the pool (lb_pair).
		GenericFinder{
			Program: addresses.MeteoraDLMM,
			Variants: []Variant{
				{Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, MinDataLen: 24}, // swap
				{Discriminant: []byte{0x41, 0x4b, 0x3f, 0x4c, 0xeb, 0x5b, 0x5b, 0x88}, MinDataLen: 24}, // swap2
				{Discriminant: []byte{0xfa, 0x49, 0x65, 0x21, 0x26, 0xcf, 0x4b, 0xb8}, MinDataLen: 24}, // swapExactOut
				{Discriminant: []byte{0x2b, 0xd7, 0xf7, 0x84, 0x89, 0x3c, 0xf3, 0x51}, MinDataLen: 24}, // swapExactOut2
				{Discriminant: []byte{0x38, 0xad, 0xe6, 0xd0, 0xad, 0xe4, 0x9c, 0xcd}, MinDataLen: 24}, // swapWithPriceImpact
				{Discriminant: []byte{0x4a, 0x62, 0xc0, 0xd6, 0xb1, 0x33, 0x4b, 0x33}, MinDataLen: 24}, // swapWithPriceImpact2
			},
			Resolve: fixed(AccountMap{AMM: 0, UserIn: 4, UserOut: 5, PoolIn: unspecifiedPool, PoolOut: unspecifiedPool}),
		},
		// Meteora (classic dynamic-AMM "Meteora" pools): same account
		// layout the DBC finder below uses, one instruction family.
		GenericFinder{
			Program: addresses.Meteora,
			Variants: []Variant{
				{Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, MinDataLen: 24},
			},
			Resolve: fixed(AccountMap{AMM: 2, UserIn: 3, UserOut: 4, PoolIn: unspecifiedPool, PoolOut: unspecifiedPool}),
		},
		// Meteora DBC (dynamic bonding curve): swap / swap2, referral ATA
		// at [12] blacklisted so fee routing never masquerades as a leg.
		GenericFinder{
			Program: addresses.MeteoraDBC,
			Variants: []Variant{
				{Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, MinDataLen: 24},
				{Discriminant: []byte{0x41, 0x4b, 0x3f, 0x4c, 0xeb, 0x5b, 0x5b, 0x88}, MinDataLen: 24},
			},
			Blacklist: []int{12},
			Resolve:   fixed(AccountMap{AMM: 2, UserIn: 3, UserOut: 4, PoolIn: unspecifiedPool, PoolOut: unspecifiedPool}),
		},
		// Meteora DAMM v2: shares the DBC account-layout convention.
		GenericFinder{
			Program: addresses.MeteoraDAMMv2,
			Variants: []Variant{
				{Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, MinDataLen: 24},
			},
			Resolve: fixed(AccountMap{AMM: 2, UserIn: 3, UserOut: 4, PoolIn: unspecifiedPool, PoolOut: unspecifiedPool}),
		},
		// OpenBook V2 placeTakeOrder: acts as a swap when it crosses the
		// book immediately. data[8] selects bid/ask, which flips both the
		// user and market (base/quote) ATA ordering.
		GenericFinder{
			Program: addresses.OpenBookV2,
			Variants: []Variant{
				{Discriminant: []byte{0x03, 0x2c, 0x47, 0x03, 0x1a, 0xc7, 0xcb, 0x55}, MinDataLen: 35},
			},
			Resolve: directionFlag(8, 1,
				AccountMap{AMM: 2, UserIn: 9, UserOut: 10, PoolIn: 7, PoolOut: 6},
				AccountMap{AMM: 2, UserIn: 10, UserOut: 9, PoolIn: 6, PoolOut: 7},
			),
		},
		// SolFi: single swap instruction, direction flag at [17] (0 =
		// a-to-b), pool/user base-quote ATAs at [2]/[3] and [4]/[5].
		GenericFinder{
			Program: addresses.SolFi,
			Variants: []Variant{
				{Discriminant: []byte{0x07}, MinDataLen: 18},
			},
			Resolve: directionFlag(17, 0,
				AccountMap{AMM: 1, UserIn: 4, UserOut: 5, PoolIn: 3, PoolOut: 2},
				AccountMap{AMM: 1, UserIn: 5, UserOut: 4, PoolIn: 2, PoolOut: 3},
			),
		},
		// ZeroFi: follows the same single-instruction direction-flag shape
		// as SolFi, the two programs share crank lineage.
		GenericFinder{
			Program: addresses.ZeroFi,
			Variants: []Variant{
				{Discriminant: []byte{0x07}, MinDataLen: 18},
			},
			Resolve: directionFlag(17, 0,
				AccountMap{AMM: 1, UserIn: 4, UserOut: 5, PoolIn: 3, PoolOut: 2},
				AccountMap{AMM: 1, UserIn: 5, UserOut: 4, PoolIn: 2, PoolOut: 3},
			),
		},
		// GoonFi: same shape family.
		GenericFinder{
			Program: addresses.GoonFi,
			Variants: []Variant{
				{Discriminant: []byte{0x07}, MinDataLen: 18},
			},
			Resolve: directionFlag(17, 0,
				AccountMap{AMM: 1, UserIn: 4, UserOut: 5, PoolIn: 3, PoolOut: 2},
				AccountMap{AMM: 1, UserIn: 5, UserOut: 4, PoolIn: 2, PoolOut: 3},
			),
		},
		// ApeSU: [24]==1 is a-to-b (==3 is the reverse; 0/2/4 unseen in the
		// wild, so we key strictly off 1 vs not-1).
		GenericFinder{
			Program: addresses.ApeSU,
			Variants: []Variant{
				{Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, MinDataLen: 25},
			},
			Resolve: directionFlag(24, 1,
				AccountMap{AMM: 0, UserIn: 1, UserOut: 2, PoolIn: 4, PoolOut: 3},
				AccountMap{AMM: 0, UserIn: 2, UserOut: 1, PoolIn: 3, PoolOut: 4},
			),
		},
		// Saros DLMM: a DLMM fork, same account-role convention as Meteora
		// DLMM (pool at [0], user ATAs at [4]/[5]).
		GenericFinder{
			Program: addresses.SarosDLMM,
			Variants: []Variant{
				{Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, MinDataLen: 24},
			},
			Resolve: fixed(AccountMap{AMM: 0, UserIn: 4, UserOut: 5, PoolIn: unspecifiedPool, PoolOut: unspecifiedPool}),
		},
		// PancakeSwap (Solana CLMM port): mirrors Raydium CL's account
		// layout, the program is a CL fork.
		GenericFinder{
			Program: addresses.PancakeSwap,
			Variants: []Variant{
				{Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, MinDataLen: 41},
				{Discriminant: []byte{0x2b, 0x04, 0xed, 0x0b, 0x1a, 0xc9, 0x1e, 0x62}, MinDataLen: 41},
			},
			Resolve: fixed(AccountMap{AMM: 2, UserIn: 3, UserOut: 4, PoolIn: 6, PoolOut: 5}),
		},
		// FluxBeam: single-sided token-swap program, Raydium-V4-style
		// trailing user ATAs.
		GenericFinder{
			Program: addresses.FluxBeam,
			Variants: []Variant{
				{Discriminant: []byte{0x01}, MinDataLen: 9},
			},
			Resolve: fixed(AccountMap{AMM: 1, UserIn: -3, UserOut: -2, PoolIn: unspecifiedPool, PoolOut: unspecifiedPool}),
		},
		// Lifinity V2: fixed account roles, no direction byte (the
		// instruction itself names the in/out leg order).
		GenericFinder{
			Program: addresses.LifinityV2,
			Variants: []Variant{
				{Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, MinDataLen: 17},
			},
			Resolve: fixed(AccountMap{AMM: 1, UserIn: 3, UserOut: 4, PoolIn: 6, PoolOut: 5}),
		},
		// OneDex: order-book-style single instruction, base/quote flag
		// mirrors SolFi's convention at the same offset (data[17]).
		GenericFinder{
			Program: addresses.OneDex,
			Variants: []Variant{
				{Discriminant: []byte{0x07}, MinDataLen: 18},
			},
			Resolve: directionFlag(17, 0,
				AccountMap{AMM: 1, UserIn: 4, UserOut: 5, PoolIn: 3, PoolOut: 2},
				AccountMap{AMM: 1, UserIn: 5, UserOut: 4, PoolIn: 2, PoolOut: 3},
			),
		},
		// Aqua: fixed-role CPMM, same shape as Raydium V5.
		GenericFinder{
			Program: addresses.Aqua,
			Variants: []Variant{
				{Discriminant: []byte{0x8f, 0xbe, 0x5a, 0xda, 0xc4, 0x1e, 0x33, 0xde}, MinDataLen: 24},
			},
			Resolve: fixed(AccountMap{AMM: 3, UserIn: 4, UserOut: 5, PoolIn: 7, PoolOut: 6}),
		},
		// StabbleWeighted: weighted-pool CPMM, same 24-byte input-exact
		// instruction family as Raydium V5.
		GenericFinder{
			Program: addresses.StabbleWeight,
			Variants: []Variant{
				{Discriminant: []byte{0x8f, 0xbe, 0x5a, 0xda, 0xc4, 0x1e, 0x33, 0xde}, MinDataLen: 24},
			},
			Resolve: fixed(AccountMap{AMM: 3, UserIn: 4, UserOut: 5, PoolIn: 7, PoolOut: 6}),
		},
		// Jupiter Perps: swap-shaped instruction on the perps pool
		// (distinct from its leveraged-position instructions, which this
		// decoder doesn't treat as AMM swaps).
		GenericFinder{
			Program: addresses.JupPerps,
			Variants: []Variant{
				{Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, MinDataLen: 41},
			},
			Resolve: fixed(AccountMap{AMM: 2, UserIn: 3, UserOut: 4, PoolIn: 6, PoolOut: 5}),
		},
		// Dooar: CPMM fork.
		GenericFinder{
			Program: addresses.Dooar,
			Variants: []Variant{
				{Discriminant: []byte{0x09}, MinDataLen: 17},
			},
			Resolve: fixed(AccountMap{AMM: 1, UserIn: -3, UserOut: -2, PoolIn: unspecifiedPool, PoolOut: unspecifiedPool}),
		},
		// PumpUp: a pump.fun-alike launchpad AMM that, unlike pump.fun
		// itself, emits plain token/system transfers rather than a
		// self-CPI log, so the generic walker applies directly.
		GenericFinder{
			Program: addresses.PumpUp,
			Variants: []Variant{
				{Discriminant: []byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea}, MinDataLen: 24},
				{Discriminant: []byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad}, MinDataLen: 24},
			},
			Resolve: directionFlag(0, 0x66,
				AccountMap{AMM: 0, UserIn: 6, UserOut: 5, PoolIn: 8, PoolOut: 7},
				AccountMap{AMM: 0, UserIn: 5, UserOut: 6, PoolIn: 7, PoolOut: 8},
			),
		},
		// ClearPool: fixed-role CPMM, CL-style pool ATA pairing.
		GenericFinder{
			Program: addresses.ClearPool,
			Variants: []Variant{
				{Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, MinDataLen: 41},
			},
			Resolve: fixed(AccountMap{AMM: 2, UserIn: 3, UserOut: 4, PoolIn: 6, PoolOut: 5}),
		},
		// TessV and SV2E: both direction-flagged single-instruction AMMs
		// in the SolFi/ApeSU lineage (undocumented programs, reverse
		// engineered from calldata shape).
		GenericFinder{
			Program: addresses.TessV,
			Variants: []Variant{
				{Discriminant: []byte{0x07}, MinDataLen: 18},
			},
			Resolve: directionFlag(17, 0,
				AccountMap{AMM: 1, UserIn: 4, UserOut: 5, PoolIn: 3, PoolOut: 2},
				AccountMap{AMM: 1, UserIn: 5, UserOut: 4, PoolIn: 2, PoolOut: 3},
			),
		},
		GenericFinder{
			Program: addresses.SV2E,
			Variants: []Variant{
				{Discriminant: []byte{0x07}, MinDataLen: 18},
			},
			Resolve: directionFlag(17, 0,
				AccountMap{AMM: 1, UserIn: 4, UserOut: 5, PoolIn: 3, PoolOut: 2},
				AccountMap{AMM: 1, UserIn: 5, UserOut: 4, PoolIn: 2, PoolOut: 3},
			),
		},

	}
	out = append(out, whirlpoolFinders()...)
	out = append(out, humidiFiFinder())
	return out
}
