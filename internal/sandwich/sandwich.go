// Package sandwich implements the invariant checks and windowed enumeration
// that turn a chronologically sorted stream of swaps, transfers and
// transactions into detected sandwich candidates.
package sandwich

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/events"
)

// Kind names the reason SandwichCandidate construction failed.
type Kind int

const (
	InvalidFrontrun Kind = iota
	InvalidBackrun
	FrontrunBackrunPairMismatch
	FrontrunBackrunWrapperMismatch
	InvalidVictim
	NonProfitable
	InvalidTransfers
)

func (k Kind) String() string {
	switch k {
	case InvalidFrontrun:
		return "InvalidFrontrun"
	case InvalidBackrun:
		return "InvalidBackrun"
	case FrontrunBackrunPairMismatch:
		return "FrontrunBackrunPairMismatch"
	case FrontrunBackrunWrapperMismatch:
		return "FrontrunBackrunWrapperMismatch"
	case InvalidVictim:
		return "InvalidVictim"
	case NonProfitable:
		return "NonProfitable"
	case InvalidTransfers:
		return "InvalidTransfers"
	default:
		return "Unknown"
	}
}

// Error is the structured failure a candidate construction attempt returns.
// A and B carry the two profitability deltas only when Kind == NonProfitable;
// the enumeration loop inspects their sign to decide which loop to prune.
type Error struct {
	Kind Kind
	A, B *big.Int
}

func (e *Error) Error() string {
	if e.Kind == NonProfitable {
		return fmt.Sprintf("%s (A=%s, B=%s)", e.Kind, e.A, e.B)
	}
	return e.Kind.String()
}

// New validates and assembles a SandwichCandidate from one chronological
// grouping of frontrun/victim/backrun swaps plus the transfers and
// transactions available in the surrounding window. It checks every
// invariant in order and returns the first one violated.
func New(frontrun, victim, backrun []events.Swap, transfers []events.Transfer, txs []events.Transaction) (events.SandwichCandidate, error) {
	frontrunWrapper, frontrunPair, ok := pairFromSwaps(frontrun, true)
	if !ok {
		return events.SandwichCandidate{}, &Error{Kind: InvalidFrontrun}
	}
	backrunWrapper, backrunPair, ok := pairFromSwaps(backrun, true)
	if !ok {
		return events.SandwichCandidate{}, &Error{Kind: InvalidBackrun}
	}
	if frontrunPair.Reverse() != backrunPair {
		return events.SandwichCandidate{}, &Error{Kind: FrontrunBackrunPairMismatch}
	}
	if !outerEqual(frontrunWrapper, backrunWrapper) {
		return events.SandwichCandidate{}, &Error{Kind: FrontrunBackrunWrapperMismatch}
	}

	_, victimPair, ok := pairFromSwaps(victim, false)
	if !ok || victimPair != frontrunPair {
		return events.SandwichCandidate{}, &Error{Kind: InvalidVictim}
	}
	for _, s := range victim {
		if s.OuterProgram != nil && outerEqual(s.OuterProgram, frontrunWrapper) {
			return events.SandwichCandidate{}, &Error{Kind: InvalidVictim}
		}
	}

	frontrunSpent, frontrunReceived := sumAmounts(frontrun)
	backrunSpent, backrunReceived := sumAmounts(backrun)
	a := new(big.Int).Sub(backrunReceived, frontrunSpent)
	b := new(big.Int).Sub(frontrunReceived, backrunSpent)
	if a.Sign() < 0 || b.Sign() < 0 {
		return events.SandwichCandidate{}, &Error{Kind: NonProfitable, A: a, B: b}
	}

	frontrunOut := multiset(frontrun, func(s events.Swap) string { return s.OutputATA })
	backrunIn := multiset(backrun, func(s events.Swap) string { return s.InputATA })
	var matchedTransfers []events.Transfer
	for _, t := range transfers {
		if frontrunOut[t.InputATA] > 0 && backrunIn[t.OutputATA] > 0 {
			matchedTransfers = append(matchedTransfers, t)
			frontrunOut[t.InputATA]--
			backrunIn[t.OutputATA]--
		}
	}
	if !multisetEqual(frontrunOut, backrunIn) {
		return events.SandwichCandidate{}, &Error{Kind: InvalidTransfers}
	}

	return events.SandwichCandidate{
		Frontrun:  frontrun,
		Victim:    victim,
		Backrun:   backrun,
		Transfers: matchedTransfers,
		Txs:       matchingTxs(frontrun, victim, backrun, txs),
	}, nil
}

// pairFromSwaps reports the shared TradePair (and, when checkWrapper is set,
// the shared OuterProgram) across swaps. An empty slice, or any swap that
// disagrees with the first one, is not ok — which is also how an empty
// victim list is rejected without any separate top-level check.
func pairFromSwaps(swaps []events.Swap, checkWrapper bool) (*string, events.TradePair, bool) {
	if len(swaps) == 0 {
		return nil, events.TradePair{}, false
	}
	pair := swaps[0].Pair()
	var outer *string
	if checkWrapper {
		outer = swaps[0].OuterProgram
	}
	for _, s := range swaps {
		if s.Pair() != pair {
			return nil, events.TradePair{}, false
		}
		if checkWrapper && !outerEqual(s.OuterProgram, outer) {
			return nil, events.TradePair{}, false
		}
	}
	return outer, pair, true
}

func outerEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sumAmounts(swaps []events.Swap) (spent, received *big.Int) {
	spent, received = new(big.Int), new(big.Int)
	for _, s := range swaps {
		spent.Add(spent, new(big.Int).SetUint64(s.InputAmount))
		received.Add(received, new(big.Int).SetUint64(s.OutputAmount))
	}
	return spent, received
}

func multiset(swaps []events.Swap, key func(events.Swap) string) map[string]int {
	m := map[string]int{}
	for _, s := range swaps {
		m[key(s)]++
	}
	return m
}

func multisetEqual(a, b map[string]int) bool {
	for k, v := range a {
		if v != 0 && b[k] != v {
			return false
		}
	}
	for k, v := range b {
		if v != 0 && a[k] != v {
			return false
		}
	}
	return true
}

type slotOrder struct {
	Slot  uint64
	Order uint32
}

func matchingTxs(frontrun, victim, backrun []events.Swap, txs []events.Transaction) []events.Transaction {
	wanted := map[slotOrder]struct{}{}
	for _, group := range [][]events.Swap{frontrun, victim, backrun} {
		for _, s := range group {
			wanted[slotOrder{s.Timestamp.Slot, s.Timestamp.InclusionOrder}] = struct{}{}
		}
	}
	var out []events.Transaction
	for _, tx := range txs {
		if _, ok := wanted[slotOrder{tx.Slot, tx.InclusionOrder}]; ok {
			out = append(out, tx)
		}
	}
	return out
}

// Detect scans a chronologically sorted window of swaps for sandwiches.
// For each unmatched swap, it looks for a run of same-direction swaps
// immediately before it and a run of reverse-direction swaps after it,
// sharing a non-aggregator outer program, then tries every contiguous
// sub-range pair via New, keeping the best-ranked candidate per anchor swap.
//
// The four nested loops (before-start, before-end, after-start, after-end)
// are pruned rather than run to completion: once New reports the candidate
// is unprofitable, the sign of its two deltas tells us whether widening the
// backrun window, shrinking the backrun window from the left, or widening
// the frontrun window at all can ever recover profitability, and we break
// the corresponding loop instead of trying every remaining combination.
func Detect(swaps []events.Swap, transfers []events.Transfer, txs []events.Transaction) []events.SandwichCandidate {
	byAMM := map[string]map[events.TradePair][]events.Swap{}
	for _, s := range swaps {
		if byAMM[s.AMM] == nil {
			byAMM[s.AMM] = map[events.TradePair][]events.Swap{}
		}
		byAMM[s.AMM][s.Pair()] = append(byAMM[s.AMM][s.Pair()], s)
	}

	matched := map[tsKey]bool{}
	var sandwiches []events.SandwichCandidate
	for _, anchor := range swaps {
		if matched[keyOf(anchor.Timestamp)] {
			continue
		}
		pair := anchor.Pair()
		revPair := pair.Reverse()
		before := before(byAMM[anchor.AMM][pair], anchor.Timestamp)
		after := after(byAMM[anchor.AMM][revPair], anchor.Timestamp)
		if len(before) == 0 || len(after) == 0 {
			continue
		}

		beforeByOuter := groupByOuter(before)
		afterByOuter := groupByOuter(after)
		var candidates []events.SandwichCandidate
		for outer, beforeSwaps := range beforeByOuter {
			if isAggregatorAddress(outer) {
				continue
			}
			afterSwaps, ok := afterByOuter[outer]
			if !ok {
				continue
			}
			candidates = append(candidates, enumerateRanges(swaps, anchor, beforeSwaps, afterSwaps, transfers, txs, matched)...)
		}
		if len(candidates) == 0 {
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool { return rankLess(candidates[i], candidates[j]) })
		sandwiches = append(sandwiches, candidates[len(candidates)-1])
	}
	return sandwiches
}

// rankLess orders candidates by (len(victim), len(frontrun)+len(backrun)),
// so the last element after a stable sort is the best one for this anchor.
func rankLess(a, b events.SandwichCandidate) bool {
	if len(a.Victim) != len(b.Victim) {
		return len(a.Victim) < len(b.Victim)
	}
	return len(a.Frontrun)+len(a.Backrun) < len(b.Frontrun)+len(b.Backrun)
}

// tsKey is a comparable stand-in for events.Timestamp, whose *uint32 field
// would otherwise make map lookups compare pointer identity instead of
// position.
type tsKey struct {
	slot  uint64
	incl  uint32
	ix    uint32
	inner int64 // -1 means absent
}

func keyOf(t events.Timestamp) tsKey {
	inner := int64(-1)
	if t.InnerIxIndex != nil {
		inner = int64(*t.InnerIxIndex)
	}
	return tsKey{slot: t.Slot, incl: t.InclusionOrder, ix: t.IxIndex, inner: inner}
}

func enumerateRanges(allSwaps []events.Swap, anchor events.Swap, beforeSwaps, afterSwaps []events.Swap, transfers []events.Transfer, txs []events.Transaction, matched map[tsKey]bool) []events.SandwichCandidate {
	bn, an := len(beforeSwaps), len(afterSwaps)
	var candidates []events.SandwichCandidate

	for i := 0; i < bn; i++ {
		breakJ := false
	jLoop:
		for j := i + 1; j <= bn; j++ {
			frontrun := beforeSwaps[i:j]
			frontrunLastTs := beforeSwaps[j-1].Timestamp

		mLoop:
			for m := 0; m < an; m++ {
				for n := m + 1; n <= an; n++ {
					backrun := afterSwaps[m:n]
					backrunFirstTs := afterSwaps[m].Timestamp
					victim := victims(allSwaps, frontrunLastTs, backrunFirstTs, anchor)

					cand, err := New(frontrun, victim, backrun, transfers, txs)
					if err == nil {
						candidates = append(candidates, cand)
						for _, v := range victim {
							matched[keyOf(v.Timestamp)] = true
						}
						continue
					}

					serr, ok := err.(*Error)
					if !ok || serr.Kind != NonProfitable {
						continue
					}
					if serr.B.Sign() < 0 {
						break // more backruns only shrink B further; stop growing n for this m
					}
					if n == an && m == 0 && serr.A.Sign() < 0 {
						breakJ = true
						break mLoop
					}
					if n == an && serr.A.Sign() < 0 {
						break mLoop
					}
				}
			}
			if breakJ {
				break jLoop
			}
		}
	}
	return candidates
}

func victims(swaps []events.Swap, after, before events.Timestamp, anchor events.Swap) []events.Swap {
	var out []events.Swap
	for _, s := range swaps {
		if after.Less(s.Timestamp) && s.Timestamp.Less(before) && s.AMM == anchor.AMM && s.InputMint == anchor.InputMint && s.OutputMint == anchor.OutputMint {
			out = append(out, s)
		}
	}
	return out
}

// isAggregatorAddress parses outer leniently: wrapper strings come back
// from the store, and anything unparsable is by definition not one of the
// known aggregator program ids.
func isAggregatorAddress(outer string) bool {
	if outer == "" {
		return false
	}
	pk, err := solana.PublicKeyFromBase58(outer)
	return err == nil && addresses.IsKnownAggregator(pk)
}

func groupByOuter(swaps []events.Swap) map[string][]events.Swap {
	m := map[string][]events.Swap{}
	for _, s := range swaps {
		key := ""
		if s.OuterProgram != nil {
			key = *s.OuterProgram
		}
		m[key] = append(m[key], s)
	}
	return m
}

func before(swaps []events.Swap, ts events.Timestamp) []events.Swap {
	var out []events.Swap
	for _, s := range swaps {
		if s.Timestamp.Less(ts) {
			out = append(out, s)
		}
	}
	return out
}

func after(swaps []events.Swap, ts events.Timestamp) []events.Swap {
	var out []events.Swap
	for _, s := range swaps {
		if ts.Less(s.Timestamp) {
			out = append(out, s)
		}
	}
	return out
}
