package amm

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/discoverer"
	"github.com/franco-bianco/sandwichgo/internal/events"
)

// bespokeFinders lists every non-GenericFinder swap decoder; they're kept
// out of config.go's Finders() table since each needs its own FindSwaps
// implementation rather than a (discriminant, account-index) row.
func bespokeFinders() []Finder {
	return []Finder{
		PumpFunFinder{},
		SugarFinder{},
		OrderEngineFinder{},
	}
}

// allFinders returns the full set consulted for a non-aggregator
// top-level instruction: every GenericFinder in config.go plus the
// bespoke per-AMM decoders.
func allFinders() []Finder {
	return append(Finders(), bespokeFinders()...)
}

// FindSwapsInTx walks every top-level instruction of a transaction and
// extracts swap legs, stamping each with its position in the block.
//
// Aggregator-wrapped instructions (Jupiter, OKX) get precedence over the
// per-AMM finders: a whole route is one trade from the trader's
// perspective, so we first ask the aggregator's own event/log for its
// authoritative net amounts, and only fall back to decomposing the route's
// CPI'd AMM calls into individual legs when no aggregate was found. Any
// non-aggregator instruction no known finder recognizes falls through to
// the discoverer heuristic as a last resort, so unmapped AMMs still surface
// something; Jupiter and OKX instructions never reach the discoverer.
func FindSwapsInTx(slot uint64, inclusionOrder uint32, ixs []solana.CompiledInstruction, meta *rpc.TransactionMeta, accountKeys []solana.PublicKey) []events.Swap {
	if meta == nil {
		return nil
	}
	finders := allFinders()
	jupiter := JupiterEventFinder{}
	okx := OKXEventFinder{}
	disc := discoverer.Discoverer{}

	var out []events.Swap
	for i, ix := range ixs {
		inner := innerInstructionsFor(meta, i)
		isAggregator := int(ix.ProgramIDIndex) < len(accountKeys) && addresses.IsKnownAggregator(accountKeys[ix.ProgramIDIndex])
		isOKX := int(ix.ProgramIDIndex) < len(accountKeys) && accountKeys[ix.ProgramIDIndex].Equals(addresses.OKXRouter)

		var swaps []events.Swap
		switch {
		case isAggregator:
			swaps = jupiter.FindSwaps(ix, inner, accountKeys, meta)
			if len(swaps) == 0 {
				swaps = dispatchAll(finders, ix, inner, accountKeys, meta)
			}
		case isOKX:
			swaps = okx.FindSwaps(ix, inner, accountKeys, meta)
			if len(swaps) == 0 {
				swaps = dispatchAll(finders, ix, inner, accountKeys, meta)
			}
		default:
			swaps = dispatchAll(finders, ix, inner, accountKeys, meta)
			if len(swaps) == 0 {
				swaps = disc.FindSwaps(ix, inner, accountKeys, meta)
			}
		}

		for _, s := range swaps {
			s.Timestamp.Slot = slot
			s.Timestamp.InclusionOrder = inclusionOrder
			s.Timestamp.IxIndex = uint32(i)
			out = append(out, s)
		}
	}
	return out
}

func dispatchAll(finders []Finder, ix solana.CompiledInstruction, inner []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Swap {
	var swaps []events.Swap
	for _, f := range finders {
		swaps = append(swaps, f.FindSwaps(ix, inner, accountKeys, meta)...)
	}
	return swaps
}

func innerInstructionsFor(meta *rpc.TransactionMeta, ixIndex int) []solana.CompiledInstruction {
	for _, set := range meta.InnerInstructions {
		if int(set.Index) == ixIndex {
			out := make([]solana.CompiledInstruction, len(set.Instructions))
			for i, ix := range set.Instructions {
				out[i] = solana.CompiledInstruction{
					ProgramIDIndex: ix.ProgramIDIndex,
					Accounts:       ix.Accounts,
					Data:           ix.Data,
				}
			}
			return out
		}
	}
	return nil
}
