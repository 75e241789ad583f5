package amm

import (
	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/events"
)

// jupiterRouteEventDiscriminant is the Anchor event discriminator Jupiter's
// aggregator router emits via a self-CPI log instruction after a route
// completes, carrying the authoritative net amounts for the whole route
// rather than one entry per intermediate AMM hop.
var jupiterRouteEventDiscriminant = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 64, 198, 205, 232, 38, 8, 113, 226}

// jupiterRouteEvent mirrors the borsh-encoded payload Jupiter's RouteV2
// anchor event carries.
type jupiterRouteEvent struct {
	AMM          solana.PublicKey
	InputMint    solana.PublicKey
	InputAmount  uint64
	OutputMint   solana.PublicKey
	OutputAmount uint64
}

// JupiterEventFinder prefers Jupiter's own RouteV2 event over decomposing
// the route into per-hop AMM swaps: a multi-hop route through three pools
// is one trade from the trader's perspective, and treating it as three
// separate swaps would confuse trade-pair grouping in sandwich enumeration.
// It only looks at top-level Jupiter calls; per-hop CPIs are still
// available to every other finder when no route event is found (see
// FindSwapsInTx's aggregator precedence in finder.go).
type JupiterEventFinder struct{}

func (JupiterEventFinder) isRouteEvent(data []byte) bool {
	return len(data) >= 16 && bytesHasPrefix(data, jupiterRouteEventDiscriminant[:])
}

func (f JupiterEventFinder) decodeRouteEvent(data []byte) (jupiterRouteEvent, bool) {
	if !f.isRouteEvent(data) {
		return jupiterRouteEvent{}, false
	}
	decoder := ag_binary.NewBorshDecoder(data[16:])
	var event jupiterRouteEvent
	if err := decoder.Decode(&event); err != nil {
		return jupiterRouteEvent{}, false
	}
	return event, true
}

func (f JupiterEventFinder) FindSwaps(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Swap {
	if int(ix.ProgramIDIndex) >= len(accountKeys) {
		return nil
	}
	program := accountKeys[ix.ProgramIDIndex]
	if !program.Equals(addresses.JupiterV6) && !program.Equals(addresses.JupiterV4) {
		return nil
	}

	var swaps []events.Swap
	for _, inner := range innerIxs {
		event, ok := f.decodeRouteEvent(inner.Data)
		if !ok {
			continue
		}
		swaps = append(swaps, events.Swap{
			Program:      program.String(),
			AMM:          event.AMM.String(),
			InputMint:    event.InputMint.String(),
			OutputMint:   event.OutputMint.String(),
			InputAmount:  event.InputAmount,
			OutputAmount: event.OutputAmount,
		})
	}
	return swaps
}
