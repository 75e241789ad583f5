package transfer

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/sandwichgo/internal/events"
)

// Finder extracts standalone transfers produced by one top-level
// instruction, including any it CPI'd into via inner instructions.
// Implementations leave Timestamp zero; FindTransfersInTx stamps it.
type Finder interface {
	FindTransfers(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Transfer
}

// Finders is the full set consulted for every instruction in a transaction.
func Finders() []Finder {
	return []Finder{TokenFinder{}, SystemFinder{}, StakeFinder{}}
}

// FindTransfersInTx walks every top-level instruction of a transaction,
// pairing it with its own inner-instruction set, and runs every finder
// against it, stamping each result with its timestamp within the block.
func FindTransfersInTx(finders []Finder, slot uint64, inclusionOrder uint32, ixs []solana.CompiledInstruction, meta *rpc.TransactionMeta, accountKeys []solana.PublicKey) []events.Transfer {
	if meta == nil {
		return nil
	}
	var out []events.Transfer
	for i, ix := range ixs {
		inner := innerInstructionsFor(meta, i)
		for _, f := range finders {
			for _, t := range f.FindTransfers(ix, inner, accountKeys, meta) {
				t.Timestamp.Slot = slot
				t.Timestamp.InclusionOrder = inclusionOrder
				t.Timestamp.IxIndex = uint32(i)
				out = append(out, t)
			}
		}
	}
	return out
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
