package transfer

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/events"
)

// StakeFinder recognizes Stake Program Withdraw(4), the only stake
// instruction that moves lamports to an account outside the stake system.
type StakeFinder struct{}

// fromToAuth returns (fromIdx, toIdx, authIdx, amount) for Withdraw.
func (StakeFinder) fromToAuth(data []byte) (fromIdx, toIdx, authIdx int, amount uint64, ok bool) {
	if len(data) < 12 {
		return 0, 0, 0, 0, false
	}
	if data[0] != 4 {
		return 0, 0, 0, 0, false
	}
	return 0, 1, 4, binary.LittleEndian.Uint64(data[4:12]), true
}

func (f StakeFinder) FindTransfers(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, _ *rpc.TransactionMeta) []events.Transfer {
	var out []events.Transfer
	if int(ix.ProgramIDIndex) < len(accountKeys) && accountKeys[ix.ProgramIDIndex].Equals(addresses.StakeProgram) {
		if fromIdx, toIdx, authIdx, amount, ok := f.fromToAuth(ix.Data); ok && len(ix.Accounts) >= 2 &&
			fromIdx < len(ix.Accounts) && toIdx < len(ix.Accounts) && authIdx < len(ix.Accounts) {
			from, to, auth := ix.Accounts[fromIdx], ix.Accounts[toIdx], ix.Accounts[authIdx]
			if from != to {
				out = append(out, events.Transfer{
					Program:   addresses.StakeProgram.String(),
					Authority: accountKeys[auth].String(),
					Mint:      addresses.WrappedSOLMint.String(),
					Amount:    amount,
					InputATA:  accountKeys[from].String(),
					OutputATA: accountKeys[to].String(),
				})
			}
		}
	}
	for i, inner := range innerIxs {
		if int(inner.ProgramIDIndex) >= len(accountKeys) || !accountKeys[inner.ProgramIDIndex].Equals(addresses.StakeProgram) {
			continue
		}
		if len(inner.Accounts) < 2 {
			continue
		}
		fromIdx, toIdx, authIdx, amount, ok := f.fromToAuth(inner.Data)
		if !ok || fromIdx >= len(inner.Accounts) || toIdx >= len(inner.Accounts) || authIdx >= len(inner.Accounts) {
			continue
		}
		from, to, auth := int(inner.Accounts[fromIdx]), int(inner.Accounts[toIdx]), int(inner.Accounts[authIdx])
		if from >= len(accountKeys) || to >= len(accountKeys) || auth >= len(accountKeys) || from == to {
			continue
		}
		outer := accountKeys[ix.ProgramIDIndex].String()
		innerIdx := uint32(i)
		out = append(out, events.Transfer{
			OuterProgram: &outer,
			Program:      addresses.StakeProgram.String(),
			Authority:    accountKeys[auth].String(),
			Mint:         addresses.WrappedSOLMint.String(),
			Amount:       amount,
			InputATA:     accountKeys[from].String(),
			OutputATA:    accountKeys[to].String(),
			Timestamp:    events.Timestamp{InnerIxIndex: &innerIdx},
		})
	}
	return out
}
