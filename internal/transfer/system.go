package transfer

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/events"
)

// SystemFinder recognizes System Program lamport movements: CreateAccount,
// Transfer, CreateAccountWithSeed and TransferWithSeed. Lamport transfers
// have no mint; they're tagged with the wrapped-SOL mint so they compose
// with token legs in fund-flow closure.
type SystemFinder struct{}

// amountAndDest returns (destAccountIndex, amount), or ok=false if data
// doesn't decode to one of the four lamport-moving variants.
func (SystemFinder) amountAndDest(data []byte) (destIdx int, amount uint64, ok bool) {
	if len(data) < 12 {
		return 0, 0, false
	}
	switch data[0] {
	case 0, 2: // CreateAccount, Transfer
		return 1, binary.LittleEndian.Uint64(data[4:12]), true
	case 3: // CreateAccountWithSeed: discrim(4) base(32) seedLen(8) seed(seedLen) lamports(8)
		if len(data) < 44 {
			return 0, 0, false
		}
		seedLen := binary.LittleEndian.Uint64(data[36:44])
		start := 44 + int(seedLen)
		end := start + 8
		if end > len(data) {
			return 0, 0, false
		}
		return 1, binary.LittleEndian.Uint64(data[start:end]), true
	case 13: // TransferWithSeed
		return 2, binary.LittleEndian.Uint64(data[4:12]), true
	default:
		return 0, 0, false
	}
}

// SystemLegOf decodes a single System Program instruction into a transfer
// tuple, tagged with the wrapped-SOL mint and the sender as authority.
// Shared with the unknown-AMM discoverer so native-SOL legs count toward
// its thresholds the same way SPL legs do.
func SystemLegOf(ix solana.CompiledInstruction, accountKeys []solana.PublicKey) (from, to, auth solana.PublicKey, mint string, amount uint64, ok bool) {
	var f SystemFinder
	if int(ix.ProgramIDIndex) >= len(accountKeys) || !accountKeys[ix.ProgramIDIndex].Equals(addresses.SystemProgram) {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, "", 0, false
	}
	destIdx, amount, ok := f.amountAndDest(ix.Data)
	if !ok || len(ix.Accounts) < 2 || destIdx >= len(ix.Accounts) {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, "", 0, false
	}
	fi, ti := int(ix.Accounts[0]), int(ix.Accounts[destIdx])
	if fi >= len(accountKeys) || ti >= len(accountKeys) || fi == ti {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, "", 0, false
	}
	from, to = accountKeys[fi], accountKeys[ti]
	return from, to, from, addresses.WrappedSOLMint.String(), amount, true
}

func (f SystemFinder) FindTransfers(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, _ *rpc.TransactionMeta) []events.Transfer {
	var out []events.Transfer
	if int(ix.ProgramIDIndex) < len(accountKeys) && accountKeys[ix.ProgramIDIndex].Equals(addresses.SystemProgram) {
		if destIdx, amount, ok := f.amountAndDest(ix.Data); ok && len(ix.Accounts) >= 2 && destIdx < len(ix.Accounts) {
			from, to := ix.Accounts[0], ix.Accounts[destIdx]
			if from != to {
				out = append(out, events.Transfer{
					Program:   addresses.SystemProgram.String(),
					Authority: accountKeys[from].String(),
					Mint:      addresses.WrappedSOLMint.String(),
					Amount:    amount,
					InputATA:  accountKeys[from].String(),
					OutputATA: accountKeys[to].String(),
				})
			}
		}
	}
	for i, inner := range innerIxs {
		if int(inner.ProgramIDIndex) >= len(accountKeys) || !accountKeys[inner.ProgramIDIndex].Equals(addresses.SystemProgram) {
			continue
		}
		if len(inner.Accounts) < 2 {
			continue
		}
		destIdx, amount, ok := f.amountAndDest(inner.Data)
		if !ok || destIdx >= len(inner.Accounts) {
			continue
		}
		from, to := int(inner.Accounts[0]), int(inner.Accounts[destIdx])
		if from >= len(accountKeys) || to >= len(accountKeys) || from == to {
			continue
		}
		outer := accountKeys[ix.ProgramIDIndex].String()
		innerIdx := uint32(i)
		out = append(out, events.Transfer{
			OuterProgram: &outer,
			Program:      addresses.SystemProgram.String(),
			Authority:    accountKeys[from].String(),
			Mint:         addresses.WrappedSOLMint.String(),
			Amount:       amount,
			InputATA:     accountKeys[from].String(),
			OutputATA:    accountKeys[to].String(),
			Timestamp:    events.Timestamp{InnerIxIndex: &innerIdx},
		})
	}
	return out
}
