package transfer

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/events"
)

// closeAccountSentinelAmount stands in for CloseAccount(9), whose wire
// format carries no amount; replaying the whole transaction to recover the
// drained balance isn't worth it for a sentinel that mostly matters for
// fund-flow closure, not profitability math.
const closeAccountSentinelAmount = 1_000_000_000 * uint64(1_000_000_000)

// TokenFinder recognizes SPL Token and Token-2022 instructions that move
// value between token accounts: Transfer, TransferChecked, MintTo,
// MintToChecked and CloseAccount.
type TokenFinder struct{}

func (TokenFinder) isTokenProgram(id solana.PublicKey) bool {
	return id.Equals(addresses.TokenProgram) || id.Equals(addresses.Token2022Program)
}

// DecodeLeg extracts (amount, fromIndex, toIndex, authIndex) from a token
// instruction's data, if it is one of the five transfer-shaped variants.
func (TokenFinder) DecodeLeg(data []byte) (amount uint64, fromIdx, toIdx, authIdx int, ok bool) {
	if len(data) == 0 {
		return 0, 0, 0, 0, false
	}
	switch data[0] {
	case 3: // Transfer
		if len(data) < 9 {
			return 0, 0, 0, 0, false
		}
		return binary.LittleEndian.Uint64(data[1:9]), 0, 1, 2, true
	case 7: // MintTo
		if len(data) < 9 {
			return 0, 0, 0, 0, false
		}
		return binary.LittleEndian.Uint64(data[1:9]), 0, 1, 2, true
	case 9: // CloseAccount
		return closeAccountSentinelAmount, 0, 1, 2, true
	case 12: // TransferChecked
		if len(data) < 9 {
			return 0, 0, 0, 0, false
		}
		return binary.LittleEndian.Uint64(data[1:9]), 0, 2, 3, true
	case 14: // MintToChecked
		if len(data) < 9 {
			return 0, 0, 0, 0, false
		}
		return binary.LittleEndian.Uint64(data[1:9]), 0, 1, 2, true
	default:
		return 0, 0, 0, 0, false
	}
}

func (f TokenFinder) FindTransfers(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Transfer {
	var out []events.Transfer
	if int(ix.ProgramIDIndex) < len(accountKeys) && f.isTokenProgram(accountKeys[ix.ProgramIDIndex]) {
		if t, ok := f.decodeTopLevel(ix, accountKeys, meta); ok {
			out = append(out, t)
		}
	}
	for i, inner := range innerIxs {
		if int(inner.ProgramIDIndex) >= len(accountKeys) || !f.isTokenProgram(accountKeys[inner.ProgramIDIndex]) {
			continue
		}
		amount, fromIdx, toIdx, authIdx, ok := f.DecodeLeg(inner.Data)
		if !ok || fromIdx >= len(inner.Accounts) || toIdx >= len(inner.Accounts) || authIdx >= len(inner.Accounts) {
			continue
		}
		from, to, auth := inner.Accounts[fromIdx], inner.Accounts[toIdx], inner.Accounts[authIdx]
		if int(from) >= len(accountKeys) || int(to) >= len(accountKeys) || int(auth) >= len(accountKeys) {
			continue
		}
		if from == to {
			continue
		}
		fromATA, toATA, authority := accountKeys[from], accountKeys[to], accountKeys[auth]
		mint, ok := MintOf(fromATA, accountKeys, meta)
		if !ok {
			mint, ok = MintOf(toATA, accountKeys, meta)
		}
		if !ok {
			continue
		}
		outer := accountKeys[ix.ProgramIDIndex].String()
		innerIdx := uint32(i)
		out = append(out, events.Transfer{
			OuterProgram: &outer,
			Program:      accountKeys[inner.ProgramIDIndex].String(),
			Authority:    authority.String(),
			Mint:         mint,
			Amount:       amount,
			InputATA:     fromATA.String(),
			OutputATA:    toATA.String(),
			Timestamp:    events.Timestamp{InnerIxIndex: &innerIdx},
		})
	}
	return out
}

// TokenLegOf decodes a single SPL Token/Token-2022 instruction (top-level or
// inner, top-level Ix shape is identical to solana.CompiledInstruction) into
// a transfer tuple. Shared by the AMM generic walker (internal/amm) so every
// finder classifies inner instructions the same way C3 does.
func TokenLegOf(ix solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) (from, to, auth solana.PublicKey, mint string, amount uint64, ok bool) {
	var f TokenFinder
	if int(ix.ProgramIDIndex) >= len(accountKeys) || !f.isTokenProgram(accountKeys[ix.ProgramIDIndex]) {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, "", 0, false
	}
	t, ok := f.decodeTopLevel(ix, accountKeys, meta)
	if !ok {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, "", 0, false
	}
	from = solana.MustPublicKeyFromBase58(t.InputATA)
	to = solana.MustPublicKeyFromBase58(t.OutputATA)
	auth = solana.MustPublicKeyFromBase58(t.Authority)
	return from, to, auth, t.Mint, t.Amount, true
}

func (f TokenFinder) decodeTopLevel(ix solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) (events.Transfer, bool) {
	amount, fromIdx, toIdx, authIdx, ok := f.DecodeLeg(ix.Data)
	if !ok || fromIdx >= len(ix.Accounts) || toIdx >= len(ix.Accounts) || authIdx >= len(ix.Accounts) {
		return events.Transfer{}, false
	}
	fi, ti, ai := int(ix.Accounts[fromIdx]), int(ix.Accounts[toIdx]), int(ix.Accounts[authIdx])
	if fi >= len(accountKeys) || ti >= len(accountKeys) || ai >= len(accountKeys) || fi == ti {
		return events.Transfer{}, false
	}
	from, to, auth := accountKeys[fi], accountKeys[ti], accountKeys[ai]
	mint, ok := MintOf(from, accountKeys, meta)
	if !ok {
		mint, ok = MintOf(to, accountKeys, meta)
	}
	if !ok {
		return events.Transfer{}, false
	}
	return events.Transfer{
		Program:   accountKeys[ix.ProgramIDIndex].String(),
		Authority: auth.String(),
		Mint:      mint,
		Amount:    amount,
		InputATA:  from.String(),
		OutputATA: to.String(),
	}, true
}
