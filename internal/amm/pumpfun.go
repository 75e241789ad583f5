package amm

import (
	"encoding/binary"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/events"
)

// pumpFunLogDiscriminant is the combined ix+event discriminant pump.fun's
// self-CPI trade log starts with; the log is pump.fun calling itself via
// CPI purely to emit an event, so it never shows up as a token transfer.
var pumpFunLogDiscriminant = []byte{0xe4, 0x45, 0xa5, 0x2e, 0x51, 0xcb, 0x9a, 0x1d, 0xbd, 0xdb, 0x7f, 0xd3, 0x4e, 0xe6, 0x61, 0xee}

const pumpFunLogLen = 266

var pumpFunShortLogWarnOnce sync.Once

// PumpFunFinder extracts swaps from pump.fun's bonding-curve buy/sell
// instructions, whose SOL/token legs can't be reconstructed from transfer
// scanning alone: the event log carries the authoritative amounts, net of
// the protocol and creator fees.
type PumpFunFinder struct{}

func pumpFunUserInOut(data []byte) (in, out int) {
	if len(data) > 0 && data[0] == 0x66 {
		return 6, 5 // buy: in = SOL, out = token
	}
	return 5, 6 // sell: in = token, out = SOL
}

func pumpFunSwapFromLog(outerProgram *string, amm, inputATA, outputATA solana.PublicKey, data []byte, innerIxIndex *uint32) (events.Swap, bool) {
	if len(data) != pumpFunLogLen {
		// A pump.fun program upgrade would change this layout and every
		// subsequent trade would silently misparse otherwise.
		pumpFunShortLogWarnOnce.Do(func() {
			logrus.WithField("len", len(data)).Warn("pumpfun: trade event log has unexpected length, skipping")
		})
		return events.Swap{}, false
	}
	mint := solana.PublicKeyFromBytes(data[16:48])
	solAmount := binary.LittleEndian.Uint64(data[48:56])
	tokenAmount := binary.LittleEndian.Uint64(data[56:64])
	isBuy := data[64] != 0
	fee := binary.LittleEndian.Uint64(data[177:185])
	creatorFee := binary.LittleEndian.Uint64(data[225:233])

	var inputMint, outputMint string
	var inputAmount, outputAmount uint64
	if isBuy {
		inputMint, outputMint = addresses.WrappedSOLMint.String(), mint.String()
		inputAmount, outputAmount = solAmount+fee+creatorFee, tokenAmount
	} else {
		inputMint, outputMint = mint.String(), addresses.WrappedSOLMint.String()
		inputAmount, outputAmount = tokenAmount, solAmount-fee-creatorFee
	}
	return events.Swap{
		OuterProgram: outerProgram,
		Program:      addresses.PumpFun.String(),
		AMM:          amm.String(),
		InputMint:    inputMint,
		OutputMint:   outputMint,
		InputAmount:  inputAmount,
		OutputAmount: outputAmount,
		InputATA:     inputATA.String(),
		OutputATA:    outputATA.String(),
		// todo: should try to locate the actual in/out transfer, the log
		// gives us amounts but not which inner ix index carried them
		Timestamp: events.Timestamp{InnerIxIndex: innerIxIndex},
	}, true
}

func (PumpFunFinder) FindSwaps(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Swap {
	if int(ix.ProgramIDIndex) < len(accountKeys) && accountKeys[ix.ProgramIDIndex].Equals(addresses.PumpFun) {
		for _, inner := range innerIxs {
			if bytesHasPrefix(inner.Data, pumpFunLogDiscriminant) {
				in, out := pumpFunUserInOut(ix.Data)
				if in >= len(ix.Accounts) || out >= len(ix.Accounts) || 3 >= len(ix.Accounts) {
					return nil
				}
				amm := accountKeys[ix.Accounts[3]]
				swap, ok := pumpFunSwapFromLog(nil, amm, accountKeys[ix.Accounts[in]], accountKeys[ix.Accounts[out]], inner.Data, nil)
				if !ok {
					return nil
				}
				return []events.Swap{swap}
			}
		}
	}

	var swaps []events.Swap
	nextLogical := 0
	for i, inner := range innerIxs {
		if i < nextLogical {
			continue
		}
		if int(inner.ProgramIDIndex) >= len(accountKeys) || !accountKeys[inner.ProgramIDIndex].Equals(addresses.PumpFun) {
			continue
		}
		if len(inner.Data) < 24 {
			continue
		}
		if !bytesHasPrefix(inner.Data, []byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea}) &&
			!bytesHasPrefix(inner.Data, []byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad}) {
			continue
		}
		in, out := pumpFunUserInOut(inner.Data)
		if in >= len(inner.Accounts) || out >= len(inner.Accounts) || 3 >= len(inner.Accounts) {
			continue
		}
		inputATA, outputATA := accountKeys[inner.Accounts[in]], accountKeys[inner.Accounts[out]]

		outerProgram := accountKeys[ix.ProgramIDIndex].String()
		for j := i + 1; j < len(innerIxs); j++ {
			next := innerIxs[j]
			if int(next.ProgramIDIndex) >= len(accountKeys) || !accountKeys[next.ProgramIDIndex].Equals(addresses.PumpFun) {
				continue
			}
			if !bytesHasPrefix(next.Data, pumpFunLogDiscriminant) {
				continue
			}
			if 3 >= len(inner.Accounts) {
				break
			}
			amm := accountKeys[inner.Accounts[3]]
			iIdx := uint32(i)
			swap, ok := pumpFunSwapFromLog(&outerProgram, amm, inputATA, outputATA, next.Data, &iIdx)
			if ok {
				swaps = append(swaps, swap)
			}
			nextLogical = j + 1
			break
		}
	}
	return swaps
}

func bytesHasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}
