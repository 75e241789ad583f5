package amm

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/events"
)

// sugarLogDiscriminant matches pumpFunLogDiscriminant byte for byte; Sugar
// is a pump.fun fork that kept the same event-log shape, just trimmed to
// 137 bytes (it never carries the fee/creator-fee fields pump.fun logs).
var sugarLogDiscriminant = pumpFunLogDiscriminant

const sugarLogLen = 137

var (
	sugarBuyExactIn   = []byte{0xfa, 0xea, 0x0d, 0x7b, 0xd5, 0x9c, 0x13, 0xec}
	sugarBuyExactOut  = []byte{0x18, 0xd3, 0x74, 0x28, 0x69, 0x03, 0x99, 0x38}
	sugarBuyMaxOut    = []byte{0x60, 0xb1, 0xcb, 0x75, 0xb7, 0x41, 0xc4, 0xb1}
	sugarSellExactIn  = []byte{0x95, 0x27, 0xde, 0x9b, 0xd3, 0x7c, 0x98, 0x1a}
	sugarSellExactOut = []byte{0x5f, 0xc8, 0x47, 0x22, 0x08, 0x09, 0x0b, 0xa6}
)

// SugarFinder mirrors PumpFunFinder's event-log approach for the Sugar
// bonding-curve program, with Sugar's own 0.9% buy-side fee formula (no
// separate creator fee, unlike pump.fun).
type SugarFinder struct{}

func sugarIsSwapDiscriminant(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	d := data[:8]
	return bytesHasPrefix(d, sugarBuyExactIn) || bytesHasPrefix(d, sugarBuyExactOut) || bytesHasPrefix(d, sugarBuyMaxOut) ||
		bytesHasPrefix(d, sugarSellExactIn) || bytesHasPrefix(d, sugarSellExactOut)
}

func sugarUserInOut(data []byte) (in, out int, ok bool) {
	if len(data) < 8 {
		return 0, 0, false
	}
	switch d := data[:8]; {
	case bytesHasPrefix(d, sugarBuyExactIn), bytesHasPrefix(d, sugarBuyExactOut), bytesHasPrefix(d, sugarBuyMaxOut):
		return 6, 5, true // in sol, out token
	case bytesHasPrefix(d, sugarSellExactIn), bytesHasPrefix(d, sugarSellExactOut):
		return 5, 7, true // in token, out sol
	default:
		return 0, 0, false
	}
}

func sugarSwapFromLog(outerProgram *string, amm, inputATA, outputATA solana.PublicKey, data []byte, innerIxIndex *uint32) (events.Swap, bool) {
	if len(data) < sugarLogLen {
		return events.Swap{}, false
	}
	mint := solana.PublicKeyFromBytes(data[16:48])
	solAmount := binary.LittleEndian.Uint64(data[48:56])
	tokenAmount := binary.LittleEndian.Uint64(data[56:64])
	isBuy := data[64] != 0
	authority := solana.PublicKeyFromBytes(data[65:97])

	var fee uint64
	if isBuy {
		fee = solAmount * 9 / 991 // 0.9% fee per Sugar's documented rate
	}
	var inputMint, outputMint string
	var inputAmount, outputAmount uint64
	if isBuy {
		inputMint, outputMint = addresses.WrappedSOLMint.String(), mint.String()
		inputAmount, outputAmount = solAmount+fee, tokenAmount
	} else {
		inputMint, outputMint = mint.String(), addresses.WrappedSOLMint.String()
		inputAmount, outputAmount = tokenAmount, solAmount-fee
	}
	return events.Swap{
		OuterProgram: outerProgram,
		Program:      addresses.Sugar.String(),
		Authority:    authority.String(),
		AMM:          amm.String(),
		InputMint:    inputMint,
		OutputMint:   outputMint,
		InputAmount:  inputAmount,
		OutputAmount: outputAmount,
		InputATA:     inputATA.String(),
		OutputATA:    outputATA.String(),
		Timestamp:    events.Timestamp{InnerIxIndex: innerIxIndex},
	}, true
}

func (SugarFinder) FindSwaps(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Swap {
	if int(ix.ProgramIDIndex) < len(accountKeys) && accountKeys[ix.ProgramIDIndex].Equals(addresses.Sugar) {
		for _, inner := range innerIxs {
			if len(inner.Data) == sugarLogLen && bytesHasPrefix(inner.Data, sugarLogDiscriminant) {
				in, out, ok := sugarUserInOut(ix.Data)
				if !ok || in >= len(ix.Accounts) || out >= len(ix.Accounts) || 2 >= len(ix.Accounts) {
					return nil
				}
				amm := accountKeys[ix.Accounts[2]]
				swap, ok := sugarSwapFromLog(nil, amm, accountKeys[ix.Accounts[in]], accountKeys[ix.Accounts[out]], inner.Data, nil)
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
		if int(inner.ProgramIDIndex) >= len(accountKeys) || !accountKeys[inner.ProgramIDIndex].Equals(addresses.Sugar) {
			continue
		}
		if len(inner.Data) < 24 || !sugarIsSwapDiscriminant(inner.Data) {
			continue
		}
		in, out, ok := sugarUserInOut(inner.Data)
		if !ok || in >= len(inner.Accounts) || out >= len(inner.Accounts) || 2 >= len(inner.Accounts) {
			continue
		}
		inputATA, outputATA := accountKeys[inner.Accounts[in]], accountKeys[inner.Accounts[out]]

		outerProgram := accountKeys[ix.ProgramIDIndex].String()
		for j := i + 1; j < len(innerIxs); j++ {
			next := innerIxs[j]
			if int(next.ProgramIDIndex) >= len(accountKeys) || !accountKeys[next.ProgramIDIndex].Equals(addresses.Sugar) {
				continue
			}
			if len(next.Data) != sugarLogLen || !bytesHasPrefix(next.Data, sugarLogDiscriminant) {
				continue
			}
			amm := accountKeys[inner.Accounts[2]]
			iIdx := uint32(i)
			swap, ok := sugarSwapFromLog(&outerProgram, amm, inputATA, outputATA, next.Data, &iIdx)
			if ok {
				swaps = append(swaps, swap)
			}
			nextLogical = j + 1
			break
		}
	}
	return swaps
}
