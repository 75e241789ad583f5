package amm

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/events"
	"github.com/franco-bianco/sandwichgo/internal/transfer"
)

var jupOrderEngineFillDiscriminant = []byte{0xa8, 0x60, 0xb7, 0xa3, 0x5c, 0x0a, 0x28, 0xa0}

const jupOrderEngineMinDataLen = 32

// OrderEngineFinder decodes Jupiter's order-engine "fill" instruction.
// Orders are created ad hoc with no pool account at all, so there is no
// AMM address to read off the instruction; one is synthesized by XORing
// the two traded mints together. SOL legs are also special: the program
// id itself shows up in the taker/maker ATA slots when one side of the
// trade is native SOL, and must be substituted with the taker/maker
// wallet before leg matching.
type OrderEngineFinder struct{}

func jupOrderEngineAMM(inputMint, outputMint solana.PublicKey) solana.PublicKey {
	var out [32]byte
	a, b := inputMint.Bytes(), outputMint.Bytes()
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return solana.PublicKeyFromBytes(out[:])
}

// jupOrderEngineKeys resolves (userIn, userOut, poolIn, poolOut) for one
// fill instruction, substituting the order-engine program id with the
// taker/maker wallet wherever it appears as a placeholder ATA for a
// native SOL leg.
func jupOrderEngineKeys(accounts []uint16, accountKeys []solana.PublicKey) (userIn, userOut, poolIn, poolOut solana.PublicKey, ok bool) {
	need := []int{0, 1, 2, 3, 4, 5}
	for _, idx := range need {
		if idx >= len(accounts) || int(accounts[idx]) >= len(accountKeys) {
			return
		}
	}
	taker := accountKeys[accounts[0]]
	maker := accountKeys[accounts[1]]
	keys := [4]solana.PublicKey{
		accountKeys[accounts[2]], // taker in
		accountKeys[accounts[4]], // taker out
		accountKeys[accounts[5]], // maker in
		accountKeys[accounts[3]], // maker out
	}
	if keys[0].Equals(addresses.JupOrderEng) {
		keys[0] = taker
	}
	if keys[1].Equals(addresses.JupOrderEng) {
		keys[1] = taker
		keys[2] = maker
	}
	for i := range keys {
		if keys[i].Equals(addresses.JupOrderEng) {
			if i < 2 {
				keys[i] = taker
			} else {
				keys[i] = maker
			}
		}
	}
	return keys[0], keys[1], keys[2], keys[3], true
}

func jupOrderEngineMints(accounts []uint16) (inIdx, outIdx int, ok bool) {
	if len(accounts) <= 8 {
		return 0, 0, false
	}
	return 6, 8, true
}

func (OrderEngineFinder) resolve(ix solana.CompiledInstruction, accountKeys []solana.PublicKey) (ammAddr, userIn, userOut, poolIn, poolOut solana.PublicKey, ok bool) {
	if !matches(ix.Data, Variant{Discriminant: jupOrderEngineFillDiscriminant, MinDataLen: jupOrderEngineMinDataLen}) {
		return
	}
	inIdx, outIdx, ok := jupOrderEngineMints(ix.Accounts)
	if !ok || int(ix.Accounts[inIdx]) >= len(accountKeys) || int(ix.Accounts[outIdx]) >= len(accountKeys) {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, false
	}
	ammAddr = jupOrderEngineAMM(accountKeys[ix.Accounts[inIdx]], accountKeys[ix.Accounts[outIdx]])
	userIn, userOut, poolIn, poolOut, ok = jupOrderEngineKeys(ix.Accounts, accountKeys)
	return
}

func (f OrderEngineFinder) FindSwaps(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Swap {
	if meta == nil {
		return nil
	}
	isOuter := int(ix.ProgramIDIndex) < len(accountKeys) && accountKeys[ix.ProgramIDIndex].Equals(addresses.JupOrderEng)

	if isOuter {
		ammAddr, userIn, userOut, poolIn, poolOut, ok := f.resolve(ix, accountKeys)
		if !ok {
			return nil
		}
		var inputMint, outputMint string
		var inputAmount, outputAmount uint64
		var inputIdx, outputIdx *uint32
		var authority solana.PublicKey
		for i := range innerIxs {
			from, to, auth, mint, amount, ok := transfer.TokenLegOf(innerIxs[i], accountKeys, meta)
			if !ok {
				continue
			}
			idx := uint32(i)
			switch {
			case from.Equals(userIn) && to.Equals(poolOut):
				inputMint, inputAmount, authority = mint, amount, auth
				inputIdx = &idx
			case from.Equals(poolIn) && to.Equals(userOut):
				outputMint, outputAmount = mint, amount
				outputIdx = &idx
			}
		}
		return []events.Swap{{
			Program:            addresses.JupOrderEng.String(),
			Authority:          authority.String(),
			AMM:                ammAddr.String(),
			InputMint:          inputMint,
			OutputMint:         outputMint,
			InputAmount:        inputAmount,
			OutputAmount:       outputAmount,
			InputATA:           userIn.String(),
			OutputATA:          userOut.String(),
			InputInnerIxIndex:  inputIdx,
			OutputInnerIxIndex: outputIdx,
		}}
	}

	var swaps []events.Swap
	nextLogical := 0
	for i, inner := range innerIxs {
		if i < nextLogical {
			continue
		}
		if int(inner.ProgramIDIndex) >= len(accountKeys) || !accountKeys[inner.ProgramIDIndex].Equals(addresses.JupOrderEng) {
			continue
		}
		ammAddr, userIn, userOut, poolIn, poolOut, ok := f.resolve(inner, accountKeys)
		if !ok {
			continue
		}
		outerProgram := accountKeys[ix.ProgramIDIndex].String()

		var inputMint, outputMint string
		var inputAmount, outputAmount uint64
		var inputIdx, outputIdx *uint32
		var authority solana.PublicKey
		found := false
		for j := i + 1; j < len(innerIxs); j++ {
			from, to, auth, mint, amount, ok := transfer.TokenLegOf(innerIxs[j], accountKeys, meta)
			if !ok {
				continue
			}
			jdx := uint32(j)
			switch {
			case from.Equals(userIn) && to.Equals(poolOut):
				inputMint, inputAmount, authority = mint, amount, auth
				inputIdx = &jdx
			case from.Equals(poolIn) && to.Equals(userOut):
				outputMint, outputAmount = mint, amount
				outputIdx = &jdx
			}
			if inputIdx != nil && outputIdx != nil {
				iIdx := uint32(i)
				swaps = append(swaps, events.Swap{
					OuterProgram:       &outerProgram,
					Program:            addresses.JupOrderEng.String(),
					Authority:          authority.String(),
					AMM:                ammAddr.String(),
					InputMint:          inputMint,
					OutputMint:         outputMint,
					InputAmount:        inputAmount,
					OutputAmount:       outputAmount,
					InputATA:           userIn.String(),
					OutputATA:          userOut.String(),
					InputInnerIxIndex:  inputIdx,
					OutputInnerIxIndex: outputIdx,
					Timestamp:          events.Timestamp{InnerIxIndex: &iIdx},
				})
				nextLogical = j + 1
				found = true
				break
			}
		}
		if !found {
			nextLogical = i + 1
		}
	}
	return swaps
}
