// Package amm is the per-AMM swap decoder: a generic,
// data-driven walker parametrized by each AMM's discriminant bytes and
// account-index conventions, plus a handful of bespoke extractors for AMMs
// whose wire format doesn't fit the generic shape (pump.fun-style event
// logs, Whirlpool's two-hop instruction, the synthetic order-engine AMM
// address).
package amm

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/sandwichgo/internal/events"
	"github.com/franco-bianco/sandwichgo/internal/transfer"
)

// Finder emits zero or more swaps for one top-level instruction of a
// transaction, given that instruction's own inner-instruction set.
type Finder interface {
	FindSwaps(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Swap
}

// Variant is one instruction-data shape a GenericFinder recognizes as an
// AMM call: discriminant bytes at a fixed offset, and the minimum total
// instruction-data length required to safely read past it.
type Variant struct {
	Discriminant []byte
	Offset       int
	MinDataLen   int
}

// unspecifiedPool marks AccountMap.PoolIn/PoolOut as "not constrained by
// this AMM": an unspecified pool side matches any counterpart ATA.
const unspecifiedPool = 1 << 30

// AccountMap names the account-index roles an AMM call exposes. Indices are relative to the AMM instruction's own Accounts list; a
// negative index counts back from the end (Raydium V4 puts its user ATAs
// at len-3/len-2, since account count varies by version).
type AccountMap struct {
	AMM             int
	UserIn, UserOut int
	PoolIn          int
	PoolOut         int
}

func resolveIdx(idx, n int) int {
	if idx >= 0 {
		return idx
	}
	return n + idx
}

// GenericFinder implements the shared per-AMM walk: locate
// the AMM call (top-level, or via CPI inside another instruction's inner
// list), resolve its account roles, then scan subsequent inner token
// transfers for the two legs.
type GenericFinder struct {
	Program   solana.PublicKey
	Variants  []Variant
	IxsToSkip int
	Blacklist []int // account indices, relative to the AMM ix's own accounts, never matched as legs
	// Resolve computes this call's account-role map from its instruction
	// data (direction flags etc). Returning ok=false drops the call.
	Resolve func(data []byte) (AccountMap, bool)
}

func (g GenericFinder) FindSwaps(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Swap {
	if meta == nil || len(innerIxs) <= g.IxsToSkip {
		return nil
	}
	isOuter := int(ix.ProgramIDIndex) < len(accountKeys) && accountKeys[ix.ProgramIDIndex].Equals(g.Program)
	var out []events.Swap
	for _, v := range g.Variants {
		if isOuter {
			out = append(out, g.findOuter(v, ix, innerIxs, accountKeys, meta)...)
		} else {
			out = append(out, g.findInner(v, ix, innerIxs, accountKeys, meta)...)
		}
	}
	return out
}

func matches(data []byte, v Variant) bool {
	if len(data) < v.MinDataLen || len(data) < v.Offset+len(v.Discriminant) {
		return false
	}
	return bytes.Equal(data[v.Offset:v.Offset+len(v.Discriminant)], v.Discriminant)
}

func (g GenericFinder) blacklistSet(accounts []uint16, accountKeys []solana.PublicKey) map[solana.PublicKey]bool {
	if len(g.Blacklist) == 0 {
		return nil
	}
	n := len(accounts)
	bl := make(map[solana.PublicKey]bool, len(g.Blacklist))
	for _, bi := range g.Blacklist {
		idx := resolveIdx(bi, n)
		if idx >= 0 && idx < n && int(accounts[idx]) < len(accountKeys) {
			bl[accountKeys[accounts[idx]]] = true
		}
	}
	return bl
}

// resolveATAs maps am (indices into the AMM call's own account list) to
// concrete pubkeys. poolIn/poolOut carry ok=false when unspecified.
func resolveATAs(am AccountMap, accounts []uint16, accountKeys []solana.PublicKey) (amm, userIn, userOut solana.PublicKey, poolIn, poolOut solana.PublicKey, poolInOK, poolOutOK, ok bool) {
	n := len(accounts)
	ai, ii, oi := resolveIdx(am.AMM, n), resolveIdx(am.UserIn, n), resolveIdx(am.UserOut, n)
	if ai < 0 || ai >= n || ii < 0 || ii >= n || oi < 0 || oi >= n {
		return
	}
	if int(accounts[ai]) >= len(accountKeys) || int(accounts[ii]) >= len(accountKeys) || int(accounts[oi]) >= len(accountKeys) {
		return
	}
	amm = accountKeys[accounts[ai]]
	userIn = accountKeys[accounts[ii]]
	userOut = accountKeys[accounts[oi]]
	if am.PoolIn != unspecifiedPool {
		pi := resolveIdx(am.PoolIn, n)
		if pi >= 0 && pi < n && int(accounts[pi]) < len(accountKeys) {
			poolIn = accountKeys[accounts[pi]]
			poolInOK = true
		}
	}
	if am.PoolOut != unspecifiedPool {
		po := resolveIdx(am.PoolOut, n)
		if po >= 0 && po < n && int(accounts[po]) < len(accountKeys) {
			poolOut = accountKeys[accounts[po]]
			poolOutOK = true
		}
	}
	ok = true
	return
}

func (g GenericFinder) findOuter(v Variant, ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Swap {
	if !matches(ix.Data, v) {
		return nil
	}
	am, ok := g.Resolve(ix.Data)
	if !ok {
		return nil
	}
	ammAddr, userIn, userOut, poolIn, poolOut, poolInOK, poolOutOK, ok := resolveATAs(am, ix.Accounts, accountKeys)
	if !ok {
		return nil
	}
	blacklist := g.blacklistSet(ix.Accounts, accountKeys)

	var inputMint, outputMint string
	var inputAmount, outputAmount uint64
	var inputIdx, outputIdx *uint32
	var authority solana.PublicKey

	for i := g.IxsToSkip; i < len(innerIxs); i++ {
		from, to, auth, mint, amount, ok := transfer.TokenLegOf(innerIxs[i], accountKeys, meta)
		if !ok || blacklist[from] || blacklist[to] {
			continue
		}
		idx := uint32(i)
		switch {
		case from.Equals(userIn) && (!poolOutOK || to.Equals(poolOut)):
			inputMint, inputAmount, authority = mint, amount, auth
			inputIdx = &idx
		case to.Equals(userOut) && (!poolInOK || from.Equals(poolIn)):
			outputMint, outputAmount = mint, amount
			outputIdx = &idx
		}
	}

	return []events.Swap{{
		Program:            g.Program.String(),
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

func (g GenericFinder) findInner(v Variant, ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Swap {
	var swaps []events.Swap
	nextLogical := 0
	for i, inner := range innerIxs {
		if i < nextLogical {
			continue
		}
		if int(inner.ProgramIDIndex) >= len(accountKeys) || !accountKeys[inner.ProgramIDIndex].Equals(g.Program) {
			continue
		}
		if !matches(inner.Data, v) {
			continue
		}
		am, ok := g.Resolve(inner.Data)
		if !ok {
			continue
		}
		ammAddr, userIn, userOut, poolIn, poolOut, poolInOK, poolOutOK, ok := resolveATAs(am, inner.Accounts, accountKeys)
		if !ok {
			continue
		}
		outerProgram := accountKeys[ix.ProgramIDIndex].String()
		blacklist := g.blacklistSet(inner.Accounts, accountKeys)

		var inputMint, outputMint string
		var inputAmount, outputAmount uint64
		var inputIdx, outputIdx *uint32
		var authority solana.PublicKey
		found := false

		for j := i + 1 + g.IxsToSkip; j < len(innerIxs); j++ {
			next := innerIxs[j]
			from, to, auth, mint, amount, ok := transfer.TokenLegOf(next, accountKeys, meta)
			if !ok || blacklist[from] || blacklist[to] {
				continue
			}
			jdx := uint32(j)
			switch {
			case from.Equals(userIn) && (!poolOutOK || to.Equals(poolOut)):
				inputMint, inputAmount, authority = mint, amount, auth
				inputIdx = &jdx
			case to.Equals(userOut) && (!poolInOK || from.Equals(poolIn)):
				outputMint, outputAmount = mint, amount
				outputIdx = &jdx
			}
			if inputIdx != nil && outputIdx != nil {
				iIdx := uint32(i)
				swaps = append(swaps, events.Swap{
					OuterProgram:       &outerProgram,
					Program:            g.Program.String(),
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
			iIdx := uint32(i)
			swaps = append(swaps, events.Swap{
				OuterProgram:       &outerProgram,
				Program:            g.Program.String(),
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
		}
	}
	return swaps
}
