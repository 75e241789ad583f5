// Package discoverer surfaces instructions that look like an AMM swap but
// come from a program nothing in internal/amm recognizes yet, so an
// operator can triage new pools without waiting on a code change.
package discoverer

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/events"
	"github.com/franco-bianco/sandwichgo/internal/transfer"
)

// blacklistEntry names a (program, discriminant-at-offset) combination that
// must never be reported as an unknown AMM even though it moves two or more
// token legs: NFT marketplaces, fee-claim instructions and LP-migration
// instructions all shuffle multiple transfers without being a swap.
type blacklistEntry struct {
	program      solana.PublicKey
	discriminant []byte
	offset       int
}

var blacklist = []blacklistEntry{
	{solana.MustPublicKeyFromBase58("DDZDcYdQFEMwcu2Mwo75yGFjJ1mUQyyXLWzhZLEVFcei"), nil, 0},
	{solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"), nil, 0},
	{addresses.Meteora, []byte{0xa9, 0x20, 0x4f, 0x89, 0x88, 0xe8, 0x46, 0x89}, 0},
	{addresses.MeteoraDBC, []byte{0x9c, 0xa9, 0xe6, 0x67, 0x35, 0xe4, 0x50, 0x40}, 0},
	{solana.MustPublicKeyFromBase58("mmm3XBJg5gk8XJxEKBvdgptZz6SgK4tXvn36sodowMc"), nil, 0},
	{solana.MustPublicKeyFromBase58("M2mx93ekt1fmXSVkTrUL9xVFHkmME8HTUi5Cyc5aF7K"), nil, 0},
	{solana.MustPublicKeyFromBase58("APR1MEny25pKupwn72oVqMH4qpDouArsX8zX4VwwfoXD"), nil, 0},
	{solana.MustPublicKeyFromBase58("SAGE2HAwep459SNq61LHvjxPk4pLPEJLoMETef7f7EE"), nil, 0},
	{solana.MustPublicKeyFromBase58("Cargo2VNTPPTi9c1vq1Jw5d3BWUNr18MjRtSupAghKEk"), nil, 0},
}

func blacklisted(program solana.PublicKey, data []byte) bool {
	for _, b := range blacklist {
		if !b.program.Equals(program) {
			continue
		}
		if len(b.discriminant) == 0 {
			return true
		}
		if len(data) < b.offset+len(b.discriminant) {
			continue
		}
		match := true
		for i, d := range b.discriminant {
			if data[b.offset+i] != d {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Discoverer implements amm.Finder without knowing any program's account
// layout: it counts how many distinct mints and authorities move through an
// instruction's inner transfers and, past a threshold, reports a degenerate
// Swap naming only the outer program so the pool and mints can be filled in
// by hand later.
type Discoverer struct{}

// FindSwaps reports at most one degenerate swap for ix, tagged with its
// program id, when ix's inner instructions look like a swap nobody
// recognizes: at least two transfers (SPL token or native SOL), across at
// least two distinct authorities and two distinct mints. Known aggregator
// wrappers are excluded since their CPI'd legs are already covered by a
// dedicated finder and would otherwise double-report as "unknown".
func (Discoverer) FindSwaps(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Swap {
	if int(ix.ProgramIDIndex) >= len(accountKeys) {
		return nil
	}
	program := accountKeys[ix.ProgramIDIndex]
	if addresses.IsKnownAggregator(program) {
		return nil
	}
	if blacklisted(program, ix.Data) {
		return nil
	}

	transferCount := 0
	authorities := map[string]struct{}{}
	mints := map[string]struct{}{}
	for _, inner := range innerIxs {
		from, to, auth, mint, _, ok := transfer.TokenLegOf(inner, accountKeys, meta)
		if !ok {
			from, to, auth, mint, _, ok = transfer.SystemLegOf(inner, accountKeys)
		}
		if !ok || from.Equals(to) {
			continue
		}
		transferCount++
		authorities[auth.String()] = struct{}{}
		mints[mint] = struct{}{}
	}

	if transferCount < 2 || len(authorities) < 2 || len(mints) < 2 {
		return nil
	}
	return []events.Swap{{Program: program.String()}}
}
