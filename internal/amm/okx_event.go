package amm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/events"
)

var (
	okxAggregateLogPattern = regexp.MustCompile(`after_source_balance:\s*\d+.*?source_token_change:\s*(\d+),\s*destination_token_change:\s*(\d+)`)
	okxSwapDiscriminants   = [][]byte{
		{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}, // Swap
		{0x41, 0x4b, 0x3f, 0x4c, 0xeb, 0x5b, 0x5b, 0x88}, // Swap2
		{0xad, 0x83, 0x4e, 0x26, 0x96, 0xa5, 0x7b, 0x0f}, // CommissionSPLSwap2
		{0x13, 0x2c, 0x82, 0x94, 0x48, 0x38, 0x2c, 0xee}, // Swap3
	}
)

// OKXEventFinder recovers the authoritative net in/out amounts for an OKX
// DEX Aggregation Router trade from its own program logs rather than
// replaying the router's internal CPI tree: OKX logs
// source_token_change/destination_token_change once per trade, which nets
// out every fee and intermediate hop the router takes internally.
type OKXEventFinder struct{}

func (OKXEventFinder) isSwapDiscriminant(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	for _, d := range okxSwapDiscriminants {
		if bytesHasPrefix(data, d) {
			return true
		}
	}
	return false
}

func (OKXEventFinder) parseAggregateFromLogs(logMessages []string, srcMint, dstMint solana.PublicKey) (events.Swap, bool) {
	var srcDelta, dstDelta uint64
	found := false
	for _, line := range logMessages {
		if !strings.Contains(line, "Program log:") {
			continue
		}
		if !strings.Contains(line, "source_token_change") && !strings.Contains(line, "after_source_balance") {
			continue
		}
		if m := okxAggregateLogPattern.FindStringSubmatch(line); len(m) == 3 {
			if v, err := strconv.ParseUint(m[1], 10, 64); err == nil {
				srcDelta = v
			}
			if v, err := strconv.ParseUint(m[2], 10, 64); err == nil {
				dstDelta = v
				found = true
			}
		}
	}
	if !found {
		return events.Swap{}, false
	}
	return events.Swap{
		Program:      addresses.OKXRouter.String(),
		InputMint:    srcMint.String(),
		OutputMint:   dstMint.String(),
		InputAmount:  srcDelta,
		OutputAmount: dstDelta,
	}, true
}

func (f OKXEventFinder) FindSwaps(ix solana.CompiledInstruction, innerIxs []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []events.Swap {
	if int(ix.ProgramIDIndex) >= len(accountKeys) || !accountKeys[ix.ProgramIDIndex].Equals(addresses.OKXRouter) {
		return nil
	}
	if !f.isSwapDiscriminant(ix.Data) {
		return nil
	}
	if len(ix.Accounts) < 5 {
		return nil
	}
	srcIdx, dstIdx := ix.Accounts[3], ix.Accounts[4]
	if int(srcIdx) >= len(accountKeys) || int(dstIdx) >= len(accountKeys) {
		return nil
	}
	srcMint, dstMint := accountKeys[srcIdx], accountKeys[dstIdx]
	if meta == nil {
		return nil
	}
	swap, ok := f.parseAggregateFromLogs(meta.LogMessages, srcMint, dstMint)
	if !ok {
		return nil
	}
	return []events.Swap{swap}
}
