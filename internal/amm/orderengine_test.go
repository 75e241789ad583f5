package amm

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
)

// buildOrderEngineFill assembles a top-level fill with its two transfer
// legs. accountKeys: [0]=order-engine program, [1]=taker, [2]=maker,
// [3]=taker input ATA, [4]=maker output ATA, [5]=taker output ATA,
// [6]=maker input ATA, [7]=input mint, [8]=output mint, [9]=token program.
// The fill's own account list maps those into the program's slots: taker,
// maker, taker-in, maker-out, taker-out, maker-in, input mint, _, output
// mint.
func buildOrderEngineFill(t *testing.T) (solana.CompiledInstruction, []solana.CompiledInstruction, []solana.PublicKey, *rpc.TransactionMeta) {
	t.Helper()
	keys := make([]solana.PublicKey, 10)
	for i := range keys {
		keys[i] = newKey(t, byte(i+1))
	}
	keys[0] = addresses.JupOrderEng
	keys[9] = addresses.TokenProgram

	data := make([]byte, jupOrderEngineMinDataLen)
	copy(data, jupOrderEngineFillDiscriminant)
	ix := solana.CompiledInstruction{
		ProgramIDIndex: 0,
		Accounts:       []uint16{1, 2, 3, 4, 5, 6, 7, 0, 8},
		Data:           data,
	}

	// Input leg: taker's input ATA feeds the maker's receiving ATA.
	legIn := solana.CompiledInstruction{
		ProgramIDIndex: 9,
		Accounts:       []uint16{3, 4, 1},
		Data:           tokenTransferData(100),
	}
	// Output leg: the maker's input ATA pays out to the taker's output ATA.
	legOut := solana.CompiledInstruction{
		ProgramIDIndex: 9,
		Accounts:       []uint16{6, 5, 2},
		Data:           tokenTransferData(200),
	}

	meta := &rpc.TransactionMeta{
		PreTokenBalances: []rpc.TokenBalance{
			{AccountIndex: 3, Mint: keys[7]},
			{AccountIndex: 5, Mint: keys[8]},
		},
	}
	return ix, []solana.CompiledInstruction{legIn, legOut}, keys, meta
}

func TestOrderEngineOuterFill(t *testing.T) {
	ix, inner, keys, meta := buildOrderEngineFill(t)

	swaps := OrderEngineFinder{}.FindSwaps(ix, inner, keys, meta)
	require.Len(t, swaps, 1)

	s := swaps[0]
	assert.Equal(t, keys[7].String(), s.InputMint)
	assert.Equal(t, keys[8].String(), s.OutputMint)
	assert.Equal(t, uint64(100), s.InputAmount)
	assert.Equal(t, uint64(200), s.OutputAmount)
	assert.Equal(t, keys[3].String(), s.InputATA)
	assert.Equal(t, keys[5].String(), s.OutputATA)
	assert.Equal(t, keys[1].String(), s.Authority)
	assert.NotEmpty(t, s.InputMint)
	assert.NotEmpty(t, s.OutputMint)

	// The synthetic pool identity is direction-agnostic: XOR of the two
	// mints, so a reverse-direction fill lands in the same bucket.
	assert.Equal(t, jupOrderEngineAMM(keys[7], keys[8]).String(), s.AMM)
	assert.Equal(t, jupOrderEngineAMM(keys[8], keys[7]).String(), s.AMM)
}
