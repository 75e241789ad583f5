package amm

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
)

func tokenTransferData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = 3 // Transfer
	binary.LittleEndian.PutUint64(data[1:9], amount)
	return data
}

func newKey(t *testing.T, seed byte) solana.PublicKey {
	t.Helper()
	var b [32]byte
	b[0] = seed
	return solana.PublicKeyFromBytes(b[:])
}

// buildRaydiumV4Tx assembles a minimal transaction shape for one AMM call and its
// two transfer legs: accountKeys[0]=program, [1]=amm, [2]=userIn,
// [3]=userOut, [4]/[5]=unused accounts in the amm ix, [6]=token program,
// [7]=poolIn counterpart, [8]=poolOut counterpart, [9]/[10]=authorities,
// [11]=mintA, [12]=mintB.
func buildRaydiumV4Tx(t *testing.T) (solana.CompiledInstruction, []solana.PublicKey, *rpc.TransactionMeta, []solana.CompiledInstruction) {
	t.Helper()
	keys := make([]solana.PublicKey, 13)
	for i := range keys {
		keys[i] = newKey(t, byte(i+1))
	}
	keys[0] = addresses.RaydiumV4
	keys[6] = addresses.TokenProgram

	ixData := make([]byte, 17)
	ixData[0] = 0x09
	ix := solana.CompiledInstruction{
		ProgramIDIndex: 0,
		Accounts:       []uint16{4, 1, 2, 3, 5},
		Data:           ixData,
	}

	transfer1 := solana.CompiledInstruction{
		ProgramIDIndex: 6,
		Accounts:       []uint16{2, 7, 9},
		Data:           tokenTransferData(100),
	}
	transfer2 := solana.CompiledInstruction{
		ProgramIDIndex: 6,
		Accounts:       []uint16{8, 3, 10},
		Data:           tokenTransferData(200),
	}

	meta := &rpc.TransactionMeta{
		InnerInstructions: []rpc.InnerInstruction{
			{Index: 0, Instructions: []rpc.CompiledInstruction{
				{ProgramIDIndex: transfer1.ProgramIDIndex, Accounts: transfer1.Accounts, Data: transfer1.Data},
				{ProgramIDIndex: transfer2.ProgramIDIndex, Accounts: transfer2.Accounts, Data: transfer2.Data},
			}},
		},
		PreTokenBalances: []rpc.TokenBalance{
			{AccountIndex: 2, Mint: keys[11]},
			{AccountIndex: 3, Mint: keys[12]},
		},
	}
	return ix, keys, meta, []solana.CompiledInstruction{transfer1, transfer2}
}

func raydiumV4Finder() GenericFinder {
	return GenericFinder{
		Program: addresses.RaydiumV4,
		Variants: []Variant{
			{Discriminant: []byte{0x09}, MinDataLen: 17},
		},
		Resolve: fixed(AccountMap{AMM: 1, UserIn: -3, UserOut: -2, PoolIn: unspecifiedPool, PoolOut: unspecifiedPool}),
	}
}

func TestGenericFinderOuterCall(t *testing.T) {
	ix, keys, meta, inner := buildRaydiumV4Tx(t)
	f := raydiumV4Finder()

	swaps := f.FindSwaps(ix, inner, keys, meta)
	require.Len(t, swaps, 1)

	s := swaps[0]
	assert.Equal(t, keys[1].String(), s.AMM)
	assert.Equal(t, keys[2].String(), s.InputATA)
	assert.Equal(t, keys[3].String(), s.OutputATA)
	assert.Equal(t, keys[11].String(), s.InputMint)
	assert.Equal(t, keys[12].String(), s.OutputMint)
	assert.Equal(t, uint64(100), s.InputAmount)
	assert.Equal(t, uint64(200), s.OutputAmount)
	assert.Equal(t, keys[9].String(), s.Authority)
	assert.Nil(t, s.OuterProgram, "top-level call must not carry an outer wrapper")
}

func TestGenericFinderNoMatchWrongProgram(t *testing.T) {
	ix, keys, meta, inner := buildRaydiumV4Tx(t)
	keys[0] = addresses.RaydiumV5 // outer ix no longer targets this finder's program
	f := raydiumV4Finder()

	swaps := f.FindSwaps(ix, inner, keys, meta)
	assert.Empty(t, swaps, "mismatched program id must not run the outer branch")
}

func TestGenericFinderCPICall(t *testing.T) {
	// The AMM call itself becomes an inner instruction of some wrapper
	// program, exercising the findInner cursor-advance path.
	ix, keys, meta, innerTransfers := buildRaydiumV4Tx(t)
	wrapperProgram := addresses.JupiterV6
	keys = append(keys, wrapperProgram)
	wrapperIdx := uint16(len(keys) - 1)

	outerIx := solana.CompiledInstruction{ProgramIDIndex: wrapperIdx, Accounts: nil, Data: nil}
	ammCallAsInner := solana.CompiledInstruction{
		ProgramIDIndex: 0, // addresses.RaydiumV4
		Accounts:       ix.Accounts,
		Data:           ix.Data,
	}
	inner := append([]solana.CompiledInstruction{ammCallAsInner}, innerTransfers...)

	f := raydiumV4Finder()
	swaps := f.FindSwaps(outerIx, inner, keys, meta)
	require.Len(t, swaps, 1)
	assert.Equal(t, wrapperProgram.String(), *swaps[0].OuterProgram)
	assert.Equal(t, keys[11].String(), swaps[0].InputMint)
	assert.Equal(t, keys[12].String(), swaps[0].OutputMint)
}

func TestHumidiFiDropsUnknownDirection(t *testing.T) {
	f := humidiFiFinder()
	data := make([]byte, 25)
	copy(data[17:25], humidiFiSwapDiscriminant)
	data[16] = 0x00 // neither 0x38 nor 0x39

	keys := make([]solana.PublicKey, 6)
	for i := range keys {
		keys[i] = newKey(t, byte(i+1))
	}
	keys[0] = addresses.HumidiFi
	ix := solana.CompiledInstruction{ProgramIDIndex: 0, Accounts: []uint16{0, 1, 2, 3, 4, 5}, Data: data}

	// One unrelated inner instruction gets FindSwaps past its empty-inner
	// early return, so the direction byte is what decides the outcome.
	inner := []solana.CompiledInstruction{{ProgramIDIndex: 1}}
	swaps := f.FindSwaps(ix, inner, keys, &rpc.TransactionMeta{})
	assert.Empty(t, swaps, "an unrecognized direction byte must drop the call, not guess")
}
