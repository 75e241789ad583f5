package discoverer

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
)

func key(seed byte) solana.PublicKey {
	var b [32]byte
	b[0] = seed
	return solana.PublicKeyFromBytes(b[:])
}

func transferData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[1:9], amount)
	return data
}

// buildUnknownAMM constructs an instruction on an unrecognized program with
// two inner token transfers that move two distinct mints between two
// distinct authorities, the minimal shape the heuristic should flag.
func buildUnknownAMM(program solana.PublicKey) (solana.CompiledInstruction, []solana.CompiledInstruction, []solana.PublicKey, *rpc.TransactionMeta) {
	keys := []solana.PublicKey{
		program,              // 0
		key(2),                // 1 amm-ish account
		key(3),                // 2 userIn
		key(4),                // 3 userOut
		addresses.TokenProgram, // 4
		key(6),                // 5 poolIn
		key(7),                // 6 poolOut
		key(8),                // 7 authorityA
		key(9),                // 8 authorityB
		key(10),               // 9 mintA
		key(11),               // 10 mintB
	}
	ix := solana.CompiledInstruction{ProgramIDIndex: 0, Accounts: []uint16{1, 2, 3}, Data: []byte{0xff}}
	transfer1 := solana.CompiledInstruction{ProgramIDIndex: 4, Accounts: []uint16{2, 5, 7}, Data: transferData(100)}
	transfer2 := solana.CompiledInstruction{ProgramIDIndex: 4, Accounts: []uint16{6, 3, 8}, Data: transferData(200)}
	meta := &rpc.TransactionMeta{
		PreTokenBalances: []rpc.TokenBalance{
			{AccountIndex: 2, Mint: keys[9]},
			{AccountIndex: 3, Mint: keys[10]},
		},
	}
	return ix, []solana.CompiledInstruction{transfer1, transfer2}, keys, meta
}

func TestDiscovererFlagsUnknownAMM(t *testing.T) {
	unknown := key(99)
	ix, inner, keys, meta := buildUnknownAMM(unknown)

	swaps := Discoverer{}.FindSwaps(ix, inner, keys, meta)
	assert.Len(t, swaps, 1)
	assert.Equal(t, unknown.String(), swaps[0].Program)
}

func TestDiscovererIgnoresSingleTransfer(t *testing.T) {
	unknown := key(99)
	ix, inner, keys, meta := buildUnknownAMM(unknown)

	swaps := Discoverer{}.FindSwaps(ix, inner[:1], keys, meta)
	assert.Empty(t, swaps)
}

func TestDiscovererIgnoresBlacklistedProgram(t *testing.T) {
	metaplex := solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	ix, inner, keys, meta := buildUnknownAMM(metaplex)

	swaps := Discoverer{}.FindSwaps(ix, inner, keys, meta)
	assert.Empty(t, swaps)
}

func TestDiscovererCountsNativeSOLLeg(t *testing.T) {
	// One SPL-token leg plus one native System-Program lamport leg must
	// still clear the two-transfer bar: the SOL side of an unknown AMM's
	// swap usually moves as plain lamports, not wrapped-SOL tokens.
	unknown := key(99)
	ix, inner, keys, meta := buildUnknownAMM(unknown)

	systemIdx := uint16(len(keys))
	keys = append(keys, addresses.SystemProgram)
	lamportsData := make([]byte, 12)
	lamportsData[0] = 2 // Transfer
	binary.LittleEndian.PutUint64(lamportsData[4:12], 300)
	lamportLeg := solana.CompiledInstruction{ProgramIDIndex: systemIdx, Accounts: []uint16{6, 3}, Data: lamportsData}

	swaps := Discoverer{}.FindSwaps(ix, []solana.CompiledInstruction{inner[0], lamportLeg}, keys, meta)
	assert.Len(t, swaps, 1)
	assert.Equal(t, unknown.String(), swaps[0].Program)
}

func TestDiscovererIgnoresKnownAggregator(t *testing.T) {
	ix, inner, keys, meta := buildUnknownAMM(addresses.JupiterV6)

	swaps := Discoverer{}.FindSwaps(ix, inner, keys, meta)
	assert.Empty(t, swaps)
}
