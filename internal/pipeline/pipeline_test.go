package pipeline

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
)

func TestIsVoteTransaction(t *testing.T) {
	other := solana.NewWallet().PublicKey()

	voteOnly := &solana.Transaction{
		Message: solana.Message{
			AccountKeys:  []solana.PublicKey{addresses.VoteProgram},
			Instructions: []solana.CompiledInstruction{{ProgramIDIndex: 0}},
		},
	}
	require.True(t, isVoteTransaction(voteOnly))

	mixed := &solana.Transaction{
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{addresses.VoteProgram, other},
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 0},
				{ProgramIDIndex: 1},
			},
		},
	}
	require.False(t, isVoteTransaction(mixed))

	noIxs := &solana.Transaction{Message: solana.Message{AccountKeys: []solana.PublicKey{other}}}
	require.False(t, isVoteTransaction(noIxs))
}

func TestBatchEmpty(t *testing.T) {
	require.True(t, Batch{}.Empty())
}
