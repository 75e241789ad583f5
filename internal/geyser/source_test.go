package geyser

import (
	"testing"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
)

func TestNewSourceChannelCapacity(t *testing.T) {
	s := NewSource(rpc.New("http://localhost:8899"), nil)
	require.Equal(t, 100, cap(s.Slots))
}
