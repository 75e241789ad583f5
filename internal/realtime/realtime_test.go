package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupRange(t *testing.T) {
	// slot 11 (11%4==3) should detect the group that ended 4 slots back:
	// slots [4, 7], i.e. the group just before the trigger's own [8, 11].
	start, end := groupRange(11)
	require.Equal(t, uint64(4), start)
	require.Equal(t, uint64(7), end)
}
