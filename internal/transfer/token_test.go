package transfer

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenFinderDecodeLeg(t *testing.T) {
	var f TokenFinder

	transferData := make([]byte, 9)
	transferData[0] = 3
	binary.LittleEndian.PutUint64(transferData[1:], 42)
	amount, from, to, auth, ok := f.DecodeLeg(transferData)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), amount)
	assert.Equal(t, 0, from)
	assert.Equal(t, 1, to)
	assert.Equal(t, 2, auth)

	checkedData := make([]byte, 9)
	checkedData[0] = 12
	binary.LittleEndian.PutUint64(checkedData[1:], 7)
	amount, from, to, auth, ok = f.DecodeLeg(checkedData)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), amount)
	assert.Equal(t, 0, from)
	assert.Equal(t, 2, to)
	assert.Equal(t, 3, auth)

	_, _, _, _, ok = f.DecodeLeg([]byte{99})
	assert.False(t, ok, "unrecognized discriminant must not decode")

	_, _, _, _, ok = f.DecodeLeg(nil)
	assert.False(t, ok)
}

func TestSystemFinderCreateAccountWithSeed(t *testing.T) {
	var f SystemFinder

	seed := []byte("my-seed")
	data := make([]byte, 44+len(seed)+8)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[36:44], uint64(len(seed)))
	copy(data[44:44+len(seed)], seed)
	binary.LittleEndian.PutUint64(data[44+len(seed):], 9001)

	destIdx, amount, ok := f.amountAndDest(data)
	assert.True(t, ok)
	assert.Equal(t, 1, destIdx)
	assert.Equal(t, uint64(9001), amount)
}

func TestStakeFinderWithdraw(t *testing.T) {
	var f StakeFinder

	data := make([]byte, 12)
	data[0] = 4
	binary.LittleEndian.PutUint64(data[4:12], 555)

	fromIdx, toIdx, authIdx, amount, ok := f.fromToAuth(data)
	assert.True(t, ok)
	assert.Equal(t, 0, fromIdx)
	assert.Equal(t, 1, toIdx)
	assert.Equal(t, 4, authIdx)
	assert.Equal(t, uint64(555), amount)

	_, _, _, _, ok = f.fromToAuth([]byte{1, 2, 3})
	assert.False(t, ok)
}
