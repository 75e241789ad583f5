package decode

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestAccountFlags(t *testing.T) {
	header := solana.MessageHeader{
		NumRequiredSignatures:       2,
		NumReadonlySignedAccounts:  1,
		NumReadonlyUnsignedAccounts: 1,
	}
	// static keys: [signer+writable, signer+readonly, unsigned+writable, unsigned+readonly]
	// plus 1 writable LUT key and 1 readonly LUT key.
	numStatic := 4
	numWritableLUT := 1
	total := numStatic + numWritableLUT + 1

	signers, writable := accountFlags(header, numStatic, numWritableLUT, total)

	require.Equal(t, []bool{true, true, false, false, false, false}, signers)
	require.Equal(t, []bool{true, false, true, false, true, false}, writable)
}

func TestCacheNeverShrinks(t *testing.T) {
	c := NewCache()
	key := solana.NewWallet().PublicKey()
	long := make([]solana.PublicKey, 5)
	short := make([]solana.PublicKey, 2)

	c.Upsert(key, long)
	c.Upsert(key, short)

	got, ok := c.Get(key)
	require.True(t, ok)
	require.Len(t, got, 5)
}

func TestParseLookupTableAddresses(t *testing.T) {
	data := make([]byte, lutMetaSize+64)
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	copy(data[lutMetaSize:], a[:])
	copy(data[lutMetaSize+32:], b[:])

	addrs := parseLookupTableAddresses(data)
	require.Len(t, addrs, 2)
	require.True(t, addrs[0].Equals(a))
	require.True(t, addrs[1].Equals(b))
}

func TestParseLookupTableAddressesEmpty(t *testing.T) {
	require.Nil(t, parseLookupTableAddresses(make([]byte, lutMetaSize)))
	require.Nil(t, parseLookupTableAddresses(nil))
}
