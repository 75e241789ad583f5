package transfer

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// MintOf resolves the mint of a token account by scanning pre/post token
// balances for a matching account index. Pre balances are checked first so
// that an account closed mid-transaction still resolves.
func MintOf(ata solana.PublicKey, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) (string, bool) {
	idx, ok := indexOf(ata, accountKeys)
	if !ok {
		return "", false
	}
	for _, tb := range meta.PreTokenBalances {
		if uint64(tb.AccountIndex) == uint64(idx) && !tb.Mint.IsZero() {
			return tb.Mint.String(), true
		}
	}
	for _, tb := range meta.PostTokenBalances {
		if uint64(tb.AccountIndex) == uint64(idx) && !tb.Mint.IsZero() {
			return tb.Mint.String(), true
		}
	}
	return "", false
}

func indexOf(key solana.PublicKey, accountKeys []solana.PublicKey) (int, bool) {
	for i, k := range accountKeys {
		if k.Equals(key) {
			return i, true
		}
	}
	return -1, false
}
