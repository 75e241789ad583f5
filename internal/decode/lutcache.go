package decode

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

// lutMetaSize is the fixed-size header every on-chain address lookup table
// account carries ahead of its address list: a 4-byte program-account-state
// discriminant, an 8-byte deactivation slot, an 8-byte last-extended slot, a
// 1-byte last-extended-slot start index, a 1-byte Option<Pubkey> tag plus its
// 32-byte payload, and 2 bytes of padding that keep the meta a constant 56
// bytes regardless of whether the authority option is set.
const lutMetaSize = 56

// Cache holds every address lookup table this process has resolved, keyed
// by the table's own account address. It never shrinks an entry: a table
// can only be extended on-chain, so a shorter snapshot racing in behind a
// longer one already cached must be discarded rather than overwrite it.
type Cache struct {
	mu     sync.RWMutex
	tables map[solana.PublicKey][]solana.PublicKey
}

func NewCache() *Cache {
	return &Cache{tables: make(map[solana.PublicKey][]solana.PublicKey)}
}

func (c *Cache) Get(key solana.PublicKey) ([]solana.PublicKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	addrs, ok := c.tables[key]
	return addrs, ok
}

// Upsert records addrs for key unless an entry is already cached that is at
// least as long.
func (c *Cache) Upsert(key solana.PublicKey, addrs []solana.PublicKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.tables[key]; ok && len(existing) >= len(addrs) {
		return
	}
	c.tables[key] = addrs
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// parseLookupTableAddresses reads the flat pubkey array that follows an
// address lookup table account's fixed-size meta. The addresses always
// start at lutMetaSize: the meta is padded to a constant width whether or
// not the authority option is populated, so no field inside it needs to be
// parsed just to find where the list begins.
func parseLookupTableAddresses(data []byte) []solana.PublicKey {
	if len(data) <= lutMetaSize {
		return nil
	}
	body := data[lutMetaSize:]
	n := len(body) / solana.PublicKeyLength
	if n == 0 {
		return nil
	}
	out := make([]solana.PublicKey, n)
	for i := 0; i < n; i++ {
		copy(out[i][:], body[i*solana.PublicKeyLength:(i+1)*solana.PublicKeyLength])
	}
	return out
}
