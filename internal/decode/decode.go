// Package decode rebuilds a transaction's full account-key vector and
// instruction list, resolving address lookup table references against a
// process-wide cache so every downstream finder can work with plain
// solana.CompiledInstruction/accountKeys pairs regardless of whether an
// account came from the static key list or a lookup table.
package decode

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
)

// ErrFailedTransaction is returned for a transaction whose meta carries a
// runtime error; failed transactions never contribute swaps, transfers, or
// fee-payer SOL deltas and are dropped before decode even begins.
var ErrFailedTransaction = errors.New("decode: transaction failed on-chain")

// ErrLUTMiss is returned when a transaction references an address lookup
// table account decode could not fetch, or an index past the end of one it
// did fetch. Both indicate the RPC node decode is using is behind the slot
// the transaction landed in.
var ErrLUTMiss = errors.New("decode: address lookup table miss")

// Decoded is a transaction rebuilt into the flat, index-based shape every
// finder in internal/amm and internal/transfer already expects: a single
// account-key vector covering static keys plus every resolved lookup-table
// entry, and the instruction list unchanged (its account indices already
// point correctly into that vector per Solana's wire format).
type Decoded struct {
	AccountKeys  []solana.PublicKey
	Instructions []solana.CompiledInstruction
	Signers      []bool
	Writable     []bool
	DontFront    bool
}

// IsSigner/IsWritable report the resolved flags for accountKeys[idx],
// matching what a full solana.AccountMeta would have carried. Current
// finders don't need these themselves, but callers exercising the account
// metadata directly (e.g. future authority-derivation logic) should read
// them from here rather than re-deriving the header math.
func (d *Decoded) IsSigner(idx int) bool {
	return idx >= 0 && idx < len(d.Signers) && d.Signers[idx]
}

func (d *Decoded) IsWritable(idx int) bool {
	return idx >= 0 && idx < len(d.Writable) && d.Writable[idx]
}

// Decoder resolves lookup tables against an RPC node, caching every table
// it has ever seen so repeated references across a block (or across the
// life of a long-running indexer) cost one fetch each.
type Decoder struct {
	rpcClient *rpc.Client
	cache     *Cache
	log       *logrus.Logger
	limiter   ratelimit.Limiter
}

func NewDecoder(rpcClient *rpc.Client, cache *Cache, log *logrus.Logger) *Decoder {
	return &Decoder{
		rpcClient: rpcClient,
		cache:     cache,
		log:       log,
		limiter:   ratelimit.New(50),
	}
}

// Decode rebuilds tx's account-key vector and flags, hydrating any lookup
// table reference it hasn't already cached. meta.Err dropped transactions
// are rejected up front; they carry no usable balance deltas or inner
// instructions for the finders to walk.
func (d *Decoder) Decode(ctx context.Context, tx *solana.Transaction, meta *rpc.TransactionMeta) (*Decoded, error) {
	if meta != nil && meta.Err != nil {
		return nil, ErrFailedTransaction
	}

	msg := tx.Message
	if err := d.ensureCached(ctx, msg.AddressTableLookups); err != nil {
		return nil, err
	}

	var writable, readonly []solana.PublicKey
	for _, lookup := range msg.AddressTableLookups {
		addrs, ok := d.cache.Get(lookup.AccountKey)
		if !ok {
			return nil, fmt.Errorf("%w: table %s not cached", ErrLUTMiss, lookup.AccountKey)
		}
		for _, idx := range lookup.WritableIndexes {
			if int(idx) >= len(addrs) {
				return nil, fmt.Errorf("%w: table %s writable index %d out of range", ErrLUTMiss, lookup.AccountKey, idx)
			}
			writable = append(writable, addrs[idx])
		}
		for _, idx := range lookup.ReadonlyIndexes {
			if int(idx) >= len(addrs) {
				return nil, fmt.Errorf("%w: table %s readonly index %d out of range", ErrLUTMiss, lookup.AccountKey, idx)
			}
			readonly = append(readonly, addrs[idx])
		}
	}

	accountKeys := make([]solana.PublicKey, 0, len(msg.AccountKeys)+len(writable)+len(readonly))
	accountKeys = append(accountKeys, msg.AccountKeys...)
	accountKeys = append(accountKeys, writable...)
	accountKeys = append(accountKeys, readonly...)

	signers, writableFlags := accountFlags(msg.Header, len(msg.AccountKeys), len(writable), len(accountKeys))

	dontFront := false
	for _, key := range accountKeys {
		if addresses.InDontFrontRange(key) {
			dontFront = true
			break
		}
	}

	return &Decoded{
		AccountKeys:  accountKeys,
		Instructions: msg.Instructions,
		Signers:      signers,
		Writable:     writableFlags,
		DontFront:    dontFront,
	}, nil
}

// accountFlags derives is_signer/is_writable for every resolved account
// index from the message header and lookup split, per Solana's canonical
// ordering: signed accounts first (writable ones before read-only signed),
// then unsigned static accounts (writable ones before read-only unsigned),
// then writable lookup-table accounts, then read-only lookup-table
// accounts.
func accountFlags(header solana.MessageHeader, numStatic, numWritableLUT, total int) (signers, writable []bool) {
	numSigned := int(header.NumRequiredSignatures)
	numReadonlySigned := int(header.NumReadonlySignedAccounts)
	numReadonlyUnsigned := int(header.NumReadonlyUnsignedAccounts)

	signers = make([]bool, total)
	writable = make([]bool, total)
	for i := 0; i < total; i++ {
		switch {
		case i >= numStatic:
			writable[i] = i-numStatic < numWritableLUT
		case i >= numSigned:
			writable[i] = i-numSigned < numStatic-numSigned-numReadonlyUnsigned
		default:
			signers[i] = true
			writable[i] = i < numSigned-numReadonlySigned
		}
	}
	return signers, writable
}

// ensureCached fetches and caches every lookup table referenced by lookups
// that isn't already resolved. Tables that come back missing or with
// unreadable data are simply left uncached; Decode surfaces ErrLUTMiss for
// any reference that still can't be resolved afterward.
func (d *Decoder) ensureCached(ctx context.Context, lookups []solana.MessageAddressTableLookup) error {
	seen := make(map[solana.PublicKey]bool, len(lookups))
	var uncached []solana.PublicKey
	for _, lookup := range lookups {
		if seen[lookup.AccountKey] {
			continue
		}
		seen[lookup.AccountKey] = true
		if _, ok := d.cache.Get(lookup.AccountKey); !ok {
			uncached = append(uncached, lookup.AccountKey)
		}
	}
	if len(uncached) == 0 {
		return nil
	}

	accounts, err := d.fetchAccounts(ctx, uncached)
	if err != nil {
		return fmt.Errorf("decode: fetch lookup tables: %w", err)
	}
	for i, acct := range accounts {
		if acct == nil {
			continue
		}
		data := acct.Data.GetBinary()
		if data == nil {
			continue
		}
		d.cache.Upsert(uncached[i], parseLookupTableAddresses(data))
	}
	return nil
}
