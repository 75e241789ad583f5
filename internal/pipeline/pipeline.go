// Package pipeline turns a raw block into the normalized event batch the
// store persists: it drops vote transactions, decodes every remaining
// transaction's account-key vector and instruction list, runs every swap
// and transfer finder against it, and synthesizes a Transaction record for
// any transaction that produced at least one event.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/AlekSi/pointer"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
	"github.com/franco-bianco/sandwichgo/internal/amm"
	"github.com/franco-bianco/sandwichgo/internal/decode"
	"github.com/franco-bianco/sandwichgo/internal/events"
	"github.com/franco-bianco/sandwichgo/internal/transfer"
)

// workerCount bounds the number of transactions processed concurrently per
// block to the number of available CPUs; per-transaction work is CPU-bound
// apart from the occasional lookup-table fetch, so a plain bounded
// semaphore is enough.
func workerCount() int {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 1
}

// Batch is everything one block contributed to the store.
type Batch struct {
	Swaps        []events.Swap
	Transfers    []events.Transfer
	Transactions []events.Transaction
}

func (b Batch) Empty() bool {
	return len(b.Swaps) == 0 && len(b.Transfers) == 0 && len(b.Transactions) == 0
}

// SlotBatch pairs a batch with the slot it came from; the (slot, batch)
// tuple is what the inserter consumes.
type SlotBatch struct {
	Slot  uint64
	Batch Batch
}

// Processor decodes blocks and extracts events from them. It is safe for
// concurrent use; ProcessSlot itself parallelizes per-transaction work.
type Processor struct {
	Decoder *decode.Decoder
	Log     *logrus.Logger
}

func New(decoder *decode.Decoder, log *logrus.Logger) *Processor {
	return &Processor{Decoder: decoder, Log: log}
}

// FetchBlock retrieves a full block with transaction+meta detail at
// finalized commitment, accepting v0 transactions.
func FetchBlock(ctx context.Context, client *rpc.Client, slot uint64) (*rpc.GetBlockResult, error) {
	block, err := client.GetBlockWithOpts(ctx, slot, &rpc.GetBlockOpts{
		Commitment:                     rpc.CommitmentFinalized,
		TransactionDetails:             rpc.TransactionDetailsFull,
		Rewards:                        pointer.ToBool(false),
		MaxSupportedTransactionVersion: pointer.ToUint64(0),
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: get block %d: %w", slot, err)
	}
	return block, nil
}

// ProcessSlot decodes every non-vote transaction in block and extracts
// every swap and transfer it contains, bounded to workerCount concurrent
// decodes.
func (p *Processor) ProcessSlot(ctx context.Context, slot uint64, block *rpc.GetBlockResult) Batch {
	if block == nil {
		return Batch{}
	}

	results := make([]txResult, len(block.Transactions))
	sem := make(chan struct{}, workerCount())
	var wg sync.WaitGroup

	for i, txw := range block.Transactions {
		i, txw := i, txw
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.processTx(ctx, slot, uint32(i), txw)
		}()
	}
	wg.Wait()

	var batch Batch
	for _, r := range results {
		batch.Swaps = append(batch.Swaps, r.swaps...)
		batch.Transfers = append(batch.Transfers, r.transfers...)
		if r.tx != nil {
			batch.Transactions = append(batch.Transactions, *r.tx)
		}
	}
	return batch
}

// txResult is one transaction's contribution to a block's batch.
type txResult struct {
	swaps     []events.Swap
	transfers []events.Transfer
	tx        *events.Transaction
}

func (p *Processor) processTx(ctx context.Context, slot uint64, inclusionOrder uint32, txw rpc.TransactionWithMeta) (out txResult) {
	tx, err := txw.GetTransaction()
	if err != nil || tx == nil {
		return out
	}
	if isVoteTransaction(tx) {
		return out
	}

	decoded, err := p.Decoder.Decode(ctx, tx, txw.Meta)
	if err != nil {
		if p.Log != nil {
			p.Log.WithError(err).WithField("slot", slot).Debug("pipeline: skipping transaction")
		}
		return out
	}

	swaps := amm.FindSwapsInTx(slot, inclusionOrder, decoded.Instructions, txw.Meta, decoded.AccountKeys)
	transfers := transfer.FindTransfersInTx(transfer.Finders(), slot, inclusionOrder, decoded.Instructions, txw.Meta, decoded.AccountKeys)

	out.swaps = swaps
	out.transfers = transfers
	if len(swaps) > 0 || len(transfers) > 0 {
		var fee, cu uint64
		if txw.Meta != nil {
			fee = txw.Meta.Fee
			if txw.Meta.ComputeUnitsConsumed != nil {
				cu = *txw.Meta.ComputeUnitsConsumed
			}
		}
		out.tx = &events.Transaction{
			Slot:           slot,
			InclusionOrder: inclusionOrder,
			Signature:      firstSignature(tx),
			Fee:            fee,
			CUActual:       cu,
			DontFront:      decoded.DontFront,
		}
	}
	return out
}

func firstSignature(tx *solana.Transaction) solana.Signature {
	if len(tx.Signatures) == 0 {
		return solana.Signature{}
	}
	return tx.Signatures[0]
}

// isVoteTransaction reports whether every top-level instruction of tx
// targets the vote program; the RPC surface we decode from doesn't carry
// the geyser stream's is_vote flag directly, but a vote transaction is, by
// construction, made up solely of vote-program instructions.
func isVoteTransaction(tx *solana.Transaction) bool {
	keys := tx.Message.AccountKeys
	if len(tx.Message.Instructions) == 0 {
		return false
	}
	for _, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(keys) || !keys[ix.ProgramIDIndex].Equals(addresses.VoteProgram) {
			return false
		}
	}
	return true
}
