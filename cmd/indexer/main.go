// The indexer subscribes to the block stream, decodes every non-vote
// transaction into swap/transfer events, and persists them. It runs until
// killed; a dropped subscription is retried every 5 seconds.
package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/sandwichgo/internal/config"
	"github.com/franco-bianco/sandwichgo/internal/decode"
	"github.com/franco-bianco/sandwichgo/internal/geyser"
	"github.com/franco-bianco/sandwichgo/internal/httpapi"
	"github.com/franco-bianco/sandwichgo/internal/pipeline"
	"github.com/franco-bianco/sandwichgo/internal/store"
)

const reconnectDelay = 5 * time.Second

// batchBuffer is the bounded channel between extraction and the inserter;
// the pipeline blocks when the store falls this far behind.
const batchBuffer = 100

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("indexer: config")
	}
	if err := cfg.RequireGRPC(); err != nil {
		log.WithError(err).Fatal("indexer: config")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.WithError(err).Fatal("indexer: open store")
	}
	defer db.Close()

	ctx := context.Background()
	if err := store.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("indexer: ensure schema")
	}

	metrics := &httpapi.Metrics{}
	go func() {
		if err := httpapi.New(cfg.APIPort, metrics).Run(ctx); err != nil {
			log.WithError(err).Error("indexer: http server")
		}
	}()

	// GRPC_URL names the streaming node the blocks come from; RPC_URL is
	// only used to hydrate lookup tables the stream hasn't shown us.
	streamClient := rpc.New(cfg.GRPCURL)
	decoder := decode.NewDecoder(rpc.New(cfg.RPCURL), decode.NewCache(), log)
	processor := pipeline.New(decoder, log)
	inserter := store.NewInserter(db, store.NewAddressCache(db), log)

	batches := make(chan pipeline.SlotBatch, batchBuffer)
	go func() {
		for sb := range batches {
			if err := inserter.InsertEvents(ctx, sb.Batch); err != nil {
				log.WithError(err).WithField("slot", sb.Slot).Error("indexer: insert batch")
				continue
			}
			metrics.SwapsFound.Add(int64(len(sb.Batch.Swaps)))
			metrics.TransfersFound.Add(int64(len(sb.Batch.Transfers)))
			metrics.LastProcessedSlot.Store(int64(sb.Slot))
		}
	}()

	for {
		if err := runOnce(ctx, log, streamClient, processor, metrics, batches); err != nil {
			log.WithError(err).Warn("indexer: subscription dropped, reconnecting")
		}
		time.Sleep(reconnectDelay)
	}
}

// runOnce drives one subscription until it drops.
func runOnce(ctx context.Context, log *logrus.Logger, client *rpc.Client, processor *pipeline.Processor, metrics *httpapi.Metrics, batches chan<- pipeline.SlotBatch) error {
	source := geyser.NewSource(client, log)
	errCh := make(chan error, 1)
	go func() { errCh <- source.Run(ctx) }()

	for slot := range source.Slots {
		block, err := pipeline.FetchBlock(ctx, client, slot)
		if err != nil {
			log.WithError(err).WithField("slot", slot).Warn("indexer: fetch block")
			continue
		}
		batch := processor.ProcessSlot(ctx, slot, block)
		metrics.BlocksProcessed.Add(1)
		if batch.Empty() {
			continue
		}
		batches <- pipeline.SlotBatch{Slot: slot, Batch: batch}
	}
	return <-errCh
}
