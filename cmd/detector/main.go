// The offline detector re-runs sandwich detection over a historical slot
// range: slots are aligned to leader groups, fetched from the store in
// chunks of up to 1000 slots, and each leader group is detected
// independently, at most 16 chunks in flight.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/sandwichgo/internal/config"
	"github.com/franco-bianco/sandwichgo/internal/realtime"
	"github.com/franco-bianco/sandwichgo/internal/sandwich"
	"github.com/franco-bianco/sandwichgo/internal/store"
)

const (
	maxChunkSize   = uint64(1000)
	maxConcurrency = 16
)

func main() {
	log := logrus.New()

	args := os.Args[1:]
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s <start_slot> [<end_slot>]\n", os.Args[0])
		os.Exit(2)
	}
	startSlot, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		log.WithError(err).Fatal("detector: invalid start slot")
	}
	endSlot := startSlot
	if len(args) >= 2 {
		endSlot, err = strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			log.WithError(err).Fatal("detector: invalid end slot")
		}
	}

	// Align outward to whole leader groups.
	const groupSize = realtime.LeaderGroupSize
	startSlot = startSlot / groupSize * groupSize
	endSlot = endSlot/groupSize*groupSize + groupSize - 1

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("detector: config")
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.WithError(err).Fatal("detector: open store")
	}
	defer db.Close()

	ctx := context.Background()

	totalGroups := (endSlot - startSlot + 1) / groupSize
	log.WithField("start_slot", startSlot).WithField("end_slot", endSlot).
		WithField("groups", totalGroups).Info("detector: processing")

	// Chunk so ~16 chunks cover the range, capped below the fetch limit,
	// and always a whole number of leader groups.
	chunkSize := (endSlot - startSlot + 1) / maxConcurrency
	if max := maxChunkSize - groupSize; chunkSize > max {
		chunkSize = max
	}
	chunkSize = chunkSize/groupSize*groupSize + groupSize

	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup
	for chunkStart := startSlot; chunkStart <= endSlot; chunkStart += chunkSize {
		chunkEnd := chunkStart + chunkSize - 1
		if chunkEnd > endSlot {
			chunkEnd = endSlot
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(chunkStart, chunkEnd uint64) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := processChunk(ctx, log, db, chunkStart, chunkEnd); err != nil {
				log.WithError(err).WithField("chunk_start", chunkStart).Error("detector: chunk failed")
			}
		}(chunkStart, chunkEnd)
	}
	wg.Wait()
}

// processChunk fetches one chunk's events and detects each leader group
// inside it, advancing cursors over the chronologically sorted slices
// instead of re-querying per group.
func processChunk(ctx context.Context, log *logrus.Logger, db *sql.DB, chunkStart, chunkEnd uint64) error {
	swaps, transfers, txs, err := store.GetEvents(ctx, db, chunkStart, chunkEnd)
	if err != nil {
		return err
	}

	var swapsStart, transfersStart, txsStart int
	for slot := chunkStart; slot <= chunkEnd; slot += realtime.LeaderGroupSize {
		groupEnd := slot + realtime.LeaderGroupSize
		swapsEnd := advance(swapsStart, len(swaps), func(i int) uint64 { return swaps[i].Timestamp.Slot }, groupEnd)
		transfersEnd := advance(transfersStart, len(transfers), func(i int) uint64 { return transfers[i].Timestamp.Slot }, groupEnd)
		txsEnd := advance(txsStart, len(txs), func(i int) uint64 { return txs[i].Slot }, groupEnd)

		candidates := sandwich.Detect(swaps[swapsStart:swapsEnd], transfers[transfersStart:transfersEnd], txs[txsStart:txsEnd])
		if len(candidates) > 0 {
			log.WithField("slot", slot).WithField("count", len(candidates)).Info("detector: found sandwiches")
			if err := store.InsertSandwiches(ctx, db, candidates); err != nil {
				log.WithError(err).WithField("slot", slot).Error("detector: insert sandwiches")
			}
		}

		swapsStart, transfersStart, txsStart = swapsEnd, transfersEnd, txsEnd
	}
	return nil
}

// advance moves a cursor forward to the first index at or past limitSlot.
func advance(start, n int, slotAt func(int) uint64, limitSlot uint64) int {
	i := start
	for i < n && slotAt(i) < limitSlot {
		i++
	}
	return i
}
