// Package realtime drives sandwich detection off the live slot stream
// instead of a one-shot historical range: every fourth slot, once its
// leader group has had a chance to finish landing, it detects against the
// leader group just before the current one and persists whatever it finds.
package realtime

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/sandwichgo/internal/sandwich"
	"github.com/franco-bianco/sandwichgo/internal/store"
)

// LeaderGroupSize is the number of consecutive slots one leader produces.
const LeaderGroupSize = 4

// maxInFlightGroups caps how many slot groups may be detecting at once.
const maxInFlightGroups = 16

// Orchestrator detects and persists sandwiches for the slot group that
// just became final enough to trust.
type Orchestrator struct {
	db  *sql.DB
	Log *logrus.Logger
}

func New(db *sql.DB, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{db: db, Log: log}
}

// Run consumes slots (an ever-increasing stream of confirmed slot numbers,
// e.g. internal/geyser.Source.Slots) and, for every slot satisfying
// slot%4==3, detects the leader group ending LeaderGroupSize slots back —
// intentionally lagging so every event from that group has had time to be
// inserted.
func (o *Orchestrator) Run(ctx context.Context, slots <-chan uint64) {
	sem := make(chan struct{}, maxInFlightGroups)
	for {
		select {
		case <-ctx.Done():
			return
		case slot, ok := <-slots:
			if !ok {
				return
			}
			if slot%LeaderGroupSize != 3 {
				continue
			}
			sem <- struct{}{}
			go func(slot uint64) {
				defer func() { <-sem }()
				o.detectGroup(ctx, slot)
			}(slot)
		}
	}
}

// groupRange returns the [start, end] slot range of the leader group that
// just became safe to detect, given the triggering slot (slot%4==3).
func groupRange(slot uint64) (start, end uint64) {
	return slot - 2*LeaderGroupSize + 1, slot - LeaderGroupSize
}

func (o *Orchestrator) detectGroup(ctx context.Context, slot uint64) {
	startSlot, endSlot := groupRange(slot)

	if err := o.DetectRange(ctx, startSlot, endSlot); err != nil && o.Log != nil {
		o.Log.WithError(err).WithField("start_slot", startSlot).WithField("end_slot", endSlot).Warn("realtime: detect failed")
	}
}

// DetectRange reads back every event in [startSlot, endSlot], runs sandwich
// detection over it, and persists whatever candidates survive. Used by the
// realtime orchestrator; cmd/detector runs its own chunked scan.
func (o *Orchestrator) DetectRange(ctx context.Context, startSlot, endSlot uint64) error {
	swaps, transfers, txs, err := store.GetEvents(ctx, o.db, startSlot, endSlot)
	if err != nil {
		return fmt.Errorf("realtime: get events: %w", err)
	}

	candidates := sandwich.Detect(swaps, transfers, txs)
	if o.Log != nil {
		o.Log.WithField("start_slot", startSlot).WithField("end_slot", endSlot).WithField("count", len(candidates)).Info("realtime: detected sandwiches")
	}
	if len(candidates) == 0 {
		return nil
	}
	if err := store.InsertSandwiches(ctx, o.db, candidates); err != nil {
		return fmt.Errorf("realtime: insert sandwiches: %w", err)
	}
	return nil
}
