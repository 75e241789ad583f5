package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/franco-bianco/sandwichgo/internal/events"
)

// InsertSandwiches writes one (id, event_id, role) row per event making up
// each candidate: frontrun legs, then backrun legs, then victim legs, then
// transfers, each tagged with its role. The id is the candidate's own
// deterministic v5 UUID, so re-detecting the same slot range yields the
// same ids; the table has no unique constraint, so those rows are inserted
// again as duplicates.
func InsertSandwiches(ctx context.Context, db *sql.DB, candidates []events.SandwichCandidate) error {
	if len(candidates) == 0 {
		return nil
	}

	var args []any
	rowCount := 0
	for _, c := range candidates {
		id := c.ID().String()
		for _, s := range c.Frontrun {
			args = append(args, id, s.ID, "FRONTRUN")
			rowCount++
		}
		for _, s := range c.Backrun {
			args = append(args, id, s.ID, "BACKRUN")
			rowCount++
		}
		for _, s := range c.Victim {
			args = append(args, id, s.ID, "VICTIM")
			rowCount++
		}
		for _, t := range c.Transfers {
			args = append(args, id, t.ID, "TRANSFER")
			rowCount++
		}
	}
	if rowCount == 0 {
		return nil
	}

	rows := make([][]any, rowCount)
	for i := 0; i < rowCount; i++ {
		rows[i] = args[i*3 : i*3+3]
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin sandwich insert tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := execChunkedRows(ctx, tx, "INSERT INTO sandwiches (id, event_id, role) VALUES ", "(?, ?, ?)", rows); err != nil {
		return err
	}
	return tx.Commit()
}
