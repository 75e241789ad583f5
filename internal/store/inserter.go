package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/sandwichgo/internal/events"
	"github.com/franco-bianco/sandwichgo/internal/pipeline"
)

// eventChunkSize bounds how many event rows one INSERT statement carries.
const eventChunkSize = 1000

// Inserter persists one block's batch: every address it references gets
// interned first, then events and transactions are written inside a
// single transaction.
type Inserter struct {
	db    *sql.DB
	cache *AddressCache
	Log   *logrus.Logger
}

func NewInserter(db *sql.DB, cache *AddressCache, log *logrus.Logger) *Inserter {
	return &Inserter{db: db, cache: cache, Log: log}
}

// InsertEvents interns every address referenced by batch, then writes its
// swaps, transfers and transactions inside one transaction.
func (ins *Inserter) InsertEvents(ctx context.Context, batch pipeline.Batch) error {
	if batch.Empty() {
		return nil
	}

	if err := ins.cache.Intern(ctx, collectAddresses(batch)); err != nil {
		return err
	}

	tx, err := ins.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin insert tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ins.insertSwapsAndTransfers(ctx, tx, batch); err != nil {
		return err
	}
	if err := ins.insertTransactions(ctx, tx, batch.Transactions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit insert tx: %w", err)
	}
	return nil
}

func collectAddresses(batch pipeline.Batch) []string {
	var out []string
	for _, s := range batch.Swaps {
		out = append(out, s.Authority, outerOrEmpty(s.OuterProgram), s.Program, s.AMM,
			s.InputMint, s.OutputMint, s.InputATA, s.OutputATA)
	}
	for _, t := range batch.Transfers {
		out = append(out, t.Authority, outerOrEmpty(t.OuterProgram), t.Program,
			t.Mint, t.InputATA, t.OutputATA)
	}
	return out
}

func outerOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// eventsWithIDColumns fixes the event insert column order; the three
// optional instruction-index columns take a -1 sentinel when absent.
const eventsWithIDColumns = `(event_type, slot, inclusion_order, ix_index, inner_ix_index, ` +
	`authority_id, outer_program_id, program_id, amm_id, input_mint_id, output_mint_id, ` +
	`input_amount, output_amount, input_ata_id, output_ata_id, input_inner_ix_index, output_inner_ix_index)`

const eventsWithIDRowPlaceholder = `(?, ?, ?, ?, IFNULL(?, -1), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, IFNULL(?, -1), IFNULL(?, -1))`

func (ins *Inserter) insertSwapsAndTransfers(ctx context.Context, tx *sql.Tx, batch pipeline.Batch) error {
	rows := make([][]any, 0, len(batch.Swaps)+len(batch.Transfers))
	for _, s := range batch.Swaps {
		rows = append(rows, ins.swapRow(s))
	}
	for _, t := range batch.Transfers {
		rows = append(rows, ins.transferRow(t))
	}
	return execChunkedRows(ctx, tx, "INSERT INTO events_with_id "+eventsWithIDColumns+" VALUES ",
		eventsWithIDRowPlaceholder, rows)
}

func (ins *Inserter) swapRow(s events.Swap) []any {
	authID, _ := ins.cache.ID(s.Authority)
	progID, _ := ins.cache.ID(s.Program)
	ammID, ammOK := ins.cache.ID(s.AMM)
	inMintID, _ := ins.cache.ID(s.InputMint)
	outMintID, _ := ins.cache.ID(s.OutputMint)
	inATAID, _ := ins.cache.ID(s.InputATA)
	outATAID, _ := ins.cache.ID(s.OutputATA)

	return []any{
		"SWAP", s.Timestamp.Slot, s.Timestamp.InclusionOrder, s.Timestamp.IxIndex, innerIxArg(s.Timestamp.InnerIxIndex),
		authID, outerIDArg(ins.cache, s.OuterProgram), progID, nullableID(ammID, ammOK),
		inMintID, outMintID, s.InputAmount, s.OutputAmount, inATAID, outATAID,
		innerIxArg(s.InputInnerIxIndex), innerIxArg(s.OutputInnerIxIndex),
	}
}

func (ins *Inserter) transferRow(t events.Transfer) []any {
	authID, _ := ins.cache.ID(t.Authority)
	progID, _ := ins.cache.ID(t.Program)
	mintID, _ := ins.cache.ID(t.Mint)
	inATAID, _ := ins.cache.ID(t.InputATA)
	outATAID, _ := ins.cache.ID(t.OutputATA)

	return []any{
		"TRANSFER", t.Timestamp.Slot, t.Timestamp.InclusionOrder, t.Timestamp.IxIndex, innerIxArg(t.Timestamp.InnerIxIndex),
		authID, outerIDArg(ins.cache, t.OuterProgram), progID, nil, // amm is always absent for a standalone transfer
		mintID, mintID, t.Amount, t.Amount, inATAID, outATAID,
		innerIxArg(t.Timestamp.InnerIxIndex), innerIxArg(t.Timestamp.InnerIxIndex),
	}
}

func outerIDArg(cache *AddressCache, outer *string) any {
	if outer == nil {
		return nil
	}
	id, ok := cache.ID(*outer)
	if !ok {
		return nil
	}
	return id
}

func nullableID(id int64, ok bool) any {
	if !ok {
		return nil
	}
	return id
}

func innerIxArg(idx *uint32) any {
	if idx == nil {
		return nil
	}
	return *idx
}

func (ins *Inserter) insertTransactions(ctx context.Context, tx *sql.Tx, txs []events.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, []any{t.Slot, t.InclusionOrder, t.Signature.String(), t.Fee, t.CUActual, t.DontFront})
	}
	return execChunkedRows(ctx, tx, "INSERT INTO transactions (slot, inclusion_order, sig, fee, cu_actual, dont_front) VALUES ",
		"(?, ?, ?, ?, ?, ?)", rows)
}

// execChunkedRows builds and runs `prefix (row),(row),...` statements in
// batches of eventChunkSize rows, so one oversized block never produces an
// unbounded placeholder list.
func execChunkedRows(ctx context.Context, tx *sql.Tx, prefix, rowPlaceholder string, rows [][]any) error {
	for start := 0; start < len(rows); start += eventChunkSize {
		end := start + eventChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		var sb strings.Builder
		sb.WriteString(prefix)
		args := make([]any, 0, len(chunk)*len(rowPlaceholder))
		for i, row := range chunk {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(rowPlaceholder)
			args = append(args, row...)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("store: insert rows: %w", err)
		}
	}
	return nil
}
