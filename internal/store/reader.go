package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/franco-bianco/sandwichgo/internal/events"
)

// tsKey is a comparable stand-in for events.Timestamp (which carries a
// *uint32 and so compares by pointer identity, not value, as a map key).
type tsKey struct {
	slot  uint64
	incl  uint32
	ix    uint32
	inner int64 // -1 means absent
}

func keyOf(t events.Timestamp) tsKey {
	inner := int64(-1)
	if t.InnerIxIndex != nil {
		inner = int64(*t.InnerIxIndex)
	}
	return tsKey{slot: t.Slot, incl: t.InclusionOrder, ix: t.IxIndex, inner: inner}
}

// GetEvents reads back every swap, transfer and transaction recorded for
// slots in [startSlot, endSlot], then applies the same two noise-filtering
// passes the original detector does before handing events to the sandwich
// detector: transfers already absorbed as a swap leg are dropped, and
// transfers touching an AMM pool directly (fee/dust noise) are dropped.
// Both collections, plus the transactions, come back sorted chronologically.
func GetEvents(ctx context.Context, db *sql.DB, startSlot, endSlot uint64) ([]events.Swap, []events.Transfer, []events.Transaction, error) {
	swaps, transfers, err := queryEvents(ctx, db, startSlot, endSlot)
	if err != nil {
		return nil, nil, nil, err
	}
	txs, err := queryTransactions(ctx, db, startSlot, endSlot)
	if err != nil {
		return nil, nil, nil, err
	}

	transferMap := make(map[tsKey]events.Transfer, len(transfers))
	for _, t := range transfers {
		transferMap[keyOf(t.Timestamp)] = t
	}
	for _, s := range swaps {
		if s.InputInnerIxIndex != nil {
			delete(transferMap, keyOf(events.Timestamp{Slot: s.Timestamp.Slot, InclusionOrder: s.Timestamp.InclusionOrder, IxIndex: s.Timestamp.IxIndex, InnerIxIndex: s.InputInnerIxIndex}))
		}
		if s.OutputInnerIxIndex != nil {
			delete(transferMap, keyOf(events.Timestamp{Slot: s.Timestamp.Slot, InclusionOrder: s.Timestamp.InclusionOrder, IxIndex: s.Timestamp.IxIndex, InnerIxIndex: s.OutputInnerIxIndex}))
		}
	}

	amms := make(map[string]bool, len(swaps))
	for _, s := range swaps {
		amms[s.AMM] = true
	}

	filtered := make([]events.Transfer, 0, len(transferMap))
	for _, t := range transferMap {
		if amms[t.InputATA] || amms[t.OutputATA] || amms[t.Authority] {
			continue
		}
		filtered = append(filtered, t)
	}

	sort.Slice(swaps, func(i, j int) bool { return swaps[i].Timestamp.Less(swaps[j].Timestamp) })
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Timestamp.Less(filtered[j].Timestamp) })
	sort.Slice(txs, func(i, j int) bool {
		a := events.Timestamp{Slot: txs[i].Slot, InclusionOrder: txs[i].InclusionOrder}
		b := events.Timestamp{Slot: txs[j].Slot, InclusionOrder: txs[j].InclusionOrder}
		return a.Less(b)
	})

	return swaps, filtered, txs, nil
}

func queryEvents(ctx context.Context, db *sql.DB, startSlot, endSlot uint64) ([]events.Swap, []events.Transfer, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, event_type, slot, inclusion_order, ix_index, inner_ix_index,
		authority, outer_program, program, amm, input_mint, output_mint, input_amount, output_amount,
		input_ata, output_ata, input_inner_ix_index, output_inner_ix_index
		FROM events WHERE slot BETWEEN ? AND ?`, startSlot, endSlot)
	if err != nil {
		return nil, nil, fmt.Errorf("store: query events: %w", err)
	}
	defer rows.Close()

	var swaps []events.Swap
	var transfers []events.Transfer
	for rows.Next() {
		var (
			id                                                  int64
			eventType                                           string
			slot                                                uint64
			inclusionOrder, ixIndex                             uint32
			innerIxIndex, inputInnerIxIndex, outputInnerIxIndex int64
			authority, program, inputMint, outputMint           string
			inputATA, outputATA                                 string
			outerProgram, amm                                   sql.NullString
			inputAmount, outputAmount                           uint64
		)
		if err := rows.Scan(&id, &eventType, &slot, &inclusionOrder, &ixIndex, &innerIxIndex,
			&authority, &outerProgram, &program, &amm, &inputMint, &outputMint, &inputAmount, &outputAmount,
			&inputATA, &outputATA, &inputInnerIxIndex, &outputInnerIxIndex); err != nil {
			return nil, nil, fmt.Errorf("store: scan event row: %w", err)
		}

		ts := events.Timestamp{Slot: slot, InclusionOrder: inclusionOrder, IxIndex: ixIndex, InnerIxIndex: sentinelPtr(innerIxIndex)}
		var outer *string
		if outerProgram.Valid {
			v := outerProgram.String
			outer = &v
		}

		switch eventType {
		case "SWAP":
			swaps = append(swaps, events.Swap{
				ID:                 id,
				OuterProgram:       outer,
				Program:            program,
				AMM:                amm.String,
				Authority:          authority,
				InputMint:          inputMint,
				OutputMint:         outputMint,
				InputAmount:        inputAmount,
				OutputAmount:       outputAmount,
				InputATA:           inputATA,
				OutputATA:          outputATA,
				InputInnerIxIndex:  sentinelPtr(inputInnerIxIndex),
				OutputInnerIxIndex: sentinelPtr(outputInnerIxIndex),
				Timestamp:          ts,
			})
		case "TRANSFER":
			transfers = append(transfers, events.Transfer{
				ID:           id,
				OuterProgram: outer,
				Program:      program,
				Authority:    authority,
				Mint:         inputMint,
				Amount:       inputAmount,
				InputATA:     inputATA,
				OutputATA:    outputATA,
				Timestamp:    ts,
			})
		}
	}
	return swaps, transfers, rows.Err()
}

func queryTransactions(ctx context.Context, db *sql.DB, startSlot, endSlot uint64) ([]events.Transaction, error) {
	rows, err := db.QueryContext(ctx, `SELECT slot, inclusion_order, sig, fee, cu_actual, dont_front FROM transactions WHERE slot BETWEEN ? AND ?`, startSlot, endSlot)
	if err != nil {
		return nil, fmt.Errorf("store: query transactions: %w", err)
	}
	defer rows.Close()

	var out []events.Transaction
	for rows.Next() {
		var (
			slot           uint64
			inclusionOrder uint32
			sig            string
			fee, cu        uint64
			dontFront      bool
		)
		if err := rows.Scan(&slot, &inclusionOrder, &sig, &fee, &cu, &dontFront); err != nil {
			return nil, fmt.Errorf("store: scan transaction row: %w", err)
		}
		signature, _ := solana.SignatureFromBase58(sig)
		out = append(out, events.Transaction{Slot: slot, InclusionOrder: inclusionOrder, Signature: signature, Fee: fee, CUActual: cu, DontFront: dontFront})
	}
	return out, rows.Err()
}

// sentinelPtr converts the -1-means-absent integer columns back into the
// *uint32 the in-memory event types use.
func sentinelPtr(v int64) *uint32 {
	if v < 0 {
		return nil
	}
	u := uint32(v)
	return &u
}
