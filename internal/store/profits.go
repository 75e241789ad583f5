package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/franco-bianco/sandwichgo/internal/addresses"
)

// SandwichProfit is one detected sandwich's aggregate leg amounts plus the
// SOL-denominated profit estimate derivable from them. The estimate only
// covers the WSOL leg: when neither traded mint is wrapped SOL there is no
// price reference and EstProfitLamports stays 0.
type SandwichProfit struct {
	ID          string
	Slot        uint64
	FrontrunIn  uint64
	FrontrunOut uint64
	BackrunIn   uint64
	BackrunOut  uint64
	Token1Mint  string // frontrun input mint
	Token2Mint  string // frontrun output mint

	EstProfitLamports uint64
}

// GetSandwichProfits aggregates the frontrun/backrun legs of every sandwich
// whose events landed in [startSlot, endSlot] and estimates each one's
// profit in lamports.
func GetSandwichProfits(ctx context.Context, db *sql.DB, startSlot, endSlot uint64) ([]SandwichProfit, error) {
	rows, err := db.QueryContext(ctx, `SELECT s.id, s.role, e.slot, e.input_mint, e.output_mint, e.input_amount, e.output_amount
		FROM sandwiches s JOIN events e ON e.id = s.event_id
		WHERE e.slot BETWEEN ? AND ? AND s.role IN ('FRONTRUN', 'BACKRUN')
		ORDER BY s.id`, startSlot, endSlot)
	if err != nil {
		return nil, fmt.Errorf("store: query sandwich profits: %w", err)
	}
	defer rows.Close()

	var out []SandwichProfit
	var cur *SandwichProfit
	for rows.Next() {
		var (
			id, role, inMint, outMint string
			slot, inAmt, outAmt       uint64
		)
		if err := rows.Scan(&id, &role, &slot, &inMint, &outMint, &inAmt, &outAmt); err != nil {
			return nil, fmt.Errorf("store: scan sandwich profit row: %w", err)
		}
		if cur == nil || cur.ID != id {
			if cur != nil {
				cur.EstProfitLamports = estimateProfit(*cur)
				out = append(out, *cur)
			}
			cur = &SandwichProfit{ID: id, Slot: slot}
		}
		if slot < cur.Slot {
			cur.Slot = slot
		}
		switch role {
		case "FRONTRUN":
			cur.FrontrunIn += inAmt
			cur.FrontrunOut += outAmt
			if cur.Token1Mint == "" {
				cur.Token1Mint = inMint
				cur.Token2Mint = outMint
			}
		case "BACKRUN":
			cur.BackrunIn += inAmt
			cur.BackrunOut += outAmt
			if cur.Token1Mint == "" {
				cur.Token1Mint = outMint
				cur.Token2Mint = inMint
			}
		}
	}
	if cur != nil {
		cur.EstProfitLamports = estimateProfit(*cur)
		out = append(out, *cur)
	}
	return out, rows.Err()
}

// estimateProfit values the sandwich in lamports: the surplus on the WSOL
// leg, whichever side that is. The non-SOL-leg surplus would need a price
// oracle to convert, so it's left out of the estimate.
func estimateProfit(p SandwichProfit) uint64 {
	wsol := addresses.WrappedSOLMint.String()
	switch {
	case p.Token1Mint == wsol && p.BackrunOut >= p.FrontrunIn:
		return p.BackrunOut - p.FrontrunIn
	case p.Token2Mint == wsol && p.FrontrunOut >= p.BackrunIn:
		return p.FrontrunOut - p.BackrunIn
	default:
		return 0
	}
}
