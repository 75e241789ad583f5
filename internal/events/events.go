package events

import "github.com/gagliardetto/solana-go"

// Swap is an immutable record of a single AMM trade leg extracted from a
// transaction's instruction tree.
type Swap struct {
	ID int64 // row identity once persisted; 0 while in-flight

	OuterProgram *string // wrapper program that CPI'd into the AMM, nil when top-level
	Program      string  // the AMM program id
	AMM          string  // the pool address traded against
	Authority    string  // token-account authority on the user's input leg

	InputMint  string
	OutputMint string

	InputAmount  uint64
	OutputAmount uint64

	InputATA  string
	OutputATA string

	InputInnerIxIndex  *uint32
	OutputInnerIxIndex *uint32

	Timestamp Timestamp
}

// Pair returns the trade pair this swap belongs to.
func (s Swap) Pair() TradePair {
	return TradePair{AMM: s.AMM, InputMint: s.InputMint, OutputMint: s.OutputMint}
}

// Transfer is a standalone token or lamport movement not absorbed as a
// swap leg.
type Transfer struct {
	ID int64

	OuterProgram *string
	Program      string
	Authority    string
	Mint         string
	Amount       uint64

	InputATA  string
	OutputATA string

	Timestamp Timestamp
}

// Transaction is the synthetic per-tx record emitted whenever a block
// update produces at least one Swap/Transfer.
type Transaction struct {
	Slot           uint64
	InclusionOrder uint32
	Signature      solana.Signature
	Fee            uint64
	CUActual       uint64
	DontFront      bool
}

// TradePair identifies a directed trade on a given pool.
type TradePair struct {
	AMM        string
	InputMint  string
	OutputMint string
}

// Reverse swaps the mint positions, representing the opposite leg of the
// same pool.
func (p TradePair) Reverse() TradePair {
	return TradePair{AMM: p.AMM, InputMint: p.OutputMint, OutputMint: p.InputMint}
}
