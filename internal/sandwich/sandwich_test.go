package sandwich

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franco-bianco/sandwichgo/internal/events"
)

func strPtr(s string) *string { return &s }

func ts(order uint32) events.Timestamp {
	return events.Timestamp{Slot: 1, InclusionOrder: order, IxIndex: 0}
}

// buildScenarioA builds the smallest complete sandwich: a single victim
// sandwiched between one frontrun and one backrun leg, no helper transfer.
func buildScenarioA() (frontrun, victim, backrun []events.Swap) {
	wrapper := "W"
	frontrun = []events.Swap{{
		ID: 10, OuterProgram: &wrapper, AMM: "X",
		InputMint: "WSOL", OutputMint: "TOKEN",
		InputAmount: 100, OutputAmount: 200,
		InputATA: "A", OutputATA: "P",
		Timestamp: ts(5),
	}}
	victim = []events.Swap{{
		ID: 11, OuterProgram: nil, AMM: "X",
		InputMint: "WSOL", OutputMint: "TOKEN",
		InputAmount: 50, OutputAmount: 90,
		Timestamp: ts(10),
	}}
	backrun = []events.Swap{{
		ID: 12, OuterProgram: &wrapper, AMM: "X",
		InputMint: "TOKEN", OutputMint: "WSOL",
		InputAmount: 200, OutputAmount: 110,
		InputATA: "P", OutputATA: "A",
		Timestamp: ts(15),
	}}
	return
}

func TestNewScenarioASingleVictim(t *testing.T) {
	frontrun, victim, backrun := buildScenarioA()
	cand, err := New(frontrun, victim, backrun, nil, nil)
	require.NoError(t, err)
	assert.Len(t, cand.Victim, 1)

	want := uuid.NewSHA1(uuid.NameSpaceDNS, []byte{
		10, 0, 0, 0, 0, 0, 0, 0,
		12, 0, 0, 0, 0, 0, 0, 0,
		11, 0, 0, 0, 0, 0, 0, 0,
	})
	assert.Equal(t, want, cand.ID())
}

func TestNewRejectsWrapperMismatch(t *testing.T) {
	frontrun, victim, backrun := buildScenarioA()
	w2 := "W2"
	backrun[0].OuterProgram = &w2

	_, err := New(frontrun, victim, backrun, nil, nil)
	require.Error(t, err)
	serr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, FrontrunBackrunWrapperMismatch, serr.Kind)
}

func TestNewRejectsKnownAggregatorIsCallerResponsibility(t *testing.T) {
	// New() itself has no opinion on aggregator identity; enumeration
	// filters aggregator wrappers before ever calling New. Exercise that
	// New() still succeeds so the filtering responsibility is visible.
	frontrun, victim, backrun := buildScenarioA()
	jup := "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	frontrun[0].OuterProgram = &jup
	backrun[0].OuterProgram = &jup
	_, err := New(frontrun, victim, backrun, nil, nil)
	require.NoError(t, err)
}

func TestNewRejectsNonProfitable(t *testing.T) {
	frontrun, victim, backrun := buildScenarioA()
	backrun[0].OutputAmount = 50 // far less than frontrun's 100 input

	_, err := New(frontrun, victim, backrun, nil, nil)
	require.Error(t, err)
	serr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, NonProfitable, serr.Kind)
	assert.Negative(t, serr.A.Sign())
}

func TestNewRejectsVictimSharingWrapper(t *testing.T) {
	frontrun, victim, backrun := buildScenarioA()
	wrapper := "W"
	victim[0].OuterProgram = &wrapper

	_, err := New(frontrun, victim, backrun, nil, nil)
	require.Error(t, err)
	serr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, InvalidVictim, serr.Kind)
}

func TestNewRejectsEmptyVictim(t *testing.T) {
	frontrun, _, backrun := buildScenarioA()
	_, err := New(frontrun, nil, backrun, nil, nil)
	require.Error(t, err)
	serr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, InvalidVictim, serr.Kind)
}

func TestNewTransferClosedFunds(t *testing.T) {
	wrapper := "W"
	frontrun := []events.Swap{{
		ID: 1, OuterProgram: &wrapper, AMM: "X",
		InputMint: "WSOL", OutputMint: "TOKEN",
		InputAmount: 100, OutputAmount: 200,
		InputATA: "A1", OutputATA: "A1",
		Timestamp: ts(1),
	}}
	victim := []events.Swap{{
		ID: 2, AMM: "X", InputMint: "WSOL", OutputMint: "TOKEN",
		InputAmount: 10, OutputAmount: 20, Timestamp: ts(2),
	}}
	backrun := []events.Swap{{
		ID: 3, OuterProgram: &wrapper, AMM: "X",
		InputMint: "TOKEN", OutputMint: "WSOL",
		InputAmount: 200, OutputAmount: 110,
		InputATA: "A2", OutputATA: "A2",
		Timestamp: ts(3),
	}}

	// Without the connecting transfer, frontrun's output ATA (A1) never
	// reaches backrun's input ATA (A2).
	_, err := New(frontrun, victim, backrun, nil, nil)
	require.Error(t, err)
	serr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, InvalidTransfers, serr.Kind)

	transfers := []events.Transfer{{InputATA: "A1", OutputATA: "A2", Mint: "TOKEN", Amount: 200}}
	cand, err := New(frontrun, victim, backrun, transfers, nil)
	require.NoError(t, err)
	assert.Len(t, cand.Transfers, 1)
}

func TestDetectFindsScenarioA(t *testing.T) {
	frontrun, victim, backrun := buildScenarioA()
	swaps := append(append(append([]events.Swap{}, frontrun...), victim...), backrun...)

	candidates := Detect(swaps, nil, nil)
	require.Len(t, candidates, 1)
	assert.Len(t, candidates[0].Frontrun, 1)
	assert.Len(t, candidates[0].Victim, 1)
	assert.Len(t, candidates[0].Backrun, 1)
}

func TestDetectRecoversAfterFrontrunPrune(t *testing.T) {
	// Two same-direction swaps precede the victim. Any frontrun window
	// containing the first one (in=1000) can never be repaid by the lone
	// backrun (out=500): at the full backrun range with m=0, that fires the
	// "stop widening this frontrun window" prune. The enumeration must then
	// still try the window starting at the second swap (in=50), which does
	// form a profitable sandwich; pruning one window start must never
	// abandon the later ones.
	wrapper := "W"
	f0 := events.Swap{
		ID: 1, OuterProgram: &wrapper, AMM: "X",
		InputMint: "WSOL", OutputMint: "TOKEN",
		InputAmount: 1000, OutputAmount: 100,
		InputATA: "A0", OutputATA: "P0",
		Timestamp: ts(1),
	}
	f1 := events.Swap{
		ID: 2, OuterProgram: &wrapper, AMM: "X",
		InputMint: "WSOL", OutputMint: "TOKEN",
		InputAmount: 50, OutputAmount: 100,
		InputATA: "A1", OutputATA: "P",
		Timestamp: ts(2),
	}
	v := events.Swap{
		ID: 3, AMM: "X",
		InputMint: "WSOL", OutputMint: "TOKEN",
		InputAmount: 10, OutputAmount: 20,
		Timestamp: ts(3),
	}
	b0 := events.Swap{
		ID: 4, OuterProgram: &wrapper, AMM: "X",
		InputMint: "TOKEN", OutputMint: "WSOL",
		InputAmount: 50, OutputAmount: 500,
		InputATA: "P", OutputATA: "A1",
		Timestamp: ts(4),
	}

	candidates := Detect([]events.Swap{f0, f1, v, b0}, nil, nil)
	require.Len(t, candidates, 1)
	require.Len(t, candidates[0].Frontrun, 1)
	assert.Equal(t, int64(2), candidates[0].Frontrun[0].ID, "the pruned window start must not take later starts down with it")
	assert.Len(t, candidates[0].Victim, 1)
	assert.Equal(t, int64(3), candidates[0].Victim[0].ID)
}

func TestDetectSkipsAggregatorWrapper(t *testing.T) {
	frontrun, victim, backrun := buildScenarioA()
	jup := "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	frontrun[0].OuterProgram = &jup
	backrun[0].OuterProgram = &jup
	swaps := append(append(append([]events.Swap{}, frontrun...), victim...), backrun...)

	candidates := Detect(swaps, nil, nil)
	assert.Empty(t, candidates)
}
