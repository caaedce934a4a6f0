package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCycleCostTable pins every op's fixed per-form cost against spec §4.6's
// table so a future edit to timing.go can't silently drift from it.
func TestCycleCostTable(t *testing.T) {
	cases := []struct {
		op    Op
		taken bool
		want  uint16
	}{
		{OpNOP, false, 1},
		{OpSYNC, false, 1},
		{OpHALT, false, 1},
		{OpTRAP, false, 1},
		{OpSWI, false, 1},
		{OpMOV, false, 1},
		{OpLOAD, false, 2},
		{OpSTORE, false, 2},
		{OpADD, false, 1},
		{OpSUB, false, 1},
		{OpAND, false, 1},
		{OpOR, false, 1},
		{OpXOR, false, 1},
		{OpSHL, false, 1},
		{OpSHR, false, 1},
		{OpCMP, false, 1},
		{OpMUL, false, 2},
		{OpMULH, false, 2},
		{OpDIV, false, 3},
		{OpMOD, false, 3},
		{OpQADD, false, 1},
		{OpQSUB, false, 1},
		{OpSCV, false, 1},
		{OpBEQ, false, 1},
		{OpBEQ, true, 2},
		{OpBNE, false, 1},
		{OpBNE, true, 2},
		{OpJMP, false, 2},
		{OpCALL, false, 2},
		{OpRET, false, 2},
		{OpPUSH, false, 1},
		{OpPOP, false, 1},
		{OpIN, false, 4},
		{OpOUT, false, 4},
		{OpBSET, false, 4},
		{OpBCLR, false, 4},
		{OpBTEST, false, 4},
		{OpEWAIT, false, 1},
		{OpEGET, false, 1},
		{OpERET, false, 4},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.want, cycleCost(tc.op, tc.taken), "op=%v taken=%v", tc.op, tc.taken)
	}
}

func TestDispatchEntryCost(t *testing.T) {
	require.Equal(t, uint16(5), dispatchEntryCost)
}

// TestFaultDispatchChargesBaseCost exercises host.go's faultAtBoundary via
// StepOne: an execute-time fault must cost dispatchEntryCost plus the
// faulting instruction's own base cost (spec §4.6: "5 (fault: +base cost of
// faulting instruction)"), not a flat 5.
func TestFaultDispatchChargesBaseCost(t *testing.T) {
	s := newTestState()
	mmio := newFakeMMIO()
	s.R[1] = 0xFFFF // replaced by the odd 0x4001 below, forcing FaultUnalignedAccess on STORE

	loadROM(s, 0x0000,
		encodeWord(opData, 1, 0, subMOV(), amFieldImmediate), 0x4001, // MOV R1,#0x4001 (odd)
		encodeWord(opData, 0, 1, subSTORE(), amFieldIndirect), // STORE R0,[R1]
	)

	StepOne(s, mmio, nil) // MOV retires
	require.Equal(t, uint16(1), s.Tick)

	writeMem16(s, VecFault, 0x4600)
	outcome := StepOne(s, mmio, nil) // STORE faults: unaligned write
	require.Equal(t, StepFault, outcome.Kind)
	require.Equal(t, FaultUnalignedAccess, outcome.Fault)
	require.Equal(t, dispatchEntryCost+cycleCost(OpSTORE, false), outcome.Cycles)
	require.Equal(t, uint16(1)+dispatchEntryCost+cycleCost(OpSTORE, false), s.Tick)
}

// TestDecodeFaultChargesFlatCost exercises the decode-time fault path: no
// faulting op was ever identified, so only the flat dispatchEntryCost is
// owed, with no base-cost addition.
func TestDecodeFaultChargesFlatCost(t *testing.T) {
	s := newTestState()
	mmio := newFakeMMIO()
	writeMem16(s, VecFault, 0x4600)
	loadROM(s, 0x0000, encodeWord(opIllegal, 0, 0, 0, amFieldDirect))

	outcome := StepOne(s, mmio, nil)
	require.Equal(t, StepFault, outcome.Kind)
	require.Equal(t, dispatchEntryCost, outcome.Cycles)
	require.Equal(t, dispatchEntryCost, s.Tick)
}
