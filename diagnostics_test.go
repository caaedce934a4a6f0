package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const opMMIO uint8 = 0xE
const subOUT = 1

// TestMMIODeniedCounterSaturates starts the denial counter at 0xFFFE,
// drives OUT against a denying MMIO address four times, and checks the
// class counter saturates at 0xFFFF rather than wrapping (spec §4.7).
func TestMMIODeniedCounterSaturates(t *testing.T) {
	s := newTestState()
	mmio := newFakeMMIO()
	const mmioAddr = uint16(0xE000)
	mmio.deny[mmioAddr] = true

	s.R[1] = mmioAddr
	s.R[0] = 0x1234
	loadROM(s, 0x0000, encodeWord(opMMIO, 0, 1, subOUT, amFieldIndirect))

	s.Diag.ClassCounters[counterMMIODenied] = 0xFFFE
	for i := 0; i < 4; i++ {
		s.PC = 0x0000
		outcome := StepOne(s, mmio, nil)
		require.Equal(t, StepRetired, outcome.Kind)
	}
	require.Equal(t, uint16(0xFFFF), s.Diag.ClassCounters[counterMMIODenied])
}

// TestDiagWriteAlwaysFaults checks that a STORE targeting the DIAG window
// always faults (spec §4.7 "writes to DIAG fault"): the region is wired
// into dataReadAllowed but deliberately absent from dataWriteAllowed.
func TestDiagWriteAlwaysFaults(t *testing.T) {
	s := newTestState()
	mmio := newFakeMMIO()
	s.R[1] = diagStart
	loadROM(s, 0x0000, encodeWord(opData, 0, 1, subSTORE(), amFieldIndirect))

	outcome := StepOne(s, mmio, nil)
	require.Equal(t, StepFault, outcome.Kind)
	require.Equal(t, FaultIllegalWrite, outcome.Fault)
}

// TestDiagReadReflectsLatches checks a LOAD from the DIAG window surfaces
// the live retired-instruction counter (spec §4.7).
func TestDiagReadReflectsLatches(t *testing.T) {
	s := newTestState()
	mmio := newFakeMMIO()
	s.Diag.Retired = 7
	s.R[1] = diagStart + diagOffRetired
	loadROM(s, 0x0000, encodeWord(opData, 0, 1, subLOAD(), amFieldIndirect))

	outcome := StepOne(s, mmio, nil)
	require.Equal(t, StepRetired, outcome.Kind)
	require.Equal(t, uint16(7), s.R[0])
}

// TestEnqueueEventOverflow checks the host-API plane-1 error path (spec
// §7): filling the queue to capacity and enqueuing one more reports
// Overflow, not a guest fault.
func TestEnqueueEventOverflow(t *testing.T) {
	s := newTestState()
	for i := 0; i < EventQueueCap; i++ {
		require.Equal(t, EnqueueAccepted, EnqueueEvent(s, uint16(i)))
	}
	require.Equal(t, EnqueueOverflow, EnqueueEvent(s, 0xFF))
	require.Equal(t, EventQueueCap, s.EventQueue.Len())
}

// TestRetiredCounterSaturates checks the saturating retired-instruction
// counter caps at 0xFFFF.
func TestRetiredCounterSaturates(t *testing.T) {
	s := newTestState()
	s.Diag.Retired = 0xFFFF
	incrSaturating(&s.Diag.Retired)
	require.Equal(t, uint16(0xFFFF), s.Diag.Retired)
}
