package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const opEvent uint8 = 0xF

const (
	subEWAIT = 0
	subEGET  = 1
	subERET  = 2
)

const subTRAP = 3

// TestERETOutsideHandlerFaults exercises ERET retired while RunState is
// plain Running (never entered a handler): spec §4.4 requires this to
// fault rather than pop an arbitrary stack frame.
func TestERETOutsideHandlerFaults(t *testing.T) {
	s := newTestState()
	mmio := newFakeMMIO()
	writeMem16(s, VecFault, 0x4600)

	loadROM(s, 0x0000, encodeWord(opEvent, 0, 0, subERET, amFieldDirect))

	outcome := StepOne(s, mmio, nil)
	require.Equal(t, StepFault, outcome.Kind)
	require.Equal(t, FaultERETOutsideHandler, outcome.Fault)
	require.Equal(t, RunStateHandlerContext, s.RunState)
}

// TestTrapDispatchAndERETRoundTrip drives a TRAP through full vectored
// dispatch (push frame, FLAGS.I cleared, jump to VecTrap) and back out
// through ERET, checking CAUSE on entry and that the resume PC and FLAGS
// are restored exactly as pushed (spec §4.4).
func TestTrapDispatchAndERETRoundTrip(t *testing.T) {
	s := newTestState()
	mmio := newFakeMMIO()
	s.Flags = FlagI
	s.R[0] = 0x2A // trap code

	const handlerAddr = uint16(0x4600)
	writeMem16(s, VecTrap, handlerAddr)
	loadROM(s, handlerAddr, encodeWord(opEvent, 0, 0, subERET, amFieldDirect))

	loadROM(s, 0x0000, encodeWord(opControl, 0, 0, subTRAP, amFieldDirect))

	outcome := StepOne(s, mmio, nil)
	require.Equal(t, StepTrap, outcome.Kind)
	require.Equal(t, RunStateHandlerContext, s.RunState)
	require.Equal(t, handlerAddr, s.PC)
	require.Equal(t, uint16(0), s.Flags&FlagI) // cleared on entry
	require.Equal(t, makeCause(causeClassTrap, 0x2A), s.Cause)

	outcome = StepOne(s, mmio, nil) // ERET
	require.Equal(t, StepRetired, outcome.Kind)
	require.Equal(t, RunStateRunning, s.RunState)
	require.Equal(t, uint16(2), s.PC) // resumed past the 1-word TRAP
	require.Equal(t, FlagI, s.Flags)
}

// TestEventDispatchIncrementsCounter checks dispatchEvent's diagnostic
// counter alongside the dispatch itself.
func TestEventDispatchIncrementsCounter(t *testing.T) {
	s := newTestState()
	mmio := newFakeMMIO()
	s.Flags = FlagI
	EnqueueEvent(s, 0x05)

	const handlerAddr = uint16(0x4700)
	writeMem16(s, VecEvent, handlerAddr)

	outcome := StepOne(s, mmio, nil)
	require.Equal(t, StepEventDispatch, outcome.Kind)
	require.Equal(t, uint16(1), s.Diag.ClassCounters[counterEventDispatchCount])
	require.Equal(t, handlerAddr, s.PC)
}

// TestDoubleFaultEntry makes the fault-dispatch prologue itself fail, so
// dispatchFault's own dispatchVector call fails and the core must latch
// FaultLatched/FlagF rather than loop or panic (spec §4.4 "double fault").
func TestDoubleFaultEntry(t *testing.T) {
	s := newTestState()
	mmio := newFakeMMIO()
	// VecFault points at a fetchable RAM handler, so the vector target is
	// not what fails: with SP at the bottom of RAM, the first push of the
	// fault frame targets ROM and faults with FaultIllegalWrite.
	writeMem16(s, VecFault, 0x4600)
	s.SP = ramStart // nothing below RAM is writable: the first pushWord fails

	loadROM(s, 0x0000, encodeWord(opIllegal, 0, 0, 0, amFieldDirect))

	outcome := StepOne(s, mmio, nil)
	require.Equal(t, StepFault, outcome.Kind)
	// outcome.Fault is the originally faulting instruction's own code; the
	// double fault itself is visible via Diag.LastFaultCode, and s.FaultCode
	// holds the code of the failed nested dispatch.
	require.Equal(t, FaultIllegalEncoding, outcome.Fault)
	require.Equal(t, RunStateFaultLatched, s.RunState)
	require.Equal(t, FaultIllegalWrite, s.FaultCode) // cause of the nested dispatch failure
	require.Equal(t, FaultDoubleFault, s.Diag.LastFaultCode)
	require.NotEqual(t, uint16(0), s.Flags&FlagF)
	require.Equal(t, uint16(1), s.Diag.ClassCounters[counterDoubleFault])
}

// TestBudgetFaultToDoubleFault exercises enterDoubleFault via
// resumeAtTickBoundary's HaltBudgetRecovering branch: a handler entered by
// a budget redirect that itself overruns its fresh tick is terminal.
func TestBudgetFaultToDoubleFault(t *testing.T) {
	s := newTestState()
	s.HaltReason = HaltBudgetRecovering
	s.RunState = RunStateHaltedForTick

	resumeAtTickBoundary(s)

	require.Equal(t, RunStateFaultLatched, s.RunState)
	require.Equal(t, FaultBudgetExceeded, s.FaultCode)
}
