package core

// Vector addresses (spec §4.4).
const (
	VecTrap  uint16 = 0x0008
	VecEvent uint16 = 0x000A
	VecFault uint16 = 0x000C
)

// Cause class nibbles, shifted into Cause[15:12] alongside an 8-bit code.
const (
	causeClassTrap  uint16 = 1
	causeClassEvent uint16 = 2
	causeClassFault uint16 = 3
)

func makeCause(class uint16, code uint8) uint16 {
	return class<<12 | uint16(code)
}

// pushWord pushes a 16-bit value onto the architectural stack,
// pre-decrementing SP, mirroring the teacher's pushLong/pushWord pattern.
func pushWord(s *ArchState, val uint16) *FaultCode {
	target := s.SP - 2
	if !dataWriteAllowed(target) || target%2 != 0 {
		fc := FaultIllegalWrite
		return &fc
	}
	s.SP = target
	writeMem16(s, s.SP, val)
	return nil
}

func popWord(s *ArchState) (uint16, *FaultCode) {
	if !dataReadAllowed(s.SP) || s.SP%2 != 0 {
		fc := FaultIllegalRead
		return 0, &fc
	}
	val := readMem16(s, s.SP)
	s.SP += 2
	return val, nil
}

// dispatchVector performs the uniform trap/event/fault entry sequence
// (spec §4.4 steps 1-6). resumePC is the PC to push as the return address.
func dispatchVector(s *ArchState, class uint16, code uint8, vector uint16, resumePC uint16) *FaultCode {
	cause := makeCause(class, code)
	s.Cause = cause
	s.R[0] = cause & 0x00FF

	if fc := pushWord(s, resumePC); fc != nil {
		return fc
	}
	if fc := pushWord(s, s.Flags); fc != nil {
		return fc
	}
	if fc := pushWord(s, cause); fc != nil {
		return fc
	}

	s.Flags = maskFlags(s.Flags &^ FlagI)

	target := readMem16(s, vector)
	if !fetchAllowed(target) {
		fc := FaultInvalidFaultVector
		return &fc
	}
	s.PC = target
	s.RunState = RunStateHandlerContext
	return nil
}

// dispatchTrap enters the handler for a TRAP/SWI instruction retirement.
// resumePC is the address of the instruction following the trap.
func dispatchTrap(s *ArchState, code uint8, resumePC uint16) {
	if fc := dispatchVector(s, causeClassTrap, code, VecTrap, resumePC); fc != nil {
		enterDoubleFault(s, *fc)
		return
	}
	incrSaturating(&s.Diag.ClassCounters[counterTrapCount])
}

// dispatchEvent enters the handler for a dequeued event, sampled at an
// instruction boundary.
func dispatchEvent(s *ArchState, id uint16, resumePC uint16) {
	if fc := dispatchVector(s, causeClassEvent, uint8(id), VecEvent, resumePC); fc != nil {
		enterDoubleFault(s, *fc)
		return
	}
	incrSaturating(&s.Diag.ClassCounters[counterEventDispatchCount])
}

// dispatchFault enters the handler for an ordinary (non-budget) fault.
// This is the immediate, same-call, full-push-frame path (spec §4.4).
func dispatchFault(s *ArchState, code FaultCode, faultingPC uint16) {
	recordFault(s, code, faultingPC)
	logFault(code, faultingPC, s.Tick)
	if fc := dispatchVector(s, causeClassFault, uint8(code), VecFault, faultingPC); fc != nil {
		enterDoubleFault(s, *fc)
	}
}

// enterDoubleFault transitions to the terminal FaultLatched state. Reached
// when a fault occurs during dispatch prologue or VEC_FAULT resolves to an
// illegal fetch address (spec §4.4).
func enterDoubleFault(s *ArchState, code FaultCode) {
	recordFault(s, FaultDoubleFault, s.PC)
	logFault(FaultDoubleFault, s.PC, s.Tick)
	s.RunState = RunStateFaultLatched
	s.FaultCode = code
	s.Flags = maskFlags(s.Flags | FlagF)
}

// eret reverses the vectored entry push sequence (spec §4.4). It faults if
// the core is not currently in HandlerContext.
func eret(s *ArchState) *FaultCode {
	if s.RunState != RunStateHandlerContext {
		fc := FaultERETOutsideHandler
		return &fc
	}
	sp := s.SP
	cause, fc := popWord(s)
	if fc != nil {
		return fc
	}
	flags, fc2 := popWord(s)
	if fc2 != nil {
		s.SP = sp
		return fc2
	}
	pc, fc3 := popWord(s)
	if fc3 != nil {
		s.SP = sp
		return fc3
	}
	s.Cause = cause
	s.Flags = maskFlags(flags)
	s.PC = pc
	s.RunState = RunStateRunning
	return nil
}

// beginBudgetFaultRecovery performs the exceptional, deferred budget-fault
// entry (spec §4.4, §4.6). It does not use the normal push-frame path: it
// only latches diagnostics and arms HaltBudgetPending so that, at the next
// tick boundary, resumeAtTickBoundary redirects PC once. If the overrun
// happens while HaltBudgetRecovering is set, that reason is kept so the
// next tick boundary latches a double fault instead of redirecting again.
func beginBudgetFaultRecovery(s *ArchState, faultingPC uint16) {
	recordFault(s, FaultBudgetExceeded, faultingPC)
	s.RunState = RunStateHaltedForTick
	if s.HaltReason != HaltBudgetRecovering {
		s.HaltReason = HaltBudgetPending
	}
}

// resumeAtTickBoundary is called by host.go when a new tick begins. It
// grants fresh budget and, if a budget-fault redirect is owed, sets PC to
// mem16(VEC_FAULT) exactly once without a push frame.
func resumeAtTickBoundary(s *ArchState) {
	s.Tick = 0
	switch s.HaltReason {
	case HaltBudgetPending:
		target := readMem16(s, VecFault)
		if !fetchAllowed(target) {
			enterDoubleFault(s, FaultInvalidFaultVector)
			return
		}
		s.PC = target
		s.RunState = RunStateRunning
		s.HaltReason = HaltBudgetRecovering
	case HaltInstruction:
		s.RunState = RunStateRunning
		s.HaltReason = HaltNone
	case HaltBudgetRecovering:
		// The handler entered via a budget redirect itself overran its
		// fresh tick: a second budget fault in this state is terminal.
		enterDoubleFault(s, FaultBudgetExceeded)
	}
}
