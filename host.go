package core

import "go.uber.org/zap"

// RunOutcome is the result of run_one (spec §4.9); TickBoundary covers the
// budget-exceeded deferred-dispatch case (spec §4.4/§4.6).
type RunOutcome uint8

const (
	RunTickBoundary RunOutcome = iota
	RunHalted
	RunFaultLatched
)

// EnqueueResult is the outcome of enqueue_event (spec §4.9).
type EnqueueResult uint8

const (
	EnqueueAccepted EnqueueResult = iota
	EnqueueOverflow
)

// TraceSink receives a stable record for every retirement, fault, and
// dispatch, in deterministic order (spec §4.9). Implementations must not
// affect architectural state. A nil sink disables tracing entirely,
// keeping the hot path allocation-free.
//
// The core fills PC (the program counter after the step), Cycles, and
// Fault. Op and MemoryAccesses are not filled in and are always zero. No
// record is emitted when the pre-fetch budget guard halts the core.
type TraceRecord struct {
	PC             uint16
	Op             Op
	Cycles         uint16
	MemoryAccesses int
	Fault          *FaultCode
}

type TraceSink interface {
	Trace(rec TraceRecord)
}

// EnqueueEvent appends an event ID to the queue (spec §4.5). Enqueue is
// always serialized against host calls; there is no in-step injection.
func EnqueueEvent(s *ArchState, id uint16) EnqueueResult {
	if s.EventQueue.Enqueue(id) {
		return EnqueueAccepted
	}
	return EnqueueOverflow
}

// StepOne advances the core by exactly one instruction-boundary action:
// a latched-fault no-op, a halted-for-tick no-op, a vectored event
// dispatch, or one instruction fetch/decode/execute/commit (spec §4.3,
// §5 boundary precedence). trace may be nil.
func StepOne(s *ArchState, mmio MMIOProvider, trace TraceSink) StepOutcome {
	if s.RunState == RunStateHaltedForTick {
		// step_one is a standalone host primitive (spec §4.9), not merely an
		// internal helper of run_one: a host single-stepping exclusively
		// through StepOne must be able to cross a tick boundary on its own.
		resumeAtTickBoundary(s)
	}

	switch s.RunState {
	case RunStateFaultLatched:
		return StepOutcome{Kind: StepFault, Fault: s.FaultCode}

	case RunStateHaltedForTick:
		// resumeAtTickBoundary above leaves HaltedForTick for every
		// HaltReason it handles (HaltInstruction and HaltBudgetPending
		// resume; HaltBudgetRecovering latches a double fault). This case
		// is reached only for a HaltReason it does not handle, such as
		// HaltNone in an imported snapshot.
		return StepOutcome{Kind: StepHalted}
	}

	// No budget remains for a new instruction this tick: block the fetch
	// entirely rather than let it retire and then fault (spec §8 budget
	// cross scenario: the instruction immediately after an exact-budget
	// retirement does not retire in that tick).
	if s.Tick >= s.Profile.Budget {
		beginBudgetFaultRecovery(s, s.PC)
		return StepOutcome{Kind: StepHalted}
	}

	// Event dispatch takes priority over fetching the next instruction
	// only when sampled at this boundary: FLAGS.I set and queue non-empty.
	if s.Flags&FlagI != 0 && !s.EventQueue.Empty() {
		id, _ := s.EventQueue.Dequeue()
		dispatchEvent(s, id, s.PC)
		s.Tick += dispatchEntryCost
		outcome := StepOutcome{Kind: StepEventDispatch, Cycles: dispatchEntryCost, ID: id}
		emitTrace(trace, s, outcome, nil)
		return outcome
	}

	pc := s.PC
	if !fetchAllowed(pc) {
		return faultAtBoundary(s, mmio, trace, FaultIllegalFetch, pc, 0)
	}
	word := readMem16(s, pc)

	d, nextPC, reason := decode(s, word, pc)
	if reason != nil {
		// Decode never learns d.Op on a reserved/illegal encoding, so there
		// is no faulting instruction's own cost to add (spec §4.6).
		return faultAtBoundary(s, mmio, trace, reason.Code, pc, 0)
	}

	outcome, reason := executeInstruction(s, mmio, d, pc, nextPC)
	if reason != nil {
		// Execute-time fault: charge dispatch entry plus the faulting
		// instruction's own base cost (spec §4.6: "5 (fault: +base cost of
		// faulting instruction)").
		return faultAtBoundary(s, mmio, trace, reason.Code, pc, cycleCost(d.Op, false))
	}

	if outcome.Kind == StepRetired || outcome.Kind == StepHalted {
		incrSaturating(&s.Diag.Retired)
	}

	newTick := s.Tick + outcome.Cycles
	if newTick > s.Profile.Budget {
		s.Tick = newTick
		beginBudgetFaultRecovery(s, pc)
	} else {
		s.Tick = newTick
	}

	emitTrace(trace, s, outcome, nil)
	return outcome
}

// faultAtBoundary dispatches an immediate (non-budget) fault and charges its
// cost: the flat dispatch-entry cost plus, for execute-time faults, the
// faulting instruction's own base cost (baseCost is 0 for decode-time
// faults, which never reach execution).
func faultAtBoundary(s *ArchState, mmio MMIOProvider, trace TraceSink, code FaultCode, pc uint16, baseCost uint16) StepOutcome {
	dispatchFault(s, code, pc)
	cost := dispatchEntryCost + baseCost
	if s.RunState != RunStateFaultLatched {
		s.Tick += cost
	}
	outcome := StepOutcome{Kind: StepFault, Fault: code, Cycles: cost}
	emitTrace(trace, s, outcome, &code)
	return outcome
}

func emitTrace(trace TraceSink, s *ArchState, outcome StepOutcome, fault *FaultCode) {
	if trace == nil {
		return
	}
	trace.Trace(TraceRecord{
		PC:     s.PC,
		Cycles: outcome.Cycles,
		Fault:  fault,
	})
}

// RunOne advances the core until the earliest of {tick boundary, HALT
// retirement, FaultLatched transition} (spec §4.9, §5). If the core was
// left HaltedForTick by the previous call, the first StepOne call below
// grants a fresh tick (and performs a deferred budget-fault redirect if
// one is owed) before stepping.
func RunOne(s *ArchState, mmio MMIOProvider, trace TraceSink) RunOutcome {
	for {
		if s.RunState == RunStateFaultLatched {
			return RunFaultLatched
		}
		StepOne(s, mmio, trace)
		switch {
		case s.RunState == RunStateFaultLatched:
			return RunFaultLatched
		case s.RunState == RunStateHaltedForTick && s.HaltReason == HaltInstruction:
			return RunHalted
		case s.RunState == RunStateHaltedForTick && s.HaltReason == HaltBudgetPending:
			return RunTickBoundary
		}
	}
}

// logFault is invoked from dispatch.go's fault and double-fault paths via Logger
// (core.go); kept here as the single call site that ever touches the
// package logger outside tests.
func logFault(code FaultCode, pc uint16, tick uint16) {
	Logger.Warn("core: fault dispatched",
		zap.String("code", code.String()),
		zap.Uint16("pc", pc),
		zap.Uint16("tick", tick),
	)
}
