// Package core implements a deterministic 16-bit virtual CPU: a
// byte-identical instruction-set simulator built for reproducible
// execution across hosts.
//
// Every observable effect of the core is a pure function of an initial
// snapshot, the MMIO responses supplied by an external bus, and the event
// stream injected by the host. The core decodes and retires one
// instruction at a time in a fixed commit order, enforces a fixed 64 KiB
// memory map, dispatches traps/events/faults through vectors, meters
// cycles against a per-tick budget, and exposes snapshot/replay
// primitives. It performs no dynamic code generation, no floating point,
// no heap allocation on the execution path, and has no dependency on wall
// clock or host thread scheduling.
package core

import "go.uber.org/zap"

// RegCount is the number of general-purpose registers.
const RegCount = 8

// MemSize is the size of the flat byte-addressed memory image.
const MemSize = 65536

// EventQueueCap is the fixed capacity of the event queue.
const EventQueueCap = 4

// RunState is the run-state machine's current phase.
type RunState uint8

const (
	RunStateRunning RunState = iota
	RunStateHaltedForTick
	RunStateHandlerContext
	RunStateFaultLatched
)

func (r RunState) String() string {
	switch r {
	case RunStateRunning:
		return "running"
	case RunStateHaltedForTick:
		return "halted-for-tick"
	case RunStateHandlerContext:
		return "handler-context"
	case RunStateFaultLatched:
		return "fault-latched"
	default:
		return "unknown"
	}
}

// HaltReason refines RunStateHaltedForTick and also marks a running
// budget-fault handler (HaltBudgetRecovering). It is part of architectural
// state (not a transient flag) so it survives snapshot round trips: the
// resume behavior at the next tick boundary depends on it.
type HaltReason uint8

const (
	// HaltNone: no halt is in effect and no budget-fault recovery is in
	// progress.
	HaltNone HaltReason = iota
	// HaltInstruction: HALT retired; no vector redirect owed.
	HaltInstruction
	// HaltBudgetPending: a retirement crossed the tick budget; at the
	// next tick boundary PC must be redirected to VecFault once.
	HaltBudgetPending
	// HaltBudgetRecovering: the fault handler reached via a budget
	// redirect is now executing (RunState is Running) in its own fresh
	// tick. A second budget overrun while in this state is a double fault
	// (terminal), latched at the next tick boundary.
	HaltBudgetRecovering
)

// Profile selects reset defaults. Only one profile ("authority") exists in
// v0.1; the type exists so a second profile is a data addition, not a code
// change (spec §9 open question: reset defaults are profile-supplied).
type Profile struct {
	Name   string
	Cap    uint16
	Budget uint16
}

// AuthorityProfile is the only profile defined in v0.1: capability bits
// 0..3 set, a 640-cycle tick budget.
var AuthorityProfile = Profile{Name: "authority", Cap: 0x000F, Budget: 640}

// DiagBlock is the core-owned diagnostics latch, exposed read-only through
// the DIAG memory window (see diagnostics.go).
type DiagBlock struct {
	LastFaultCode FaultCode
	LastFaultPC   uint16
	LastFaultTick uint16
	Retired       uint16    // saturating
	ClassCounters [16]uint16 // saturating; see diagnostics.go for index layout
}

// ArchState is the sole mutable subject of execution. Every field here
// except Profile is covered by the snapshot wire format (snapshot.go);
// ImportSnapshot rebuilds Profile as AuthorityProfile with Cap taken from
// the CAP register.
type ArchState struct {
	R     [RegCount]uint16
	PC    uint16
	SP    uint16
	Flags uint16
	Tick  uint16
	Cap   uint16
	Cause uint16
	EVP   uint16

	EventQueue EventQueue

	RunState   RunState
	HaltReason HaltReason
	FaultCode  FaultCode // valid iff RunState == RunStateFaultLatched

	Memory [MemSize]byte

	Diag DiagBlock

	Profile Profile
}

// Logger is the package-level diagnostic logger. It is deliberately never
// invoked on the per-instruction hot path — only for faults and
// double-faults (logFault in host.go). Swap it
// with zap.NewNop() in contexts where even rare logging is undesirable.
var Logger = zap.NewNop()

// Reset fills s with the architectural defaults for the given profile. The
// memory image is left untouched — reset does not reload ROM or clear RAM
// (spec §3 lifecycle: "memory image persists across reset").
func Reset(s *ArchState, profile Profile) {
	s.R = [RegCount]uint16{}
	s.PC = 0x0000
	s.SP = ramMMIOBoundary
	s.Flags = 0x0000
	s.Tick = 0
	s.Cap = profile.Cap
	s.Cause = 0
	s.EVP = 0
	s.EventQueue = EventQueue{}
	s.RunState = RunStateRunning
	s.HaltReason = HaltNone
	s.FaultCode = 0
	s.Diag = DiagBlock{}
	s.Profile = profile
	// Memory is intentionally not cleared.
}

// NewArchState allocates a zero-valued state and resets it under the given
// profile. The returned memory image is all zeros; the host is expected to
// load a ROM image afterward.
func NewArchState(profile Profile) *ArchState {
	s := &ArchState{}
	Reset(s, profile)
	return s
}
