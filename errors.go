package core

import "github.com/pkg/errors"

// FaultCode is an 8-bit guest fault identifier (spec §6). DIV/MOD by zero
// is deliberately not represented here: it is no-trap semantics (RD=0),
// never a fault.
type FaultCode uint8

const (
	FaultIllegalEncoding FaultCode = iota
	FaultIllegalAddressingMode
	FaultIllegalReservedField
	FaultSignExtensionViolation
	FaultIllegalFetch
	FaultIllegalWrite
	FaultIllegalRead
	FaultUnalignedAccess
	FaultMMIOWidth
	FaultMMIOAdapterError
	FaultEventQueueOverflow
	FaultBudgetExceeded
	FaultERETOutsideHandler
	FaultDoubleFault
	FaultInvalidFaultVector

	faultCodeCount // sentinel; keep last
)

func (f FaultCode) String() string {
	switch f {
	case FaultIllegalEncoding:
		return "illegal_encoding"
	case FaultIllegalAddressingMode:
		return "illegal_addressing_mode"
	case FaultIllegalReservedField:
		return "illegal_reserved_field"
	case FaultSignExtensionViolation:
		return "sign_ext_violation"
	case FaultIllegalFetch:
		return "illegal_fetch"
	case FaultIllegalWrite:
		return "illegal_write"
	case FaultIllegalRead:
		return "illegal_read"
	case FaultUnalignedAccess:
		return "unaligned_access"
	case FaultMMIOWidth:
		return "mmio_width"
	case FaultMMIOAdapterError:
		return "mmio_adapter_error"
	case FaultEventQueueOverflow:
		return "event_queue_overflow"
	case FaultBudgetExceeded:
		return "budget_exceeded"
	case FaultERETOutsideHandler:
		return "eret_outside_handler"
	case FaultDoubleFault:
		return "double_fault"
	case FaultInvalidFaultVector:
		return "invalid_fault_vector"
	default:
		return "unknown_fault"
	}
}

// FaultReason is the decode/execute-time carrier for a guest fault before
// it is latched and dispatched.
type FaultReason struct {
	Code FaultCode
}

// Host API error kinds (spec §7, plane 1). These are returned as plain
// errors wrapped with github.com/pkg/errors for caller context; they are
// never raised as guest faults and never panic.
var (
	ErrBadMagic           = errors.New("core: snapshot magic mismatch")
	ErrUnsupportedVersion = errors.New("core: unsupported snapshot version")
	ErrTruncatedSnapshot  = errors.New("core: snapshot buffer too short")
	ErrChecksumMismatch   = errors.New("core: snapshot checksum mismatch")
	ErrInconsistentRecord = errors.New("core: snapshot sub-record inconsistent")
	ErrInvalidRunState    = errors.New("core: snapshot run-state tag invalid")
	ErrIllegalProfile     = errors.New("core: illegal reset profile")
)
