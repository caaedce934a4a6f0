package core

// Flag bits (spec §3). Bits 6..15 always observe as 0.
const (
	FlagZ uint16 = 1 << 0 // zero
	FlagN uint16 = 1 << 1 // negative (bit 15 of result)
	FlagC uint16 = 1 << 2 // carry/borrow
	FlagV uint16 = 1 << 3 // signed overflow
	FlagI uint16 = 1 << 4 // events enabled
	FlagF uint16 = 1 << 5 // fault-latched

	flagsMask uint16 = 0x003F
)

// maskFlags clears bits 6..15. Every write to s.Flags should route through
// this so the always-zero invariant can't be violated incrementally.
func maskFlags(v uint16) uint16 {
	return v & flagsMask
}

const msb16 = 0x8000

// setFlagsAdd sets Z,N,C,V after an addition: result = a + b (16-bit).
func setFlagsAdd(s *ArchState, a, b, result uint16) {
	f := s.Flags &^ (FlagZ | FlagN | FlagC | FlagV)
	if result == 0 {
		f |= FlagZ
	}
	if result&msb16 != 0 {
		f |= FlagN
	}
	if (a^result)&(b^result)&msb16 != 0 {
		f |= FlagV
	}
	if uint32(a)+uint32(b) > 0xFFFF {
		f |= FlagC
	}
	s.Flags = maskFlags(f)
}

// setFlagsSub sets Z,N,C,V after a subtraction: result = a - b (16-bit).
// Shared by SUB and CMP; CMP discards the result, keeping only the flags.
func setFlagsSub(s *ArchState, a, b, result uint16) {
	f := s.Flags &^ (FlagZ | FlagN | FlagC | FlagV)
	if result == 0 {
		f |= FlagZ
	}
	if result&msb16 != 0 {
		f |= FlagN
	}
	if (a^b)&(a^result)&msb16 != 0 {
		f |= FlagV
	}
	if a < b {
		f |= FlagC // borrow
	}
	s.Flags = maskFlags(f)
}

// setFlagsLogical sets Z,N and clears C,V after a bitwise operation.
func setFlagsLogical(s *ArchState, result uint16) {
	f := s.Flags &^ (FlagZ | FlagN | FlagC | FlagV)
	if result == 0 {
		f |= FlagZ
	}
	if result&msb16 != 0 {
		f |= FlagN
	}
	s.Flags = maskFlags(f)
}

// setFlagsZN sets Z,N and clears C,V. Used by LOAD/IN and the saturating
// math helpers (QADD/QSUB/SCV), none of which define carry or overflow.
func setFlagsZN(s *ArchState, result uint16) {
	setFlagsLogical(s, result)
}

// setFlagsShift sets Z,N from result, clears V, and sets C to the last bit
// shifted out. A zero shift count leaves C unchanged.
func setFlagsShift(s *ArchState, result uint16, count uint16, carryOut bool) {
	f := s.Flags &^ (FlagZ | FlagN | FlagV)
	if count != 0 {
		f &^= FlagC
		if carryOut {
			f |= FlagC
		}
	}
	if result == 0 {
		f |= FlagZ
	}
	if result&msb16 != 0 {
		f |= FlagN
	}
	s.Flags = maskFlags(f)
}

// evalBranchCondition evaluates a conditional branch against current flags.
func evalBranchCondition(op Op, flags uint16) bool {
	z := flags&FlagZ != 0
	n := flags&FlagN != 0
	v := flags&FlagV != 0
	lt := n != v // signed less-than
	switch op {
	case OpBEQ:
		return z
	case OpBNE:
		return !z
	case OpBLT:
		return lt
	case OpBLE:
		return lt || z
	case OpBGT:
		return !lt && !z
	case OpBGE:
		return !lt
	default:
		return false
	}
}
