package core

import "math/bits"

// execMath implements MUL, MULH, DIV, MOD, QADD, QSUB, SCV (spec §4.3 Math
// helpers). DIV/MOD by zero is no-trap semantics: RD is set to 0, no fault.
func execMath(s *ArchState, d Decoded, nextPC uint16) (StepOutcome, *FaultReason) {
	a := s.R[d.RD]
	b := operandRA(s, d)

	switch d.Op {
	case OpMUL:
		_, lo := bits.Mul16(a, b)
		s.R[d.RD] = lo

	case OpMULH:
		sa, sb := int32(int16(a)), int32(int16(b))
		product := sa * sb
		s.R[d.RD] = uint16(uint32(product) >> 16)

	case OpDIV:
		if b == 0 {
			s.R[d.RD] = 0
		} else {
			s.R[d.RD] = a / b
		}

	case OpMOD:
		if b == 0 {
			s.R[d.RD] = 0
		} else {
			s.R[d.RD] = a % b
		}

	case OpQADD:
		result := saturatingAdd16(int16(a), int16(b))
		s.R[d.RD] = uint16(result)
		setFlagsZN(s, uint16(result))

	case OpQSUB:
		result := saturatingSub16(int16(a), int16(b))
		s.R[d.RD] = uint16(result)
		setFlagsZN(s, uint16(result))

	case OpSCV:
		// Saturating shift/convert: shift a left by b (0..15), clamping to
		// the signed 16-bit range instead of wrapping.
		result := saturatingShiftLeft16(int16(a), b&0xF)
		s.R[d.RD] = uint16(result)
		setFlagsZN(s, uint16(result))

	default:
		return StepOutcome{}, &FaultReason{Code: FaultIllegalEncoding}
	}

	s.PC = nextPC
	return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil
}

func saturatingAdd16(a, b int16) int16 {
	sum := int32(a) + int32(b)
	return clamp16(sum)
}

func saturatingSub16(a, b int16) int16 {
	diff := int32(a) - int32(b)
	return clamp16(diff)
}

func saturatingShiftLeft16(a int16, count uint16) int16 {
	v := int32(a)
	for i := uint16(0); i < count; i++ {
		v *= 2
		if v > 0x7FFF || v < -0x8000 {
			if a >= 0 {
				return 0x7FFF
			}
			return -0x8000
		}
	}
	return clamp16(v)
}

func clamp16(v int32) int16 {
	if v > 0x7FFF {
		return 0x7FFF
	}
	if v < -0x8000 {
		return -0x8000
	}
	return int16(v)
}
