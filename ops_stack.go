package core

// execJumpStack implements JMP, CALL, RET, PUSH, POP (spec §4.3
// Branch/jump and Stack classes).
func execJumpStack(s *ArchState, d Decoded, nextPC uint16) (StepOutcome, *FaultReason) {
	switch d.Op {
	case OpJMP:
		target := resolveDataAddress(s, d, nextPC)
		if !fetchAllowed(target) {
			return StepOutcome{}, &FaultReason{Code: FaultIllegalFetch}
		}
		s.PC = target

	case OpCALL:
		target := resolveDataAddress(s, d, nextPC)
		if !fetchAllowed(target) {
			return StepOutcome{}, &FaultReason{Code: FaultIllegalFetch}
		}
		if fc := pushWord(s, nextPC); fc != nil {
			return StepOutcome{}, &FaultReason{Code: *fc}
		}
		s.PC = target

	case OpRET:
		target, fc := popWord(s)
		if fc != nil {
			return StepOutcome{}, &FaultReason{Code: *fc}
		}
		s.PC = target

	case OpPUSH:
		if fc := pushWord(s, s.R[d.RD]); fc != nil {
			return StepOutcome{}, &FaultReason{Code: *fc}
		}
		s.PC = nextPC

	case OpPOP:
		val, fc := popWord(s)
		if fc != nil {
			return StepOutcome{}, &FaultReason{Code: *fc}
		}
		s.R[d.RD] = val
		s.PC = nextPC

	default:
		return StepOutcome{}, &FaultReason{Code: FaultIllegalEncoding}
	}

	return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil
}
