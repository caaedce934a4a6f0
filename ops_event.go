package core

// execEvent implements EWAIT, EGET, ERET (spec §4.3 Event class).
func execEvent(s *ArchState, d Decoded, nextPC uint16) (StepOutcome, *FaultReason) {
	switch d.Op {
	case OpEWAIT:
		if s.EventQueue.Empty() {
			// Stalls: PC unchanged, still retires and costs a cycle.
			return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil
		}
		s.PC = nextPC
		return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil

	case OpEGET:
		val, ok := s.EventQueue.Dequeue()
		if !ok {
			val = 0
		}
		s.R[d.RD] = val
		s.PC = nextPC
		return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil

	case OpERET:
		if fc := eret(s); fc != nil {
			return StepOutcome{}, &FaultReason{Code: *fc}
		}
		return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil
	}
	return StepOutcome{}, &FaultReason{Code: FaultIllegalEncoding}
}
