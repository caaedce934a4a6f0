package core

// execControl implements NOP, SYNC, HALT, TRAP, SWI (spec §4.3 Control).
func execControl(s *ArchState, d Decoded, faultPC uint16, nextPC uint16) (StepOutcome, *FaultReason) {
	switch d.Op {
	case OpNOP:
		s.PC = nextPC
		return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil

	case OpSYNC:
		// The core has no internal asynchrony to flush; SYNC's barrier is
		// a statement about MMIO provider visibility, which is already
		// total at every step_one boundary.
		s.PC = nextPC
		return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil

	case OpHALT:
		s.PC = nextPC
		s.RunState = RunStateHaltedForTick
		s.HaltReason = HaltInstruction
		return StepOutcome{Kind: StepHalted, Cycles: cycleCost(d.Op, false)}, nil

	case OpTRAP:
		code := uint8(s.R[d.RD] & 0xFF)
		s.PC = nextPC
		dispatchTrap(s, code, nextPC)
		return StepOutcome{Kind: StepTrap, Cycles: cycleCost(d.Op, false) + dispatchEntryCost, ID: uint16(code)}, nil

	case OpSWI:
		code := uint8(d.Ext16 & 0xFF)
		s.PC = nextPC
		dispatchTrap(s, code, nextPC)
		return StepOutcome{Kind: StepTrap, Cycles: cycleCost(d.Op, false) + dispatchEntryCost, ID: uint16(code)}, nil
	}
	return StepOutcome{}, &FaultReason{Code: FaultIllegalEncoding}
}
