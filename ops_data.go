package core

// execData implements MOV, LOAD, STORE (spec §4.3 Data movement).
func execData(s *ArchState, mmio MMIOProvider, d Decoded, nextPC uint16) (StepOutcome, *FaultReason) {
	switch d.Op {
	case OpMOV:
		val := operandRA(s, d)
		s.R[d.RD] = val
		s.PC = nextPC
		return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil

	case OpLOAD:
		addr := resolveDataAddress(s, d, nextPC)
		if addr%2 != 0 {
			return StepOutcome{}, &FaultReason{Code: FaultUnalignedAccess}
		}
		if !dataReadAllowed(addr) {
			return StepOutcome{}, &FaultReason{Code: FaultIllegalRead}
		}
		val, fc := dataRead16(s, mmio, addr)
		if fc != nil {
			return StepOutcome{}, &FaultReason{Code: *fc}
		}
		s.R[d.RD] = val
		setFlagsZN(s, val)
		s.PC = nextPC
		return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil

	case OpSTORE:
		addr := resolveDataAddress(s, d, nextPC)
		if addr%2 != 0 {
			return StepOutcome{}, &FaultReason{Code: FaultUnalignedAccess}
		}
		if !dataWriteAllowed(addr) {
			return StepOutcome{}, &FaultReason{Code: FaultIllegalWrite}
		}
		val := s.R[d.RD]
		if fc := dataWrite16(s, mmio, addr, val); fc != nil {
			return StepOutcome{}, &FaultReason{Code: *fc}
		}
		s.PC = nextPC
		return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil
	}
	return StepOutcome{}, &FaultReason{Code: FaultIllegalEncoding}
}
