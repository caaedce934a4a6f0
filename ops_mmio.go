package core

// execMMIO implements IN, OUT, BSET, BCLR, BTEST (spec §4.3 MMIO class).
// Unlike LOAD/STORE, these always target the MMIO bus: a resolved address
// outside the MMIO region, or an odd MMIO address, is FaultMMIOWidth
// rather than the generic alignment/illegal-access faults.
func execMMIO(s *ArchState, mmio MMIOProvider, d Decoded, nextPC uint16) (StepOutcome, *FaultReason) {
	addr := resolveDataAddress(s, d, nextPC)
	if regionFor(addr) != RegionMMIO || addr%2 != 0 {
		return StepOutcome{}, &FaultReason{Code: FaultMMIOWidth}
	}

	switch d.Op {
	case OpIN:
		val, err := mmio.Read16(addr)
		if err != nil {
			return StepOutcome{}, &FaultReason{Code: FaultMMIOAdapterError}
		}
		s.R[d.RD] = val
		setFlagsZN(s, val)

	case OpOUT:
		val := s.R[d.RD]
		result, err := mmio.Write16(addr, val)
		if err != nil {
			return StepOutcome{}, &FaultReason{Code: FaultMMIOAdapterError}
		}
		if result == MMIODeniedSuppressed {
			incrSaturating(&s.Diag.ClassCounters[counterMMIODenied])
		}

	case OpBSET, OpBCLR, OpBTEST:
		cur, err := mmio.Read16(addr)
		if err != nil {
			return StepOutcome{}, &FaultReason{Code: FaultMMIOAdapterError}
		}
		bit := s.R[d.RD] & 0x000F
		mask := uint16(1) << bit

		switch d.Op {
		case OpBTEST:
			if cur&mask != 0 {
				s.Flags = maskFlags(s.Flags | FlagZ)
			} else {
				s.Flags = maskFlags(s.Flags &^ FlagZ)
			}

		case OpBSET:
			result, werr := mmio.Write16(addr, cur|mask)
			if werr != nil {
				return StepOutcome{}, &FaultReason{Code: FaultMMIOAdapterError}
			}
			if result == MMIODeniedSuppressed {
				incrSaturating(&s.Diag.ClassCounters[counterMMIODenied])
			}

		case OpBCLR:
			result, werr := mmio.Write16(addr, cur&^mask)
			if werr != nil {
				return StepOutcome{}, &FaultReason{Code: FaultMMIOAdapterError}
			}
			if result == MMIODeniedSuppressed {
				incrSaturating(&s.Diag.ClassCounters[counterMMIODenied])
			}
		}

	default:
		return StepOutcome{}, &FaultReason{Code: FaultIllegalEncoding}
	}

	s.PC = nextPC
	return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, false)}, nil
}
