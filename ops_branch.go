package core

// execBranch implements BEQ, BNE, BLT, BLE, BGT, BGE (spec §4.3
// Branch/jump: conditional branch class). The target is PC-relative,
// computed from the next-instruction address plus the decoded
// displacement, matching the addressing-mode rule for AM=101 (spec §4.3).
func execBranch(s *ArchState, d Decoded, nextPC uint16) (StepOutcome, *FaultReason) {
	taken := evalBranchCondition(d.Op, s.Flags)
	if taken {
		s.PC = resolveDataAddress(s, d, nextPC)
	} else {
		s.PC = nextPC
	}
	return StepOutcome{Kind: StepRetired, Cycles: cycleCost(d.Op, taken)}, nil
}
