package core

// Decoded is the decoder's successful output (spec §4.1).
type Decoded struct {
	Op    Op
	RD    uint8
	RA    uint8
	Sub   uint8
	AM    uint8
	Ext16 uint16
	HasExt bool
}

// Addressing-mode field values (spec §4.3). 110 and 111 are always illegal.
const (
	amFieldDirect    uint8 = 0b000
	amFieldIndirect  uint8 = 0b001
	amFieldDisp8     uint8 = 0b010
	amFieldAbsolute  uint8 = 0b011
	amFieldImmediate uint8 = 0b100
	amFieldPCRel     uint8 = 0b101
)

// opClass groups ops that share addressing-mode / operand legality rules.
type opClass uint8

const (
	classControl opClass = iota
	classData
	classALU
	classMath
	classBranch
	classJumpStack
	classMMIO
	classEvent
)

func classOf(op Op) opClass {
	switch op {
	case OpNOP, OpSYNC, OpHALT, OpTRAP, OpSWI:
		return classControl
	case OpMOV, OpLOAD, OpSTORE:
		return classData
	case OpADD, OpSUB, OpAND, OpOR, OpXOR, OpSHL, OpSHR, OpCMP:
		return classALU
	case OpMUL, OpMULH, OpDIV, OpMOD, OpQADD, OpQSUB, OpSCV:
		return classMath
	case OpBEQ, OpBNE, OpBLT, OpBLE, OpBGT, OpBGE:
		return classBranch
	case OpJMP, OpCALL, OpRET, OpPUSH, OpPOP:
		return classJumpStack
	case OpIN, OpOUT, OpBSET, OpBCLR, OpBTEST:
		return classMMIO
	default: // classEvent: OpEWAIT, OpEGET, OpERET
		return classEvent
	}
}

// amRequiresExtension reports whether AM requires fetching one extension
// word: disp8, absolute, immediate, and PC-relative all carry one;
// direct and register-indirect carry none.
func amRequiresExtension(am uint8) bool {
	switch am {
	case amFieldDisp8, amFieldAbsolute, amFieldImmediate, amFieldPCRel:
		return true
	default:
		return false
	}
}

// amAllowedFor reports whether AM is a legal addressing mode for op's
// class. SWI takes only the immediate form; JMP/CALL take indirect,
// absolute, or disp8; ALU ops take direct (register) or immediate;
// branches take only PC-relative; data, math, and MMIO ops accept every
// defined mode. The remaining event, control, and RET/PUSH/POP
// instructions encode their operands directly in RD/RA/SUB and do not
// carry an AM-based effective address at all; for them only AM=0 (direct)
// is legal, i.e. the field must be zeroed like any other unused field.
func amAllowedFor(op Op, am uint8) bool {
	if am == 0b110 || am == 0b111 {
		return false
	}
	switch op {
	case OpSWI:
		return am == amFieldImmediate
	case OpJMP, OpCALL:
		return am == amFieldIndirect || am == amFieldAbsolute || am == amFieldDisp8
	}
	switch classOf(op) {
	case classData, classMath, classMMIO:
		return true
	case classALU:
		return am == amFieldDirect || am == amFieldImmediate
	case classBranch:
		// Branches take a PC-relative displacement only.
		return am == amFieldPCRel
	default:
		return am == amFieldDirect
	}
}

// reservedFieldOK enforces the "unused register field must be zero" rule
// (FaultIllegalReservedField) for ops whose RD is not a general operand
// register.
func reservedFieldOK(op Op, rd uint8) bool {
	switch op {
	case OpNOP, OpSYNC, OpHALT, OpSWI, OpJMP, OpCALL, OpRET:
		return rd == 0
	default:
		return true
	}
}

// decode consumes the primary word at pc (already fetch-legality checked by
// the caller) plus, conditionally, one extension word. It returns the
// address immediately following the consumed words (nextPC) without
// mutating any architectural state — a fault discovered here must leave
// s.PC untouched so the precise-fault guarantee holds.
func decode(s *ArchState, word uint16, pc uint16) (Decoded, uint16, *FaultReason) {
	opField := uint8(word>>12) & 0xF
	rd := uint8(word>>9) & 0x7
	ra := uint8(word>>6) & 0x7
	sub := uint8(word>>3) & 0x7
	am := uint8(word) & 0x7

	op, valid := classify(opField, sub)
	if !valid {
		return Decoded{}, pc, &FaultReason{Code: FaultIllegalEncoding}
	}

	if !amAllowedFor(op, am) {
		return Decoded{}, pc, &FaultReason{Code: FaultIllegalAddressingMode}
	}

	// Reserved-field check: classes that don't consume RA as an operand
	// require it to be zero. Math's SUB field is fully consumed selecting
	// the op itself, so RA is math's second-operand register (spec §4.3)
	// and is exempt here. JMP/CALL read RA for effective-address
	// computation; RET/PUSH/POP don't and are checked per-op below.
	switch classOf(op) {
	case classControl, classALU, classBranch, classEvent:
		if ra != 0 {
			return Decoded{}, pc, &FaultReason{Code: FaultIllegalReservedField}
		}
	case classJumpStack:
		switch op {
		case OpRET, OpPUSH, OpPOP:
			if ra != 0 {
				return Decoded{}, pc, &FaultReason{Code: FaultIllegalReservedField}
			}
		}
	}
	if !reservedFieldOK(op, rd) {
		return Decoded{}, pc, &FaultReason{Code: FaultIllegalReservedField}
	}

	d := Decoded{Op: op, RD: rd, RA: ra, Sub: sub, AM: am}
	next := pc + 2

	if amRequiresExtension(am) {
		if !fetchAllowed(next) {
			return Decoded{}, pc, &FaultReason{Code: FaultIllegalFetch}
		}
		ext := readMem16(s, next)
		if am == amFieldDisp8 {
			hi := byte(ext >> 8)
			lo := byte(ext)
			signExpected := byte(0x00)
			if lo&0x80 != 0 {
				signExpected = 0xFF
			}
			if hi != signExpected {
				return Decoded{}, pc, &FaultReason{Code: FaultSignExtensionViolation}
			}
		}
		d.Ext16 = ext
		d.HasExt = true
		next += 2
	}

	return d, next, nil
}
