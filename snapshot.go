package core

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Snapshot wire format V1 (spec §6). Fixed field order, no padding:
//
//	magic(4) version(1)
//	r0..r7(16) pc(2) sp(2) flags(2) tick(2) cap(2) cause(2) evp(2)
//	run_state_tag(1) fault_code(1)
//	event_len(1) event_ids(4, padded with zero past event_len)
//	halt_reason(1)
//	diag: last_fault_code(2) last_fault_pc(2) last_fault_tick(2) retired(2) counters(32)
//	memory(65536)
//	checksum(8, xxhash64 of everything preceding)
const (
	snapshotMagic   uint32 = 0x43524531 // "CRE1"
	snapshotVersion uint8  = 1

	snapshotHeaderLen = 4 + 1
	snapshotRegsLen   = 16 + 2*7
	snapshotRunLen    = 1 + 1
	snapshotEventLen  = 1 + EventQueueCap
	snapshotHaltLen   = 1
	snapshotDiagLen   = 2 + 2 + 2 + 2 + 32
	snapshotMemLen    = MemSize
	snapshotChecksumLen = 8

	SnapshotSize = snapshotHeaderLen + snapshotRegsLen + snapshotRunLen +
		snapshotEventLen + snapshotHaltLen + snapshotDiagLen + snapshotMemLen + snapshotChecksumLen
)

// ExportSnapshot serializes s into the V1 wire format (spec §4.8/§6). The
// result is always exactly SnapshotSize bytes and round-trips byte-exact
// through ImportSnapshot.
func ExportSnapshot(s *ArchState) []byte {
	buf := make([]byte, SnapshotSize)
	be := binary.BigEndian
	off := 0

	be.PutUint32(buf[off:], snapshotMagic)
	off += 4
	buf[off] = snapshotVersion
	off++

	for i := 0; i < RegCount; i++ {
		be.PutUint16(buf[off:], s.R[i])
		off += 2
	}
	be.PutUint16(buf[off:], s.PC)
	off += 2
	be.PutUint16(buf[off:], s.SP)
	off += 2
	be.PutUint16(buf[off:], s.Flags)
	off += 2
	be.PutUint16(buf[off:], s.Tick)
	off += 2
	be.PutUint16(buf[off:], s.Cap)
	off += 2
	be.PutUint16(buf[off:], s.Cause)
	off += 2
	be.PutUint16(buf[off:], s.EVP)
	off += 2

	buf[off] = uint8(s.RunState)
	off++
	buf[off] = uint8(s.FaultCode)
	off++

	buf[off] = uint8(s.EventQueue.Len())
	off++
	for i := 0; i < EventQueueCap; i++ {
		if i < s.EventQueue.Len() {
			idx := (int(s.EventQueue.head) + i) % EventQueueCap
			buf[off] = byte(s.EventQueue.buf[idx])
		} else {
			buf[off] = 0
		}
		off++
	}

	buf[off] = uint8(s.HaltReason)
	off++

	be.PutUint16(buf[off:], uint16(s.Diag.LastFaultCode))
	off += 2
	be.PutUint16(buf[off:], s.Diag.LastFaultPC)
	off += 2
	be.PutUint16(buf[off:], s.Diag.LastFaultTick)
	off += 2
	be.PutUint16(buf[off:], s.Diag.Retired)
	off += 2
	for i := 0; i < 16; i++ {
		be.PutUint16(buf[off:], s.Diag.ClassCounters[i])
		off += 2
	}

	copy(buf[off:], s.Memory[:])
	off += MemSize

	checksum := xxhash.Sum64(buf[:off])
	be.PutUint64(buf[off:], checksum)

	return buf
}

// ImportSnapshot parses a V1 wire payload into a fresh ArchState. It
// rejects unknown versions, truncated buffers, checksum mismatches, and
// structurally invalid run-state tags (spec §4.8).
func ImportSnapshot(buf []byte) (*ArchState, error) {
	if len(buf) < SnapshotSize {
		return nil, ErrTruncatedSnapshot
	}
	be := binary.BigEndian

	magic := be.Uint32(buf[0:])
	if magic != snapshotMagic {
		return nil, ErrBadMagic
	}
	if buf[4] != snapshotVersion {
		return nil, ErrUnsupportedVersion
	}

	payloadLen := SnapshotSize - snapshotChecksumLen
	wantChecksum := be.Uint64(buf[payloadLen:])
	gotChecksum := xxhash.Sum64(buf[:payloadLen])
	if wantChecksum != gotChecksum {
		return nil, ErrChecksumMismatch
	}

	s := &ArchState{}
	off := 5

	for i := 0; i < RegCount; i++ {
		s.R[i] = be.Uint16(buf[off:])
		off += 2
	}
	s.PC = be.Uint16(buf[off:])
	off += 2
	s.SP = be.Uint16(buf[off:])
	off += 2
	s.Flags = maskFlags(be.Uint16(buf[off:]))
	off += 2
	s.Tick = be.Uint16(buf[off:])
	off += 2
	s.Cap = be.Uint16(buf[off:])
	off += 2
	s.Cause = be.Uint16(buf[off:])
	off += 2
	s.EVP = be.Uint16(buf[off:])
	off += 2

	runState := RunState(buf[off])
	off++
	if runState > RunStateFaultLatched {
		return nil, ErrInvalidRunState
	}
	s.RunState = runState
	s.FaultCode = FaultCode(buf[off])
	off++

	eventLen := int(buf[off])
	off++
	if eventLen > EventQueueCap {
		return nil, ErrInconsistentRecord
	}
	var q EventQueue
	for i := 0; i < EventQueueCap; i++ {
		if i < eventLen {
			q.Enqueue(uint16(buf[off]))
		}
		off++
	}
	s.EventQueue = q

	s.HaltReason = HaltReason(buf[off])
	off++

	s.Diag.LastFaultCode = FaultCode(be.Uint16(buf[off:]))
	off += 2
	s.Diag.LastFaultPC = be.Uint16(buf[off:])
	off += 2
	s.Diag.LastFaultTick = be.Uint16(buf[off:])
	off += 2
	s.Diag.Retired = be.Uint16(buf[off:])
	off += 2
	for i := 0; i < 16; i++ {
		s.Diag.ClassCounters[i] = be.Uint16(buf[off:])
		off += 2
	}

	copy(s.Memory[:], buf[off:off+MemSize])
	off += MemSize

	s.Profile = AuthorityProfile
	s.Profile.Cap = s.Cap

	return s, nil
}
