package tspsi

import (
	"encoding/binary"
	"fmt"
)

// sectionHeaderSize is the fixed 8-byte PSI section header length.
const sectionHeaderSize = 8

// AssembledData is the tagged result of a completed SectionAssembler,
// dispatched by table kind instead of the virtual onComplete the
// original C++ source used (spec.md §9 design notes).
type AssembledData struct {
	Kind TableKind
	PID  uint16
	PAT  *PatInfo
	PMT  *PmtInfo
	CAT  *CatInfo
	TSDT *TsdtInfo
	NIT  *NitInfo
}

// SectionAssembler reassembles a PSI section that may span multiple TS
// packets. It owns the byte buffer it accumulates into; call Clear to
// release it (also safe to just drop the assembler).
type SectionAssembler struct {
	pid            uint16
	header         *PsiSectionHeader
	headerBytes    [sectionHeaderSize]byte // raw header, needed to recompute CRC32
	bytes          []byte                  // owned, grows to header.SectionLength-5 (content + trailing CRC32)
	validSize      int
	currentSection uint8
	crcEnabled     bool
	complete       bool
}

// NewSectionAssembler creates an assembler for the given PID. crcEnabled
// turns on the optional CRC32 validation described in spec.md §9.
func NewSectionAssembler(pid uint16, crcEnabled bool) *SectionAssembler {
	return &SectionAssembler{pid: pid, crcEnabled: crcEnabled}
}

// Complete reports whether the section has been fully reassembled.
func (s *SectionAssembler) Complete() bool {
	return s.complete
}

// Clear releases the owned buffer and resets the assembler so it can be
// reused for the next section on this PID.
func (s *SectionAssembler) Clear() {
	s.header = nil
	s.headerBytes = [sectionHeaderSize]byte{}
	s.bytes = nil
	s.validSize = 0
	s.currentSection = 0
	s.complete = false
}

// Parse begins reassembly from a payload whose payload_unit_start
// indicator was set. payload must still include the leading pointer
// field byte (and its filler bytes); the section header is located at
// payload[1+pointerField:]. expectedKind restricts which table kinds are
// accepted (pass TableKindUnknown to accept any table_id, classified or
// not; Finalize then rejects unclassified ones).
func (s *SectionAssembler) Parse(payload []byte, expectedKind TableKind) error {
	if len(payload) < 1 {
		return ErrMalformedSection
	}
	pointerField := int(payload[0])
	headerStart := 1 + pointerField
	if headerStart+sectionHeaderSize > len(payload) {
		return ErrMalformedSection
	}

	header, err := parsePsiSectionHeader(payload[headerStart:])
	if err != nil {
		return err
	}
	if expectedKind != TableKindUnknown && header.Kind != expectedKind {
		return ErrUnexpectedTableID
	}

	s.Clear()
	s.header = header
	copy(s.headerBytes[:], payload[headerStart:headerStart+sectionHeaderSize])

	bodyLen := int(header.SectionLength) - 5
	if bodyLen < 0 {
		return ErrMalformedSection
	}
	s.bytes = make([]byte, 0, bodyLen)

	bodyStart := headerStart + sectionHeaderSize
	available := len(payload) - bodyStart
	n := min(available, bodyLen)
	if n > 0 {
		s.bytes = append(s.bytes, payload[bodyStart:bodyStart+n]...)
	}
	s.validSize = n
	s.currentSection = header.SectionNumber

	if header.SectionNumber == header.LastSectionNumber && s.validSize == bodyLen {
		s.complete = true
	}
	return nil
}

// Append continues reassembly from a subsequent payload on the same PID,
// payload_unit_start_indicator clear. It is an error to call Append
// before Parse, after completion, or out of sequence.
func (s *SectionAssembler) Append(payload []byte) error {
	if s.header == nil || s.complete {
		return ErrSectionNotComplete
	}
	if s.currentSection >= s.header.LastSectionNumber {
		return ErrSectionOutOfOrder
	}

	// A continuation packet carries no pointer field; the header repeats
	// verbatim so we re-validate it to catch a desynced PID reassignment.
	if len(payload) < sectionHeaderSize {
		return ErrMalformedSection
	}
	header, err := parsePsiSectionHeader(payload)
	if err != nil {
		return err
	}
	if header.TableID != s.header.TableID {
		return ErrUnexpectedTableID
	}
	if header.SectionNumber != s.currentSection+1 {
		return ErrSectionOutOfOrder
	}
	if header.LastSectionNumber != s.header.LastSectionNumber {
		return ErrSectionOutOfOrder
	}

	bodyLen := int(s.header.SectionLength) - 5
	remaining := bodyLen - s.validSize
	bodyStart := sectionHeaderSize
	available := len(payload) - bodyStart
	n := min(available, remaining)
	if n > 0 {
		s.bytes = append(s.bytes, payload[bodyStart:bodyStart+n]...)
	}
	s.validSize += n
	s.currentSection = header.SectionNumber

	if s.currentSection == s.header.LastSectionNumber && s.validSize == bodyLen {
		s.complete = true
	}
	return nil
}

// Finalize dispatches the completed section to the table-specific
// parser by table kind and returns the resulting tagged data. It is an
// error to call Finalize before Complete reports true.
func (s *SectionAssembler) Finalize() (*AssembledData, error) {
	if !s.complete {
		return nil, ErrSectionNotComplete
	}
	if len(s.bytes) < 4 {
		return nil, ErrMalformedSection
	}

	// s.bytes is section_length-5 bytes: the real table content followed
	// by the section's trailing 4-byte CRC32. Split them apart here so
	// table parsers never see the CRC as if it were data.
	content := s.bytes[:len(s.bytes)-4]
	trailingCRC := binary.BigEndian.Uint32(s.bytes[len(s.bytes)-4:])

	if s.crcEnabled {
		if err := s.validateCRC32(content, trailingCRC); err != nil {
			return nil, err
		}
	}

	d := &AssembledData{Kind: s.header.Kind, PID: s.pid}
	switch s.header.Kind {
	case TableKindPAT:
		d.PAT = parsePatSection(content, s.header.TableIDExtension)
	case TableKindPMT:
		d.PMT = parsePmtSection(content, s.header.TableIDExtension)
	case TableKindCAT:
		d.CAT = parseCatSection(content)
	case TableKindTSDT:
		d.TSDT = parseTsdtSection(content)
	case TableKindNIT:
		d.NIT = parseNitSection(content, s.header.TableIDExtension)
	default:
		return nil, fmt.Errorf("%w: table_id 0x%02x", ErrUnexpectedTableID, s.header.TableID)
	}
	return d, nil
}

// validateCRC32 recomputes the section's CRC32 over the raw header bytes
// (table_id..last_section_number) plus content, and compares it against
// trailingCRC, the 4 bytes the section carried after its body.
func (s *SectionAssembler) validateCRC32(content []byte, trailingCRC uint32) error {
	buf := make([]byte, 0, sectionHeaderSize+len(content))
	buf = append(buf, s.headerBytes[:]...)
	buf = append(buf, content...)
	if computeCRC32(buf) != trailingCRC {
		return ErrCRC32Mismatch
	}
	return nil
}
