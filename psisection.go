package tspsi

// PSI table IDs this module classifies. Anything else is reported as
// TableKindUnknown and is not a candidate for section assembly.
const (
	TableIDPAT         uint8 = 0x00
	TableIDCAT         uint8 = 0x01
	TableIDPMT         uint8 = 0x02
	TableIDTSDT        uint8 = 0x03
	TableIDNITActual   uint8 = 0x40
	TableIDNITOther    uint8 = 0x41
	TableIDForbidden   uint8 = 0xff
	maxSectionLength          = 0x3fd // 1021, section_length must be strictly less
)

// TableKind classifies a section header's table_id into the shells this
// module understands.
type TableKind int

// TableKind values.
const (
	TableKindUnknown TableKind = iota
	TableKindPAT
	TableKindCAT
	TableKindPMT
	TableKindTSDT
	TableKindNIT
)

// classifyTableID maps a raw table_id byte to a TableKind.
func classifyTableID(tableID uint8) TableKind {
	switch tableID {
	case TableIDPAT:
		return TableKindPAT
	case TableIDCAT:
		return TableKindCAT
	case TableIDPMT:
		return TableKindPMT
	case TableIDTSDT:
		return TableKindTSDT
	case TableIDNITActual, TableIDNITOther:
		return TableKindNIT
	default:
		return TableKindUnknown
	}
}

// PsiSectionHeader is the 8-byte header every syntactic PSI section
// begins with, immediately following the pointer field (when present).
type PsiSectionHeader struct {
	TableID                uint8
	Kind                   TableKind
	SectionSyntaxIndicator bool
	SectionLength          uint16 // 12 bits, < maxSectionLength
	TableIDExtension       uint16
	VersionNumber          uint8 // 5 bits
	CurrentNextIndicator   bool
	SectionNumber          uint8
	LastSectionNumber      uint8
}

// parsePsiSectionHeader validates and parses the 8-byte section header
// starting at bs[0]. It enforces section_syntax_indicator==1, the
// hard-zero reserved bit, table_id!=0xFF, and section_length<0x3FD, per
// spec.md §4.2. On any violation it returns ErrMalformedSection and the
// payload should be treated as not-a-section.
func parsePsiSectionHeader(bs []byte) (*PsiSectionHeader, error) {
	r := NewByteReader(bs)
	header, err := r.NextBytesNoCopy(sectionHeaderSize)
	if err != nil {
		return nil, ErrMalformedSection
	}

	tableID := header[0]
	if tableID == TableIDForbidden {
		return nil, ErrMalformedSection
	}

	sectionSyntaxIndicator := bits(header[1], 7, 1) != 0
	hardZero := bits(header[1], 6, 1) != 0
	if !sectionSyntaxIndicator || hardZero {
		return nil, ErrMalformedSection
	}

	sectionLength := uint16(bits(header[1], 0, 4))<<8 | uint16(header[2])
	if sectionLength >= maxSectionLength {
		return nil, ErrMalformedSection
	}

	h := &PsiSectionHeader{
		TableID:                tableID,
		Kind:                   classifyTableID(tableID),
		SectionSyntaxIndicator: sectionSyntaxIndicator,
		SectionLength:          sectionLength,
		TableIDExtension:       uint16(header[3])<<8 | uint16(header[4]),
		VersionNumber:          bits(header[5], 1, 5),
		CurrentNextIndicator:   bits(header[5], 0, 1) != 0,
		SectionNumber:          header[6],
		LastSectionNumber:      header[7],
	}
	return h, nil
}
