package tspsi

import "errors"

// Sentinel errors. Stream-shape errors encountered during best-effort
// metadata collection are logged and swallowed (spec.md §7); I/O errors
// always propagate to the caller.
var (
	// ErrPacketMustStartWithSyncByte is returned when neither byte 0 nor
	// byte 4 of a candidate packet is the 0x47 sync byte.
	ErrPacketMustStartWithSyncByte = errors.New("tspsi: packet must start with a sync byte")

	// ErrNotATransportStream marks a file shorter than one packet or with
	// no sync byte at offset 0 or 4. Open does not return it: such a file,
	// like one whose first validationPacketCount packets don't all parse,
	// is returned with IsValid()==false.
	ErrNotATransportStream = errors.New("tspsi: not a valid transport stream")

	// ErrMalformedPacket flags an adaptation field whose declared length,
	// or one of whose flagged sub-fields, doesn't fit inside the packet.
	ErrMalformedPacket = errors.New("tspsi: malformed packet")

	// ErrMalformedSection flags a PSI section header invariant violation
	// (bad section_syntax_indicator, hard_zero, table_id, or length).
	ErrMalformedSection = errors.New("tspsi: malformed PSI section")

	// ErrSectionOutOfOrder is returned by SectionAssembler.Append when the
	// incoming section_number isn't exactly one past the last one seen,
	// or last_section_number changed mid-stream.
	ErrSectionOutOfOrder = errors.New("tspsi: section arrived out of order")

	// ErrUnexpectedTableID is returned when a section's table_id doesn't
	// match what the caller expected to parse.
	ErrUnexpectedTableID = errors.New("tspsi: unexpected table ID")

	// ErrSectionNotComplete is returned by SectionAssembler.Finalize before
	// the section is fully reassembled, and by SectionAssembler.Append when
	// no section is in progress (before Parse, or after completion).
	ErrSectionNotComplete = errors.New("tspsi: section is not complete")

	// ErrCRC32Mismatch is returned when CRC32 validation is enabled and
	// the computed checksum doesn't match the trailing one.
	ErrCRC32Mismatch = errors.New("tspsi: computed CRC32 doesn't match section CRC32")
)
