package tspsi

// PmtInfo is a fully parsed Program Map Table.
type PmtInfo struct {
	ProgramNumber          uint16 // the section's table_id_extension
	PCRPID                 uint16
	ProgramInfoDescriptors []byte // opaque program_info descriptor bytes
	Streams                []StreamInfo
}

// StreamInfo is one PMT elementary stream entry.
type StreamInfo struct {
	StreamType     uint8
	ElementaryPID  uint16
	ElementaryInfo []byte // opaque ES descriptor bytes
}

// parsePmtSection turns an assembled PMT section body into a PmtInfo.
// Layout: reserved(3)+PCR_PID(13), reserved(4)+program_info_length(12),
// program_info_descriptor bytes, then repeated stream entries:
// stream_type(8), reserved(3)+elementary_PID(13), reserved(4)+
// ES_info_length(12), ES descriptor bytes.
func parsePmtSection(body []byte, tableIDExtension uint16) *PmtInfo {
	info := &PmtInfo{ProgramNumber: tableIDExtension}
	if len(body) < 4 {
		return info
	}

	info.PCRPID = pid13At(body, 0)
	programInfoLength := int(u16BEAt(body, 2) & 0x0fff)
	offset := 4

	end := offset + programInfoLength
	if end > len(body) {
		end = len(body)
	}
	if end > offset {
		info.ProgramInfoDescriptors = append([]byte(nil), body[offset:end]...)
	}
	offset = end

	for offset+5 <= len(body) {
		streamType := body[offset]
		elementaryPID := pid13At(body, offset+1)
		esInfoLength := int(u16BEAt(body, offset+3) & 0x0fff)
		offset += 5

		esEnd := offset + esInfoLength
		if esEnd > len(body) {
			esEnd = len(body)
		}
		var esInfo []byte
		if esEnd > offset {
			esInfo = append([]byte(nil), body[offset:esEnd]...)
		}
		offset = esEnd

		info.Streams = append(info.Streams, StreamInfo{
			StreamType:     streamType,
			ElementaryPID:  elementaryPID,
			ElementaryInfo: esInfo,
		})
	}
	return info
}

// streamTypeNames holds the subset of ISO/IEC 13818-1 Table 2-34 (plus
// common ATSC/DVB extensions) this module labels by name. Stream types
// it doesn't recognize fall back to the ISO-reserved / user-private
// range rules in StreamTypeToString.
var streamTypeNames = map[uint8]string{
	0x01: "MPEG-1 Video",
	0x02: "MPEG-2 Video",
	0x03: "MPEG-1 Audio",
	0x04: "MPEG-2 Audio",
	0x05: "Private Section",
	0x06: "Private PES Data",
	0x0b: "DSM-CC",
	0x0f: "AAC Audio",
	0x10: "MPEG-4 Video",
	0x11: "LATM AAC Audio",
	0x1b: "H.264 Video",
	0x24: "HEVC Video",
	0x81: "A52/AC-3 Audio",
	0x82: "SCTE Subtitle",
	0x86: "SCTE-35 Splice Info",
	0x8a: "DTS Audio",
}

// StreamTypeToString labels a PMT stream_type byte, matching spec.md
// §4.4/§8's literal mappings: named types first, then the ISO
// 13818-1-reserved range [0x15,0x7F], then user-private (>=0x80),
// falling back to "Unknown" for anything else unlisted.
func StreamTypeToString(streamType uint8) string {
	if name, ok := streamTypeNames[streamType]; ok {
		return name
	}
	if streamType >= 0x15 && streamType <= 0x7f {
		return "ISO 13818-1 Reserved"
	}
	if streamType >= 0x80 {
		return "User Private"
	}
	return "Unknown"
}
