package tspsi

// buildTsPacketHeader builds a 4-byte TS packet header.
func buildTsPacketHeader(pusi bool, pid uint16, afc uint8, cc uint8) []byte {
	b := make([]byte, 4)
	b[0] = syncByte
	if pusi {
		b[1] |= 0x40
	}
	b[1] |= byte(pid >> 8 & 0x1f)
	b[2] = byte(pid & 0xff)
	b[3] = afc<<4 | cc&0xf
	return b
}

// buildTsPacket188 assembles a single 188-byte TS packet: header,
// optional adaptation field bytes, then payload padded to fill the
// packet (padding only applied when payload is shorter than the
// available payload space).
func buildTsPacket188(pusi bool, pid uint16, afc uint8, adaptationField, payload []byte) []byte {
	pkt := make([]byte, 0, 188)
	pkt = append(pkt, buildTsPacketHeader(pusi, pid, afc, 0)...)
	pkt = append(pkt, adaptationField...)
	remaining := 188 - len(pkt)
	body := make([]byte, remaining)
	for i := range body {
		body[i] = 0xff
	}
	copy(body, payload)
	pkt = append(pkt, body...)
	return pkt
}

// prefixTTS turns a 188-byte packet into a 192-byte TTS packet by
// prepending 4 opaque bytes.
func prefixTTS(pkt188 []byte, prefix [4]byte) []byte {
	out := make([]byte, 0, 192)
	out = append(out, prefix[:]...)
	out = append(out, pkt188...)
	return out
}

// patPayloadOneProgram is spec.md §8 scenario 1's literal PAT payload:
// transport_stream_id=1, one program (program_number=1, pmt_pid=0x0020).
var patPayloadOneProgram = []byte{
	0x00,                   // pointer_field
	0x00,                   // table_id = PAT
	0xb0, 0x0d,             // syntax indicator+reserved+section_length=13
	0x00, 0x01,             // table_id_extension (transport_stream_id) = 1
	0xc1,                   // reserved+version+current_next
	0x00,                   // section_number
	0x00,                   // last_section_number
	0x00, 0x01, 0xe0, 0x20, // program_number=1, pmt_pid=0x0020
	0x00, 0x00, 0x00, 0x00, // crc32 (not validated by default)
}

// pmtSectionBody is spec.md §8 scenario 3's literal PMT body:
// pcr_pid=0x100, streams {0x02 video on 0x101, 0x81 audio on 0x102}.
var pmtSectionBody = []byte{
	0xe1, 0x00, 0xf0, 0x00, // pcr_pid=0x100, program_info_length=0
	0x02, 0xe1, 0x01, 0xf0, 0x00, // stream_type=2, elementary_pid=0x101, es_info_length=0
	0x81, 0xe1, 0x02, 0xf0, 0x00, // stream_type=0x81, elementary_pid=0x102, es_info_length=0
}

// buildPmtPayload wraps pmtSectionBody in a full PSI section with the
// given program number (table_id_extension).
func buildPmtPayload(programNumber uint16) []byte {
	sectionLength := 5 + len(pmtSectionBody) + 4
	payload := []byte{
		0x00,      // pointer_field
		0x02,      // table_id = PMT
		0xb0 | byte(sectionLength>>8&0x0f), byte(sectionLength),
		byte(programNumber >> 8), byte(programNumber),
		0xc1,
		0x00,
		0x00,
	}
	payload = append(payload, pmtSectionBody...)
	payload = append(payload, 0x00, 0x00, 0x00, 0x00) // crc32
	return payload
}
