package tspsi

import "fmt"

// Scrambling controls (transport_scrambling_control, 2 bits).
const (
	ScramblingControlNotScrambled         = 0
	ScramblingControlReservedForFutureUse = 1
	ScramblingControlScrambledWithEvenKey = 2
	ScramblingControlScrambledWithOddKey  = 3
)

// syncByte is the mandatory first byte of every TS packet header.
const syncByte = 0x47

// Packet sizes this module understands: plain TS, and TTS ("timestamped
// TS") which prefixes every 188-byte TS packet with 4 opaque bytes.
const (
	PacketSize188 = 188
	PacketSize192 = 192
)

// TsPacket is a parsed view over one 188- or 192-byte packet. It borrows
// its Bytes slice and must not outlive it; call Copy on the owning
// TsFile if you need an owned snapshot.
type TsPacket struct {
	Bytes           []byte // the full packet, including any 4-byte TTS prefix
	StartOffset     int    // 0 for 188-byte packets, 4 for 192-byte (TTS) packets
	PacketSize      int    // 188 or 192
	Header          PacketHeader
	AdaptationField *AdaptationField // nil when HasAdaptationField is false

	payloadOffset int
	payloadSize   int
}

// PacketHeader is the fixed 4-byte TS packet header.
type PacketHeader struct {
	TransportErrorIndicator    bool
	PayloadUnitStartIndicator  bool
	TransportPriority          bool
	PID                        uint16 // 13 bits
	TransportScramblingControl uint8  // 2 bits
	AdaptationFieldControl     uint8  // 2 bits: bit1=has AF, bit0=has payload
	ContinuityCounter          uint8  // 4 bits
}

// HasAdaptationField reports adaptation_field_control bit 1.
func (h PacketHeader) HasAdaptationField() bool {
	return h.AdaptationFieldControl&0b10 != 0
}

// HasPayload reports adaptation_field_control bit 0.
func (h PacketHeader) HasPayload() bool {
	return h.AdaptationFieldControl&0b01 != 0
}

// ParseTsPacket parses one packet out of bs, which must be exactly 188 or
// 192 bytes (the caller -- typically TsFile -- is responsible for slicing
// out one packet at a time; autodetection of which size a *stream* uses
// lives in detectPacketSize).
func ParseTsPacket(bs []byte) (*TsPacket, error) {
	if len(bs) != PacketSize188 && len(bs) != PacketSize192 {
		return nil, fmt.Errorf("tspsi: packet buffer must be %d or %d bytes, got %d", PacketSize188, PacketSize192, len(bs))
	}

	p := &TsPacket{Bytes: bs, PacketSize: len(bs)}
	if bs[0] == syncByte {
		p.StartOffset = 0
	} else if len(bs) >= 5 && bs[4] == syncByte {
		p.StartOffset = 4
	} else {
		return nil, ErrPacketMustStartWithSyncByte
	}

	r := NewByteReader(bs)
	r.Seek(p.StartOffset)
	if _, err := r.NextByte(); err != nil { // consume the sync byte itself
		return nil, ErrPacketMustStartWithSyncByte
	}
	flagsByte, err := r.NextByte()
	if err != nil {
		return nil, ErrPacketMustStartWithSyncByte
	}
	pidLowByte, err := r.NextByte()
	if err != nil {
		return nil, ErrPacketMustStartWithSyncByte
	}
	controlByte, err := r.NextByte()
	if err != nil {
		return nil, ErrPacketMustStartWithSyncByte
	}

	p.Header = PacketHeader{
		TransportErrorIndicator:    bits(flagsByte, 7, 1) != 0,
		PayloadUnitStartIndicator:  bits(flagsByte, 6, 1) != 0,
		TransportPriority:          bits(flagsByte, 5, 1) != 0,
		PID:                        uint16(bits(flagsByte, 0, 5))<<8 | uint16(pidLowByte),
		TransportScramblingControl: bits(controlByte, 6, 2),
		AdaptationFieldControl:     bits(controlByte, 4, 2),
		ContinuityCounter:          bits(controlByte, 0, 4),
	}

	if p.Header.HasAdaptationField() {
		afOffset := p.StartOffset + 4
		af, err := parseAdaptationField(bs[afOffset:])
		if err != nil {
			return nil, err
		}
		p.AdaptationField = af
	}

	p.payloadOffset = p.StartOffset + 4
	if p.Header.HasAdaptationField() {
		p.payloadOffset += 1 + p.AdaptationField.Length
	}
	if p.Header.HasPayload() && p.payloadOffset <= len(bs) {
		p.payloadSize = len(bs) - p.payloadOffset
	}
	return p, nil
}

// PayloadOffset returns the byte offset of the payload within Bytes.
// Meaningless (but still computed) when HasPayload is false.
func (p *TsPacket) PayloadOffset() int {
	return p.payloadOffset
}

// PayloadSize returns the payload length in bytes, 0 when HasPayload is
// false or the adaptation field consumed the entire packet.
func (p *TsPacket) PayloadSize() int {
	return p.payloadSize
}

// Payload returns the payload sub-slice, or nil if the packet carries
// none.
func (p *TsPacket) Payload() []byte {
	if !p.Header.HasPayload() || p.payloadSize <= 0 {
		return nil
	}
	return p.Bytes[p.payloadOffset : p.payloadOffset+p.payloadSize]
}
