package tspsi

// AdaptationField is the optional adaptation field carried by a TS packet
// whose adaptation_field_control bit 1 is set. Layout: a length byte,
// then (if length>0) a flags byte and the conditional sub-fields it
// selects, padded to Length with 0xFF stuffing bytes.
type AdaptationField struct {
	Length int // 0..183

	DiscontinuityIndicator            bool
	RandomAccessIndicator             bool
	ElementaryStreamPriorityIndicator bool
	HasPCR                            bool
	HasOPCR                           bool
	HasSplicingCountdown              bool
	HasTransportPrivateData           bool
	HasAdaptationExtensionField       bool

	PCR  *ClockReference
	OPCR *ClockReference

	// SpliceCountdown is a two's-complement signed byte: the number of
	// TS packets from this one a splicing point occurs, possibly negative.
	SpliceCountdown int

	TransportPrivateDataLength int
	TransportPrivateData       []byte

	AdaptationExtensionField *AdaptationFieldExtension
}

// AdaptationFieldExtension is the optional extension field nested inside
// an AdaptationField.
type AdaptationFieldExtension struct {
	Length int

	HasLegalTimeWindow bool
	HasPiecewiseRate   bool
	HasSeamlessSplice  bool

	LegalTimeWindowIsValid bool
	LegalTimeWindowOffset  uint16 // 15 bits

	PiecewiseRate uint32 // 22 bits

	SpliceType        uint8 // 4 bits
	DTSNextAccessUnit *ClockReference
}

// parseAdaptationField parses an adaptation field starting at bs[0]. bs
// must extend at least to the end of the declared length. When the
// declared adaptation_field_length, or a sub-field its flags select, runs
// past the end of bs, the field is returned with whatever sub-fields fit
// together with ErrMalformedPacket; ParseTsPacket passes that error on,
// and the metadata scan logs and skips the packet rather than stopping.
func parseAdaptationField(bs []byte) (*AdaptationField, error) {
	a := &AdaptationField{}
	r := NewByteReader(bs)

	lengthByte, err := r.NextByte()
	if err != nil {
		return a, nil
	}
	a.Length = int(lengthByte)
	if a.Length <= 0 {
		return a, nil
	}
	if a.Length > r.BytesLeft() {
		return a, ErrMalformedPacket
	}

	flags, err := r.NextByte()
	if err != nil {
		return a, ErrMalformedPacket
	}
	a.DiscontinuityIndicator = bits(flags, 7, 1) != 0
	a.RandomAccessIndicator = bits(flags, 6, 1) != 0
	a.ElementaryStreamPriorityIndicator = bits(flags, 5, 1) != 0
	a.HasPCR = bits(flags, 4, 1) != 0
	a.HasOPCR = bits(flags, 3, 1) != 0
	a.HasSplicingCountdown = bits(flags, 2, 1) != 0
	a.HasTransportPrivateData = bits(flags, 1, 1) != 0
	a.HasAdaptationExtensionField = bits(flags, 0, 1) != 0

	if a.HasPCR {
		pcrBytes, err := r.NextBytesNoCopy(6)
		if err != nil {
			return a, ErrMalformedPacket
		}
		a.PCR = parsePCR(pcrBytes)
	}

	if a.HasOPCR {
		opcrBytes, err := r.NextBytesNoCopy(6)
		if err != nil {
			return a, ErrMalformedPacket
		}
		a.OPCR = parsePCR(opcrBytes)
	}

	if a.HasSplicingCountdown {
		b, err := r.NextByte()
		if err != nil {
			return a, ErrMalformedPacket
		}
		a.SpliceCountdown = int(int8(b))
	}

	if a.HasTransportPrivateData {
		lenByte, err := r.NextByte()
		if err != nil {
			return a, ErrMalformedPacket
		}
		a.TransportPrivateDataLength = int(lenByte)
		if a.TransportPrivateDataLength > 0 {
			data, err := r.NextBytes(a.TransportPrivateDataLength)
			if err != nil {
				return a, ErrMalformedPacket
			}
			a.TransportPrivateData = data
		}
	}

	if a.HasAdaptationExtensionField {
		extLenByte, err := r.NextByte()
		if err != nil {
			return a, ErrMalformedPacket
		}
		ext := &AdaptationFieldExtension{Length: int(extLenByte)}
		a.AdaptationExtensionField = ext

		if ext.Length > 0 {
			extFlags, err := r.NextByte()
			if err != nil {
				return a, ErrMalformedPacket
			}
			ext.HasLegalTimeWindow = bits(extFlags, 7, 1) != 0
			ext.HasPiecewiseRate = bits(extFlags, 6, 1) != 0
			ext.HasSeamlessSplice = bits(extFlags, 5, 1) != 0

			if ext.HasLegalTimeWindow {
				ltw, err := r.NextBytesNoCopy(2)
				if err != nil {
					return a, ErrMalformedPacket
				}
				ext.LegalTimeWindowIsValid = bits(ltw[0], 7, 1) != 0
				ext.LegalTimeWindowOffset = uint16(bits(ltw[0], 0, 7))<<8 | uint16(ltw[1])
			}

			if ext.HasPiecewiseRate {
				pr, err := r.NextBytesNoCopy(3)
				if err != nil {
					return a, ErrMalformedPacket
				}
				ext.PiecewiseRate = uint32(bits(pr[0], 0, 6))<<16 | uint32(pr[1])<<8 | uint32(pr[2])
			}

			if ext.HasSeamlessSplice {
				ss, err := r.NextBytesNoCopy(5)
				if err != nil {
					return a, ErrMalformedPacket
				}
				ext.SpliceType = bits(ss[0], 4, 4)
				ext.DTSNextAccessUnit = parsePTSOrDTS(ss)
			}
		}
	}

	return a, nil
}

// parsePTSOrDTS parses a 5-byte PTS/DTS-shaped field (4 bits marker/type,
// 3x15-bit timestamp chunks separated by marker bits) into a
// ClockReference with no extension (90 kHz only), matching the DTS field
// nested in a seamless splice sub-field.
func parsePTSOrDTS(bs []byte) *ClockReference {
	v := uint64(bs[0]&0xe)<<29 |
		uint64(bs[1])<<22 |
		uint64(bs[2]&0xfe)<<14 |
		uint64(bs[3])<<7 |
		uint64(bs[4])>>1
	return newClockReference(int(v), 0)
}
