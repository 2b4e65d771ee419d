package tspsi

import "time"

// clockReferenceFrequency is the MPEG system clock frequency, 27 MHz.
const clockReferenceFrequency = 27000000

// ClockReference is a Program Clock Reference (or Original PCR): a 33-bit
// base running at 90 kHz plus a 9-bit extension running at 27 MHz,
// together a 27 MHz sample as described in ISO 13818-1 §2.4.3.5.
type ClockReference struct {
	Base      int64 // 33 bits, 90 kHz
	Extension int64 // 9 bits, 27 MHz
}

// newClockReference builds a ClockReference from its base and extension.
func newClockReference(base, extension int) *ClockReference {
	return &ClockReference{Base: int64(base), Extension: int64(extension)}
}

// Duration returns the clock reference expressed as a time.Duration since
// an arbitrary epoch (the stream's own clock, not wall time).
func (c *ClockReference) Duration() time.Duration {
	total := c.Base*300 + c.Extension
	// 27 ticks per microsecond: scale ticks to nanoseconds as total*1000/27,
	// which stays well inside int64 for any 33-bit base.
	return time.Duration(total * 1000 / (clockReferenceFrequency / 1000000))
}

// Time returns the clock reference reinterpreted as a Unix time, useful
// only for relative comparisons between samples of the same stream.
func (c *ClockReference) Time() time.Time {
	return time.Unix(int64(c.Duration().Seconds()), 0)
}

// parsePCR parses a 6-byte Program Clock Reference: 33-bit base, 6
// reserved bits, 9-bit extension.
func parsePCR(bs []byte) *ClockReference {
	v := uint64(bs[0])<<40 | uint64(bs[1])<<32 | uint64(bs[2])<<24 |
		uint64(bs[3])<<16 | uint64(bs[4])<<8 | uint64(bs[5])
	return newClockReference(int(v>>15), int(v&0x1ff))
}
