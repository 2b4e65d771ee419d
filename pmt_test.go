package tspsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParsePmtSectionTwoStreams covers spec.md §8 scenario 3's literal
// PMT body.
func TestParsePmtSectionTwoStreams(t *testing.T) {
	info := parsePmtSection(pmtSectionBody, 1)

	assert.Equal(t, uint16(0x0100), info.PCRPID)
	assert.Empty(t, info.ProgramInfoDescriptors)
	require.Len(t, info.Streams, 2)

	assert.Equal(t, uint8(0x02), info.Streams[0].StreamType)
	assert.Equal(t, uint16(0x0101), info.Streams[0].ElementaryPID)
	assert.Equal(t, "MPEG-2 Video", StreamTypeToString(info.Streams[0].StreamType))

	assert.Equal(t, uint8(0x81), info.Streams[1].StreamType)
	assert.Equal(t, uint16(0x0102), info.Streams[1].ElementaryPID)
	assert.Equal(t, "A52/AC-3 Audio", StreamTypeToString(info.Streams[1].StreamType))
}

func TestParsePmtSectionWithProgramInfoDescriptors(t *testing.T) {
	body := []byte{
		0xe1, 0x00, // pcr_pid = 0x100
		0xf0, 0x02, // program_info_length = 2
		0xde, 0xad, // program info descriptor bytes
		0x1b, 0xe1, 0x01, 0xf0, 0x00, // H.264 video on 0x101
	}
	info := parsePmtSection(body, 1)
	assert.Equal(t, []byte{0xde, 0xad}, info.ProgramInfoDescriptors)
	require.Len(t, info.Streams, 1)
	assert.Equal(t, "H.264 Video", StreamTypeToString(info.Streams[0].StreamType))
}

func TestParsePmtSectionEmpty(t *testing.T) {
	info := parsePmtSection(nil, 1)
	assert.Equal(t, uint16(0), info.PCRPID)
	assert.Empty(t, info.Streams)
}

func TestStreamTypeToString(t *testing.T) {
	assert.Equal(t, "MPEG-2 Video", StreamTypeToString(0x02))
	assert.Equal(t, "H.264 Video", StreamTypeToString(0x1b))
	assert.Equal(t, "A52/AC-3 Audio", StreamTypeToString(0x81))
	assert.Equal(t, "ISO 13818-1 Reserved", StreamTypeToString(0x15))
	assert.Equal(t, "ISO 13818-1 Reserved", StreamTypeToString(0x7f))
	assert.Equal(t, "User Private", StreamTypeToString(0xf0))
	assert.Equal(t, "Unknown", StreamTypeToString(0x00))
}
