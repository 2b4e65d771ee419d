package tspsi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, bs []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "stream.ts")
	require.NoError(t, os.WriteFile(path, bs, 0o644))
	return path
}

// buildPatAndPmtStream builds a minimal valid stream: a PAT (PID 0x0000)
// declaring one program whose PMT lives on PID 0x0020, followed by that
// PMT, padded to at least validationPacketCount packets with null
// packets (PID 0x1fff).
func buildPatAndPmtStream(packetCount int) []byte {
	var out []byte
	out = append(out, buildTsPacket188(true, PIDPAT, 0b01, nil, patPayloadOneProgram)...)
	out = append(out, buildTsPacket188(true, 0x0020, 0b01, nil, buildPmtPayload(1))...)
	for len(out)/188 < packetCount {
		out = append(out, buildTsPacket188(false, 0x1fff, 0b01, nil, nil)...)
	}
	return out
}

func TestTsFileOpenRejectsTooSmallFile(t *testing.T) {
	path := writeTempFile(t, []byte{0x47, 0x00})
	tf, err := Open(path)
	require.NoError(t, err)
	defer tf.Close()
	assert.False(t, tf.IsValid())
}

func TestTsFileOpenValidCollectsPatAndPmt(t *testing.T) {
	stream := buildPatAndPmtStream(validationPacketCount)
	path := writeTempFile(t, stream)

	tf, err := Open(path)
	require.NoError(t, err)
	defer tf.Close()

	require.True(t, tf.IsValid())
	assert.Equal(t, 188, tf.PacketSize())
	assert.Equal(t, int64(len(stream)), tf.FileSize())

	require.NotNil(t, tf.PatInfo())
	assert.Equal(t, uint16(1), tf.PatInfo().TransportStreamID)
	assert.Equal(t, int64(0), tf.PatPacketNumber())
	require.Len(t, tf.PatInfo().Programs, 1)
	assert.Equal(t, uint16(0x0020), tf.PatInfo().Programs[0].PmtPID)

	require.Len(t, tf.PmtRecords(), 1)
	rec := tf.PmtRecords()[0]
	assert.Equal(t, uint16(0x0020), rec.PID)
	assert.Equal(t, int64(1), rec.PacketNumber)
	assert.Equal(t, uint16(0x0100), rec.Info.PCRPID)
	require.Len(t, rec.Info.Streams, 2)
}

// TestTsFileOpen192TTS covers spec.md §8 scenario 2.
func TestTsFileOpen192TTS(t *testing.T) {
	stream188 := buildPatAndPmtStream(validationPacketCount)

	var stream192 []byte
	for i := 0; i*188 < len(stream188); i++ {
		pkt := stream188[i*188 : (i+1)*188]
		stream192 = append(stream192, prefixTTS(pkt, [4]byte{0, 0, 0, byte(i)})...)
	}
	path := writeTempFile(t, stream192)

	tf, err := Open(path)
	require.NoError(t, err)
	defer tf.Close()

	require.True(t, tf.IsValid())
	assert.Equal(t, 192, tf.PacketSize())
	require.NotNil(t, tf.PatInfo())
	assert.Equal(t, uint16(1), tf.PatInfo().TransportStreamID)
	require.Len(t, tf.PmtRecords(), 1)
}

// TestTsFileScenario4CorruptedSyncByte covers spec.md §8 scenario 4: 20
// packets, the first 10 valid, the 11th (index 10) with its sync byte
// corrupted. Open must still succeed (validation only inspects the
// first 10), and viewing the corrupted packet must report a failure
// without panicking.
func TestTsFileScenario4CorruptedSyncByte(t *testing.T) {
	var stream []byte
	for i := 0; i < 20; i++ {
		stream = append(stream, buildTsPacket188(false, 0x1fff, 0b01, nil, nil)...)
	}
	corruptOffset := 10 * 188
	stream[corruptOffset] = 0x00

	path := writeTempFile(t, stream)
	tf, err := Open(path)
	require.NoError(t, err)
	defer tf.Close()

	require.True(t, tf.IsValid())
	assert.Equal(t, int64(20), tf.PacketCount())

	for i := int64(0); i < 10; i++ {
		_, err := tf.ViewPacketByNumber(i)
		require.NoError(t, err)
	}
	_, err = tf.ViewPacketByNumber(10)
	assert.Error(t, err)
}

// TestTsFileViewNavigationRoundTrip covers spec.md §8's
// view_packet_by_number/view_previous_packet round-trip invariant.
func TestTsFileViewNavigationRoundTrip(t *testing.T) {
	var stream []byte
	for i := 0; i < 5; i++ {
		stream = append(stream, buildTsPacket188(false, 0x1fff, 0b01, nil, []byte{byte(i)})...)
	}
	path := writeTempFile(t, stream)

	tf, err := Open(path)
	require.NoError(t, err)
	defer tf.Close()

	_, err = tf.ViewPacketByNumber(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), tf.CurrentPacketNumber())

	prev, err := tf.ViewPreviousPacket()
	require.NoError(t, err)
	assert.Equal(t, int64(2), tf.CurrentPacketNumber())
	assert.Equal(t, byte(2), prev.Payload()[0])
}

func TestTsFileViewNextPacketFromStart(t *testing.T) {
	var stream []byte
	for i := 0; i < 3; i++ {
		stream = append(stream, buildTsPacket188(false, 0x1fff, 0b01, nil, []byte{byte(i)})...)
	}
	path := writeTempFile(t, stream)

	tf, err := Open(path)
	require.NoError(t, err)
	defer tf.Close()

	p, err := tf.ViewNextPacket()
	require.NoError(t, err)
	assert.Equal(t, int64(0), tf.CurrentPacketNumber())
	assert.Equal(t, byte(0), p.Payload()[0])
}

func TestTsFileViewOutOfRange(t *testing.T) {
	stream := buildTsPacket188(false, 0x1fff, 0b01, nil, nil)
	path := writeTempFile(t, stream)

	tf, err := Open(path)
	require.NoError(t, err)
	defer tf.Close()

	_, err = tf.ViewPacketByNumber(-1)
	assert.Error(t, err)
	_, err = tf.ViewPacketByNumber(1)
	assert.Error(t, err)
}

func TestTsFileCopyOutlivesNextView(t *testing.T) {
	var stream []byte
	stream = append(stream, buildTsPacket188(false, 0x1fff, 0b01, nil, []byte{0xaa})...)
	stream = append(stream, buildTsPacket188(false, 0x1fff, 0b01, nil, []byte{0xbb})...)
	path := writeTempFile(t, stream)

	tf, err := Open(path)
	require.NoError(t, err)
	defer tf.Close()

	p0, err := tf.ViewPacketByNumber(0)
	require.NoError(t, err)
	snapshot := tf.Copy(p0)

	_, err = tf.ViewPacketByNumber(1)
	require.NoError(t, err)

	assert.Equal(t, byte(0xaa), snapshot[4])
}

func TestTsFileOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist.ts"))
	assert.Error(t, err)
}
