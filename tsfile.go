package tspsi

import (
	"fmt"
	"io"
	"os"

	"github.com/go-tsinfo/tspsi/internal/logging"
)

// BufferSize is the windowed read-ahead buffer size: the least common
// multiple of 188, 192, and 4096, chosen so that a fixed-size window
// boundary always lands on a packet boundary regardless of which of the
// two packet sizes the stream uses.
const BufferSize = 577536 // lcm(188, 192, 4096)

// validationPacketCount is how many leading packets must all decode at
// the detected packet size for Open to consider the file a valid
// transport stream (spec.md §4.5's VALID_PACKETS).
const validationPacketCount = 10

// TsFile is a buffered, windowed random-access reader over a TS/TTS
// file, plus the PAT/PMT metadata collected by a single linear scan at
// Open time. Grounded on the teacher's packet_buffer.go (autodetection)
// and demuxer.go (scan control flow), adapted from a one-pass io.Reader
// demuxer to file-backed random access.
//
// A *TsPacket returned by a View* method borrows buffer and is
// invalidated by the next View*/Close call; call Copy if you need an
// owned snapshot that outlives it.
type TsFile struct {
	file       *os.File
	fileSize   int64
	packetSize int

	buffer           []byte
	bufferFileOffset int64
	bufferValidLen   int

	currentPacketNumber int64 // -1 until the first View* call

	isValid bool
	crcEnabled bool

	patInfo          *PatInfo
	patPacketNumber  int64
	pmtRecords       []*PmtRecord

	log       *logging.Logger
	logModule int
}

// PmtRecord pairs a parsed PMT with the packet number its final section
// completed in, so the CLI can print "Found PMT PID ... in packet P".
type PmtRecord struct {
	PID          uint16
	Info         *PmtInfo
	PacketNumber int64
}

// Option configures TsFile at Open time.
type Option func(*TsFile)

// WithCRC32Validation turns on the optional CRC32 check described in
// spec.md §9.
func WithCRC32Validation(enabled bool) Option {
	return func(f *TsFile) { f.crcEnabled = enabled }
}

// WithLogger overrides the default logger (one created internally with a
// single "tspsi" module at LevelWarn) used for best-effort diagnostics emitted
// while scanning for PSI metadata.
func WithLogger(l *logging.Logger, module int) Option {
	return func(f *TsFile) {
		f.log = l
		f.logModule = module
	}
}

// Open opens path, autodetects its packet size, validates the first
// validationPacketCount packets, and if the file looks like a transport
// stream, collects PAT/PMT metadata via one linear scan. I/O errors
// (can't open, can't stat, can't read) always propagate; a file that
// fails validation is still returned with IsValid()==false rather than
// an error, matching spec.md §7's "open returns success iff the file
// could be opened and the first 10 packets parsed at the detected size".
func Open(path string, opts ...Option) (*TsFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tspsi: opening %s failed: %w", path, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("tspsi: stat %s failed: %w", path, err)
	}

	tf := &TsFile{
		file:                f,
		fileSize:            st.Size(),
		buffer:              make([]byte, BufferSize),
		currentPacketNumber: -1,
		log:                 logging.New(nil),
	}
	tf.logModule = tf.log.Module("tspsi", logging.LevelWarn)

	for _, opt := range opts {
		opt(tf)
	}

	if err := tf.detectPacketSize(); err != nil {
		if err != ErrNotATransportStream {
			f.Close()
			return nil, err
		}
		tf.isValid = false
		return tf, nil
	}

	tf.isValid, err = tf.validateHead()
	if err != nil {
		f.Close()
		return nil, err
	}
	if tf.isValid {
		if err := tf.collectMetadata(); err != nil {
			return nil, err
		}
	}
	return tf, nil
}

// Close releases the file handle. Any previously viewed packet is
// invalidated.
func (f *TsFile) Close() error {
	f.currentPacketNumber = -1
	return f.file.Close()
}

// IsValid reports whether the file passed the leading-packet validation
// check at Open time. When false, PatInfo/PmtRecords are empty but View*
// methods may still be attempted.
func (f *TsFile) IsValid() bool {
	return f.isValid
}

// FileSize returns the file size in bytes, as observed at Open time.
func (f *TsFile) FileSize() int64 {
	return f.fileSize
}

// PacketSize returns the detected packet size, 188 or 192.
func (f *TsFile) PacketSize() int {
	return f.packetSize
}

// PacketCount returns how many whole packets the file contains.
func (f *TsFile) PacketCount() int64 {
	if f.packetSize == 0 {
		return 0
	}
	return f.fileSize / int64(f.packetSize)
}

// PatInfo returns the parsed PAT, or nil if none was found (or the file
// is invalid).
func (f *TsFile) PatInfo() *PatInfo {
	return f.patInfo
}

// PatPacketNumber returns the packet number the PAT completed in, valid
// only when PatInfo is non-nil.
func (f *TsFile) PatPacketNumber() int64 {
	return f.patPacketNumber
}

// PmtRecords returns every PMT found during metadata collection, in the
// order they completed.
func (f *TsFile) PmtRecords() []*PmtRecord {
	return f.pmtRecords
}

// detectPacketSize reads the head of the file and asks TsPacket to
// autodetect whether it's 188- or 192-byte packets, per spec.md §4.5's
// "TsFile reads the head of the file, calls TsPacket to autodetect
// packet size".
func (f *TsFile) detectPacketSize() error {
	head := make([]byte, PacketSize192)
	if f.fileSize < PacketSize188 {
		return ErrNotATransportStream
	}
	n, err := f.file.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return fmt.Errorf("tspsi: reading head of file failed: %w", err)
	}
	head = head[:n]

	if len(head) >= PacketSize188 && head[0] == syncByte {
		f.packetSize = PacketSize188
		return nil
	}
	if len(head) >= PacketSize192 && head[4] == syncByte {
		f.packetSize = PacketSize192
		return nil
	}
	return ErrNotATransportStream
}

// validateHead decodes the first validationPacketCount packets at the
// detected packet size and reports whether all of them parsed. A read
// failure is returned as an error.
func (f *TsFile) validateHead() (bool, error) {
	count := validationPacketCount
	if avail := f.PacketCount(); avail < int64(count) {
		count = int(avail)
	}
	buf := make([]byte, f.packetSize)
	for i := 0; i < count; i++ {
		n, err := f.file.ReadAt(buf, int64(i*f.packetSize))
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("tspsi: reading packet %d failed: %w", i, err)
		}
		if n != len(buf) {
			return false, nil
		}
		if _, err := ParseTsPacket(buf); err != nil {
			return false, nil
		}
	}
	return true, nil
}

// collectMetadata runs the metadata collection algorithm of spec.md
// §4.5: a linear scan maintaining a want/found PID set, feeding
// SectionAssemblers keyed by PID, stopping when the want set empties or
// EOF is reached. Malformed sections are logged and dropped; scanning
// continues (best-effort, per spec.md §7).
func (f *TsFile) collectMetadata() error {
	want := map[uint16]bool{PIDPAT: true}
	found := map[uint16]bool{}
	assemblers := map[uint16]*SectionAssembler{}

	var packetNumber int64
	buf := make([]byte, f.packetSize)

	for packetNumber < f.PacketCount() && len(want) > len(found) {
		n, err := f.file.ReadAt(buf, packetNumber*int64(f.packetSize))
		if err != nil && err != io.EOF {
			return fmt.Errorf("tspsi: reading packet %d failed: %w", packetNumber, err)
		}
		if n != len(buf) {
			break
		}

		pkt, err := ParseTsPacket(buf)
		if err != nil {
			f.log.Warnf("skipping malformed packet %d: %v", packetNumber, err)
			packetNumber++
			continue
		}

		pid := pkt.Header.PID
		if want[pid] && !found[pid] && pkt.Header.HasPayload() {
			f.processPacketForMetadata(pkt, pid, packetNumber, want, found, assemblers)
		}
		packetNumber++
	}
	return nil
}

func (f *TsFile) processPacketForMetadata(
	pkt *TsPacket,
	pid uint16,
	packetNumber int64,
	want, found map[uint16]bool,
	assemblers map[uint16]*SectionAssembler,
) {
	payload := pkt.Payload()
	if len(payload) == 0 {
		return
	}

	if pkt.Header.PayloadUnitStartIndicator {
		if isPESStartCode(payload) {
			if peek, ok := peekPesHeader(payload); ok {
				f.log.Debugf(f.logModule, "skipping PES payload on PID 0x%04x in packet %d: stream_id=0x%02x length=%d", pid, packetNumber, peek.StreamID, peek.PacketLength)
			}
			return
		}

		expectedKind := TableKindPAT
		if pid != PIDPAT {
			expectedKind = TableKindPMT
		}
		asm := NewSectionAssembler(pid, f.crcEnabled)
		if err := asm.Parse(payload, expectedKind); err != nil {
			f.log.Warnf("dropping malformed section on PID 0x%04x in packet %d: %v", pid, packetNumber, err)
			return
		}
		assemblers[pid] = asm
	} else {
		asm, ok := assemblers[pid]
		if !ok || asm.Complete() {
			return
		}
		if err := asm.Append(payload); err != nil {
			f.log.Warnf("dropping out-of-sequence section on PID 0x%04x in packet %d: %v", pid, packetNumber, err)
			delete(assemblers, pid)
			return
		}
	}

	asm := assemblers[pid]
	if asm == nil || !asm.Complete() {
		return
	}

	data, err := asm.Finalize()
	delete(assemblers, pid)
	if err != nil {
		f.log.Warnf("dropping unparseable section on PID 0x%04x in packet %d: %v", pid, packetNumber, err)
		return
	}

	switch data.Kind {
	case TableKindPAT:
		f.patInfo = data.PAT
		f.patPacketNumber = packetNumber
		found[PIDPAT] = true
		for _, pgm := range data.PAT.Programs {
			if !found[pgm.PmtPID] {
				want[pgm.PmtPID] = true
			}
		}
	case TableKindPMT:
		f.pmtRecords = append(f.pmtRecords, &PmtRecord{
			PID:          pid,
			Info:         data.PMT,
			PacketNumber: packetNumber,
		})
		found[pid] = true
	}
}

// windowStart floors a file offset to the BufferSize-aligned window that
// contains it.
func windowStart(fileOffset int64) int64 {
	return fileOffset - fileOffset%BufferSize
}

// ensureWindow makes sure the buffer covers [fileOffset, fileOffset+n),
// refilling from disk if needed.
func (f *TsFile) ensureWindow(fileOffset int64, n int) error {
	ws := windowStart(fileOffset)
	withinWindow := int(fileOffset - ws)
	if f.bufferFileOffset == ws && withinWindow+n <= f.bufferValidLen {
		return nil
	}

	read, err := f.file.ReadAt(f.buffer, ws)
	if err != nil && err != io.EOF {
		return fmt.Errorf("tspsi: reading buffer window at %d failed: %w", ws, err)
	}
	f.bufferFileOffset = ws
	f.bufferValidLen = read

	if withinWindow+n > f.bufferValidLen {
		return io.EOF
	}
	return nil
}

// ViewPacketByNumber returns a borrowed view of the n-th packet (0
// based). The returned packet is invalidated by the next View*/Close
// call.
func (f *TsFile) ViewPacketByNumber(n int64) (*TsPacket, error) {
	if n < 0 || n >= f.PacketCount() {
		return nil, io.EOF
	}

	fileOffset := n * int64(f.packetSize)
	if err := f.ensureWindow(fileOffset, f.packetSize); err != nil {
		return nil, err
	}

	withinWindow := int(fileOffset - f.bufferFileOffset)
	pkt, err := ParseTsPacket(f.buffer[withinWindow : withinWindow+f.packetSize])
	if err != nil {
		return nil, fmt.Errorf("tspsi: parsing packet %d failed: %w", n, err)
	}
	f.currentPacketNumber = n
	return pkt, nil
}

// ViewNextPacket advances to (and returns) the packet following the one
// last viewed. The first call after Open views packet 0.
func (f *TsFile) ViewNextPacket() (*TsPacket, error) {
	return f.ViewPacketByNumber(f.currentPacketNumber + 1)
}

// ViewPreviousPacket steps back to (and returns) the packet preceding
// the one last viewed. Returns io.EOF if no packet has been viewed yet
// or the previous packet would be before the start of the file.
func (f *TsFile) ViewPreviousPacket() (*TsPacket, error) {
	if f.currentPacketNumber <= 0 {
		return nil, io.EOF
	}
	return f.ViewPacketByNumber(f.currentPacketNumber - 1)
}

// CurrentPacketNumber returns the packet number last viewed, or -1 if
// none has been viewed yet.
func (f *TsFile) CurrentPacketNumber() int64 {
	return f.currentPacketNumber
}

// Copy returns an owned, exactly-packetSize-byte snapshot of p, safe to
// retain past any subsequent View*/Close call.
func (f *TsFile) Copy(p *TsPacket) []byte {
	out := make([]byte, len(p.Bytes))
	copy(out, p.Bytes)
	return out
}
