// Command tsinfo prints the PAT and PMT(s) found in an MPEG-2 transport
// stream file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/profile"

	"github.com/go-tsinfo/tspsi"
)

var (
	crcEnabled      = flag.Bool("crc", false, "validate section CRC32 checksums")
	format          = flag.String("f", "", "output format: \"\" (text) or \"json\"")
	cpuProfiling    = flag.Bool("cp", false, "if yes, cpu profiling is enabled")
	memoryProfiling = flag.Bool("mp", false, "if yes, memory profiling is enabled")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] FILE\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	if *cpuProfiling {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	} else if *memoryProfiling {
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	tf, err := tspsi.Open(path, tspsi.WithCRC32Validation(*crcEnabled))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Unable to open the file")
		os.Exit(1)
	}
	defer tf.Close()

	if !tf.IsValid() {
		fmt.Fprintln(os.Stderr, "Not a valid TS file")
		os.Exit(1)
	}

	if *format == "json" {
		printJSON(tf)
		return
	}
	printText(tf)
}

func printText(tf *tspsi.TsFile) {
	fmt.Printf("File size: %d bytes\n", tf.FileSize())

	if pat := tf.PatInfo(); pat != nil {
		fmt.Printf("Found PAT in packet %d\n", tf.PatPacketNumber())
		fmt.Printf("  Transport Stream ID: 0x%04x (%d)\n", pat.TransportStreamID, pat.TransportStreamID)
		for _, p := range pat.Programs {
			fmt.Printf("  Program: %d PID: 0x%04x (%d)\n", p.ProgramNumber, p.PmtPID, p.PmtPID)
		}
	}

	for _, rec := range tf.PmtRecords() {
		fmt.Printf("Found PMT PID: 0x%04x (%d) in packet %d\n", rec.PID, rec.PID, rec.PacketNumber)
		fmt.Printf("  Program: %d\n", rec.Info.ProgramNumber)
		fmt.Printf("  PCR PID: 0x%04x (%d)\n", rec.Info.PCRPID, rec.Info.PCRPID)
		for _, s := range rec.Info.Streams {
			fmt.Printf("  PID: 0x%04x (%d) - %s (0x%02x)\n", s.ElementaryPID, s.ElementaryPID, tspsi.StreamTypeToString(s.StreamType), s.StreamType)
		}
	}
}

// jsonOutput mirrors cmd/astits-probe's -f json mode.
type jsonOutput struct {
	FileSize int64              `json:"file_size"`
	PAT      *tspsi.PatInfo     `json:"pat,omitempty"`
	PMTs     []*tspsi.PmtRecord `json:"pmts,omitempty"`
}

func printJSON(tf *tspsi.TsFile) {
	out := jsonOutput{
		FileSize: tf.FileSize(),
		PAT:      tf.PatInfo(),
		PMTs:     tf.PmtRecords(),
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	if err := e.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, "Unable to open the file")
		os.Exit(1)
	}
}
