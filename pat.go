package tspsi

// PIDPAT is the fixed, well-known PID carrying the Program Association
// Table.
const PIDPAT uint16 = 0x0000

// PIDNull is the null-packet PID. PatInfo.NetworkPID holds it when the PAT
// has no program_number==0 entry (the entry that names the NIT PID).
const PIDNull uint16 = 0x1fff

// PatInfo is a fully parsed Program Association Table.
type PatInfo struct {
	TransportStreamID uint16 // the section's table_id_extension
	Programs          []ProgramInfo
	NetworkPID        uint16 // PIDNull unless a program_number==0 entry was seen
}

// ProgramInfo is one PAT entry naming a program's PMT PID.
type ProgramInfo struct {
	ProgramNumber uint16
	PmtPID        uint16
}

// parsePatSection turns an assembled PAT section body into a PatInfo.
// body is a sequence of 4-byte entries: program_number(16) +
// reserved(3)+PID(13).
func parsePatSection(body []byte, tableIDExtension uint16) *PatInfo {
	info := &PatInfo{
		TransportStreamID: tableIDExtension,
		NetworkPID:        PIDNull,
	}

	for offset := 0; offset+4 <= len(body); offset += 4 {
		programNumber := u16BEAt(body, offset)
		pid := pid13At(body, offset+2)
		if programNumber == 0 {
			info.NetworkPID = pid
			continue
		}
		info.Programs = append(info.Programs, ProgramInfo{
			ProgramNumber: programNumber,
			PmtPID:        pid,
		})
	}
	return info
}
