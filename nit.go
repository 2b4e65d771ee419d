package tspsi

// NitInfo is a parsed Network Information Table (either the "actual"
// network, table_id 0x40, or an "other" network, table_id 0x41; both
// share the same body shape).
type NitInfo struct {
	NetworkID          uint16 // the section's table_id_extension
	NetworkDescriptors []byte
	TransportStreams   []NitTransportStream
}

// NitTransportStream is one entry in a NIT's transport-stream loop.
type NitTransportStream struct {
	TransportStreamID    uint16
	OriginalNetworkID    uint16
	TransportDescriptors []byte
}

// parseNitSection turns an assembled NIT section body into a NitInfo.
// Layout: reserved(4)+network_descriptors_length(12), network
// descriptor bytes, reserved(4)+transport_stream_loop_length(12), then
// repeated 6-byte-header transport stream entries (transport_stream_id,
// original_network_id, reserved(4)+transport_descriptors_length(12),
// transport descriptor bytes).
func parseNitSection(body []byte, tableIDExtension uint16) *NitInfo {
	info := &NitInfo{NetworkID: tableIDExtension}
	if len(body) < 2 {
		return info
	}

	networkDescLen := int(u16BEAt(body, 0) & 0x0fff)
	offset := 2
	end := offset + networkDescLen
	if end > len(body) {
		end = len(body)
	}
	if end > offset {
		info.NetworkDescriptors = append([]byte(nil), body[offset:end]...)
	}
	offset = end

	if offset+2 > len(body) {
		return info
	}
	loopLen := int(u16BEAt(body, offset) & 0x0fff)
	offset += 2
	loopEnd := offset + loopLen
	if loopEnd > len(body) {
		loopEnd = len(body)
	}

	for offset+6 <= loopEnd {
		ts := NitTransportStream{
			TransportStreamID: u16BEAt(body, offset),
			OriginalNetworkID: u16BEAt(body, offset+2),
		}
		descLen := int(u16BEAt(body, offset+4) & 0x0fff)
		offset += 6
		dEnd := offset + descLen
		if dEnd > loopEnd {
			dEnd = loopEnd
		}
		if dEnd > offset {
			ts.TransportDescriptors = append([]byte(nil), body[offset:dEnd]...)
		}
		offset = dEnd
		info.TransportStreams = append(info.TransportStreams, ts)
	}
	return info
}
