package wire

import (
	"encoding/binary"
	"fmt"
)

// UDPHeader is an 8-byte UDP header (RFC 768). The checksum is left
// zero; the NIC computes it via TX offload context.
type UDPHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Len      uint16
	Checksum uint16
}

// PackUDP serializes hdr into buf, returning bytes written.
func PackUDP(hdr *UDPHeader, buf []byte) int {
	binary.BigEndian.PutUint16(buf[0:2], hdr.SrcPort)
	binary.BigEndian.PutUint16(buf[2:4], hdr.DstPort)
	binary.BigEndian.PutUint16(buf[4:6], hdr.Len)
	binary.BigEndian.PutUint16(buf[6:8], hdr.Checksum)
	return UDPHeaderLen
}

// UnpackUDP parses a UDP header from buf, returning bytes consumed.
func UnpackUDP(buf []byte) (*UDPHeader, int, error) {
	if len(buf) < UDPHeaderLen {
		return nil, 0, fmt.Errorf("wire: short udp header (%d bytes)", len(buf))
	}

	hdr := &UDPHeader{
		SrcPort:  binary.BigEndian.Uint16(buf[0:2]),
		DstPort:  binary.BigEndian.Uint16(buf[2:4]),
		Len:      binary.BigEndian.Uint16(buf[4:6]),
		Checksum: binary.BigEndian.Uint16(buf[6:8]),
	}

	return hdr, UDPHeaderLen, nil
}

func (h *UDPHeader) String() string {
	return fmt.Sprintf("udp src=%d dst=%d len=%d", h.SrcPort, h.DstPort, h.Len)
}
