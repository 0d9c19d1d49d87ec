package wire

import (
	"encoding/binary"
	"fmt"
)

// IPv4Header is an IPv4 header without options (IHL=5). Outgoing
// checksums are left zero; the NIC computes them via TX offload context
// (spec section 4.1, TX context descriptor).
type IPv4Header struct {
	Version  uint8 // always 4
	IHL      uint8 // always 5 (no options)
	ToS      uint8
	TotalLen uint16
	ID       uint16
	FragOff  uint16
	TTL      uint8
	Protocol uint8
	Checksum uint16
	Src      uint32
	Dst      uint32
}

// PackIPv4 serializes hdr into buf, returning bytes written.
func PackIPv4(hdr *IPv4Header, buf []byte) int {
	buf[0] = (hdr.Version << 4) | (hdr.IHL & 0x0f)
	buf[1] = hdr.ToS
	binary.BigEndian.PutUint16(buf[2:4], hdr.TotalLen)
	binary.BigEndian.PutUint16(buf[4:6], hdr.ID)
	binary.BigEndian.PutUint16(buf[6:8], hdr.FragOff)
	buf[8] = hdr.TTL
	buf[9] = hdr.Protocol
	binary.BigEndian.PutUint16(buf[10:12], hdr.Checksum)
	binary.BigEndian.PutUint32(buf[12:16], hdr.Src)
	binary.BigEndian.PutUint32(buf[16:20], hdr.Dst)
	return IPv4HeaderLen
}

// UnpackIPv4 parses an IPv4 header from buf, returning bytes consumed.
func UnpackIPv4(buf []byte) (*IPv4Header, int, error) {
	if len(buf) < IPv4HeaderLen {
		return nil, 0, fmt.Errorf("wire: short ipv4 header (%d bytes)", len(buf))
	}

	hdr := &IPv4Header{
		Version:  buf[0] >> 4,
		IHL:      buf[0] & 0x0f,
		ToS:      buf[1],
		TotalLen: binary.BigEndian.Uint16(buf[2:4]),
		ID:       binary.BigEndian.Uint16(buf[4:6]),
		FragOff:  binary.BigEndian.Uint16(buf[6:8]),
		TTL:      buf[8],
		Protocol: buf[9],
		Checksum: binary.BigEndian.Uint16(buf[10:12]),
		Src:      binary.BigEndian.Uint32(buf[12:16]),
		Dst:      binary.BigEndian.Uint32(buf[16:20]),
	}

	return hdr, IPv4HeaderLen, nil
}

func (h *IPv4Header) String() string {
	return fmt.Sprintf("ipv4 src=%d.%d.%d.%d dst=%d.%d.%d.%d proto=0x%02x len=%d",
		byte(h.Src>>24), byte(h.Src>>16), byte(h.Src>>8), byte(h.Src),
		byte(h.Dst>>24), byte(h.Dst>>16), byte(h.Dst>>8), byte(h.Dst),
		h.Protocol, h.TotalLen)
}

// FormatIPv4 renders a dotted-quad address.
func FormatIPv4(addr uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(addr>>24), byte(addr>>16), byte(addr>>8), byte(addr))
}
