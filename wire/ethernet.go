package wire

import (
	"encoding/binary"
	"fmt"
)

// EthernetHeader is the 14-byte Ethernet II frame header: 6-byte
// destination, 6-byte source, 2-byte EtherType.
type EthernetHeader struct {
	Dst        [6]byte
	Src        [6]byte
	EtherType uint16
}

// PackEthernet serializes hdr into buf, returning the number of bytes
// written. buf must have at least EthernetHeaderLen bytes available.
func PackEthernet(hdr *EthernetHeader, buf []byte) int {
	copy(buf[0:6], hdr.Dst[:])
	copy(buf[6:12], hdr.Src[:])
	binary.BigEndian.PutUint16(buf[12:14], hdr.EtherType)
	return EthernetHeaderLen
}

// UnpackEthernet parses an Ethernet header from buf, returning the
// number of bytes consumed.
func UnpackEthernet(buf []byte) (*EthernetHeader, int, error) {
	if len(buf) < EthernetHeaderLen {
		return nil, 0, fmt.Errorf("wire: short ethernet header (%d bytes)", len(buf))
	}

	hdr := &EthernetHeader{}
	copy(hdr.Dst[:], buf[0:6])
	copy(hdr.Src[:], buf[6:12])
	hdr.EtherType = binary.BigEndian.Uint16(buf[12:14])

	return hdr, EthernetHeaderLen, nil
}

func (h *EthernetHeader) String() string {
	return fmt.Sprintf("eth dst=%02x:%02x:%02x:%02x:%02x:%02x src=%02x:%02x:%02x:%02x:%02x:%02x type=0x%04x",
		h.Dst[0], h.Dst[1], h.Dst[2], h.Dst[3], h.Dst[4], h.Dst[5],
		h.Src[0], h.Src[1], h.Src[2], h.Src[3], h.Src[4], h.Src[5],
		h.EtherType)
}
