package wire

import (
	"encoding/binary"
	"fmt"
)

// ARPPacket is an ARP packet for IPv4-over-Ethernet address resolution
// (RFC 826): htype=1, ptype=0x0800, hlen=6, plen=4.
type ARPPacket struct {
	HType uint16
	PType uint16
	HLen  uint8
	PLen  uint8
	Oper  uint16
	SHA   [6]byte // sender hardware address
	SPA   [4]byte // sender protocol address
	THA   [6]byte // target hardware address
	TPA   [4]byte // target protocol address
}

// PackARP serializes packet into buf, returning bytes written.
func PackARP(p *ARPPacket, buf []byte) int {
	binary.BigEndian.PutUint16(buf[0:2], p.HType)
	binary.BigEndian.PutUint16(buf[2:4], p.PType)
	buf[4] = p.HLen
	buf[5] = p.PLen
	binary.BigEndian.PutUint16(buf[6:8], p.Oper)
	copy(buf[8:14], p.SHA[:])
	copy(buf[14:18], p.SPA[:])
	copy(buf[18:24], p.THA[:])
	copy(buf[24:28], p.TPA[:])
	return ARPPacketLen
}

// UnpackARP parses an ARP packet from buf, returning bytes consumed.
func UnpackARP(buf []byte) (*ARPPacket, int, error) {
	if len(buf) < ARPPacketLen {
		return nil, 0, fmt.Errorf("wire: short arp packet (%d bytes)", len(buf))
	}

	p := &ARPPacket{
		HType: binary.BigEndian.Uint16(buf[0:2]),
		PType: binary.BigEndian.Uint16(buf[2:4]),
		HLen:  buf[4],
		PLen:  buf[5],
		Oper:  binary.BigEndian.Uint16(buf[6:8]),
	}
	copy(p.SHA[:], buf[8:14])
	copy(p.SPA[:], buf[14:18])
	copy(p.THA[:], buf[18:24])
	copy(p.TPA[:], buf[24:28])

	return p, ARPPacketLen, nil
}

func (p *ARPPacket) String() string {
	op := "request"
	if p.Oper == ARPReply {
		op = "reply"
	}
	return fmt.Sprintf("arp %s spa=%d.%d.%d.%d sha=%02x:%02x:%02x:%02x:%02x:%02x",
		op, p.SPA[0], p.SPA[1], p.SPA[2], p.SPA[3],
		p.SHA[0], p.SHA[1], p.SHA[2], p.SHA[3], p.SHA[4], p.SHA[5])
}
