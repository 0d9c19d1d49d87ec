package arp

import "github.com/progbits/e1000net/wire"

func ipBytes(addr uint32) [4]byte {
	return [4]byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
}

func ipFromBytes(b [4]byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// BuildRequest builds a broadcast ARP request frame asking who has
// target, from srcMAC/srcIP, mirroring original_source/sysnet.c's
// arp_req.
func BuildRequest(srcMAC [6]byte, srcIP uint32, target uint32) []byte {
	eth := &wire.EthernetHeader{Dst: wire.BroadcastMAC, Src: srcMAC, EtherType: wire.EtherTypeARP}
	pkt := &wire.ARPPacket{
		HType: 1,
		PType: wire.EtherTypeIPv4,
		HLen:  6,
		PLen:  4,
		Oper:  wire.ARPRequest,
		SHA:   srcMAC,
		SPA:   ipBytes(srcIP),
		THA:   wire.BroadcastMAC,
		TPA:   ipBytes(target),
	}

	buf := make([]byte, wire.EthernetHeaderLen+wire.ARPPacketLen)
	off := wire.PackEthernet(eth, buf)
	wire.PackARP(pkt, buf[off:])
	return buf
}

// buildReply answers an ARP request targeting us, mirroring
// original_source/sysnet.c's handle_arp request branch.
func buildReply(srcMAC [6]byte, srcIP uint32, req *wire.ARPPacket) []byte {
	eth := &wire.EthernetHeader{Dst: req.SHA, Src: srcMAC, EtherType: wire.EtherTypeARP}
	pkt := &wire.ARPPacket{
		HType: 1,
		PType: wire.EtherTypeIPv4,
		HLen:  6,
		PLen:  4,
		Oper:  wire.ARPReply,
		SHA:   srcMAC,
		SPA:   ipBytes(srcIP),
		THA:   req.SHA,
		TPA:   req.SPA,
	}

	buf := make([]byte, wire.EthernetHeaderLen+wire.ARPPacketLen)
	off := wire.PackEthernet(eth, buf)
	wire.PackARP(pkt, buf[off:])
	return buf
}

// Handle processes one incoming ARP packet addressed to localIP. On an
// ARP reply it records the sender's MAC in c and returns (nil, false):
// there is nothing to transmit back. On an ARP request targeting us it
// returns a reply frame ready to transmit. Requests and replies
// targeting a different address are ignored, returning (nil, false).
//
// The caller must hold netlock, exactly as
// original_source/sysnet.c's handle_packet does around handle_arp.
func (c *Cache) Handle(pkt *wire.ARPPacket, localMAC [6]byte, localIP uint32) (reply []byte, ok bool) {
	if ipFromBytes(pkt.TPA) != localIP {
		return nil, false
	}

	if pkt.Oper == wire.ARPReply {
		c.Store(ipFromBytes(pkt.SPA), pkt.SHA)
		return nil, false
	}

	if pkt.Oper == wire.ARPRequest {
		return buildReply(localMAC, localIP, pkt), true
	}

	return nil, false
}
