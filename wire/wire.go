// Package wire implements pack/unpack routines for the Ethernet, ARP,
// IPv4 and UDP headers this stack speaks, bit-exact per the reference
// manuals cited in spec section 4.2. Every multi-byte field is
// network-byte-order (big-endian) on the wire.
//
// Field layout and the request/reply constants are grounded on
// original_source/eth.c and original_source/sysnet.c (xv6-net); struct
// shape and doc-comment density follow soypat/dgrams' header definitions
// (see other_examples/024e2d39_soypat-dgrams__headers.go.go).
package wire

// Host/network byte-order conversion is performed with encoding/binary's
// BigEndian accessors throughout this package rather than a hand-rolled
// htons/ntohs pair — xv6-net's __ushort_to_le named a byte-swap as a
// little-endian conversion and relied on callers knowing it was really
// symmetric; encoding/binary.BigEndian.PutUint16/Uint16 says what it does
// and needs no such caveat.

// EtherType values carried in the Ethernet header.
const (
	EtherTypeIPv4 = 0x0800
	EtherTypeIPv6 = 0x86DD
	EtherTypeARP  = 0x0806
)

// ARP operation codes.
const (
	ARPRequest = 1
	ARPReply   = 2
)

// IPProtocol values carried in the IPv4 header.
const (
	IPProtoUDP = 0x11
)

// BroadcastMAC is the all-ones Ethernet destination used for ARP
// requests.
var BroadcastMAC = [6]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

const (
	EthernetHeaderLen = 14
	ARPPacketLen      = 28
	IPv4HeaderLen     = 20
	UDPHeaderLen      = 8
)
