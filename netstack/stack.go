package netstack

import (
	"log"
	"sync"
	"time"

	"github.com/progbits/e1000net/arp"
	"github.com/progbits/e1000net/internal/ring"
	"github.com/progbits/e1000net/soc/intel/e1000"
	"github.com/progbits/e1000net/wire"
)

// MaxPayload is the largest UDP payload write will accept: one TX frame
// page minus the Ethernet, IPv4 and UDP headers (14+20+8=42), per spec
// section 4.5.
const MaxPayload = e1000.MaxFrameLen - wire.EthernetHeaderLen - wire.IPv4HeaderLen - wire.UDPHeaderLen

// ArpTimeout bounds how long Open blocks waiting for an ARP reply,
// spec section 4.5's recommended addition over the source's stated
// TODO.
const ArpTimeout = 3 * time.Second

// Stack is the single-adaptor UDP/IPv4 network stack: the connection
// table, the NIC driver and the ARP cache, all guarded by one mutex
// (netlock), per spec section 5.
type Stack struct {
	mu      sync.Mutex
	conns   [MaxConns]conn
	dev     *e1000.Device
	arp     *arp.Cache
	localIP uint32
}

// New builds a Stack bound to dev, which must already be initialized
// (e1000.Device.Init). localIP is this host's fixed IPv4 address, spec
// section 6's 10.0.0.2.
func New(dev *e1000.Device, localIP uint32) *Stack {
	s := &Stack{dev: dev, arp: arp.New(), localIP: localIP}
	for i := range s.conns {
		s.conns[i].netfd = -1
	}
	dev.RxHandler = s.handleFrame
	return s
}

// OnInterrupt services one NIC interrupt. Call this from the board's
// IRQ handler.
func (s *Stack) OnInterrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dev.OnInterrupt()
}

func (s *Stack) findFreeSlot() int {
	for i := range s.conns {
		if s.conns[i].free() {
			return i
		}
	}
	return -1
}

// Open resolves addr's MAC (consulting the shared ARP cache first, then
// blocking on a broadcast request) and reserves a connection slot bound
// to addr:port. type must be 0 (UDP); spec section 9 note 1 fixes the
// source's bug of reading type from the same argument slot as addr.
func (s *Stack) Open(addr uint32, port uint16, typ uint8) (int, error) {
	if typ != 0 {
		return -1, newErr("open", KindBadType, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findFreeSlot()
	if idx == -1 {
		return -1, newErr("open", KindNoSlots, nil)
	}

	c := &s.conns[idx]
	c.netfd = idx
	c.typ = typ
	c.srcPort = uint16(idx + PortOffset)
	c.dstAddr = addr
	c.dstPort = port
	c.macValid = false
	c.rx = ring.New(RXBufferSize)
	c.cond = sync.NewCond(&s.mu)

	if mac, ok := s.arp.Lookup(addr); ok {
		c.dstMAC = mac
		c.macValid = true
		return idx, nil
	}

	req := arp.BuildRequest(s.dev.MACAddress(), s.localIP, addr)
	if err := s.dev.Transmit(req, false); err != nil {
		c.reset()
		return -1, newErr("open", KindAllocFailed, err)
	}

	if !waitUntil(c.cond, time.Now().Add(ArpTimeout), func() bool { return c.macValid }) {
		c.reset()
		return -1, newErr("open", KindArpTimeout, nil)
	}

	return idx, nil
}

// Write assembles a single Ethernet/IPv4/UDP frame carrying data and
// transmits it. The lock is released on every exit path via defer, per
// spec section 9 note 2 (the source's early-failure path could skip the
// release).
func (s *Stack) Write(netfd int, data []byte) error {
	if len(data) > MaxPayload {
		return newErr("write", KindPayloadTooLarge, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if netfd < 0 || netfd >= MaxConns || s.conns[netfd].free() {
		return newErr("write", KindBadFd, nil)
	}
	c := &s.conns[netfd]

	frame := s.buildUDPFrame(c, data)
	if err := s.dev.Transmit(frame, true); err != nil {
		return newErr("write", KindAllocFailed, err)
	}

	return nil
}

func (s *Stack) buildUDPFrame(c *conn, data []byte) []byte {
	eth := &wire.EthernetHeader{Dst: c.dstMAC, Src: s.dev.MACAddress(), EtherType: wire.EtherTypeIPv4}
	ip := &wire.IPv4Header{
		Version:  4,
		IHL:      5,
		TotalLen: uint16(wire.IPv4HeaderLen + wire.UDPHeaderLen + len(data)),
		TTL:      64,
		Protocol: wire.IPProtoUDP,
		Src:      s.localIP,
		Dst:      c.dstAddr,
	}
	udp := &wire.UDPHeader{SrcPort: c.srcPort, DstPort: c.dstPort, Len: uint16(wire.UDPHeaderLen + len(data))}

	buf := make([]byte, wire.EthernetHeaderLen+wire.IPv4HeaderLen+wire.UDPHeaderLen+len(data))
	off := 0
	off += wire.PackEthernet(eth, buf[off:])
	off += wire.PackIPv4(ip, buf[off:])
	off += wire.PackUDP(udp, buf[off:])
	copy(buf[off:], data)

	return buf
}

// Read blocks until data is available on netfd, then copies up to
// len(buf) bytes from the front of its RX buffer, returning the number
// of bytes copied.
func (s *Stack) Read(netfd int, buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if netfd < 0 || netfd >= MaxConns || s.conns[netfd].free() {
		return -1, newErr("read", KindBadFd, nil)
	}
	c := &s.conns[netfd]

	for c.rx.Len() == 0 {
		c.cond.Wait()
	}

	return c.rx.Read(buf), nil
}

// Close releases netfd's resources. Idempotent: closing an already-free
// slot succeeds without effect, per spec section 4.5.
func (s *Stack) Close(netfd int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if netfd < 0 || netfd >= MaxConns {
		return newErr("close", KindBadFd, nil)
	}
	if s.conns[netfd].free() {
		return nil
	}

	s.conns[netfd].reset()
	return nil
}

// handleFrame is e1000.Device.RxHandler: the ingress entrypoint invoked
// once per completed RX descriptor (no multi-descriptor reassembly),
// with netlock already held by the ISR
// caller (Stack.OnInterrupt). original_source/sysnet.c's handle_packet.
func (s *Stack) handleFrame(buf []byte, length int) {
	eth, off, err := wire.UnpackEthernet(buf[:length])
	if err != nil {
		log.Printf("netstack: drop malformed ethernet frame: %v", err)
		return
	}

	switch eth.EtherType {
	case wire.EtherTypeARP:
		s.handleARP(buf[off:length])
	case wire.EtherTypeIPv4:
		s.handleIPv4(buf[off:length])
	default:
		// Unknown EtherType is not an error, per spec section 7.
	}
}

func (s *Stack) handleARP(buf []byte) {
	pkt, _, err := wire.UnpackARP(buf)
	if err != nil {
		log.Printf("netstack: drop malformed arp packet: %v", err)
		return
	}

	reply, ok := s.arp.Handle(pkt, s.dev.MACAddress(), s.localIP)

	if !ok {
		// Nothing to transmit: the packet was a reply now stored in the
		// cache, or it was ignored. Wake every slot whose address now
		// resolves rather than only the first match (spec section 9
		// note 3's fix for the source's first-match-wins bug).
		for i := range s.conns {
			c := &s.conns[i]
			if c.free() || c.macValid {
				continue
			}
			if mac, found := s.arp.Lookup(c.dstAddr); found {
				c.dstMAC = mac
				c.macValid = true
				c.cond.Broadcast()
			}
		}
		return
	}

	if err := s.dev.Transmit(reply, false); err != nil {
		log.Printf("netstack: failed to transmit arp reply: %v", err)
	}
}

func (s *Stack) handleIPv4(buf []byte) {
	ip, off, err := wire.UnpackIPv4(buf)
	if err != nil {
		log.Printf("netstack: drop malformed ipv4 header: %v", err)
		return
	}

	if ip.Dst != s.localIP {
		return
	}
	if ip.Protocol != wire.IPProtoUDP {
		return
	}

	udp, uoff, err := wire.UnpackUDP(buf[off:])
	if err != nil {
		log.Printf("netstack: drop malformed udp header: %v", err)
		return
	}

	payload := buf[off+uoff:]
	dataLen := int(udp.Len) - wire.UDPHeaderLen
	if dataLen < 0 || dataLen > len(payload) {
		log.Printf("netstack: drop udp packet with bad length %d", udp.Len)
		return
	}
	payload = payload[:dataLen]

	for i := range s.conns {
		c := &s.conns[i]
		if c.free() || c.srcPort != udp.DstPort {
			continue
		}
		if err := c.rx.Write(payload); err != nil {
			// Ingress overflow is counted and dropped silently, never
			// surfaced to a syscall, per spec section 7.
			log.Printf("netstack: drop %d bytes on fd %d: %v", len(payload), i, err)
			return
		}
		c.cond.Broadcast()
		return
	}
}

// waitUntil waits on cond until pred is true or deadline passes.
// cond.L must already be held by the caller. Returns false on timeout.
func waitUntil(cond *sync.Cond, deadline time.Time, pred func() bool) bool {
	timer := time.AfterFunc(time.Until(deadline), func() {
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()
	})
	defer timer.Stop()

	for !pred() {
		if time.Now().After(deadline) {
			return false
		}
		cond.Wait()
	}
	return true
}
