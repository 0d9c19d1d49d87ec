package netstack

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/progbits/e1000net/internal/reg"
	"github.com/progbits/e1000net/internal/ring"
	"github.com/progbits/e1000net/soc/intel/e1000"
	"github.com/progbits/e1000net/wire"
	"github.com/stretchr/testify/require"
)

type fakeConfigBus struct {
	addr  uint32
	space map[uint32]uint32
}

func (b *fakeConfigBus) Out32(port uint16, val uint32) {
	switch port {
	case 0x0cf8:
		b.addr = val
	case 0x0cfc:
		b.space[b.addr] = val
	}
}

func (b *fakeConfigBus) In32(port uint16) uint32 {
	if port != 0x0cfc {
		return 0
	}
	return b.space[b.addr]
}

type fakeAllocator struct{ next uint64 }

func (a *fakeAllocator) AllocPage() ([]byte, uint64, error) {
	phys := a.next
	a.next += e1000.PageSize
	return make([]byte, e1000.PageSize), phys, nil
}
func (a *fakeAllocator) FreePage(uint64) {}

const (
	testLocalIP = uint32(0x0A000002) // 10.0.0.2
	testPeerIP  = uint32(0x0A000001) // 10.0.0.1
)

var testPeerMAC = [6]byte{0x52, 0x54, 0x00, 0x12, 0x34, 0x56}

// answerEEPROM completes each EERD (0x14) word read Device.Init starts,
// asynchronously as the controller does: it sets the done bit (4) and
// places the word in the high 16 bits. It stops once stop is closed.
func answerEEPROM(regs *reg.Space, words [3]uint16, stop <-chan struct{}) {
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			v := regs.Read(0x14)
			if i := (v >> 8) & 0xff; v&1 != 0 && v&(1<<4) == 0 && i < 3 {
				regs.Write(0x14, v|1<<4|uint32(words[i])<<16)
			}
			runtime.Gosched()
		}
	}()
}

func newTestStack(t *testing.T) *Stack {
	t.Helper()

	bus := &fakeConfigBus{space: make(map[uint32]uint32)}
	addrOf := func(off uint32) uint32 { return 1<<31 | off&0xfc }
	bus.space[addrOf(0x00)] = uint32(e1000.Device82540)<<16 | e1000.VendorIntel
	bus.space[addrOf(0x10)] = 0xF0000000

	mmio := make([]byte, 0x6000)
	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	answerEEPROM(reg.NewSpace(mmio), [3]uint16{0x5678, 0x1234, 0xabcd}, stop)

	dev := &e1000.Device{}
	require.NoError(t, dev.Init(e1000.Config{Bus: bus, Alloc: &fakeAllocator{}}, mmio))

	return New(dev, testLocalIP)
}

func buildARPReply() []byte {
	eth := &wire.EthernetHeader{EtherType: wire.EtherTypeARP}
	pkt := &wire.ARPPacket{
		HType: 1, PType: wire.EtherTypeIPv4, HLen: 6, PLen: 4, Oper: wire.ARPReply,
		SHA: testPeerMAC, SPA: [4]byte{10, 0, 0, 1}, TPA: [4]byte{10, 0, 0, 2},
	}
	buf := make([]byte, wire.EthernetHeaderLen+wire.ARPPacketLen)
	off := wire.PackEthernet(eth, buf)
	wire.PackARP(pkt, buf[off:])
	return buf
}

func TestOpenResolvesARPAndReturnsSlot(t *testing.T) {
	s := newTestStack(t)

	done := make(chan struct{})
	var netfd int
	var openErr error
	go func() {
		netfd, openErr = s.Open(testPeerIP, 5000, 0)
		close(done)
	}()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return !s.conns[0].free()
	}, time.Second, time.Millisecond)

	s.mu.Lock()
	s.handleFrame(buildARPReply(), len(buildARPReply()))
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Open did not return")
	}

	require.NoError(t, openErr)
	require.Equal(t, 0, netfd)
	require.Equal(t, testPeerMAC, s.conns[0].dstMAC)
	require.Equal(t, uint16(PortOffset), s.conns[0].srcPort)
}

func TestOpenRejectsNonUDPType(t *testing.T) {
	s := newTestStack(t)
	_, err := s.Open(testPeerIP, 5000, 1)
	require.ErrorIs(t, err, ErrBadType)
}

func TestOpenFailsWhenTableFull(t *testing.T) {
	s := newTestStack(t)
	for i := 0; i < MaxConns; i++ {
		s.conns[i].netfd = i
	}

	_, err := s.Open(testPeerIP, 5000, 0)
	require.ErrorIs(t, err, ErrNoSlots)
}

func resolvedConn(s *Stack, idx int, mac [6]byte, addr uint32, port uint16) {
	s.conns[idx].netfd = idx
	s.conns[idx].srcPort = uint16(idx + PortOffset)
	s.conns[idx].dstAddr = addr
	s.conns[idx].dstPort = port
	s.conns[idx].dstMAC = mac
	s.conns[idx].macValid = true
	s.conns[idx].rx = ring.New(RXBufferSize)
	s.conns[idx].cond = sync.NewCond(&s.mu)
}

func TestWriteProducesExpectedFrame(t *testing.T) {
	s := newTestStack(t)
	resolvedConn(s, 0, testPeerMAC, testPeerIP, 5000)

	var frame []byte
	s.dev.Tap = func(egress bool, buf []byte) {
		if egress {
			frame = append([]byte{}, buf...)
		}
	}

	err := s.Write(0, []byte("hello, world"))
	require.NoError(t, err)

	eth, off, err := wire.UnpackEthernet(frame)
	require.NoError(t, err)
	require.Equal(t, testPeerMAC, eth.Dst)
	require.Equal(t, uint16(wire.EtherTypeIPv4), eth.EtherType)

	ip, ioff, err := wire.UnpackIPv4(frame[off:])
	require.NoError(t, err)
	require.Equal(t, testLocalIP, ip.Src)
	require.Equal(t, testPeerIP, ip.Dst)
	require.Equal(t, uint8(wire.IPProtoUDP), ip.Protocol)
	require.Equal(t, uint16(40), ip.TotalLen)

	udp, uoff, err := wire.UnpackUDP(frame[off+ioff:])
	require.NoError(t, err)
	require.Equal(t, uint16(PortOffset), udp.SrcPort)
	require.Equal(t, uint16(5000), udp.DstPort)
	require.Equal(t, uint16(20), udp.Len)
	require.Equal(t, "hello, world", string(frame[off+ioff+uoff:]))
}

func TestWriteRejectsOversizedPayload(t *testing.T) {
	s := newTestStack(t)
	resolvedConn(s, 0, testPeerMAC, testPeerIP, 5000)

	err := s.Write(0, make([]byte, MaxPayload+1))
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestWriteRejectsBadFd(t *testing.T) {
	s := newTestStack(t)
	err := s.Write(5, []byte("x"))
	require.ErrorIs(t, err, ErrBadFd)
}

func TestReadDeliversInjectedDatagram(t *testing.T) {
	s := newTestStack(t)
	resolvedConn(s, 0, testPeerMAC, testPeerIP, 5000)

	eth := &wire.EthernetHeader{Dst: s.dev.MACAddress(), EtherType: wire.EtherTypeIPv4}
	ip := &wire.IPv4Header{Version: 4, IHL: 5, TotalLen: 20 + 8 + 3, TTL: 64, Protocol: wire.IPProtoUDP, Src: testPeerIP, Dst: testLocalIP}
	udp := &wire.UDPHeader{SrcPort: 5000, DstPort: PortOffset, Len: 8 + 3}
	buf := make([]byte, wire.EthernetHeaderLen+wire.IPv4HeaderLen+wire.UDPHeaderLen+3)
	off := 0
	off += wire.PackEthernet(eth, buf[off:])
	off += wire.PackIPv4(ip, buf[off:])
	off += wire.PackUDP(udp, buf[off:])
	copy(buf[off:], []byte("abc"))

	s.mu.Lock()
	s.handleFrame(buf, len(buf))
	s.mu.Unlock()

	out := make([]byte, 16)
	n, err := s.Read(0, out)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "abc", string(out[:3]))
}

func TestHandleIPv4DropsFrameForOtherAddress(t *testing.T) {
	s := newTestStack(t)
	resolvedConn(s, 0, testPeerMAC, testPeerIP, 5000)

	eth := &wire.EthernetHeader{Dst: s.dev.MACAddress(), EtherType: wire.EtherTypeIPv4}
	ip := &wire.IPv4Header{Version: 4, IHL: 5, TotalLen: 28, TTL: 64, Protocol: wire.IPProtoUDP, Src: testPeerIP, Dst: 0x0A000003}
	udp := &wire.UDPHeader{SrcPort: 5000, DstPort: PortOffset, Len: 8}
	buf := make([]byte, wire.EthernetHeaderLen+wire.IPv4HeaderLen+wire.UDPHeaderLen)
	off := 0
	off += wire.PackEthernet(eth, buf[off:])
	off += wire.PackIPv4(ip, buf[off:])
	wire.PackUDP(udp, buf[off:])

	s.mu.Lock()
	s.handleFrame(buf, len(buf))
	s.mu.Unlock()

	require.Equal(t, 0, s.conns[0].rx.Len())
}

func TestCloseIsIdempotent(t *testing.T) {
	s := newTestStack(t)
	resolvedConn(s, 0, testPeerMAC, testPeerIP, 5000)

	require.NoError(t, s.Close(0))
	require.True(t, s.conns[0].free())
	require.NoError(t, s.Close(0))
}
