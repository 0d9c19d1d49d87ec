package arp

import (
	"testing"
	"time"

	"github.com/progbits/e1000net/wire"
	"github.com/stretchr/testify/require"
)

var (
	localMAC = [6]byte{0x52, 0x54, 0x00, 0x01, 0x02, 0x03}
	localIP  = uint32(0x0A000001) // 10.0.0.1
	peerMAC  = [6]byte{0x52, 0x54, 0x00, 0x04, 0x05, 0x06}
	peerIP   = uint32(0x0A000002) // 10.0.0.2
)

func TestBuildRequestIsBroadcast(t *testing.T) {
	buf := BuildRequest(localMAC, localIP, peerIP)

	eth, off, err := wire.UnpackEthernet(buf)
	require.NoError(t, err)
	require.Equal(t, wire.BroadcastMAC, eth.Dst)
	require.Equal(t, uint16(wire.EtherTypeARP), eth.EtherType)

	pkt, _, err := wire.UnpackARP(buf[off:])
	require.NoError(t, err)
	require.Equal(t, uint16(wire.ARPRequest), pkt.Oper)
	require.Equal(t, ipBytes(peerIP), pkt.TPA)
}

func TestHandleReplyStoresResolution(t *testing.T) {
	c := New()

	reply := &wire.ARPPacket{Oper: wire.ARPReply, SHA: peerMAC, SPA: ipBytes(peerIP), TPA: ipBytes(localIP)}
	out, ok := c.Handle(reply, localMAC, localIP)
	require.False(t, ok)
	require.Nil(t, out)

	mac, found := c.Lookup(peerIP)
	require.True(t, found)
	require.Equal(t, peerMAC, mac)
}

func TestHandleRequestBuildsReply(t *testing.T) {
	c := New()
	req := &wire.ARPPacket{Oper: wire.ARPRequest, SHA: peerMAC, SPA: ipBytes(peerIP), TPA: ipBytes(localIP)}

	out, ok := c.Handle(req, localMAC, localIP)
	require.True(t, ok)

	eth, off, err := wire.UnpackEthernet(out)
	require.NoError(t, err)
	require.Equal(t, peerMAC, eth.Dst)

	pkt, _, err := wire.UnpackARP(out[off:])
	require.NoError(t, err)
	require.Equal(t, uint16(wire.ARPReply), pkt.Oper)
	require.Equal(t, ipBytes(localIP), pkt.SPA)
	require.Equal(t, ipBytes(peerIP), pkt.TPA)
}

func TestHandleIgnoresPacketsForOtherAddresses(t *testing.T) {
	c := New()
	req := &wire.ARPPacket{Oper: wire.ARPRequest, SHA: peerMAC, SPA: ipBytes(peerIP), TPA: ipBytes(0x0A000099)}

	out, ok := c.Handle(req, localMAC, localIP)
	require.False(t, ok)
	require.Nil(t, out)
}

func TestLookupExpiresAfterTTL(t *testing.T) {
	c := New()
	start := time.Now()
	c.now = func() time.Time { return start }

	c.Store(peerIP, peerMAC)
	_, found := c.Lookup(peerIP)
	require.True(t, found)

	c.now = func() time.Time { return start.Add(TTL + time.Second) }
	_, found = c.Lookup(peerIP)
	require.False(t, found)
}
