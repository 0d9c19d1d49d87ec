package netstack

import (
	"sync"

	"github.com/progbits/e1000net/internal/ring"
)

// MaxConns is the fixed connection-table size, original_source/sysnet.c's
// NCONN.
const MaxConns = 100

// PortOffset maps slot k to local UDP port k+PortOffset,
// original_source/sysnet.c's PORT_OFFSET.
const PortOffset = 3000

// RXBufferSize is the fixed per-connection RX buffer capacity,
// original_source/sysnet.c's single kalloc'd page per conn.
const RXBufferSize = 4096

// conn is one connection-table slot. netfd == -1 marks it free.
type conn struct {
	netfd    int
	typ      uint8
	srcPort  uint16
	dstAddr  uint32
	dstPort  uint16
	dstMAC   [6]byte
	macValid bool

	rx   *ring.Buffer
	cond *sync.Cond
}

func (c *conn) free() bool { return c.netfd == -1 }

func (c *conn) reset() {
	c.netfd = -1
	c.typ = 0
	c.srcPort = 0
	c.dstAddr = 0
	c.dstPort = 0
	c.dstMAC = [6]byte{}
	c.macValid = false
	c.rx = nil
	c.cond = nil
}
