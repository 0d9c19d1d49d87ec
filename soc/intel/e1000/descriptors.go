package e1000

import "encoding/binary"

// rxDescriptor views one 16-byte slot of the RX ring. Field layout is
// original_source/e1000.c's struct rx_desc, corrected per spec section 9
// (the length field is read as a full 16-bit value, not truncated to 8
// bits).
type rxDescriptor []byte

func (d rxDescriptor) setAddr(phys uint64) { binary.LittleEndian.PutUint64(d[0:8], phys) }

func (d rxDescriptor) length() int { return int(binary.LittleEndian.Uint16(d[8:10])) }

func (d rxDescriptor) status() byte { return d[12] }

func (d rxDescriptor) done() bool { return d.status()&ddBit != 0 }

func (d rxDescriptor) eop() bool { return d.status()&eopBit != 0 }

func (d rxDescriptor) clear() {
	d[12] = 0
	d[13] = 0
}

// txDescriptor views one 16-byte slot of the TX ring. Two shapes share
// the slot: a data descriptor (dtyp=1) and a context descriptor
// (dtyp=0, emitted once per spec section 9's redesign note 2 instead of
// before every packet). Bit positions below follow e1000.c's opts[0]/
// opts[1] packing exactly, renamed to the field names spec section 3
// gives them.
type txDescriptor []byte

const (
	cmdEOP  = 1 << 0
	cmdIFCS = 1 << 1
	cmdRS   = 1 << 3
	cmdDEXT = 1 << 5

	dtypData    = 1
	dtypContext = 0
)

func (d txDescriptor) setAddr(phys uint64) { binary.LittleEndian.PutUint64(d[0:8], phys) }

func (d txDescriptor) setLength(n int) { binary.LittleEndian.PutUint16(d[8:10], uint16(n)) }

func (d txDescriptor) setDTYP(dtyp byte) {
	d[10] = d[10]&0x0f | dtyp<<4
}

func (d txDescriptor) setCMD(cmd byte) { d[11] = cmd }

func (d txDescriptor) setPopts(popts byte) { d[13] = popts }

func (d txDescriptor) sta() byte { return d[12] }

func (d txDescriptor) done() bool { return d.sta()&ddBit != 0 }

func (d txDescriptor) clear() { d[12] = 0 }

// fillData packs a legacy data descriptor for a frame of n bytes at phys,
// per spec section 4.2's transmit sequence: DTYP=1, DCMD=EOP|IFCS|RS|DEXT,
// POPTS set when checksum offload applies.
func (d txDescriptor) fillData(phys uint64, n int, offload bool) {
	d.setAddr(phys)
	d.setLength(n)
	d.setDTYP(dtypData)
	d.setCMD(cmdEOP | cmdIFCS | cmdRS | cmdDEXT)
	d.clear()
	if offload {
		d.setPopts(1)
	} else {
		d.setPopts(0)
	}
	d[14], d[15] = 0, 0
}

// Context-descriptor checksum-offset fields, per spec section 4.2's
// redesign note 2 (the original source's TUCSS=14 pointed at the start of the Ethernet header instead
// of the UDP header; this fixes it to 34 = 14 + 20).
const (
	ctxIPCSS = 14
	ctxIPCSO = 24
	ctxIPCSE = 33
	ctxTUCSS = 34
	ctxTUCSO = 40
	ctxTUCSE = 0
	ctxTUCMD = 1 << 5
)

// fillContext packs the one-time TX context descriptor carrying the IP
// and UDP checksum offload offsets.
func (d txDescriptor) fillContext() {
	d[0] = ctxIPCSS
	d[1] = ctxIPCSO
	binary.LittleEndian.PutUint16(d[2:4], ctxIPCSE)
	d[4] = ctxTUCSS
	d[5] = ctxTUCSO
	binary.LittleEndian.PutUint16(d[6:8], ctxTUCSE)
	d[8], d[9], d[10] = 0, 0, 0
	d[11] = ctxTUCMD
	d[12], d[13], d[14], d[15] = 0, 0, 0, 0
}

func ringSlot(page []byte, i int) []byte {
	return page[i*descriptorSize : (i+1)*descriptorSize]
}
