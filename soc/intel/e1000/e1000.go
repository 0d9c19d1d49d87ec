// Package e1000 implements a driver for the Intel 82540EM-class Gigabit
// Ethernet controller: PCI bring-up, EEPROM MAC read, RX/TX DMA
// descriptor ring management and interrupt servicing.
//
// Grounded on usbarmory-tamago/soc/nxp/enet (dma.go, enet.go) for the
// buffer-descriptor-ring shape and Init/Start structure, and on
// original_source/e1000.c for the 82540EM register offsets, bit
// positions and descriptor field layout this package must reproduce
// bit-exact.
//
// Like usbarmory-tamago/soc/nxp/enet, this package never allocates its
// own DMA buffers directly: the page allocator and the physical/virtual
// address mapping are external collaborators (spec section 1), supplied
// through the PageAllocator interface; likewise PCI bus scanning and
// IOAPIC binding are supplied by the caller rather than implemented here
// in assembly.
//
// The device has no lock of its own. Per spec section 5 there is exactly
// one mutex in the whole stack — netstack.Stack's netlock — which also
// serializes RX drain and TX; OnInterrupt and Transmit document that
// their caller must already hold it.
package e1000

const (
	VendorIntel = 0x8086
	Device82540 = 0x100E
)

// Register offsets, spec section 6 / original_source/e1000.c.
const (
	regCTRL   = 0x00000
	regSTATUS = 0x00008
	regEERD   = 0x00014
	regICR    = 0x000C0
	regIMS    = 0x000D0
	regRCTL   = 0x00100
	regTCTL   = 0x00400
	regTIPG   = 0x00410
	regRDBAL  = 0x02800
	regRDBAH  = 0x02804
	regRDLEN  = 0x02808
	regRDH    = 0x02810
	regRDT    = 0x02818
	regTDBAL  = 0x03800
	regTDBAH  = 0x03804
	regTDLEN  = 0x03808
	regTDH    = 0x03810
	regTDT    = 0x03818
	regRAL    = 0x05400
	regRAH    = 0x05404
	regGPTC   = 0x04080
	regTPT    = 0x040D4
	regTDFPC  = 0x03430
)

// EERD bits.
const (
	eerdStart = 0
	eerdDone  = 4
)

// ICR/IMS interrupt cause bits.
const (
	IntTXDW = 1 << 0
	IntRXT0 = 1 << 7
	imsMask = (1 << 0) | (1 << 2) | (1 << 3) | (1 << 4) | (1 << 6) | (1 << 7)
)

// RCTL bits.
const (
	rctlEN     = 1 << 1
	rctlSBP    = 1 << 2
	rctlUPE    = 1 << 3
	rctlMPE    = 1 << 4
	rctlLPE    = 1 << 5
	rctlBAM    = 1 << 15
	rctlBSIZEShift = 16
	rctlBSIZEMask  = 0b11
	rctlBSEX   = 1 << 25
)

// TCTL bits.
const (
	tctlEN  = 1 << 1
	tctlPSP = 1 << 3
	tctlCTShift = 4
	tctlCOLDShift = 12
)

const (
	descriptorSize = 16
	// PageSize is the fixed DMA page size this driver allocates pages
	// in, per spec section 3 (4096-byte pages).
	PageSize = 4096
	// RingLen is the number of descriptors in one page-sized ring
	// (4096 / 16), per spec section 3.
	RingLen = PageSize / descriptorSize

	eopBit = 1 << 1
	ddBit  = 1 << 0
)

// PageAllocator is the external page-allocator collaborator (spec
// section 1's alloc_page/free_page). AllocPage must return a zeroed,
// 4096-byte-aligned page along with its physical address; FreePage
// returns it. The driver never needs to re-derive a physical address
// from an arbitrary slice (or vice versa) outside of the moment a page
// is allocated, so a separate virt_to_phys/phys_to_virt collaborator is
// folded into this single interface.
type PageAllocator interface {
	AllocPage() (virt []byte, phys uint64, err error)
	FreePage(phys uint64)
}

// Stats holds the read-only diagnostic counters this expansion wires in
// from original_source/e1000.c's GPTC/TPT/TDFPC registers (spec.md
// distilled them away; SPEC_FULL.md supplements them back in), following
// the read-only Stats struct pattern of
// usbarmory-tamago/soc/nxp/enet.ENET.Stats.
type Stats struct {
	PacketsTransmitted uint32
	GoodPacketsTransmitted uint32
	TxFIFOPacketCount uint32
}
