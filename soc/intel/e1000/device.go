package e1000

import (
	"fmt"
	"time"

	"github.com/progbits/e1000net/internal/reg"
	"github.com/progbits/e1000net/internal/txpool"
	"github.com/progbits/e1000net/soc/intel/pci"
)

// Device drives one 82540EM NIC. Its zero value is not usable; build one
// with Init.
//
// None of Device's methods take a lock of their own — spec section 5
// names exactly one mutex for the whole stack, owned by netstack.Stack.
// Callers (netstack.Stack.OnInterrupt, netstack.Stack.Write) must hold
// that lock across every call made here.
type Device struct {
	regs *reg.Space
	pciDev *pci.Device

	MAC [6]byte

	alloc PageAllocator

	rxPage  []byte
	rxPhys  []uint64
	rxBufs  [][]byte
	rxBufPhys []uint64
	rxNext  int

	txPage []byte
	txPhys uint64
	txPool *txpool.Pool
	// txSlotPool maps a ring descriptor slot to the txPool index whose
	// buffer it currently points at, or -1 for a slot holding a context
	// descriptor (which owns no pool buffer).
	txSlotPool []int
	txNext int
	txHead int
	txCtxWritten bool

	// RxHandler is called once per completed descriptor drained from the
	// RX ring (original_source/sysnet.c's handle_frame), with that
	// descriptor's buffer only; frames spanning several descriptors are
	// not reassembled and the EOP bit is not consulted. It is invoked
	// with the caller's netlock already held, per spec section 5.
	RxHandler func(buf []byte, length int)

	// Tap, if set, observes every frame this device drains or
	// transmits, in addition to RxHandler — cmd/netdump uses it to
	// mirror both directions into a pcap capture without sitting in
	// the RX/TX hot path itself.
	Tap func(egress bool, buf []byte)

	stats Stats
}

// Config supplies Device.Init with the external collaborators spec
// section 1 places out of this module's scope.
type Config struct {
	Bus   pci.ConfigBus
	Alloc PageAllocator
	// EnableIRQ binds this device's interrupt line at the IOAPIC, or is
	// nil if the caller has already done so (e.g. a polling harness).
	EnableIRQ func()
}

// Init probes the PCI bus for an 82540EM, wraps its MMIO window,
// allocates and programs the RX/TX descriptor rings, and unmasks the
// interrupts spec section 4.1 names. mmio must be a byte slice backing
// the device's BAR0 MMIO window (mapped by the caller, per spec section
// 1 — page-table setup is out of scope here).
func (d *Device) Init(cfg Config, mmio []byte) error {
	dev := pci.Probe(cfg.Bus, 0, VendorIntel, Device82540)
	if dev == nil {
		return fmt.Errorf("e1000: no 82540EM found on bus 0")
	}
	dev.EnableBusMaster()
	d.pciDev = dev

	d.regs = reg.NewSpace(mmio)
	d.alloc = cfg.Alloc

	if err := d.readMAC(); err != nil {
		return err
	}

	if err := d.initRX(); err != nil {
		return err
	}
	if err := d.initTX(); err != nil {
		return err
	}

	d.regs.Write(regIMS, imsMask)

	if cfg.EnableIRQ != nil {
		cfg.EnableIRQ()
	}

	return nil
}

// eepromTimeout bounds each EERD word read. Real hardware completes an
// EEPROM read in microseconds; this is generous headroom, not a tuned
// value.
const eepromTimeout = 50 * time.Millisecond

// readMAC pulls the six MAC octets out of the EEPROM via the EERD
// register, per spec section 4.1 and original_source/e1000.c's
// e1000init: for each of the three 16-bit words, write (i<<8)|1 to
// start that word's read, spin on bit 4 (done), then take the high 16
// bits of the readback as the word.
func (d *Device) readMAC() error {
	for i := uint32(0); i < 3; i++ {
		d.regs.Write(regEERD, i<<8|1<<eerdStart)
		if !d.regs.WaitFor(eepromTimeout, regEERD, eerdDone, 1, 1) {
			return fmt.Errorf("e1000: EEPROM read timed out at word %d", i)
		}
		word := uint16(d.regs.Read(regEERD) >> 16)
		d.MAC[i*2] = byte(word)
		d.MAC[i*2+1] = byte(word >> 8)
	}

	return nil
}

func (d *Device) initRX() error {
	macLow := uint32(d.MAC[0]) | uint32(d.MAC[1])<<8 | uint32(d.MAC[2])<<16 | uint32(d.MAC[3])<<24
	macHigh := uint32(d.MAC[4]) | uint32(d.MAC[5])<<8
	d.regs.Write(regRAL, macLow)
	d.regs.Write(regRAH, macHigh)

	page, phys, err := d.alloc.AllocPage()
	if err != nil {
		return fmt.Errorf("e1000: alloc RX ring: %w", err)
	}
	d.rxPage = page
	d.rxPhys = []uint64{phys}

	d.rxBufs = make([][]byte, RingLen)
	d.rxBufPhys = make([]uint64, RingLen)
	for i := 0; i < RingLen; i++ {
		buf, bphys, err := d.alloc.AllocPage()
		if err != nil {
			return fmt.Errorf("e1000: alloc RX buffer %d: %w", i, err)
		}
		d.rxBufs[i] = buf
		d.rxBufPhys[i] = bphys
		rxDescriptor(ringSlot(d.rxPage, i)).setAddr(bphys)
	}

	d.regs.Write(regRDBAL, uint32(phys))
	d.regs.Write(regRDBAH, uint32(phys>>32))
	d.regs.Write(regRDLEN, PageSize)
	d.regs.Write(regRDH, 0)
	d.regs.Write(regRDT, uint32(RingLen-1))
	d.rxNext = 0

	rctl := uint32(rctlEN | rctlUPE | rctlMPE | rctlLPE | rctlBAM)
	rctl |= rctlBSEX | (rctlBSIZEMask << rctlBSIZEShift)
	d.regs.Write(regRCTL, rctl)

	return nil
}

func (d *Device) initTX() error {
	page, phys, err := d.alloc.AllocPage()
	if err != nil {
		return fmt.Errorf("e1000: alloc TX ring: %w", err)
	}
	d.txPage = page
	d.txPhys = phys

	bufs := make([][]byte, RingLen)
	phyAddrs := make([]uint64, RingLen)
	for i := 0; i < RingLen; i++ {
		buf, bphys, err := d.alloc.AllocPage()
		if err != nil {
			return fmt.Errorf("e1000: alloc TX buffer %d: %w", i, err)
		}
		bufs[i] = buf
		phyAddrs[i] = bphys
	}
	d.txPool = txpool.New(bufs, phyAddrs)

	d.txSlotPool = make([]int, RingLen)
	for i := range d.txSlotPool {
		d.txSlotPool[i] = -1
	}

	d.regs.Write(regTDBAL, uint32(phys))
	d.regs.Write(regTDBAH, uint32(phys>>32))
	d.regs.Write(regTDLEN, PageSize)
	d.regs.Write(regTDH, 0)
	d.regs.Write(regTDT, 0)
	d.txNext = 0
	d.txHead = 0
	d.txCtxWritten = false

	tctl := uint32(tctlEN | tctlPSP | 0xF<<tctlCTShift | 0x200<<tctlCOLDShift)
	d.regs.Write(regTCTL, tctl)
	d.regs.Write(regTIPG, 0xA)

	return nil
}

// MACAddress returns the station address read during Init.
func (d *Device) MACAddress() [6]byte { return d.MAC }
