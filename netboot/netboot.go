// Package netboot wires real hardware collaborators (PCI port I/O, a DMA
// page allocator, the e1000 driver) into a running netstack.Stack. It is
// the one piece of this module that cannot be exercised by a hosted test,
// since it dereferences physical addresses directly; cmd/netd and
// cmd/netdump both reduce to a call into this package plus a service
// loop, following example/example.go's split between a thin main and an
// importable implementation.
package netboot

import (
	"fmt"
	"unsafe"

	"github.com/progbits/e1000net/dma"
	"github.com/progbits/e1000net/internal/ioport"
	"github.com/progbits/e1000net/netstack"
	"github.com/progbits/e1000net/soc/intel/e1000"
	"github.com/progbits/e1000net/soc/intel/pci"
)

// dmaStart/dmaSize carve out the physical range handed to the DMA page
// allocator, following board/qemu/microvm's dmaStart/dmaSize constants in
// the wider tamago ecosystem; this range must never overlap the Go
// runtime's own heap (set via runtime.ramStart/ramSize at link time, out
// of this package's control).
const (
	dmaStart = 0x10000000
	dmaSize  = 0x01000000 // 16MB, far more than the 514 4KB pages e1000 Init allocates

	mmioWindowSize = 128 * 1024 // 82540EM BAR0 is 128KB
)

// configBus adapts internal/ioport's IN/OUT primitives to pci.ConfigBus.
type configBus struct{}

func (configBus) Out32(port uint16, val uint32) { ioport.Out32(port, val) }
func (configBus) In32(port uint16) uint32       { return ioport.In32(port) }

// mmioWindow builds a byte slice view over a physical MMIO base address.
// This is safe only because tamago/amd64 runs with an identity-mapped
// physical/virtual address space; it would not be safe under a kernel
// with its own page tables over device memory.
func mmioWindow(phys uint32, size int) []byte {
	ptr := unsafe.Pointer(uintptr(phys))
	return unsafe.Slice((*byte)(ptr), size)
}

// Bring probes the PCI bus for the 82540EM, brings it up, and returns a
// netstack.Stack bound to localIP. The returned Device is exposed too so
// a caller (cmd/netdump) can attach a Tap before servicing interrupts.
func Bring(localIP uint32) (*netstack.Stack, *e1000.Device, error) {
	region := dma.New(dmaStart, dmaSize)
	dma.Init(region)
	alloc := dma.NewPageAllocator(region, e1000.PageSize)

	bus := configBus{}

	// BAR0 is read here, outside Device.Init, to locate the MMIO window
	// (its length is the fixed mmioWindowSize); Device.Init probes the
	// bus again to enable bus mastering but never reads BAR0 itself.
	found := pci.Probe(bus, 0, e1000.VendorIntel, e1000.Device82540)
	if found == nil {
		return nil, nil, fmt.Errorf("netboot: no 82540EM found on bus 0")
	}
	mmio := mmioWindow(found.BaseAddress(), mmioWindowSize)

	dev := &e1000.Device{}
	cfg := e1000.Config{Bus: bus, Alloc: alloc}
	if err := dev.Init(cfg, mmio); err != nil {
		return nil, nil, fmt.Errorf("netboot: e1000 init: %w", err)
	}

	return netstack.New(dev, localIP), dev, nil
}

// ParseIPv4 parses a dotted-quad address into the big-endian uint32 form
// the rest of this module uses.
func ParseIPv4(s string) (uint32, error) {
	var a, b, c, d uint32
	if _, err := fmt.Sscanf(s, "%d.%d.%d.%d", &a, &b, &c, &d); err != nil {
		return 0, fmt.Errorf("netboot: invalid address %q: %w", s, err)
	}
	return a<<24 | b<<16 | c<<8 | d, nil
}
