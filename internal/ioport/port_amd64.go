// Package ioport declares the raw x86 port I/O primitives PCI
// configuration-space access needs on real hardware. Grounded on
// usbarmory-tamago/internal/reg's In8/Out8/In16/Out16/In32/Out32 stubs
// (reg/port_amd64.go), split into their own package here because this
// module's internal/reg is instead a hosted, testable MMIO register
// window (see internal/reg's doc comment) rather than a direct
// physical-address accessor, and port I/O has nothing to do with that.
//
// Only In32/Out32 are declared — the 0xCF8/0xCFC PCI configuration
// mechanism this driver uses is 32-bit only.
package ioport

// In32 and Out32 are implemented in port_amd64.s; they issue the x86 IN
// and OUT instructions directly and have no portable Go equivalent.
func In32(port uint16) (val uint32)
func Out32(port uint16, val uint32)
