package e1000

// OnInterrupt services one interrupt, reading and (per real 82540EM
// semantics) implicitly clearing ICR, then dispatching to RX drain
// and/or TX reclaim. The caller must hold netstack.Stack's netlock.
//
// Grounded on original_source/sysnet.c's e1000_intr and
// usbarmory-tamago/soc/nxp/enet.ENET's interrupt-driven RX path.
func (d *Device) OnInterrupt() {
	icr := d.regs.Read(regICR)

	if icr&IntRXT0 != 0 {
		d.drainRX()
	}
	if icr&IntTXDW != 0 {
		d.reclaimTX()
	}
}

// drainRX walks the RX ring from rxNext until it reaches a descriptor
// the device has not marked done, delivering each complete frame to
// RxHandler and advancing RDT so the device can reuse the slot.
//
// Fixes the original source's two RX bugs per spec section 9: the
// length mask is a full 16 bits (not 8), and the buffer pointer used to
// read out a frame is the ring-indexed slot's own backing buffer, not a
// pointer that was never advanced past slot 0.
func (d *Device) drainRX() {
	for {
		desc := rxDescriptor(ringSlot(d.rxPage, d.rxNext))
		if !desc.done() {
			break
		}

		n := desc.length()
		if n > 0 {
			if d.Tap != nil {
				d.Tap(false, d.rxBufs[d.rxNext][:n])
			}
			if d.RxHandler != nil {
				d.RxHandler(d.rxBufs[d.rxNext][:n], n)
			}
		}

		desc.clear()

		d.rxNext = (d.rxNext + 1) % RingLen
		tail := (d.rxNext - 1 + RingLen) % RingLen
		d.regs.Write(regRDT, uint32(tail))
	}
}
