package e1000

import "errors"

// ErrFrameTooLarge is returned by Transmit when a frame would not fit in
// a single TX buffer page.
var ErrFrameTooLarge = errors.New("e1000: frame exceeds one TX buffer page")

// MaxFrameLen is the largest frame Transmit will accept: one DMA page,
// per spec section 3's fixed 4096-byte buffer pages.
const MaxFrameLen = PageSize

// Transmit reserves a scratch buffer from the TX pool, copies buf into
// it and hands it to the device, emitting the one-time
// checksum-offload context descriptor first if offload is requested and
// it has not already been written this session (spec section 9's
// redesign note 2 — the original source emitted a context descriptor
// before every single packet). The caller must hold
// netstack.Stack's netlock.
func (d *Device) Transmit(buf []byte, offload bool) error {
	if len(buf) > MaxFrameLen {
		return ErrFrameTooLarge
	}

	if offload && !d.txCtxWritten {
		ctx := txDescriptor(ringSlot(d.txPage, d.txNext))
		ctx.fillContext()
		d.txNext = (d.txNext + 1) % RingLen
		d.txCtxWritten = true
	}

	poolIdx, scratch, phys, err := d.txPool.Reserve()
	if err != nil {
		return err
	}
	copy(scratch, buf)

	if d.Tap != nil {
		d.Tap(true, buf)
	}

	slot := d.txNext
	desc := txDescriptor(ringSlot(d.txPage, slot))
	desc.fillData(phys, len(buf), offload)
	d.txSlotPool[slot] = poolIdx

	d.txNext = (d.txNext + 1) % RingLen
	d.regs.Write(regTDT, uint32(d.txNext))

	return nil
}

// reclaimTX walks descriptors from txHead forward, releasing each one's
// pool slot back for reuse once the device has marked it done (TXDW),
// and refreshes the diagnostic counters. The original source has no
// equivalent pool to reclaim into; these counters are a supplemented
// feature backed by the GPTC/TPT/TDFPC registers original_source/e1000.c
// leaves unread.
func (d *Device) reclaimTX() {
	for d.txHead != d.txNext {
		desc := txDescriptor(ringSlot(d.txPage, d.txHead))
		if !desc.done() {
			break
		}
		desc.clear()
		if idx := d.txSlotPool[d.txHead]; idx >= 0 {
			d.txPool.Release(idx)
			d.txSlotPool[d.txHead] = -1
		}
		d.txHead = (d.txHead + 1) % RingLen
	}

	d.stats.GoodPacketsTransmitted = d.regs.Read(regGPTC)
	d.stats.PacketsTransmitted = d.regs.Read(regTPT)
	d.stats.TxFIFOPacketCount = d.regs.Read(regTDFPC)
}

// Stats returns a snapshot of the transmit diagnostic counters.
func (d *Device) Stats() Stats { return d.stats }
