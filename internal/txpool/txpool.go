// Package txpool implements the fixed-size pool of pre-allocated TX
// scratch buffers the e1000 driver copies outgoing frames into.
//
// original_source/e1000.c allocated a fresh scratch page for every
// transmit and never freed it, so each frame sent leaked one page.
// Spec section 9's redesign note 3 replaces this with a
// pool sized to the ring so a slot is always available for reuse once
// its descriptor's DD bit is observed, following the fixed-capacity
// slab pattern of usbarmory-tamago/dma.Region.
package txpool

import "fmt"

// ErrExhausted is returned by Reserve when every slot is currently
// owned by an in-flight descriptor.
var ErrExhausted = fmt.Errorf("txpool: no free slot")

// Pool manages n fixed-size buffers in round-robin order, mirroring the
// descriptor ring it backs one-to-one.
type Pool struct {
	bufs [][]byte
	phys []uint64
	free []bool
	next int
}

// New builds a pool over the caller-allocated bufs, with phys giving
// each buffer's DMA-visible physical address (len(phys) must equal
// len(bufs)).
func New(bufs [][]byte, phys []uint64) *Pool {
	free := make([]bool, len(bufs))
	for i := range free {
		free[i] = true
	}
	return &Pool{bufs: bufs, phys: phys, free: free}
}

// Reserve returns the index, backing buffer and physical address of the
// next free slot, marking it in-use. The caller (the e1000 driver) frees
// it again by calling Release once the device reports the matching
// descriptor done.
func (p *Pool) Reserve() (index int, buf []byte, phys uint64, err error) {
	for i := 0; i < len(p.bufs); i++ {
		idx := (p.next + i) % len(p.bufs)
		if p.free[idx] {
			p.free[idx] = false
			p.next = (idx + 1) % len(p.bufs)
			return idx, p.bufs[idx], p.phys[idx], nil
		}
	}
	return 0, nil, 0, ErrExhausted
}

// Release returns slot i to the free list.
func (p *Pool) Release(i int) {
	p.free[i] = true
}

// Len reports the pool's fixed capacity.
func (p *Pool) Len() int { return len(p.bufs) }

// Free reports how many slots are currently unreserved.
func (p *Pool) Free() int {
	n := 0
	for _, f := range p.free {
		if f {
			n++
		}
	}
	return n
}
