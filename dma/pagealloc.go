package dma

import "errors"

// errOutOfMemory is returned by AllocPage when the region has no block
// large enough left; Region.alloc itself panics on exhaustion since it was
// written for a caller willing to treat that as fatal, which e1000.Device
// is not — init failure must propagate as an error, not crash the board.
var errOutOfMemory = errors.New("dma: region exhausted")

// PageAllocator adapts a Region to soc/intel/e1000.PageAllocator, handing
// out fixed PageSize-aligned, PageSize-sized blocks for descriptor rings
// and packet buffers.
//
// e1000.PageAllocator returns a physical address alongside the slice
// because the descriptor rings are programmed with addresses the NIC's DMA
// engine dereferences directly; on tamago/amd64 physical and virtual
// address spaces for RAM are identity-mapped, so the address Reserve hands
// back doubles as both.
type PageAllocator struct {
	region   *Region
	pageSize uint
}

// NewPageAllocator wraps r, handing out pages of pageSize bytes.
func NewPageAllocator(r *Region, pageSize uint) *PageAllocator {
	return &PageAllocator{region: r, pageSize: pageSize}
}

// AllocPage reserves one page from the region, returning its backing slice
// and physical address.
func (p *PageAllocator) AllocPage() (buf []byte, phys uint64, err error) {
	defer func() {
		if recover() != nil {
			buf, phys, err = nil, 0, errOutOfMemory
		}
	}()

	addr, b := p.region.Reserve(int(p.pageSize), int(p.pageSize))
	if b == nil {
		return nil, 0, errOutOfMemory
	}
	return b, uint64(addr), nil
}

// FreePage releases the page at phys back to the region.
func (p *PageAllocator) FreePage(phys uint64) {
	p.region.Release(uint(phys))
}
