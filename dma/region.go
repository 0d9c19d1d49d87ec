// First-fit memory allocator for DMA buffers
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dma backs soc/intel/e1000.PageAllocator on real hardware: the
// e1000 RX/TX descriptor rings and packet buffers must live at addresses
// the NIC can DMA into, which the Go heap does not guarantee, so they are
// instead carved out of a fixed physical range this package owns outright
// and the garbage collector never touches. Region.Reserve/Release hand out
// that range first-fit, with no copy — the only discipline a page-granular
// allocator needs, since every page it hands out is claimed for the
// lifetime of the ring or buffer it backs and never staged through
// piecemeal.
package dma

import (
	"container/list"
	"reflect"
	"sync"
	"unsafe"
)

// Region represents a memory region allocated for DMA purposes.
type Region struct {
	sync.Mutex

	start uint
	size  uint

	freeBlocks *list.List
	usedBlocks map[uint]*block
}

var dma *Region

// New carves out a Region covering [start, start+size) for first-fit
// allocation. The caller must guarantee this range is never touched by
// anything else (Go heap, other DMA regions, device firmware).
func New(start uint, size uint) *Region {
	r := &Region{
		start:      start,
		size:       size,
		freeBlocks: list.New(),
		usedBlocks: make(map[uint]*block),
	}
	r.freeBlocks.PushBack(&block{addr: start, size: size})
	return r
}

// Init installs r as the global DMA region returned by Default.
func Init(r *Region) {
	dma = r
}

// Default returns the global DMA region instance.
func Default() *Region {
	return dma
}

// Start returns the DMA region start address.
func (dma *Region) Start() uint {
	return dma.start
}

// End returns the DMA region end address.
func (dma *Region) End() uint {
	return dma.start + dma.size
}

// Size returns the DMA region size.
func (dma *Region) Size() uint {
	return dma.size
}

// Reserve allocates a slice of bytes for DMA purposes, by placing its data
// within the DMA region, with optional alignment. It returns the slice along
// with its data allocation address. The buffer can be freed up with Release().
//
// buf's contents are uninitialized; only the original buf returned here, not
// any derived sub-slice, can be passed to Release().
//
// The optional alignment must be a power of 2; an alignment of 0 selects
// word alignment (4), any other value is used as given.
func (dma *Region) Reserve(size int, align int) (addr uint, buf []byte) {
	if size == 0 {
		return
	}

	dma.Lock()
	defer dma.Unlock()

	b := dma.alloc(uint(size), uint(align))

	dma.usedBlocks[b.addr] = b

	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&buf))
	hdr.Data = uintptr(unsafe.Pointer(uintptr(b.addr)))
	hdr.Len = size
	hdr.Cap = hdr.Len

	return b.addr, buf
}

// Reserved returns whether a slice of bytes data is allocated within the DMA
// buffer region, it is used to determine whether the passed buffer has been
// previously allocated by this package with Reserve().
func (dma *Region) Reserved(buf []byte) (res bool, addr uint) {
	ptr := uint(uintptr(unsafe.Pointer(&buf[0])))
	res = ptr >= dma.start && ptr+uint(len(buf)) <= dma.start+dma.size

	return res, ptr
}

// Release frees the memory region stored at the passed address, the region
// must have been previously allocated with Reserve().
func (dma *Region) Release(addr uint) {
	dma.freeBlock(addr)
}

func (dma *Region) defrag() {
	var prevBlock *block

	// find contiguous free blocks and combine them
	for e := dma.freeBlocks.Front(); e != nil; e = e.Next() {
		b := e.Value.(*block)

		if prevBlock != nil {
			if prevBlock.addr+prevBlock.size == b.addr {
				prevBlock.size += b.size
				defer dma.freeBlocks.Remove(e)
				continue
			}
		}

		prevBlock = e.Value.(*block)
	}
}

func (dma *Region) alloc(size uint, align uint) *block {
	var e *list.Element
	var freeBlock *block
	var pad uint

	if align == 0 {
		// force word alignment
		align = 4
	}

	// find suitable block
	for e = dma.freeBlocks.Front(); e != nil; e = e.Next() {
		b := e.Value.(*block)

		// pad to required alignment
		pad = -b.addr & (align - 1)
		size += pad

		if b.size >= size {
			freeBlock = b
			break
		}
	}

	if freeBlock == nil {
		panic("out of memory")
	}

	// allocate block from free linked list
	defer dma.freeBlocks.Remove(e)

	// adjust block to desired size, add new block for remainder
	if r := freeBlock.size - size; r != 0 {
		newBlockAfter := &block{
			addr: freeBlock.addr + size,
			size: r,
		}

		freeBlock.size = size
		dma.freeBlocks.InsertAfter(newBlockAfter, e)
	}

	if pad != 0 {
		// claim padding space
		newBlockBefore := &block{
			addr: freeBlock.addr,
			size: pad,
		}

		freeBlock.addr += pad
		freeBlock.size -= pad
		dma.freeBlocks.InsertBefore(newBlockBefore, e)
	}

	return freeBlock
}

func (dma *Region) free(usedBlock *block) {
	for e := dma.freeBlocks.Front(); e != nil; e = e.Next() {
		b := e.Value.(*block)

		if b.addr > usedBlock.addr {
			dma.freeBlocks.InsertBefore(usedBlock, e)
			dma.defrag()
			return
		}
	}

	dma.freeBlocks.PushBack(usedBlock)
}

func (dma *Region) freeBlock(addr uint) {
	if addr == 0 {
		return
	}

	dma.Lock()
	defer dma.Unlock()

	b, ok := dma.usedBlocks[addr]

	if !ok {
		return
	}

	dma.free(b)
	delete(dma.usedBlocks, addr)
}
