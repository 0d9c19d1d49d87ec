// First-fit memory allocator for DMA buffers
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma

// block is one span of the region's address range, either on the free
// list or keyed into usedBlocks by addr.
type block struct {
	addr uint
	size uint
}
