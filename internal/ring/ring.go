// Package ring implements a fixed-capacity byte ring buffer with
// independent head/tail cursors, grounded on the head/tail discipline of
// usbarmory-tamago/soc/nxp/enet's bufferDescriptorRing — the same
// "hardware advances one cursor, software advances the other" shape
// applies here to producer (ingress) and consumer (Read) instead of
// device and driver.
//
// The xv6-net connection buffer this replaces only ever decremented a
// byte count and never advanced a read cursor, so unread bytes could be
// overwritten by the next append; this ring buffer tracks both ends so
// appended data is never trampled before it is consumed.
package ring

import "fmt"

// ErrWouldOverflow is returned by Write when appending would exceed the
// buffer's capacity.
var ErrWouldOverflow = fmt.Errorf("ring: write would overflow buffer")

// Buffer is a fixed-size byte ring buffer. The zero value is not usable;
// construct with New.
type Buffer struct {
	data []byte
	head int // next byte to read
	size int // number of unread bytes currently queued
}

// New allocates a ring buffer with the given capacity.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Len returns the number of unread bytes currently queued.
func (b *Buffer) Len() int {
	return b.size
}

// Cap returns the buffer's total capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Write appends p to the buffer. It fails with ErrWouldOverflow rather
// than partially writing if p does not fit in the remaining capacity.
func (b *Buffer) Write(p []byte) error {
	if len(p) > len(b.data)-b.size {
		return ErrWouldOverflow
	}

	tail := (b.head + b.size) % len(b.data)
	for _, c := range p {
		b.data[tail] = c
		tail = (tail + 1) % len(b.data)
	}
	b.size += len(p)

	return nil
}

// Read copies up to len(p) unread bytes into p, advances the read cursor
// past the copied bytes, and returns the number of bytes copied.
func (b *Buffer) Read(p []byte) int {
	n := len(p)
	if n > b.size {
		n = b.size
	}

	for i := 0; i < n; i++ {
		p[i] = b.data[(b.head+i)%len(b.data)]
	}

	b.head = (b.head + n) % len(b.data)
	b.size -= n

	return n
}

// Reset empties the buffer without freeing its backing storage.
func (b *Buffer) Reset() {
	b.head = 0
	b.size = 0
}
