package dma

import "testing"

// Reserve returns a slice backed by the region's raw address range, which
// is only valid memory on real hardware (the bare-metal case this package
// targets); these tests stick to the bookkeeping Reserve/Release/Reserved
// do (tracking which addresses are claimed), never dereferencing the
// slice's bytes, so they stay safe to run hosted.

func TestRegionReservedReportsOwnership(t *testing.T) {
	r := New(0x20000, 4096)

	_, buf := r.Reserve(64, 0)
	if res, _ := r.Reserved(buf); !res {
		t.Fatal("Reserved() = false for a buffer taken from this region")
	}

	other := make([]byte, 64)
	if res, _ := r.Reserved(other); res {
		t.Fatal("Reserved() = true for a heap buffer not backed by this region")
	}
}

func TestDefaultReturnsInstalledRegion(t *testing.T) {
	r := New(0x30000, 4096)
	Init(r)

	if Default() != r {
		t.Fatal("Default() did not return the region installed by Init")
	}
}
