package netboot

import (
	"testing"
	"time"

	"github.com/google/gopacket"
)

type recordingWriter struct {
	packets [][]byte
}

func (r *recordingWriter) WritePacket(ci gopacket.CaptureInfo, data []byte) error {
	buf := append([]byte{}, data...)
	r.packets = append(r.packets, buf)
	return nil
}

func TestAttachCaptureRecordsBothDirections(t *testing.T) {
	rec := &recordingWriter{}
	fixed := time.Unix(0, 0)
	tap := AttachCapture(rec, func() time.Time { return fixed })

	tap(true, []byte("egress frame"))
	tap(false, []byte("ingress frame"))

	if len(rec.packets) != 2 {
		t.Fatalf("got %d packets, want 2", len(rec.packets))
	}
	if string(rec.packets[0]) != "egress frame" {
		t.Fatalf("packets[0] = %q", rec.packets[0])
	}
	if string(rec.packets[1]) != "ingress frame" {
		t.Fatalf("packets[1] = %q", rec.packets[1])
	}
}
