package netboot

import (
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/progbits/e1000net/soc/intel/e1000"
)

// pcapWriter is the subset of *pcapgo.Writer AttachCapture needs, so
// tests can substitute a recorder instead of a real file.
type pcapWriter interface {
	WritePacket(ci gopacket.CaptureInfo, data []byte) error
}

// AttachCapture builds a Tap (see soc/intel/e1000.Device.Tap) that
// mirrors every frame into w as a pcap record. Grounded on
// wiresock-ndisapi-go/examples/capture's pcapgo.Writer/WritePacket use;
// the direction flag that capture's filter pair encodes as two separate
// callbacks is folded into Tap's egress bool here instead.
func AttachCapture(w pcapWriter, now func() time.Time) func(egress bool, buf []byte) {
	if now == nil {
		now = time.Now
	}
	return func(egress bool, buf []byte) {
		ci := gopacket.CaptureInfo{
			Timestamp:     now(),
			CaptureLength: len(buf),
			Length:        len(buf),
		}
		w.WritePacket(ci, buf)
	}
}

// NewPcapWriter wraps f as a pcap stream and writes its header, ready
// for AttachCapture.
func NewPcapWriter(f io.Writer) (*pcapgo.Writer, error) {
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(uint32(e1000.MaxFrameLen), layers.LinkTypeEthernet); err != nil {
		return nil, err
	}
	return w, nil
}
