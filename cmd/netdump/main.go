// Command netdump boots the same NIC cmd/netd does, but attaches a pcap
// capture of every frame drained or transmitted instead of (or alongside)
// serving the connection table. Grounded on
// wiresock-ndisapi-go/examples/capture's pcapgo.Writer usage.
//
// +build tamago,amd64

package main

import (
	"log"
	"os"

	"github.com/progbits/e1000net/netboot"
)

func mustEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func main() {
	log.SetFlags(0)

	localIP, err := netboot.ParseIPv4(mustEnv("NETD_LOCAL_ADDR", "10.0.2.15"))
	if err != nil {
		log.Fatalf("netdump: %v", err)
	}

	path := "netdump.pcap"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("netdump: %v", err)
	}
	defer f.Close()

	w, err := netboot.NewPcapWriter(f)
	if err != nil {
		log.Fatalf("netdump: %v", err)
	}

	stack, dev, err := netboot.Bring(localIP)
	if err != nil {
		log.Fatalf("netdump: %v", err)
	}
	dev.Tap = netboot.AttachCapture(w, nil)

	log.Printf("netdump: capturing to %s", path)
	for {
		stack.OnInterrupt()
	}
}
