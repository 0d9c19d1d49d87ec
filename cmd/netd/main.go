// Command netd boots a single Intel 82540EM NIC and serves the UDP
// connection table over it. It is the bare-metal entrypoint; everything
// it wires (PCI scan, DMA page allocation, the NIC driver, the stack)
// lives in netboot, following example/example.go's split between board
// bring-up in main and actual logic in importable packages.
//
// +build tamago,amd64

package main

import (
	"io/ioutil"
	"log"
	"os"
	"strconv"

	"github.com/progbits/e1000net/example"
	"github.com/progbits/e1000net/netboot"
	"github.com/progbits/e1000net/netstack"
)

const verbose = true

func init() {
	log.SetFlags(0)
	if verbose {
		log.SetOutput(os.Stdout)
	} else {
		log.SetOutput(ioutil.Discard)
	}
}

func mustEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func main() {
	localIP, err := netboot.ParseIPv4(mustEnv("NETD_LOCAL_ADDR", "10.0.2.15"))
	if err != nil {
		log.Fatalf("netd: %v", err)
	}

	stack, dev, err := netboot.Bring(localIP)
	if err != nil {
		log.Fatalf("netd: %v", err)
	}

	mac := dev.MACAddress()
	log.Printf("netd: up, MAC=%x local=%d.%d.%d.%d", mac,
		localIP>>24&0xff, localIP>>16&0xff, localIP>>8&0xff, localIP&0xff)

	// No IOAPIC/IDT wiring is attempted here (see DESIGN.md): this
	// service loop polls the one NIC it owns instead of taking a real
	// interrupt. The global lock netstack.Stack owns makes OnInterrupt
	// safe to call from a goroutine that is not in interrupt context.
	go func() {
		for {
			stack.OnInterrupt()
		}
	}()

	runMode(stack)
}

// runMode dispatches to example.Send/Listen when NETD_MODE requests the
// original_source/nc.c-style demo, following its -s/-l usage; with no
// mode set netd just serves the connection table forever.
func runMode(stack *netstack.Stack) {
	mode := os.Getenv("NETD_MODE")
	if mode == "" {
		select {}
	}

	peerIP, err := netboot.ParseIPv4(mustEnv("NETD_PEER_ADDR", "10.0.2.2"))
	if err != nil {
		log.Fatalf("netd: %v", err)
	}
	port, err := strconv.Atoi(mustEnv("NETD_PEER_PORT", "9000"))
	if err != nil {
		log.Fatalf("netd: invalid NETD_PEER_PORT: %v", err)
	}

	switch mode {
	case "send":
		err = example.Send(stack, peerIP, uint16(port), netstack.MaxPayload, os.Stdin)
	case "listen":
		err = example.Listen(stack, peerIP, uint16(port), netstack.MaxPayload, os.Stdout)
	default:
		log.Fatalf("netd: unknown NETD_MODE %q (want send or listen)", mode)
	}
	if err != nil {
		log.Fatalf("netd: %s: %v", mode, err)
	}
}
