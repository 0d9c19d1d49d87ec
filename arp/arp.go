// Package arp implements a process-wide ARP cache and the request/reply
// builders original_source/sysnet.c calls arp_req and handle_arp.
//
// The original keeps no cache at all: each connection resolves its own
// destination MAC once into its own conn struct and never revisits it,
// so a stale or roaming MAC is never corrected for the life of the
// connection, and a reply is matched to a connection by linear-scanning
// every connection's dst_addr instead of being looked up against the
// address that was actually asked about. Spec section 9's redesign note
// 4 replaces this with one shared, TTL-expiring cache keyed by address,
// consulted by every connection, with waiters woken by address instead
// of by conn index.
//
// Cache has no lock of its own; like e1000.Device, its caller
// (netstack.Stack) holds the single netlock across every call, per spec
// section 5.
package arp

import "time"

// TTL is how long a resolved entry remains valid before Lookup treats it
// as stale and a fresh request is required. original_source/sysnet.c has
// no equivalent: its comment literally says "assuming the response will
// be valid for the duration of the connection's lifetime."
const TTL = 5 * time.Minute

type entry struct {
	mac     [6]byte
	expires time.Time
}

// Cache maps a resolved IPv4 address to its Ethernet address. Waking
// callers blocked on resolution is the caller's job (netstack.Stack
// broadcasts its own per-connection condition variables once Store has
// run) — Cache only ever holds the resolved table.
type Cache struct {
	entries map[uint32]entry
	now     func() time.Time
}

// New builds an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[uint32]entry),
		now:     time.Now,
	}
}

// Lookup returns addr's MAC if a non-expired entry exists.
func (c *Cache) Lookup(addr uint32) ([6]byte, bool) {
	e, ok := c.entries[addr]
	if !ok || c.now().After(e.expires) {
		return [6]byte{}, false
	}
	return e.mac, true
}

// Store records a freshly resolved MAC for addr.
func (c *Cache) Store(addr uint32, mac [6]byte) {
	c.entries[addr] = entry{mac: mac, expires: c.now().Add(TTL)}
}
