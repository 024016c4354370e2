package tuntap

import (
	"fmt"
	"math"
	"net/netip"
)

// MaxQueues is the kernel's limit on descriptors attached to one
// interface (MAX_TAP_QUEUES).
const MaxQueues = 256

// Kind selects the framing of the interface.
type Kind int

const (
	// KindTUN exchanges raw IP packets.
	KindTUN Kind = iota
	// KindTAP exchanges Ethernet frames.
	KindTAP
)

func (k Kind) String() string {
	switch k {
	case KindTUN:
		return "tun"
	case KindTAP:
		return "tap"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Params describes the interface to allocate. Zero-valued addresses and
// nil pointers mean "leave the kernel default".
type Params struct {
	Name       string
	Kind       Kind
	PacketInfo bool

	MTU   *int
	Owner *int
	Group *int

	Address     netip.Addr
	Destination netip.Addr
	Broadcast   netip.Addr
	Netmask     netip.Addr
	MAC         *EthernetAddr

	Persist bool
	Up      bool
}

// DefaultParams returns the builder defaults: a TUN device with the packet
// information header enabled and everything else left to the kernel.
func DefaultParams() Params {
	return Params{
		Kind:       KindTUN,
		PacketInfo: true,
	}
}

// Flags returns the TUNSETIFF flag word for an allocation of the given
// number of queues.
func (p Params) Flags(queues int) int16 {
	var flags int16 = iffTUN
	if p.Kind == KindTAP {
		flags = iffTAP
	}
	if !p.PacketInfo {
		flags |= iffNoPI
	}
	if queues > 1 {
		flags |= iffMultiQueue
	}
	return flags
}

// NameTruncated reports whether Name will be cut. The kernel keeps at
// most IFNAMSIZ-1 (15) bytes followed by a NUL.
func (p Params) NameTruncated() bool {
	return len(p.Name) >= ifNameSize
}

// Validate checks the parameters before any kernel call is made.
func (p Params) Validate() error {
	if p.Kind != KindTUN && p.Kind != KindTAP {
		return fmt.Errorf("invalid device kind %d", int(p.Kind))
	}
	if p.MTU != nil {
		if err := checkMTU(*p.MTU); err != nil {
			return err
		}
	}
	for _, a := range []struct {
		field string
		addr  netip.Addr
	}{
		{"address", p.Address},
		{"destination", p.Destination},
		{"broadcast", p.Broadcast},
		{"netmask", p.Netmask},
	} {
		if a.addr.IsValid() && !a.addr.Is4() && !a.addr.Is4In6() {
			return fmt.Errorf("invalid %s %s: %w", a.field, a.addr, ErrNotIPv4)
		}
	}
	return nil
}

func checkMTU(mtu int) error {
	if mtu < 0 || mtu > math.MaxInt32 {
		return fmt.Errorf("invalid MTU %d: %w", mtu, ErrInvalidMTU)
	}
	return nil
}

func checkQueueCount(n int) error {
	if n < 1 || n > MaxQueues {
		return fmt.Errorf("failed to allocate %d queues: %w", n, ErrInvalidQueueCount)
	}
	return nil
}
