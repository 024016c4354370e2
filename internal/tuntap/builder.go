package tuntap

import (
	"context"
	"net/netip"

	"grimm.is/tuntap/internal/logging"
)

// Builder collects the options of a new TUN/TAP interface. Every option
// returns a modified copy; nothing touches the kernel until Build or
// BuildMultiQueue.
//
//	q, err := tuntap.NewBuilder().
//		PacketInfo(false).
//		MTU(1350).
//		Up().
//		Build(ctx)
type Builder struct {
	params  Params
	backend Backend
	logger  *logging.Logger
}

// NewBuilder returns a builder with the default parameters.
func NewBuilder() Builder {
	return Builder{params: DefaultParams()}
}

// Name sets the interface name (at most 16 bytes, longer names are
// truncated). An empty name lets the kernel pick one.
func (b Builder) Name(name string) Builder {
	b.params.Name = name
	return b
}

// Tap allocates a TAP device when true, a TUN device otherwise.
func (b Builder) Tap(tap bool) Builder {
	if tap {
		b.params.Kind = KindTAP
	} else {
		b.params.Kind = KindTUN
	}
	return b
}

// PacketInfo toggles the 4-byte packet information header. Disabling it
// sets IFF_NO_PI.
func (b Builder) PacketInfo(enabled bool) Builder {
	b.params.PacketInfo = enabled
	return b
}

// MTU sets the interface MTU.
func (b Builder) MTU(mtu int) Builder {
	b.params.MTU = &mtu
	return b
}

// Owner sets the uid allowed to attach to the interface.
func (b Builder) Owner(uid int) Builder {
	b.params.Owner = &uid
	return b
}

// Group sets the gid allowed to attach to the interface.
func (b Builder) Group(gid int) Builder {
	b.params.Group = &gid
	return b
}

// Address sets the IPv4 address.
func (b Builder) Address(addr netip.Addr) Builder {
	b.params.Address = addr
	return b
}

// Destination sets the point-to-point peer address.
func (b Builder) Destination(addr netip.Addr) Builder {
	b.params.Destination = addr
	return b
}

// Broadcast sets the broadcast address.
func (b Builder) Broadcast(addr netip.Addr) Builder {
	b.params.Broadcast = addr
	return b
}

// Netmask sets the netmask.
func (b Builder) Netmask(addr netip.Addr) Builder {
	b.params.Netmask = addr
	return b
}

// MAC sets the hardware address of a TAP interface.
func (b Builder) MAC(mac EthernetAddr) Builder {
	b.params.MAC = &mac
	return b
}

// Persist keeps the interface after the process closes its descriptors.
func (b Builder) Persist() Builder {
	b.params.Persist = true
	return b
}

// Up brings the interface up once it is configured.
func (b Builder) Up() Builder {
	b.params.Up = true
	return b
}

// WithBackend replaces the kernel backend.
func (b Builder) WithBackend(backend Backend) Builder {
	b.backend = backend
	return b
}

// WithLogger sets the logger used during allocation.
func (b Builder) WithLogger(logger *logging.Logger) Builder {
	b.logger = logger
	return b
}

// Params returns the parameters collected so far.
func (b Builder) Params() Params {
	return b.params
}

// Build allocates a single-queue interface.
func (b Builder) Build(ctx context.Context) (*Queue, error) {
	queues, err := b.BuildMultiQueue(ctx, 1)
	if err != nil {
		return nil, err
	}
	return queues[0], nil
}

// BuildMultiQueue allocates an interface with n queues sharing one
// configuration handle.
func (b Builder) BuildMultiQueue(ctx context.Context, n int) ([]*Queue, error) {
	queues, _, err := b.allocator().Allocate(ctx, b.params, n)
	return queues, err
}

func (b Builder) allocator() *Allocator {
	backend := b.backend
	if backend == nil {
		backend = DefaultBackend
	}
	return NewAllocator(backend, b.logger)
}
