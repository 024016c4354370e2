// Package tuntap allocates and configures Linux TUN/TAP interfaces.
//
// # Overview
//
// A TUN interface exchanges raw IP packets with user space, a TAP
// interface exchanges Ethernet frames. Each open descriptor on
// /dev/net/tun is one packet queue; several queues may share one
// interface (IFF_MULTI_QUEUE).
//
// # Key Components
//
//   - [Builder]: collects the options of a new interface
//   - [Allocator]: opens, attaches and configures the queues
//   - [Queue]: one packet queue, readable and writable
//   - [Interface]: the configuration handle shared by all queues
//   - [Ifreq], [Sockaddr]: the kernel wire structures
//
// # Allocation
//
// Allocation runs in a fixed order: open every descriptor, attach each
// one with TUNSETIFF, open the control socket, then apply MTU, owner,
// group, address, netmask, destination, broadcast, hardware address,
// persistence and finally the UP|RUNNING flags. Any failure closes every
// descriptor and the control socket opened so far.
//
// # Backends
//
// The kernel calls go through a [Backend]. [LinuxBackend] is the real
// one; [FakeBackend] simulates the kernel in memory for tests.
//
// # Example
//
//	q, err := tuntap.NewBuilder().
//		Name("tun0").
//		PacketInfo(false).
//		Address(netip.MustParseAddr("10.0.0.1")).
//		Netmask(netip.MustParseAddr("255.255.255.0")).
//		Up().
//		Build(ctx)
//	if err != nil {
//	    return err
//	}
//	defer q.Close()
package tuntap
