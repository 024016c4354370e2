package tuntap

import (
	"fmt"
	"net/netip"
	"sync"
	"sync/atomic"

	"github.com/vishvananda/netlink"

	"grimm.is/tuntap/internal/logging"
	"grimm.is/tuntap/internal/metrics"
)

// Interface is the configuration handle of one kernel interface. It owns
// the control socket and is shared by every Queue attached to the
// interface; the socket is closed when the last owner releases it.
//
// Configuration calls are not serialized: concurrent setters from
// different queues race in the kernel and the last writer wins.
type Interface struct {
	name    string
	backend Backend
	sock    ControlSocket
	logger  *logging.Logger
	metrics *metrics.Registry

	refs     atomic.Int32
	released atomic.Bool

	mu     sync.Mutex
	queues []*Queue
}

func newInterface(backend Backend, name string, logger *logging.Logger) (*Interface, error) {
	sock, err := backend.OpenControlSocket()
	if err != nil {
		return nil, &OpError{Op: "open control socket", Name: name, Err: err}
	}
	return &Interface{
		name:    name,
		backend: backend,
		sock:    sock,
		logger:  logger,
		metrics: metrics.Get(),
	}, nil
}

// Inspect opens a configuration handle for an existing interface without
// attaching a queue. Device-level operations (SetOwner, SetGroup, Persist)
// return ErrNoQueue on it. The caller must call Release.
func Inspect(name string) (*Interface, error) {
	return InspectWithBackend(DefaultBackend, name)
}

// InspectWithBackend is Inspect with an explicit backend.
func InspectWithBackend(backend Backend, name string) (*Interface, error) {
	iface, err := newInterface(backend, name, logging.WithComponent("tuntap"))
	if err != nil {
		return nil, err
	}
	iface.retain()
	if _, err := iface.Flags(); err != nil {
		iface.Release()
		return nil, err
	}
	return iface, nil
}

func (i *Interface) retain() {
	i.refs.Add(1)
}

// Release drops one reference. The control socket is closed when the last
// reference goes away; later calls return ErrClosed.
func (i *Interface) Release() error {
	n := i.refs.Add(-1)
	if n > 0 {
		return nil
	}
	if n < 0 || !i.released.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return i.sock.Close()
}

// Name returns the resolved interface name.
func (i *Interface) Name() string {
	return i.name
}

// MTU returns the interface MTU.
func (i *Interface) MTU() (int, error) {
	ifr := NewIfreq(i.name)
	if err := i.ioctl(siocGIFMTU, ifr); err != nil {
		return 0, err
	}
	return int(ifr.MTU()), nil
}

// SetMTU sets the interface MTU. Values outside the kernel's int range
// fail with ErrInvalidMTU before any ioctl.
func (i *Interface) SetMTU(mtu int) error {
	if err := checkMTU(mtu); err != nil {
		return err
	}
	ifr := NewIfreq(i.name)
	ifr.SetMTU(int32(mtu))
	return i.ioctl(siocSIFMTU, ifr)
}

// Flags returns the interface flag word (IFF_*).
func (i *Interface) Flags() (int16, error) {
	ifr := NewIfreq(i.name)
	if err := i.ioctl(siocGIFFlags, ifr); err != nil {
		return 0, err
	}
	return ifr.Flags(), nil
}

// SetFlags ORs bits into the current flags and returns the resulting
// word. It never clears a flag.
func (i *Interface) SetFlags(bits int16) (int16, error) {
	ifr := NewIfreq(i.name)
	if err := i.ioctl(siocGIFFlags, ifr); err != nil {
		return 0, err
	}
	ifr.SetFlags(ifr.Flags() | bits)
	if err := i.ioctl(siocSIFFlags, ifr); err != nil {
		return 0, err
	}
	return ifr.Flags(), nil
}

// Address returns the primary IPv4 address.
func (i *Interface) Address() (netip.Addr, error) { return i.getAddr(propAddress) }

// SetAddress sets the primary IPv4 address.
func (i *Interface) SetAddress(addr netip.Addr) error { return i.setAddr(propAddress, addr) }

// Destination returns the point-to-point peer address.
func (i *Interface) Destination() (netip.Addr, error) { return i.getAddr(propDestination) }

// SetDestination sets the point-to-point peer address.
func (i *Interface) SetDestination(addr netip.Addr) error { return i.setAddr(propDestination, addr) }

// Broadcast returns the broadcast address.
func (i *Interface) Broadcast() (netip.Addr, error) { return i.getAddr(propBroadcast) }

// SetBroadcast sets the broadcast address.
func (i *Interface) SetBroadcast(addr netip.Addr) error { return i.setAddr(propBroadcast, addr) }

// Netmask returns the IPv4 netmask.
func (i *Interface) Netmask() (netip.Addr, error) { return i.getAddr(propNetmask) }

// SetNetmask sets the IPv4 netmask.
func (i *Interface) SetNetmask(addr netip.Addr) error { return i.setAddr(propNetmask, addr) }

// HardwareAddr returns the link-layer address. TUN interfaces carry no
// Ethernet address and yield an *AddressFamilyError.
func (i *Interface) HardwareAddr() (EthernetAddr, error) {
	ifr := NewIfreq(i.name)
	if err := i.ioctl(propertyTable[propHwAddr].get, ifr); err != nil {
		return EthernetAddr{}, err
	}
	mac, err := DecodeEthernet(ifr.Sockaddr())
	if err != nil {
		return EthernetAddr{}, fmt.Errorf("failed to read hardware address of %s: %w", i.name, err)
	}
	return mac, nil
}

// SetHardwareAddr sets the link-layer address of a TAP interface.
func (i *Interface) SetHardwareAddr(mac EthernetAddr) error {
	ifr := NewIfreq(i.name)
	ifr.SetSockaddr(EncodeEthernet(mac))
	return i.ioctl(propertyTable[propHwAddr].set, ifr)
}

// SetOwner sets the uid allowed to attach to the interface.
func (i *Interface) SetOwner(uid int) error {
	return i.deviceOption(tunSetOwner, uid)
}

// SetGroup sets the gid allowed to attach to the interface.
func (i *Interface) SetGroup(gid int) error {
	return i.deviceOption(tunSetGroup, gid)
}

// Persist keeps the interface alive after its last descriptor is closed.
// There is no way back from here; delete the link to undo it.
func (i *Interface) Persist() error {
	return i.deviceOption(tunSetPersist, 1)
}

// Link returns the netlink view of the interface.
func (i *Interface) Link() (netlink.Link, error) {
	link, err := DefaultLinkQuerier.LinkByName(i.name)
	if err != nil {
		return nil, fmt.Errorf("failed to get link %s: %w", i.name, err)
	}
	return link, nil
}

// Stats returns the kernel counters of the interface.
func (i *Interface) Stats() (*netlink.LinkStatistics, error) {
	link, err := i.Link()
	if err != nil {
		return nil, err
	}
	if link.Attrs().Statistics == nil {
		return &netlink.LinkStatistics{}, nil
	}
	return link.Attrs().Statistics, nil
}

// Queues returns the number of open queues attached to the interface.
func (i *Interface) Queues() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.queues)
}

func (i *Interface) getAddr(p property) (netip.Addr, error) {
	ifr := NewIfreq(i.name)
	if err := i.ioctl(propertyTable[p].get, ifr); err != nil {
		return netip.Addr{}, err
	}
	return DecodeIPv4(ifr.Sockaddr()), nil
}

// setAddr does not read the address back; the kernel's view is only
// visible through the matching getter.
func (i *Interface) setAddr(p property, addr netip.Addr) error {
	if !addr.Is4() && !addr.Is4In6() {
		return fmt.Errorf("failed to set %s of %s to %s: %w", propertyTable[p].name, i.name, addr, ErrNotIPv4)
	}
	ifr := NewIfreq(i.name)
	ifr.SetSockaddr(EncodeIPv4(addr))
	return i.ioctl(propertyTable[p].set, ifr)
}

func (i *Interface) ioctl(req uint, ifr *Ifreq) error {
	op := requestName(req)
	if i.released.Load() {
		return &OpError{Op: op, Name: i.name, Err: ErrClosed}
	}
	err := i.sock.Ioctl(req, ifr)
	i.metrics.RecordControlOp(op, err)
	if err != nil {
		return &OpError{Op: op, Name: i.name, Err: err}
	}
	return nil
}

// deviceOption issues req on the first queue still attached.
func (i *Interface) deviceOption(req uint, value int) error {
	op := requestName(req)
	i.mu.Lock()
	var dev DeviceFile
	if len(i.queues) > 0 {
		dev = i.queues[0].file
	}
	i.mu.Unlock()
	if dev == nil {
		return &OpError{Op: op, Name: i.name, Err: ErrNoQueue}
	}
	err := i.backend.SetDeviceOption(dev, req, value)
	i.metrics.RecordControlOp(op, err)
	if err != nil {
		return &OpError{Op: op, Name: i.name, Err: err}
	}
	return nil
}

func (i *Interface) attach(q *Queue) {
	i.retain()
	i.mu.Lock()
	i.queues = append(i.queues, q)
	n := len(i.queues)
	i.mu.Unlock()
	i.metrics.QueuesOpen.WithLabelValues(i.name).Set(float64(n))
}

func (i *Interface) detach(q *Queue) error {
	i.mu.Lock()
	for idx, other := range i.queues {
		if other == q {
			i.queues = append(i.queues[:idx], i.queues[idx+1:]...)
			break
		}
	}
	n := len(i.queues)
	i.mu.Unlock()
	i.metrics.QueuesOpen.WithLabelValues(i.name).Set(float64(n))
	return i.Release()
}
