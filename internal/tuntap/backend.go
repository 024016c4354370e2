package tuntap

import (
	"context"
	"io"
	"time"

	"github.com/vishvananda/netlink"
)

// DevicePath is the clone device every queue is opened from.
const DevicePath = "/dev/net/tun"

// DeviceFile is an open queue descriptor. *os.File satisfies it.
type DeviceFile interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// ControlSocket is the auxiliary socket SIOC* requests are issued on.
type ControlSocket interface {
	Ioctl(req uint, ifr *Ifreq) error
	Close() error
}

// Backend abstracts the kernel calls behind allocation and configuration.
// LinuxBackend talks to the kernel, FakeBackend simulates it in memory.
type Backend interface {
	// OpenDevice opens a new descriptor on DevicePath.
	OpenDevice(ctx context.Context) (DeviceFile, error)

	// AttachDevice issues TUNSETIFF on dev. On success the kernel writes
	// the resolved interface name back into ifr.
	AttachDevice(dev DeviceFile, ifr *Ifreq) error

	// SetDeviceOption issues an integer-argument ioctl (TUNSETOWNER,
	// TUNSETGROUP, TUNSETPERSIST) on dev.
	SetDeviceOption(dev DeviceFile, req uint, value int) error

	// DupDevice duplicates dev into an independent descriptor attached to
	// the same queue.
	DupDevice(dev DeviceFile) (DeviceFile, error)

	// OpenControlSocket opens an AF_INET datagram socket.
	OpenControlSocket() (ControlSocket, error)
}

// LinkQuerier resolves an interface to its netlink representation.
type LinkQuerier interface {
	LinkByName(name string) (netlink.Link, error)
}

// RealNetlinker is a LinkQuerier backed by the netlink package.
type RealNetlinker struct{}

// LinkByName retrieves a link by name.
func (r *RealNetlinker) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

// DefaultLinkQuerier is used by every Interface for netlink lookups.
var DefaultLinkQuerier LinkQuerier = &RealNetlinker{}

// property selects which member of the ifreq union a request carries.
type property int

const (
	propFlags property = iota
	propMTU
	propAddress
	propDestination
	propBroadcast
	propNetmask
	propHwAddr
)

type propertyOps struct {
	name string
	get  uint
	set  uint
}

var propertyTable = map[property]propertyOps{
	propFlags:       {"flags", siocGIFFlags, siocSIFFlags},
	propMTU:         {"mtu", siocGIFMTU, siocSIFMTU},
	propAddress:     {"address", siocGIFAddr, siocSIFAddr},
	propDestination: {"destination", siocGIFDstAddr, siocSIFDstAddr},
	propBroadcast:   {"broadcast", siocGIFBrdAddr, siocSIFBrdAddr},
	propNetmask:     {"netmask", siocGIFNetmask, siocSIFNetmask},
	propHwAddr:      {"hwaddr", siocGIFHwAddr, siocSIFHwAddr},
}

// requestName returns a printable name for an ioctl request number.
func requestName(req uint) string {
	for _, ops := range propertyTable {
		switch req {
		case ops.get:
			return "get " + ops.name
		case ops.set:
			return "set " + ops.name
		}
	}
	switch req {
	case tunSetIff:
		return "attach"
	case tunSetOwner:
		return "set owner"
	case tunSetGroup:
		return "set group"
	case tunSetPersist:
		return "set persist"
	}
	return "ioctl"
}
