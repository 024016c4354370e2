package tuntap

import (
	"bytes"
	"encoding/binary"
)

// ifreqUnionSize is the size of the ifr_ifru union on 64-bit Linux
// (struct ifmap). 32-bit kernels read only the first 16 bytes of it.
const ifreqUnionSize = 24

// Ifreq mirrors struct ifreq: an interface name followed by a union
// holding exactly one property per ioctl. The ioctl issued decides which
// property the union carries.
type Ifreq struct {
	name  [ifNameSize]byte
	union [ifreqUnionSize]byte
}

// NewIfreq returns a request for the named interface. Names longer than
// IFNAMSIZ are truncated, the same way the kernel treats them.
func NewIfreq(name string) *Ifreq {
	ifr := &Ifreq{}
	copy(ifr.name[:], name)
	return ifr
}

// Name returns the interface name without NUL padding.
func (ifr *Ifreq) Name() string {
	n := ifr.name[:]
	if i := bytes.IndexByte(n, 0); i >= 0 {
		n = n[:i]
	}
	return string(n)
}

// Reset zeroes the union so the request can be reused for another ioctl.
func (ifr *Ifreq) Reset() {
	ifr.union = [ifreqUnionSize]byte{}
}

// Flags returns ifr_flags.
func (ifr *Ifreq) Flags() int16 {
	return int16(binary.NativeEndian.Uint16(ifr.union[0:2]))
}

// SetFlags sets ifr_flags.
func (ifr *Ifreq) SetFlags(flags int16) {
	binary.NativeEndian.PutUint16(ifr.union[0:2], uint16(flags))
}

// MTU returns ifr_mtu.
func (ifr *Ifreq) MTU() int32 {
	return int32(binary.NativeEndian.Uint32(ifr.union[0:4]))
}

// SetMTU sets ifr_mtu.
func (ifr *Ifreq) SetMTU(mtu int32) {
	binary.NativeEndian.PutUint32(ifr.union[0:4], uint32(mtu))
}

// Sockaddr returns the union interpreted as ifr_addr (or any of its
// aliases: ifr_dstaddr, ifr_broadaddr, ifr_netmask, ifr_hwaddr).
func (ifr *Ifreq) Sockaddr() Sockaddr {
	var sa Sockaddr
	copy(sa[:], ifr.union[:SizeofSockaddr])
	return sa
}

// SetSockaddr stores sa in the union.
func (ifr *Ifreq) SetSockaddr(sa Sockaddr) {
	copy(ifr.union[:SizeofSockaddr], sa[:])
}
