//go:build linux
// +build linux

package tuntap

import "golang.org/x/sys/unix"

// Kernel constants used by the allocation and configuration protocol.
const (
	ifNameSize = unix.IFNAMSIZ

	iffTUN        = unix.IFF_TUN
	iffTAP        = unix.IFF_TAP
	iffNoPI       = unix.IFF_NO_PI
	iffMultiQueue = unix.IFF_MULTI_QUEUE

	// IFFUp and IFFRunning are the interface flag bits set by Builder.Up.
	IFFUp      = unix.IFF_UP
	IFFRunning = unix.IFF_RUNNING

	afInet      = unix.AF_INET
	arphrdEther = unix.ARPHRD_ETHER
	arphrdNone  = unix.ARPHRD_NONE

	tunSetIff     = unix.TUNSETIFF
	tunSetPersist = unix.TUNSETPERSIST
	tunSetOwner   = unix.TUNSETOWNER
	tunSetGroup   = unix.TUNSETGROUP

	siocGIFFlags   = unix.SIOCGIFFLAGS
	siocSIFFlags   = unix.SIOCSIFFLAGS
	siocGIFMTU     = unix.SIOCGIFMTU
	siocSIFMTU     = unix.SIOCSIFMTU
	siocGIFAddr    = unix.SIOCGIFADDR
	siocSIFAddr    = unix.SIOCSIFADDR
	siocGIFDstAddr = unix.SIOCGIFDSTADDR
	siocSIFDstAddr = unix.SIOCSIFDSTADDR
	siocGIFBrdAddr = unix.SIOCGIFBRDADDR
	siocSIFBrdAddr = unix.SIOCSIFBRDADDR
	siocGIFNetmask = unix.SIOCGIFNETMASK
	siocSIFNetmask = unix.SIOCSIFNETMASK
	siocGIFHwAddr  = unix.SIOCGIFHWADDR
	siocSIFHwAddr  = unix.SIOCSIFHWADDR
)
