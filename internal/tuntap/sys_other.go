//go:build !linux
// +build !linux

package tuntap

// Linux values, kept so the protocol logic and FakeBackend build everywhere.
// Nothing on these platforms reaches a kernel with them.
const (
	ifNameSize = 16

	iffTUN        = 0x0001
	iffTAP        = 0x0002
	iffNoPI       = 0x1000
	iffMultiQueue = 0x0100

	IFFUp      = 0x1
	IFFRunning = 0x40

	afInet      = 0x2
	arphrdEther = 0x1
	arphrdNone  = 0xfffe

	tunSetIff     = 0x400454ca
	tunSetPersist = 0x400454cb
	tunSetOwner   = 0x400454cc
	tunSetGroup   = 0x400454ce

	siocGIFFlags   = 0x8913
	siocSIFFlags   = 0x8914
	siocGIFMTU     = 0x8921
	siocSIFMTU     = 0x8922
	siocGIFAddr    = 0x8915
	siocSIFAddr    = 0x8916
	siocGIFDstAddr = 0x8917
	siocSIFDstAddr = 0x8918
	siocGIFBrdAddr = 0x8919
	siocSIFBrdAddr = 0x891a
	siocGIFNetmask = 0x891b
	siocSIFNetmask = 0x891c
	siocGIFHwAddr  = 0x8927
	siocSIFHwAddr  = 0x8924
)
