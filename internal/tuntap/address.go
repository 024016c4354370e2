package tuntap

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"
)

// SizeofSockaddr is the size of the generic kernel struct sockaddr.
const SizeofSockaddr = 16

// Sockaddr is the raw kernel encoding of struct sockaddr: a host-order
// family tag followed by 14 bytes of family-specific data.
type Sockaddr [SizeofSockaddr]byte

// Family returns the address family tag.
func (sa Sockaddr) Family() uint16 {
	return binary.NativeEndian.Uint16(sa[0:2])
}

func (sa *Sockaddr) setFamily(family uint16) {
	binary.NativeEndian.PutUint16(sa[0:2], family)
}

// EncodeIPv4 encodes addr as a struct sockaddr_in with a zero port.
// The octets are stored in network byte order. addr must be an IPv4 (or
// IPv4-mapped) address; anything else encodes as 0.0.0.0.
func EncodeIPv4(addr netip.Addr) Sockaddr {
	var sa Sockaddr
	sa.setFamily(afInet)
	// sin_port stays zero.
	if addr.Is4() || addr.Is4In6() {
		a4 := addr.Unmap().As4()
		copy(sa[4:8], a4[:])
	}
	return sa
}

// DecodeIPv4 reads the address of a struct sockaddr_in. The family tag is
// not checked, kernels answer every SIOCGIF*ADDR request with AF_INET.
func DecodeIPv4(sa Sockaddr) netip.Addr {
	var a4 [4]byte
	copy(a4[:], sa[4:8])
	return netip.AddrFrom4(a4)
}

// EthernetAddr is a 6-byte IEEE 802 MAC address.
type EthernetAddr [6]byte

// ParseEthernetAddr parses s in any format accepted by net.ParseMAC and
// requires the result to be exactly 6 bytes long.
func ParseEthernetAddr(s string) (EthernetAddr, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return EthernetAddr{}, fmt.Errorf("failed to parse hardware address: %w", err)
	}
	return EthernetAddrFromSlice(hw)
}

// EthernetAddrFromSlice copies b into an EthernetAddr.
func EthernetAddrFromSlice(b []byte) (EthernetAddr, error) {
	var addr EthernetAddr
	if len(b) != len(addr) {
		return addr, &AddressLengthError{Length: len(b)}
	}
	copy(addr[:], b)
	return addr, nil
}

// HardwareAddr returns the address as a net.HardwareAddr.
func (a EthernetAddr) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(a[:])
}

func (a EthernetAddr) String() string {
	return a.HardwareAddr().String()
}

// EncodeEthernet encodes mac with the ARPHRD_ETHER family tag, the address
// at the start of the data field and the remainder zeroed.
func EncodeEthernet(mac EthernetAddr) Sockaddr {
	var sa Sockaddr
	sa.setFamily(arphrdEther)
	copy(sa[2:8], mac[:])
	return sa
}

// DecodeEthernet extracts a MAC address from sa. It returns an
// *AddressFamilyError if sa is not tagged ARPHRD_ETHER.
func DecodeEthernet(sa Sockaddr) (EthernetAddr, error) {
	if fam := sa.Family(); fam != arphrdEther {
		return EthernetAddr{}, &AddressFamilyError{Want: arphrdEther, Got: fam}
	}
	var mac EthernetAddr
	copy(mac[:], sa[2:8])
	return mac, nil
}
