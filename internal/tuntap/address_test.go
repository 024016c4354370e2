package tuntap

import (
	"encoding/binary"
	"errors"
	"net/netip"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeIPv4(t *testing.T) {
	sa := EncodeIPv4(netip.MustParseAddr("10.0.0.1"))

	assert.Equal(t, uint16(afInet), binary.NativeEndian.Uint16(sa[0:2]))
	assert.Equal(t, []byte{0, 0}, sa[2:4], "port must be zero")
	assert.Equal(t, []byte{10, 0, 0, 1}, sa[4:8])
	assert.Equal(t, make([]byte, 8), sa[8:], "padding must be zero")
}

func TestEncodeIPv4Mapped(t *testing.T) {
	sa := EncodeIPv4(netip.MustParseAddr("::ffff:192.168.1.2"))
	assert.Equal(t, []byte{192, 168, 1, 2}, sa[4:8])
}

func TestDecodeIPv4(t *testing.T) {
	tests := []string{"0.0.0.0", "10.0.0.1", "255.255.255.0", "192.168.100.255"}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			addr := netip.MustParseAddr(s)
			assert.Equal(t, addr, DecodeIPv4(EncodeIPv4(addr)))
		})
	}
}

func TestIPv4RoundTripQuick(t *testing.T) {
	roundTrip := func(b [4]byte) bool {
		addr := netip.AddrFrom4(b)
		return DecodeIPv4(EncodeIPv4(addr)) == addr
	}
	require.NoError(t, quick.Check(roundTrip, &quick.Config{MaxCount: 5000}))
}

func TestEthernetRoundTripQuick(t *testing.T) {
	roundTrip := func(b [6]byte) bool {
		mac := EthernetAddr(b)
		got, err := DecodeEthernet(EncodeEthernet(mac))
		if err != nil || got != mac {
			return false
		}
		parsed, err := ParseEthernetAddr(mac.String())
		return err == nil && parsed == mac
	}
	require.NoError(t, quick.Check(roundTrip, &quick.Config{MaxCount: 5000}))
}

func TestDecodeIPv4IgnoresFamily(t *testing.T) {
	var sa Sockaddr
	sa[4], sa[5], sa[6], sa[7] = 172, 16, 0, 9
	assert.Equal(t, netip.MustParseAddr("172.16.0.9"), DecodeIPv4(sa))
}

func TestEthernetRoundTrip(t *testing.T) {
	mac := EthernetAddr{0x02, 0x42, 0xac, 0x11, 0x00, 0x02}
	sa := EncodeEthernet(mac)

	assert.Equal(t, uint16(arphrdEther), sa.Family())
	assert.Equal(t, mac[:], sa[2:8])
	assert.Equal(t, make([]byte, 8), sa[8:])

	got, err := DecodeEthernet(sa)
	require.NoError(t, err)
	assert.Equal(t, mac, got)
}

func TestDecodeEthernetWrongFamily(t *testing.T) {
	_, err := DecodeEthernet(EncodeIPv4(netip.MustParseAddr("10.0.0.1")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAddressFamily))

	var famErr *AddressFamilyError
	require.True(t, errors.As(err, &famErr))
	assert.Equal(t, uint16(arphrdEther), famErr.Want)
	assert.Equal(t, uint16(afInet), famErr.Got)
}

func TestParseEthernetAddr(t *testing.T) {
	mac, err := ParseEthernetAddr("02:00:5e:10:00:01")
	require.NoError(t, err)
	assert.Equal(t, EthernetAddr{0x02, 0x00, 0x5e, 0x10, 0x00, 0x01}, mac)
	assert.Equal(t, "02:00:5e:10:00:01", mac.String())

	_, err = ParseEthernetAddr("not-a-mac")
	assert.Error(t, err)

	// EUI-64 parses but is not an Ethernet address.
	_, err = ParseEthernetAddr("02:00:5e:10:00:00:00:01")
	var lenErr *AddressLengthError
	assert.True(t, errors.As(err, &lenErr))
	assert.Equal(t, 8, lenErr.Length)
}
