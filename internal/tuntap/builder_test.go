package tuntap

import (
	"net/netip"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	p := NewBuilder().Params()

	assert.Equal(t, "", p.Name)
	assert.Equal(t, KindTUN, p.Kind)
	assert.True(t, p.PacketInfo)
	assert.Nil(t, p.MTU)
	assert.Nil(t, p.Owner)
	assert.Nil(t, p.Group)
	assert.False(t, p.Address.IsValid())
	assert.False(t, p.Destination.IsValid())
	assert.False(t, p.Broadcast.IsValid())
	assert.False(t, p.Netmask.IsValid())
	assert.Nil(t, p.MAC)
	assert.False(t, p.Persist)
	assert.False(t, p.Up)
}

func TestBuilderIsValue(t *testing.T) {
	base := NewBuilder().Name("base0")
	derived := base.Tap(true).MTU(9000).Up()

	assert.Equal(t, KindTUN, base.Params().Kind)
	assert.Nil(t, base.Params().MTU)
	assert.False(t, base.Params().Up)

	p := derived.Params()
	assert.Equal(t, "base0", p.Name)
	assert.Equal(t, KindTAP, p.Kind)
	require.NotNil(t, p.MTU)
	assert.Equal(t, 9000, *p.MTU)
	assert.True(t, p.Up)
}

func TestBuilderOptions(t *testing.T) {
	mac := EthernetAddr{0x02, 1, 2, 3, 4, 5}
	p := NewBuilder().
		Tap(true).
		Tap(false).
		PacketInfo(false).
		Owner(0).
		Group(100).
		Address(netip.MustParseAddr("10.0.0.1")).
		Destination(netip.MustParseAddr("10.0.0.2")).
		Broadcast(netip.MustParseAddr("10.0.0.255")).
		Netmask(netip.MustParseAddr("255.255.255.0")).
		MAC(mac).
		Persist().
		Params()

	assert.Equal(t, KindTUN, p.Kind)
	assert.False(t, p.PacketInfo)
	require.NotNil(t, p.Owner)
	assert.Equal(t, 0, *p.Owner, "uid 0 is a real value")
	assert.Equal(t, 100, *p.Group)
	assert.Equal(t, "10.0.0.2", p.Destination.String())
	assert.Equal(t, mac, *p.MAC)
	assert.True(t, p.Persist)
}

func TestParamsFlags(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		queues int
		want   int16
	}{
		{"tun default", DefaultParams(), 1, iffTUN},
		{"tun no pi", Params{Kind: KindTUN}, 1, iffTUN | iffNoPI},
		{"tap pi", Params{Kind: KindTAP, PacketInfo: true}, 1, iffTAP},
		{"tap multi queue", Params{Kind: KindTAP}, 4, iffTAP | iffNoPI | iffMultiQueue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Flags(tt.queues))
		})
	}
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	mtu := -1
	p.MTU = &mtu
	assert.ErrorIs(t, p.Validate(), ErrInvalidMTU)

	if strconv.IntSize == 64 {
		wide := int64(1<<32 + 1350)
		p = DefaultParams()
		mtu = int(wide)
		p.MTU = &mtu
		assert.ErrorIs(t, p.Validate(), ErrInvalidMTU)
	}

	p = DefaultParams()
	p.Broadcast = netip.MustParseAddr("ff02::1")
	assert.ErrorIs(t, p.Validate(), ErrNotIPv4)

	p = DefaultParams()
	p.Kind = Kind(7)
	assert.Error(t, p.Validate())
	assert.Equal(t, "kind(7)", Kind(7).String())
}

func TestParamsNameTruncated(t *testing.T) {
	assert.False(t, Params{Name: "abcdefghijklmno"}.NameTruncated())
	assert.True(t, Params{Name: "abcdefghijklmnop"}.NameTruncated())
	assert.True(t, Params{Name: "abcdefghijklmnopq"}.NameTruncated())
}

func TestFormatFlags(t *testing.T) {
	assert.Equal(t, "", FormatFlags(0))
	assert.Equal(t, "UP,RUNNING", FormatFlags(IFFUp|IFFRunning))
	assert.Equal(t, "UP,POINTOPOINT,RUNNING,NOARP,MULTICAST", FormatFlags(0x10d1))
}
