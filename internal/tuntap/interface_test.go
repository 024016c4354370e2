package tuntap

import (
	"context"
	"errors"
	"net/netip"
	"strconv"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"

	"grimm.is/tuntap/internal/logging"
)

func buildQueue(t *testing.T, fake *FakeBackend, b Builder) *Queue {
	t.Helper()
	q, err := b.WithBackend(fake).WithLogger(logging.Discard()).Build(context.Background())
	require.NoError(t, err)
	return q
}

func TestSetFlagsOnlyAdds(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder())
	defer q.Close()
	iface := q.Interface()

	flags, err := iface.SetFlags(IFFUp)
	require.NoError(t, err)
	assert.Equal(t, int16(IFFUp), flags)

	flags, err = iface.SetFlags(IFFRunning)
	require.NoError(t, err)
	assert.Equal(t, int16(IFFUp|IFFRunning), flags, "previously set bits are kept")

	flags, err = iface.SetFlags(0)
	require.NoError(t, err)
	assert.Equal(t, int16(IFFUp|IFFRunning), flags)
}

func TestSetMTUOutOfRange(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("int cannot exceed the kernel MTU range")
	}
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder().MTU(1400))
	defer q.Close()

	wide := int64(1<<32 + 1350)
	before := len(fake.Calls())
	err := q.Interface().SetMTU(int(wide))
	assert.ErrorIs(t, err, ErrInvalidMTU)
	assert.Len(t, fake.Calls(), before, "no ioctl for an MTU that does not fit")

	mtu, err := q.MTU()
	require.NoError(t, err)
	assert.Equal(t, 1400, mtu)

	_, err = NewBuilder().WithBackend(fake).WithLogger(logging.Discard()).MTU(int(wide)).Build(context.Background())
	assert.ErrorIs(t, err, ErrInvalidMTU)
}

func TestSettersWriteThrough(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder().Tap(true))
	defer q.Close()
	iface := q.Interface()

	require.NoError(t, iface.SetMTU(1350))
	require.NoError(t, iface.SetAddress(netip.MustParseAddr("192.0.2.1")))
	require.NoError(t, iface.SetNetmask(netip.MustParseAddr("255.255.255.252")))
	require.NoError(t, iface.SetDestination(netip.MustParseAddr("192.0.2.2")))
	require.NoError(t, iface.SetBroadcast(netip.MustParseAddr("192.0.2.3")))
	mac := EthernetAddr{0x02, 0xaa, 0xbb, 0xcc, 0xdd, 0xee}
	require.NoError(t, iface.SetHardwareAddr(mac))

	link, ok := fake.Link(iface.Name())
	require.True(t, ok)
	assert.Equal(t, int32(1350), link.MTU)
	assert.Equal(t, EncodeIPv4(netip.MustParseAddr("192.0.2.1")), link.Addrs[siocGIFAddr])
	assert.Equal(t, EncodeIPv4(netip.MustParseAddr("255.255.255.252")), link.Addrs[siocGIFNetmask])
	assert.Equal(t, EncodeIPv4(netip.MustParseAddr("192.0.2.2")), link.Addrs[siocGIFDstAddr])
	assert.Equal(t, EncodeIPv4(netip.MustParseAddr("192.0.2.3")), link.Addrs[siocGIFBrdAddr])

	got, err := iface.HardwareAddr()
	require.NoError(t, err)
	assert.Equal(t, mac, got)
}

func TestSetAddressRejectsIPv6(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder())
	defer q.Close()

	before := len(fake.Calls())
	err := q.Interface().SetAddress(netip.MustParseAddr("2001:db8::1"))
	assert.ErrorIs(t, err, ErrNotIPv4)
	assert.Len(t, fake.Calls(), before)
}

func TestKernelErrorsPassThrough(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder())
	defer q.Close()

	err := q.Interface().SetMTU(10)
	require.Error(t, err)
	assert.ErrorIs(t, err, syscall.EINVAL)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "set mtu", opErr.Op)
	assert.Equal(t, "tun0", opErr.Name)
	assert.Equal(t, "tuntap: set mtu tun0: invalid argument", err.Error())

	_, err = q.Address()
	assert.ErrorIs(t, err, syscall.EADDRNOTAVAIL, "no address assigned yet")
}

func TestTunHardwareAddr(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder())
	defer q.Close()

	_, err := q.HardwareAddr()
	assert.True(t, errors.Is(err, ErrAddressFamily))

	err = q.Interface().SetHardwareAddr(EthernetAddr{0x02, 0, 0, 0, 0, 1})
	assert.ErrorIs(t, err, syscall.EINVAL)
}

func TestFakeSocketCloseWhileInUse(t *testing.T) {
	fake := NewFakeBackend()
	fake.AddLink("tun3", KindTUN)
	sock, err := fake.OpenControlSocket()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		for {
			if err := sock.Ioctl(siocGIFMTU, NewIfreq("tun3")); err != nil {
				done <- err
				return
			}
		}
	}()

	require.NoError(t, sock.Close())
	assert.ErrorIs(t, <-done, syscall.EBADF)
}

func TestControlSocketClosedOnce(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder())
	iface := q.Interface()

	clone, err := q.Clone()
	require.NoError(t, err)
	assert.Same(t, iface, clone.Interface())
	assert.Equal(t, 2, iface.Queues())
	assert.Equal(t, 2, fake.OpenDevices())

	require.NoError(t, q.Close())
	assert.Equal(t, 1, fake.OpenSockets(), "clone still holds the interface")
	_, err = clone.MTU()
	require.NoError(t, err)

	require.NoError(t, clone.Close())
	assert.Equal(t, 0, fake.OpenSockets())
	assert.Equal(t, 0, fake.OpenDevices())

	closes := 0
	for _, c := range fake.Calls() {
		if c == "close control socket" {
			closes++
		}
	}
	assert.Equal(t, 1, closes)

	// Every handle is gone.
	assert.ErrorIs(t, iface.Release(), ErrClosed)
	_, err = iface.MTU()
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, q.Close(), "Close is idempotent")
}

func TestDeviceOptionsNeedQueue(t *testing.T) {
	fake := NewFakeBackend()
	fake.AddLink("tap9", KindTAP)

	iface, err := InspectWithBackend(fake, "tap9")
	require.NoError(t, err)

	mtu, err := iface.MTU()
	require.NoError(t, err)
	assert.Equal(t, 1500, mtu)
	assert.Equal(t, 0, iface.Queues())

	assert.ErrorIs(t, iface.SetOwner(0), ErrNoQueue)
	assert.ErrorIs(t, iface.SetGroup(0), ErrNoQueue)
	assert.ErrorIs(t, iface.Persist(), ErrNoQueue)

	require.NoError(t, iface.Release())
	assert.Equal(t, 0, fake.OpenSockets())
}

func TestInspectMissing(t *testing.T) {
	fake := NewFakeBackend()

	_, err := InspectWithBackend(fake, "nope0")
	assert.ErrorIs(t, err, syscall.ENODEV)
	assert.Equal(t, 0, fake.OpenSockets())
}

func TestLinkStats(t *testing.T) {
	orig := DefaultLinkQuerier
	defer func() { DefaultLinkQuerier = orig }()

	mockNetlink := new(MockLinkQuerier)
	DefaultLinkQuerier = mockNetlink

	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder().Name("tun5"))
	defer q.Close()

	tun := &netlink.Tuntap{LinkAttrs: netlink.LinkAttrs{
		Name:       "tun5",
		Index:      7,
		Statistics: &netlink.LinkStatistics{RxPackets: 3, TxBytes: 120},
	}}
	mockNetlink.On("LinkByName", "tun5").Return(tun, nil)

	link, err := q.Interface().Link()
	require.NoError(t, err)
	assert.Equal(t, 7, link.Attrs().Index)

	stats, err := q.Interface().Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.RxPackets)
	assert.Equal(t, uint64(120), stats.TxBytes)
	mockNetlink.AssertExpectations(t)
}

func TestLinkNotFound(t *testing.T) {
	orig := DefaultLinkQuerier
	defer func() { DefaultLinkQuerier = orig }()

	mockNetlink := new(MockLinkQuerier)
	DefaultLinkQuerier = mockNetlink
	mockNetlink.On("LinkByName", "tun0").Return(nil, errors.New("Link not found")).Once()

	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder())
	defer q.Close()

	_, err := q.Interface().Stats()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get link tun0")
	mockNetlink.AssertExpectations(t)
}
