package tuntap

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
)

// FakeBackend simulates the kernel side of /dev/net/tun in memory. It
// keeps one record per interface, answers SIOC* requests from it, records
// every call, and can be told to fail a given request.
type FakeBackend struct {
	mu       sync.Mutex
	links    map[string]*FakeLink
	nextFd   int
	openDevs int
	openSock int
	calls    []string
	failures map[string]error
	failOpen map[int]error
	opens    int
}

// FakeLink is the simulated kernel state of one interface.
type FakeLink struct {
	Name       string
	Kind       Kind
	IffFlags   int16
	Flags      int16
	MTU        int32
	Addrs      map[uint]Sockaddr
	HwAddr     Sockaddr
	Owner      int
	Group      int
	Persistent bool
	Attached   int
}

// NewFakeBackend returns an empty simulated kernel.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		links:    make(map[string]*FakeLink),
		failures: make(map[string]error),
		failOpen: make(map[int]error),
		nextFd:   100,
	}
}

// FailOn makes every call named op (as reported by Calls, e.g. "set mtu",
// "attach", "open control socket") return err.
func (f *FakeBackend) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

// FailOpen makes the nth (0-based) OpenDevice call return err.
func (f *FakeBackend) FailOpen(nth int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOpen[nth] = err
}

// Calls returns the names of the calls made so far, in order.
func (f *FakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// OpenDevices returns the number of device descriptors not yet closed.
func (f *FakeBackend) OpenDevices() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.openDevs
}

// OpenSockets returns the number of control sockets not yet closed.
func (f *FakeBackend) OpenSockets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.openSock
}

// Link returns a copy of the simulated state of name.
func (f *FakeBackend) Link(name string) (FakeLink, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[name]
	if !ok {
		return FakeLink{}, false
	}
	cp := *l
	cp.Addrs = make(map[uint]Sockaddr, len(l.Addrs))
	for k, v := range l.Addrs {
		cp.Addrs[k] = v
	}
	return cp, true
}

// AddLink creates an interface as if another process had made it
// persistent.
func (f *FakeBackend) AddLink(name string, kind Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[name] = f.newLink(name, kind)
}

// Peer returns the kernel end of a queue: writes to it are read from the
// queue and vice versa.
func (f *FakeBackend) Peer(q *Queue) net.Conn {
	dev, ok := q.file.(*fakeDevice)
	if !ok {
		return nil
	}
	return dev.shared.peer
}

func (f *FakeBackend) newLink(name string, kind Kind) *FakeLink {
	l := &FakeLink{
		Name:  name,
		Kind:  kind,
		MTU:   1500,
		Addrs: make(map[uint]Sockaddr),
	}
	if kind == KindTAP {
		l.HwAddr = EncodeEthernet(EthernetAddr{0x02, 0x00, 0x5e, 0x00, 0x00, byte(len(f.links) + 1)})
	} else {
		l.HwAddr.setFamily(arphrdNone)
	}
	return l
}

// record logs op and returns the injected failure for it, if any.
// Callers hold f.mu.
func (f *FakeBackend) record(op string) error {
	f.calls = append(f.calls, op)
	return f.failures[op]
}

func (f *FakeBackend) OpenDevice(ctx context.Context) (DeviceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	nth := f.opens
	f.opens++
	if err := f.record("open"); err != nil {
		return nil, err
	}
	if err := f.failOpen[nth]; err != nil {
		return nil, err
	}
	local, peer := net.Pipe()
	f.nextFd++
	f.openDevs++
	return &fakeDevice{
		backend: f,
		fd:      f.nextFd,
		shared:  &fakeQueue{conn: local, peer: peer, refs: 1},
	}, nil
}

func (f *FakeBackend) AttachDevice(dev DeviceFile, ifr *Ifreq) error {
	d, ok := dev.(*fakeDevice)
	if !ok {
		return syscall.EBADF
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("attach"); err != nil {
		return err
	}
	if d.shared.link != "" {
		return syscall.EINVAL
	}
	flags := ifr.Flags()
	kind := KindTUN
	if flags&iffTAP != 0 {
		kind = KindTAP
	}

	name := ifr.Name()
	if len(name) >= ifNameSize {
		name = name[:ifNameSize-1]
	}
	if name == "" {
		name = kind.String() + "%d"
	}
	if strings.Contains(name, "%d") {
		name = f.firstFree(name)
	}
	l, exists := f.links[name]
	switch {
	case !exists:
		l = f.newLink(name, kind)
		l.IffFlags = flags
		f.links[name] = l
	case l.Kind != kind:
		return syscall.EINVAL
	case l.Attached > 0 && (l.IffFlags&iffMultiQueue == 0 || flags&iffMultiQueue == 0):
		return syscall.EBUSY
	}

	l.Attached++
	d.shared.link = name
	ifr.name = [ifNameSize]byte{}
	copy(ifr.name[:], name)
	return nil
}

func (f *FakeBackend) SetDeviceOption(dev DeviceFile, req uint, value int) error {
	d, ok := dev.(*fakeDevice)
	if !ok {
		return syscall.EBADF
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(requestName(req)); err != nil {
		return err
	}
	if d.closed {
		return syscall.EBADF
	}
	l, ok := f.links[d.shared.link]
	if !ok {
		return syscall.ENODEV
	}
	switch req {
	case tunSetOwner:
		l.Owner = value
	case tunSetGroup:
		l.Group = value
	case tunSetPersist:
		l.Persistent = value != 0
	default:
		return syscall.ENOTTY
	}
	return nil
}

func (f *FakeBackend) DupDevice(dev DeviceFile) (DeviceFile, error) {
	d, ok := dev.(*fakeDevice)
	if !ok {
		return nil, syscall.EBADF
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("dup"); err != nil {
		return nil, err
	}
	if d.closed {
		return nil, syscall.EBADF
	}
	d.shared.refs++
	f.nextFd++
	f.openDevs++
	return &fakeDevice{backend: f, fd: f.nextFd, shared: d.shared}, nil
}

func (f *FakeBackend) OpenControlSocket() (ControlSocket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("open control socket"); err != nil {
		return nil, err
	}
	f.openSock++
	return &fakeSocket{backend: f}, nil
}

// firstFree expands the %d in tmpl to the lowest unused index.
func (f *FakeBackend) firstFree(tmpl string) string {
	for idx := 0; ; idx++ {
		name := strings.Replace(tmpl, "%d", strconv.Itoa(idx), 1)
		if _, ok := f.links[name]; !ok {
			return name
		}
	}
}

// ioctl answers a SIOC* request from the simulated state.
func (f *FakeBackend) ioctl(req uint, ifr *Ifreq) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(requestName(req)); err != nil {
		return err
	}
	l, ok := f.links[ifr.Name()]
	if !ok {
		return syscall.ENODEV
	}
	switch req {
	case siocGIFMTU:
		ifr.SetMTU(l.MTU)
	case siocSIFMTU:
		if ifr.MTU() < 68 {
			return syscall.EINVAL
		}
		l.MTU = ifr.MTU()
	case siocGIFFlags:
		ifr.SetFlags(l.Flags)
	case siocSIFFlags:
		l.Flags = ifr.Flags()
	case siocGIFAddr, siocGIFDstAddr, siocGIFBrdAddr, siocGIFNetmask:
		sa, ok := l.Addrs[req]
		if !ok {
			return syscall.EADDRNOTAVAIL
		}
		ifr.SetSockaddr(sa)
	case siocSIFAddr, siocSIFDstAddr, siocSIFBrdAddr, siocSIFNetmask:
		sa := ifr.Sockaddr()
		if sa.Family() != afInet {
			return syscall.EINVAL
		}
		l.Addrs[getterOf(req)] = sa
	case siocGIFHwAddr:
		ifr.SetSockaddr(l.HwAddr)
	case siocSIFHwAddr:
		if l.Kind != KindTAP {
			return syscall.EINVAL
		}
		if ifr.Sockaddr().Family() != arphrdEther {
			return syscall.EINVAL
		}
		l.HwAddr = ifr.Sockaddr()
	default:
		return syscall.ENOTTY
	}
	return nil
}

func getterOf(set uint) uint {
	for _, ops := range propertyTable {
		if ops.set == set {
			return ops.get
		}
	}
	return 0
}

// release drops one attachment of the named link and removes the link
// once nothing holds it and it is not persistent.
func (f *FakeBackend) release(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openDevs--
	if name == "" {
		return
	}
	l, ok := f.links[name]
	if !ok {
		return
	}
	l.Attached--
	if l.Attached == 0 && !l.Persistent {
		delete(f.links, name)
	}
}

type fakeQueue struct {
	conn net.Conn
	peer net.Conn
	link string
	refs int
}

type fakeDevice struct {
	backend *FakeBackend
	fd      int
	shared  *fakeQueue
	closed  bool
}

func (d *fakeDevice) Read(b []byte) (int, error)  { return d.shared.conn.Read(b) }
func (d *fakeDevice) Write(b []byte) (int, error) { return d.shared.conn.Write(b) }

func (d *fakeDevice) SetReadDeadline(t time.Time) error {
	return d.shared.conn.SetReadDeadline(t)
}

func (d *fakeDevice) SetWriteDeadline(t time.Time) error {
	return d.shared.conn.SetWriteDeadline(t)
}

func (d *fakeDevice) Close() error {
	d.backend.mu.Lock()
	if d.closed {
		d.backend.mu.Unlock()
		return syscall.EBADF
	}
	d.closed = true
	d.shared.refs--
	last := d.shared.refs == 0
	link := d.shared.link
	d.backend.mu.Unlock()

	if !last {
		d.backend.mu.Lock()
		d.backend.openDevs--
		d.backend.mu.Unlock()
		return nil
	}
	d.backend.release(link)
	d.shared.peer.Close()
	return d.shared.conn.Close()
}

type fakeSocket struct {
	backend *FakeBackend
	closed  bool
}

func (s *fakeSocket) Ioctl(req uint, ifr *Ifreq) error {
	s.backend.mu.Lock()
	closed := s.closed
	s.backend.mu.Unlock()
	if closed {
		return syscall.EBADF
	}
	return s.backend.ioctl(req, ifr)
}

func (s *fakeSocket) Close() error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	if s.closed {
		return syscall.EBADF
	}
	s.closed = true
	s.backend.openSock--
	s.backend.calls = append(s.backend.calls, "close control socket")
	return nil
}
