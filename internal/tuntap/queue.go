package tuntap

import (
	"context"
	"errors"
	"net/netip"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// aLongTimeAgo is a deadline in the past, used to interrupt a pending call.
var aLongTimeAgo = time.Unix(1, 0)

// Queue is one packet queue of a TUN/TAP interface: an open descriptor
// that reads and writes raw packets (IP for TUN, Ethernet frames for TAP).
// All queues of one allocation share the same *Interface.
//
// A Queue supports one concurrent reader and one concurrent writer.
// Distinct queues of the same interface are fully independent.
type Queue struct {
	file  DeviceFile
	iface *Interface

	rxPackets, txPackets prometheus.Counter
	rxBytes, txBytes     prometheus.Counter
	rxErrors, txErrors   prometheus.Counter

	closeOnce sync.Once
	closeErr  error
}

func newQueue(file DeviceFile, iface *Interface) *Queue {
	m := iface.metrics
	q := &Queue{
		file:      file,
		iface:     iface,
		rxPackets: m.QueuePackets.WithLabelValues(iface.name, "rx"),
		txPackets: m.QueuePackets.WithLabelValues(iface.name, "tx"),
		rxBytes:   m.QueueBytes.WithLabelValues(iface.name, "rx"),
		txBytes:   m.QueueBytes.WithLabelValues(iface.name, "tx"),
		rxErrors:  m.QueueErrors.WithLabelValues(iface.name, "rx"),
		txErrors:  m.QueueErrors.WithLabelValues(iface.name, "tx"),
	}
	iface.attach(q)
	return q
}

// Read reads one packet into b. It blocks until a packet is available.
func (q *Queue) Read(b []byte) (int, error) {
	n, err := q.file.Read(b)
	if err != nil {
		q.rxErrors.Inc()
		return n, err
	}
	q.rxPackets.Inc()
	q.rxBytes.Add(float64(n))
	return n, nil
}

// Write writes one packet.
func (q *Queue) Write(b []byte) (int, error) {
	n, err := q.file.Write(b)
	if err != nil {
		q.txErrors.Inc()
		return n, err
	}
	q.txPackets.Inc()
	q.txBytes.Add(float64(n))
	return n, nil
}

// ReadContext is Read that gives up when ctx is done. An abandoned read
// consumes nothing from the kernel queue.
func (q *Queue) ReadContext(ctx context.Context, b []byte) (int, error) {
	if ctx.Done() == nil {
		return q.Read(b)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		q.file.SetReadDeadline(aLongTimeAgo)
		close(fired)
	})
	n, err := q.Read(b)
	if !stop() {
		// The deadline was forced by ctx; clear it for the next caller.
		<-fired
		q.file.SetReadDeadline(time.Time{})
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return n, ctx.Err()
		}
	}
	return n, err
}

// WriteContext is Write that gives up when ctx is done.
func (q *Queue) WriteContext(ctx context.Context, b []byte) (int, error) {
	if ctx.Done() == nil {
		return q.Write(b)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		q.file.SetWriteDeadline(aLongTimeAgo)
		close(fired)
	})
	n, err := q.Write(b)
	if !stop() {
		<-fired
		q.file.SetWriteDeadline(time.Time{})
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return n, ctx.Err()
		}
	}
	return n, err
}

// SetReadDeadline sets the deadline for future Read calls.
func (q *Queue) SetReadDeadline(t time.Time) error { return q.file.SetReadDeadline(t) }

// SetWriteDeadline sets the deadline for future Write calls.
func (q *Queue) SetWriteDeadline(t time.Time) error { return q.file.SetWriteDeadline(t) }

// SyscallConn exposes the raw descriptor for callers that drive I/O
// themselves.
func (q *Queue) SyscallConn() (syscall.RawConn, error) {
	sc, ok := q.file.(syscall.Conn)
	if !ok {
		return nil, ErrUnsupported
	}
	return sc.SyscallConn()
}

// Close closes the queue descriptor. Sibling queues and the interface stay
// usable; the interface's control socket is closed with its last queue.
func (q *Queue) Close() error {
	q.closeOnce.Do(func() {
		err := q.file.Close()
		if relErr := q.iface.detach(q); err == nil {
			err = relErr
		}
		q.closeErr = err
	})
	return q.closeErr
}

// Clone returns a new queue handle on a duplicate of the descriptor,
// attached to the same interface. Both handles must be closed.
func (q *Queue) Clone() (*Queue, error) {
	dup, err := q.iface.backend.DupDevice(q.file)
	if err != nil {
		return nil, &OpError{Op: "dup", Name: q.iface.name, Err: err}
	}
	return newQueue(dup, q.iface), nil
}

// Interface returns the shared configuration handle.
func (q *Queue) Interface() *Interface { return q.iface }

// Name returns the interface name.
func (q *Queue) Name() string { return q.iface.Name() }

// MTU returns the interface MTU.
func (q *Queue) MTU() (int, error) { return q.iface.MTU() }

// Address returns the interface IPv4 address.
func (q *Queue) Address() (netip.Addr, error) { return q.iface.Address() }

// Destination returns the point-to-point peer address.
func (q *Queue) Destination() (netip.Addr, error) { return q.iface.Destination() }

// Broadcast returns the broadcast address.
func (q *Queue) Broadcast() (netip.Addr, error) { return q.iface.Broadcast() }

// Netmask returns the netmask.
func (q *Queue) Netmask() (netip.Addr, error) { return q.iface.Netmask() }

// Flags returns the interface flags.
func (q *Queue) Flags() (int16, error) { return q.iface.Flags() }

// HardwareAddr returns the link-layer address.
func (q *Queue) HardwareAddr() (EthernetAddr, error) { return q.iface.HardwareAddr() }
