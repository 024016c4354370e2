package tuntap

import (
	"context"
	"errors"

	"grimm.is/tuntap/internal/logging"
	"grimm.is/tuntap/internal/metrics"
)

// Allocator creates interfaces and their queues.
type Allocator struct {
	backend Backend
	logger  *logging.Logger
	metrics *metrics.Registry
}

// NewAllocator creates an allocator. A nil logger uses the default
// logger scoped to the "tuntap" component.
func NewAllocator(backend Backend, logger *logging.Logger) *Allocator {
	if logger == nil {
		logger = logging.WithComponent("tuntap")
	}
	return &Allocator{
		backend: backend,
		logger:  logger,
		metrics: metrics.Get(),
	}
}

// configStep is one optional configuration call of an allocation.
type configStep struct {
	name    string
	present bool
	apply   func(*Interface) error
}

// Allocate opens n descriptors, attaches them to one interface, applies
// p and returns the queues sharing the interface handle.
//
// Either every queue is returned or none: on failure all descriptors and
// the control socket opened so far are closed. An interface the kernel
// already created is not deleted; with Persist it survives the failure.
func (a *Allocator) Allocate(ctx context.Context, p Params, n int) (queues []*Queue, iface *Interface, err error) {
	defer func() {
		a.metrics.RecordAllocation(p.Kind.String(), err)
	}()

	if err := checkQueueCount(n); err != nil {
		return nil, nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	if p.NameTruncated() {
		a.logger.Warn("interface name truncated", "name", p.Name, "limit", ifNameSize)
	}

	// Step 1: open descriptors.
	files := make([]DeviceFile, 0, n)
	defer func() {
		if err != nil {
			for _, f := range files {
				f.Close()
			}
		}
	}()
	for idx := 0; idx < n; idx++ {
		f, err := a.backend.OpenDevice(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, nil, err
			}
			return nil, nil, &OpError{Op: "open", Name: p.Name, Err: err}
		}
		files = append(files, f)
	}

	// Step 2: attach every descriptor to the same interface.
	name := p.Name
	flags := p.Flags(n)
	for idx, f := range files {
		ifr := NewIfreq(name)
		ifr.SetFlags(flags)
		if err := a.backend.AttachDevice(f, ifr); err != nil {
			a.logger.Warn("attach failed", "name", name, "queue", idx, "error", err)
			return nil, nil, &OpError{Op: "attach", Name: name, Err: err}
		}
		if idx == 0 {
			name = ifr.Name()
		}
	}

	// Step 3: one configuration handle for all queues.
	iface, err = newInterface(a.backend, name, a.logger)
	if err != nil {
		return nil, nil, err
	}
	queues = make([]*Queue, 0, n)
	for _, f := range files {
		queues = append(queues, newQueue(f, iface))
	}
	// From here on the queues own the descriptors.
	files = nil

	// Step 4: configuration, in an order the kernel accepts. Up is last
	// so nobody observes a half-configured interface running.
	for _, step := range a.steps(p) {
		if !step.present {
			continue
		}
		a.logger.Debug("configuring interface", "name", name, "step", step.name)
		if err = step.apply(iface); err != nil {
			a.logger.Warn("configuration failed", "name", name, "step", step.name, "error", err)
			for _, q := range queues {
				q.Close()
			}
			return nil, nil, err
		}
	}

	a.logger.Info("interface allocated", "name", name, "kind", p.Kind.String(), "queues", n)
	return queues, iface, nil
}

func (a *Allocator) steps(p Params) []configStep {
	return []configStep{
		{"mtu", p.MTU != nil, func(i *Interface) error { return i.SetMTU(*p.MTU) }},
		{"owner", p.Owner != nil, func(i *Interface) error { return i.SetOwner(*p.Owner) }},
		{"group", p.Group != nil, func(i *Interface) error { return i.SetGroup(*p.Group) }},
		{"address", p.Address.IsValid(), func(i *Interface) error { return i.SetAddress(p.Address) }},
		{"netmask", p.Netmask.IsValid(), func(i *Interface) error { return i.SetNetmask(p.Netmask) }},
		{"destination", p.Destination.IsValid(), func(i *Interface) error { return i.SetDestination(p.Destination) }},
		{"broadcast", p.Broadcast.IsValid(), func(i *Interface) error { return i.SetBroadcast(p.Broadcast) }},
		{"hwaddr", p.MAC != nil, func(i *Interface) error { return i.SetHardwareAddr(*p.MAC) }},
		{"persist", p.Persist, func(i *Interface) error { return i.Persist() }},
		{"up", p.Up, func(i *Interface) error {
			_, err := i.SetFlags(IFFUp | IFFRunning)
			return err
		}},
	}
}
