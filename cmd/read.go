package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"

	"golang.org/x/sync/errgroup"

	"grimm.is/tuntap/internal/logging"
	"grimm.is/tuntap/internal/tuntap"
)

// ReadOptions are the flags of the read subcommand.
type ReadOptions struct {
	Name        string
	Tap         bool
	PacketInfo  bool
	Queues      int
	MTU         int
	Address     string
	Netmask     string
	Destination string
	Broadcast   string
	Up          bool
	LogLevel    string
}

// Builder converts the options into a tuntap builder.
func (o ReadOptions) Builder() (tuntap.Builder, error) {
	b := tuntap.NewBuilder().
		Name(o.Name).
		Tap(o.Tap).
		PacketInfo(o.PacketInfo)
	if o.MTU > 0 {
		b = b.MTU(o.MTU)
	}
	for _, a := range []struct {
		flag  string
		value string
		set   func(tuntap.Builder, netip.Addr) tuntap.Builder
	}{
		{"address", o.Address, tuntap.Builder.Address},
		{"netmask", o.Netmask, tuntap.Builder.Netmask},
		{"destination", o.Destination, tuntap.Builder.Destination},
		{"broadcast", o.Broadcast, tuntap.Builder.Broadcast},
	} {
		if a.value == "" {
			continue
		}
		addr, err := netip.ParseAddr(a.value)
		if err != nil {
			return b, fmt.Errorf("invalid -%s: %w", a.flag, err)
		}
		b = a.set(b, addr)
	}
	if o.Up {
		b = b.Up()
	}
	return b, nil
}

// RunRead allocates an interface and logs the size of every packet read
// from each of its queues until interrupted.
func RunRead(opts ReadOptions) error {
	logger, err := setupLogging(opts.LogLevel, false)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return runRead(ctx, opts, Backend, logger.WithComponent("read"), os.Stdout)
}

func runRead(ctx context.Context, opts ReadOptions, backend tuntap.Backend, logger *logging.Logger, out io.Writer) error {
	if opts.Queues < 1 {
		opts.Queues = 1
	}
	b, err := opts.Builder()
	if err != nil {
		return err
	}
	queues, err := b.WithBackend(backend).WithLogger(logger).BuildMultiQueue(ctx, opts.Queues)
	if err != nil {
		return err
	}
	defer closeQueues(queues)

	printInterface(out, Printer, queues[0].Interface())

	g, ctx := errgroup.WithContext(ctx)
	for idx, q := range queues {
		g.Go(func() error {
			return readLoop(ctx, q, idx, logger)
		})
	}
	return g.Wait()
}

func readLoop(ctx context.Context, q *tuntap.Queue, idx int, logger *logging.Logger) error {
	logger = logger.WithFields(map[string]any{"interface": q.Name(), "queue": idx})
	buf := make([]byte, 65536)
	for {
		n, err := q.ReadContext(ctx, buf)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("queue %d: %w", idx, err)
		}
		logger.Info("packet", "len", n)
	}
}
