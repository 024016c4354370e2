package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"grimm.is/tuntap/internal/config"
	"grimm.is/tuntap/internal/logging"
	"grimm.is/tuntap/internal/metrics"
	"grimm.is/tuntap/internal/tuntap"
)

// RunCreate allocates every interface in configFile and holds them until
// SIGINT or SIGTERM. Persistent interfaces outlive the process.
func RunCreate(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger, err := setupLogging(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return runCreate(ctx, cfg, Backend, logger.WithComponent("create"), os.Stdout)
}

func runCreate(ctx context.Context, cfg *config.Config, backend tuntap.Backend, logger *logging.Logger, out io.Writer) error {
	queues, err := allocateAll(ctx, cfg, backend, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, q := range queues {
			q.Close()
		}
	}()

	seen := make(map[*tuntap.Interface]bool)
	for _, q := range queues {
		if iface := q.Interface(); !seen[iface] {
			seen[iface] = true
			printInterface(out, Printer, iface)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.MetricsListen != "" {
		g.Go(func() error {
			logger.Info("serving metrics", "listen", cfg.MetricsListen)
			return metrics.Serve(ctx, cfg.MetricsListen)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down", "interfaces", len(seen))
		return nil
	})
	return g.Wait()
}

// allocateAll creates the configured interfaces in order. On failure the
// queues already created are closed.
func allocateAll(ctx context.Context, cfg *config.Config, backend tuntap.Backend, logger *logging.Logger) ([]*tuntap.Queue, error) {
	var all []*tuntap.Queue
	for _, ic := range cfg.Interfaces {
		b, err := ic.Builder()
		if err != nil {
			closeQueues(all)
			return nil, err
		}
		queues, err := b.WithBackend(backend).
			WithLogger(logger).
			BuildMultiQueue(ctx, ic.QueueCount())
		if err != nil {
			closeQueues(all)
			return nil, fmt.Errorf("failed to create interface %s: %w", ic.Name, err)
		}
		all = append(all, queues...)
	}
	return all, nil
}

func closeQueues(queues []*tuntap.Queue) {
	for _, q := range queues {
		q.Close()
	}
}
