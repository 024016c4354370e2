// Package cmd implements the tuntap subcommands.
package cmd

import (
	"context"
	"io"
	"net/netip"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/text/message"

	"grimm.is/tuntap/internal/brand"
	"grimm.is/tuntap/internal/i18n"
	"grimm.is/tuntap/internal/logging"
	"grimm.is/tuntap/internal/tuntap"
)

// Printer writes user-facing output with locale-aware number formatting.
var Printer = i18n.NewCLIPrinter()

// Backend is the kernel backend used by every subcommand.
var Backend tuntap.Backend = tuntap.DefaultBackend

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// setupLogging installs the default logger.
func setupLogging(level string, json bool) (*logging.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Config{
		Level:  lvl,
		Output: os.Stderr,
		JSON:   json,
	})
	logging.SetPrefix(brand.BinaryName)
	logging.SetDefault(logger)
	return logger, nil
}

// printInterface prints the kernel view of iface. Properties the kernel
// refuses to report are shown as "-".
func printInterface(w io.Writer, p *message.Printer, iface *tuntap.Interface) {
	p.Fprintf(w, "%s:\n", iface.Name())

	if mtu, err := iface.MTU(); err == nil {
		// No digit grouping for MTUs.
		p.Fprintf(w, "  mtu:         %s\n", strconv.Itoa(mtu))
	} else {
		p.Fprintf(w, "  mtu:         -\n")
	}
	if flags, err := iface.Flags(); err == nil {
		p.Fprintf(w, "  flags:       <%s>\n", tuntap.FormatFlags(flags))
	} else {
		p.Fprintf(w, "  flags:       -\n")
	}

	addrs := []struct {
		label string
		get   func() (netip.Addr, error)
	}{
		{"address:    ", iface.Address},
		{"netmask:    ", iface.Netmask},
		{"destination:", iface.Destination},
		{"broadcast:  ", iface.Broadcast},
	}
	for _, a := range addrs {
		value := "-"
		if addr, err := a.get(); err == nil && !addr.IsUnspecified() {
			value = addr.String()
		}
		p.Fprintf(w, "  %s %s\n", a.label, value)
	}

	if mac, err := iface.HardwareAddr(); err == nil {
		p.Fprintf(w, "  hwaddr:      %s\n", mac)
	}
	if n := iface.Queues(); n > 0 {
		p.Fprintf(w, "  queues:      %d\n", n)
	}
}
