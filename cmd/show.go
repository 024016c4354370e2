package cmd

import (
	"io"
	"os"

	"golang.org/x/text/message"

	"grimm.is/tuntap/internal/tuntap"
)

// RunShow prints the configuration and kernel counters of an existing
// interface. It opens no queue, so it works on interfaces owned by other
// processes.
func RunShow(name string) error {
	return runShow(name, Backend, os.Stdout)
}

func runShow(name string, backend tuntap.Backend, out io.Writer) error {
	iface, err := tuntap.InspectWithBackend(backend, name)
	if err != nil {
		return err
	}
	defer iface.Release()

	printInterface(out, Printer, iface)
	printStats(out, Printer, iface)
	return nil
}

func printStats(w io.Writer, p *message.Printer, iface *tuntap.Interface) {
	stats, err := iface.Stats()
	if err != nil {
		p.Fprintf(w, "  statistics:  unavailable (%v)\n", err)
		return
	}
	p.Fprintf(w, "  rx:          %d packets, %d bytes, %d errors, %d dropped\n",
		stats.RxPackets, stats.RxBytes, stats.RxErrors, stats.RxDropped)
	p.Fprintf(w, "  tx:          %d packets, %d bytes, %d errors, %d dropped\n",
		stats.TxPackets, stats.TxBytes, stats.TxErrors, stats.TxDropped)
}
