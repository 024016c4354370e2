package cmd

import (
	"errors"
	"io"
	"os"

	"grimm.is/tuntap/internal/config"
)

// RunCheck validates configFile without touching the kernel.
func RunCheck(configFile string) error {
	return runCheck(configFile, os.Stdout)
}

func runCheck(configFile string, out io.Writer) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				Printer.Fprintf(out, "  %s\n", v.Error())
			}
		}
		return err
	}
	for _, ic := range cfg.Interfaces {
		kind := "tun"
		if ic.Tap {
			kind = "tap"
		}
		Printer.Fprintf(out, "  %s (%s, %d queues)\n", ic.Name, kind, ic.QueueCount())
	}
	Printer.Fprintf(out, "%s: OK\n", configFile)
	return nil
}
