package main

import (
	"flag"
	"os"

	"grimm.is/tuntap/cmd"
	"grimm.is/tuntap/internal/brand"
)

var printer = cmd.Printer

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create":
		createFlags := flag.NewFlagSet("create", flag.ExitOnError)
		configFile := createFlags.String("config", brand.DefaultConfigPath(), "Configuration file")
		createFlags.StringVar(configFile, "c", brand.DefaultConfigPath(), "Configuration file (short)")
		createFlags.Parse(os.Args[2:])

		if err := cmd.RunCreate(*configFile); err != nil {
			printer.Fprintf(os.Stderr, "Create failed: %v\n", err)
			os.Exit(1)
		}

	case "read":
		readFlags := flag.NewFlagSet("read", flag.ExitOnError)
		var opts cmd.ReadOptions
		readFlags.StringVar(&opts.Name, "name", "", "Interface name (empty: kernel picks)")
		readFlags.BoolVar(&opts.Tap, "tap", false, "Create a TAP interface instead of TUN")
		readFlags.BoolVar(&opts.PacketInfo, "pi", false, "Keep the 4-byte packet information header")
		readFlags.IntVar(&opts.Queues, "queues", 1, "Number of queues")
		readFlags.IntVar(&opts.MTU, "mtu", 0, "MTU (0: kernel default)")
		readFlags.StringVar(&opts.Address, "address", "", "IPv4 address")
		readFlags.StringVar(&opts.Netmask, "netmask", "", "IPv4 netmask")
		readFlags.StringVar(&opts.Destination, "destination", "", "Point-to-point peer address")
		readFlags.StringVar(&opts.Broadcast, "broadcast", "", "Broadcast address")
		readFlags.BoolVar(&opts.Up, "up", false, "Bring the interface up")
		readFlags.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
		readFlags.Parse(os.Args[2:])

		if err := cmd.RunRead(opts); err != nil {
			printer.Fprintf(os.Stderr, "Read failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		if len(os.Args) < 3 {
			printer.Fprintf(os.Stderr, "Usage: %s show <interface>\n", brand.BinaryName)
			os.Exit(1)
		}
		if err := cmd.RunShow(os.Args[2]); err != nil {
			printer.Fprintf(os.Stderr, "Show failed: %v\n", err)
			os.Exit(1)
		}

	case "check":
		configFile := brand.DefaultConfigPath()
		if len(os.Args) > 2 {
			configFile = os.Args[2]
		}
		if err := cmd.RunCheck(configFile); err != nil {
			printer.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}

	case "version":
		cmd.RunVersion()

	case "help", "-h", "--help":
		printUsage()

	default:
		printer.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s <command> [options]

Commands:
  create    Create the interfaces of a configuration file and hold them
            Options: --config (-c) <file>
  read      Create an interface and log every packet read from it
            Options: -name, -tap, -pi, -queues, -mtu, -address, -netmask,
                     -destination, -broadcast, -up, -log-level
  show      Show an existing interface and its counters
  check     Validate a configuration file
  version   Print version information
`, brand.Name, brand.Description, brand.BinaryName)
}
