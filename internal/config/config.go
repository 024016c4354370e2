package config

import (
	"fmt"
	"net/netip"

	"grimm.is/tuntap/internal/tuntap"
)

// Config is the top-level configuration file.
type Config struct {
	LogLevel      string      `hcl:"log_level,optional"`
	LogJSON       bool        `hcl:"log_json,optional"`
	MetricsListen string      `hcl:"metrics_listen,optional"`
	Interfaces    []Interface `hcl:"interface,block"`
}

// Interface describes one TUN/TAP interface. Unset optional attributes
// leave the kernel default in place.
type Interface struct {
	Name        string  `hcl:"name,label"`
	Tap         bool    `hcl:"tap,optional"`
	PacketInfo  *bool   `hcl:"packet_info,optional"`
	Queues      *int    `hcl:"queues,optional"`
	MTU         *int    `hcl:"mtu,optional"`
	Owner       *int    `hcl:"owner,optional"`
	Group       *int    `hcl:"group,optional"`
	Address     *string `hcl:"address,optional"`
	Netmask     *string `hcl:"netmask,optional"`
	Destination *string `hcl:"destination,optional"`
	Broadcast   *string `hcl:"broadcast,optional"`
	MAC         *string `hcl:"mac,optional"`
	Persist     bool    `hcl:"persist,optional"`
	Up          bool    `hcl:"up,optional"`
}

// QueueCount returns the configured number of queues, 1 when unset.
func (ic Interface) QueueCount() int {
	if ic.Queues == nil {
		return 1
	}
	return *ic.Queues
}

// Builder converts the block into a tuntap builder.
func (ic Interface) Builder() (tuntap.Builder, error) {
	b := tuntap.NewBuilder().Name(ic.Name).Tap(ic.Tap)
	if ic.PacketInfo != nil {
		b = b.PacketInfo(*ic.PacketInfo)
	}
	if ic.MTU != nil {
		b = b.MTU(*ic.MTU)
	}
	if ic.Owner != nil {
		b = b.Owner(*ic.Owner)
	}
	if ic.Group != nil {
		b = b.Group(*ic.Group)
	}

	addrs := []struct {
		field string
		value *string
		set   func(tuntap.Builder, netip.Addr) tuntap.Builder
	}{
		{"address", ic.Address, tuntap.Builder.Address},
		{"netmask", ic.Netmask, tuntap.Builder.Netmask},
		{"destination", ic.Destination, tuntap.Builder.Destination},
		{"broadcast", ic.Broadcast, tuntap.Builder.Broadcast},
	}
	for _, a := range addrs {
		if a.value == nil {
			continue
		}
		addr, err := parseIPv4(*a.value)
		if err != nil {
			return b, fmt.Errorf("interface %s: %s: %w", ic.Name, a.field, err)
		}
		b = a.set(b, addr)
	}

	if ic.MAC != nil {
		mac, err := tuntap.ParseEthernetAddr(*ic.MAC)
		if err != nil {
			return b, fmt.Errorf("interface %s: mac: %w", ic.Name, err)
		}
		b = b.MAC(mac)
	}
	if ic.Persist {
		b = b.Persist()
	}
	if ic.Up {
		b = b.Up()
	}
	return b, nil
}

func parseIPv4(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, err
	}
	if !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%s: %w", s, tuntap.ErrNotIPv4)
	}
	return addr, nil
}
