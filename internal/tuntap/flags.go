package tuntap

import "strings"

var flagNames = []struct {
	bit  int16
	name string
}{
	{0x1, "UP"},
	{0x2, "BROADCAST"},
	{0x4, "DEBUG"},
	{0x8, "LOOPBACK"},
	{0x10, "POINTOPOINT"},
	{0x20, "NOTRAILERS"},
	{0x40, "RUNNING"},
	{0x80, "NOARP"},
	{0x100, "PROMISC"},
	{0x200, "ALLMULTI"},
	{0x1000, "MULTICAST"},
}

// FormatFlags renders an interface flag word the way ip(8) does,
// e.g. "UP,POINTOPOINT,RUNNING".
func FormatFlags(flags int16) string {
	var names []string
	for _, f := range flagNames {
		if flags&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ",")
}
