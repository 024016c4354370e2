// Package config handles HCL configuration parsing and validation.
//
// # Overview
//
// tuntap reads an HCL file describing the interfaces to create and the
// ambient settings of the process (log level, metrics listener).
//
// # Key Types
//
//   - [Config]: top-level settings and interface blocks
//   - [Interface]: one TUN/TAP interface to allocate
//   - [ValidationErrors]: every problem found by [Config.Validate]
//
// # Variables
//
// Expressions may reference the process environment through the env
// object, e.g. owner = env.SUDO_UID.
//
// # Example
//
//	log_level      = "info"
//	metrics_listen = "127.0.0.1:9110"
//
//	interface "tun0" {
//	  packet_info = false
//	  queues      = 2
//	  mtu         = 1350
//	  address     = "10.0.0.1"
//	  netmask     = "255.255.255.0"
//	  up          = true
//	}
package config
