package tuntap

import (
	"errors"
	"fmt"
)

var (
	// ErrAddressFamily is matched by every *AddressFamilyError.
	ErrAddressFamily = errors.New("unexpected address family")

	// ErrClosed is returned by operations on a closed queue or released interface.
	ErrClosed = errors.New("tuntap: use of closed handle")

	// ErrNoQueue is returned by device-level operations (owner, group,
	// persist) when no queue descriptor is attached to the interface.
	ErrNoQueue = errors.New("tuntap: no device descriptor attached to interface")

	ErrInvalidQueueCount = errors.New("tuntap: queue count must be between 1 and 256")
	ErrNotIPv4           = errors.New("tuntap: address is not IPv4")
	ErrInvalidMTU        = errors.New("tuntap: MTU out of range")

	// ErrUnsupported is returned by the default backend on platforms
	// without /dev/net/tun.
	ErrUnsupported = errors.New("tuntap: not supported on this platform")
)

// OpError records a failed kernel call together with the interface it
// targeted. Err is the raw errno returned by the kernel.
type OpError struct {
	Op   string
	Name string
	Err  error
}

func (e *OpError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("tuntap: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("tuntap: %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// AddressFamilyError is returned when a kernel socket address carries a
// family tag other than the one requested.
type AddressFamilyError struct {
	Want uint16
	Got  uint16
}

func (e *AddressFamilyError) Error() string {
	return fmt.Sprintf("incorrect address family: got %d, want %d", e.Got, e.Want)
}

func (e *AddressFamilyError) Is(target error) bool { return target == ErrAddressFamily }

// AddressLengthError is returned when a hardware address is not 6 bytes long.
type AddressLengthError struct {
	Length int
}

func (e *AddressLengthError) Error() string {
	return fmt.Sprintf("hardware address has wrong length: %d", e.Length)
}
