//go:build !linux
// +build !linux

package tuntap

import "context"

// DefaultBackend is the backend used by builders that do not set one.
var DefaultBackend Backend = &unsupportedBackend{}

// unsupportedBackend is a stub for platforms without /dev/net/tun.
type unsupportedBackend struct{}

func (b *unsupportedBackend) OpenDevice(ctx context.Context) (DeviceFile, error) {
	return nil, ErrUnsupported
}

func (b *unsupportedBackend) AttachDevice(dev DeviceFile, ifr *Ifreq) error {
	return ErrUnsupported
}

func (b *unsupportedBackend) SetDeviceOption(dev DeviceFile, req uint, value int) error {
	return ErrUnsupported
}

func (b *unsupportedBackend) DupDevice(dev DeviceFile) (DeviceFile, error) {
	return nil, ErrUnsupported
}

func (b *unsupportedBackend) OpenControlSocket() (ControlSocket, error) {
	return nil, ErrUnsupported
}
