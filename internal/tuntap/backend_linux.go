//go:build linux
// +build linux

package tuntap

import (
	"context"
	"fmt"
	"os"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultBackend is the backend used by builders that do not set one.
var DefaultBackend Backend = &LinuxBackend{}

// LinuxBackend issues the real ioctls against /dev/net/tun.
type LinuxBackend struct{}

// OpenDevice opens DevicePath non-blocking so reads and writes park on the
// runtime poller instead of an OS thread.
func (b *LinuxBackend) OpenDevice(ctx context.Context) (DeviceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fd, err := unix.Open(DevicePath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", DevicePath, err)
	}
	return newDeviceFile(fd)
}

// AttachDevice issues TUNSETIFF.
func (b *LinuxBackend) AttachDevice(dev DeviceFile, ifr *Ifreq) error {
	return controlFd(dev, func(fd int) error {
		return ioctlIfreq(fd, tunSetIff, ifr)
	})
}

// SetDeviceOption issues an ioctl whose argument is passed by value.
func (b *LinuxBackend) SetDeviceOption(dev DeviceFile, req uint, value int) error {
	return controlFd(dev, func(fd int) error {
		return unix.IoctlSetInt(fd, req, value)
	})
}

// DupDevice duplicates the descriptor with close-on-exec set.
func (b *LinuxBackend) DupDevice(dev DeviceFile) (DeviceFile, error) {
	var dup int
	err := controlFd(dev, func(fd int) error {
		var err error
		dup, err = unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newDeviceFile(dup)
}

// OpenControlSocket opens the AF_INET datagram socket used for SIOC* calls.
func (b *LinuxBackend) OpenControlSocket() (ControlSocket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &linuxControlSocket{fd: fd}, nil
}

type linuxControlSocket struct {
	fd        int
	closeOnce sync.Once
	closeErr  error
}

func (s *linuxControlSocket) Ioctl(req uint, ifr *Ifreq) error {
	return ioctlIfreq(s.fd, req, ifr)
}

func (s *linuxControlSocket) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = unix.Close(s.fd)
	})
	return s.closeErr
}

func newDeviceFile(fd int) (DeviceFile, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to set non-blocking mode: %w", err)
	}
	return os.NewFile(uintptr(fd), DevicePath), nil
}

// controlFd runs fn with the raw descriptor of dev. It goes through
// syscall.RawConn because os.File.Fd would switch the file back to
// blocking mode.
func controlFd(dev DeviceFile, fn func(fd int) error) error {
	sc, ok := dev.(syscall.Conn)
	if !ok {
		return fmt.Errorf("device %T does not expose a raw descriptor", dev)
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return err
	}
	var opErr error
	if err := rc.Control(func(fd uintptr) {
		opErr = fn(int(fd))
	}); err != nil {
		return err
	}
	return opErr
}

func ioctlIfreq(fd int, req uint, ifr *Ifreq) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(ifr)))
	if errno != 0 {
		return errno
	}
	return nil
}
