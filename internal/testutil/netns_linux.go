//go:build linux

package testutil

import (
	"runtime"
	"testing"

	"github.com/vishvananda/netns"
)

// InNetns runs fn on a locked OS thread inside a fresh, unnamed network
// namespace. Interfaces created by fn disappear with the namespace.
func InNetns(t *testing.T, fn func()) {
	t.Helper()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	origns, err := netns.Get()
	if err != nil {
		t.Fatalf("failed to get original netns: %v", err)
	}
	defer origns.Close()

	newns, err := netns.New()
	if err != nil {
		t.Fatalf("failed to create netns: %v", err)
	}
	defer newns.Close()
	defer func() {
		if err := netns.Set(origns); err != nil {
			t.Fatalf("failed to return to original netns: %v", err)
		}
	}()

	fn()
}
