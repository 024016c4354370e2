package testutil

import (
	"os"
	"testing"
)

// RequirePrivileged skips the test unless TUNTAP_PRIVILEGED_TEST is set and
// the process runs as root. Such tests create real kernel interfaces.
func RequirePrivileged(t *testing.T) {
	t.Helper()
	if os.Getenv("TUNTAP_PRIVILEGED_TEST") == "" {
		t.Skip("Skipping test: requires TUNTAP_PRIVILEGED_TEST environment")
	}
	if os.Geteuid() != 0 {
		t.Skip("Skipping test: requires root")
	}
}
