package validation

import (
	"fmt"
	"strings"
)

// Dangerous characters that should never appear in an interface name
var dangerousChars = []string{";", "|", "&", "$", "`", "(", ")", "<", ">", "\\", "\"", "'", "\n", "\r"}

// ValidateInterfaceName checks a requested interface name against the
// kernel's rules (no '/', ':' or whitespace, not "." or ".."). A single
// "%d" is allowed and replaced by the kernel with the first free index.
// Length is not checked; over-long names are truncated by the allocator.
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name cannot be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid interface name: %s", name)
	}
	if strings.ContainsAny(name, "/: \t") {
		return fmt.Errorf("invalid interface name: %q (must not contain '/', ':' or whitespace)", name)
	}
	if n := strings.Count(name, "%"); n > 0 {
		if n > 1 || !strings.Contains(name, "%d") {
			return fmt.Errorf("invalid interface name: %s (only a single %%d is allowed)", name)
		}
	}

	for _, char := range dangerousChars {
		if strings.Contains(name, char) {
			return fmt.Errorf("interface name contains dangerous character: %q", char)
		}
	}

	return nil
}
