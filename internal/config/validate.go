package config

import (
	"fmt"
	"math"
	"strings"

	"grimm.is/tuntap/internal/logging"
	"grimm.is/tuntap/internal/tuntap"
	"grimm.is/tuntap/internal/validation"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate checks the whole configuration and reports every problem at
// once. It returns nil or a ValidationErrors.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, ValidationError{"log_level", err.Error()})
		}
	}

	seen := make(map[string]bool)
	for _, ic := range c.Interfaces {
		field := fmt.Sprintf("interface.%s", ic.Name)
		if ic.Name != "" {
			if err := validation.ValidateInterfaceName(ic.Name); err != nil {
				errs = append(errs, ValidationError{field, err.Error()})
			}
			if seen[ic.Name] {
				errs = append(errs, ValidationError{field, "duplicate interface name"})
			}
			seen[ic.Name] = true
		}
		if n := ic.QueueCount(); n < 1 || n > tuntap.MaxQueues {
			errs = append(errs, ValidationError{field + ".queues", fmt.Sprintf("must be between 1 and %d", tuntap.MaxQueues)})
		}
		if ic.MTU != nil && (*ic.MTU < 0 || *ic.MTU > math.MaxInt32) {
			errs = append(errs, ValidationError{field + ".mtu", fmt.Sprintf("must be between 0 and %d", math.MaxInt32)})
		}
		for _, a := range []struct {
			name  string
			value *string
		}{
			{"address", ic.Address},
			{"netmask", ic.Netmask},
			{"destination", ic.Destination},
			{"broadcast", ic.Broadcast},
		} {
			if a.value == nil {
				continue
			}
			if _, err := parseIPv4(*a.value); err != nil {
				errs = append(errs, ValidationError{field + "." + a.name, err.Error()})
			}
		}
		if ic.MAC != nil {
			if !ic.Tap {
				errs = append(errs, ValidationError{field + ".mac", "requires tap = true"})
			}
			if _, err := tuntap.ParseEthernetAddr(*ic.MAC); err != nil {
				errs = append(errs, ValidationError{field + ".mac", err.Error()})
			}
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
