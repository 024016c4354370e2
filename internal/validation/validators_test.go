package validation

import (
	"testing"
)

func TestValidateInterfaceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Happy paths
		{"simple", "tun0", false},
		{"with dash", "tap-vm1", false},
		{"with underscore", "tun_0", false},
		{"with dot", "tap0.100", false},
		{"kernel index", "vpn%d", false},
		{"long names are left to truncation", "averyveryverylongname", false},

		// Sad paths
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"slash", "tun/0", true},
		{"colon", "tun:0", true},
		{"space", "tun 0", true},
		{"two templates", "t%d%d", true},
		{"bad template", "tun%s", true},
		{"semicolon injection", "tun0;rm", true},
		{"pipe injection", "tun0|cat", true},
		{"dollar sign", "tun0$USER", true},
		{"backtick", "tun0`whoami`", true},
		{"newline", "tun0\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterfaceName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInterfaceName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
