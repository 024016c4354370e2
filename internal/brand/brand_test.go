package brand

import (
	"os"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	b := Get()
	if b.Name == "" {
		t.Error("Brand name should not be empty")
	}
	if Version == "" {
		t.Error("Global Version should be initialized (to dev default)")
	}
	if ConfigFileName != "tuntap.hcl" {
		t.Errorf("Expected config file tuntap.hcl, got %s", ConfigFileName)
	}
}

func TestGetConfigDir(t *testing.T) {
	cleanEnv := func() {
		os.Unsetenv(ConfigEnvPrefix + "_PREFIX")
		os.Unsetenv(ConfigEnvPrefix + "_CONFIG_DIR")
	}
	cleanEnv()
	defer cleanEnv()

	if GetConfigDir() != DefaultConfigDir {
		t.Errorf("Expected default config dir %s, got %s", DefaultConfigDir, GetConfigDir())
	}
	if DefaultConfigPath() != "/etc/tuntap/tuntap.hcl" {
		t.Errorf("Unexpected default config path %s", DefaultConfigPath())
	}

	os.Setenv(ConfigEnvPrefix+"_PREFIX", "/tmp/tuntap")
	if GetConfigDir() != "/tmp/tuntap/config" {
		t.Errorf("Expected prefix config dir, got %s", GetConfigDir())
	}

	os.Setenv(ConfigEnvPrefix+"_CONFIG_DIR", "/custom/config")
	if GetConfigDir() != "/custom/config" {
		t.Errorf("Expected custom config dir, got %s", GetConfigDir())
	}
}

func TestVersionString(t *testing.T) {
	v := VersionString()
	if !strings.HasPrefix(v, "tuntap dev") {
		t.Errorf("Unexpected version string %q", v)
	}
}

func TestAbout(t *testing.T) {
	if got := About(); got != "https://grimm.is/tuntap (MIT license)" {
		t.Errorf("Unexpected about line %q", got)
	}
}
