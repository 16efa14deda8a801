package utils

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig tests the DefaultConfig function
func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if config.ProtocolVersion != "" {
		t.Errorf("ProtocolVersion = %q, want the default release", config.ProtocolVersion)
	}

	if config.MaxPo2 != 0 {
		t.Errorf("MaxPo2 = %d, want the release bound", config.MaxPo2)
	}

	if config.Workers <= 0 {
		t.Error("Workers should be positive")
	}

	if config.Format != FormatAuto {
		t.Errorf("Format = %q, want %q", config.Format, FormatAuto)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig() should be valid: %v", err)
	}
}

// TestConfigValidate tests the Validate method
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		expectErr bool
	}{
		{
			name:      "valid default config",
			config:    DefaultConfig(),
			expectErr: false,
		},
		{
			name:      "valid explicit release",
			config:    DefaultConfig().WithProtocolVersion("v1.2").WithMaxPo2(20),
			expectErr: false,
		},
		{
			name:      "po2 too large",
			config:    DefaultConfig().WithMaxPo2(33),
			expectErr: true,
		},
		{
			name:      "no workers",
			config:    DefaultConfig().WithWorkers(0),
			expectErr: true,
		},
		{
			name:      "unknown format",
			config:    DefaultConfig().WithFormat("bincode"),
			expectErr: true,
		},
		{
			name:      "format is case insensitive",
			config:    DefaultConfig().WithFormat("CBOR"),
			expectErr: false,
		},
		{
			name:      "unknown log level",
			config:    DefaultConfig().WithLogLevel("loud"),
			expectErr: true,
		},
		{
			name:      "empty listen address",
			config:    DefaultConfig().WithListenAddr(""),
			expectErr: true,
		},
		{
			name:      "negative body limit",
			config:    DefaultConfig().WithBodyLimit(-1),
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectErr && err == nil {
				t.Error("Validate() expected error but got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

// TestConfigClone tests that clones do not share state
func TestConfigClone(t *testing.T) {
	original := DefaultConfig().WithProtocolVersion("v2.0").WithWorkers(4)
	clone := original.Clone()

	if *clone != *original {
		t.Fatalf("Clone() = %+v, want %+v", clone, original)
	}

	clone.WithProtocolVersion("v3.0").WithWorkers(1)
	if original.ProtocolVersion != "v2.0" || original.Workers != 4 {
		t.Error("modifying the clone changed the original")
	}
}

// TestDefaultConfigImmutability tests that defaults are fresh on every call
func TestDefaultConfigImmutability(t *testing.T) {
	DefaultConfig().WithWorkers(99)
	if DefaultConfig().Workers == 99 {
		t.Error("DefaultConfig() returned shared state")
	}
}

// TestParseConfig tests YAML loading
func TestParseConfig(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		c, err := ParseConfig([]byte("protocol_version: v1.1\nmax_po2: 18\nformat: cbor\n"))
		if err != nil {
			t.Fatalf("ParseConfig() error: %v", err)
		}
		if c.ProtocolVersion != "v1.1" || c.MaxPo2 != 18 || c.Format != FormatCBOR {
			t.Errorf("ParseConfig() = %+v", c)
		}
		if c.ListenAddr != DefaultConfig().ListenAddr {
			t.Errorf("missing key lost its default: ListenAddr = %q", c.ListenAddr)
		}
	})

	t.Run("empty", func(t *testing.T) {
		c, err := ParseConfig(nil)
		if err != nil {
			t.Fatalf("ParseConfig() error: %v", err)
		}
		if c.Format != FormatAuto {
			t.Errorf("Format = %q", c.Format)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if _, err := ParseConfig([]byte("max_pow2: 18\n")); err == nil {
			t.Error("ParseConfig() accepted an unknown key")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		if _, err := ParseConfig([]byte("workers: 0\n")); err == nil {
			t.Error("ParseConfig() accepted zero workers")
		}
	})
}

// TestLoadConfig tests reading a configuration file
func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verifier.yaml")
	if err := os.WriteFile(path, []byte("workers: 3\nlog_level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if c.Workers != 3 || c.LogLevel != "debug" {
		t.Errorf("LoadConfig() = %+v", c)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() accepted a missing file")
	}
}
