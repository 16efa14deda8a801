package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Receipt encodings accepted by the Format setting
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Config represents the configuration of a verifier instance and the tools
// built around it
type Config struct {
	// Protocol parameters
	ProtocolVersion string `yaml:"protocol_version"` // e.g. "v1.2"; empty means the default release
	MaxPo2          uint32 `yaml:"max_po2"`          // 0 keeps the release bound

	// Batch parameters
	Workers int `yaml:"workers"` // concurrent verifications

	// Encoding of receipt files
	Format string `yaml:"format"` // "auto", "json" or "cbor"

	// Logging
	LogLevel string `yaml:"log_level"`

	// HTTP server
	ListenAddr string `yaml:"listen_addr"`
	BodyLimit  int    `yaml:"body_limit"` // bytes
}

// DefaultConfig returns the configuration used when nothing is specified
func DefaultConfig() *Config {
	return &Config{
		ProtocolVersion: "",
		MaxPo2:          0,
		Workers:         runtime.NumCPU(),
		Format:          FormatAuto,
		LogLevel:        "info",
		ListenAddr:      ":3000",
		BodyLimit:       64 * 1024 * 1024,
	}
}

var logLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// Validate checks if the configuration is valid. The protocol version is
// checked by whoever resolves it.
func (c *Config) Validate() error {
	if c.MaxPo2 > 32 {
		return fmt.Errorf("max po2 must be at most 32, got %d", c.MaxPo2)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}

	switch c.Format {
	case FormatAuto, FormatJSON, FormatCBOR:
	default:
		return fmt.Errorf("format must be 'auto', 'json' or 'cbor', got '%s'", c.Format)
	}

	valid := false
	for _, l := range logLevels {
		if strings.EqualFold(c.LogLevel, l) {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("log level must be one of %s, got '%s'", strings.Join(logLevels, ", "), c.LogLevel)
	}

	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}

	if c.BodyLimit <= 0 {
		return fmt.Errorf("body limit must be positive")
	}

	return nil
}

// WithProtocolVersion sets the protocol version
func (c *Config) WithProtocolVersion(v string) *Config {
	c.ProtocolVersion = v
	return c
}

// WithMaxPo2 sets the segment size bound
func (c *Config) WithMaxPo2(po2 uint32) *Config {
	c.MaxPo2 = po2
	return c
}

// WithWorkers sets the number of concurrent verifications
func (c *Config) WithWorkers(n int) *Config {
	c.Workers = n
	return c
}

// WithFormat sets the receipt encoding
func (c *Config) WithFormat(format string) *Config {
	c.Format = strings.ToLower(format)
	return c
}

// WithLogLevel sets the log level
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}

// WithListenAddr sets the server address
func (c *Config) WithListenAddr(addr string) *Config {
	c.ListenAddr = addr
	return c
}

// WithBodyLimit sets the largest request body the server reads
func (c *Config) WithBodyLimit(limit int) *Config {
	c.BodyLimit = limit
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// LoadConfig reads a YAML file over the default configuration. Keys missing
// from the file keep their default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig for in-memory YAML
func ParseConfig(data []byte) (*Config, error) {
	c := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
