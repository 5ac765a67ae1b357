package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/defsky/uterm/session"
)

const defaultConfigName = ".uterm.toml"

// Config is the endpoint configuration, loadable from a TOML file and
// overridable per-field by command line flags.
type Config struct {
	// Network and Addr name the controller transport to dial, in
	// net.Dial terms ("unix" + socket path, or "tcp" + host:port).
	Network string `toml:"network"`
	Addr    string `toml:"addr"`

	// Console selects the local console backend: raw, screen or relay.
	Console string `toml:"console"`

	// RelayNetwork and RelayAddr name the further display transport
	// used by the relay console.
	RelayNetwork string `toml:"relay_network"`
	RelayAddr    string `toml:"relay_addr"`

	Termspec      string `toml:"termspec"`
	KeyBufferSize int    `toml:"key_buffer_size"`
	Echo          bool   `toml:"echo"`

	// RegionSwitch brackets remote display bursts with the terminal's
	// region-switch escape sequences (raw console only).
	RegionSwitch bool `toml:"region_switch"`

	// Charset transcodes keystrokes fetched through the relay console.
	Charset string `toml:"charset"`

	// Script is an optional Lua startup script path.
	Script string `toml:"script"`

	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Network:       "unix",
		Addr:          "comm",
		Console:       "raw",
		RelayNetwork:  "unix",
		Termspec:      session.DefaultTermspec,
		KeyBufferSize: session.DefaultKeyBufferSize,
		Echo:          true,
		Charset:       "UTF-8",
		LogLevel:      "info",
	}
}

// LoadConfig reads the TOML file at path over the defaults. An empty path
// means the per-user default location, which may be absent; an explicit
// path must exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, defaultConfigName)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Console {
	case "raw", "screen", "relay":
	default:
		return fmt.Errorf("unknown console backend %q", c.Console)
	}
	if c.Console == "relay" && c.RelayAddr == "" {
		return fmt.Errorf("relay console needs relay_addr")
	}
	return nil
}
