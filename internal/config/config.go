// Package config loads the simulator's run configuration: the
// memory size, cycle budget, TTY convention, and trace verbosity
// flag-default values the teacher's cmd/*/main.go hard-coded as
// flag.Bool/flag.String defaults, lifted into an optional TOML file
// in the style of lookbusy1344/arm-emulator's config package, with
// explicit CLI flags still free to override any field.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the simulator's run configuration.
type Config struct {
	Execution struct {
		MemorySize  uint   `toml:"memory_size"`
		CycleBudget uint64 `toml:"cycle_budget"` // 0 means unbounded
		Verbose     bool   `toml:"verbose"`
		Debug       bool   `toml:"debug"` // pause before every instruction
	} `toml:"execution"`

	TTY struct {
		Enabled bool   `toml:"enabled"`
		Address uint32 `toml:"address"`
		Network bool   `toml:"network"` // accept a TCP console instead of stdout
	} `toml:"tty"`

	Trace struct {
		DumpMemoryOnFault bool `toml:"dump_memory_on_fault"`
	} `toml:"trace"`
}

// DefaultConfig returns the configuration used when no file is
// loaded, matching the teacher's flag defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Execution.MemorySize = 1 << 20 // 1 MiB
	cfg.Execution.CycleBudget = 0
	cfg.Execution.Verbose = false
	cfg.Execution.Debug = false

	cfg.TTY.Enabled = false
	cfg.TTY.Address = 0x200
	cfg.TTY.Network = false

	cfg.Trace.DumpMemoryOnFault = false
	return cfg
}

// Load reads path as a TOML file and returns a Config with
// DefaultConfig's values overridden by whatever the file sets. A
// missing file is not an error: Load returns DefaultConfig()
// unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
	}
	return cfg, nil
}
