// Package config loads the console core's tunables from YAML, the
// same way the corpus's services configure themselves.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the knobs the core needs that spec.md leaves to a
// deployment: the default OEM codepage, the default CTRL wake-up mask
// for line reads, and history retention. ScratchBufferBytes and
// SuppressConsecutiveDuplicates are loaded as well but are not
// consulted by the core (see their field comments).
type Config struct {
	// Codepage names a single-byte OEM charmap: "cp437", "cp850", or
	// "windows1252".
	Codepage string `yaml:"codepage"`

	// ScratchBufferBytes is loaded but not read by the core: a Cooked
	// Read Session's storage is always the larger of 256 runes and the
	// request's capacity.
	ScratchBufferBytes int `yaml:"scratch_buffer_bytes"`

	// DefaultCtrlWakeupMask seeds CtrlWakeupMask for reads that don't
	// specify one explicitly (a request whose mask is zero).
	DefaultCtrlWakeupMask uint32 `yaml:"default_ctrl_wakeup_mask"`

	// HistoryCapacity is the number of lines retained per executable
	// name in the in-memory history list.
	HistoryCapacity int `yaml:"history_capacity"`

	// SuppressConsecutiveDuplicates is loaded but not read by the core:
	// cooked reads always record history with the classic doskey
	// dedup-on-repeat behavior (a line equal to the most recent entry is
	// not recorded again).
	SuppressConsecutiveDuplicates bool `yaml:"suppress_consecutive_duplicates"`
}

// Default returns the configuration the core ships with absent a
// config file.
func Default() Config {
	return Config{
		Codepage:                      "cp437",
		ScratchBufferBytes:            256,
		DefaultCtrlWakeupMask:         0,
		HistoryCapacity:               50,
		SuppressConsecutiveDuplicates: true,
	}
}

// Load reads and merges a YAML config file over Default(). A missing
// file is not an error — the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
