// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Mode is a compilation mode.
type Mode int

const (
	// Simulation ignores translate_off/translate_on pragmas.
	Simulation Mode = iota
	// Synthesis skips statements between translate_off and translate_on.
	Synthesis
)

func (m Mode) String() string {
	switch m {
	case Simulation:
		return "simulation"
	case Synthesis:
		return "synthesis"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Set sets mode from s. It implements flag.Value.
func (m *Mode) Set(s string) error {
	switch strings.ToLower(s) {
	case "simulation", "sim":
		*m = Simulation
	case "synthesis", "syn":
		*m = Synthesis
	default:
		return fmt.Errorf("unknown mode %q: want simulation or synthesis", s)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	return m.Set(string(b))
}

// ConfigFile is the name of the config file in the run directory.
const ConfigFile = ".hdldeps_config"

// DefaultLibrary is the library used when nothing else names one.
const DefaultLibrary = "work"

// Options configures extraction.
type Options struct {
	// Mode is the compilation mode.
	Mode Mode `json:"mode"`

	// DefaultLibrary is the destination library of files outside any
	// library directory, and the library assumed for use clauses that
	// don't name an imported library.
	DefaultLibrary string `json:"default_library,omitempty"`

	// Extensions maps file extension (e.g. ".vhd") to language.
	// Files with other extensions are not scanned.
	Extensions map[string]string `json:"extensions,omitempty"`

	// CacheSize is the number of records kept for identical content.
	CacheSize int `json:"cache_size,omitempty"`
}

// DefaultOptions returns options with defaults filled.
func DefaultOptions() Options {
	return Options{
		Mode:           Simulation,
		DefaultLibrary: DefaultLibrary,
		Extensions: map[string]string{
			".vhd":  LangVHDL,
			".vhdl": LangVHDL,
		},
		CacheSize: 4096,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DefaultLibrary == "" {
		o.DefaultLibrary = d.DefaultLibrary
	}
	if len(o.Extensions) == 0 {
		o.Extensions = d.Extensions
	}
	if o.CacheSize <= 0 {
		o.CacheSize = d.CacheSize
	}
	return o
}

// Validate checks options.
func (o Options) Validate() error {
	if !isIdent(o.DefaultLibrary) {
		return fmt.Errorf("bad default library %q", o.DefaultLibrary)
	}
	for ext, lang := range o.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("bad extension %q: must start with '.'", ext)
		}
		if _, ok := scanners[lang]; !ok {
			return fmt.Errorf("extension %q: unknown language %q", ext, lang)
		}
	}
	return nil
}

// Lang returns language of fname, or "" if fname is not scanned.
func (o Options) Lang(fname string) string {
	ext := strings.ToLower(filepath.Ext(fname))
	return o.Extensions[ext]
}

// LoadConfig loads options from ConfigFile in dir.
// Missing config file is not an error; defaults are returned.
func LoadConfig(dir string) (Options, error) {
	opts := DefaultOptions()
	buf, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if errors.Is(err, fs.ErrNotExist) {
		return opts, nil
	}
	if err != nil {
		return opts, err
	}
	var c Options
	err = json.Unmarshal(buf, &c)
	if err != nil {
		return opts, fmt.Errorf("load %s/%s: %w", dir, ConfigFile, err)
	}
	c = c.withDefaults()
	err = c.Validate()
	if err != nil {
		return opts, fmt.Errorf("load %s/%s: %w", dir, ConfigFile, err)
	}
	return c, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
