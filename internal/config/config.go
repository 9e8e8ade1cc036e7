// Package config decodes the editor's flat TOML settings file.
//
// File discovery, layering, and hot-reload are a separate collaborator's
// job; this package only turns bytes already read from disk into a
// Settings value, falling back to documented defaults for anything the
// file omits or when no file is given at all.
package config

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

// Settings holds the editor kernel's configurable tunables.
type Settings struct {
	TabSize         int    `toml:"tab_size"`
	IndentWithTabs  bool   `toml:"indent_with_tabs"`
	IdleDurationMs  int    `toml:"idle_duration_ms"`
	MaxClientCount  int    `toml:"max_client_count"`
	MaxProcessCount int    `toml:"max_process_count"`
	UndoDepth       int    `toml:"undo_depth"`
	SessionName     string `toml:"session_name"`
}

// Default returns the settings the editor boots with when no config file
// is present.
func Default() Settings {
	return Settings{
		TabSize:         4,
		IndentWithTabs:  false,
		IdleDurationMs:  1000,
		MaxClientCount:  32,
		MaxProcessCount: 16,
		UndoDepth:       1000,
	}
}

// ParseError wraps a TOML decode failure with the offending source name.
type ParseError struct {
	Source  string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Source, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load decodes TOML bytes into Settings layered on top of Default().
// Fields absent from data keep their default value.
func Load(data []byte) (Settings, error) {
	s := Default()
	if len(data) == 0 {
		return s, nil
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return Default(), &ParseError{Source: "config", Message: err.Error(), Err: err}
	}
	return s, nil
}

// LoadFromReader reads and decodes a config file's entire contents.
func LoadFromReader(r io.Reader) (Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Default(), fmt.Errorf("reading config: %w", err)
	}
	return Load(data)
}

// IdleDurationMillis is the platform event loop's idle tick timeout in
// milliseconds, 1000 when the setting is unset or not positive.
func (s Settings) IdleDurationMillis() int {
	if s.IdleDurationMs <= 0 {
		return 1000
	}
	return s.IdleDurationMs
}
