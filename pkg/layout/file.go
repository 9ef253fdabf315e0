package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/signboard/pkg/errors"
)

// File formats for layout files.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// FormatForPath infers the layout file format from a file extension.
// Anything that is not .toml is treated as JSON.
func FormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// Validate checks the hard invariants of a configuration: every instance
// has a well-formed, unique id and a non-empty type. Geometry is not
// checked here (see CheckBounds).
func Validate(c DisplayConfig) error {
	seen := make(map[string]bool, len(c.Layout))
	for _, inst := range c.Layout {
		if err := errors.ValidateID(inst.ID); err != nil {
			return err
		}
		if seen[inst.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate instance id %q", inst.ID)
		}
		seen[inst.ID] = true
		if inst.Type == "" {
			return errors.New(errors.ErrCodeInvalidInput, "instance %q has no type", inst.ID)
		}
	}
	return nil
}

// Read decodes a layout in the given format and fills in defaults for
// missing fields.
func Read(r io.Reader, format string) (DisplayConfig, error) {
	var c DisplayConfig
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&c); err != nil {
			return DisplayConfig{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse toml layout")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&c); err != nil {
			return DisplayConfig{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse json layout")
		}
	default:
		return DisplayConfig{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported layout format %q", format)
	}
	c = withDefaults(c)
	if err := Validate(c); err != nil {
		return DisplayConfig{}, err
	}
	return c, nil
}

// Write encodes c in the given format.
func Write(c DisplayConfig, w io.Writer, format string) error {
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(c); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported layout format %q", format)
}

// ReadFile reads a layout file, inferring the format from its extension.
func ReadFile(path string) (DisplayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DisplayConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Read(bytes.NewReader(data), FormatForPath(path))
}

// WriteFile writes a layout file, inferring the format from its extension.
func WriteFile(c DisplayConfig, path string) error {
	var buf bytes.Buffer
	if err := Write(c, &buf, FormatForPath(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// withDefaults fills missing theme colors and normalizes instance configs
// so that values read from TOML (int64) compare equal to values decoded
// from a token (float64).
func withDefaults(c DisplayConfig) DisplayConfig {
	if c.Theme.Background == "" {
		c.Theme.Background = DefaultTheme.Background
	}
	if c.Theme.Primary == "" {
		c.Theme.Primary = DefaultTheme.Primary
	}
	if c.Theme.Accent == "" {
		c.Theme.Accent = DefaultTheme.Accent
	}
	return c.Clone()
}
