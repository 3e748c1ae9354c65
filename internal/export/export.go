// Package export writes a todo collection in a portable format.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/tada/internal/model"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

var Formats = []string{FormatJSON, FormatYAML, FormatTOML}

var ErrUnknownFormat = errors.New("unknown export format")

// document is the top-level shape for formats that need a table at the root.
type document struct {
	Todos model.Collection `yaml:"todos" toml:"todos"`
}

// ParseFormat normalizes a format name; "yml" is accepted for yaml.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, s, strings.Join(Formats, ", "))
}

// Write encodes items to w. JSON output is the same array the store keeps;
// YAML and TOML wrap it in a "todos" key.
func Write(w io.Writer, format string, items model.Collection) error {
	if items == nil {
		items = model.Collection{}
	}
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(document{Todos: items}); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(document{Todos: items}); err != nil {
			return fmt.Errorf("toml encode: %w", err)
		}
	}
	return nil
}
