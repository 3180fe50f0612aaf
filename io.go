// FILE: lixenwraith/propbind/io.go
package propbind

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/propbind/source"
)

// Encode writes v in the given format: "toml", "yaml" or "json"
func Encode(w io.Writer, format string, v map[string]any) error {
	switch format {
	case "toml":
		if err := toml.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("failed to marshal config data to TOML: %w", err)
		}
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal config data to JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	return nil
}

// Save writes the subtree under key to path atomically. The format follows
// the file extension and defaults to TOML.
func (c *Config) Save(path, key string) error {
	data, err := c.Export(key)
	if err != nil {
		return err
	}

	format := source.DetectFormat(path)
	if format == "" {
		format = "toml"
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, data); err != nil {
		return err
	}
	return atomicWriteFile(path, buf.Bytes())
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on temporary file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file '%s' to '%s': %w", tempPath, path, err)
	}
	return nil
}
