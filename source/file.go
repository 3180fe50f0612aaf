// FILE: lixenwraith/propbind/source/file.go
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned when a configuration file does not exist
	ErrNotFound = errors.New("configuration file not found")
	// ErrValueSize is returned when a value or file exceeds its size limit
	ErrValueSize = errors.New("value size exceeds limit")
)

// DefaultMaxFileSize caps configuration file reads.
const DefaultMaxFileSize int64 = 10 << 20

// FileOptions controls file parsing.
type FileOptions struct {
	// Format is "toml", "json", "yaml" or "" / "auto" for detection
	Format string

	// MaxFileSize limits the bytes read (0 = DefaultMaxFileSize)
	MaxFileSize int64
}

// ParseFile reads and parses a configuration file into a Map source.
func ParseFile(path string, opts FileOptions) (*Map, error) {
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}
	if fileInfo.Size() > maxSize {
		return nil, fmt.Errorf("config file '%s' exceeds maximum size %d bytes: %w", path, maxSize, ErrValueSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	format := opts.Format
	if format == "" || format == "auto" {
		format = DetectFormat(path)
		if format == "" {
			format = detectFormatFromContent(data)
		}
	}

	return Parse(data, format, "file "+path)
}

// Parse decodes data in the given format and flattens it into a Map source.
func Parse(data []byte, format, origin string) (*Map, error) {
	nested := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse TOML from %s: %w", origin, err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&nested); err != nil {
			return nil, fmt.Errorf("failed to parse JSON from %s: %w", origin, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse YAML from %s: %w", origin, err)
		}
	default:
		return nil, fmt.Errorf("unable to determine config format for %s", origin)
	}

	return NewMap(origin, nested)
}

// DetectFormat determines format from file extension.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// TOML before YAML, plain "key = value" lines are valid YAML scalars
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	return ""
}
