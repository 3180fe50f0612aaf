// FILE: lixenwraith/propbind/source/args.go
package source

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/propbind/name"
)

// ParseArgs builds a source from command-line arguments.
// Accepted forms are "--key value", "--key=value" and "--flag" (value "true").
// Non-flag arguments are skipped and values are kept as strings.
func ParseArgs(args []string) (*Map, error) {
	const origin = "command line"

	var props []Property
	seen := make(map[string]int)
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			// Skip non-flag arguments
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// Skip "--" argument if used as a separator
			i++
			continue
		}

		var keyPath string
		var valueStr string

		if strings.Contains(argContent, "=") {
			keyPath, valueStr, _ = strings.Cut(argContent, "=")
			i++
		} else {
			keyPath = argContent
			// Boolean flag when the next arg is another flag or absent
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		if keyPath == "" {
			// Skip invalid flags like --=value
			continue
		}

		n, err := name.Parse(keyPath)
		if err != nil {
			return nil, fmt.Errorf("invalid command-line key %q: %w", keyPath, err)
		}
		prop := Property{Name: n, Value: valueStr, Origin: origin + " --" + keyPath}

		// Later occurrences of a flag override earlier ones
		if idx, exists := seen[n.Key()]; exists {
			props[idx] = prop
			continue
		}
		seen[n.Key()] = len(props)
		props = append(props, prop)
	}

	return newMapFromProperties(origin, props), nil
}
