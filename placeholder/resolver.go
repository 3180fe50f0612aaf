// FILE: lixenwraith/propbind/placeholder/resolver.go

// Package placeholder resolves ${name} and ${name:default} references inside
// raw property values.
package placeholder

import (
	"fmt"
	"os"
	"strings"

	"github.com/lixenwraith/propbind/name"
	"github.com/lixenwraith/propbind/source"
)

const (
	prefix    = "${"
	suffix    = "}"
	separator = ":"
	escape    = '\\'
)

// Resolver rewrites a raw value before conversion.
type Resolver interface {
	Resolve(value any) (any, error)
}

// None returns every value unchanged.
var None Resolver = noneResolver{}

type noneResolver struct{}

func (noneResolver) Resolve(value any) (any, error) {
	return value, nil
}

// UnresolvableError reports a placeholder that has no value and no default,
// or one that refers back to itself.
type UnresolvableError struct {
	Placeholder string
	Value       string
	Cycle       bool
}

func (e *UnresolvableError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("circular placeholder reference '%s' in value %q", e.Placeholder, e.Value)
	}
	return fmt.Sprintf("could not resolve placeholder '%s' in value %q", e.Placeholder, e.Value)
}

// Options configures a SourcesResolver.
type Options struct {
	// EnvFallback looks up unresolved placeholder text in the process environment
	EnvFallback bool

	// IgnoreUnresolvable leaves unresolved placeholders verbatim instead of failing
	IgnoreUnresolvable bool

	// Lookup replaces os.LookupEnv for the environment fallback
	Lookup func(string) (string, bool)
}

// SourcesResolver resolves placeholders against an ordered list of sources.
// The first source defining a referenced name wins.
type SourcesResolver struct {
	sources []source.Source
	opts    Options
}

// NewSourcesResolver creates a resolver over sources.
func NewSourcesResolver(sources []source.Source, opts Options) *SourcesResolver {
	if opts.EnvFallback && opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}
	return &SourcesResolver{sources: sources, opts: opts}
}

// Resolve replaces placeholders in strings, walking nested maps and slices.
// Other values pass through unchanged.
func (r *SourcesResolver) Resolve(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return r.ResolveString(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			resolved, err := r.Resolve(elem)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			resolved, err := r.Resolve(elem)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

// ResolveString replaces every placeholder in text.
func (r *SourcesResolver) ResolveString(text string) (string, error) {
	if !strings.Contains(text, prefix) {
		return text, nil
	}
	return r.parse(text, make(map[string]bool))
}

func (r *SourcesResolver) parse(text string, visiting map[string]bool) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(text) {
		// \${ emits a literal ${
		if text[i] == escape && strings.HasPrefix(text[i+1:], prefix) {
			b.WriteString(prefix)
			i += 1 + len(prefix)
			continue
		}
		if !strings.HasPrefix(text[i:], prefix) {
			b.WriteByte(text[i])
			i++
			continue
		}

		end := findEnd(text, i+len(prefix))
		if end < 0 {
			// Unterminated placeholders are kept as text
			b.WriteString(text[i:])
			break
		}
		content := text[i+len(prefix) : end]
		resolved, err := r.resolvePlaceholder(text, content, visiting)
		if err != nil {
			return "", err
		}
		b.WriteString(resolved)
		i = end + len(suffix)
	}
	return b.String(), nil
}

func (r *SourcesResolver) resolvePlaceholder(text, content string, visiting map[string]bool) (string, error) {
	keyText, defaultText, hasDefault := splitDefault(content)

	// Keys can themselves contain placeholders
	key, err := r.parse(keyText, visiting)
	if err != nil {
		return "", err
	}

	if visiting[key] {
		return "", &UnresolvableError{Placeholder: key, Value: text, Cycle: true}
	}

	if value, ok := r.lookup(key); ok {
		visiting[key] = true
		resolved, err := r.parse(value, visiting)
		delete(visiting, key)
		return resolved, err
	}

	if hasDefault {
		return r.parse(defaultText, visiting)
	}

	if r.opts.IgnoreUnresolvable {
		return prefix + content + suffix, nil
	}
	return "", &UnresolvableError{Placeholder: key, Value: text}
}

func (r *SourcesResolver) lookup(key string) (string, bool) {
	if n, err := name.Parse(key); err == nil && !n.IsEmpty() {
		for _, src := range r.sources {
			if p, ok := src.Property(n); ok && p.Value != nil {
				return fmt.Sprint(p.Value), true
			}
		}
	}
	if r.opts.EnvFallback {
		return r.opts.Lookup(key)
	}
	return "", false
}

// findEnd returns the index of the suffix closing the placeholder opened
// before start, honoring nested placeholders.
func findEnd(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch {
		case strings.HasPrefix(text[i:], prefix):
			depth++
			i += len(prefix) - 1
		case text[i] == suffix[0]:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// splitDefault cuts content at the first separator outside nested placeholders.
func splitDefault(content string) (string, string, bool) {
	depth := 0
	for i := 0; i < len(content); i++ {
		switch {
		case strings.HasPrefix(content[i:], prefix):
			depth++
			i += len(prefix) - 1
		case content[i] == suffix[0]:
			depth--
		case content[i] == separator[0] && depth == 0:
			return content[:i], content[i+1:], true
		}
	}
	return content, "", false
}
