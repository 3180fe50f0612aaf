// FILE: lixenwraith/propbind/name/name.go

// Package name implements hierarchical configuration property names.
//
// A Name is an ordered list of elements such as "server.ports[0]" or
// "app.labels[team.name]". Each element keeps its original text, used to
// rebuild map keys verbatim, and a canonical form used for every comparison.
package name

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Form selects which representation of an element is returned.
type Form int

const (
	// Original is the element text as written, without index brackets
	Original Form = iota
	// Canonical is the normalized text used for equality
	Canonical
)

// keySeparator joins canonical elements in Key; it cannot appear in parsed text.
const keySeparator = "\x00"

type element struct {
	original  string
	canonical string
	indexed   bool
}

// Name is an immutable hierarchical property name.
type Name struct {
	elements []element
}

// Empty is the name with no elements, the root of every source.
var Empty = Name{}

// SyntaxError reports malformed name text.
type SyntaxError struct {
	Text   string
	Pos    int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid property name %q at position %d: %s", e.Text, e.Pos, e.Reason)
}

// Parse splits text on '.' and index brackets.
// "a.b[0].c" yields the elements a, b, 0 (indexed), c.
func Parse(text string) (Name, error) {
	if text == "" {
		return Empty, nil
	}

	var elems []element
	n := len(text)
	i := 0
	for i < n {
		switch text[i] {
		case '[':
			end := strings.IndexByte(text[i+1:], ']')
			if end < 0 {
				return Empty, &SyntaxError{Text: text, Pos: i, Reason: "unterminated index"}
			}
			content := text[i+1 : i+1+end]
			if content == "" {
				return Empty, &SyntaxError{Text: text, Pos: i, Reason: "empty index"}
			}
			elems = append(elems, newIndexed(content))
			i += end + 2
			if i < n && text[i] != '.' && text[i] != '[' {
				return Empty, &SyntaxError{Text: text, Pos: i, Reason: "expected '.' or '[' after index"}
			}
		case ']':
			return Empty, &SyntaxError{Text: text, Pos: i, Reason: "unexpected ']'"}
		case '.':
			return Empty, &SyntaxError{Text: text, Pos: i, Reason: "empty element"}
		default:
			j := i
			for j < n && text[j] != '.' && text[j] != '[' && text[j] != ']' {
				j++
			}
			segment := text[i:j]
			if pos := invalidChar(segment); pos >= 0 {
				return Empty, &SyntaxError{Text: text, Pos: i + pos, Reason: fmt.Sprintf("invalid character %q", segment[pos])}
			}
			if !hasAlnum(segment) {
				return Empty, &SyntaxError{Text: text, Pos: i, Reason: "element has no letters or digits"}
			}
			elems = append(elems, newElement(segment))
			i = j
		}

		// A separating dot must be followed by another element
		if i < n && text[i] == '.' {
			i++
			if i == n {
				return Empty, &SyntaxError{Text: text, Pos: i - 1, Reason: "trailing '.'"}
			}
			if text[i] == '.' || text[i] == '[' || text[i] == ']' {
				return Empty, &SyntaxError{Text: text, Pos: i, Reason: "empty element"}
			}
		}
	}

	return Name{elements: elems}, nil
}

// MustParse is like Parse but panics on malformed text.
func MustParse(text string) Name {
	n, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return n
}

// Adapt leniently converts text split by separator into a name.
// Empty parts are dropped and all-digit parts become indexed elements.
// It never fails and is meant for environment-style names.
func Adapt(text string, separator string) Name {
	var elems []element
	for _, part := range strings.Split(text, separator) {
		if part == "" {
			continue
		}
		if isDigits(part) {
			elems = append(elems, newIndexed(part))
		} else {
			elems = append(elems, newElement(part))
		}
	}
	return Name{elements: elems}
}

func newElement(text string) element {
	return element{original: text, canonical: canonicalize(text)}
}

func newIndexed(text string) element {
	return element{original: text, canonical: text, indexed: true}
}

// canonicalize lower-cases text and drops '-' and '_'.
func canonicalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '-' || r == '_' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func invalidChar(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !(isLetter || isDigit || c == '-' || c == '_') {
			return i
		}
	}
	return -1
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if r != '-' && r != '_' {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Len returns the number of elements.
func (n Name) Len() int {
	return len(n.elements)
}

// IsEmpty reports whether the name has no elements.
func (n Name) IsEmpty() bool {
	return len(n.elements) == 0
}

// Element returns element i in the requested form.
func (n Name) Element(i int, form Form) string {
	if form == Canonical {
		return n.elements[i].canonical
	}
	return n.elements[i].original
}

// LastElement returns the final element, or "" for the empty name.
func (n Name) LastElement(form Form) string {
	if n.IsEmpty() {
		return ""
	}
	return n.Element(len(n.elements)-1, form)
}

// IsIndexed reports whether element i was written in brackets.
func (n Name) IsIndexed(i int) bool {
	return n.elements[i].indexed
}

// IsNumericIndex reports whether element i is a non-negative integer literal.
func (n Name) IsNumericIndex(i int) bool {
	return isDigits(n.elements[i].original)
}

// IsLastElementIndexed reports whether the final element is bracketed or numeric.
func (n Name) IsLastElementIndexed() bool {
	if n.IsEmpty() {
		return false
	}
	last := len(n.elements) - 1
	return n.IsIndexed(last) || n.IsNumericIndex(last)
}

// Chop returns the first size elements.
func (n Name) Chop(size int) Name {
	if size >= len(n.elements) {
		return n
	}
	if size <= 0 {
		return Empty
	}
	return Name{elements: n.elements[:size:size]}
}

// Append returns a new name with a plain element added.
func (n Name) Append(elem string) Name {
	return n.with(newElement(elem))
}

// AppendIndex returns a new name with a numeric index added.
func (n Name) AppendIndex(index int) Name {
	return n.with(newIndexed(strconv.Itoa(index)))
}

// AppendKey returns a new name with a bracketed key added.
func (n Name) AppendKey(key string) Name {
	return n.with(newIndexed(key))
}

func (n Name) with(e element) Name {
	elems := make([]element, len(n.elements), len(n.elements)+1)
	copy(elems, n.elements)
	return Name{elements: append(elems, e)}
}

// Equal compares canonical forms.
func (n Name) Equal(other Name) bool {
	if len(n.elements) != len(other.elements) {
		return false
	}
	return n.hasPrefix(other, len(n.elements))
}

// IsParentOf reports whether other is an immediate child of n.
func (n Name) IsParentOf(other Name) bool {
	return len(other.elements) == len(n.elements)+1 && other.hasPrefix(n, len(n.elements))
}

// IsAncestorOf reports whether other is a strict descendant of n at any depth.
func (n Name) IsAncestorOf(other Name) bool {
	return len(other.elements) > len(n.elements) && other.hasPrefix(n, len(n.elements))
}

func (n Name) hasPrefix(prefix Name, size int) bool {
	for i := 0; i < size; i++ {
		if n.elements[i].canonical != prefix.elements[i].canonical {
			return false
		}
	}
	return true
}

// KeyString joins the original forms of elements from index from with '.'.
// It turns a multi-element remainder into one flattened map key.
func (n Name) KeyString(from int) string {
	var b strings.Builder
	for i := from; i < len(n.elements); i++ {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(n.elements[i].original)
	}
	return b.String()
}

// Key returns the canonical identity of the name, suitable as a Go map key.
func (n Name) Key() string {
	parts := make([]string, len(n.elements))
	for i, e := range n.elements {
		parts[i] = e.canonical
	}
	return strings.Join(parts, keySeparator)
}

// String renders the name in dotted form with bracketed indices.
func (n Name) String() string {
	var b strings.Builder
	for i, e := range n.elements {
		if e.indexed {
			b.WriteByte('[')
			b.WriteString(e.original)
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(e.original)
	}
	return b.String()
}

// Dashed converts a Go identifier to its dashed property form.
// "MaxConns" becomes "max-conns" and "HTTPPort" becomes "http-port".
func Dashed(identifier string) string {
	runes := []rune(identifier)
	var b strings.Builder
	for i, r := range runes {
		if r == '_' || r == '-' {
			if b.Len() > 0 {
				b.WriteByte('-')
			}
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if (unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower)) &&
				!strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Trim(b.String(), "-")
}
