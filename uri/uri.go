package uri

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Pattern parse errors. Parse wraps them with the offending pattern text, so
// callers match with errors.Is.
var (
	// ErrMissingLeadingSlash is returned when a pattern does not begin
	// with "/".
	ErrMissingLeadingSlash = errors.New("uri: pattern must begin with a slash")

	// ErrEmptySegment is returned when a pattern contains "//" anywhere
	// except as its trailing slash.
	ErrEmptySegment = errors.New("uri: pattern contains an empty segment")

	// ErrEmptyCaptureName is returned when a ":" or "*" marker is not
	// followed by a name.
	ErrEmptyCaptureName = errors.New("uri: capture name must not be empty")

	// ErrDuplicateCaptureName is returned when two captures in one pattern
	// share a name.
	ErrDuplicateCaptureName = errors.New("uri: duplicate capture name")

	// ErrWildcardPosition is returned when a "*name" component is followed
	// by further components.
	ErrWildcardPosition = errors.New("uri: wildcard must be the final component")
)

// ComponentKind identifies how a single pattern component matches.
type ComponentKind int

const (
	// KindStatic matches one segment literally.
	KindStatic ComponentKind = iota

	// KindParam matches exactly one non-empty segment and records it.
	KindParam

	// KindWildcard matches the remaining path, possibly empty.
	KindWildcard

	// KindSlash marks a significant trailing slash.
	KindSlash
)

// Component is one element of a parsed pattern.
type Component struct {
	Kind ComponentKind

	// Value holds the literal text for KindStatic and the capture name for
	// KindParam and KindWildcard. It is empty for KindSlash.
	Value string
}

// Pattern is a parsed, normalized path pattern. The zero value is not usable;
// obtain a Pattern from Parse or Join.
type Pattern struct {
	components []Component
	params     []string
	wildcard   string
	hasWild    bool
	str        string
}

// Parse compiles a pattern string into a Pattern.
//
// The pattern must begin with "/". Segments beginning with ":" declare
// captures, a final segment beginning with "*" declares a wildcard, and a
// trailing "/" is significant. "/" alone is the root pattern.
func Parse(s string) (*Pattern, error) {
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("%w: %q", ErrMissingLeadingSlash, s)
	}

	p := &Pattern{}
	if s == "/" {
		p.str = "/"
		return p, nil
	}

	segments := strings.Split(s[1:], "/")
	for i, seg := range segments {
		if p.hasWild {
			return nil, fmt.Errorf("%w: %q", ErrWildcardPosition, s)
		}

		if seg == "" {
			if i != len(segments)-1 {
				return nil, fmt.Errorf("%w: %q", ErrEmptySegment, s)
			}
			p.components = append(p.components, Component{Kind: KindSlash})
			continue
		}

		switch seg[0] {
		case ':':
			name := seg[1:]
			if name == "" {
				return nil, fmt.Errorf("%w: %q", ErrEmptyCaptureName, s)
			}
			if p.hasName(name) {
				return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateCaptureName, name, s)
			}
			p.components = append(p.components, Component{Kind: KindParam, Value: name})
			p.params = append(p.params, name)

		case '*':
			name := seg[1:]
			if name == "" {
				return nil, fmt.Errorf("%w: %q", ErrEmptyCaptureName, s)
			}
			if p.hasName(name) {
				return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateCaptureName, name, s)
			}
			p.components = append(p.components, Component{Kind: KindWildcard, Value: name})
			p.wildcard = name
			p.hasWild = true

		default:
			p.components = append(p.components, Component{Kind: KindStatic, Value: seg})
		}
	}

	p.str = render(p.components)
	return p, nil
}

// Root returns the root pattern "/".
func Root() *Pattern {
	return &Pattern{str: "/"}
}

func (p *Pattern) hasName(name string) bool {
	return slices.Contains(p.params, name) || (p.hasWild && p.wildcard == name)
}

// String returns the normalized textual form of the pattern.
func (p *Pattern) String() string { return p.str }

// IsRoot reports whether the pattern is "/".
func (p *Pattern) IsRoot() bool { return len(p.components) == 0 }

// Components returns a copy of the pattern's components in match order.
func (p *Pattern) Components() []Component {
	return slices.Clone(p.components)
}

// Params returns the capture names in positional order, excluding the
// wildcard.
func (p *Pattern) Params() []string {
	return slices.Clone(p.params)
}

// Wildcard returns the wildcard capture name, if the pattern has one.
func (p *Pattern) Wildcard() (string, bool) {
	return p.wildcard, p.hasWild
}

// HasTrailingSlash reports whether the pattern ends with a significant
// trailing slash.
func (p *Pattern) HasTrailingSlash() bool {
	n := len(p.components)
	return n > 0 && p.components[n-1].Kind == KindSlash
}

// Join concatenates a prefix pattern with a suffix pattern, as when a route
// is registered under a mount prefix.
//
// The prefix must not contain a wildcard, since no suffix component could be
// reached behind one; such prefixes yield ErrWildcardPosition. A trailing
// slash on the prefix is dropped in favour of the suffix's own components,
// and capture names must remain unique across the joined pattern.
func Join(prefix, suffix *Pattern) (*Pattern, error) {
	if prefix.hasWild {
		return nil, fmt.Errorf("%w: prefix %q", ErrWildcardPosition, prefix)
	}
	if prefix.IsRoot() {
		return clone(suffix), nil
	}
	if suffix.IsRoot() {
		return clone(prefix), nil
	}

	head := prefix.components
	if prefix.HasTrailingSlash() {
		head = head[:len(head)-1]
	}

	joined := &Pattern{
		components: slices.Concat(head, suffix.components),
		params:     slices.Clone(prefix.params),
		wildcard:   suffix.wildcard,
		hasWild:    suffix.hasWild,
	}
	for _, name := range suffix.params {
		if joined.hasName(name) {
			return nil, fmt.Errorf("%w: %q joining %q and %q", ErrDuplicateCaptureName, name, prefix, suffix)
		}
		joined.params = append(joined.params, name)
	}
	if suffix.hasWild && slices.Contains(prefix.params, suffix.wildcard) {
		return nil, fmt.Errorf("%w: %q joining %q and %q", ErrDuplicateCaptureName, suffix.wildcard, prefix, suffix)
	}

	joined.str = render(joined.components)
	return joined, nil
}

// Segments splits a rooted request path into its segments. The root path
// yields no segments, and a trailing slash yields a final empty segment, so
// "/users" and "/users/" stay distinct. Paths without a leading slash yield
// nil; callers validate rootedness before matching.
func Segments(path string) []string {
	if len(path) < 2 || path[0] != '/' {
		return nil
	}
	return strings.Split(path[1:], "/")
}

// IsPrefixOf reports whether the pattern matches the leading segments of the
// given rooted request path. The root pattern is a prefix of every path.
// Matching is segment-wise, so "/api" is a prefix of "/api/users" but not of
// "/apiv2".
func (p *Pattern) IsPrefixOf(path string) bool {
	if !strings.HasPrefix(path, "/") {
		return false
	}
	if p.IsRoot() {
		return true
	}

	segs := Segments(path)
	i := 0
	for _, c := range p.components {
		switch c.Kind {
		case KindStatic:
			if i >= len(segs) || segs[i] != c.Value {
				return false
			}
			i++

		case KindParam:
			if i >= len(segs) || segs[i] == "" {
				return false
			}
			i++

		case KindWildcard:
			return true

		case KindSlash:
			// Segments encode separators implicitly: a further entry,
			// including the trailing empty one, means the slash is present.
			return i < len(segs)
		}
	}
	return true
}

func clone(p *Pattern) *Pattern {
	return &Pattern{
		components: slices.Clone(p.components),
		params:     slices.Clone(p.params),
		wildcard:   p.wildcard,
		hasWild:    p.hasWild,
		str:        p.str,
	}
}

func render(components []Component) string {
	if len(components) == 0 {
		return "/"
	}

	var b strings.Builder
	for _, c := range components {
		switch c.Kind {
		case KindStatic:
			b.WriteByte('/')
			b.WriteString(c.Value)
		case KindParam:
			b.WriteByte('/')
			b.WriteByte(':')
			b.WriteString(c.Value)
		case KindWildcard:
			b.WriteByte('/')
			b.WriteByte('*')
			b.WriteString(c.Value)
		case KindSlash:
			b.WriteByte('/')
		}
	}
	return b.String()
}
