package recognizer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kumohq/kumo/uri"
)

// ErrNotMatched is returned by Recognize when the walk fails without
// consuming a single segment, meaning no registered pattern shares even the
// first segment with the path.
var ErrNotMatched = errors.New("recognizer: path does not match any pattern")

// ErrPatternConflict is returned by Add when a pattern terminates at a tree
// position already claimed by an earlier pattern. This covers exact
// duplicates as well as structural ones such as two wildcards with different
// names under the same parent.
var ErrPatternConflict = errors.New("recognizer: pattern conflict")

// PartialMatchError is returned by Recognize when the walk consumed at least
// one segment before failing. Candidates holds the index of every value
// reachable below the deepest node the walk reached, in registration order.
type PartialMatchError struct {
	Candidates []int
}

func (e *PartialMatchError) Error() string {
	return fmt.Sprintf("recognizer: path matched no pattern completely (%d candidates)", len(e.Candidates))
}

// Captures holds the byte offsets of capture values within a recognized
// path. Offsets index the exact path string passed to Recognize.
type Captures struct {
	params   [][2]int
	wildcard [2]int
	hasWild  bool
}

// Len returns the number of positional captures.
func (c *Captures) Len() int { return len(c.params) }

// Span returns the half-open byte range of the i-th positional capture.
func (c *Captures) Span(i int) (start, end int) {
	return c.params[i][0], c.params[i][1]
}

// Wildcard returns the byte range absorbed by the wildcard, if one matched.
func (c *Captures) Wildcard() (start, end int, ok bool) {
	if !c.hasWild {
		return 0, 0, false
	}
	return c.wildcard[0], c.wildcard[1], true
}

type node struct {
	// label is the literal segment text. The trailing-slash component is a
	// child with an empty label, which keeps "/users" and "/users/" on
	// distinct nodes.
	label string

	static   []*node
	capture  *node
	wildcard *node

	// value is the index of the value terminating at this node, or -1.
	value int

	// candidates lists every value index reachable at or below this node.
	candidates []int
}

func newNode(label string) *node {
	return &node{label: label, value: -1}
}

func (n *node) findStatic(label string) *node {
	i, ok := slices.BinarySearchFunc(n.static, label, func(child *node, target string) int {
		return strings.Compare(child.label, target)
	})
	if !ok {
		return nil
	}
	return n.static[i]
}

func (n *node) insertStatic(label string) *node {
	i, ok := slices.BinarySearchFunc(n.static, label, func(child *node, target string) int {
		return strings.Compare(child.label, target)
	})
	if ok {
		return n.static[i]
	}
	child := newNode(label)
	n.static = slices.Insert(n.static, i, child)
	return child
}

// Recognizer maps rooted request paths to values of type T through a shared
// segment tree. The zero value is not usable; construct with New. A
// Recognizer is safe for concurrent lookups once all Add calls are done.
type Recognizer[T any] struct {
	root     *node
	values   []T
	patterns []*uri.Pattern
}

// New returns an empty Recognizer.
func New[T any]() *Recognizer[T] {
	return &Recognizer[T]{root: newNode("")}
}

// Len returns the number of registered values.
func (r *Recognizer[T]) Len() int { return len(r.values) }

// At returns the value registered under index i.
func (r *Recognizer[T]) At(i int) T { return r.values[i] }

// PatternAt returns the pattern registered under index i.
func (r *Recognizer[T]) PatternAt(i int) *uri.Pattern { return r.patterns[i] }

// Add registers a value under the given pattern and returns its index.
// Two patterns may share every interior node, but at most one value can
// terminate at any tree position; a second claim yields ErrPatternConflict.
func (r *Recognizer[T]) Add(p *uri.Pattern, value T) (int, error) {
	n := r.root
	trail := []*node{n}

	for _, c := range p.Components() {
		switch c.Kind {
		case uri.KindStatic:
			n = n.insertStatic(c.Value)
		case uri.KindSlash:
			n = n.insertStatic("")
		case uri.KindParam:
			if n.capture == nil {
				n.capture = newNode("")
			}
			n = n.capture
		case uri.KindWildcard:
			if n.wildcard == nil {
				n.wildcard = newNode("")
			}
			n = n.wildcard
		}
		trail = append(trail, n)
	}

	if n.value >= 0 {
		return 0, fmt.Errorf("%w: %q conflicts with %q", ErrPatternConflict, p, r.patterns[n.value])
	}

	index := len(r.values)
	n.value = index
	for _, m := range trail {
		m.candidates = append(m.candidates, index)
	}
	r.values = append(r.values, value)
	r.patterns = append(r.patterns, p)
	return index, nil
}

// Recognize walks the tree for the given rooted path.
//
// On success it returns the matched value and the capture offsets. On
// failure it returns ErrNotMatched or a PartialMatchError, depending on
// whether the walk consumed any segment before stopping.
func (r *Recognizer[T]) Recognize(path string) (T, *Captures, error) {
	var zero T
	if path == "" || path[0] != '/' {
		return zero, nil, ErrNotMatched
	}

	n := r.root
	caps := &Captures{}
	offset := 1

	segments := uri.Segments(path)
	for _, seg := range segments {
		if child := n.findStatic(seg); child != nil {
			n = child
			offset += len(seg) + 1
			continue
		}

		// A capture consumes exactly one non-empty segment.
		if n.capture != nil && seg != "" {
			caps.params = append(caps.params, [2]int{offset, offset + len(seg)})
			n = n.capture
			offset += len(seg) + 1
			continue
		}

		// A wildcard absorbs the rest of the path, empty included. It
		// requires the introducing slash: "/files/*rest" accepts "/files/"
		// but not "/files", which ends one node higher.
		if n.wildcard != nil {
			caps.wildcard = [2]int{offset, len(path)}
			caps.hasWild = true
			n = n.wildcard
			break
		}

		// An unconsumed empty segment is a trailing-slash mismatch: the
		// path names a different resource, not a partial form of one, so
		// no candidates are reported.
		if seg == "" {
			return zero, nil, ErrNotMatched
		}

		return zero, nil, r.miss(n)
	}

	if n.value < 0 {
		// "/" ends at the root while still carrying its slash, so a root
		// wildcard may claim it with an empty remainder.
		if n == r.root && path == "/" && n.wildcard != nil && n.wildcard.value >= 0 {
			caps.wildcard = [2]int{1, 1}
			caps.hasWild = true
			return r.values[n.wildcard.value], caps, nil
		}
		return zero, nil, r.miss(n)
	}
	return r.values[n.value], caps, nil
}

func (r *Recognizer[T]) miss(n *node) error {
	if n == r.root || len(n.candidates) == 0 {
		return ErrNotMatched
	}
	return &PartialMatchError{Candidates: slices.Clone(n.candidates)}
}
