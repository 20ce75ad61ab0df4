// Package path resolves dotted, bracketed path strings against nested
// state values.
//
// A path addresses one location in a snapshot: `.` descends into a map
// member and `[i]` descends into a slice index, e.g. "todos[2].completed".
// Resolution is deliberately permissive: any path that cannot be parsed or
// followed resolves to nothing rather than failing, which keeps subscription
// bookkeeping for not-yet-existing paths cheap.
package path

import (
	"strconv"
	"strings"
)

// Segment is one step of a parsed path: either a map key or a slice index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Parse splits a path into segments. It returns false for malformed paths:
// empty paths, empty segments, unterminated brackets, or non-numeric
// indices.
func Parse(p string) ([]Segment, bool) {
	if p == "" {
		return nil, false
	}

	var segs []Segment
	rest := p
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			// A dot must be followed by a key segment.
			rest = rest[1:]
			if rest == "" || rest[0] == '.' || rest[0] == '[' {
				return nil, false
			}
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, false
			}
			idx, ok := parseIndex(rest[1:end])
			if !ok {
				return nil, false
			}
			segs = append(segs, Segment{Index: idx, IsIndex: true})
			rest = rest[end+1:]
		default:
			end := len(rest)
			for i := 0; i < len(rest); i++ {
				if rest[i] == '.' || rest[i] == '[' {
					end = i
					break
				}
			}
			segs = append(segs, Segment{Key: rest[:end]})
			rest = rest[end:]
		}
	}

	if len(segs) == 0 {
		return nil, false
	}
	return segs, true
}

// Resolve walks a parsed form of p against root. The second return value is
// false when the path is malformed or any intermediate value is absent,
// nil, or of the wrong shape.
func Resolve(root any, p string) (any, bool) {
	segs, ok := Parse(p)
	if !ok {
		return nil, false
	}
	return ResolveSegments(root, segs)
}

// ResolveSegments walks pre-parsed segments against root.
func ResolveSegments(root any, segs []Segment) (any, bool) {
	current := root
	for _, seg := range segs {
		if current == nil {
			return nil, false
		}
		if seg.IsIndex {
			slice, ok := current.([]any)
			if !ok || seg.Index < 0 || seg.Index >= len(slice) {
				return nil, false
			}
			current = slice[seg.Index]
			continue
		}
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		val, exists := m[seg.Key]
		if !exists {
			return nil, false
		}
		current = val
	}
	return current, true
}

// Join appends a child key to a parent path.
func Join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// JoinIndex appends a slice index to a parent path.
func JoinIndex(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
