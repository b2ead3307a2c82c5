package core

import (
	"fmt"
	"strconv"
	"strings"
)

// AppendToken is the final path segment that addresses the position just past
// the end of an array.
const AppendToken = "-"

// Path represents a JSON Pointer (RFC 6901) such as "/group/0/name". The empty
// path addresses the document root.
type Path string

// Key returns the path of the object member key below p.
func (p Path) Key(key string) Path {
	return p + "/" + Path(EscapeKey(key))
}

// Index returns the path of array element i below p.
func (p Path) Index(i int) Path {
	return p + "/" + Path(strconv.Itoa(i))
}

// Append returns the path that appends to the array at p.
func (p Path) Append() Path {
	return p + "/" + AppendToken
}

func (p Path) String() string {
	return string(p)
}

// PathPart is a single reference token. Key always holds the unescaped token;
// Index and IsIndex are set when the token is a canonical array index.
type PathPart struct {
	Key     string
	Index   int
	IsIndex bool
}

// IsAppend reports whether the part is the array append marker.
func (p PathPart) IsAppend() bool {
	return !p.IsIndex && p.Key == AppendToken
}

// ParsePath parses a JSON Pointer. The empty string is the root; any other
// pointer must start with "/".
func ParsePath(path string) ([]PathPart, error) {
	if path == "" {
		return nil, nil
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("invalid JSON pointer %q: must start with /", path)
	}

	tokens := strings.Split(path[1:], "/")
	parts := make([]PathPart, len(tokens))
	for i, token := range tokens {
		token = UnescapeKey(token)
		// Leading zeros and signs are not array indices.
		if idx, err := strconv.Atoi(token); err == nil && idx >= 0 && strconv.Itoa(idx) == token {
			parts[i] = PathPart{Key: token, Index: idx, IsIndex: true}
		} else {
			parts[i] = PathPart{Key: token}
		}
	}
	return parts, nil
}

// EscapeKey escapes a member name for use as a reference token.
func EscapeKey(key string) string {
	key = strings.ReplaceAll(key, "~", "~0")
	key = strings.ReplaceAll(key, "/", "~1")
	return key
}

func UnescapeKey(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token
}
