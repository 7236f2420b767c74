// Package routepath normalizes and joins URL paths for route matching.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Path errors.
var (
	ErrInvalidPercentEscape  = errors.New("routepath: invalid percent escape sequence")
	ErrEncodedSlashInSegment = errors.New("routepath: encoded slash (%2F) in non-catch-all segment")
)

// Join combines path fragments into one absolute path.
// Leading and trailing slashes of each fragment are ignored and empty
// fragments are dropped, so Join() and Join("", "/") both return "/".
//
//	Join("/app/", "/users", "42/") == "/app/users/42"
func Join(paths ...string) string {
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.Trim(p, "/")
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "/"
	}
	return Clean("/" + strings.Join(parts, "/"))
}

// Clean normalizes a path the way a browser does before it reaches the
// router:
//   - Ensure a leading slash
//   - Collapse multiple slashes (/blog//post → /blog/post)
//   - Remove "." segments
//   - Resolve ".." segments, clamping at root (/../a → /a)
//   - Remove the trailing slash (except for root "/")
func Clean(path string) string {
	if path == "" || path == "/" {
		return "/"
	}

	segments := strings.Split(path, "/")
	result := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(result) > 0 {
				result = result[:len(result)-1]
			}
		default:
			result = append(result, seg)
		}
	}

	return "/" + strings.Join(result, "/")
}

// SplitPathAndQuery splits an input into path and query components.
// The query is returned without the leading "?" and any fragment is dropped.
func SplitPathAndQuery(input string) (path, query string) {
	input, _, _ = strings.Cut(input, "#")
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// ValidateEscapes checks that all percent-escapes are valid.
// Valid escapes are %XX where X is a hex digit (0-9, a-f, A-F).
func ValidateEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

// isHexDigit returns true if c is a valid hex digit.
func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment decodes a captured path value.
// For single-segment values, a decoded "/" (an encoded %2F) is rejected so
// a parameter can never smuggle a path separator.
func DecodeSegment(segment string, multiSegment bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !multiSegment && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// HasPrefix reports whether path lies at or below prefix, comparing whole
// segments: "/app/acme" has prefix "/app" but "/apple" does not.
func HasPrefix(path, prefix string) bool {
	path, prefix = Clean(path), Clean(prefix)
	if prefix == "/" || path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
