package routepath

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidPattern is returned when a path template cannot be compiled.
var ErrInvalidPattern = errors.New("routepath: invalid pattern")

// Pattern is a compiled path template.
//
// Supported syntax (a subset of the URLPattern pathname grammar):
//
//	/users/:id          named segment
//	/users/:id?         optional segment (the leading "/" is optional too)
//	/files/:path*       zero or more segments
//	/files/:path+       one or more segments
//	/items/:id(\d+)     named segment with a custom expression
//	/static/*           anonymous wildcard, exposed as "0", "1", ...
//	/docs{/}?           optional group
type Pattern struct {
	source string
	re     *regexp.Regexp
	names  []string // capture group index-1 → param name
	multi  []bool   // capture spans several segments
	anon   int      // anonymous wildcards seen so far
	prefix bool
}

// PatternOption configures pattern compilation.
type PatternOption func(*patternOptions)

type patternOptions struct {
	ignoreCase bool
	prefix     bool
}

// WithIgnoreCase matches literals case-insensitively.
func WithIgnoreCase() PatternOption {
	return func(o *patternOptions) {
		o.ignoreCase = true
	}
}

// WithPrefix lets the pattern match a leading part of a path that ends on a
// segment boundary. MatchPrefix reports the matched part.
func WithPrefix() PatternOption {
	return func(o *patternOptions) {
		o.prefix = true
	}
}

// Compile compiles a path template.
func Compile(template string, opts ...PatternOption) (*Pattern, error) {
	var options patternOptions
	for _, opt := range opts {
		opt(&options)
	}

	p := &Pattern{source: template, prefix: options.prefix}
	body, err := p.translate(template)
	if err != nil {
		return nil, err
	}

	var expr strings.Builder
	if options.ignoreCase {
		expr.WriteString("(?i)")
	}
	expr.WriteString("^(")
	expr.WriteString(body)
	expr.WriteString(")")
	if options.prefix {
		expr.WriteString("(?:/.*)?")
	}
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, template, err)
	}
	p.re = re
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(template string, opts ...PatternOption) *Pattern {
	p, err := Compile(template, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source template.
func (p *Pattern) String() string {
	return p.source
}

// Test reports whether path matches the pattern.
func (p *Pattern) Test(path string) bool {
	return p.re.MatchString(path)
}

// Match matches path and returns the captured params.
// Captures that did not participate in the match are omitted. Values are
// percent-decoded; a value that fails to decode is kept as captured.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	_, params, ok := p.MatchPrefix(path)
	return params, ok
}

// MatchPrefix is like Match and also returns the part of path matched by
// the template itself. Without WithPrefix this is the whole path.
func (p *Pattern) MatchPrefix(path string) (string, map[string]string, bool) {
	m := p.re.FindStringSubmatchIndex(path)
	if m == nil {
		return "", nil, false
	}

	params := make(map[string]string, len(p.names))
	// Group 1 wraps the whole template; user captures start at group 2.
	for i, name := range p.names {
		start, end := m[2*(i+2)], m[2*(i+2)+1]
		if start < 0 {
			continue
		}
		raw := path[start:end]
		if decoded, err := DecodeSegment(raw, p.multi[i]); err == nil {
			raw = decoded
		}
		params[name] = raw
	}
	return path[m[2]:m[3]], params, true
}

const segmentExpr = `[^/]+`

// translate converts the template into a regular expression body.
func (p *Pattern) translate(src string) (string, error) {
	var out strings.Builder

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ':':
			j := i + 1
			for j < len(src) && isNameChar(src[j], j == i+1) {
				j++
			}
			if j == i+1 {
				return "", fmt.Errorf("%w %q: missing parameter name at %d", ErrInvalidPattern, src, i)
			}
			name := src[i+1 : j]

			inner := segmentExpr
			if j < len(src) && src[j] == '(' {
				custom, end, err := balanced(src, j, '(', ')')
				if err != nil {
					return "", err
				}
				if sub, err := regexp.Compile(custom); err != nil || sub.NumSubexp() > 0 {
					return "", fmt.Errorf("%w %q: parameter %q needs a valid expression without capture groups", ErrInvalidPattern, src, name)
				}
				inner = custom
				j = end
			}

			modifier := byte(0)
			if j < len(src) && (src[j] == '?' || src[j] == '*' || src[j] == '+') {
				modifier = src[j]
				j++
			}

			p.writeParam(&out, name, inner, modifier)
			i = j

		case c == '*':
			p.names = append(p.names, fmt.Sprint(p.anon))
			p.multi = append(p.multi, true)
			p.anon++
			out.WriteString("(.*)")
			i++

		case c == '{':
			group, end, err := balanced(src, i, '{', '}')
			if err != nil {
				return "", err
			}
			body, err := p.translate(group)
			if err != nil {
				return "", err
			}
			out.WriteString("(?:")
			out.WriteString(body)
			out.WriteString(")")
			if end < len(src) && (src[end] == '?' || src[end] == '*' || src[end] == '+') {
				out.WriteByte(src[end])
				end++
			}
			i = end

		default:
			j := i + 1
			for j < len(src) && !isSyntax(src[j]) {
				j++
			}
			out.WriteString(regexp.QuoteMeta(escapeLiteral(src[i:j])))
			i = j
		}
	}

	return out.String(), nil
}

// writeParam emits a named capture. With a modifier the preceding "/" is
// folded into the optional or repeated part, as URLPattern does.
func (p *Pattern) writeParam(out *strings.Builder, name, inner string, modifier byte) {
	p.names = append(p.names, name)
	p.multi = append(p.multi, modifier == '*' || modifier == '+')

	if modifier == 0 {
		out.WriteString("(" + inner + ")")
		return
	}

	body := out.String()
	hasSlash := strings.HasSuffix(body, "/")
	if hasSlash {
		out.Reset()
		out.WriteString(strings.TrimSuffix(body, "/"))
	}
	slash := ""
	if hasSlash {
		slash = "/"
	}

	repeated := "(?:" + inner + ")(?:/(?:" + inner + "))*"
	switch modifier {
	case '?':
		out.WriteString("(?:" + slash + "(" + inner + "))?")
	case '*':
		out.WriteString("(?:" + slash + "(" + repeated + "))?")
	case '+':
		out.WriteString(slash + "(" + repeated + ")")
	}
}

// balanced returns the contents of the group opening at src[start] and the
// index just past its closing delimiter.
func balanced(src string, start int, open, closing byte) (string, int, error) {
	depth := 0
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return src[start+1 : i], i + 1, nil
			}
		}
	}
	return "", 0, fmt.Errorf("%w %q: unbalanced %q", ErrInvalidPattern, src, open)
}

func isSyntax(c byte) bool {
	return c == ':' || c == '*' || c == '{'
}

// escapeLiteral percent-encodes literal template text the way URL paths are
// encoded, since patterns are matched against escaped pathnames. Text that
// is already escaped is kept.
func escapeLiteral(lit string) string {
	if unescaped, err := url.PathUnescape(lit); err == nil {
		lit = unescaped
	}
	return (&url.URL{Path: lit}).EscapedPath()
}

func isNameChar(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}
