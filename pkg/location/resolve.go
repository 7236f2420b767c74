// Package location resolves navigation inputs into canonical navigation
// contexts.
//
// Inputs are classified by prefix, in order:
//
//	https://host/path   absolute URL, parsed as is
//	/path               absolute path, resolved against the current origin
//	?query              appended to the current pathname
//	#hash               appended to the current pathname and query
//	path                relative, joined to the (captured) base prefix
//
// A base prefix may contain pattern variables. CaptureBase instantiates it
// against the current pathname, so /app/:tenant on /app/acme/dashboard
// becomes /app/acme.
package location

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/vango-dev/wayfinder/pkg/routepath"
)

// ErrInvalidURL is returned for malformed absolute URLs.
var ErrInvalidURL = errors.New("location: invalid URL")

// DefaultOrigin is used when no current location is known.
const DefaultOrigin = "http://localhost"

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Resolve normalizes input against basePrefix and the current location.
// current may be nil, in which case DefaultOrigin and "/" are assumed.
func Resolve(input, basePrefix string, current *url.URL) (*Context, error) {
	if current == nil {
		current = defaultLocation()
	}
	base := CaptureBase(basePrefix, current.EscapedPath())

	path, _ := routepath.SplitPathAndQuery(input)
	if err := routepath.ValidateEscapes(path); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidURL, input, err)
	}

	var (
		target *url.URL
		err    error
	)
	switch {
	case schemeRe.MatchString(input):
		target, err = url.Parse(input)
		if err == nil && target.Host == "" {
			err = errors.New("missing host")
		}

	case strings.HasPrefix(input, "/"):
		target, err = resolveReference(current, input)

	case strings.HasPrefix(input, "?"):
		target, err = resolveReference(current, escapedPathname(current)+input)

	case strings.HasPrefix(input, "#"):
		target, err = resolveReference(current, escapedPathname(current)+search(current)+input)

	default:
		path, rest := splitSuffix(input)
		target, err = resolveReference(current, routepath.Join(base, path)+rest)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, input, err)
	}

	return newContext(target, base), nil
}

// CaptureBase returns the concrete instantiation of a base template within
// pathname. A template that does not match pathname is returned literally.
func CaptureBase(template, pathname string) string {
	template = routepath.Clean(template)
	if template == "/" {
		return template
	}

	p, err := routepath.Compile(template, routepath.WithPrefix())
	if err != nil {
		return template
	}
	if matched, _, ok := p.MatchPrefix(routepath.Clean(pathname)); ok {
		return routepath.Clean(matched)
	}
	return template
}

// IsExternal reports whether href leaves the application at origin:
// mailto:, tel: and javascript: links, protocol-relative URLs, non-HTTP
// network schemes and URLs on another origin.
func IsExternal(href, origin string) bool {
	href = strings.TrimSpace(href)
	if href == "" {
		return false
	}

	lower := strings.ToLower(href)
	for _, scheme := range []string{"mailto:", "tel:", "javascript:"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	if strings.HasPrefix(href, "//") {
		return true
	}

	base, err := url.Parse(origin)
	if err != nil || base.Host == "" {
		base, _ = url.Parse(DefaultOrigin)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return false
	}
	parsed := base.ResolveReference(ref)

	switch strings.ToLower(parsed.Scheme) {
	case "ftp", "ftps", "ws", "wss":
		return true
	}
	return parsed.Scheme != base.Scheme || parsed.Host != base.Host
}

func newContext(u *url.URL, base string) *Context {
	origin := u.Scheme + "://" + u.Host
	pathname := routepath.Clean(u.EscapedPath())

	var rest strings.Builder
	if u.RawQuery != "" {
		rest.WriteString("?")
		rest.WriteString(u.RawQuery)
	}
	hash := ""
	if u.Fragment != "" {
		hash = "#" + u.EscapedFragment()
		rest.WriteString(hash)
	}

	path := pathname + rest.String()
	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		query = url.Values{}
	}

	return &Context{
		Href:       origin + path,
		Origin:     origin,
		BasePrefix: base,
		Path:       path,
		Pathname:   pathname,
		Query:      query,
		Hash:       hash,
		Params:     map[string]string{},
	}
}

func resolveReference(current *url.URL, ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	origin := &url.URL{Scheme: current.Scheme, Host: current.Host, Path: "/"}
	return origin.ResolveReference(u), nil
}

func escapedPathname(u *url.URL) string {
	if p := u.EscapedPath(); p != "" {
		return p
	}
	return "/"
}

func search(u *url.URL) string {
	if u.RawQuery == "" {
		return ""
	}
	return "?" + u.RawQuery
}

// splitSuffix separates a relative href into its path and its ?query#hash.
func splitSuffix(input string) (path, rest string) {
	if i := strings.IndexAny(input, "?#"); i >= 0 {
		return input[:i], input[i:]
	}
	return input, ""
}

func defaultLocation() *url.URL {
	u, _ := url.Parse(DefaultOrigin + "/")
	return u
}
