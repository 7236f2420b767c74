package routepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		path       string
		wantOK     bool
		wantParams map[string]string
	}{
		{name: "static", pattern: "/about", path: "/about", wantOK: true, wantParams: map[string]string{}},
		{name: "static mismatch", pattern: "/about", path: "/about/more", wantOK: false},
		{name: "named", pattern: "/users/:id", path: "/users/42", wantOK: true, wantParams: map[string]string{"id": "42"}},
		{name: "named needs value", pattern: "/users/:id", path: "/users", wantOK: false},
		{name: "named single segment", pattern: "/users/:id", path: "/users/1/2", wantOK: false},
		{name: "two params", pattern: "/u/:id/:name", path: "/u/7/ann", wantOK: true, wantParams: map[string]string{"id": "7", "name": "ann"}},
		{name: "optional present", pattern: "/users/:id?", path: "/users/9", wantOK: true, wantParams: map[string]string{"id": "9"}},
		{name: "optional absent", pattern: "/users/:id?", path: "/users", wantOK: true, wantParams: map[string]string{}},
		{name: "zero or more absent", pattern: "/files/:path*", path: "/files", wantOK: true, wantParams: map[string]string{}},
		{name: "zero or more present", pattern: "/files/:path*", path: "/files/a/b/c", wantOK: true, wantParams: map[string]string{"path": "a/b/c"}},
		{name: "one or more absent", pattern: "/files/:path+", path: "/files", wantOK: false},
		{name: "one or more present", pattern: "/files/:path+", path: "/files/a/b", wantOK: true, wantParams: map[string]string{"path": "a/b"}},
		{name: "custom expression", pattern: `/items/:id(\d+)`, path: "/items/12", wantOK: true, wantParams: map[string]string{"id": "12"}},
		{name: "custom expression mismatch", pattern: `/items/:id(\d+)`, path: "/items/abc", wantOK: false},
		{name: "wildcard", pattern: "/static/*", path: "/static/css/site.css", wantOK: true, wantParams: map[string]string{"0": "css/site.css"}},
		{name: "wildcard needs slash", pattern: "/static/*", path: "/static", wantOK: false},
		{name: "optional trailing slash", pattern: "/docs{/}?", path: "/docs/", wantOK: true, wantParams: map[string]string{}},
		{name: "optional trailing slash absent", pattern: "/docs{/}?", path: "/docs", wantOK: true, wantParams: map[string]string{}},
		{name: "root with slash group", pattern: "/{/}?", path: "/", wantOK: true, wantParams: map[string]string{}},
		{name: "decoded value", pattern: "/tags/:tag", path: "/tags/go%20lang", wantOK: true, wantParams: map[string]string{"tag": "go lang"}},
		{name: "encoded slash kept raw", pattern: "/tags/:tag", path: "/tags/a%2Fb", wantOK: true, wantParams: map[string]string{"tag": "a%2Fb"}},
		{name: "literal dot", pattern: "/a.b", path: "/axb", wantOK: false},
		{name: "non-ASCII literal", pattern: "/한국/:id", path: "/%ED%95%9C%EA%B5%AD/1", wantOK: true, wantParams: map[string]string{"id": "1"}},
		{name: "non-ASCII literal unescaped path", pattern: "/한국", path: "/한국", wantOK: false},
		{name: "space literal", pattern: "/a b", path: "/a%20b", wantOK: true, wantParams: map[string]string{}},
		{name: "escaped literal kept", pattern: "/caf%C3%A9", path: "/caf%C3%A9", wantOK: true, wantParams: map[string]string{}},
		{name: "case sensitive", pattern: "/About", path: "/about", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			require.NoError(t, err)

			params, ok := p.Match(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOK, p.Test(tt.path))
			if tt.wantOK {
				assert.Equal(t, tt.wantParams, params)
			}
		})
	}
}

func TestPatternIgnoreCase(t *testing.T) {
	p := MustCompile("/About/:id", WithIgnoreCase())
	params, ok := p.Match("/about/X")
	require.True(t, ok)
	assert.Equal(t, "X", params["id"], "captured values keep their case")
}

func TestPatternPrefix(t *testing.T) {
	p := MustCompile("/app/:tenant", WithPrefix())

	matched, params, ok := p.MatchPrefix("/app/acme/dashboard")
	require.True(t, ok)
	assert.Equal(t, "/app/acme", matched)
	assert.Equal(t, "acme", params["tenant"])

	matched, _, ok = p.MatchPrefix("/app/acme")
	require.True(t, ok)
	assert.Equal(t, "/app/acme", matched)

	_, _, ok = p.MatchPrefix("/application")
	assert.False(t, ok)
}

func TestCompileErrors(t *testing.T) {
	for _, src := range []string{
		"/users/:",
		"/a/{b",
		`/items/:id(\d+`,
		`/items/:id((\d+))`,
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Compile(src)
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}

	assert.Panics(t, func() { MustCompile("/:") })
}

func TestPatternString(t *testing.T) {
	assert.Equal(t, "/users/:id", MustCompile("/users/:id").String())
}
