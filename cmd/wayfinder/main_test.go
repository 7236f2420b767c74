package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/wayfinder/internal/config"
)

const testSite = `name: Docs
basePrefix: /docs
routes:
  - path: /
    title: Docs
    html: '<nav>menu</nav>{{outlet}}'
    children:
      - index: true
        text: welcome
      - path: guides/:slug
        title: Guide
        markdown: "# Guide"
fallback:
  text: oops
`

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.YAMLFileName), []byte(testSite), 0644))
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, _, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Go version:")
}

func TestResolve(t *testing.T) {
	out, _, err := run(t, "resolve", "b?x=1#top", "--from", "http://localhost/app/acme/a/x", "--base", "/app/:tenant", "--json")
	require.NoError(t, err)

	var got resolved
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "/app/acme", got.BasePrefix)
	assert.Equal(t, "/app/acme/b", got.Pathname)
	assert.Equal(t, []string{"1"}, got.Query["x"])
	assert.Equal(t, "#top", got.Hash)
	assert.False(t, got.External)

	out, _, err = run(t, "resolve", "guides", "--base", "/docs", "--from", "http://localhost/docs/")
	require.NoError(t, err)
	assert.Contains(t, out, "pathname:   /docs/guides\n")

	out, _, err = run(t, "resolve", "/guides", "--base", "/docs")
	require.NoError(t, err)
	assert.Contains(t, out, "pathname:   /guides\n", "root-relative hrefs ignore the base")

	_, _, err = run(t, "resolve")
	assert.Error(t, err, "href is required")
}

func TestMatch(t *testing.T) {
	dir := writeSite(t)

	out, _, err := run(t, "match", "/docs/guides/intro", "--config", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "/docs{/}? title=\"Docs\"\n  /docs/guides/:slug{/}? title=\"Guide\" force\nparam slug=intro\n", out)

	out, _, err = run(t, "match", "--tree", "--config", filepath.Join(dir, config.YAMLFileName))
	require.NoError(t, err)
	assert.Contains(t, out, "  /docs{/}? [index] force\n")

	dup := filepath.Join(t.TempDir(), "dup.toml")
	require.NoError(t, os.WriteFile(dup, []byte("[[routes]]\npath = \"/a\"\n[[routes]]\nid = \"again\"\npath = \"/a/\"\n"), 0644))
	_, stderr, err := run(t, "match", "--tree", "--config", dup)
	require.NoError(t, err)
	assert.Contains(t, stderr, `warning: route "again" (/a{/}?) is shadowed by`)

	_, stderr, err = run(t, "match", "/elsewhere", "--config", dir, "--no-color")
	require.Error(t, err)
	assert.Contains(t, stderr, "ERROR 404: Page not found: /elsewhere")

	_, _, err = run(t, "match", "--config", dir)
	assert.Error(t, err)

	_, _, err = run(t, "match", "/", "--config", filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, config.ErrNotFound)
}

func TestGo(t *testing.T) {
	dir := writeSite(t)

	out, _, err := run(t, "go", "/docs/", "/docs/guides/a", "--config", dir, "--events", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "/docs/ done")
	assert.Contains(t, out, "/docs/guides/a done")
	assert.Contains(t, out, "navigation-begin token=1 /docs\n")
	assert.Contains(t, out, "navigation-done token=2 /docs/guides/a")
	assert.Contains(t, out, "title: Guide")
	assert.Contains(t, out, `<main id="app">`)
	assert.Contains(t, out, "<h1")

	out, stderr, err := run(t, "go", "/docs/nope/x", "--config", dir, "--no-color", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, out, "/docs/nope/x failed")
	assert.Contains(t, out, "oops")
	assert.Contains(t, stderr, "ERROR 404")

	out, _, err = run(t, "go", "/docs/", "--document", "--config", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>Docs</title>")
}

func testSiteLoaded(t *testing.T, inspect bool) *site {
	t.Helper()
	cfg, err := config.Load(writeSite(t))
	require.NoError(t, err)
	cfg.Serve.Inspect = inspect
	return &site{cfg: cfg, log: slog.New(slog.NewTextHandler(io.Discard, nil)), flush: func() {}}
}

func TestServeRendersPages(t *testing.T) {
	h, cleanup, err := newHandler(testSiteLoaded(t, false))
	require.NoError(t, err)
	defer cleanup()
	ts := httptest.NewServer(h)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/docs/guides/x")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "<title>Guide</title>")
	assert.Contains(t, string(body), "menu")

	resp, err = http.Get(ts.URL + "/docs/missing/page")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "oops")

	resp, err = http.Get(ts.URL + "/_wayfinder/current")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no inspection routes without --inspect")
}

func TestServeInspect(t *testing.T) {
	h, cleanup, err := newHandler(testSiteLoaded(t, true))
	require.NoError(t, err)
	defer cleanup()
	ts := httptest.NewServer(h)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/_wayfinder/navigate?href=/docs/guides/y", "", nil)
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, "done", got["outcome"])
	assert.Equal(t, "Guide", got["title"])

	resp, err = http.Get(ts.URL + "/_wayfinder/current")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `"pathname":"/docs/guides/y"`), string(body))

	resp, err = http.Post(ts.URL+"/_wayfinder/navigate", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusOf(nil))
}
