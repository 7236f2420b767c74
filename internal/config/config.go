package config

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/wayfinder/pkg/content"
	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/router"
)

const (
	// YAMLFileName is the preferred site file name.
	YAMLFileName = "wayfinder.yaml"

	// TOMLFileName is the alternative site file name.
	TOMLFileName = "wayfinder.toml"

	// DefaultPort is the default port of `wayfinder serve`.
	DefaultPort = 3000

	// DefaultHost is the default host of `wayfinder serve`.
	DefaultHost = "localhost"
)

// Format is a site file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	// ErrNotFound is returned when no site file exists.
	ErrNotFound = errors.New("config: no site file found")

	// ErrInvalid is returned for site files that parse but cannot be used.
	ErrInvalid = errors.New("config: invalid site file")
)

// fileNames are tried in order by Load.
var fileNames = []string{YAMLFileName, "wayfinder.yml", TOMLFileName}

// Config is a site file.
type Config struct {
	// Name is the site name.
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`

	// BasePrefix is the base path template, e.g. "/docs" or "/app/:tenant".
	BasePrefix string `yaml:"basePrefix,omitempty" toml:"basePrefix,omitempty"`

	// Origin is the origin of the initial location.
	Origin string `yaml:"origin,omitempty" toml:"origin,omitempty"`

	// Languages are the preferred languages of the built-in error view.
	Languages []string `yaml:"languages,omitempty" toml:"languages,omitempty"`

	// Routes is the route tree.
	Routes []Route `yaml:"routes" toml:"routes"`

	// Fallback renders failed navigations. Its path is ignored.
	Fallback *Route `yaml:"fallback,omitempty" toml:"fallback,omitempty"`

	// Serve contains `wayfinder serve` settings.
	Serve ServeConfig `yaml:"serve,omitempty" toml:"serve,omitempty"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log,omitempty" toml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// Route describes one route and its content. At most one of HTML,
// Markdown, Text and File may be set.
type Route struct {
	ID         string  `yaml:"id,omitempty" toml:"id,omitempty"`
	Path       string  `yaml:"path,omitempty" toml:"path,omitempty"`
	Index      bool    `yaml:"index,omitempty" toml:"index,omitempty"`
	Title      string  `yaml:"title,omitempty" toml:"title,omitempty"`
	Force      *bool   `yaml:"force,omitempty" toml:"force,omitempty"`
	IgnoreCase bool    `yaml:"ignoreCase,omitempty" toml:"ignoreCase,omitempty"`
	Children   []Route `yaml:"children,omitempty" toml:"children,omitempty"`

	// HTML is an html/template source. Layouts place {{outlet}} where
	// child routes render.
	HTML string `yaml:"html,omitempty" toml:"html,omitempty"`

	// Markdown is rendered to sanitised HTML.
	Markdown string `yaml:"markdown,omitempty" toml:"markdown,omitempty"`

	// Text is rendered as a text node.
	Text string `yaml:"text,omitempty" toml:"text,omitempty"`

	// File is a content file relative to the site file. Its extension
	// selects the renderer: .md and .markdown for Markdown, .html and
	// .tmpl for templates, anything else for text.
	File string `yaml:"file,omitempty" toml:"file,omitempty"`
}

// ServeConfig contains `wayfinder serve` settings.
type ServeConfig struct {
	Host string `yaml:"host,omitempty" toml:"host,omitempty"`
	Port int    `yaml:"port,omitempty" toml:"port,omitempty"`

	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool `yaml:"metrics,omitempty" toml:"metrics,omitempty"`

	// Inspect exposes the event stream under /_wayfinder.
	Inspect bool `yaml:"inspect,omitempty" toml:"inspect,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level,omitempty" toml:"level,omitempty"`

	// Format is text or json.
	Format string `yaml:"format,omitempty" toml:"format,omitempty"`

	// SentryDSN enables Sentry error reporting when set.
	SentryDSN string `yaml:"sentryDSN,omitempty" toml:"sentryDSN,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		BasePrefix: "/",
		Origin:     location.DefaultOrigin,
		Serve: ServeConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the site file from dir, trying wayfinder.yaml, wayfinder.yml
// and wayfinder.toml in that order.
func Load(dir string) (*Config, error) {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, fmt.Errorf("%w in %s", ErrNotFound, dir)
}

// LoadFile reads the site file at path. The extension selects the format.
func LoadFile(path string) (*Config, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes a site file and applies defaults.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := New()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalid, format)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to path in the format its extension
// selects.
func (c *Config) SaveTo(path string) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("config: encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("config: encode: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("config: encode: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file, or "." for
// parsed configs.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.BasePrefix == "" {
		c.BasePrefix = "/"
	}
	if c.Origin == "" {
		c.Origin = location.DefaultOrigin
	}
	c.Origin = strings.TrimSuffix(c.Origin, "/")
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid. Route patterns are
// checked when the routes are compiled.
func (c *Config) Validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("%w: port must be between 0 and 65535, got %d", ErrInvalid, c.Serve.Port)
	}
	if !strings.HasPrefix(c.Origin, "http://") && !strings.HasPrefix(c.Origin, "https://") {
		return fmt.Errorf("%w: origin %q must be an http or https URL", ErrInvalid, c.Origin)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q must be text or json", ErrInvalid, c.Log.Format)
	}
	if len(c.Routes) == 0 {
		return fmt.Errorf("%w: no routes", ErrInvalid)
	}
	return validateRoutes(c.Routes, "routes")
}

func validateRoutes(routes []Route, at string) error {
	for i, r := range routes {
		where := fmt.Sprintf("%s[%d]", at, i)
		set := 0
		for _, s := range []string{r.HTML, r.Markdown, r.Text, r.File} {
			if s != "" {
				set++
			}
		}
		if set > 1 {
			return fmt.Errorf("%w: %s sets more than one of html, markdown, text and file", ErrInvalid, where)
		}
		if err := validateRoutes(r.Children, where+".children"); err != nil {
			return err
		}
	}
	return nil
}

// Addr returns the listen address of `wayfinder serve`.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Serve.Host, strconv.Itoa(c.Serve.Port))
}

// URL returns the initial location: the origin joined with the base
// prefix.
func (c *Config) URL() string {
	return c.Origin + c.BasePrefix
}

// Exists checks if a site file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range fileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the directory containing a
// site file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrNotFound, startDir)
		}
		dir = parent
	}
}

func formatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s: unsupported extension", ErrInvalid, path)
	}
}

// =============================================================================
// Route tree
// =============================================================================

// RouteTree builds the routes described by the site file. Content files
// are read eagerly, so a missing file fails here rather than during
// navigation.
func (c *Config) RouteTree() ([]*router.Route, error) {
	return c.build(c.Routes, "routes")
}

// FallbackRoute builds the fallback route, or returns nil when none is
// configured.
func (c *Config) FallbackRoute() (*router.Route, error) {
	if c.Fallback == nil {
		return nil, nil
	}
	routes, err := c.build([]Route{*c.Fallback}, "fallback")
	if err != nil {
		return nil, err
	}
	return routes[0], nil
}

func (c *Config) build(routes []Route, at string) ([]*router.Route, error) {
	out := make([]*router.Route, 0, len(routes))
	for i, r := range routes {
		where := fmt.Sprintf("%s[%d]", at, i)
		fn, err := c.contentOf(r, where)
		if err != nil {
			return nil, err
		}
		children, err := c.build(r.Children, where+".children")
		if err != nil {
			return nil, err
		}
		out = append(out, &router.Route{
			ID:         r.ID,
			Path:       r.Path,
			Index:      r.Index,
			Title:      r.Title,
			Force:      r.Force,
			IgnoreCase: r.IgnoreCase,
			Children:   children,
			Content:    fn,
		})
	}
	return out, nil
}

func (c *Config) contentOf(r Route, where string) (router.ContentFunc, error) {
	switch {
	case r.HTML != "":
		return templateContent(where, r.HTML)
	case r.Markdown != "":
		return content.Markdown([]byte(r.Markdown)), nil
	case r.Text != "":
		return content.Text(r.Text), nil
	case r.File != "":
		path := r.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.Dir(), path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, where, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".markdown":
			return content.Markdown(data), nil
		case ".html", ".tmpl", ".gohtml":
			return templateContent(where, string(data))
		default:
			return content.Text(string(data)), nil
		}
	default:
		return nil, nil
	}
}

func templateContent(name, src string) (router.ContentFunc, error) {
	tmpl, err := content.ParseTemplate(name, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, name, err)
	}
	return content.Template(tmpl), nil
}
