package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/vango-dev/wayfinder/internal/config"
	"github.com/vango-dev/wayfinder/internal/logging"
	"github.com/vango-dev/wayfinder/pkg/dom"
	"github.com/vango-dev/wayfinder/pkg/history"
	"github.com/vango-dev/wayfinder/pkg/navigation"
	"github.com/vango-dev/wayfinder/pkg/outlet"
)

// site is a loaded site file and the logger configured for it.
type site struct {
	cfg   *config.Config
	log   *slog.Logger
	flush func()
}

// loadSite reads the site file named by flags.config and builds its logger.
// Command-line log settings override the site file.
func loadSite(flags *globalFlags) (*site, error) {
	cfg, err := loadConfig(flags.config)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		SentryDSN: cfg.Log.SentryDSN,
	}
	if flags.logLevel != "" {
		logCfg.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		logCfg.Format = flags.logFormat
	}
	logger, flush, err := logging.New(logCfg, logging.TraceID)
	if err != nil {
		return nil, err
	}

	return &site{cfg: cfg, log: logger, flush: flush}, nil
}

func loadConfig(path string) (*config.Config, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", config.ErrNotFound, path)
	}
	if !fi.IsDir() {
		return config.LoadFile(path)
	}
	root, err := config.FindProjectRoot(path)
	if err != nil {
		return nil, err
	}
	return config.Load(root)
}

// page is a document with a controller navigating it.
type page struct {
	doc  *dom.Document
	root *dom.Node
	nav  *navigation.Controller
}

// newPage creates a document whose body holds main#app with a root outlet,
// and a controller over it whose history starts at path. The route tree is
// built fresh because compiling a tree mutates its routes.
func (s *site) newPage(path string, mw ...navigation.Middleware) (*page, error) {
	routes, err := s.cfg.RouteTree()
	if err != nil {
		return nil, err
	}
	fallback, err := s.cfg.FallbackRoute()
	if err != nil {
		return nil, err
	}

	doc := dom.NewDocument(s.cfg.Name)
	root := dom.NewElement("main", dom.Attribute{Name: "id", Value: "app"})
	if err := root.AppendChild(outlet.New().Element()); err != nil {
		return nil, err
	}
	if err := doc.Body().AppendChild(root); err != nil {
		return nil, err
	}

	h, err := history.NewMemory(s.cfg.Origin + path)
	if err != nil {
		return nil, err
	}

	nav, err := navigation.New(navigation.Config{
		Root:                 root,
		Document:             doc,
		History:              h,
		BasePrefix:           s.cfg.BasePrefix,
		Routes:               routes,
		Fallback:             fallback,
		Languages:            s.cfg.Languages,
		UseClickInterception: navigation.Bool(false),
		AutoNavigate:         navigation.Bool(false),
		Logger:               s.log,
		Middleware:           mw,
	})
	if err != nil {
		return nil, err
	}
	return &page{doc: doc, root: root, nav: nav}, nil
}
