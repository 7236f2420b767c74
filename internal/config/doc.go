// Package config loads wayfinder site files.
//
// A site file describes a route tree and the content each route renders.
// It is read from wayfinder.yaml (or wayfinder.yml) or wayfinder.toml.
//
// # Site File Structure
//
//	name: docs
//	basePrefix: /docs
//	origin: https://example.com
//	languages: [ko, en]
//	routes:
//	  - path: /
//	    title: Docs
//	    html: |
//	      <header>{{.Pathname}}</header>{{outlet}}
//	    children:
//	      - index: true
//	        markdown: "# Welcome"
//	      - path: guides/:slug
//	        file: content/guide.md
//	fallback:
//	  text: Something went wrong.
//	serve:
//	  port: 3000
//	  metrics: true
//	log:
//	  level: debug
//	  format: json
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	routes, err := cfg.RouteTree()
package config
