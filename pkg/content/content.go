// Package content provides ready-made content producers for routes:
// static text, vdom trees, templ components, html/template templates and
// Markdown documents.
//
//	routes := []*router.Route{
//		{Path: "/", Content: content.Markdown([]byte("# Welcome"))},
//		{Path: "/users/:id", Content: content.MustTemplate(`<h1>User {{.Param "id"}}</h1>`)},
//	}
package content

import (
	"context"
	"errors"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/vango-dev/wayfinder/pkg/dom"
	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/outlet"
	"github.com/vango-dev/wayfinder/pkg/router"
	"github.com/vango-dev/wayfinder/pkg/vdom"
)

// ErrNilTemplate is returned when a template producer has no template.
var ErrNilTemplate = errors.New("content: nil template")

// Text renders s as a single text node.
func Text(s string) router.ContentFunc {
	return func(context.Context, *location.Context) (outlet.Content, error) {
		return outlet.FromNode(dom.NewText(s)), nil
	}
}

// VNode renders the tree returned by fn. fn is called on every render.
func VNode(fn func(nav *location.Context) *vdom.VNode) router.ContentFunc {
	return func(_ context.Context, nav *location.Context) (outlet.Content, error) {
		return outlet.FromVNode(fn(nav)), nil
	}
}

// Layout renders a wrapper element around an outlet, so nested routes
// render inside it. The outlet is appended after the given children.
func Layout(tag string, children ...any) router.ContentFunc {
	return func(context.Context, *location.Context) (outlet.Content, error) {
		args := append(append([]any{}, children...), vdom.Outlet())
		return outlet.FromVNode(vdom.CustomElement(tag, args...)), nil
	}
}

// Component renders a fixed templ component.
func Component(c templ.Component) router.ContentFunc {
	return func(context.Context, *location.Context) (outlet.Content, error) {
		return outlet.FromTemplate(c), nil
	}
}

// Template renders t with the navigation context as data. Inside the
// template, {{.Pathname}}, {{.Param "id"}} and {{.Query.Get "q"}} are
// available, as is {{outlet}} for a nested outlet.
func Template(t *template.Template) router.ContentFunc {
	return func(_ context.Context, nav *location.Context) (outlet.Content, error) {
		if t == nil {
			return outlet.Content{}, ErrNilTemplate
		}
		return outlet.FromTemplate(templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			return t.Execute(w, nav)
		})), nil
	}
}

// ParseTemplate parses src as an html/template for Template.
func ParseTemplate(name, src string) (*template.Template, error) {
	return template.New(name).Funcs(Funcs).Parse(src)
}

// MustTemplate parses src and returns its producer. It panics on a parse
// error, for templates known at compile time.
func MustTemplate(src string) router.ContentFunc {
	return Template(template.Must(ParseTemplate("content", src)))
}

// Funcs are the functions available to templates.
var Funcs = template.FuncMap{
	"outlet": func() template.HTML {
		return template.HTML("<" + outlet.TagName + "></" + outlet.TagName + ">")
	},
}
