package router

import (
	"net/url"

	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/routepath"
	"github.com/vango-dev/wayfinder/pkg/vdom"
)

// Link creates an anchor that navigation intercepts when clicked.
func Link(href string, children ...any) *vdom.VNode {
	return vdom.A(vdom.Href(href), children)
}

// ExternalLink creates an anchor marked rel="external", which navigation
// never intercepts even when href is on the same origin.
func ExternalLink(href string, children ...any) *vdom.VNode {
	return vdom.A(vdom.Href(href), vdom.Rel("external"), children)
}

// ActiveLink creates a link that carries activeClass and
// aria-current="page" when href resolves to the location in nav. With
// exact unset, locations below href count as well.
func ActiveLink(nav *location.Context, href, activeClass string, exact bool, children ...any) *vdom.VNode {
	active := IsActive(nav, href, exact)
	return vdom.A(
		vdom.Href(href),
		vdom.ClassIf(active, activeClass),
		vdom.AttrIf(active, vdom.AriaCurrent("page")),
		children,
	)
}

// NavLink is an ActiveLink with the class "active" and exact matching.
func NavLink(nav *location.Context, href string, children ...any) *vdom.VNode {
	return ActiveLink(nav, href, "active", true, children...)
}

// IsActive reports whether href, resolved against nav, points at nav's
// pathname, or with exact unset, at one of its ancestors.
func IsActive(nav *location.Context, href string, exact bool) bool {
	if nav == nil {
		return false
	}
	current, err := url.Parse(nav.Href)
	if err != nil {
		return false
	}
	target, err := location.Resolve(href, nav.BasePrefix, current)
	if err != nil || target.Origin != nav.Origin {
		return false
	}
	if exact {
		return target.Pathname == nav.Pathname
	}
	return routepath.HasPrefix(nav.Pathname, target.Pathname)
}
