package navigation

import (
	"strings"

	"github.com/vango-dev/wayfinder/pkg/dom"
	"github.com/vango-dev/wayfinder/pkg/location"
)

// handleClick turns clicks on internal links into navigations. Clicks
// with a modifier key or another button, links with a target other than
// _self, download links and external links keep their default action.
func (c *Controller) handleClick(e *dom.Event) {
	if e.DefaultPrevented() || e.HasModifier() {
		return
	}
	a := anchorOf(e)
	if a == nil {
		return
	}

	href := strings.TrimSpace(a.GetAttr("href"))
	if href == "" || href == "#" {
		return
	}
	if target := a.GetAttr("target"); target != "" && target != "_self" {
		return
	}
	if a.HasAttr("download") {
		return
	}
	if hasToken(a.GetAttr("rel"), "external") {
		return
	}

	loc := c.history.Location()
	if location.IsExternal(href, loc.Scheme+"://"+loc.Host) {
		return
	}

	e.PreventDefault()
	c.Go(href)
}

// anchorOf returns the innermost <a href> on the event path.
func anchorOf(e *dom.Event) *dom.Node {
	for _, n := range e.Path() {
		if n.Type == dom.ElementNode && n.Tag == "a" && n.HasAttr("href") {
			return n
		}
	}
	return nil
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, token) {
			return true
		}
	}
	return false
}
