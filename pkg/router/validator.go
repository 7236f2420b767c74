package router

import "fmt"

// Conflict describes a route that can never be selected because an earlier
// route accepts every pathname it accepts.
type Conflict struct {
	Winner   *Route
	Shadowed *Route
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s is shadowed by %s", c.Shadowed, c.Winner)
}

// Conflicts reports routes whose pattern repeats the pattern of a route
// matched before them. Ancestors are not counted: an index route repeating
// its parent's pattern is the normal way to render at the parent's path.
func (t *Tree) Conflicts() []Conflict {
	var (
		seen  []*Route
		stack []*Route
		out   []Conflict
	)
	t.Walk(func(r *Route, depth int) bool {
		stack = append(stack[:depth], r)
		for _, prev := range seen {
			if shadows(prev, r) && !isAncestor(stack[:depth], prev) {
				out = append(out, Conflict{Winner: prev, Shadowed: r})
				break
			}
		}
		seen = append(seen, r)
		return true
	})
	return out
}

// shadows reports whether every pathname r accepts is accepted by prev.
func shadows(prev, r *Route) bool {
	return prev.pattern == r.pattern && (prev.IgnoreCase || !r.IgnoreCase)
}

func isAncestor(ancestors []*Route, r *Route) bool {
	for _, a := range ancestors {
		if a == r {
			return true
		}
	}
	return false
}
