package dom

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndRemove(t *testing.T) {
	parent := NewElement("div")
	a := NewElement("span")
	b := NewText("hi")

	require.NoError(t, parent.AppendChild(a))
	require.NoError(t, parent.AppendChild(b))
	assert.Equal(t, []*Node{a, b}, parent.Children())
	assert.Same(t, parent, a.Parent())

	other := NewElement("p")
	require.NoError(t, other.AppendChild(a))
	assert.Equal(t, []*Node{b}, parent.Children(), "appending elsewhere detaches")
	assert.Same(t, other, a.Parent())

	assert.ErrorIs(t, parent.RemoveChild(a), ErrNotChild)
	require.NoError(t, other.RemoveChild(a))
	assert.Nil(t, a.Parent())
}

func TestAppendHierarchyErrors(t *testing.T) {
	outer := NewElement("div")
	inner := NewElement("div")
	require.NoError(t, outer.AppendChild(inner))

	assert.ErrorIs(t, inner.AppendChild(outer), ErrHierarchy)
	assert.ErrorIs(t, inner.AppendChild(inner), ErrHierarchy)
	assert.ErrorIs(t, NewText("x").AppendChild(NewElement("b")), ErrHierarchy)

	host := NewElement("x-host")
	shadow, err := host.AttachShadow()
	require.NoError(t, err)
	assert.ErrorIs(t, outer.AppendChild(shadow), ErrHierarchy)

	deep := NewElement("i")
	require.NoError(t, shadow.AppendChild(deep))
	assert.ErrorIs(t, deep.AppendChild(host), ErrHierarchy, "cycles through shadow hosts are rejected")
}

func TestFragmentMovesChildren(t *testing.T) {
	a, b := NewElement("a"), NewElement("b")
	frag := NewFragment(a, b)
	parent := NewElement("div")

	require.NoError(t, parent.AppendChild(frag))
	assert.Equal(t, []*Node{a, b}, parent.Children())
	assert.Equal(t, 0, frag.ChildCount())
	assert.Same(t, parent, b.Parent())
}

func TestDisconnectHooks(t *testing.T) {
	parent := NewElement("div")
	child := NewElement("section")
	grandchild := NewElement("p")
	require.NoError(t, parent.AppendChild(child))
	require.NoError(t, child.AppendChild(grandchild))

	host := NewElement("x-card")
	shadow, err := host.AttachShadow()
	require.NoError(t, err)
	inShadow := NewElement("span")
	require.NoError(t, shadow.AppendChild(inShadow))
	require.NoError(t, grandchild.AppendChild(host))

	var calls []string
	child.OnDisconnect(func() { calls = append(calls, "child") })
	grandchild.OnDisconnect(func() { calls = append(calls, "grandchild") })
	inShadow.OnDisconnect(func() { calls = append(calls, "shadow") })

	child.Remove()
	assert.Equal(t, []string{"child", "grandchild", "shadow"}, calls)

	require.NoError(t, parent.AppendChild(child))
	child.Remove()
	assert.Len(t, calls, 3, "hooks run once")
}

func TestReplaceChildren(t *testing.T) {
	parent := NewElement("div")
	old := NewElement("old")
	require.NoError(t, parent.AppendChild(old))

	disconnected := false
	old.OnDisconnect(func() { disconnected = true })

	fresh := NewElement("new")
	require.NoError(t, parent.ReplaceChildren(fresh))
	assert.True(t, disconnected)
	assert.Equal(t, []*Node{fresh}, parent.Children())
}

func TestAttributes(t *testing.T) {
	el := NewElement("A", Attribute{Name: "HREF", Value: "/x"})
	assert.Equal(t, "a", el.Tag)
	assert.Equal(t, "/x", el.GetAttr("href"))

	el.SetAttr("target", "_blank")
	el.SetAttr("href", "/y")
	assert.Equal(t, []Attribute{{"href", "/y"}, {"target", "_blank"}}, el.Attrs())

	el.RemoveAttr("href")
	assert.False(t, el.HasAttr("href"))
	_, ok := el.Attr("missing")
	assert.False(t, ok)
}

func TestShadowRoot(t *testing.T) {
	host := NewElement("x-panel")
	root, err := host.AttachShadow()
	require.NoError(t, err)
	assert.Same(t, host, root.Host())
	assert.Same(t, root, host.ShadowRoot())

	_, err = host.AttachShadow()
	assert.ErrorIs(t, err, ErrShadowAttached)
	_, err = NewText("t").AttachShadow()
	assert.ErrorIs(t, err, ErrNoShadow)
}

func TestFindSearchesShadowFirst(t *testing.T) {
	root := NewElement("main")
	host := NewElement("x-layout")
	light := NewElement("slot-target", Attribute{Name: "id", Value: "light"})
	require.NoError(t, host.AppendChild(light))
	shadow, err := host.AttachShadow()
	require.NoError(t, err)
	inner := NewElement("slot-target", Attribute{Name: "id", Value: "shadow"})
	require.NoError(t, shadow.AppendChild(NewElement("div")))
	require.NoError(t, shadow.Children()[0].AppendChild(inner))
	require.NoError(t, root.AppendChild(host))

	found := root.FindByTag("slot-target")
	require.NotNil(t, found)
	assert.Equal(t, "shadow", found.GetAttr("id"))

	assert.Nil(t, root.FindByTag("main"), "the starting node is not tested")
}

func TestIsConnected(t *testing.T) {
	doc := NewDocument("t")
	el := NewElement("div")
	assert.False(t, el.IsConnected())

	require.NoError(t, doc.Body().AppendChild(el))
	assert.True(t, el.IsConnected())

	host := NewElement("x-host")
	shadow, err := host.AttachShadow()
	require.NoError(t, err)
	inner := NewElement("b")
	require.NoError(t, shadow.AppendChild(inner))
	require.NoError(t, el.AppendChild(host))
	assert.True(t, inner.IsConnected())
}

func TestEventBubblingAndRemoval(t *testing.T) {
	outer := NewElement("div")
	host := NewElement("x-button")
	shadow, err := host.AttachShadow()
	require.NoError(t, err)
	inner := NewElement("button")
	require.NoError(t, shadow.AppendChild(inner))
	require.NoError(t, outer.AppendChild(host))

	var seen []string
	remove := outer.AddEventListener("click", func(e *Event) {
		seen = append(seen, "outer")
		assert.Same(t, inner, e.Target())
		assert.Same(t, outer, e.CurrentTarget())
	})
	inner.AddEventListener("click", func(e *Event) { seen = append(seen, "inner") })

	assert.True(t, inner.Dispatch(NewClick()))
	assert.Equal(t, []string{"inner", "outer"}, seen)

	seen = nil
	inner.Dispatch(&Event{Type: "click", Bubbles: true})
	assert.Equal(t, []string{"inner"}, seen, "uncomposed events stay in the shadow tree")

	remove()
	remove()
	assert.Equal(t, 0, outer.ListenerCount("click"))

	seen = nil
	inner.Dispatch(NewClick())
	assert.Equal(t, []string{"inner"}, seen)
}

func TestEventStopAndPrevent(t *testing.T) {
	parent := NewElement("div")
	child := NewElement("a")
	require.NoError(t, parent.AppendChild(child))

	parentCalled := false
	parent.AddEventListener("click", func(*Event) { parentCalled = true })
	child.AddEventListener("click", func(e *Event) {
		e.PreventDefault()
		e.StopPropagation()
	})

	ev := NewClick()
	assert.False(t, child.Dispatch(ev))
	assert.True(t, ev.DefaultPrevented())
	assert.False(t, parentCalled)
	assert.Equal(t, []*Node{child, parent}, ev.Path())

	assert.False(t, (&Event{}).HasModifier())
	assert.True(t, (&Event{MetaKey: true}).HasModifier())
	assert.True(t, (&Event{Button: 1}).HasModifier())
}

type counter struct{ el *Node }

func TestDefineUpgradesElements(t *testing.T) {
	if !IsDefined("x-counter") {
		require.NoError(t, Define("x-counter", func(el *Node) any { return &counter{el: el} }))
	}
	assert.ErrorIs(t, Define("x-counter", nil), ErrAlreadyDefined)
	assert.ErrorIs(t, Define("counter", nil), ErrInvalidElementName)
	assert.True(t, IsDefined("X-Counter"))

	el := NewElement("x-counter")
	c, ok := el.Upgraded().(*counter)
	require.True(t, ok)
	assert.Same(t, el, c.el)

	nodes, err := ParseFragmentString(`<div><x-counter></x-counter></div>`)
	require.NoError(t, err)
	parsed := nodes[0].FindByTag("x-counter")
	require.NotNil(t, parsed)
	assert.IsType(t, &counter{}, parsed.Upgraded())

	assert.Nil(t, NewElement("div").Upgraded())
}

func TestParseFragmentShadowRoots(t *testing.T) {
	nodes, err := ParseFragmentString(`<x-page title="a"><template shadowrootmode="open"><h1>Title</h1><slot></slot></template><p>light</p></x-page><!-- c -->tail`)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	page := nodes[0]
	assert.Equal(t, "x-page", page.Tag)
	assert.Equal(t, "a", page.GetAttr("title"))
	require.NotNil(t, page.ShadowRoot())
	assert.Equal(t, "h1", page.ShadowRoot().FirstChild().Tag)
	require.Equal(t, 1, page.ChildCount())
	assert.Equal(t, "p", page.FirstChild().Tag)

	assert.Equal(t, CommentNode, nodes[1].Type)
	assert.Equal(t, "tail", nodes[2].Data)
	assert.Equal(t, "Titlelight", page.TextContent())
}

func TestRender(t *testing.T) {
	el := NewElement("div", Attribute{Name: "class", Value: "card"})
	shadow, err := el.AttachShadow()
	require.NoError(t, err)
	require.NoError(t, shadow.AppendChild(NewElement("b")))
	require.NoError(t, el.AppendChild(NewText("a < b")))

	assert.Equal(t, `<div class="card"><template shadowrootmode="open"><b></b></template>a &lt; b</div>`, OuterHTML(el))

	frag := NewFragment(NewElement("i"), NewText("x"))
	assert.Equal(t, "<i></i>x", OuterHTML(frag))

	// Rendered HTML parses back to the same tree.
	nodes, err := ParseFragmentString(OuterHTML(el))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, OuterHTML(el), OuterHTML(nodes[0]))
}

func TestRenderDocument(t *testing.T) {
	doc := NewDocument("Home")
	require.NoError(t, doc.Body().AppendChild(NewElement("main")))
	doc.SetTitle("Users")
	assert.Equal(t, "Users", doc.Title())

	var buf bytes.Buffer
	require.NoError(t, RenderDocument(&buf, doc))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html><html><head><title>Users</title></head>"))
	assert.Contains(t, out, "<body><main></main></body>")
}

func TestNodeTypeString(t *testing.T) {
	assert.Equal(t, "element", ElementNode.String())
	assert.Equal(t, "shadow-root", ShadowRootNode.String())
	assert.Equal(t, "unknown", NodeType(0).String())
}
