package outlet

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/wayfinder/pkg/dom"
	"github.com/vango-dev/wayfinder/pkg/routeerr"
	"github.com/vango-dev/wayfinder/pkg/vdom"
)

func html(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func TestContentVariants(t *testing.T) {
	assert.True(t, Content{}.IsZero())
	assert.True(t, FromNode(nil).IsZero())
	assert.True(t, FromVNode(nil).IsZero())
	assert.True(t, FromTemplate(nil).IsZero())

	n := dom.NewElement("p")
	assert.Equal(t, KindNode, FromNode(n).Kind())
	assert.Same(t, n, FromNode(n).Node())
	assert.Equal(t, KindVNode, FromVNode(vdom.P()).Kind())
	assert.Equal(t, KindTemplate, FromTemplate(html("x")).Kind())

	assert.Equal(t, "template", KindTemplate.String())
	assert.Equal(t, "invalid", KindInvalid.String())
}

func TestFind(t *testing.T) {
	root := dom.NewElement("main")
	_, err := Find(root)
	var rerr *routeerr.RouteError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, routeerr.KindRenderTargetMissing, rerr.Kind)
	assert.ErrorIs(t, err, routeerr.ErrRenderTargetMissing)

	o := New()
	wrapper := dom.NewElement("div")
	require.NoError(t, wrapper.AppendChild(o.Element()))
	require.NoError(t, root.AppendChild(wrapper))

	found, err := Find(root)
	require.NoError(t, err)
	assert.Same(t, o, found)

	_, err = Find(o.Element())
	assert.Error(t, err, "the root itself is excluded")

	_, err = Find(nil)
	assert.Error(t, err)
}

func TestFindInsideShadowRoot(t *testing.T) {
	root := dom.NewElement("main")
	host := dom.NewElement("x-shell")
	shadow, err := host.AttachShadow()
	require.NoError(t, err)
	o := New()
	require.NoError(t, shadow.AppendChild(o.Element()))
	require.NoError(t, root.AppendChild(host))

	found, err := Find(root)
	require.NoError(t, err)
	assert.Same(t, o, found)
}

func TestDispatchIdempotent(t *testing.T) {
	o := New()
	ctx := context.Background()

	builds := 0
	content := func() Content {
		builds++
		return FromVNode(vdom.Div(vdom.Text("layout")))
	}

	first, err := o.Dispatch(ctx, "layout", content(), false)
	require.NoError(t, err)
	assert.Equal(t, "layout", o.LastID())
	assert.True(t, o.Shows("layout"))

	again, err := o.Dispatch(ctx, "layout", content(), false)
	require.NoError(t, err)
	assert.Same(t, first, again, "same id without force keeps the mount")
	assert.Equal(t, 1, o.Element().ChildCount())

	forced, err := o.Dispatch(ctx, "layout", content(), true)
	require.NoError(t, err)
	assert.NotSame(t, first, forced)
	assert.Nil(t, first.Parent())
	assert.Equal(t, 1, o.Element().ChildCount())
	assert.Equal(t, 3, builds)
}

func TestDispatchTearsDownPrevious(t *testing.T) {
	o := New()
	ctx := context.Background()

	clicks := 0
	_, err := o.Dispatch(ctx, "a", FromVNode(vdom.Button(vdom.OnClick(func() { clicks++ }), "go")), true)
	require.NoError(t, err)
	button := o.Element().FirstChild()
	require.Equal(t, 1, button.ListenerCount("click"))

	node := dom.NewElement("section")
	disconnected := false
	node.OnDisconnect(func() { disconnected = true })

	mounted, err := o.Dispatch(ctx, "b", FromNode(node), true)
	require.NoError(t, err)
	assert.Same(t, node, mounted)
	assert.Equal(t, 0, button.ListenerCount("click"), "vdom listeners are detached")
	assert.Nil(t, button.Parent())

	mounted, err = o.Dispatch(ctx, "c", FromTemplate(html(`<article><h1>Hi</h1></article><footer></footer>`)), true)
	require.NoError(t, err)
	assert.Equal(t, "article", mounted.Tag)
	assert.True(t, disconnected, "plain nodes are removed")
	assert.Equal(t, 2, o.Element().ChildCount())

	_, err = o.Dispatch(ctx, "d", FromNode(dom.NewText("plain")), true)
	require.NoError(t, err)
	assert.Equal(t, 1, o.Element().ChildCount(), "template roots are removed")
	assert.Equal(t, "plain", o.Element().TextContent())
}

func TestDispatchSameNodeAgain(t *testing.T) {
	o := New()
	node := dom.NewElement("div")
	_, err := o.Dispatch(context.Background(), "a", FromNode(node), true)
	require.NoError(t, err)

	mounted, err := o.Dispatch(context.Background(), "b", FromNode(node), true)
	require.NoError(t, err)
	assert.Same(t, node, mounted)
	assert.Same(t, o.Element(), node.Parent())
	assert.Equal(t, "b", o.LastID())
}

func TestDispatchTemplateWithNestedOutlet(t *testing.T) {
	o := New()
	_, err := o.Dispatch(context.Background(), "layout",
		FromTemplate(html(`<x-frame><template shadowrootmode="open"><nav></nav><u-outlet></u-outlet></template></x-frame>`)), false)
	require.NoError(t, err)

	next, ok := o.Next()
	require.True(t, ok)
	assert.NotSame(t, o, next)
	assert.Equal(t, TagName, next.Element().Tag)
}

func TestDispatchErrors(t *testing.T) {
	o := New()
	ctx := context.Background()

	_, err := o.Dispatch(ctx, "ok", FromVNode(vdom.P("kept")), true)
	require.NoError(t, err)

	_, err = o.Dispatch(ctx, "zero", Content{}, true)
	assert.ErrorIs(t, err, ErrUnknownContent)

	boom := errors.New("boom")
	_, err = o.Dispatch(ctx, "tmpl", FromTemplate(templ.ComponentFunc(func(context.Context, io.Writer) error {
		return boom
	})), true)
	assert.ErrorIs(t, err, boom)

	_, err = o.Dispatch(ctx, "vnode", FromVNode(vdom.Button(vdom.OnClick(42))), true)
	assert.ErrorIs(t, err, vdom.ErrInvalidHandler)

	assert.Equal(t, "ok", o.LastID(), "failed dispatches keep the previous content")
	assert.Equal(t, "kept", o.Element().TextContent())

	_, err = o.Dispatch(ctx, "panic", FromVNode(&vdom.VNode{Kind: vdom.KindComponent, Comp: vdom.Func(func() *vdom.VNode {
		panic("render failed")
	})}), true)
	assert.ErrorIs(t, err, ErrRenderPanic)
}

func TestClear(t *testing.T) {
	o := New()
	_, err := o.Dispatch(context.Background(), "a", FromVNode(vdom.P("x")), true)
	require.NoError(t, err)

	o.Clear()
	assert.Equal(t, "", o.LastID())
	assert.Nil(t, o.Mounted())
	assert.Equal(t, 0, o.Element().ChildCount())
}
