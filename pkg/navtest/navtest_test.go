package navtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/wayfinder/pkg/events"
	"github.com/vango-dev/wayfinder/pkg/outlet"
	"github.com/vango-dev/wayfinder/pkg/vdom"
)

func TestFixture(t *testing.T) {
	f := NewFixture(t, "/start")
	assert.Equal(t, "/start", f.History.Location().Path)
	assert.Equal(t, "app", f.Root.GetAttr("id"))
	assert.True(t, f.Root.IsConnected())

	found, err := outlet.Find(f.Root)
	require.NoError(t, err)
	assert.Same(t, f.Outlet, found)

	_, err = f.Outlet.Dispatch(context.Background(), "x", outlet.FromVNode(vdom.A(vdom.Href("/next"), "next")), true)
	require.NoError(t, err)
	assert.Equal(t, "next", f.Text())
	assert.False(t, f.Click(t, "/next"), "nothing intercepts clicks yet")
}

func TestRecorder(t *testing.T) {
	bus := events.NewBus()
	rec := Record(t, bus)

	bus.Publish(events.New(events.Begin, 1, nil))
	bus.Publish(events.New(events.Done, 1, nil))
	bus.Publish(events.New(events.Begin, 2, nil))

	assert.Equal(t, []events.Type{events.Begin, events.Done, events.Begin}, rec.Types())
	assert.Len(t, rec.Of(events.Begin), 2)
	assert.Equal(t, uint64(2), rec.Last(events.Begin).Token)
	assert.Nil(t, rec.Last(events.Error))

	rec.Reset()
	assert.Empty(t, rec.Events())
}

func TestCounterAndGate(t *testing.T) {
	c := Text("hi")
	got, err := c.Func()(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, outlet.KindVNode, got.Kind())
	assert.Equal(t, 1, c.Calls())

	g := NewGate(outlet.FromVNode(vdom.P("gated")))
	done := make(chan outlet.Content)
	go func() {
		content, _ := g.Func()(context.Background(), nil)
		done <- content
	}()
	g.WaitEntered(t)
	g.Release()
	g.Release()
	assert.Equal(t, outlet.KindVNode, (<-done).Kind())
	assert.Equal(t, 1, g.Calls())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := NewGate(outlet.Content{})
	_, err = blocked.Func()(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
