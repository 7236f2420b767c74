package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPushReplace(t *testing.T) {
	m := MustMemory("http://localhost/")
	assert.Equal(t, "/", m.Location().Path)

	require.NoError(t, m.PushState(State{BasePrefix: "/"}, "http://localhost/a"))
	require.NoError(t, m.PushState(State{BasePrefix: "/"}, "http://localhost/b"))
	require.NoError(t, m.ReplaceState(State{BasePrefix: "/app"}, "http://localhost/c"))

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 2, m.Index())
	assert.Equal(t, Entry{URL: "http://localhost/c", State: State{BasePrefix: "/app"}}, m.Current())
	assert.Equal(t, "/c", m.Location().Path)
}

func TestMemoryTraversal(t *testing.T) {
	m := MustMemory("http://localhost/")
	require.NoError(t, m.PushState(State{}, "http://localhost/a"))
	require.NoError(t, m.PushState(State{}, "http://localhost/b"))

	var popped []string
	remove := m.OnPopState(func(e Entry) { popped = append(popped, e.URL) })

	assert.True(t, m.Back())
	assert.True(t, m.Back())
	assert.False(t, m.Back())
	assert.True(t, m.Forward())
	assert.False(t, m.Go(0))
	assert.False(t, m.Go(5))
	assert.Equal(t, []string{"http://localhost/a", "http://localhost/", "http://localhost/a"}, popped)

	// Pushing drops forward entries.
	require.NoError(t, m.PushState(State{}, "http://localhost/z"))
	assert.Equal(t, []string{"http://localhost/", "http://localhost/a", "http://localhost/z"}, urls(m.Entries()))
	assert.False(t, m.Forward())

	remove()
	assert.True(t, m.Back())
	assert.Len(t, popped, 3)
}

func TestMemoryRejectsRelativeURLs(t *testing.T) {
	_, err := NewMemory("/relative")
	assert.ErrorIs(t, err, ErrInvalidURL)

	m := MustMemory("https://example.com/")
	assert.ErrorIs(t, m.PushState(State{}, "/x"), ErrInvalidURL)
	assert.ErrorIs(t, m.ReplaceState(State{}, "mailto:x@y"), ErrInvalidURL)
	assert.Panics(t, func() { MustMemory("") })
}

func urls(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.URL
	}
	return out
}
