// Package history abstracts the browser session history.
//
// History is the small part of window.history and window.location the
// navigation controller uses. Memory is an in-process implementation with
// back and forward navigation, for tests, CLIs and headless hosts.
package history

import (
	"errors"
	"net/url"
	"sync"
)

// ErrInvalidURL is returned when an entry URL is not absolute.
var ErrInvalidURL = errors.New("history: entry URL must be absolute")

// State is stored with every entry the controller writes.
type State struct {
	// BasePrefix is the concrete base prefix in effect for the entry.
	BasePrefix string `json:"basePrefix"`
}

// Entry is one session history entry.
type Entry struct {
	URL   string
	State State
}

// PopStateFunc is called when the current entry changes through history
// traversal (back, forward, go).
type PopStateFunc func(Entry)

// History is a session history.
type History interface {
	// Location returns the URL of the current entry.
	Location() *url.URL

	// PushState appends an entry after the current one, dropping any
	// forward entries.
	PushState(state State, href string) error

	// ReplaceState overwrites the current entry.
	ReplaceState(state State, href string) error

	// OnPopState registers fn for traversal. The returned function
	// unregisters it.
	OnPopState(fn PopStateFunc) (remove func())
}

// Memory is an in-memory History. It is safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	entries   []Entry
	index     int
	listeners map[int]PopStateFunc
	nextID    int
}

var _ History = (*Memory)(nil)

// NewMemory returns a history whose only entry is initial.
func NewMemory(initial string) (*Memory, error) {
	if _, err := parseAbsolute(initial); err != nil {
		return nil, err
	}
	return &Memory{
		entries:   []Entry{{URL: initial}},
		listeners: make(map[int]PopStateFunc),
	}, nil
}

// MustMemory is like NewMemory but panics on error.
func MustMemory(initial string) *Memory {
	m, err := NewMemory(initial)
	if err != nil {
		panic(err)
	}
	return m
}

// Location implements History.
func (m *Memory) Location() *url.URL {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, _ := url.Parse(m.entries[m.index].URL)
	return u
}

// Current returns the current entry.
func (m *Memory) Current() Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index]
}

// PushState implements History.
func (m *Memory) PushState(state State, href string) error {
	if _, err := parseAbsolute(href); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], Entry{URL: href, State: state})
	m.index++
	return nil
}

// ReplaceState implements History.
func (m *Memory) ReplaceState(state State, href string) error {
	if _, err := parseAbsolute(href); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.index] = Entry{URL: href, State: state}
	return nil
}

// OnPopState implements History.
func (m *Memory) OnPopState(fn PopStateFunc) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Back moves one entry back. It reports false at the first entry.
func (m *Memory) Back() bool {
	return m.Go(-1)
}

// Forward moves one entry forward. It reports false at the last entry.
func (m *Memory) Forward() bool {
	return m.Go(1)
}

// Go moves delta entries and notifies popstate listeners. It reports false,
// without moving, when the target is out of range or delta is zero.
func (m *Memory) Go(delta int) bool {
	m.mu.Lock()
	target := m.index + delta
	if delta == 0 || target < 0 || target >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = target
	entry := m.entries[target]
	listeners := make([]PopStateFunc, 0, len(m.listeners))
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(entry)
	}
	return true
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Index returns the position of the current entry.
func (m *Memory) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Entries returns a copy of all entries.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func parseAbsolute(href string) (*url.URL, error) {
	u, err := url.Parse(href)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}
