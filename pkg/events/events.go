// Package events carries navigation lifecycle notifications.
//
// A Bus delivers every Event to observers, synchronously and in
// registration order, and to channel subscribers without blocking: a full
// channel drops the event and the drop is counted.
package events

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/routeerr"
)

// Type names a lifecycle event.
type Type string

const (
	Begin    Type = "navigation-begin"
	Progress Type = "navigation-progress"
	Done     Type = "navigation-done"
	Error    Type = "navigation-error"
)

// Event describes one step of a navigation attempt.
type Event struct {
	Type      Type
	Context   *location.Context
	Timestamp time.Time

	// Token identifies the navigation attempt.
	Token uint64

	// Progress is set on Progress events, in [0, 100].
	Progress int

	// Err is set on Error events.
	Err *routeerr.RouteError

	cancelled atomic.Bool
}

// New returns an event of type typ stamped with the current time.
func New(typ Type, token uint64, nav *location.Context) *Event {
	return &Event{Type: typ, Token: token, Context: nav, Timestamp: time.Now()}
}

// Cancel marks the event as cancelled. Navigation does not react to it;
// it only tells later observers that an earlier one handled the event.
func (e *Event) Cancel() {
	e.cancelled.Store(true)
}

// Cancelled reports whether Cancel was called.
func (e *Event) Cancelled() bool {
	return e.cancelled.Load()
}

// Observer receives events. Observers run on the publishing goroutine and
// must not block or start a blocking navigation.
type Observer func(*Event)

type subscription struct {
	types map[Type]bool
	fn    Observer
	ch    chan *Event
}

func (s *subscription) wants(t Type) bool {
	return len(s.types) == 0 || s.types[t]
}

// Bus fans events out to subscribers. The zero value is not usable; call
// NewBus.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uint64]*subscription
	order   []uint64
	nextID  uint64
	dropped atomic.Uint64
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*subscription)}
}

// Subscribe registers fn for the given types, or for all types when none
// are given. The returned function unsubscribes.
func (b *Bus) Subscribe(fn Observer, types ...Type) (unsubscribe func()) {
	return b.add(&subscription{types: typeSet(types), fn: fn})
}

// Channel returns a channel receiving the given types, or all types when
// none are given. Events that do not fit into the buffer are dropped. The
// returned function unsubscribes and closes the channel.
func (b *Bus) Channel(buffer int, types ...Type) (<-chan *Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *Event, buffer)
	return ch, b.add(&subscription{types: typeSet(types), ch: ch})
}

func (b *Bus) add(s *subscription) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = s
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, x := range b.order {
				if x == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
			if s.ch != nil {
				close(s.ch)
			}
		})
	}
}

// Publish delivers e to every matching subscriber.
func (b *Bus) Publish(e *Event) {
	b.mu.RLock()
	targets := make([]*subscription, 0, len(b.order))
	for _, id := range b.order {
		if s := b.subs[id]; s.wants(e.Type) {
			targets = append(targets, s)
		}
	}
	// Channel sends happen under the read lock so unsubscribe cannot close
	// a channel mid-send.
	for _, s := range targets {
		if s.ch == nil {
			continue
		}
		select {
		case s.ch <- e:
		default:
			b.dropped.Inc()
		}
	}
	b.mu.RUnlock()

	for _, s := range targets {
		if s.fn != nil {
			s.fn(e)
		}
	}
}

// Dropped returns how many channel deliveries were dropped.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func typeSet(types []Type) map[Type]bool {
	if len(types) == 0 {
		return nil
	}
	set := make(map[Type]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}
