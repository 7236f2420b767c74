package dom

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Registry errors.
var (
	ErrInvalidElementName = errors.New("dom: custom element names must contain a hyphen")
	ErrAlreadyDefined     = errors.New("dom: custom element already defined")
)

// Constructor upgrades a newly created element and returns the value
// exposed through Node.Upgraded.
type Constructor func(el *Node) any

var registry = struct {
	sync.RWMutex
	ctors map[string]Constructor
}{ctors: make(map[string]Constructor)}

// Define registers a custom element. Elements created afterwards with
// NewElement, or parsed from HTML, are upgraded by ctor.
func Define(tag string, ctor Constructor) error {
	tag = strings.ToLower(tag)
	if !strings.Contains(tag, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidElementName, tag)
	}

	registry.Lock()
	defer registry.Unlock()
	if _, ok := registry.ctors[tag]; ok {
		return fmt.Errorf("%w: %q", ErrAlreadyDefined, tag)
	}
	registry.ctors[tag] = ctor
	return nil
}

// IsDefined reports whether tag is a registered custom element.
func IsDefined(tag string) bool {
	registry.RLock()
	defer registry.RUnlock()
	_, ok := registry.ctors[strings.ToLower(tag)]
	return ok
}

func upgrade(n *Node) {
	registry.RLock()
	ctor := registry.ctors[n.Tag]
	registry.RUnlock()
	if ctor != nil {
		n.upgraded = ctor(n)
	}
}
