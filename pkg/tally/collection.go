package tally

import (
	"strings"

	"sharathv/tally-connect/internal/tallyerror"
)

// Named is implemented by every entity that lives in a name-keyed
// collection.
type Named interface {
	EntityName() string
}

// Collection is a name-keyed set of entities. Lookups are
// case-insensitive; when a response repeats a name the later entity
// wins. Iteration order follows first appearance in the response.
type Collection[T any] struct {
	label string
	items map[string]*T
	names []string
}

func newCollection[T any](label string) *Collection[T] {
	return &Collection[T]{label: label, items: make(map[string]*T)}
}

func (c *Collection[T]) add(name string, item *T) {
	key := strings.ToLower(name)
	if _, seen := c.items[key]; !seen {
		c.names = append(c.names, name)
	}
	c.items[key] = item
}

// Get returns the entity with the given name, if present.
func (c *Collection[T]) Get(name string) (*T, bool) {
	item, ok := c.items[strings.ToLower(name)]
	return item, ok
}

// Lookup returns the entity with the given name, or a ReferenceError
// identifying the collection it was missing from.
func (c *Collection[T]) Lookup(name string) (*T, error) {
	if item, ok := c.Get(name); ok {
		return item, nil
	}
	return nil, &tallyerror.ReferenceError{Collection: c.label, Name: name}
}

// Names returns the entity names in response order.
func (c *Collection[T]) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// All returns the entities in response order.
func (c *Collection[T]) All() []*T {
	out := make([]*T, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.items[strings.ToLower(name)])
	}
	return out
}

// Len returns the number of distinct names.
func (c *Collection[T]) Len() int { return len(c.names) }
