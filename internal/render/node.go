// Package render keeps a headless node tree for a virtualized list and patches
// it incrementally: only item nodes are replaced on each pass, the structural
// spacers stay mounted.
package render

import (
	"errors"
	"fmt"
)

// ItemMarker tags the nodes a render pass owns.
const ItemMarker = "virtual-item"

type Kind int

const (
	KindSpacer Kind = iota
	KindItem
)

// Event names an interaction an item node can handle.
type Event string

const (
	EventToggleFavorite Event = "toggle-favorite"
	EventAddToCart      Event = "add-to-cart"
	EventOpenDetail     Event = "open-detail"
	EventToggleBought   Event = "toggle-bought"
	EventIncrement      Event = "increment"
	EventDecrement      Event = "decrement"
	EventRemove         Event = "remove"
)

var ErrHandlerBound = errors.New("handler already bound")

// Node is one mounted element. Top and Height are in rows.
type Node struct {
	Kind    Kind
	Marker  string
	Key     int64
	Index   int
	Top     int
	Height  int
	Payload any

	handlers map[Event]func()
}

// On binds fn to ev. A node accepts one handler per event for its lifetime.
func (n *Node) On(ev Event, fn func()) error {
	if fn == nil {
		return fmt.Errorf("nil handler for %s", ev)
	}
	if n.handlers == nil {
		n.handlers = make(map[Event]func())
	}
	if _, ok := n.handlers[ev]; ok {
		return fmt.Errorf("%s on node %d: %w", ev, n.Key, ErrHandlerBound)
	}
	n.handlers[ev] = fn
	return nil
}

// Fire runs the handler bound to ev and reports whether one existed.
func (n *Node) Fire(ev Event) bool {
	fn, ok := n.handlers[ev]
	if !ok {
		return false
	}
	fn()
	return true
}

func (n *Node) Handles(ev Event) bool {
	_, ok := n.handlers[ev]
	return ok
}

// Bottom is the first row below the node.
func (n *Node) Bottom() int {
	return n.Top + n.Height
}

// Container is the scrollable list root. Height is the full logical height of
// the list no matter how many items are mounted.
type Container struct {
	Children []*Node
	Height   int

	top    *Node
	bottom *Node
}

// NewContainer returns a container with its top and bottom spacers mounted.
func NewContainer() *Container {
	top := &Node{Kind: KindSpacer, Marker: "spacer-top"}
	bottom := &Node{Kind: KindSpacer, Marker: "spacer-bottom"}
	return &Container{Children: []*Node{top, bottom}, top: top, bottom: bottom}
}

func (c *Container) TopSpacer() *Node { return c.top }
func (c *Container) BottomSpacer() *Node { return c.bottom }

// Items returns the mounted item nodes in mount order.
func (c *Container) Items() []*Node {
	out := make([]*Node, 0, len(c.Children))
	for _, n := range c.Children {
		if n.Marker == ItemMarker {
			out = append(out, n)
		}
	}
	return out
}

// Find returns the mounted item node for key.
func (c *Container) Find(key int64) *Node {
	for _, n := range c.Children {
		if n.Marker == ItemMarker && n.Key == key {
			return n
		}
	}
	return nil
}
