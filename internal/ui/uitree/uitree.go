// Package uitree models the rendered element tree of a screen: nodes with
// identifiers, text content and parent links. Each node doubles as a
// bubblezone zone so a mouse event can be resolved to the deepest node
// under the pointer.
package uitree

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

// Node is one element of the tree.
type Node struct {
	ID   string
	Text string

	parent   *Node
	children []*Node
}

// NewRoot creates a parentless node.
func NewRoot(id string) *Node {
	return &Node{ID: id}
}

// Append creates a child of n and returns it.
func (n *Node) Append(id, text string) *Node {
	child := &Node{ID: id, Text: text, parent: n}
	n.children = append(n.children, child)
	return child
}

// Adopt re-parents child under n, detaching it from any previous parent.
func (n *Node) Adopt(child *Node) {
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
}

// Detach removes n from its parent.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Clear removes all children.
func (n *Node) Clear() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// Parent returns the parent node, nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child nodes in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

// IsAncestorOf reports whether n is target or one of target's ancestors.
// It walks parent links upward from target, so the cost is bounded by the
// depth of the tree.
func (n *Node) IsAncestorOf(target *Node) bool {
	for cur := target; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Find returns the descendant (or n itself) with the given ID.
func (n *Node) Find(id string) *Node {
	if n.ID == id {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Mark wraps rendered content in a zone named after the node.
func (n *Node) Mark(content string) string {
	return zone.Mark(n.ID, content)
}

// Resolve returns the deepest node whose zone contains the mouse event,
// falling back to n when no child zone matches.
func (n *Node) Resolve(msg tea.MouseMsg) *Node {
	return n.resolve(msg, func(id string) bool {
		z := zone.Get(id)
		return z != nil && z.InBounds(msg)
	})
}

func (n *Node) resolve(msg tea.MouseMsg, inBounds func(id string) bool) *Node {
	for _, c := range n.children {
		if inBounds(c.ID) {
			return c.resolve(msg, inBounds)
		}
		// Zones of descendants may be rendered outside their parent's
		// zone (a dropdown list below its button), so keep searching.
		if hit := c.resolveDescendants(msg, inBounds); hit != nil {
			return hit
		}
	}
	return n
}

func (n *Node) resolveDescendants(msg tea.MouseMsg, inBounds func(id string) bool) *Node {
	for _, c := range n.children {
		if inBounds(c.ID) {
			return c.resolve(msg, inBounds)
		}
		if hit := c.resolveDescendants(msg, inBounds); hit != nil {
			return hit
		}
	}
	return nil
}
