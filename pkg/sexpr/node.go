package sexpr

import (
	"errors"
	"fmt"
)

// ErrChildIndex is returned when a child position is out of range.
var ErrChildIndex = errors.New("child index out of range")

// AbstractAttributeType is the reserved type tag of attribute nodes
// injected by attribute factoring. No catalog entry uses it.
const AbstractAttributeType = "a"

// Node is a single element of a program tree.
// A node without children is a leaf; any other node is an operation
// applied to its children. Children are owned by exactly one parent.
type Node struct {
	Name     string  `json:"name"`
	Type     string  `json:"type,omitempty"`
	Op       Op      `json:"-"`
	Children []*Node `json:"children,omitempty"`
}

// NewLeaf creates a childless node.
func NewLeaf(name string) *Node {
	return &Node{Name: name, Op: Classify(name, true)}
}

// NewNode creates an operation node applied to children.
func NewNode(name string, children ...*Node) *Node {
	return &Node{Name: name, Op: Classify(name, len(children) == 0), Children: children}
}

// NewAttribute creates an attribute argument leaf carrying the abstract attribute type.
func NewAttribute(attribute string) *Node {
	return &Node{Name: attribute, Type: AbstractAttributeType, Op: Op{Kind: Attribute}}
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Rename changes the node's symbol and reclassifies it.
// Attribute nodes stay attributes.
func (n *Node) Rename(name string) {
	n.Name = name
	if n.Op.Kind == Attribute {
		return
	}
	n.Op = Classify(name, n.IsLeaf())
}

// ReplaceChild overwrites the child at position i.
func (n *Node) ReplaceChild(i int, child *Node) error {
	if i < 0 || i >= len(n.Children) {
		return fmt.Errorf("%w: replace %d in %q with %d children", ErrChildIndex, i, n.Name, len(n.Children))
	}
	n.Children[i] = child
	return nil
}

// InsertChild inserts child before position i. i == len(Children) appends.
func (n *Node) InsertChild(i int, child *Node) error {
	if i < 0 || i > len(n.Children) {
		return fmt.Errorf("%w: insert %d in %q with %d children", ErrChildIndex, i, n.Name, len(n.Children))
	}
	wasLeaf := n.IsLeaf()
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
	if wasLeaf && n.Op.Kind == Leaf {
		n.Op = Classify(n.Name, false)
	}
	return nil
}

// With returns a shallow copy of n whose children are replaced by children.
func (n *Node) With(children ...*Node) *Node {
	out := &Node{Name: n.Name, Type: n.Type, Op: n.Op, Children: children}
	if n.Op.Kind == Leaf && len(children) > 0 {
		out.Op = Classify(n.Name, false)
	}
	return out
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Name: n.Name, Type: n.Type, Op: n.Op}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Equal reports structural equality: same name, type and recursively equal children.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Name != other.Name || n.Type != other.Type || len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Walk visits the subtree in pre-order. Returning false from fn skips the
// children of the visited node.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Len returns the number of nodes in the subtree.
func (n *Node) Len() int {
	count := 0
	n.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Depth returns the height of the subtree; a leaf has depth 1.
func (n *Node) Depth() int {
	max := 0
	for _, c := range n.Children {
		if d := c.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// String renders the subtree with Serialize.
func (n *Node) String() string {
	return Serialize(n)
}
