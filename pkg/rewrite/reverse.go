package rewrite

import (
	"fmt"

	"github.com/aretw0/clevrprog/pkg/sexpr"
)

// ArityError is returned when a chain link does not have exactly two
// arguments (the filtered set and the filter value).
type ArityError struct {
	Name  string
	Arity int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("filter %q expects 2 arguments, got %d", e.Name, e.Arity)
}

// FilterLink is one operation of an open filter chain: the filter node
// (without children) and its value argument.
type FilterLink struct {
	Op  *sexpr.Node
	Arg *sexpr.Node
}

// FilterChain is the run of filter links collected on the way down a branch,
// outermost first. It is never mutated; Extend returns a fresh copy so
// sibling branches cannot observe each other's links.
type FilterChain []FilterLink

// Extend returns a new chain with link appended.
func (c FilterChain) Extend(link FilterLink) FilterChain {
	out := make(FilterChain, len(c), len(c)+1)
	copy(out, c)
	return append(out, link)
}

// Fold wraps base in every link of the chain, first link innermost.
func (c FilterChain) Fold(base *sexpr.Node) *sexpr.Node {
	out := base
	for _, link := range c {
		out = link.Op.With(out, link.Arg)
	}
	return out
}

// Reverser reverses the nesting of consecutive filter operations.
//
// A chain (f1 (f2 (f3 x a3) a2) a1) is rebuilt as (f3 (f2 (f1 x a1) a2) a3):
// the filter met first from the top ends up innermost. Filter arguments are
// not rewritten.
type Reverser struct {
	isFilter Predicate
}

// NewReverser creates a Reverser. A nil predicate defaults to
// HasPrefix(DefaultChainPrefix).
func NewReverser(isFilter Predicate) *Reverser {
	if isFilter == nil {
		isFilter = HasPrefix(DefaultChainPrefix)
	}
	return &Reverser{isFilter: isFilter}
}

// Reverse rewrites the tree and returns its (possibly new) root.
// Nodes outside filter chains are reused in place.
func (r *Reverser) Reverse(root *sexpr.Node) (*sexpr.Node, error) {
	return r.rewrite(root, nil)
}

func (r *Reverser) rewrite(n *sexpr.Node, chain FilterChain) (*sexpr.Node, error) {
	if r.isFilter(n) {
		if len(n.Children) != 2 {
			return nil, &ArityError{Name: n.Name, Arity: len(n.Children)}
		}
		link := FilterLink{Op: n.With(), Arg: n.Children[1]}
		return r.rewrite(n.Children[0], chain.Extend(link))
	}

	// n closes whatever chain is open. Its children each start a fresh one.
	for i, child := range n.Children {
		out, err := r.rewrite(child, nil)
		if err != nil {
			return nil, err
		}
		if err := n.ReplaceChild(i, out); err != nil {
			return nil, err
		}
	}
	return chain.Fold(n), nil
}
