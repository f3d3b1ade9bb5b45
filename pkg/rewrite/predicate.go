package rewrite

import (
	"strings"

	"github.com/aretw0/clevrprog/pkg/sexpr"
)

// Predicate selects the nodes a pass applies to.
type Predicate func(n *sexpr.Node) bool

// DefaultChainPrefix is the name prefix of filter chain links.
const DefaultChainPrefix = "filter"

// IsFilter selects operation nodes classified as filters.
func IsFilter(n *sexpr.Node) bool {
	return !n.IsLeaf() && n.Op.Kind == sexpr.Filter
}

// HasPrefix selects operation nodes whose name starts with prefix.
func HasPrefix(prefix string) Predicate {
	return func(n *sexpr.Node) bool {
		return !n.IsLeaf() && strings.HasPrefix(n.Name, prefix)
	}
}
