package rewrite

import (
	"github.com/aretw0/clevrprog/pkg/sexpr"
)

// TypeSource resolves a symbol to its type tag.
// *catalog.Catalog implements it.
type TypeSource interface {
	Lookup(symbol string) (string, error)
}

// Annotator sets the Type of every node from a TypeSource.
type Annotator struct {
	types TypeSource
}

// NewAnnotator creates an Annotator backed by types.
func NewAnnotator(types TypeSource) *Annotator {
	return &Annotator{types: types}
}

type resolved struct {
	node *sexpr.Node
	name string
	typ  string
}

// Annotate types the whole tree in place. The legacy "exist_" spelling is
// renamed to "exists" before lookup. Attribute nodes keep the abstract
// attribute type. If any symbol is unknown the tree is left untouched and
// the lookup error is returned.
func (a *Annotator) Annotate(root *sexpr.Node) error {
	var (
		plan []resolved
		err  error
	)
	root.Walk(func(n *sexpr.Node, _ int) bool {
		if err != nil {
			return false
		}
		if n.Op.Kind == sexpr.Attribute {
			plan = append(plan, resolved{node: n, name: n.Name, typ: sexpr.AbstractAttributeType})
			return true
		}
		name := Canonical(n.Name)
		var typ string
		if typ, err = a.types.Lookup(name); err != nil {
			return false
		}
		plan = append(plan, resolved{node: n, name: name, typ: typ})
		return true
	})
	if err != nil {
		return err
	}

	for _, r := range plan {
		if r.node.Name != r.name {
			r.node.Rename(r.name)
		}
		r.node.Type = r.typ
	}
	return nil
}

// Canonical maps alternative spellings of a symbol to the catalog spelling.
func Canonical(name string) string {
	if name == sexpr.ExistsLegacySymbol {
		return sexpr.ExistsSymbol
	}
	return name
}
