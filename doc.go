/*
Package clevrprog converts CLEVR question programs written as
s-expressions into the typed, filter-reversed form consumed by semantic
parsers.

# Concept

A program line such as

	(count (filter_shape (filter_color scene red) cube))

goes through a fixed pipeline:

  - Parse: the line becomes a tree of symbols (pkg/sexpr).
  - Reverse: consecutive filter operations have their nesting order
    flipped, so the filter applied first ends up outermost (pkg/rewrite).
  - Factor (optional): family-attribute operations such as filter_color
    become a generic operation plus an attribute leaf, (filter color ...).
  - Annotate: every symbol receives its type from a catalog (pkg/catalog).
  - Serialize: the tree is printed back as name:type symbols.

The result for the line above is

	(count:<e,i> (filter_color:<e,<c,e>> (filter_shape:<e,<s,e>> scene:e cube:s) red:c))

# Usage

	types, err := catalog.LoadFile("clevr.preds.ont")
	if err != nil {
		log.Fatal(err)
	}

	p, err := clevrprog.New(types)
	if err != nil {
		log.Fatal(err)
	}

	out, err := p.Process("(exist_ (filter_color scene red))")

A Pipeline holds no per-line state and is safe for concurrent use. The
pkg/corpus package drives a Pipeline over whole datasets, and
cmd/clevrprog exposes it as a CLI, an HTTP service and an MCP tool.
*/
package clevrprog
