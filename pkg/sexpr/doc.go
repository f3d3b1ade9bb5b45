/*
Package sexpr implements the parenthesized prefix-notation used to write CLEVR
question programs, e.g.

	(count (filter_color (filter_shape scene cube) red))

A line is split into tokens, parsed by a small stack machine into a tree of
Nodes, and rendered back with Serialize. Every Node carries an Op, a closed
classification of its symbol (filter, query, equal, same, exists, scene, ...)
that rewrite passes dispatch on instead of re-inspecting name strings.
*/
package sexpr
