/*
Package rewrite contains the tree passes applied to a parsed program:

  - Reverser re-nests chains of consecutive filter operations so that their
    nesting follows the surface order of the question's modifiers.
  - Factorer turns per-attribute operations (filter_color, query_shape, ...)
    into a generic operation with an explicit attribute argument.
  - Annotator stamps every node with its type from a catalog.

Passes work on *sexpr.Node trees and are independent of each other; the
root clevrprog package fixes the order in which they run.
*/
package rewrite
