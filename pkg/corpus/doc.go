/*
Package corpus runs a converter over whole datasets.

Two input shapes are supported:

  - Text corpora: a sentence line immediately followed by its expression
    line, records separated by blank lines (TextReader).
  - CLEVR question files: {"info": ..., "questions": [...]} where each
    question carries a program as a list of function steps (CLEVRReader).

A Driver pulls records from a Source, drops over-long sentences, converts
the expressions (optionally in parallel) and writes the results, in input
order, to a Sink.
*/
package corpus
