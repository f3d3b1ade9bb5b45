/*
Package ports defines the interfaces between the conversion core and its
adapters.

# Key Interfaces

  - Converter: turns one expression line into its rewritten form (implemented by clevrprog.Pipeline).
  - ResultCache: memoizes converted lines (memory and Redis adapters).
  - Observer: receives per-line outcomes (Prometheus metrics).
*/
package ports
